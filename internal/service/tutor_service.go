package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"github.com/techmilsolutions/chemmentor/internal/repository"
)

// TutorService serves the interactive AI tutor: whole-chapter teaching,
// source-grounded question answering, and ad-hoc MCQ practice.
type TutorService interface {
	Handle(ctx context.Context, req *dto.TutorRequest) *dto.TutorResponse
}

type tutorService struct {
	chapterRepo repository.ChapterRepository
	gemini      GeminiLLMService
}

func NewTutorService(chapterRepo repository.ChapterRepository, gemini GeminiLLMService) TutorService {
	return &tutorService{chapterRepo: chapterRepo, gemini: gemini}
}

func tutorError(mode, chapter, message string) *dto.TutorResponse {
	return &dto.TutorResponse{
		Status:  "error",
		Mode:    mode,
		Chapter: chapter,
		Data:    map[string]any{},
		Error:   message,
	}
}

// Handle dispatches on mode. Invalid difficulty and count values are coerced
// to defaults rather than rejected.
func (s *tutorService) Handle(ctx context.Context, req *dto.TutorRequest) *dto.TutorResponse {
	chapter := strings.TrimSpace(req.Chapter)
	mode := strings.ToLower(strings.TrimSpace(req.Mode))

	if chapter == "" {
		return tutorError(mode, "", "Chapter name is required")
	}
	switch mode {
	case "teach", "question", "mcq":
	default:
		return tutorError(mode, chapter, fmt.Sprintf("Invalid mode: '%s'. Must be 'teach', 'question', or 'mcq'", mode))
	}

	content, err := s.chapterRepo.FindByName(chapter)
	if err != nil {
		return tutorError(mode, chapter, fmt.Sprintf("Chapter '%s' not found in database", chapter))
	}

	switch mode {
	case "teach":
		return s.teach(ctx, content)
	case "question":
		question := strings.TrimSpace(req.Question)
		if question == "" {
			return tutorError("question", chapter, "Question is required for question mode")
		}
		return s.answer(ctx, content, question)
	default:
		difficulty := strings.ToLower(strings.TrimSpace(req.Difficulty))
		switch difficulty {
		case "easy", "medium", "hard":
		default:
			difficulty = "medium"
		}
		count := req.MCQCount
		if count < 1 || count > 20 {
			count = 5
		}
		return s.mcqs(ctx, content, difficulty, count)
	}
}

func sourceContext(content *model.ChemistryChapter) string {
	return fmt.Sprintf(`Chapter: %s

SYLLABUS CONTENT:
%s

PAST PAPER QUESTIONS:
%s

ANSWER KEY:
%s`, content.ChapterName, content.SyllabusText, content.PastPaperText, content.AnswerKeyText)
}

func (s *tutorService) teach(ctx context.Context, content *model.ChemistryChapter) *dto.TutorResponse {
	prompt := fmt.Sprintf(`You are a Cambridge O Level Chemistry tutor.

%s

Teach the "%s" chapter to a student using ONLY the material above. Structure
the explanation from fundamentals to exam application. Do not introduce
content outside the provided sources.`, sourceContext(content), content.ChapterName)

	response, err := s.gemini.GenerateText(ctx, prompt, fmt.Sprintf("Explain the basics of %s in simple terms.", content.ChapterName))
	if err != nil {
		return tutorError("teach", content.ChapterName, err.Error())
	}
	return &dto.TutorResponse{
		Status:  "success",
		Mode:    "teach",
		Chapter: content.ChapterName,
		Data:    map[string]any{"response": response, "mode": "teaching"},
	}
}

func (s *tutorService) answer(ctx context.Context, content *model.ChemistryChapter, question string) *dto.TutorResponse {
	prompt := fmt.Sprintf(`You are a Cambridge O Level Chemistry tutor.

%s

Student question: %s

Answer using ONLY the material above. If the answer is not present in the
provided sources, reply exactly: "Answer not available in provided chapter
materials."`, sourceContext(content), question)

	response, err := s.gemini.GenerateText(ctx, prompt, "Explain the basics of chemistry in simple terms.")
	if err != nil {
		return tutorError("question", content.ChapterName, err.Error())
	}
	return &dto.TutorResponse{
		Status:  "success",
		Mode:    "question",
		Chapter: content.ChapterName,
		Data:    map[string]any{"question": question, "answer": response},
	}
}

func (s *tutorService) mcqs(ctx context.Context, content *model.ChemistryChapter, difficulty string, count int) *dto.TutorResponse {
	prompt := fmt.Sprintf(`You are a Cambridge O Level Chemistry examiner.

%s

Generate exactly %d %s-difficulty practice MCQs for "%s" from the material
above. Output STRICT JSON:
{
  "difficulty": "%s",
  "mcqs": [
    {"question": "...", "options": ["A", "B", "C", "D"], "answer": "B", "explanation": "..."}
  ]
}
Return JSON only, no explanations outside the JSON.`,
		sourceContext(content), count, difficulty, content.ChapterName, difficulty)

	raw, err := s.gemini.GenerateText(ctx, prompt, fmt.Sprintf("Generate %d chemistry practice questions for %s.", count, content.ChapterName))
	if err != nil {
		return tutorError("mcq", content.ChapterName, err.Error())
	}

	var parsed struct {
		Difficulty string           `json:"difficulty"`
		MCQs       []map[string]any `json:"mcqs"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil {
		return tutorError("mcq", content.ChapterName, fmt.Sprintf("Failed to parse MCQs: %s", err))
	}
	if parsed.Difficulty == "" {
		parsed.Difficulty = difficulty
	}
	return &dto.TutorResponse{
		Status:  "success",
		Mode:    "mcq",
		Chapter: content.ChapterName,
		Data:    map[string]any{"difficulty": parsed.Difficulty, "mcqs": parsed.MCQs},
	}
}
