package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/techmilsolutions/chemmentor/config"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"google.golang.org/api/option"
)

// GeminiLLMService wraps every model call the product makes: diagnostic
// generation, roadmap synthesis, and free-form tutoring.
type GeminiLLMService interface {
	GenerateDiagnostic(ctx context.Context, chapter *model.ChemistryChapter) (*model.DiagnosticTest, error)
	GenerateRoadmap(ctx context.Context, onboarding map[string]any, diagnostics []map[string]any) (*model.RoadmapData, error)
	GenerateText(ctx context.Context, prompt, fallbackPrompt string) (string, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (GeminiLLMService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiLLMService will be non-functional.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-2.5-flash-lite")
	return &geminiLLMService{client: model, cfg: cfg}, nil
}

// GenerateText calls the model, guaranteeing a non-empty prompt by falling
// back when the caller's prompt is blank.
func (s *geminiLLMService) GenerateText(ctx context.Context, prompt, fallbackPrompt string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = fallbackPrompt
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("cannot call Gemini with an empty prompt")
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("error generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// stripCodeFences removes the markdown wrappers the model sometimes adds
// around strict-JSON output.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func (s *geminiLLMService) GenerateDiagnostic(ctx context.Context, chapter *model.ChemistryChapter) (*model.DiagnosticTest, error) {
	if chapter.SyllabusText == "" && chapter.PastPaperText == "" && chapter.AnswerKeyText == "" {
		return nil, fmt.Errorf("NO_DATA_AVAILABLE")
	}

	prompt := fmt.Sprintf(`You are an expert Cambridge O Level Chemistry examiner.

Chapter: %s

SYLLABUS CONTENT:
%s

PAST PAPER QUESTIONS:
%s

ANSWER KEY:
%s

Your task:
- Generate 6-8 MCQs for the chapter "%s"
- Use ONLY the content provided above
- Categorize questions into:
  - Basic
  - Conceptual
  - Application
- Output STRICT JSON
- Do NOT explain
- Do NOT invent questions
- Base questions on the syllabus, past papers, and answer key provided

Expected Output format:
{
  "chapter": "%s",
  "diagnostic_test": [
    {
      "bucket": "Basic",
      "question": "Question text here?",
      "type": "MCQ",
      "options": ["A", "B", "C", "D"],
      "answer": "B",
      "marks": 1
    }
  ]
}

Generate diagnostic test for %s chapter. Return JSON only, no explanations.`,
		chapter.ChapterName, chapter.SyllabusText, chapter.PastPaperText, chapter.AnswerKeyText,
		chapter.ChapterName, chapter.ChapterName, chapter.ChapterName)

	fallback := fmt.Sprintf("Run a basic diagnostic explanation for %s.", chapter.ChapterName)

	raw, err := s.GenerateText(ctx, prompt, fallback)
	if err != nil {
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}

	var test model.DiagnosticTest
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &test); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(test.DiagnosticTest) == 0 {
		return nil, fmt.Errorf("invalid response format from AI")
	}

	// The model occasionally omits optional fields; default them.
	for i := range test.DiagnosticTest {
		q := &test.DiagnosticTest[i]
		if len(q.Options) == 0 {
			q.Options = []string{"A", "B", "C", "D"}
		}
		if q.Type == "" {
			q.Type = "MCQ"
		}
		if q.Marks == 0 {
			q.Marks = 1
		}
	}
	test.Chapter = chapter.ChapterName
	return &test, nil
}

func (s *geminiLLMService) GenerateRoadmap(ctx context.Context, onboarding map[string]any, diagnostics []map[string]any) (*model.RoadmapData, error) {
	onboardingJSON, _ := json.Marshal(onboarding)
	diagnosticsJSON, _ := json.Marshal(diagnostics)

	prompt := fmt.Sprintf(`You are an academic planner for Cambridge O Level Chemistry.

Input:
- Student onboarding: %s
- Diagnostic results: %s

Output:
- Weekly roadmap
- Topics per week
- Priority order
- Reasoning

Rules:
- JSON only
- No teaching
- No explanations
- Focus on weak areas from diagnostics
- Align with target grade and study hours

Expected format:
{
  "weekly_roadmap": [
    {
      "week": 1,
      "topics": ["topic1", "topic2"],
      "priority": "high",
      "reasoning": "brief reason"
    }
  ],
  "estimated_completion": "X weeks",
  "focus_areas": ["area1", "area2"]
}

Generate roadmap. Return JSON only.`, onboardingJSON, diagnosticsJSON)

	fallback := "Create a 4-week study plan for O-Level Chemistry. Return JSON with weekly topics and priorities."

	raw, err := s.GenerateText(ctx, prompt, fallback)
	if err != nil {
		return nil, fmt.Errorf("roadmap generation failed: %w", err)
	}

	var roadmap model.RoadmapData
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &roadmap); err != nil {
		return nil, fmt.Errorf("failed to parse roadmap: %w", err)
	}
	if len(roadmap.WeeklyRoadmap) == 0 {
		return nil, fmt.Errorf("invalid roadmap format from AI")
	}
	return &roadmap, nil
}
