package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/model"
)

type stubChapterRepo struct {
	chapters map[string]*model.ChemistryChapter
}

func (r *stubChapterRepo) Upsert(chapter *model.ChemistryChapter) error { return nil }

func (r *stubChapterRepo) FindByName(name string) (*model.ChemistryChapter, error) {
	if chapter, ok := r.chapters[name]; ok {
		return chapter, nil
	}
	return nil, errors.New("record not found")
}

func (r *stubChapterRepo) ListNames() ([]string, error) {
	names := make([]string, 0, len(r.chapters))
	for name := range r.chapters {
		names = append(names, name)
	}
	return names, nil
}

func (r *stubChapterRepo) FindAll() ([]model.ChemistryChapter, error) { return nil, nil }

type stubGemini struct {
	text    string
	err     error
	prompts []string
}

func (g *stubGemini) GenerateText(ctx context.Context, prompt, fallbackPrompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

func (g *stubGemini) GenerateDiagnostic(ctx context.Context, chapter *model.ChemistryChapter) (*model.DiagnosticTest, error) {
	return nil, errors.New("not implemented")
}

func (g *stubGemini) GenerateRoadmap(ctx context.Context, onboarding map[string]any, diagnostics []map[string]any) (*model.RoadmapData, error) {
	return nil, errors.New("not implemented")
}

func tutorFixture(text string) (TutorService, *stubGemini) {
	gemini := &stubGemini{text: text}
	repo := &stubChapterRepo{chapters: map[string]*model.ChemistryChapter{
		"Stoichiometry": {
			ChapterName:   "Stoichiometry",
			SyllabusText:  "Moles and molar mass.",
			PastPaperText: "Q1: Calculate...",
			AnswerKeyText: "A1: 2 mol.",
		},
	}}
	return NewTutorService(repo, gemini), gemini
}

func TestTutorRejectsInvalidMode(t *testing.T) {
	svc, _ := tutorFixture("")
	resp := svc.Handle(context.Background(), &dto.TutorRequest{Chapter: "Stoichiometry", Mode: "quiz"})

	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "Invalid mode")
}

func TestTutorRejectsUnknownChapter(t *testing.T) {
	svc, _ := tutorFixture("")
	resp := svc.Handle(context.Background(), &dto.TutorRequest{Chapter: "Alchemy", Mode: "teach"})

	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "not found")
}

func TestTutorTeachMode(t *testing.T) {
	svc, gemini := tutorFixture("Stoichiometry is the arithmetic of reactions.")
	resp := svc.Handle(context.Background(), &dto.TutorRequest{Chapter: "Stoichiometry", Mode: "teach"})

	require.Equal(t, "success", resp.Status)
	assert.Equal(t, "teach", resp.Mode)
	assert.Equal(t, "Stoichiometry is the arithmetic of reactions.", resp.Data["response"])
	require.Len(t, gemini.prompts, 1)
	assert.Contains(t, gemini.prompts[0], "Moles and molar mass.")
}

func TestTutorQuestionModeRequiresQuestion(t *testing.T) {
	svc, _ := tutorFixture("")
	resp := svc.Handle(context.Background(), &dto.TutorRequest{Chapter: "Stoichiometry", Mode: "question"})

	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "Question is required")
}

func TestTutorQuestionMode(t *testing.T) {
	svc, gemini := tutorFixture("One mole contains Avogadro's number of particles.")
	resp := svc.Handle(context.Background(), &dto.TutorRequest{
		Chapter:  "Stoichiometry",
		Mode:     "question",
		Question: "What is a mole?",
	})

	require.Equal(t, "success", resp.Status)
	assert.Equal(t, "What is a mole?", resp.Data["question"])
	assert.Equal(t, "One mole contains Avogadro's number of particles.", resp.Data["answer"])
	require.Len(t, gemini.prompts, 1)
	assert.Contains(t, gemini.prompts[0], "What is a mole?")
}

func TestTutorMCQModeDefaults(t *testing.T) {
	svc, gemini := tutorFixture(`{"difficulty": "medium", "mcqs": [{"question": "Q", "options": ["A", "B", "C", "D"], "answer": "A"}]}`)

	// Out-of-range count and bogus difficulty fall back to defaults.
	resp := svc.Handle(context.Background(), &dto.TutorRequest{
		Chapter:    "Stoichiometry",
		Mode:       "mcq",
		Difficulty: "impossible",
		MCQCount:   50,
	})

	require.Equal(t, "success", resp.Status)
	assert.Equal(t, "medium", resp.Data["difficulty"])
	require.Len(t, gemini.prompts, 1)
	assert.Contains(t, gemini.prompts[0], "exactly 5 medium-difficulty")
}

func TestTutorMCQModeStripsCodeFences(t *testing.T) {
	svc, _ := tutorFixture("```json\n{\"difficulty\": \"hard\", \"mcqs\": []}\n```")
	resp := svc.Handle(context.Background(), &dto.TutorRequest{
		Chapter:    "Stoichiometry",
		Mode:       "mcq",
		Difficulty: "hard",
		MCQCount:   3,
	})

	require.Equal(t, "success", resp.Status)
	assert.Equal(t, "hard", resp.Data["difficulty"])
}

func TestTutorMCQModeBadJSON(t *testing.T) {
	svc, _ := tutorFixture("not json at all")
	resp := svc.Handle(context.Background(), &dto.TutorRequest{Chapter: "Stoichiometry", Mode: "mcq"})

	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "Failed to parse MCQs")
}
