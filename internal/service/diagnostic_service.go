package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/techmilsolutions/chemmentor/internal/dto"
	"github.com/techmilsolutions/chemmentor/internal/model"
	"github.com/techmilsolutions/chemmentor/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultTimeLimit is the diagnostic countdown length in minutes.
const DefaultTimeLimit = 30

var (
	ErrAlreadyCompleted   = errors.New("Diagnostic already completed")
	ErrNoDiagnostic       = errors.New("No existing diagnostic found")
	ErrDiagnosticNotFound = errors.New("Diagnostic not found")
	// ErrChapterUnavailable is wrapped with the chapter name at call sites.
	ErrChapterUnavailable = errors.New("not available")
)

type DiagnosticService interface {
	AvailableChapters() []string
	Generate(ctx context.Context, userID uuid.UUID, chapter string) (*dto.DiagnosticResponse, error)
	GetExisting(userID uuid.UUID, chapter string) (*dto.DiagnosticResponse, error)
	Submit(userID uuid.UUID, diagnosticID uuid.UUID, answers map[string]string) (*dto.SubmitDiagnosticResponse, error)
}

type diagnosticService struct {
	chapterRepo    repository.ChapterRepository
	diagnosticRepo repository.DiagnosticRepository
	resultRepo     repository.ResultRepository
	gemini         GeminiLLMService
}

func NewDiagnosticService(
	chapterRepo repository.ChapterRepository,
	diagnosticRepo repository.DiagnosticRepository,
	resultRepo repository.ResultRepository,
	gemini GeminiLLMService,
) DiagnosticService {
	return &diagnosticService{
		chapterRepo:    chapterRepo,
		diagnosticRepo: diagnosticRepo,
		resultRepo:     resultRepo,
		gemini:         gemini,
	}
}

// AvailableChapters lists chapters with loaded source material, falling back
// to Stoichiometry when the content table is empty or unreadable.
func (s *diagnosticService) AvailableChapters() []string {
	names, err := s.chapterRepo.ListNames()
	if err != nil {
		log.Error().Err(err).Msg("Error loading chapters from database")
		return []string{"Stoichiometry"}
	}
	if len(names) == 0 {
		log.Warn().Msg("No chapters found in database, using default")
		return []string{"Stoichiometry"}
	}
	return names
}

func (s *diagnosticService) chapterAvailable(chapter string) bool {
	for _, name := range s.AvailableChapters() {
		if name == chapter {
			return true
		}
	}
	return false
}

// Generate returns a diagnostic for (user, chapter): the unsubmitted existing
// one when present (no second model call), otherwise a freshly generated one.
// A chapter whose result already exists can never be regenerated.
func (s *diagnosticService) Generate(ctx context.Context, userID uuid.UUID, chapter string) (*dto.DiagnosticResponse, error) {
	if !s.chapterAvailable(chapter) {
		return nil, fmt.Errorf("Chapter '%s' %w", chapter, ErrChapterUnavailable)
	}

	if _, err := s.resultRepo.FindByUserAndChapter(userID, chapter); err == nil {
		return nil, ErrAlreadyCompleted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking existing result: %w", err)
	}

	if existing, err := s.diagnosticRepo.FindByUserAndChapter(userID, chapter); err == nil {
		return diagnosticToDTO(existing, true)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking existing diagnostic: %w", err)
	}

	content, err := s.chapterRepo.FindByName(chapter)
	if err != nil {
		return nil, fmt.Errorf("Chapter '%s' %w", chapter, ErrChapterUnavailable)
	}
	test, err := s.gemini.GenerateDiagnostic(ctx, content)
	if err != nil {
		log.Error().Err(err).Str("chapter", chapter).Msg("Diagnostic generation failed")
		return nil, err
	}

	payload, err := json.Marshal(test)
	if err != nil {
		return nil, fmt.Errorf("error encoding diagnostic: %w", err)
	}
	diagnostic := &model.Diagnostic{
		ID:        uuid.New(),
		UserID:    userID,
		Chapter:   chapter,
		TestData:  datatypes.JSON(payload),
		TimeLimit: DefaultTimeLimit,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.diagnosticRepo.Create(diagnostic); err != nil {
		return nil, fmt.Errorf("error saving diagnostic: %w", err)
	}
	return diagnosticToDTO(diagnostic, false)
}

// GetExisting fetches without ever generating. Absence is ErrNoDiagnostic,
// which callers treat as an empty state rather than a failure.
func (s *diagnosticService) GetExisting(userID uuid.UUID, chapter string) (*dto.DiagnosticResponse, error) {
	if !s.chapterAvailable(chapter) {
		return nil, fmt.Errorf("Chapter '%s' %w", chapter, ErrChapterUnavailable)
	}
	existing, err := s.diagnosticRepo.FindByUserAndChapter(userID, chapter)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDiagnostic
		}
		return nil, fmt.Errorf("error fetching diagnostic: %w", err)
	}
	return diagnosticToDTO(existing, true)
}

func diagnosticToDTO(diagnostic *model.Diagnostic, isExisting bool) (*dto.DiagnosticResponse, error) {
	var test model.DiagnosticTest
	if err := json.Unmarshal(diagnostic.TestData, &test); err != nil {
		return nil, fmt.Errorf("stored diagnostic payload is malformed: %w", err)
	}
	return &dto.DiagnosticResponse{
		DiagnosticID:   diagnostic.ID.String(),
		Chapter:        diagnostic.Chapter,
		DiagnosticTest: test.DiagnosticTest,
		TotalQuestions: len(test.DiagnosticTest),
		TimeLimit:      diagnostic.TimeLimit,
		CreatedAt:      diagnostic.CreatedAt.UTC().Format(time.RFC3339),
		IsExisting:     isExisting,
	}, nil
}

// Grading outcome for one submitted answer set.
type grading struct {
	Outcomes       []model.QuestionOutcome
	BucketScores   map[string]int
	BucketTotals   map[string]int
	TotalCorrect   int
	TotalQuestions int
	Percentage     float64
	Passed         bool
}

// gradeAnswers scores an answer map (question index -> letter) against the
// key. Unanswered questions count as wrong; comparison is case-insensitive.
// Passing requires every bucket that has questions to score above zero with
// at least half correct.
func gradeAnswers(questions []model.DiagnosticQuestion, answers map[string]string) grading {
	g := grading{
		BucketScores: map[string]int{model.BucketBasic: 0, model.BucketConceptual: 0, model.BucketApplication: 0},
		BucketTotals: map[string]int{model.BucketBasic: 0, model.BucketConceptual: 0, model.BucketApplication: 0},
	}

	for idx, question := range questions {
		questionID := strconv.Itoa(idx)
		userAnswer := strings.ToUpper(strings.TrimSpace(answers[questionID]))
		correctAnswer := strings.ToUpper(strings.TrimSpace(question.Answer))
		bucket := question.Bucket
		if bucket == "" {
			bucket = model.BucketBasic
		}

		isCorrect := userAnswer != "" && userAnswer == correctAnswer
		g.BucketTotals[bucket]++
		if isCorrect {
			g.BucketScores[bucket]++
		}

		marks := question.Marks
		if marks == 0 {
			marks = 1
		}
		g.Outcomes = append(g.Outcomes, model.QuestionOutcome{
			QuestionID:    questionID,
			Question:      question.Question,
			Bucket:        bucket,
			UserAnswer:    userAnswer,
			CorrectAnswer: correctAnswer,
			IsCorrect:     isCorrect,
			Marks:         marks,
		})
	}

	for _, score := range g.BucketScores {
		g.TotalCorrect += score
	}
	g.TotalQuestions = len(questions)
	if g.TotalQuestions > 0 {
		g.Percentage = float64(g.TotalCorrect) / float64(g.TotalQuestions) * 100
	}

	g.Passed = true
	for _, bucket := range []string{model.BucketBasic, model.BucketConceptual, model.BucketApplication} {
		total := g.BucketTotals[bucket]
		if total == 0 {
			continue
		}
		score := g.BucketScores[bucket]
		if score == 0 || float64(score)/float64(total) < 0.5 {
			g.Passed = false
			break
		}
	}
	return g
}

// Submit grades and persists the result, consuming the diagnostic for its
// chapter.
func (s *diagnosticService) Submit(userID uuid.UUID, diagnosticID uuid.UUID, answers map[string]string) (*dto.SubmitDiagnosticResponse, error) {
	diagnostic, err := s.diagnosticRepo.FindByID(diagnosticID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiagnosticNotFound
		}
		return nil, fmt.Errorf("error fetching diagnostic: %w", err)
	}

	var test model.DiagnosticTest
	if err := json.Unmarshal(diagnostic.TestData, &test); err != nil {
		return nil, fmt.Errorf("stored diagnostic payload is malformed: %w", err)
	}

	if answers == nil {
		answers = map[string]string{}
	}
	g := gradeAnswers(test.DiagnosticTest, answers)

	answersJSON, _ := json.Marshal(answers)
	outcomesJSON, _ := json.Marshal(g.Outcomes)
	scoresJSON, _ := json.Marshal(g.BucketScores)
	totalsJSON, _ := json.Marshal(g.BucketTotals)

	result := &model.DiagnosticResult{
		ID:             uuid.New(),
		UserID:         userID,
		DiagnosticID:   diagnostic.ID,
		Chapter:        diagnostic.Chapter,
		Answers:        datatypes.JSON(answersJSON),
		Results:        datatypes.JSON(outcomesJSON),
		BucketScores:   datatypes.JSON(scoresJSON),
		BucketTotals:   datatypes.JSON(totalsJSON),
		TotalCorrect:   g.TotalCorrect,
		TotalQuestions: g.TotalQuestions,
		Percentage:     g.Percentage,
		Passed:         g.Passed,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := s.resultRepo.Create(result); err != nil {
		return nil, fmt.Errorf("error saving result: %w", err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("chapter", diagnostic.Chapter).
		Float64("percentage", g.Percentage).
		Bool("passed", g.Passed).
		Msg("Diagnostic graded")

	return &dto.SubmitDiagnosticResponse{
		ResultID:       result.ID.String(),
		Passed:         g.Passed,
		Percentage:     math.Round(g.Percentage*100) / 100,
		TotalCorrect:   g.TotalCorrect,
		TotalQuestions: g.TotalQuestions,
		BucketScores:   g.BucketScores,
		Results:        g.Outcomes,
	}, nil
}
