package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/techmilsolutions/chemmentor/internal/model"
)

func questionSet() []model.DiagnosticQuestion {
	return []model.DiagnosticQuestion{
		{Bucket: model.BucketBasic, Question: "Q1", Answer: "A"},
		{Bucket: model.BucketBasic, Question: "Q2", Answer: "B"},
		{Bucket: model.BucketBasic, Question: "Q3", Answer: "C"},
		{Bucket: model.BucketConceptual, Question: "Q4", Answer: "D"},
		{Bucket: model.BucketConceptual, Question: "Q5", Answer: "A"},
		{Bucket: model.BucketConceptual, Question: "Q6", Answer: "B"},
		{Bucket: model.BucketApplication, Question: "Q7", Answer: "C"},
		{Bucket: model.BucketApplication, Question: "Q8", Answer: "D"},
		{Bucket: model.BucketApplication, Question: "Q9", Answer: "A"},
	}
}

func TestGradeAnswersAllCorrect(t *testing.T) {
	answers := map[string]string{
		"0": "A", "1": "B", "2": "C",
		"3": "D", "4": "A", "5": "B",
		"6": "C", "7": "D", "8": "A",
	}
	g := gradeAnswers(questionSet(), answers)

	assert.Equal(t, 9, g.TotalCorrect)
	assert.Equal(t, 9, g.TotalQuestions)
	assert.InDelta(t, 100.0, g.Percentage, 0.001)
	assert.True(t, g.Passed)
	assert.Equal(t, 3, g.BucketScores[model.BucketBasic])
	assert.Equal(t, 3, g.BucketTotals[model.BucketApplication])
}

func TestGradeAnswersCaseInsensitive(t *testing.T) {
	g := gradeAnswers(questionSet(), map[string]string{"0": "a", "1": " b ", "2": "c"})
	assert.Equal(t, 3, g.BucketScores[model.BucketBasic])
}

func TestGradeAnswersUnansweredCountAsWrong(t *testing.T) {
	// Only the first basic question answered; everything else blank.
	g := gradeAnswers(questionSet(), map[string]string{"0": "A"})

	assert.Equal(t, 1, g.TotalCorrect)
	assert.False(t, g.Passed)
	assert.Len(t, g.Outcomes, 9)
	assert.True(t, g.Outcomes[0].IsCorrect)
	assert.False(t, g.Outcomes[1].IsCorrect)
	assert.Equal(t, "", g.Outcomes[1].UserAnswer)
}

func TestGradeAnswersPassRequiresEveryBucket(t *testing.T) {
	// Perfect on basic and conceptual, zero on application: fail.
	answers := map[string]string{
		"0": "A", "1": "B", "2": "C",
		"3": "D", "4": "A", "5": "B",
	}
	g := gradeAnswers(questionSet(), answers)
	assert.False(t, g.Passed)
	assert.Equal(t, 0, g.BucketScores[model.BucketApplication])
}

func TestGradeAnswersPassRequiresHalfPerBucket(t *testing.T) {
	// 1 of 3 in a bucket is above zero but under half: fail.
	answers := map[string]string{
		"0": "A", "1": "B", "2": "C",
		"3": "D", "4": "A", "5": "B",
		"6": "C",
	}
	g := gradeAnswers(questionSet(), answers)
	assert.Equal(t, 1, g.BucketScores[model.BucketApplication])
	assert.False(t, g.Passed)

	// 2 of 3 clears the threshold everywhere: pass.
	answers["7"] = "D"
	g = gradeAnswers(questionSet(), answers)
	assert.True(t, g.Passed)
}

func TestGradeAnswersDefaultsBucketAndMarks(t *testing.T) {
	questions := []model.DiagnosticQuestion{{Question: "Q1", Answer: "A"}}
	g := gradeAnswers(questions, map[string]string{"0": "A"})

	assert.Equal(t, model.BucketBasic, g.Outcomes[0].Bucket)
	assert.Equal(t, 1, g.Outcomes[0].Marks)
	assert.Equal(t, 1, g.BucketTotals[model.BucketBasic])
}

func TestGradeAnswersEmptySet(t *testing.T) {
	g := gradeAnswers(nil, nil)
	assert.Equal(t, 0, g.TotalQuestions)
	assert.InDelta(t, 0.0, g.Percentage, 0.001)
	// No bucket has questions, so the pass rule is vacuously satisfied.
	assert.True(t, g.Passed)
}
