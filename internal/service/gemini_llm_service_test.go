package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/techmilsolutions/chemmentor/config"
	"github.com/techmilsolutions/chemmentor/internal/model"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.input))
		})
	}
}

func TestGenerateDiagnosticRequiresChapterContent(t *testing.T) {
	svc, err := NewGeminiLLMService(&config.Config{})
	assert.NoError(t, err)

	_, err = svc.GenerateDiagnostic(context.Background(), &model.ChemistryChapter{ChapterName: "Empty"})
	assert.EqualError(t, err, "NO_DATA_AVAILABLE")
}

func TestGenerateTextWithoutClient(t *testing.T) {
	svc, err := NewGeminiLLMService(&config.Config{})
	assert.NoError(t, err)

	_, err = svc.GenerateText(context.Background(), "prompt", "")
	assert.Error(t, err)
}
