package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Alice", "alice"},
		{"  bob_99  ", "bob_99"},
		{"MIXED_Case", "mixed_case"},
		{"already_lower", "already_lower"},
	}

	for _, tt := range tests {
		got := NormalizeUsername(tt.input)
		assert.Equal(t, tt.want, got)
		// Normalization is idempotent.
		assert.Equal(t, got, NormalizeUsername(got))
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "alice_99", false},
		{"minimum length", "abc", false},
		{"too short", "ab", true},
		{"empty", "", true},
		{"spaces", "al ice", true},
		{"hyphen", "al-ice", true},
		{"dot", "al.ice", true},
		{"digits only", "12345", false},
		{"underscores only", "___", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.NoError(t, ValidatePassword("a much longer passphrase"))
}
