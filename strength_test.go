package authclient_test

import (
	"testing"

	authclient "github.com/goliatone/go-authclient"
	"github.com/stretchr/testify/assert"
)

func TestMeasurePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		score    int
		level    authclient.StrengthLevel
	}{
		{"empty", "", 0, authclient.StrengthNone},
		{"short lowercase only", "abc", 1, authclient.StrengthWeak},
		{"long lowercase", "abcdefgh", 2, authclient.StrengthWeak},
		{"adds uppercase", "Abcdefgh", 3, authclient.StrengthFair},
		{"adds digit", "Abcdefg1", 4, authclient.StrengthGood},
		{"all five checks", "Abcdef1!", 5, authclient.StrengthStrong},
		{"digits only", "12345678", 2, authclient.StrengthWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := authclient.MeasurePasswordStrength(tt.password)
			assert.Equal(t, tt.score, result.Score)
			assert.Equal(t, tt.level, result.Level)
		})
	}
}

func TestMeasurePasswordStrengthFeedback(t *testing.T) {
	result := authclient.MeasurePasswordStrength("abc")

	assert.Contains(t, result.Feedback, "At least 8 characters")
	assert.Contains(t, result.Feedback, "One uppercase letter")
	assert.Contains(t, result.Feedback, "One number")
	assert.Contains(t, result.Feedback, "One special character")
	assert.NotContains(t, result.Feedback, "One lowercase letter")
}

func TestMeasurePasswordStrengthNoFeedbackWhenStrong(t *testing.T) {
	result := authclient.MeasurePasswordStrength("Abcdef1!")
	assert.Empty(t, result.Feedback)
}
