package authclient

import "regexp"

// StrengthLevel buckets a password score for display.
type StrengthLevel string

const (
	StrengthNone   StrengthLevel = ""
	StrengthWeak   StrengthLevel = "weak"
	StrengthFair   StrengthLevel = "fair"
	StrengthGood   StrengthLevel = "good"
	StrengthStrong StrengthLevel = "strong"
)

// PasswordStrength is the result of the fixed heuristic: one point per
// satisfied check, with feedback naming the checks still missing.
type PasswordStrength struct {
	Score    int
	Level    StrengthLevel
	Feedback []string
}

var (
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	digitRe     = regexp.MustCompile(`\d`)
	specialRe   = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// MeasurePasswordStrength scores a password 0..5 from five fixed checks:
// length >= 8, a lowercase letter, an uppercase letter, a digit, and a
// special character. This is a UX hint; the backend enforces its own policy.
func MeasurePasswordStrength(password string) PasswordStrength {
	if password == "" {
		return PasswordStrength{}
	}

	score := 0
	var feedback []string

	if len(password) >= 8 {
		score++
	} else {
		feedback = append(feedback, "At least 8 characters")
	}

	if lowercaseRe.MatchString(password) {
		score++
	} else {
		feedback = append(feedback, "One lowercase letter")
	}

	if uppercaseRe.MatchString(password) {
		score++
	} else {
		feedback = append(feedback, "One uppercase letter")
	}

	if digitRe.MatchString(password) {
		score++
	} else {
		feedback = append(feedback, "One number")
	}

	if specialRe.MatchString(password) {
		score++
	} else {
		feedback = append(feedback, "One special character")
	}

	return PasswordStrength{
		Score:    score,
		Level:    strengthLevel(score),
		Feedback: feedback,
	}
}

func strengthLevel(score int) StrengthLevel {
	switch {
	case score == 0:
		return StrengthNone
	case score <= 2:
		return StrengthWeak
	case score <= 3:
		return StrengthFair
	case score <= 4:
		return StrengthGood
	default:
		return StrengthStrong
	}
}
