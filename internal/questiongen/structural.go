package questiongen

import (
	"fmt"
	"strings"
)

const maxQuestionLen = 500

// StructuralValidator checks that the question text is present and of a
// sane length, and that the tier matches the request.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, input GenerateInput) *ValidationError {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "question text is empty",
			Retryable: true,
		}
	}
	if len(text) > maxQuestionLen {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("question text exceeds %d characters", maxQuestionLen),
			Retryable: true,
		}
	}
	if input.Tier != "" && q.Tier != input.Tier {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("tier %q does not match requested %q", q.Tier, input.Tier),
		}
	}
	return nil
}

// OptionsValidator checks the four labeled options and the answer key.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if len(q.Options) != 4 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected 4 options, got %d", len(q.Options)),
			Retryable: true,
		}
	}

	seen := make(map[string]Label, 4)
	for _, l := range Labels() {
		text, ok := q.Options[l]
		if !ok || strings.TrimSpace(text) == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %s is missing or empty", l),
				Retryable: true,
			}
		}
		key := Signature(text)
		if prev, dup := seen[key]; dup {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("options %s and %s are identical", prev, l),
				Retryable: true,
			}
		}
		seen[key] = l
	}

	if !q.Correct.Valid() {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct answer %q is not one of A, B, C, D", q.Correct),
			Retryable: true,
		}
	}
	return nil
}
