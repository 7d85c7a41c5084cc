package questiongen

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is the difficulty classification of a question.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

// Tiers lists every tier in session order.
func Tiers() []Tier {
	return []Tier{TierBeginner, TierIntermediate, TierAdvanced}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierBeginner, TierIntermediate, TierAdvanced:
		return true
	}
	return false
}

// ParseTier parses a tier name, ignoring case and surrounding space.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}

// Label identifies one of the four answer options.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists the option labels in display order.
func Labels() []Label {
	return []Label{LabelA, LabelB, LabelC, LabelD}
}

// Valid reports whether l is one of A-D.
func (l Label) Valid() bool {
	switch l {
	case LabelA, LabelB, LabelC, LabelD:
		return true
	}
	return false
}

// ParseLabel accepts "a", "B", " c ", "D)" and similar variants.
func ParseLabel(s string) (Label, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 1 {
		s = strings.TrimRight(s, ").:")
	}
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid option label %q", s)
	}
	return l, nil
}

// Source records where a question came from.
type Source string

const (
	SourceLLM  Source = "llm"
	SourceBank Source = "bank"
)

// Question is a single multiple-choice item. Once placed in a session it
// is never modified.
type Question struct {
	// ID is assigned by the pipeline or the bank loader, never by the
	// provider.
	ID      string           `json:"id"`
	Text    string           `json:"question"`
	Options map[Label]string `json:"options"`
	Correct Label            `json:"correctAnswer"`
	Tier    Tier             `json:"tier"`
	Source  Source           `json:"source"`
}

// ErrInvalidQuestion marks a question that breaks the item invariants.
var ErrInvalidQuestion = errors.New("invalid question")

// Validate checks the invariants every placed question must satisfy.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidQuestion)
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("%w: %d options, want 4", ErrInvalidQuestion, len(q.Options))
	}
	for _, l := range Labels() {
		if strings.TrimSpace(q.Options[l]) == "" {
			return fmt.Errorf("%w: option %s is empty", ErrInvalidQuestion, l)
		}
	}
	if !q.Correct.Valid() {
		return fmt.Errorf("%w: correct label %q", ErrInvalidQuestion, q.Correct)
	}
	if !q.Tier.Valid() {
		return fmt.Errorf("%w: tier %q", ErrInvalidQuestion, q.Tier)
	}
	return nil
}

// Signature is the duplicate-detection key: case-insensitive text with
// whitespace collapsed.
func (q *Question) Signature() string {
	return Signature(q.Text)
}

// Signature normalizes question text for duplicate detection.
func Signature(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// GenerateInput holds everything needed for one tier call.
type GenerateInput struct {
	// Topic is the career path or subject, e.g. "Backend Engineer".
	Topic string

	Tier Tier

	// Count is the number of questions wanted for this tier.
	Count int

	// Nonce varies provider output between sessions and is echoed into
	// every attempt's prompt.
	Nonce string
}

// Validate rejects inputs that indicate a caller bug.
func (in GenerateInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Topic) == "":
		return fmt.Errorf("%w: empty topic", ErrInvalidInput)
	case !in.Tier.Valid():
		return fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, in.Tier)
	case in.Count <= 0:
		return fmt.Errorf("%w: count %d", ErrInvalidInput, in.Count)
	}
	return nil
}

// Batch is the pipeline's output for one tier.
type Batch struct {
	Tier      Tier
	Questions []Question

	// Degraded is set when any question came from the fallback bank.
	Degraded bool

	// Attempts is the number of provider calls made.
	Attempts int
}
