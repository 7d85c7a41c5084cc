package session

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

// GracePolicy decides what happens when the alert grace window runs out
// without full screen being restored.
type GracePolicy string

const (
	// GraceRetry asks for exclusive mode again and restarts the window.
	GraceRetry GracePolicy = "retry"
	// GraceTerminate ends the session with ReasonGraceExpired.
	GraceTerminate GracePolicy = "terminate"
)

// TierDurations holds one duration per tier.
type TierDurations struct {
	Beginner     time.Duration `yaml:"beginner" validate:"min=1s"`
	Intermediate time.Duration `yaml:"intermediate" validate:"min=1s"`
	Advanced     time.Duration `yaml:"advanced" validate:"min=1s"`
}

// For returns the duration for t.
func (d TierDurations) For(t questiongen.Tier) time.Duration {
	switch t {
	case questiongen.TierIntermediate:
		return d.Intermediate
	case questiongen.TierAdvanced:
		return d.Advanced
	}
	return d.Beginner
}

// TierCounts holds one question count per tier.
type TierCounts struct {
	Beginner     int `yaml:"beginner" validate:"min=0"`
	Intermediate int `yaml:"intermediate" validate:"min=0"`
	Advanced     int `yaml:"advanced" validate:"min=0"`
}

// For returns the count for t.
func (c TierCounts) For(t questiongen.Tier) int {
	switch t {
	case questiongen.TierIntermediate:
		return c.Intermediate
	case questiongen.TierAdvanced:
		return c.Advanced
	}
	return c.Beginner
}

// Total is the sum over all tiers.
func (c TierCounts) Total() int { return c.Beginner + c.Intermediate + c.Advanced }

// Config holds the session policy constants.
type Config struct {
	QuestionTime TierDurations `yaml:"question_time"`
	Composition  TierCounts    `yaml:"composition"`

	// Size is the final QuestionSet length after dedup and padding.
	Size int `yaml:"size" validate:"min=1"`

	Grace       time.Duration `yaml:"grace" validate:"min=1s"`
	GracePolicy GracePolicy   `yaml:"grace_policy" validate:"oneof=retry terminate"`

	// SinkTimeout bounds delivery of the terminal record.
	SinkTimeout time.Duration `yaml:"sink_timeout" validate:"min=0"`
}

// DefaultConfig returns the standard 10-question, 4/3/3 session.
func DefaultConfig() Config {
	return Config{
		QuestionTime: TierDurations{
			Beginner:     30 * time.Second,
			Intermediate: 45 * time.Second,
			Advanced:     60 * time.Second,
		},
		Composition: TierCounts{Beginner: 4, Intermediate: 3, Advanced: 3},
		Size:        10,
		Grace:       3 * time.Second,
		GracePolicy: GraceRetry,
		SinkTimeout: 5 * time.Second,
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	if c.Composition.Total() == 0 {
		return fmt.Errorf("session config: composition is empty")
	}
	return nil
}

// seconds converts d to whole timer ticks, never less than one.
func seconds(d time.Duration) int {
	return max(int(d/time.Second), 1)
}
