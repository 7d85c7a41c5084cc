package integrity

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Policy holds the violation budgets. The two caps are kept separate:
// they guard different signals and may be tuned independently.
type Policy struct {
	// ModeExitCap is the exit count that terminates, counting the one
	// that raised the alert. 2 means the second exit ends the session.
	ModeExitCap int `yaml:"mode_exit_cap" validate:"min=1"`

	// ViolationCap is the generic violation count that terminates.
	ViolationCap int `yaml:"violation_cap" validate:"min=1"`

	// WarningBuffer is the warning queue length. Warnings beyond it are
	// dropped rather than delaying classification.
	WarningBuffer int `yaml:"warning_buffer" validate:"min=1"`

	// ProbeInterval is how often the inspection-tool probe polls. Zero
	// disables the probe.
	ProbeInterval time.Duration `yaml:"probe_interval" validate:"min=0"`

	// ProbeCooldown is the minimum gap between two probe events.
	ProbeCooldown time.Duration `yaml:"probe_cooldown" validate:"min=0"`
}

// DefaultPolicy returns caps of 2 and 2.
func DefaultPolicy() Policy {
	return Policy{
		ModeExitCap:   2,
		ViolationCap:  2,
		WarningBuffer: 8,
		ProbeInterval: 2 * time.Second,
		ProbeCooldown: 30 * time.Second,
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (p Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("integrity policy: %w", err)
	}
	return nil
}
