package tui

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/layout"
)

// ErrWindowTooSmall is returned when exclusive mode is requested while
// the terminal is below the minimum size.
var ErrWindowTooSmall = errors.New("terminal window too small")

// Environment is the terminal's session.Environment. The program cannot
// resize the terminal, so a request succeeds only if the user already
// has a large enough window.
type Environment struct {
	fits atomic.Bool
}

var _ session.Environment = (*Environment)(nil)

// NewEnvironment assumes the window fits until told otherwise.
func NewEnvironment() *Environment {
	e := &Environment{}
	e.fits.Store(true)
	return e
}

// SetFits records whether the window meets the minimum size.
func (e *Environment) SetFits(ok bool) { e.fits.Store(ok) }

func (e *Environment) RequestExclusiveMode() error {
	if !e.fits.Load() {
		return fmt.Errorf("%w: need at least %dx%d", ErrWindowTooSmall, layout.MinWidth, layout.MinHeight)
	}
	return nil
}

func (e *Environment) ExitExclusiveMode() {}

// AcquireKeepAlive is a no-op: terminals do not sleep on idle.
func (e *Environment) AcquireKeepAlive() (func(), error) { return func() {}, nil }
