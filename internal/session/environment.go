package session

import "context"

// Environment is the host surface the session drives on start, alert,
// and end. Implementations must not call back into the Controller.
type Environment interface {
	// RequestExclusiveMode asks the host to enter full screen. It may
	// fail; the session carries on and relies on mode-exit signals.
	RequestExclusiveMode() error

	// ExitExclusiveMode leaves full screen. Called once on a terminal
	// transition.
	ExitExclusiveMode()

	// AcquireKeepAlive stops the host from idling or sleeping. The
	// returned release func is called once on a terminal transition.
	AcquireKeepAlive() (release func(), err error)
}

// NopEnvironment is an Environment with no host behind it.
type NopEnvironment struct{}

func (NopEnvironment) RequestExclusiveMode() error       { return nil }
func (NopEnvironment) ExitExclusiveMode()                {}
func (NopEnvironment) AcquireKeepAlive() (func(), error) { return func() {}, nil }

// Sink receives the terminal record of each session exactly once.
type Sink interface {
	Deliver(ctx context.Context, rec Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, rec Record) error

func (f SinkFunc) Deliver(ctx context.Context, rec Record) error { return f(ctx, rec) }
