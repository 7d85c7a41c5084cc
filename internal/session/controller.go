// Package session runs a single proctored assessment: it composes the
// question set, owns every timer, and is the only writer of session
// state. Integrity policy lives in package integrity and drives the
// session through the transition methods here.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

var (
	// ErrInvalidTransition means an operation was requested from a phase
	// that does not allow it.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrSessionClosed means the session already reached a terminal phase.
	ErrSessionClosed = errors.New("session closed")

	// ErrUnknownQuestion means an answer named a question that is not the
	// current one.
	ErrUnknownQuestion = errors.New("unknown question")
)

// Controller is the session state machine. All methods are safe for
// concurrent use; mutations are serialized by one lock.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	composer *Composer
	env      Environment
	sink     Sink
	logger   *slog.Logger
	now      func() time.Time

	s        Session
	question Countdown
	grace    Countdown
	release  func()
	done     chan struct{}
	rec      *Record
}

// Option customizes a Controller.
type Option func(*Controller)

// WithEnvironment sets the host environment. Default: NopEnvironment.
func WithEnvironment(env Environment) Option {
	return func(c *Controller) { c.env = env }
}

// WithSink sets the receiver of the terminal record.
func WithSink(s Sink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNow overrides the wall clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithID sets the session id instead of generating one.
func WithID(id string) Option {
	return func(c *Controller) { c.s.ID = id }
}

// New creates a Controller in PhaseIdle.
func New(composer *Composer, cfg Config, opts ...Option) (*Controller, error) {
	if composer == nil {
		return nil, errors.New("session: composer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:      cfg,
		composer: composer,
		env:      NopEnvironment{},
		logger:   slog.Default(),
		now:      time.Now,
		done:     make(chan struct{}),
		s:        Session{Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.s.ID == "" {
		c.s.ID = uuid.NewString()
	}
	c.s.Answers = make(map[string]questiongen.Label)
	c.logger = c.logger.With("session_id", c.s.ID)
	return c, nil
}

// ID returns the session id.
func (c *Controller) ID() string { return c.s.ID }

// Done is closed when the session reaches a terminal phase.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Phase
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Session:           c.s.clone(),
		QuestionRemaining: c.question.Remaining(),
		QuestionBudget:    c.question.Budget(),
		GraceRemaining:    c.grace.Remaining(),
	}
	if c.s.Index < len(st.Questions) {
		st.Current = &st.Questions[c.s.Index]
	}
	return st
}

// Record returns the terminal record once the session has ended.
func (c *Controller) Record() (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rec == nil {
		return Record{}, false
	}
	return *c.rec, true
}

// Load generates and composes the question set. It moves Idle → Loading
// → AwaitingStart, or to Terminated if composition fails. Load blocks
// until all tiers have returned.
func (c *Controller) Load(ctx context.Context, topic string) error {
	topic = strings.TrimSpace(topic)

	c.mu.Lock()
	if c.s.Phase != PhaseIdle {
		err := c.invalid("load")
		c.mu.Unlock()
		return err
	}
	if topic == "" {
		c.mu.Unlock()
		return fmt.Errorf("%w: empty topic", questiongen.ErrInvalidInput)
	}
	c.s.Phase = PhaseLoading
	c.s.Topic = topic
	c.mu.Unlock()

	c.logger.Info("loading session", "topic", topic)
	composed, err := c.composer.Compose(ctx, topic, uuid.NewString())
	if err == nil {
		err = checkSet(composed.Questions, c.cfg.Size)
	}

	c.mu.Lock()
	if c.s.Phase != PhaseLoading {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if err != nil {
		reason := ReasonGenerationFailed
		if ctx.Err() != nil {
			reason = ReasonAbandoned
		}
		c.logger.Error("session load failed", "error", err)
		after := c.endLocked(PhaseTerminated, reason)
		c.mu.Unlock()
		after()
		return fmt.Errorf("load session: %w", err)
	}
	c.s.Questions = composed.Questions
	c.s.Degraded = composed.Degraded
	c.s.Phase = PhaseAwaitingStart
	c.mu.Unlock()

	c.logger.Info("session ready", "questions", len(composed.Questions), "degraded", composed.Degraded)
	return nil
}

// checkSet enforces the QuestionSet invariants before a session may use it.
func checkSet(qs QuestionSet, size int) error {
	if len(qs) != size {
		return fmt.Errorf("%w: %d questions, want %d", ErrComposition, len(qs), size)
	}
	seen := make(map[string]bool, len(qs))
	ids := make(map[string]bool, len(qs))
	for i := range qs {
		if err := qs[i].Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		if seen[qs[i].Signature()] || ids[qs[i].ID] || qs[i].ID == "" {
			return fmt.Errorf("%w: question %d repeats text or id", ErrComposition, i)
		}
		seen[qs[i].Signature()] = true
		ids[qs[i].ID] = true
	}
	return nil
}

// Start is the explicit start gesture. It must come from a direct user
// action; nothing in this package calls it.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s.Phase != PhaseAwaitingStart {
		return c.invalid("start")
	}

	c.s.StartedAt = c.now()
	if release, err := c.env.AcquireKeepAlive(); err != nil {
		c.logger.Warn("keep-alive unavailable", "error", err)
	} else {
		c.release = release
	}
	if err := c.env.RequestExclusiveMode(); err != nil {
		c.logger.Warn("exclusive mode request failed", "error", err)
	}

	c.s.Phase = PhaseActive
	c.startQuestion()
	c.logger.Info("session started")
	return nil
}

// Answer records label for the current question. It never advances.
func (c *Controller) Answer(questionID string, label questiongen.Label) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s.Phase != PhaseActive {
		return c.invalid("answer")
	}
	if !label.Valid() {
		return fmt.Errorf("%w: label %q", questiongen.ErrInvalidQuestion, label)
	}
	if cur := c.s.Questions[c.s.Index]; cur.ID != questionID {
		return fmt.Errorf("%w: %s is not the current question", ErrUnknownQuestion, questionID)
	}
	c.s.Answers[questionID] = label
	return nil
}

// Next cancels the current question timer and moves on. On the last
// question it completes the session.
func (c *Controller) Next() error {
	c.mu.Lock()
	if c.s.Phase != PhaseActive {
		err := c.invalid("next")
		c.mu.Unlock()
		return err
	}
	after := c.advanceLocked()
	c.mu.Unlock()
	after()
	return nil
}

// Finish completes the session from the last question.
func (c *Controller) Finish() error {
	c.mu.Lock()
	if c.s.Phase != PhaseActive || c.s.Index != len(c.s.Questions)-1 {
		err := c.invalid("finish")
		c.mu.Unlock()
		return err
	}
	after := c.advanceLocked()
	c.mu.Unlock()
	after()
	return nil
}

// Tick advances every running timer by one second. The elapsed timer
// runs in Active and Alert; the question timer only in Active; the grace
// window only in Alert. Tick is a no-op in every other phase.
func (c *Controller) Tick() {
	c.mu.Lock()
	after := func() {}
	switch c.s.Phase {
	case PhaseActive:
		c.s.ElapsedSeconds++
		if c.question.Tick() {
			c.logger.Debug("question timed out", "index", c.s.Index)
			after = c.advanceLocked()
		}
	case PhaseAlert:
		c.s.ElapsedSeconds++
		if c.grace.Tick() {
			after = c.graceExpiredLocked()
		}
	}
	c.mu.Unlock()
	after()
}

// RecordModeExit counts an exclusive-mode exit and returns the new total.
func (c *Controller) RecordModeExit() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.s.Phase.Running() {
		return c.s.Violations.ModeExits, c.invalid("record mode exit")
	}
	c.s.Violations.ModeExits++
	return c.s.Violations.ModeExits, nil
}

// RecordViolation counts a generic violation and returns the new total.
func (c *Controller) RecordViolation() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.s.Phase.Running() {
		return c.s.Violations.Generic, c.invalid("record violation")
	}
	c.s.Violations.Generic++
	return c.s.Violations.Generic, nil
}

// EnterAlert suspends the question timer and opens the grace window.
// Calling it while already in Alert is a no-op.
func (c *Controller) EnterAlert() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.s.Phase {
	case PhaseAlert:
		return nil
	case PhaseActive:
	default:
		return c.invalid("enter alert")
	}
	c.question.Suspend()
	c.grace.Start(seconds(c.cfg.Grace))
	c.s.Phase = PhaseAlert
	c.logger.Warn("exclusive mode lost, alert raised", "grace_seconds", c.grace.Remaining())
	return nil
}

// ResumeFromAlert returns to Active with the question timer's remaining
// time intact. It is called once exclusive mode is back.
func (c *Controller) ResumeFromAlert() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.s.Phase {
	case PhaseActive:
		return nil
	case PhaseAlert:
	default:
		return c.invalid("resume")
	}
	c.resumeLocked()
	return nil
}

// ReenterExclusiveMode is the single sanctioned action during Alert: it
// asks the host for exclusive mode and resumes on success.
func (c *Controller) ReenterExclusiveMode() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s.Phase != PhaseAlert {
		return c.invalid("re-enter exclusive mode")
	}
	if err := c.env.RequestExclusiveMode(); err != nil {
		return fmt.Errorf("re-enter exclusive mode: %w", err)
	}
	c.resumeLocked()
	return nil
}

// Terminate ends the session with reason. It is a no-op on a session
// that already ended.
func (c *Controller) Terminate(reason Reason) error {
	c.mu.Lock()
	if c.s.Phase.Terminal() {
		c.mu.Unlock()
		return nil
	}
	after := c.endLocked(PhaseTerminated, reason)
	c.mu.Unlock()
	after()
	return nil
}

func (c *Controller) resumeLocked() {
	c.grace.Stop()
	c.question.Resume()
	c.s.Phase = PhaseActive
	c.logger.Info("exclusive mode restored", "question_remaining", c.question.Remaining())
}

func (c *Controller) startQuestion() {
	tier := c.s.Questions[c.s.Index].Tier
	c.question.Start(seconds(c.cfg.QuestionTime.For(tier)))
}

// advanceLocked moves to the next question or completes the session.
func (c *Controller) advanceLocked() func() {
	c.question.Stop()
	if c.s.Index >= len(c.s.Questions)-1 {
		return c.endLocked(PhaseCompleted, ReasonCompleted)
	}
	c.s.Index++
	c.startQuestion()
	return func() {}
}

func (c *Controller) graceExpiredLocked() func() {
	if c.cfg.GracePolicy == GraceTerminate {
		return c.endLocked(PhaseTerminated, ReasonGraceExpired)
	}
	if err := c.env.RequestExclusiveMode(); err != nil {
		c.logger.Warn("exclusive mode retry failed", "error", err)
	}
	c.grace.Start(seconds(c.cfg.Grace))
	return func() {}
}

// endLocked moves to a terminal phase, cancels every timer, and returns
// the hand-off to run once the lock is released.
func (c *Controller) endLocked(phase Phase, reason Reason) func() {
	c.question.Stop()
	c.grace.Stop()
	c.s.Phase = phase
	c.s.Reason = reason
	c.s.FinishedAt = c.now()

	rec := c.s.record()
	c.rec = &rec
	close(c.done)

	started := !c.s.StartedAt.IsZero()
	release := c.release
	c.release = nil

	c.logger.Info("session ended",
		"status", phase,
		"reason", reason,
		"answered", len(rec.Answers),
		"elapsed_seconds", rec.ElapsedSeconds,
		"mode_exits", rec.Violations.ModeExits,
		"violations", rec.Violations.Generic)

	return func() {
		if started {
			c.env.ExitExclusiveMode()
		}
		if release != nil {
			release()
		}
		c.deliver(rec)
	}
}

func (c *Controller) deliver(rec Record) {
	if c.sink == nil {
		return
	}
	ctx := context.Background()
	if c.cfg.SinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SinkTimeout)
		defer cancel()
	}
	if err := c.sink.Deliver(ctx, rec); err != nil {
		c.logger.Error("deliver session record", "error", err)
	}
}

// invalid reports a contract violation for op in the current phase.
func (c *Controller) invalid(op string) error {
	if c.s.Phase.Terminal() {
		return fmt.Errorf("%s: %w", op, ErrSessionClosed)
	}
	err := fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, c.s.Phase)
	c.logger.Error("rejected session operation", "error", err)
	return err
}
