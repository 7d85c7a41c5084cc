package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// QueryOpts configures queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// LLM events only.
	PurposePrefix string
	FailedOnly    bool
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns a single event by ID.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEventRecord, error)
}

// ResultData is the persisted summary of a finished assessment session.
// Payload carries the full record as JSON.
type ResultData struct {
	SessionID      string
	Topic          string
	Status         string
	Reason         string
	StartedAt      time.Time
	FinishedAt     time.Time
	ElapsedSeconds int
	QuestionCount  int
	AnsweredCount  int
	ModeExits      int
	Violations     int
	Degraded       bool
	Payload        []byte
}

// ResultRecord is a stored session result.
type ResultRecord struct {
	Sequence int64
	ResultData
}

// ResultRepo stores terminal session records.
type ResultRepo interface {
	// Save stores a result. Saving the same session twice replaces the
	// earlier row.
	Save(ctx context.Context, data ResultData) error

	// Get returns the result for a session, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*ResultRecord, error)

	// List returns results newest first. Time filters apply to FinishedAt.
	List(ctx context.Context, opts QueryOpts) ([]ResultRecord, error)
}
