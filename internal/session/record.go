package session

import (
	"maps"
	"time"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

// Violations holds the integrity counters persisted with a session.
type Violations struct {
	ModeExits int `json:"modeExits"`
	Generic   int `json:"violations"`
}

// Record is the terminal hand-off to the results collaborator.
type Record struct {
	SessionID      string                       `json:"sessionId"`
	Topic          string                       `json:"topic"`
	Questions      []questiongen.Question       `json:"questions"`
	Answers        map[string]questiongen.Label `json:"answers"`
	StartedAt      time.Time                    `json:"startedAt"`
	FinishedAt     time.Time                    `json:"finishedAt"`
	ElapsedSeconds int                          `json:"elapsedSeconds"`
	Status         Phase                        `json:"status"`
	Reason         Reason                       `json:"terminationReason"`
	Violations     Violations                   `json:"violationCounts"`
	Degraded       bool                         `json:"degraded"`
}

// Complete reports whether the session ran to the end.
func (r Record) Complete() bool { return r.Status == PhaseCompleted }

// Answered is the number of questions with a recorded answer.
func (r Record) Answered() int { return len(r.Answers) }

// Session is the mutable session state. Only the Controller writes it.
type Session struct {
	ID             string
	Topic          string
	Questions      QuestionSet
	Index          int
	Answers        map[string]questiongen.Label
	Phase          Phase
	ElapsedSeconds int
	Violations     Violations
	StartedAt      time.Time
	FinishedAt     time.Time
	Degraded       bool
	Reason         Reason
}

func (s *Session) clone() Session {
	c := *s
	c.Questions = append(QuestionSet(nil), s.Questions...)
	c.Answers = maps.Clone(s.Answers)
	return c
}

func (s *Session) record() Record {
	c := s.clone()
	if c.Answers == nil {
		c.Answers = map[string]questiongen.Label{}
	}
	return Record{
		SessionID:      c.ID,
		Topic:          c.Topic,
		Questions:      c.Questions,
		Answers:        c.Answers,
		StartedAt:      c.StartedAt,
		FinishedAt:     c.FinishedAt,
		ElapsedSeconds: c.ElapsedSeconds,
		Status:         c.Phase,
		Reason:         c.Reason,
		Violations:     c.Violations,
		Degraded:       c.Degraded,
	}
}

// State is a read-only snapshot for renderers.
type State struct {
	Session

	// Current is the question at Index, nil before questions load.
	Current *questiongen.Question

	QuestionRemaining int
	QuestionBudget    int
	GraceRemaining    int
}
