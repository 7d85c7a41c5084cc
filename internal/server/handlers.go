package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type createRequest struct {
	Topic string `json:"topic" binding:"required,max=120"`
}

type answerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

type eventRequest struct {
	Kind string    `json:"kind" binding:"required"`
	At   time.Time `json:"at"`
}

type eventsRequest struct {
	Events []eventRequest `json:"events" binding:"required,min=1,dive"`
}

// questionView omits the answer key.
type questionView struct {
	ID      string                       `json:"id"`
	Text    string                       `json:"question"`
	Options map[questiongen.Label]string `json:"options"`
	Tier    questiongen.Tier             `json:"tier"`
}

type warningView struct {
	Kind    integrity.Kind `json:"kind"`
	Message string         `json:"message"`
	At      time.Time      `json:"at"`
}

type sessionView struct {
	ID                string                       `json:"id"`
	Topic             string                       `json:"topic"`
	Phase             session.Phase                `json:"phase"`
	Index             int                          `json:"index"`
	Total             int                          `json:"total"`
	Current           *questionView                `json:"current,omitempty"`
	QuestionRemaining int                          `json:"questionRemaining"`
	QuestionBudget    int                          `json:"questionBudget"`
	GraceRemaining    int                          `json:"graceRemaining"`
	ElapsedSeconds    int                          `json:"elapsedSeconds"`
	Answers           map[string]questiongen.Label `json:"answers"`
	Violations        session.Violations           `json:"violationCounts"`
	Reason            session.Reason               `json:"terminationReason,omitempty"`
	ReasonText        string                       `json:"terminationMessage,omitempty"`
	Degraded          bool                         `json:"degraded"`
	StartedAt         *time.Time                   `json:"startedAt,omitempty"`
	Warnings          []warningView                `json:"warnings"`
	Environment       environmentView              `json:"environment"`
}

func (s *Server) view(e *entry) sessionView {
	st := e.ctrl.State()
	v := sessionView{
		ID:                st.ID,
		Topic:             st.Topic,
		Phase:             st.Phase,
		Index:             st.Index,
		Total:             len(st.Questions),
		QuestionRemaining: st.QuestionRemaining,
		QuestionBudget:    st.QuestionBudget,
		GraceRemaining:    st.GraceRemaining,
		ElapsedSeconds:    st.ElapsedSeconds,
		Answers:           st.Answers,
		Violations:        st.Violations,
		Reason:            st.Reason,
		Degraded:          st.Degraded,
		Warnings:          []warningView{},
		Environment:       e.env.view(),
	}
	if v.Answers == nil {
		v.Answers = map[string]questiongen.Label{}
	}
	if st.Reason != session.ReasonNone {
		v.ReasonText = st.Reason.Describe()
	}
	if !st.StartedAt.IsZero() {
		t := st.StartedAt
		v.StartedAt = &t
	}
	if st.Current != nil && st.Phase.Running() {
		v.Current = &questionView{
			ID:      st.Current.ID,
			Text:    st.Current.Text,
			Options: st.Current.Options,
			Tier:    st.Current.Tier,
		}
	}
	for _, w := range e.recentWarnings() {
		v.Warnings = append(v.Warnings, warningView{Kind: w.Kind, Message: w.Message, At: w.At})
	}
	return v
}

func (s *Server) createSession(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request", Code: "bad_request", Details: err.Error()})
		return
	}

	e, err := s.open()
	if err != nil {
		s.logger.Error("create session", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "could not create session", Code: "internal"})
		return
	}

	if err := e.ctrl.Load(c.Request.Context(), req.Topic); err != nil {
		if errors.Is(err, questiongen.ErrInvalidInput) {
			s.registry.remove(e.ctrl.ID())
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid topic", Code: "bad_request", Details: err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "question generation failed",
			Code:    "generation_failed",
			Details: s.view(e),
		})
		return
	}
	c.JSON(http.StatusCreated, s.view(e))
}

func (s *Server) lookup(c *gin.Context) (*entry, bool) {
	e, ok := s.registry.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "session not found", Code: "not_found"})
		return nil, false
	}
	return e, true
}

func (s *Server) getSession(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.view(e))
}

func (s *Server) getRecord(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	rec, done := e.ctrl.Record()
	if !done {
		c.JSON(http.StatusConflict, ErrorResponse{Message: "session still running", Code: "not_finished"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) transition(fn func(*session.Controller) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, ok := s.lookup(c)
		if !ok {
			return
		}
		if err := fn(e.ctrl); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, s.view(e))
	}
}

func (s *Server) answer(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request", Code: "bad_request", Details: err.Error()})
		return
	}
	label, err := questiongen.ParseLabel(req.Answer)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid answer", Code: "bad_request", Details: err.Error()})
		return
	}
	if err := e.ctrl.Answer(req.QuestionID, label); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view(e))
}

// postEvents queues integrity signals for the session's monitor in the
// order given. The whole batch is rejected if any kind is unknown.
func (s *Server) postEvents(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	var req eventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request", Code: "bad_request", Details: err.Error()})
		return
	}

	events := make([]integrity.Event, 0, len(req.Events))
	for _, r := range req.Events {
		kind, err := integrity.ParseKind(r.Kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unknown event kind", Code: "bad_request", Details: err.Error()})
			return
		}
		ev := integrity.NewEvent(kind)
		if !r.At.IsZero() {
			ev.At = r.At
		}
		events = append(events, ev)
	}

	if e.ctrl.Phase().Terminal() {
		s.fail(c, session.ErrSessionClosed)
		return
	}
	accepted := 0
	for _, ev := range events {
		select {
		case e.events <- ev:
			accepted++
		case <-e.ctrl.Done():
			s.fail(c, session.ErrSessionClosed)
			return
		case <-c.Request.Context().Done():
			return
		}
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": accepted})
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionClosed):
		c.JSON(http.StatusGone, ErrorResponse{Message: err.Error(), Code: "session_closed"})
	case errors.Is(err, session.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "invalid_transition"})
	case errors.Is(err, session.ErrUnknownQuestion):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error(), Code: "unknown_question"})
	case errors.Is(err, questiongen.ErrInvalidQuestion):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "bad_request"})
	default:
		s.logger.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal error", Code: "internal"})
	}
}
