package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/metrics"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

func init() { gin.SetMode(gin.TestMode) }

type staticGen struct{ err error }

func (g staticGen) Generate(_ context.Context, in questiongen.GenerateInput) (*questiongen.Batch, error) {
	if g.err != nil {
		return nil, g.err
	}
	b := &questiongen.Batch{Tier: in.Tier, Attempts: 1}
	for i := range in.Count {
		b.Questions = append(b.Questions, questiongen.Question{
			ID:   fmt.Sprintf("%s-%d", in.Tier, i),
			Text: fmt.Sprintf("%s question %d?", in.Tier, i),
			Options: map[questiongen.Label]string{
				questiongen.LabelA: "a", questiongen.LabelB: "b",
				questiongen.LabelC: "c", questiongen.LabelD: "d",
			},
			Correct: questiongen.LabelA,
			Tier:    in.Tier,
			Source:  questiongen.SourceLLM,
		})
	}
	return b, nil
}

type captureSink struct {
	mu   sync.Mutex
	recs []session.Record
}

func (s *captureSink) Deliver(_ context.Context, rec session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *captureSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

type fixture struct {
	srv  *Server
	sink *captureSink
}

func newFixture(t *testing.T, gen session.Generator) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := session.DefaultConfig()
	sink := &captureSink{}
	srv := New(ctx, Deps{
		Composer: session.NewComposer(gen, nil, cfg),
		Session:  cfg,
		Policy:   integrity.DefaultPolicy(),
		Sink:     sink,
		Metrics:  metrics.New(),
		// The clock never fires during a test.
		Tick:       time.Hour,
		SessionTTL: time.Minute,
	})
	return &fixture{srv: srv, sink: sink}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// create loads a session and returns its view.
func (f *fixture) create(t *testing.T) sessionView {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions", gin.H{"topic": "Backend Engineer"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[sessionView](t, rec)
}

func (f *fixture) started(t *testing.T) sessionView {
	t.Helper()
	v := f.create(t)
	rec := f.do(t, http.MethodPost, "/api/sessions/"+v.ID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[sessionView](t, rec)
}

func (f *fixture) get(t *testing.T, id string) sessionView {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[sessionView](t, rec)
}

func (f *fixture) events(t *testing.T, id string, kinds ...string) *httptest.ResponseRecorder {
	t.Helper()
	var evs []gin.H
	for _, k := range kinds {
		evs = append(evs, gin.H{"kind": k})
	}
	return f.do(t, http.MethodPost, "/api/sessions/"+id+"/events", gin.H{"events": evs})
}

func (f *fixture) eventuallyPhase(t *testing.T, id string, want session.Phase) sessionView {
	t.Helper()
	var v sessionView
	require.Eventually(t, func() bool {
		v = f.get(t, id)
		return v.Phase == want
	}, 2*time.Second, 5*time.Millisecond, "phase never became %s", want)
	return v
}

func TestCreateAndStart(t *testing.T) {
	f := newFixture(t, staticGen{})

	v := f.create(t)
	assert.Equal(t, session.PhaseAwaitingStart, v.Phase)
	assert.Equal(t, "Backend Engineer", v.Topic)
	assert.Equal(t, 10, v.Total)
	assert.Nil(t, v.Current, "questions stay hidden until start")
	assert.Nil(t, v.StartedAt)
	assert.Zero(t, v.Environment.ModeRequests)

	rec := f.do(t, http.MethodPost, "/api/sessions/"+v.ID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correctAnswer")

	v = decode[sessionView](t, rec)
	assert.Equal(t, session.PhaseActive, v.Phase)
	require.NotNil(t, v.Current)
	assert.Equal(t, questiongen.TierBeginner, v.Current.Tier)
	assert.Equal(t, 30, v.QuestionBudget)
	assert.NotNil(t, v.StartedAt)
	assert.Equal(t, environmentView{ModeRequests: 1, Exclusive: true, KeepAlive: true}, v.Environment)

	rec = f.do(t, http.MethodPost, "/api/sessions/"+v.ID+"/start", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decode[ErrorResponse](t, rec).Code)
}

func TestCreateRejectsBadTopic(t *testing.T) {
	f := newFixture(t, staticGen{})

	for _, body := range []gin.H{{}, {"topic": ""}, {"topic": "   "}, {"topic": strings.Repeat("x", 121)}} {
		rec := f.do(t, http.MethodPost, "/api/sessions", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}
	assert.Zero(t, f.srv.Registry().Len())
}

func TestGenerationFailure(t *testing.T) {
	f := newFixture(t, staticGen{err: errors.New("bank exhausted")})

	rec := f.do(t, http.MethodPost, "/api/sessions", gin.H{"topic": "Backend Engineer"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Code    string      `json:"code"`
		Details sessionView `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "generation_failed", body.Code)
	assert.Equal(t, session.PhaseTerminated, body.Details.Phase)
	assert.Equal(t, session.ReasonGenerationFailed, body.Details.Reason)
	assert.Equal(t, 1, f.sink.len())
}

func TestAnswerAndCompletion(t *testing.T) {
	f := newFixture(t, staticGen{})
	v := f.started(t)
	id := v.ID

	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/answers", gin.H{"questionId": v.Current.ID, "answer": "b)"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, questiongen.LabelB, decode[sessionView](t, rec).Answers[v.Current.ID])

	rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/answers", gin.H{"questionId": "nope", "answer": "A"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/answers", gin.H{"questionId": v.Current.ID, "answer": "E"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/finish", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "finish is only allowed on the last question")

	rec = f.do(t, http.MethodGet, "/api/sessions/"+id+"/record", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	for i := 1; i < v.Total; i++ {
		rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/next", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/finish", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.PhaseCompleted, decode[sessionView](t, rec).Phase)

	rec = f.do(t, http.MethodGet, "/api/sessions/"+id+"/record", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	record := decode[session.Record](t, rec)
	assert.Equal(t, id, record.SessionID)
	assert.Equal(t, session.PhaseCompleted, record.Status)
	assert.Len(t, record.Questions, 10)
	assert.Len(t, record.Answers, 1)

	assert.Equal(t, 1, f.sink.len())

	rec = f.do(t, http.MethodPost, "/api/sessions/"+id+"/next", nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	v = f.get(t, id)
	assert.Equal(t, environmentView{ModeRequests: 1}, v.Environment, "exclusive mode and keep-alive released")
}

func TestEvents_FocusLossTerminates(t *testing.T) {
	f := newFixture(t, staticGen{})
	v := f.started(t)

	rec := f.events(t, v.ID, "focus_lost_returned")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	v = f.eventuallyPhase(t, v.ID, session.PhaseTerminated)
	assert.Equal(t, session.ReasonTabSwitch, v.Reason)
	assert.NotEmpty(t, v.ReasonText)
	assert.Nil(t, v.Current)

	rec = f.events(t, v.ID, "clipboard-copy")
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestEvents_AlertAndReenter(t *testing.T) {
	f := newFixture(t, staticGen{})
	v := f.started(t)

	require.Equal(t, http.StatusAccepted, f.events(t, v.ID, "fullscreen-exited").Code)
	v = f.eventuallyPhase(t, v.ID, session.PhaseAlert)
	assert.Equal(t, 1, v.Violations.ModeExits)
	assert.Equal(t, 3, v.GraceRemaining)

	rec := f.do(t, http.MethodPost, "/api/sessions/"+v.ID+"/reenter", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	v = decode[sessionView](t, rec)
	assert.Equal(t, session.PhaseActive, v.Phase)
	assert.Equal(t, 2, v.Environment.ModeRequests)
}

func TestEvents_GenericViolationWarnsThenTerminates(t *testing.T) {
	f := newFixture(t, staticGen{})
	v := f.started(t)

	require.Equal(t, http.StatusAccepted, f.events(t, v.ID, "clipboard-copy").Code)
	require.Eventually(t, func() bool {
		v = f.get(t, v.ID)
		return len(v.Warnings) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, integrity.KindClipboardCopy, v.Warnings[0].Kind)
	assert.Equal(t, 1, v.Violations.Generic)
	assert.Equal(t, session.PhaseActive, v.Phase)

	require.Equal(t, http.StatusAccepted, f.events(t, v.ID, "clipboard-paste").Code)
	v = f.eventuallyPhase(t, v.ID, session.PhaseTerminated)
	assert.Equal(t, session.ReasonViolationCap, v.Reason)
}

func TestEvents_BadRequests(t *testing.T) {
	f := newFixture(t, staticGen{})
	v := f.started(t)

	assert.Equal(t, http.StatusBadRequest, f.events(t, v.ID, "clipboard-copy", "telepathy").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/sessions/"+v.ID+"/events", gin.H{"events": []gin.H{}}).Code)
	assert.Equal(t, 0, f.get(t, v.ID).Violations.Generic, "a rejected batch queues nothing")
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t, staticGen{})
	for _, path := range []string{"/api/sessions/missing", "/api/sessions/missing/record"} {
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, path, nil).Code)
	}
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/sessions/missing/start", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, staticGen{})

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRegistrySweep(t *testing.T) {
	f := newFixture(t, staticGen{})
	v := f.create(t)
	reg := f.srv.Registry()

	assert.Zero(t, reg.Sweep(), "fresh sessions are kept")
	assert.Equal(t, 1, reg.Len())

	reg.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Zero(t, reg.Sweep(), "an unstarted session is abandoned before it is dropped")
	got := f.get(t, v.ID)
	assert.Equal(t, session.ReasonAbandoned, got.Reason)
	assert.Equal(t, 1, f.sink.len())

	assert.Equal(t, 1, reg.Sweep())
	assert.Zero(t, reg.Len())
}
