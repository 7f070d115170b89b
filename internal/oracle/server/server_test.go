package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/kcheck/internal/oracle"
)

type stubOracle struct {
	question string
	eval     *oracle.Evaluation
	err      error
	lastQ    oracle.QuestionRequest
	lastE    oracle.EvaluationRequest
}

func (s *stubOracle) NextQuestion(_ context.Context, req oracle.QuestionRequest) (string, error) {
	s.lastQ = req
	return s.question, s.err
}

func (s *stubOracle) Evaluate(_ context.Context, req oracle.EvaluationRequest) (*oracle.Evaluation, error) {
	s.lastE = req
	return s.eval, s.err
}

func newTestServer(t *testing.T, o oracle.Oracle, opts Options) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(o, opts))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestRoundTripThroughHTTPClient(t *testing.T) {
	stub := &stubOracle{
		question: "What is a user story?",
		eval:     &oracle.Evaluation{IsCorrect: true, Feedback: "Spot on."},
	}
	ts := newTestServer(t, stub, Options{})
	client := oracle.NewHTTPClient(ts.URL, time.Second)
	ctx := context.Background()

	q, err := client.NextQuestion(ctx, oracle.QuestionRequest{
		LessonContext:       "Lesson text",
		QuestionNumber:      2,
		TotalQuestions:      7,
		IsAboutPriorLessons: true,
		NumPriorQuestions:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, "What is a user story?", q)
	assert.Equal(t, 2, stub.lastQ.QuestionNumber)
	assert.True(t, stub.lastQ.IsAboutPriorLessons)
	assert.NotNil(t, stub.lastQ.PreviousQA)

	ev, err := client.Evaluate(ctx, oracle.EvaluationRequest{
		LessonContext: "Lesson text",
		Question:      "What is a user story?",
		Answer:        "A short requirement from the user's view",
	})
	require.NoError(t, err)
	assert.True(t, ev.IsCorrect)
	assert.Equal(t, "Spot on.", ev.Feedback)
	assert.Equal(t, "A short requirement from the user's view", stub.lastE.Answer)
}

func TestOracleFailureIs500(t *testing.T) {
	stub := &stubOracle{err: &oracle.MalformedResponseError{Op: "question", Err: errors.New("bad json")}}
	ts := newTestServer(t, stub, Options{})

	status, body := post(t, ts.URL+oracle.QuestionPath, `{"lessonContext":"x","questionNumber":1}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"success":false,"error":"oracle question: malformed response: bad json"}`, body)

	client := oracle.NewHTTPClient(ts.URL, time.Second)
	_, err := client.Evaluate(context.Background(), oracle.EvaluationRequest{Question: "q", Answer: "a"})
	var netErr *oracle.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
}

func TestNilEvaluationIs500(t *testing.T) {
	ts := newTestServer(t, &stubOracle{}, Options{})

	status, body := post(t, ts.URL+oracle.EvaluatePath, `{"question":"q","answer":"a"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"success":false,"error":"oracle evaluate: malformed response: oracle returned no evaluation"}`, body)
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t, &stubOracle{question: "q"}, Options{})

	tests := []struct {
		name string
		path string
		body string
	}{
		{"invalid json", oracle.QuestionPath, `{"lessonContext":`},
		{"empty body", oracle.QuestionPath, ``},
		{"missing lesson", oracle.QuestionPath, `{"questionNumber":1}`},
		{"zero question number", oracle.QuestionPath, `{"lessonContext":"x"}`},
		{"missing question", oracle.EvaluatePath, `{"answer":"a"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, ts.URL+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, body, `"success":false`)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, &stubOracle{question: "q"}, Options{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, _ := post(t, ts.URL+oracle.QuestionPath, `{"lessonContext":"x","questionNumber":1}`)
	require.Equal(t, http.StatusOK, status)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	metrics := string(raw)
	assert.Contains(t, metrics, `kcheck_oracle_requests_total{method="POST",route="/api/knowledge-check/question",status="200"} 1`)
	assert.Contains(t, metrics, "kcheck_oracle_request_duration_seconds")
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, &stubOracle{question: "q"}, Options{RatePerMinute: 1, Burst: 2})

	body := `{"lessonContext":"x","questionNumber":1}`
	for i := range 2 {
		status, _ := post(t, ts.URL+oracle.QuestionPath, body)
		require.Equal(t, http.StatusOK, status, "request %d", i+1)
	}
	status, resp := post(t, ts.URL+oracle.QuestionPath, body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, resp, "too many requests")

	// Health checks are never limited.
	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestLimiterSweepsIdleClients(t *testing.T) {
	l := newLimiter(60, 1)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"))

	now = now.Add(visitorTTL + time.Second)
	assert.True(t, l.allow("c"))
	assert.Len(t, l.visitors, 1)
}
