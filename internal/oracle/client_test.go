package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL+"/", time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNextQuestion_Success(t *testing.T) {
	var got QuestionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, QuestionPath, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"success":true,"question":"  What is a roadmap?  "}`)
	})

	q, err := c.NextQuestion(context.Background(), QuestionRequest{
		LessonContext:       "lesson",
		PriorLessonsContext: "prior",
		QuestionNumber:      2,
		TotalQuestions:      7,
		IsAboutPriorLessons: true,
		NumPriorQuestions:   2,
		PreviousQA:          []QA{{Question: "Q1", Answer: "A1", IsCorrect: true, Feedback: "ok"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "What is a roadmap?", q)

	assert.Equal(t, 2, got.QuestionNumber)
	assert.Equal(t, 7, got.TotalQuestions)
	assert.True(t, got.IsAboutPriorLessons)
	require.Len(t, got.PreviousQA, 1)
	assert.Equal(t, "A1", got.PreviousQA[0].Answer)
}

func TestNextQuestion_SendsEmptyHistoryAsArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, isArray := raw["previousQA"].([]any)
		assert.True(t, isArray, "previousQA should be a JSON array")
		writeJSON(w, http.StatusOK, `{"success":true,"question":"Q"}`)
	})

	_, err := c.NextQuestion(context.Background(), QuestionRequest{QuestionNumber: 1})
	require.NoError(t, err)
}

func TestNextQuestion_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		malformed bool
	}{
		{"server error", http.StatusInternalServerError, `{"success":false,"error":"boom"}`, false},
		{"bad gateway no body", http.StatusBadGateway, ``, false},
		{"success false", http.StatusOK, `{"success":false,"error":"nope"}`, true},
		{"success missing", http.StatusOK, `{"question":"Q"}`, true},
		{"question missing", http.StatusOK, `{"success":true}`, true},
		{"not json", http.StatusOK, `<html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.NextQuestion(context.Background(), QuestionRequest{QuestionNumber: 1})
			require.Error(t, err)

			var malErr *MalformedResponseError
			var netErr *NetworkError
			if tt.malformed {
				assert.True(t, errors.As(err, &malErr), "want MalformedResponseError, got %T", err)
				assert.Equal(t, "malformed", Kind(err))
			} else {
				require.True(t, errors.As(err, &netErr), "want NetworkError, got %T", err)
				assert.Equal(t, tt.status, netErr.StatusCode)
				assert.Equal(t, "network", Kind(err))
			}
		})
	}
}

func TestNextQuestion_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewHTTPClient(url, time.Second)
	_, err := c.NextQuestion(context.Background(), QuestionRequest{})

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Zero(t, netErr.StatusCode)
}

func TestEvaluate_Success(t *testing.T) {
	var got EvaluationRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EvaluatePath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"success":true,"isCorrect":false,"feedback":"Close, but the lesson says X."}`)
	})

	ev, err := c.Evaluate(context.Background(), EvaluationRequest{
		LessonContext: "lesson",
		Question:      "What is X?",
		Answer:        "Y",
	})
	require.NoError(t, err)
	assert.False(t, ev.IsCorrect)
	assert.Equal(t, "Close, but the lesson says X.", ev.Feedback)
	assert.Equal(t, "What is X?", got.Question)
	assert.Equal(t, "Y", got.Answer)
}

func TestEvaluate_MissingFields(t *testing.T) {
	for _, body := range []string{
		`{"success":true,"feedback":"f"}`,
		`{"success":true,"isCorrect":true}`,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})
		_, err := c.Evaluate(context.Background(), EvaluationRequest{})

		var malErr *MalformedResponseError
		assert.True(t, errors.As(err, &malErr), "body %s: got %v", body, err)
	}
}

func TestEvaluate_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Evaluate(ctx, EvaluationRequest{})
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.ErrorIs(t, err, context.Canceled)
}
