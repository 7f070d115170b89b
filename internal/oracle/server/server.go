// Package server exposes an oracle.Oracle over HTTP using the same JSON
// envelopes the knowledge-check client expects.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ignite/kcheck/internal/oracle"
)

// maxBodyBytes caps request bodies. Lesson context is the bulk of a request.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// RatePerMinute is the sustained request rate allowed per client.
	// Zero disables rate limiting.
	RatePerMinute int

	// Burst is the per-client bucket size. Defaults to RatePerMinute.
	Burst int

	// Registry receives the server metrics. A private registry is created
	// when nil.
	Registry *prometheus.Registry

	Log *zap.Logger
}

// Server is an http.Handler serving the Oracle endpoints plus /healthz and
// /metrics.
type Server struct {
	oracle  oracle.Oracle
	log     *zap.Logger
	metrics *metrics
	router  chi.Router
}

// New builds the router for o.
func New(o oracle.Oracle, opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		oracle:  o,
		log:     log,
		metrics: newMetrics(opts.Registry),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Group(func(r chi.Router) {
		if opts.RatePerMinute > 0 {
			r.Use(newLimiter(opts.RatePerMinute, opts.Burst).middleware)
		}
		r.Post(oracle.QuestionPath, s.handleQuestion)
		r.Post(oracle.EvaluatePath, s.handleEvaluate)
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req oracle.QuestionRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure(err.Error()))
		return
	}
	if strings.TrimSpace(req.LessonContext) == "" || req.QuestionNumber < 1 {
		writeJSON(w, http.StatusBadRequest, failure("lessonContext and questionNumber are required"))
		return
	}

	question, err := s.oracle.NextQuestion(r.Context(), req)
	if err != nil {
		s.fail(w, r, "question", err)
		return
	}

	ok := true
	writeJSON(w, http.StatusOK, oracle.QuestionResponse{Success: &ok, Question: question})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req oracle.EvaluationRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure(err.Error()))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, failure("question is required"))
		return
	}

	ev, err := s.oracle.Evaluate(r.Context(), req)
	if err == nil && ev == nil {
		err = &oracle.MalformedResponseError{Op: "evaluate", Err: oracle.ErrNoEvaluation}
	}
	if err != nil {
		s.fail(w, r, "evaluate", err)
		return
	}

	ok := true
	writeJSON(w, http.StatusOK, oracle.EvaluateResponse{
		Success:   &ok,
		IsCorrect: &ev.IsCorrect,
		Feedback:  &ev.Feedback,
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := oracle.Kind(err)
	s.metrics.failures.WithLabelValues(op, kind).Inc()
	s.log.Error("oracle call failed",
		zap.String("op", op),
		zap.String("kind", kind),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, failure(err.Error()))
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func failure(msg string) errorResponse {
	return errorResponse{Success: false, Error: msg}
}

var errEmptyBody = errors.New("request body is empty")

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
