package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single Oracle call when none is configured.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// HTTPClient is an Oracle backed by the knowledge-check HTTP endpoints.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

var _ Oracle = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the service at baseURL. A zero timeout
// selects DefaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) NextQuestion(ctx context.Context, req QuestionRequest) (string, error) {
	const op = "next-question"

	if req.PreviousQA == nil {
		req.PreviousQA = []QA{}
	}

	var resp QuestionResponse
	if err := c.post(ctx, op, QuestionPath, req, &resp); err != nil {
		return "", err
	}
	if err := checkSuccess(op, resp.Success, resp.Error); err != nil {
		return "", err
	}

	q := strings.TrimSpace(resp.Question)
	if q == "" {
		return "", &MalformedResponseError{Op: op, Err: errors.New("missing question")}
	}
	return q, nil
}

func (c *HTTPClient) Evaluate(ctx context.Context, req EvaluationRequest) (*Evaluation, error) {
	const op = "evaluate"

	var resp EvaluateResponse
	if err := c.post(ctx, op, EvaluatePath, req, &resp); err != nil {
		return nil, err
	}
	if err := checkSuccess(op, resp.Success, resp.Error); err != nil {
		return nil, err
	}

	if resp.IsCorrect == nil {
		return nil, &MalformedResponseError{Op: op, Err: errors.New("missing isCorrect")}
	}
	if resp.Feedback == nil {
		return nil, &MalformedResponseError{Op: op, Err: errors.New("missing feedback")}
	}

	return &Evaluation{
		IsCorrect: *resp.IsCorrect,
		Feedback:  *resp.Feedback,
	}, nil
}

// post sends body as JSON to path and decodes the response into out.
func (c *HTTPClient) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return &NetworkError{
			Op:         op,
			StatusCode: httpResp.StatusCode,
			Err:        errors.New(errorMessage(raw, httpResp.Status)),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedResponseError{Op: op, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

func checkSuccess(op string, success *bool, msg string) error {
	if success == nil {
		return &MalformedResponseError{Op: op, Err: errors.New("missing success flag")}
	}
	if !*success {
		if msg == "" {
			msg = "success=false"
		}
		return &MalformedResponseError{Op: op, Err: errors.New(msg)}
	}
	return nil
}

// errorMessage extracts the "error" field of a failure envelope, falling
// back to the HTTP status text.
func errorMessage(raw []byte, status string) string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return status
}
