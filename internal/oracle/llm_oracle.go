package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ignite/kcheck/internal/llm"
)

// LLM purposes recorded with every request event.
const (
	PurposeQuestion = "kc-question"
	PurposeEvaluate = "kc-evaluate"
)

// LLMConfig tunes the LLM-backed Oracle.
type LLMConfig struct {
	QuestionMaxTokens   int
	EvaluationMaxTokens int
	Temperature         float64
}

// DefaultLLMConfig returns the token budgets used by the hosted service.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		QuestionMaxTokens:   256,
		EvaluationMaxTokens: 512,
		Temperature:         0.7,
	}
}

// LLMOracle implements Oracle directly on top of an llm.Provider.
type LLMOracle struct {
	provider llm.Provider
	config   LLMConfig
}

var _ Oracle = (*LLMOracle)(nil)

// NewLLMOracle creates an Oracle that prompts provider.
func NewLLMOracle(provider llm.Provider, cfg LLMConfig) *LLMOracle {
	return &LLMOracle{provider: provider, config: cfg}
}

type questionOutput struct {
	Question string `json:"question"`
}

type evaluationOutput struct {
	IsCorrect *bool  `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

func (o *LLMOracle) NextQuestion(ctx context.Context, req QuestionRequest) (string, error) {
	const op = "next-question"
	resp, err := o.provider.Generate(ctx, llm.Request{
		System: buildQuestionSystem(req),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuestionUser(req)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   o.config.QuestionMaxTokens,
		Temperature: o.config.Temperature,
		Purpose:     PurposeQuestion,
	})
	if err != nil {
		return "", classifyLLMError(op, err)
	}

	var out questionOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", &MalformedResponseError{Op: op, Err: err}
	}

	q := strings.TrimSpace(out.Question)
	if q == "" {
		return "", &MalformedResponseError{Op: op, Err: errors.New("empty question")}
	}
	return q, nil
}

func (o *LLMOracle) Evaluate(ctx context.Context, req EvaluationRequest) (*Evaluation, error) {
	const op = "evaluate"
	resp, err := o.provider.Generate(ctx, llm.Request{
		System: buildEvaluationSystem(req),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: evaluationUser},
		},
		Schema:    EvaluationSchema,
		MaxTokens: o.config.EvaluationMaxTokens,
		Purpose:   PurposeEvaluate,
	})
	if err != nil {
		return nil, classifyLLMError(op, err)
	}

	var out evaluationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &MalformedResponseError{Op: op, Err: err}
	}
	if out.IsCorrect == nil {
		return nil, &MalformedResponseError{Op: op, Err: errors.New("missing isCorrect")}
	}

	return &Evaluation{
		IsCorrect: *out.IsCorrect,
		Feedback:  flattenFeedback(out.Feedback),
	}, nil
}

// classifyLLMError maps provider failures onto the Oracle taxonomy.
func classifyLLMError(op string, err error) error {
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		return &MalformedResponseError{Op: op, Err: err}
	}
	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		return &MalformedResponseError{Op: op, Err: err}
	}
	return &NetworkError{Op: op, Err: err}
}

// flattenFeedback joins feedback onto a single line.
func flattenFeedback(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
