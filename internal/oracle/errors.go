package oracle

import (
	"errors"
	"fmt"
)

// NetworkError indicates the Oracle could not be reached or answered with a
// non-success HTTP status.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("oracle %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("oracle %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ErrNoEvaluation is wrapped in a MalformedResponseError when an Oracle
// reports success but hands back no evaluation.
var ErrNoEvaluation = errors.New("oracle returned no evaluation")

// MalformedResponseError indicates the Oracle answered but the body could not
// be used: undecodable, success missing or false, or required fields absent.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("oracle %s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Kind classifies err for logging: "network", "malformed" or "other".
func Kind(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "network"
	}
	var malErr *MalformedResponseError
	if errors.As(err, &malErr) {
		return "malformed"
	}
	return "other"
}
