// Package fault classifies the failures of calls to external providers so that
// call sites can decide how to degrade without string matching.
package fault

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrNetwork marks a request that failed in transport or returned non-2xx.
	ErrNetwork = errors.New("network error")
	// ErrFormat marks a response that lacked the JSON fields we expect.
	ErrFormat = errors.New("format error")
	// ErrValidation marks input rejected before any request was made.
	ErrValidation = errors.New("validation error")
)

// Error wraps an underlying error with its kind and the operation that failed.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Network wraps err as a network fault for op.
func Network(op string, err error) error {
	return &Error{Kind: ErrNetwork, Op: op, Err: err}
}

// Format wraps err as a format fault for op.
func Format(op string, err error) error {
	return &Error{Kind: ErrFormat, Op: op, Err: err}
}

// Validation reports rejected input for op.
func Validation(op, msg string) error {
	return &Error{Kind: ErrValidation, Op: op, Err: errors.New(msg)}
}

const maxBodyExcerpt = 512

// Status converts a non-2xx response into a network fault. It returns nil for
// 2xx responses and leaves the body unread in that case.
func Status(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
	return Network(op, fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
}
