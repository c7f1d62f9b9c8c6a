// ABOUTME: Error taxonomy for entity services
// ABOUTME: Not-found, remote failures by kind, and cascade saga failures
package services

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("record not found")

// NotFoundError names the entity that was missing.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Kind classifies a RemoteError.
type Kind int

const (
	// KindTransport means no response arrived.
	KindTransport Kind = iota
	// KindRejected means the backend answered Success=false for the whole call.
	KindRejected
	// KindRow means the call succeeded but a row-level result failed.
	KindRow
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindRow:
		return "row"
	}
	return "unknown"
}

// RemoteError is the single failure contract for every service operation
// that reaches the backend.
type RemoteError struct {
	Op      string
	Entity  string
	Kind    Kind
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("failed to %s %s", e.Op, e.Entity)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a RemoteError of kind k.
func IsKind(err error, k Kind) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == k
}

// CascadeError reports which saga step failed and whether compensation
// restored the records already changed.
type CascadeError struct {
	Saga            string
	Step            string
	Err             error
	Compensated     int
	CompensationErr error
}

func (e *CascadeError) Error() string {
	msg := fmt.Sprintf("%s: step %q failed: %v", e.Saga, e.Step, e.Err)
	if e.CompensationErr != nil {
		msg += fmt.Sprintf(" (compensation failed after %d steps: %v)", e.Compensated, e.CompensationErr)
	}
	return msg
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
