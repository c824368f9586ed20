// Package errs classifies failures of the retrieval pipeline so callers can
// tell "retry later" from "this query cannot be answered".
package errs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which stage of the pipeline produced an error.
type Kind int

const (
	// KindAnalysis covers malformed or unreachable completions during query
	// analysis. Retried once by the analyzer, then degraded; never fatal.
	KindAnalysis Kind = iota
	// KindStrategy covers a single retrieval strategy failing. The round
	// continues with the remaining strategies.
	KindStrategy
	// KindGraph covers an unreachable graph store. Fatal for the query.
	KindGraph
	// KindArbiter covers both answer generations failing. Fatal for the query.
	KindArbiter
)

func (k Kind) String() string {
	switch k {
	case KindAnalysis:
		return "analysis"
	case KindStrategy:
		return "strategy"
	case KindGraph:
		return "graph"
	case KindArbiter:
		return "arbiter"
	default:
		return "unknown"
	}
}

// Sentinel errors for conditions callers branch on.
var (
	ErrGraphUnavailable = errors.New("graph store unavailable")
	ErrSchemaMismatch   = errors.New("response does not conform to schema")
	ErrNoCandidates     = errors.New("no answer candidate could be generated")
	ErrForbiddenQuery   = errors.New("query contains forbidden write clause")
)

// Error wraps a failure with its pipeline kind and the operation that hit it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Analysis(op string, err error) error {
	return &Error{Kind: KindAnalysis, Op: op, Err: err}
}

func Strategy(op string, err error) error {
	return &Error{Kind: KindStrategy, Op: op, Err: err}
}

func Graph(op string, err error) error {
	return &Error{Kind: KindGraph, Op: op, Err: fmt.Errorf("%w: %w", ErrGraphUnavailable, err)}
}

func Arbiter(op string, err error) error {
	return &Error{Kind: KindArbiter, Op: op, Err: err}
}

// KindOf reports the pipeline kind of err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsTransient reports whether the caller should retry the whole query later:
// infrastructure outages and timeouts, not malformed model output.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrGraphUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection", "unavailable", "rate limit", "too many requests"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// IsFatal reports whether the query failed outright rather than degrading.
func IsFatal(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	return k == KindGraph || k == KindArbiter
}
