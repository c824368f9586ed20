package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := Strategy("retrieval.EntityLinker", errors.New("boom"))

	k, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindStrategy, k)

	// Survives further wrapping.
	wrapped := fmt.Errorf("round 2: %w", err)
	k, ok = KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindStrategy, k)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestGraphCarriesSentinel(t *testing.T) {
	err := Graph("driver.GetNode", errors.New("dial tcp: connection refused"))

	assert.True(t, errors.Is(err, ErrGraphUnavailable))
	assert.True(t, IsTransient(err))
	assert.True(t, IsFatal(err))

	k, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindGraph, k)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(errors.New("request timeout after 30s")))
	assert.True(t, IsTransient(errors.New("429 too many requests")))
	assert.False(t, IsTransient(Analysis("analyze", ErrSchemaMismatch)))
	assert.False(t, IsTransient(nil))
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(Analysis("analyze", ErrSchemaMismatch)))
	assert.False(t, IsFatal(Strategy("retrieval.PathRetriever", errors.New("timeout"))))
	assert.True(t, IsFatal(Arbiter("arbiter.Arbitrate", ErrNoCandidates)))
	assert.False(t, IsFatal(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	err := Analysis("analyze.Analyze", ErrSchemaMismatch)
	assert.Equal(t, "analysis: analyze.Analyze: response does not conform to schema", err.Error())
}
