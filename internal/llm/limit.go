package llm

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/agenthands/pyrite/internal/metrics"
)

// LimitedClient bounds concurrent provider calls with a weighted semaphore
// and puts a timeout on each call. One instance is shared by every pipeline
// stage so upstream rate limits hold across concurrent queries.
type LimitedClient struct {
	inner   LLMClient
	sem     *semaphore.Weighted
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewLimitedClient(inner LLMClient, maxConcurrent int, timeout time.Duration, m *metrics.Metrics) *LimitedClient {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	return &LimitedClient{
		inner:   inner,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		timeout: timeout,
		metrics: m,
	}
}

func (c *LimitedClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	response, err := c.inner.Generate(callCtx, prompt)

	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveLLMCall(status, time.Since(start))

	return response, err
}
