// Package core drives the iterative retrieval loop: analyze the query, run
// every strategy against the graph, merge the evidence, repeat until a round
// adds nothing new or the cap is hit, then arbitrate between the baseline
// and graph-enhanced answers.
package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/pyrite/internal/config"
	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/analyze"
	"github.com/agenthands/pyrite/internal/core/arbiter"
	"github.com/agenthands/pyrite/internal/core/boq"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/core/relevance"
	"github.com/agenthands/pyrite/internal/core/retrieval"
	"github.com/agenthands/pyrite/internal/driver"
	"github.com/agenthands/pyrite/internal/errs"
	"github.com/agenthands/pyrite/internal/llm"
	"github.com/agenthands/pyrite/internal/metrics"
)

// State is one position of the iteration controller's state machine.
type State string

const (
	StateInit        State = "INIT"
	StateRetrieving  State = "RETRIEVING"
	StateAggregating State = "AGGREGATING"
	StateConverged   State = "CONVERGED"
	StateMaxIter     State = "MAX_ITER"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// arbitrationTimeout bounds the answer-generation phase when it runs
// detached from an already-expired query deadline.
const arbitrationTimeout = 30 * time.Second

// Engine owns one query's orchestration end to end. It is safe for
// concurrent use; all per-query state lives on the stack of GenerateAnswer.
type Engine struct {
	Store      driver.GraphStore
	Analyzer   *analyze.Analyzer
	Strategies []retrieval.Strategy
	Arbiter    *arbiter.Arbiter
	Scorer     *relevance.Scorer
	Config     config.RetrievalConfig
	Metrics    *metrics.Metrics
}

func NewEngine(store driver.GraphStore, llmClient llm.LLMClient, embedder llm.EmbedderClient, cfg config.RetrievalConfig, m *metrics.Metrics) *Engine {
	return &Engine{
		Store:      store,
		Analyzer:   analyze.NewAnalyzer(llmClient),
		Strategies: retrieval.DefaultStrategies(store, cfg),
		Arbiter:    arbiter.NewArbiter(llmClient),
		Scorer:     relevance.NewScorer(cfg.MinRelevance, embedder),
		Config:     cfg,
		Metrics:    m,
	}
}

// GenerateAnswer answers one query. maxIterations <= 0 falls back to the
// configured cap.
func (e *Engine) GenerateAnswer(ctx context.Context, query string, maxIterations int) (*model.Result, error) {
	result, _, err := e.generate(ctx, query, maxIterations)
	return result, err
}

// GraphStats reads the node/edge census straight from the store, bypassing
// the orchestrator.
func (e *Engine) GraphStats(ctx context.Context) (model.GraphStats, error) {
	return e.Store.Stats(ctx)
}

// SearchNodes is the fuzzy node search behind the search endpoint.
func (e *Engine) SearchNodes(ctx context.Context, term string, limit int) ([]model.Node, error) {
	return e.Store.SearchNodes(ctx, term, limit)
}

// generate runs the state machine and also returns the traversed states.
func (e *Engine) generate(ctx context.Context, query string, maxIterations int) (*model.Result, []State, error) {
	start := time.Now()
	requestID := uuid.New().String()
	logger := slog.With("request_id", requestID)

	if maxIterations <= 0 {
		maxIterations = e.Config.MaxIterations
	}
	if maxIterations <= 0 {
		maxIterations = 3
	}
	if timeout := e.Config.QueryTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.InfoContext(ctx, "query started", "query", query, "max_iterations", maxIterations)

	states := []State{StateInit}
	cs := aggregate.NewContextSet()
	var records []model.IterationRecord
	terminal := StateMaxIter

	for round := 1; ; round++ {
		if round > maxIterations {
			terminal = StateMaxIter
			break
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				// Deadline mid-loop: finish with whatever context exists.
				logger.WarnContext(ctx, "query deadline hit mid-loop", "round", round)
				terminal = StateMaxIter
				break
			}
			e.Metrics.ObserveQuery("none", "canceled", time.Since(start), len(records))
			return nil, append(states, StateFailed), err
		}

		states = append(states, StateRetrieving)
		roundStart := time.Now()

		analysis, analysisErr := e.Analyzer.Analyze(ctx, query, cs)
		if analysisErr != nil {
			// Degraded analysis stops iterating after this round; it never
			// fails the query.
			logger.WarnContext(ctx, "analysis degraded", "round", round, "error", analysisErr)
		}

		batch, fatal := e.runStrategies(ctx, analysis, cs, round, logger)
		if fatal != nil {
			e.Metrics.ObserveQuery("none", "error", time.Since(start), len(records))
			return nil, append(states, StateFailed), errs.Graph("core.generate", fatal)
		}
		batch = e.Scorer.Filter(ctx, query, batch)

		states = append(states, StateAggregating)
		newFacts := cs.Merge(batch)
		records = append(records, model.IterationRecord{
			Index:      round,
			NewFacts:   newFacts,
			TotalFacts: cs.Size(),
			Elapsed:    time.Since(roundStart),
		})
		e.Metrics.ObserveRound(newFacts)
		logger.InfoContext(ctx, "round complete",
			"round", round, "new_facts", newFacts, "total_facts", cs.Size())

		if newFacts == 0 || !analysis.Continue {
			terminal = StateConverged
			break
		}
	}

	states = append(states, terminal)
	cs.Freeze()
	logger.InfoContext(ctx, "retrieval finished",
		"terminal", terminal, "rounds", len(records), "facts", cs.Size())

	// When the retrieval deadline fired mid-loop, arbitration still has to
	// turn the frozen context into a best-effort answer. It gets its own
	// budget, detached from the expired deadline; a caller cancellation has
	// already returned above.
	arbCtx := ctx
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var cancelArb context.CancelFunc
		arbCtx, cancelArb = context.WithTimeout(context.WithoutCancel(ctx), arbitrationTimeout)
		defer cancelArb()
	}

	sel, err := e.Arbiter.Arbitrate(arbCtx, query, cs)
	if err != nil {
		e.Metrics.ObserveQuery("none", "error", time.Since(start), len(records))
		return nil, append(states, StateFailed), err
	}
	states = append(states, StateDone)

	result := &model.Result{
		RequestID:       requestID,
		Query:           query,
		Answer:          boq.Prose(sel.Selected.Text),
		BOQ:             boq.Extract(sel.Selected.Text),
		SupportingFacts: cs.Facts(),
		Iterations:      records,
		BaselineScore:   sel.BaselineScore(),
		EnhancedScore:   sel.EnhancedScore(),
		SelectedOrigin:  sel.Selected.Origin,
		Elapsed:         time.Since(start),
	}
	e.Metrics.ObserveQuery(string(result.SelectedOrigin), "ok", result.Elapsed, len(records))
	logger.InfoContext(ctx, "query answered",
		"selected_origin", result.SelectedOrigin,
		"baseline_score", result.BaselineScore,
		"enhanced_score", result.EnhancedScore,
		"elapsed", result.Elapsed)
	return result, states, nil
}

// runStrategies fans the strategy set out concurrently and collects each
// batch in strategy order. A single strategy failing is absorbed; a graph
// outage is the one failure that aborts the query.
func (e *Engine) runStrategies(ctx context.Context, analysis model.AnalysisResult, cs *aggregate.ContextSet, round int, logger *slog.Logger) ([]model.Fact, error) {
	results := make([][]model.Fact, len(e.Strategies))
	var mu sync.Mutex
	var fatal error

	var g errgroup.Group
	for i, s := range e.Strategies {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			facts, err := s.Execute(ctx, analysis, cs)
			if err != nil {
				e.Metrics.StrategyFailure(s.Name())
				logger.WarnContext(ctx, "strategy failed",
					"strategy", s.Name(), "round", round, "error", err)
				if errors.Is(err, errs.ErrGraphUnavailable) {
					mu.Lock()
					if fatal == nil {
						fatal = err
					}
					mu.Unlock()
				}
				return nil
			}
			for fi := range facts {
				facts[fi].Iteration = round
			}
			e.Metrics.ObserveStrategy(s.Name(), len(facts))
			results[i] = facts
			return nil
		})
	}
	_ = g.Wait()

	if fatal != nil {
		return nil, fatal
	}
	var batch []model.Fact
	for _, facts := range results {
		batch = append(batch, facts...)
	}
	return batch, nil
}
