package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
)

// MockLLM routes prompts through a responder function so the analyzer,
// baseline and enhanced calls can each answer differently. Safe for the
// concurrent strategy fan-out.
type MockLLM struct {
	mu      sync.Mutex
	Respond func(prompt string) (string, error)
	Calls   []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	m.mu.Unlock()
	return m.Respond(prompt)
}

// scriptedLLM answers the three prompt shapes the pipeline issues.
func scriptedLLM(analysisJSON, baseline, enhanced string) *MockLLM {
	return &MockLLM{Respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Identify product mentions"):
			return analysisJSON, nil
		case strings.Contains(prompt, "Verified evidence"):
			return enhanced, nil
		default:
			return baseline, nil
		}
	}}
}

// MockGraph is the in-memory GraphStore for controller tests.
type MockGraph struct {
	Nodes []model.Node
	Edges []model.Edge
	Err   error
}

func (m *MockGraph) GetNode(ctx context.Context, id string) (*model.Node, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Nodes {
		if strings.EqualFold(m.Nodes[i].ID, id) {
			return &m.Nodes[i], nil
		}
	}
	return nil, nil
}

func (m *MockGraph) GetEdges(ctx context.Context, nodeID string, edgeType string) ([]model.Edge, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var edges []model.Edge
	for _, e := range m.Edges {
		if !strings.EqualFold(e.SourceID, nodeID) && !strings.EqualFold(e.TargetID, nodeID) {
			continue
		}
		if edgeType != "" && string(e.Type) != edgeType {
			continue
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func (m *MockGraph) QueryByPattern(ctx context.Context, nodeType string, attrs map[string]interface{}) ([]model.Node, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var nodes []model.Node
	for _, n := range m.Nodes {
		if string(n.Type) == nodeType {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func (m *MockGraph) SearchNodes(ctx context.Context, term string, limit int) ([]model.Node, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	termLower := strings.ToLower(term)
	var nodes []model.Node
	for _, n := range m.Nodes {
		if strings.Contains(strings.ToLower(n.ID), termLower) ||
			strings.Contains(strings.ToLower(n.Name), termLower) {
			nodes = append(nodes, n)
			if len(nodes) >= limit {
				break
			}
		}
	}
	return nodes, nil
}

func (m *MockGraph) Paths(ctx context.Context, fromID string, depth int) ([]model.PathSegment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	edges, _ := m.GetEdges(ctx, fromID, "")
	var segments []model.PathSegment
	for _, e := range edges {
		seg := model.PathSegment{Edge: e, Depth: 1}
		far := e.TargetID
		if strings.EqualFold(far, fromID) {
			far = e.SourceID
		}
		if node, _ := m.GetNode(ctx, far); node != nil {
			seg.Node = node
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func (m *MockGraph) RunGuardedCypher(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return nil, nil
}

func (m *MockGraph) Stats(ctx context.Context) (model.GraphStats, error) {
	if m.Err != nil {
		return model.GraphStats{}, m.Err
	}
	stats := model.GraphStats{Nodes: map[string]int64{}, Edges: map[string]int64{}}
	for _, n := range m.Nodes {
		stats.Nodes[string(n.Type)]++
		stats.TotalNodes++
	}
	for _, e := range m.Edges {
		stats.Edges[string(e.Type)]++
		stats.TotalEdges++
	}
	return stats, nil
}

func (m *MockGraph) Close(ctx context.Context) error { return nil }

// deadlineAwareLLM fails like a real provider once its context is done.
type deadlineAwareLLM struct {
	inner *MockLLM
}

func (d *deadlineAwareLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.inner.Generate(ctx, prompt)
}

// slowStrategy delivers its facts only after the delay has passed.
type slowStrategy struct {
	delay time.Duration
	facts []model.Fact
}

func (s slowStrategy) Name() string            { return "entity_linking" }
func (s slowStrategy) BaseConfidence() float64 { return 0.9 }

func (s slowStrategy) Execute(ctx context.Context, analysis model.AnalysisResult, current *aggregate.ContextSet) ([]model.Fact, error) {
	time.Sleep(s.delay)
	return s.facts, nil
}

// failingStrategy stands in for a strategy whose upstream calls time out.
type failingStrategy struct {
	name string
	err  error
}

func (f failingStrategy) Name() string            { return f.name }
func (f failingStrategy) BaseConfidence() float64 { return 0.9 }

func (f failingStrategy) Execute(ctx context.Context, analysis model.AnalysisResult, current *aggregate.ContextSet) ([]model.Fact, error) {
	return nil, f.err
}
