package retrieval

import (
	"context"
	"strings"

	"github.com/agenthands/pyrite/internal/core/model"
)

// MockGraph is an in-memory GraphStore backed by plain slices. Err, when
// set, fails every call; ErrOn fails only the named method.
type MockGraph struct {
	Nodes []model.Node
	Edges []model.Edge

	Err      error
	ErrOn    string
	RanQuery string
	RowQueue [][]map[string]interface{}
}

func (m *MockGraph) fail(method string) error {
	if m.Err != nil && (m.ErrOn == "" || m.ErrOn == method) {
		return m.Err
	}
	return nil
}

func (m *MockGraph) GetNode(ctx context.Context, id string) (*model.Node, error) {
	if err := m.fail("GetNode"); err != nil {
		return nil, err
	}
	for i := range m.Nodes {
		if strings.EqualFold(m.Nodes[i].ID, id) {
			return &m.Nodes[i], nil
		}
	}
	return nil, nil
}

func (m *MockGraph) GetEdges(ctx context.Context, nodeID string, edgeType string) ([]model.Edge, error) {
	if err := m.fail("GetEdges"); err != nil {
		return nil, err
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
	if err := m.fail("QueryByPattern"); err != nil {
		return nil, err
	}
	var nodes []model.Node
	for _, n := range m.Nodes {
		if string(n.Type) != nodeType {
			continue
		}
		match := true
		for k, v := range attrs {
			if n.Attributes[k] != v {
				match = false
				break
			}
		}
		if match {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func (m *MockGraph) SearchNodes(ctx context.Context, term string, limit int) ([]model.Node, error) {
	if err := m.fail("SearchNodes"); err != nil {
		return nil, err
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
	if err := m.fail("Paths"); err != nil {
		return nil, err
	}

	visited := map[string]bool{strings.ToLower(fromID): true}
	frontier := []string{fromID}

	var segments []model.PathSegment
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []string
		for _, id := range frontier {
			edges, _ := m.GetEdges(ctx, id, "")
			for _, e := range edges {
				far := e.TargetID
				if strings.EqualFold(far, id) {
					far = e.SourceID
				}
				seg := model.PathSegment{Edge: e, Depth: d}
				if node, _ := m.GetNode(ctx, far); node != nil {
					seg.Node = node
				}
				segments = append(segments, seg)
				if !visited[strings.ToLower(far)] {
					visited[strings.ToLower(far)] = true
					next = append(next, far)
				}
			}
		}
		frontier = next
	}
	return segments, nil
}

func (m *MockGraph) RunGuardedCypher(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	if err := m.fail("RunGuardedCypher"); err != nil {
		return nil, err
	}
	m.RanQuery = query
	if len(m.RowQueue) == 0 {
		return nil, nil
	}
	rows := m.RowQueue[0]
	m.RowQueue = m.RowQueue[1:]
	return rows, nil
}

func (m *MockGraph) Stats(ctx context.Context) (model.GraphStats, error) {
	if err := m.fail("Stats"); err != nil {
		return model.GraphStats{}, err
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
