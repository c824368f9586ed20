package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
)

func TestRenderIntentWithRelation(t *testing.T) {
	query, params, ok := renderIntent(model.QueryIntent{
		NodeType: "Panel",
		Relation: "HAS_INTERNAL_MODULE",
	})
	require.True(t, ok)
	assert.Equal(t, "MATCH (n:Panel)-[r:HAS_INTERNAL_MODULE]->(m) RETURN n.id AS subject, type(r) AS predicate, m.id AS object LIMIT 50", query)
	assert.Empty(t, params)
}

func TestRenderIntentWithAttributes(t *testing.T) {
	query, params, ok := renderIntent(model.QueryIntent{
		NodeType:   "Panel",
		Attributes: map[string]interface{}{"capacity": 318, "voice": true},
	})
	require.True(t, ok)
	assert.Equal(t, "MATCH (n:Panel) WHERE n.capacity = $p0 AND n.voice = $p1 RETURN n.id AS subject LIMIT 50", query)
	assert.Equal(t, map[string]interface{}{"p0": 318, "p1": true}, params)
}

func TestRenderIntentRejectsUnknownTypes(t *testing.T) {
	_, _, ok := renderIntent(model.QueryIntent{NodeType: "Widget"})
	assert.False(t, ok)

	_, _, ok = renderIntent(model.QueryIntent{NodeType: "Panel", Relation: "EXPLODES_WITH"})
	assert.False(t, ok)

	// An injection-shaped attribute name is silently dropped, not formatted.
	query, params, ok := renderIntent(model.QueryIntent{
		NodeType:   "Panel",
		Attributes: map[string]interface{}{"x = 1 OR 1": 1},
	})
	require.True(t, ok)
	assert.Equal(t, "MATCH (n:Panel) RETURN n.id AS subject LIMIT 50", query)
	assert.Empty(t, params)
}

func TestStructuredQueryExecutorEmitsFactPerRow(t *testing.T) {
	graph := testGraph()
	graph.RowQueue = [][]map[string]interface{}{{
		{"subject": "4100ES", "predicate": "HAS_INTERNAL_MODULE", "object": "4100-1431"},
		{"subject": "4100ES", "predicate": "HAS_INTERNAL_MODULE", "object": "4100-1432"},
	}}
	exec := NewStructuredQueryExecutor(graph)

	analysis := model.AnalysisResult{Intents: []model.QueryIntent{
		{NodeType: "Panel", Relation: "HAS_INTERNAL_MODULE"},
	}}
	facts, err := exec.Execute(context.Background(), analysis, aggregate.NewContextSet())
	require.NoError(t, err)
	require.Len(t, facts, 2)

	assert.Equal(t, "4100ES", facts[0].Subject)
	assert.Equal(t, "HAS_INTERNAL_MODULE", facts[0].Predicate)
	assert.Equal(t, "4100-1431", facts[0].Object)
	// Base 0.8 plus the SKU-subject boost.
	assert.InDelta(t, 0.9, facts[0].Confidence, 1e-9)
}

func TestStructuredQueryExecutorPlainPattern(t *testing.T) {
	graph := testGraph()
	graph.RowQueue = [][]map[string]interface{}{{
		{"subject": "4010ES"},
	}}
	exec := NewStructuredQueryExecutor(graph)

	analysis := model.AnalysisResult{Intents: []model.QueryIntent{
		{NodeType: "Panel", Attributes: map[string]interface{}{"capacity": 318}},
	}}
	facts, err := exec.Execute(context.Background(), analysis, aggregate.NewContextSet())
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "IS_A", facts[0].Predicate)
	assert.Equal(t, "Panel", facts[0].Object)
}

func TestStructuredQueryExecutorSkipsInvalidIntents(t *testing.T) {
	graph := testGraph()
	exec := NewStructuredQueryExecutor(graph)

	analysis := model.AnalysisResult{Intents: []model.QueryIntent{
		{NodeType: "NotAType"},
		{Description: "free text only"},
	}}
	facts, err := exec.Execute(context.Background(), analysis, aggregate.NewContextSet())
	require.NoError(t, err)
	assert.Empty(t, facts)
	assert.Empty(t, graph.RanQuery)
}
