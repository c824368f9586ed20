package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
)

func TestPathRetrieverExpandsTwoHops(t *testing.T) {
	graph := testGraph()
	// Second hop off the smoke detector.
	graph.Nodes = append(graph.Nodes, model.Node{ID: "4098-9792", Type: model.NodeBase, Name: "Detector Base"})
	graph.Edges = append(graph.Edges, model.Edge{
		SourceID: "4090-9001", TargetID: "4098-9792", Type: model.EdgeRequiresBase,
	})
	r := NewPathRetriever(graph)

	facts, err := r.Execute(context.Background(), model.AnalysisResult{}, linkedContext("4100ES"))
	require.NoError(t, err)

	var predicates []string
	for _, f := range facts {
		predicates = append(predicates, f.Predicate)
	}
	assert.Contains(t, predicates, "HAS_INTERNAL_MODULE")
	assert.Contains(t, predicates, "REQUIRES_BASE")
}

func TestPathRetrieverSkipsKnownHops(t *testing.T) {
	r := NewPathRetriever(testGraph())

	cs := linkedContext("4100ES")
	cs.Merge([]model.Fact{{
		Subject:    "4100ES",
		Predicate:  "HAS_INTERNAL_MODULE",
		Object:     "4100-1431",
		Strategy:   "triplet_retrieval",
		Confidence: 0.7,
		Iteration:  1,
	}})

	facts, err := r.Execute(context.Background(), model.AnalysisResult{}, cs)
	require.NoError(t, err)
	for _, f := range facts {
		assert.False(t, f.Subject == "4100ES" && f.Object == "4100-1431",
			"hop already in context must not be re-emitted")
	}
}

func TestPathRetrieverNothingLinked(t *testing.T) {
	r := NewPathRetriever(testGraph())

	facts, err := r.Execute(context.Background(), model.AnalysisResult{EntityMentions: []string{"4100ES"}}, aggregate.NewContextSet())
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestDefaultStrategiesOrderAndConfidence(t *testing.T) {
	strategies := DefaultStrategies(testGraph(), retrievalCfg())
	require.Len(t, strategies, 4)

	assert.Equal(t, "entity_linking", strategies[0].Name())
	assert.Equal(t, 0.9, strategies[0].BaseConfidence())
	assert.Equal(t, "cypher_retrieval", strategies[1].Name())
	assert.Equal(t, 0.8, strategies[1].BaseConfidence())
	assert.Equal(t, "triplet_retrieval", strategies[2].Name())
	assert.Equal(t, 0.7, strategies[2].BaseConfidence())
	assert.Equal(t, "path_retrieval", strategies[3].Name())
	assert.Equal(t, 0.6, strategies[3].BaseConfidence())
}
