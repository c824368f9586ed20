package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/pyrite/internal/core/model"
)

func fact(s, p, o string, conf float64, iter int) model.Fact {
	return model.Fact{
		Subject:    s,
		Predicate:  p,
		Object:     o,
		Strategy:   "test",
		Confidence: conf,
		Iteration:  iter,
	}
}

func TestMergeDedupIdempotence(t *testing.T) {
	batch := []model.Fact{
		fact("4100ES", "HAS_INTERNAL_MODULE", "4100-1431", 0.9, 1),
		fact("4100ES", "COMPATIBLE_WITH", "4090-9001", 0.7, 1),
	}

	cs := NewContextSet()
	assert.Equal(t, 2, cs.Merge(batch))
	once := cs.Facts()

	assert.Equal(t, 0, cs.Merge(batch))
	assert.Equal(t, once, cs.Facts())
}

func TestMergeKeyNormalization(t *testing.T) {
	cs := NewContextSet()
	cs.Merge([]model.Fact{fact("4100ES", "HAS_INTERNAL_MODULE", "4100-1431", 0.9, 1)})

	// Same triple with different case and spacing is the same fact.
	added := cs.Merge([]model.Fact{fact("  4100es ", "has_internal_module", "4100-1431  ", 0.5, 2)})
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, cs.Size())
}

func TestMergeMonotonicGrowth(t *testing.T) {
	cs := NewContextSet()
	prev := 0
	rounds := [][]model.Fact{
		{fact("a", "r", "b", 0.9, 1), fact("b", "r", "c", 0.8, 1)},
		{fact("a", "r", "b", 0.9, 2)},
		{},
		{fact("c", "r", "d", 0.6, 4)},
	}
	for _, batch := range rounds {
		cs.Merge(batch)
		assert.GreaterOrEqual(t, cs.Size(), prev)
		prev = cs.Size()
	}
}

func TestMergeConfidenceTieBreak(t *testing.T) {
	low := fact("4100ES", "COMPATIBLE_WITH", "4090-9001", 0.6, 1)
	high := fact("4100ES", "COMPATIBLE_WITH", "4090-9001", 0.9, 2)

	for _, order := range [][]model.Fact{{low, high}, {high, low}} {
		cs := NewContextSet()
		for _, f := range order {
			cs.Merge([]model.Fact{f})
		}
		require.Equal(t, 1, cs.Size())
		assert.Equal(t, 0.9, cs.Facts()[0].Confidence)
	}
}

func TestMergeEqualConfidenceKeepsStored(t *testing.T) {
	first := fact("a", "r", "b", 0.8, 1)
	second := fact("a", "r", "b", 0.8, 3)
	second.Strategy = "later"

	cs := NewContextSet()
	cs.Merge([]model.Fact{first})
	cs.Merge([]model.Fact{second})

	require.Equal(t, 1, cs.Size())
	assert.Equal(t, "test", cs.Facts()[0].Strategy)
	assert.Equal(t, 1, cs.Facts()[0].Iteration)
}

func TestRankingOrder(t *testing.T) {
	cs := NewContextSet()
	cs.Merge([]model.Fact{
		fact("c", "r", "d", 0.6, 1),
		fact("a", "r", "b", 0.9, 1),
	})
	cs.Merge([]model.Fact{
		fact("e", "r", "f", 0.9, 2),
		fact("g", "r", "h", 0.7, 2),
	})

	facts := cs.Facts()
	require.Len(t, facts, 4)
	// Confidence desc, then iteration asc.
	assert.Equal(t, "a", facts[0].Subject)
	assert.Equal(t, "e", facts[1].Subject)
	assert.Equal(t, "g", facts[2].Subject)
	assert.Equal(t, "c", facts[3].Subject)
}

func TestRankingStability(t *testing.T) {
	cs := NewContextSet()
	batch := []model.Fact{
		fact("a", "r", "b", 0.8, 1),
		fact("c", "r", "d", 0.8, 1),
		fact("e", "r", "f", 0.8, 1),
	}
	cs.Merge(batch)
	before := cs.Facts()

	// Re-merging nothing new must reproduce the identical order.
	assert.Equal(t, 0, cs.Merge(batch))
	assert.Equal(t, before, cs.Facts())
	assert.Equal(t, 0, cs.Merge(nil))
	assert.Equal(t, before, cs.Facts())
}

func TestFrozenSetRejectsMerge(t *testing.T) {
	cs := NewContextSet()
	cs.Merge([]model.Fact{fact("a", "r", "b", 0.9, 1)})
	cs.Freeze()

	assert.Equal(t, 0, cs.Merge([]model.Fact{fact("x", "r", "y", 0.9, 2)}))
	assert.Equal(t, 1, cs.Size())
	assert.True(t, cs.Frozen())
}

func TestLinkedEntities(t *testing.T) {
	cs := NewContextSet()
	cs.Merge([]model.Fact{
		fact("the 4100 panel", model.PredicateLinksTo, "4100ES", 0.9, 1),
		fact("smoke detector", model.PredicateLinksTo, "4090-9001", 0.9, 1),
		fact("4100ES", "COMPATIBLE_WITH", "4090-9001", 0.7, 1),
		fact("another mention", model.PredicateLinksTo, "4100es", 0.8, 2),
	})

	assert.Equal(t, []string{"4100ES", "4090-9001"}, cs.LinkedEntities())
}
