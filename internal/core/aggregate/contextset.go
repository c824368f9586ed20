// Package aggregate owns the ContextSet: the deduplicated, ranked
// accumulation of facts across retrieval rounds. It is the single writer in
// the pipeline; strategies hand it completed batches call-and-return.
package aggregate

import (
	"sort"
	"strings"

	"github.com/agenthands/pyrite/internal/core/model"
)

// ContextSet accumulates facts across rounds. Not safe for concurrent
// mutation; the iteration controller merges between rounds, never during
// strategy execution.
type ContextSet struct {
	facts  []model.Fact
	index  map[string]int
	frozen bool
}

func NewContextSet() *ContextSet {
	return &ContextSet{index: map[string]int{}}
}

// Merge folds a batch of facts into the set and returns how many were new.
// Duplicate keys keep the higher-confidence instance; ties keep the one
// already stored. The set is re-sorted by (confidence desc, iteration asc)
// with a stable sort, so equal entries never swap between rounds.
func (cs *ContextSet) Merge(batch []model.Fact) int {
	if cs.frozen {
		return 0
	}

	newFacts := 0
	for _, f := range batch {
		key := f.Key()
		if pos, ok := cs.index[key]; ok {
			if f.Confidence > cs.facts[pos].Confidence {
				cs.facts[pos] = f
			}
			continue
		}
		cs.index[key] = len(cs.facts)
		cs.facts = append(cs.facts, f)
		newFacts++
	}

	sort.SliceStable(cs.facts, func(i, j int) bool {
		if cs.facts[i].Confidence != cs.facts[j].Confidence {
			return cs.facts[i].Confidence > cs.facts[j].Confidence
		}
		return cs.facts[i].Iteration < cs.facts[j].Iteration
	})
	for i, f := range cs.facts {
		cs.index[f.Key()] = i
	}

	return newFacts
}

// Freeze stops further growth. Called once at loop termination, before the
// set is handed to the arbiter.
func (cs *ContextSet) Freeze() {
	cs.frozen = true
}

func (cs *ContextSet) Frozen() bool {
	return cs.frozen
}

func (cs *ContextSet) Size() int {
	return len(cs.facts)
}

// Contains reports whether a fact with the same identity key is already
// stored.
func (cs *ContextSet) Contains(f model.Fact) bool {
	_, ok := cs.index[f.Key()]
	return ok
}

// Facts returns the ranked facts. The returned slice is a copy; callers
// cannot disturb the ordering contract.
func (cs *ContextSet) Facts() []model.Fact {
	out := make([]model.Fact, len(cs.facts))
	copy(out, cs.facts)
	return out
}

// LinkedEntities returns the distinct graph node IDs that entity linking has
// resolved so far, in ranking order. Context-aware strategies expand from
// these.
func (cs *ContextSet) LinkedEntities() []string {
	seen := map[string]bool{}
	var ids []string
	for _, f := range cs.facts {
		if !strings.EqualFold(f.Predicate, model.PredicateLinksTo) {
			continue
		}
		key := strings.ToLower(f.Object)
		if seen[key] {
			continue
		}
		seen[key] = true
		ids = append(ids, f.Object)
	}
	return ids
}
