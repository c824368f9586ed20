package retrieval

import (
	"context"

	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/driver"
	"github.com/agenthands/pyrite/internal/errs"
)

const (
	pathDepth       = 2
	maxPathEntities = 10
	maxPathSegments = 100
)

// PathRetriever expands multi-hop paths outward from entities the context
// already links, one fact per traversed hop. It is the only context-aware
// strategy: with nothing linked yet it has nothing to expand.
type PathRetriever struct {
	store driver.GraphStore
}

func NewPathRetriever(store driver.GraphStore) *PathRetriever {
	return &PathRetriever{store: store}
}

func (r *PathRetriever) Name() string            { return "path_retrieval" }
func (r *PathRetriever) BaseConfidence() float64 { return PathConfidence }

func (r *PathRetriever) Execute(ctx context.Context, analysis model.AnalysisResult, current *aggregate.ContextSet) ([]model.Fact, error) {
	if current == nil {
		return nil, nil
	}

	roots := current.LinkedEntities()
	if len(roots) > maxPathEntities {
		roots = roots[:maxPathEntities]
	}

	var facts []model.Fact
	for _, root := range roots {
		segments, err := r.store.Paths(ctx, root, pathDepth)
		if err != nil {
			return nil, errs.Strategy(r.Name(), err)
		}
		for _, seg := range segments {
			f := model.Fact{
				Subject:    seg.Edge.SourceID,
				Predicate:  string(seg.Edge.Type),
				Object:     seg.Edge.TargetID,
				Strategy:   r.Name(),
				Confidence: boost(PathConfidence, seg.Edge.SourceID, seg.Node),
			}
			// Hops already in the context add nothing.
			if current.Contains(f) {
				continue
			}
			facts = append(facts, f)
			if len(facts) >= maxPathSegments {
				return facts, nil
			}
		}
	}
	return facts, nil
}
