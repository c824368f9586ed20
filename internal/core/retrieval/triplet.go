package retrieval

import (
	"context"
	"strings"

	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/driver"
	"github.com/agenthands/pyrite/internal/errs"
)

const maxTripletEntities = 25

// TripletRetriever is the safety net: for every linked entity it fetches
// all touching edges and emits each as a (source, relation, target) fact.
type TripletRetriever struct {
	store driver.GraphStore
}

func NewTripletRetriever(store driver.GraphStore) *TripletRetriever {
	return &TripletRetriever{store: store}
}

func (r *TripletRetriever) Name() string            { return "triplet_retrieval" }
func (r *TripletRetriever) BaseConfidence() float64 { return TripletConfidence }

func (r *TripletRetriever) Execute(ctx context.Context, analysis model.AnalysisResult, current *aggregate.ContextSet) ([]model.Fact, error) {
	ids := entityIDs(analysis, current)
	if len(ids) > maxTripletEntities {
		ids = ids[:maxTripletEntities]
	}

	var facts []model.Fact
	for _, id := range ids {
		edges, err := r.store.GetEdges(ctx, id, "")
		if err != nil {
			return nil, errs.Strategy(r.Name(), err)
		}
		for _, edge := range edges {
			facts = append(facts, model.Fact{
				Subject:    edge.SourceID,
				Predicate:  string(edge.Type),
				Object:     edge.TargetID,
				Strategy:   r.Name(),
				Confidence: boost(TripletConfidence, edge.SourceID, nil),
			})
		}
	}
	return facts, nil
}

// entityIDs collects the IDs worth expanding: entities already linked in
// the context, then SKU-shaped mentions from the current analysis that the
// linker has not resolved yet.
func entityIDs(analysis model.AnalysisResult, current *aggregate.ContextSet) []string {
	var ids []string
	seen := map[string]bool{}

	if current != nil {
		for _, id := range current.LinkedEntities() {
			key := strings.ToLower(id)
			if !seen[key] {
				seen[key] = true
				ids = append(ids, id)
			}
		}
	}
	for _, mention := range analysis.EntityMentions {
		mention = strings.TrimSpace(mention)
		if !model.IsSKU(mention) {
			continue
		}
		key := strings.ToLower(mention)
		if !seen[key] {
			seen[key] = true
			ids = append(ids, mention)
		}
	}
	return ids
}
