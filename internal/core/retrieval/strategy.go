// Package retrieval implements the four graph retrieval strategies. Each is
// a pure read over the graph snapshot and the context gathered so far; the
// set is a fixed list, extended only by a code change here.
package retrieval

import (
	"context"

	"github.com/agenthands/pyrite/internal/config"
	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/driver"
)

// Strategy is one retrieval algorithm. Execute never mutates shared state
// and never aborts a round: an error means zero facts from this strategy,
// nothing more.
type Strategy interface {
	Name() string
	BaseConfidence() float64
	Execute(ctx context.Context, analysis model.AnalysisResult, current *aggregate.ContextSet) ([]model.Fact, error)
}

// Base confidences double as tie-breaks between strategies and as the
// default fact confidence when a strategy has nothing more specific.
const (
	EntityLinkingConfidence   = 0.9
	CypherRetrievalConfidence = 0.8
	TripletConfidence         = 0.7
	PathConfidence            = 0.6
)

// DefaultStrategies builds the full strategy set in its fixed order.
func DefaultStrategies(store driver.GraphStore, cfg config.RetrievalConfig) []Strategy {
	return []Strategy{
		NewEntityLinker(store, cfg),
		NewStructuredQueryExecutor(store),
		NewTripletRetriever(store),
		NewPathRetriever(store),
	}
}

// boost adjusts a base confidence per fact: +0.1 for a SKU-shaped subject,
// +0.1 when the resolved node carries a description, capped at 1.
func boost(base float64, subject string, node *model.Node) float64 {
	c := base
	if model.IsSKU(subject) {
		c += 0.1
	}
	if node != nil && node.Description() != "" {
		c += 0.1
	}
	if c > 1 {
		c = 1
	}
	return c
}
