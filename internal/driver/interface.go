package driver

import (
	"context"

	"github.com/agenthands/pyrite/internal/core/model"
)

// GraphStore is the read-only view of the product graph the retrieval core
// depends on. Ingestion writes through the concrete store, never through
// this interface.
type GraphStore interface {
	// GetNode returns the node with the given id, or nil when absent.
	GetNode(ctx context.Context, id string) (*model.Node, error)

	// GetEdges returns edges touching nodeID. edgeType narrows to one
	// relation type; empty means all types.
	GetEdges(ctx context.Context, nodeID string, edgeType string) ([]model.Edge, error)

	// QueryByPattern returns nodes of the given type matching all attribute
	// constraints.
	QueryByPattern(ctx context.Context, nodeType string, attrs map[string]interface{}) ([]model.Node, error)

	// SearchNodes does a case-insensitive containment search over node ids
	// and names.
	SearchNodes(ctx context.Context, term string, limit int) ([]model.Node, error)

	// Paths expands up to depth hops out from fromID, one segment per
	// traversed edge.
	Paths(ctx context.Context, fromID string, depth int) ([]model.PathSegment, error)

	// RunGuardedCypher executes a read-only Cypher query after rejecting
	// write clauses and capping the result size.
	RunGuardedCypher(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error)

	Stats(ctx context.Context) (model.GraphStats, error)

	Close(ctx context.Context) error
}
