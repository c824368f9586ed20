package model

// EdgeType is the closed set of product-graph relation labels.
type EdgeType string

const (
	EdgeCompatibleWith     EdgeType = "COMPATIBLE_WITH"
	EdgeHasInternalModule  EdgeType = "HAS_INTERNAL_MODULE"
	EdgeRequiresBase       EdgeType = "REQUIRES_BASE"
	EdgeCompatibleWithBase EdgeType = "COMPATIBLE_WITH_BASE"
	EdgeRequires           EdgeType = "REQUIRES"
	EdgeAlternativeTo      EdgeType = "ALTERNATIVE_TO"
)

func EdgeTypes() []EdgeType {
	return []EdgeType{
		EdgeCompatibleWith,
		EdgeHasInternalModule,
		EdgeRequiresBase,
		EdgeCompatibleWithBase,
		EdgeRequires,
		EdgeAlternativeTo,
	}
}

func ValidEdgeType(s string) bool {
	switch EdgeType(s) {
	case EdgeCompatibleWith, EdgeHasInternalModule, EdgeRequiresBase,
		EdgeCompatibleWithBase, EdgeRequires, EdgeAlternativeTo:
		return true
	}
	return false
}

// Edge is a typed directed relation between two node IDs. Read-only to the
// retrieval core.
type Edge struct {
	SourceID string   `json:"source_id"`
	TargetID string   `json:"target_id"`
	Type     EdgeType `json:"type"`
}

// PathSegment is one traversed hop of a multi-hop expansion, with the node
// reached at the far end.
type PathSegment struct {
	Edge  Edge  `json:"edge"`
	Node  *Node `json:"node,omitempty"`
	Depth int   `json:"depth"`
}
