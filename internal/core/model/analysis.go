package model

// QueryIntent is one structured lookup the analyzer wants executed against
// the graph: a node type plus attribute constraints, optionally relation
// hops to follow.
type QueryIntent struct {
	Description string                 `json:"description,omitempty"`
	NodeType    string                 `json:"node_type,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Relation    string                 `json:"relation,omitempty"`
}

// AnalysisResult is the analyzer's decomposition of the query and
// accumulated context for one round.
type AnalysisResult struct {
	EntityMentions []string      `json:"entities"`
	Intents        []QueryIntent `json:"intents"`
	Continue       bool          `json:"continue"`
}

// Empty reports whether the analysis found nothing to retrieve with.
func (a AnalysisResult) Empty() bool {
	return len(a.EntityMentions) == 0 && len(a.Intents) == 0
}
