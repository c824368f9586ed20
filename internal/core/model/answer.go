package model

import "time"

// Origin tags which generation path produced an answer candidate.
type Origin string

const (
	OriginBaseline      Origin = "baseline"
	OriginGraphEnhanced Origin = "graph_enhanced"
)

// AnswerCandidate is one generated answer with the evidence that backs it.
type AnswerCandidate struct {
	Text            string  `json:"text"`
	SupportingFacts []Fact  `json:"supporting_facts,omitempty"`
	Origin          Origin  `json:"origin"`
	Score           float64 `json:"score"`
}

// IterationRecord logs one completed retrieval round. Append-only.
type IterationRecord struct {
	Index      int           `json:"index"`
	NewFacts   int           `json:"new_facts"`
	TotalFacts int           `json:"total_facts"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Result is the full outcome of one answered query.
type Result struct {
	RequestID       string            `json:"request_id"`
	Query           string            `json:"query"`
	Answer          string            `json:"answer"`
	BOQ             []BOQItem         `json:"boq,omitempty"`
	SupportingFacts []Fact            `json:"supporting_facts"`
	Iterations      []IterationRecord `json:"iterations"`
	BaselineScore   float64           `json:"baseline_score"`
	EnhancedScore   float64           `json:"enhanced_score"`
	SelectedOrigin  Origin            `json:"selected_origin"`
	Elapsed         time.Duration     `json:"elapsed"`
}

// GraphStats is the node/edge census returned by the stats endpoint,
// straight from the store.
type GraphStats struct {
	Nodes      map[string]int64 `json:"nodes"`
	Edges      map[string]int64 `json:"edges"`
	TotalNodes int64            `json:"total_nodes"`
	TotalEdges int64            `json:"total_edges"`
}
