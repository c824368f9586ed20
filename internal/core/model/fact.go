package model

import "strings"

// PredicateLinksTo marks a fact produced by entity linking: the subject is
// the query mention, the object is the resolved graph node ID.
const PredicateLinksTo = "LINKS_TO"

// Fact is one unit of retrieved evidence. Immutable after creation; the
// aggregator owns it once a strategy emits it.
type Fact struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
	Iteration  int     `json:"iteration"`
}

// Key is the identity of a Fact for deduplication: the normalized
// (subject, predicate, object) triple, case- and whitespace-insensitive.
func (f Fact) Key() string {
	return normalizeTerm(f.Subject) + "|" + normalizeTerm(f.Predicate) + "|" + normalizeTerm(f.Object)
}

func normalizeTerm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// String renders the triple for evidence blocks and logs.
func (f Fact) String() string {
	return f.Subject + " " + f.Predicate + " " + f.Object
}
