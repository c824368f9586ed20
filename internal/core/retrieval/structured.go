package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/driver"
	"github.com/agenthands/pyrite/internal/errs"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// StructuredQueryExecutor renders each analyzer intent as a guarded Cypher
// read and emits one fact per result row. The guard layer in the driver
// rejects write clauses and caps unbounded results.
type StructuredQueryExecutor struct {
	store driver.GraphStore
}

func NewStructuredQueryExecutor(store driver.GraphStore) *StructuredQueryExecutor {
	return &StructuredQueryExecutor{store: store}
}

func (e *StructuredQueryExecutor) Name() string            { return "cypher_retrieval" }
func (e *StructuredQueryExecutor) BaseConfidence() float64 { return CypherRetrievalConfidence }

func (e *StructuredQueryExecutor) Execute(ctx context.Context, analysis model.AnalysisResult, current *aggregate.ContextSet) ([]model.Fact, error) {
	var facts []model.Fact
	for _, intent := range analysis.Intents {
		query, params, ok := renderIntent(intent)
		if !ok {
			continue
		}

		rows, err := e.store.RunGuardedCypher(ctx, query, params)
		if err != nil {
			return nil, errs.Strategy(e.Name(), err)
		}
		for _, row := range rows {
			if f, ok := factFromRow(e.Name(), intent, row); ok {
				facts = append(facts, f)
			}
		}
	}
	return facts, nil
}

// renderIntent builds the read query for one intent. Node and relation
// labels cannot be parameterized in Cypher, so both are validated against
// the closed type sets before formatting; attribute names go through the
// same identifier check the driver uses.
func renderIntent(intent model.QueryIntent) (string, map[string]interface{}, bool) {
	if !model.ValidNodeType(intent.NodeType) {
		return "", nil, false
	}

	var match, returns string
	if intent.Relation != "" {
		if !model.ValidEdgeType(intent.Relation) {
			return "", nil, false
		}
		match = fmt.Sprintf("MATCH (n:%s)-[r:%s]->(m)", intent.NodeType, intent.Relation)
		returns = "RETURN n.id AS subject, type(r) AS predicate, m.id AS object"
	} else {
		match = fmt.Sprintf("MATCH (n:%s)", intent.NodeType)
		returns = "RETURN n.id AS subject"
	}

	params := map[string]interface{}{}
	var clauses []string
	keys := make([]string, 0, len(intent.Attributes))
	for k := range intent.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if !identPattern.MatchString(k) {
			continue
		}
		p := fmt.Sprintf("p%d", i)
		clauses = append(clauses, fmt.Sprintf("n.%s = $%s", k, p))
		params[p] = intent.Attributes[k]
	}

	query := match
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " " + returns + " LIMIT 50"
	return query, params, true
}

// factFromRow turns one result row into a fact. Relation rows carry a full
// triple; plain pattern rows become type-membership facts.
func factFromRow(strategy string, intent model.QueryIntent, row map[string]interface{}) (model.Fact, bool) {
	subject, ok := row["subject"].(string)
	if !ok || subject == "" {
		return model.Fact{}, false
	}

	predicate, _ := row["predicate"].(string)
	object, _ := row["object"].(string)
	if predicate == "" || object == "" {
		predicate = "IS_A"
		object = intent.NodeType
	}

	return model.Fact{
		Subject:    subject,
		Predicate:  predicate,
		Object:     object,
		Strategy:   strategy,
		Confidence: boost(CypherRetrievalConfidence, subject, nil),
	}, true
}
