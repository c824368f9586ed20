package driver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/errs"
)

// Neo4jStore implements GraphStore on a Bolt connection. The write helpers
// (UpsertNode, UpsertEdge, BuildIndices) are for ingestion and seeding only
// and are deliberately not part of the GraphStore interface.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jStore(ctx context.Context, uri, username, password, database string) (*Neo4jStore, error) {
	d, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, errs.Graph("driver.NewNeo4jStore", err)
	}

	if err := d.VerifyConnectivity(ctx); err != nil {
		return nil, errs.Graph("driver.NewNeo4jStore", err)
	}

	slog.Info("connected to graph store", "uri", uri, "database", database)
	return &Neo4jStore{driver: d, database: database}, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) execute(ctx context.Context, op, query string, params map[string]interface{}) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, params, neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database))
	if err != nil {
		return nil, errs.Graph(op, err)
	}
	return result, nil
}

func (s *Neo4jStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	result, err := s.execute(ctx, "driver.GetNode", GetNodeQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, nil
	}

	v, ok := result.Records[0].Get("n")
	if !ok {
		return nil, nil
	}
	n, ok := v.(dbtype.Node)
	if !ok {
		return nil, nil
	}
	node := nodeFromDB(n)
	return &node, nil
}

func (s *Neo4jStore) GetEdges(ctx context.Context, nodeID string, edgeType string) ([]model.Edge, error) {
	query := GetEdgesQuery
	if edgeType != "" {
		if !model.ValidEdgeType(edgeType) {
			return nil, fmt.Errorf("unknown edge type %q", edgeType)
		}
		query = fmt.Sprintf(GetEdgesTypedQueryTmpl, edgeType)
	}

	result, err := s.execute(ctx, "driver.GetEdges", query, map[string]interface{}{"id": nodeID})
	if err != nil {
		return nil, err
	}

	var edges []model.Edge
	for _, rec := range result.Records {
		edges = append(edges, edgeFromRecord(rec))
	}
	return edges, nil
}

func (s *Neo4jStore) QueryByPattern(ctx context.Context, nodeType string, attrs map[string]interface{}) ([]model.Node, error) {
	if !model.ValidNodeType(nodeType) {
		return nil, fmt.Errorf("unknown node type %q", nodeType)
	}

	query := fmt.Sprintf("MATCH (n:%s)", nodeType)
	params := map[string]interface{}{}

	if len(attrs) > 0 {
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var clauses []string
		for i, k := range keys {
			if !propNamePattern.MatchString(k) {
				continue
			}
			p := fmt.Sprintf("p%d", i)
			clauses = append(clauses, fmt.Sprintf("n.%s = $%s", k, p))
			params[p] = attrs[k]
		}
		if len(clauses) > 0 {
			query += " WHERE " + strings.Join(clauses, " AND ")
		}
	}
	query += " RETURN n LIMIT 100"

	result, err := s.execute(ctx, "driver.QueryByPattern", query, params)
	if err != nil {
		return nil, err
	}
	return nodesFromResult(result), nil
}

func (s *Neo4jStore) SearchNodes(ctx context.Context, term string, limit int) ([]model.Node, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	result, err := s.execute(ctx, "driver.SearchNodes", SearchNodesQuery, map[string]interface{}{
		"term":  term,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}
	return nodesFromResult(result), nil
}

// Paths expands outward from fromID one hop at a time, walking the fetched
// adjacency in memory. Cycles are cut by a visited set; each traversed edge
// becomes one segment tagged with its depth.
func (s *Neo4jStore) Paths(ctx context.Context, fromID string, depth int) ([]model.PathSegment, error) {
	if depth <= 0 {
		depth = 2
	}
	if depth > 3 {
		depth = 3
	}

	visited := map[string]bool{strings.ToLower(fromID): true}
	seenEdges := map[string]bool{}
	frontier := []string{fromID}

	var segments []model.PathSegment
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		result, err := s.execute(ctx, "driver.Paths", AdjacencyQuery, map[string]interface{}{"ids": frontier})
		if err != nil {
			return nil, err
		}

		var next []string
		for _, rec := range result.Records {
			edge := edgeFromRecord(rec)
			edgeKey := strings.ToLower(edge.SourceID + "|" + string(edge.Type) + "|" + edge.TargetID)
			if seenEdges[edgeKey] {
				continue
			}
			seenEdges[edgeKey] = true

			seg := model.PathSegment{Edge: edge, Depth: d}
			if v, ok := rec.Get("node"); ok {
				if dbNode, ok := v.(dbtype.Node); ok {
					node := nodeFromDB(dbNode)
					seg.Node = &node
					if !visited[strings.ToLower(node.ID)] {
						visited[strings.ToLower(node.ID)] = true
						next = append(next, node.ID)
					}
				}
			}
			segments = append(segments, seg)
		}
		frontier = next
	}
	return segments, nil
}

var (
	forbiddenClausePattern = regexp.MustCompile(`(?i)\b(DELETE|REMOVE|SET|CREATE|MERGE|DETACH)\b`)
	limitClausePattern     = regexp.MustCompile(`(?i)\bLIMIT\b`)
	propNamePattern        = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// guardCypher rejects write clauses and appends LIMIT 100 when the query has
// none.
func guardCypher(query string) (string, error) {
	if m := forbiddenClausePattern.FindString(query); m != "" {
		return "", fmt.Errorf("%w: %s", errs.ErrForbiddenQuery, strings.ToUpper(m))
	}
	if !limitClausePattern.MatchString(query) {
		query += " LIMIT 100"
	}
	return query, nil
}

// RunGuardedCypher executes caller-supplied Cypher after rejecting write
// clauses and capping unbounded results.
func (s *Neo4jStore) RunGuardedCypher(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error) {
	query, err := guardCypher(query)
	if err != nil {
		return nil, err
	}

	result, err := s.execute(ctx, "driver.RunGuardedCypher", query, params)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, 0, len(result.Records))
	for _, rec := range result.Records {
		row := map[string]interface{}{}
		for k, v := range rec.AsMap() {
			row[k] = plainValue(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Neo4jStore) Stats(ctx context.Context) (model.GraphStats, error) {
	stats := model.GraphStats{
		Nodes: map[string]int64{},
		Edges: map[string]int64{},
	}

	for _, nt := range model.NodeTypes() {
		count, err := s.count(ctx, fmt.Sprintf(NodeCountQueryTmpl, nt))
		if err != nil {
			return model.GraphStats{}, err
		}
		stats.Nodes[string(nt)] = count
		stats.TotalNodes += count
	}
	for _, et := range model.EdgeTypes() {
		count, err := s.count(ctx, fmt.Sprintf(EdgeCountQueryTmpl, et))
		if err != nil {
			return model.GraphStats{}, err
		}
		stats.Edges[string(et)] = count
		stats.TotalEdges += count
	}
	return stats, nil
}

func (s *Neo4jStore) count(ctx context.Context, query string) (int64, error) {
	result, err := s.execute(ctx, "driver.Stats", query, nil)
	if err != nil {
		return 0, err
	}
	if len(result.Records) == 0 {
		return 0, nil
	}
	v, _ := result.Records[0].Get("count")
	count, _ := v.(int64)
	return count, nil
}

// UpsertNode writes one node. Ingestion/seeding only.
func (s *Neo4jStore) UpsertNode(ctx context.Context, node model.Node) error {
	if !model.ValidNodeType(string(node.Type)) {
		return fmt.Errorf("unknown node type %q", node.Type)
	}

	props := map[string]interface{}{}
	for k, v := range node.Attributes {
		if propNamePattern.MatchString(k) {
			props[k] = v
		}
	}
	if node.Name != "" {
		props["name"] = node.Name
	}

	_, err := s.execute(ctx, "driver.UpsertNode", fmt.Sprintf(UpsertNodeQueryTmpl, node.Type), map[string]interface{}{
		"id":    node.ID,
		"props": props,
	})
	return err
}

// UpsertEdge writes one edge between existing nodes. Ingestion/seeding only.
func (s *Neo4jStore) UpsertEdge(ctx context.Context, edge model.Edge) error {
	if !model.ValidEdgeType(string(edge.Type)) {
		return fmt.Errorf("unknown edge type %q", edge.Type)
	}

	_, err := s.execute(ctx, "driver.UpsertEdge", fmt.Sprintf(UpsertEdgeQueryTmpl, edge.Type), map[string]interface{}{
		"source_id": edge.SourceID,
		"target_id": edge.TargetID,
	})
	return err
}

func (s *Neo4jStore) BuildIndices(ctx context.Context) error {
	for _, nt := range model.NodeTypes() {
		query := fmt.Sprintf("CREATE INDEX idx_%s_id IF NOT EXISTS FOR (n:%s) ON (n.id)", strings.ToLower(string(nt)), nt)
		if _, err := s.execute(ctx, "driver.BuildIndices", query, nil); err != nil {
			slog.Warn("failed to create index", "node_type", nt, "error", err)
		}
	}
	return nil
}

func nodeFromDB(n dbtype.Node) model.Node {
	node := model.Node{Attributes: map[string]interface{}{}}

	for _, label := range n.Labels {
		if model.ValidNodeType(label) {
			node.Type = model.NodeType(label)
			break
		}
	}
	if node.Type == "" && len(n.Labels) > 0 {
		node.Type = model.NodeType(n.Labels[0])
	}

	for k, v := range n.Props {
		switch k {
		case "id":
			if id, ok := v.(string); ok {
				node.ID = id
			}
		case "name":
			if name, ok := v.(string); ok {
				node.Name = name
			}
		default:
			node.Attributes[k] = v
		}
	}
	return node
}

func nodesFromResult(result *neo4j.EagerResult) []model.Node {
	var nodes []model.Node
	for _, rec := range result.Records {
		v, ok := rec.Get("n")
		if !ok {
			continue
		}
		if dbNode, ok := v.(dbtype.Node); ok {
			nodes = append(nodes, nodeFromDB(dbNode))
		}
	}
	return nodes
}

func edgeFromRecord(rec *neo4j.Record) model.Edge {
	var edge model.Edge
	if v, ok := rec.Get("source_id"); ok {
		edge.SourceID, _ = v.(string)
	}
	if v, ok := rec.Get("target_id"); ok {
		edge.TargetID, _ = v.(string)
	}
	if v, ok := rec.Get("type"); ok {
		if t, ok := v.(string); ok {
			edge.Type = model.EdgeType(t)
		}
	}
	return edge
}

// plainValue flattens driver types so guarded-query rows serialize cleanly.
func plainValue(v interface{}) interface{} {
	switch val := v.(type) {
	case dbtype.Node:
		out := map[string]interface{}{}
		for k, p := range val.Props {
			out[k] = p
		}
		if len(val.Labels) > 0 {
			out["labels"] = val.Labels
		}
		return out
	case dbtype.Relationship:
		return val.Type
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}
