package driver

const (
	GetNodeQuery = `
		MATCH (n {id: $id})
		RETURN n
		LIMIT 1
	`

	GetEdgesQuery = `
		MATCH (s {id: $id})-[r]-(o)
		RETURN startNode(r).id AS source_id, type(r) AS type, endNode(r).id AS target_id
		LIMIT 200
	`

	// Relationship types cannot be parameterized in Cypher; callers validate
	// against the closed edge-type set before formatting.
	GetEdgesTypedQueryTmpl = `
		MATCH (s {id: $id})-[r:%s]-(o)
		RETURN startNode(r).id AS source_id, type(r) AS type, endNode(r).id AS target_id
		LIMIT 200
	`

	SearchNodesQuery = `
		MATCH (n)
		WHERE toLower(n.id) CONTAINS toLower($term)
		   OR toLower(coalesce(n.name, '')) CONTAINS toLower($term)
		RETURN n
		LIMIT $limit
	`

	AdjacencyQuery = `
		MATCH (s)-[r]-(o)
		WHERE s.id IN $ids
		RETURN s.id AS near_id, startNode(r).id AS source_id, type(r) AS type,
		       endNode(r).id AS target_id, o AS node
		LIMIT 500
	`

	NodeCountQueryTmpl = `MATCH (n:%s) RETURN count(n) AS count`
	EdgeCountQueryTmpl = `MATCH ()-[r:%s]->() RETURN count(r) AS count`

	UpsertNodeQueryTmpl = `
		MERGE (n:%s {id: $id})
		SET n += $props
		RETURN n.id AS id
	`

	UpsertEdgeQueryTmpl = `
		MATCH (s {id: $source_id})
		MATCH (t {id: $target_id})
		MERGE (s)-[r:%s]->(t)
		RETURN s.id AS id
	`
)
