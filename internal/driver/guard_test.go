package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/pyrite/internal/errs"
)

func TestGuardCypherRejectsWriteClauses(t *testing.T) {
	for _, q := range []string{
		"MATCH (n) DELETE n",
		"match (n) detach delete n",
		"CREATE (n:Panel {id: 'x'})",
		"MATCH (n) SET n.id = 'y' RETURN n",
		"MERGE (n:Device {id: 'z'})",
		"MATCH (n) REMOVE n.name RETURN n",
	} {
		_, err := guardCypher(q)
		assert.Error(t, err, q)
		assert.True(t, errors.Is(err, errs.ErrForbiddenQuery), q)
	}
}

func TestGuardCypherWordBoundary(t *testing.T) {
	// SET inside an identifier is not a write clause.
	guarded, err := guardCypher("MATCH (n:Device) WHERE n.subset = 'a' RETURN n LIMIT 10")
	assert.NoError(t, err)
	assert.Equal(t, "MATCH (n:Device) WHERE n.subset = 'a' RETURN n LIMIT 10", guarded)
}

func TestGuardCypherAppendsLimit(t *testing.T) {
	guarded, err := guardCypher("MATCH (n:Panel) RETURN n.id")
	assert.NoError(t, err)
	assert.Equal(t, "MATCH (n:Panel) RETURN n.id LIMIT 100", guarded)

	// Existing LIMIT is left alone.
	guarded, err = guardCypher("MATCH (n:Panel) RETURN n.id LIMIT 5")
	assert.NoError(t, err)
	assert.Equal(t, "MATCH (n:Panel) RETURN n.id LIMIT 5", guarded)
}
