package graph

import (
	"fmt"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CypherBuilder builds safe, parameterized single-statement Cypher queries.
// Labels and keys are validated identifiers; every value is a parameter.
// Batch writes use the UNWIND builders below instead.
type CypherBuilder struct {
	params  map[string]any
	counter int
}

// NewCypherBuilder creates a query builder
func NewCypherBuilder() *CypherBuilder {
	return &CypherBuilder{
		params: make(map[string]any),
	}
}

// AddParam adds a parameter and returns its placeholder
func (b *CypherBuilder) AddParam(value any) string {
	paramName := fmt.Sprintf("p%d", b.counter)
	b.counter++
	b.params[paramName] = value
	return "$" + paramName
}

// Params returns all parameters for the query
func (b *CypherBuilder) Params() map[string]any {
	return b.params
}

// BuildCountNodes counts nodes of label whose key property equals value
func (b *CypherBuilder) BuildCountNodes(label, key string, value any) (string, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(key) {
		return "", fmt.Errorf("invalid node label or key: %s.%s", label, key)
	}
	return fmt.Sprintf("MATCH (n:%s {%s: %s}) RETURN count(n) AS count", label, key, b.AddParam(value)), nil
}

// BuildCountEdges counts relationships of label whose key property equals value
func (b *CypherBuilder) BuildCountEdges(label, key string, value any) (string, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(key) {
		return "", fmt.Errorf("invalid relationship label or key: %s.%s", label, key)
	}
	return fmt.Sprintf("MATCH ()-[r:%s {%s: %s}]->() RETURN count(r) AS count", label, key, b.AddParam(value)), nil
}

// BuildDeleteEdges deletes relationships of any label whose key property
// equals value and returns how many went
func (b *CypherBuilder) BuildDeleteEdges(key string, value any) (string, error) {
	if !isValidIdentifier(key) {
		return "", fmt.Errorf("invalid property key: %s", key)
	}
	return fmt.Sprintf("MATCH ()-[r {%s: %s}]->() DELETE r RETURN count(r) AS count", key, b.AddParam(value)), nil
}

// BuildDeleteOrphanNodes deletes nodes of label whose key property equals
// value and that no relationship touches
func (b *CypherBuilder) BuildDeleteOrphanNodes(label, key string, value any) (string, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(key) {
		return "", fmt.Errorf("invalid node label or key: %s.%s", label, key)
	}
	return fmt.Sprintf("MATCH (n:%s {%s: %s}) WHERE NOT (n)--() DELETE n RETURN count(n) AS count",
		label, key, b.AddParam(value)), nil
}

// BuildUnwindNodes returns a batch MERGE over $nodes, a list of property maps
func BuildUnwindNodes(label, uniqueKey string) (string, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(uniqueKey) {
		return "", fmt.Errorf("invalid node label or key: %s.%s", label, uniqueKey)
	}
	return fmt.Sprintf(`UNWIND $nodes AS node
MERGE (n:%s {%s: node.%s})
SET n += node
RETURN count(n) AS created`, label, uniqueKey, uniqueKey), nil
}

// BuildUnwindEdges returns a batch MERGE over $edges, a list of
// {from, to, props} maps
func BuildUnwindEdges(nodeLabel, nodeKey, edgeLabel, mergeKey string) (string, error) {
	for _, id := range []string{nodeLabel, nodeKey, edgeLabel} {
		if !isValidIdentifier(id) {
			return "", fmt.Errorf("invalid identifier: %s", id)
		}
	}

	identity := ""
	if mergeKey != "" {
		if !isValidIdentifier(mergeKey) {
			return "", fmt.Errorf("invalid merge key: %s", mergeKey)
		}
		identity = fmt.Sprintf(" {%s: edge.props.%s}", mergeKey, mergeKey)
	}

	return fmt.Sprintf(`UNWIND $edges AS edge
MATCH (from:%s {%s: edge.from})
MATCH (to:%s {%s: edge.to})
MERGE (from)-[r:%s%s]->(to)
SET r += edge.props
RETURN count(r) AS created`, nodeLabel, nodeKey, nodeLabel, nodeKey, edgeLabel, identity), nil
}

// isValidIdentifier reports whether s is safe as a Cypher identifier
func isValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
