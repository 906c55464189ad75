package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rohankatakam/replygraph/internal/errors"
)

// Neo4jBackend implements Backend for Neo4j with parameterized Cypher
type Neo4jBackend struct {
	driver   neo4j.DriverWithContext
	database string // Database name for all queries
	writer   *BatchWriter
}

// NewNeo4jBackend connects and verifies connectivity
func NewNeo4jBackend(ctx context.Context, uri, username, password, database string, config BatchConfig) (*Neo4jBackend, error) {
	driver, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(username, password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = 50
			config.ConnectionAcquisitionTimeout = 60 * time.Second
			config.MaxConnectionLifetime = time.Hour
			config.SocketConnectTimeout = 5 * time.Second
			config.SocketKeepalive = true
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.NetworkError(err, fmt.Sprintf("failed to connect to Neo4j at %s", uri))
	}

	n := &Neo4jBackend{
		driver:   driver,
		database: database,
	}
	n.writer = NewBatchWriter(n.execute, config)

	if err := n.ensureConstraints(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return n, nil
}

// ensureConstraints makes speaker IDs unique so MERGE stays idempotent
func (n *Neo4jBackend) ensureConstraints(ctx context.Context) error {
	query := fmt.Sprintf(
		"CREATE CONSTRAINT speaker_id_unique IF NOT EXISTS FOR (s:%s) REQUIRE s.%s IS UNIQUE",
		LabelSpeaker, PropSpeakerID)
	if err := n.execute(ctx, OpSchema, query, nil); err != nil {
		return fmt.Errorf("failed to create speaker constraint: %w", err)
	}
	return nil
}

// execute runs one write in a managed transaction, retried by the driver
// on transient errors
func (n *Neo4jBackend) execute(ctx context.Context, operation, query string, params map[string]any) error {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	}, GetConfigForOperation(operation).AsNeo4jConfig()...)
	return err
}

// CreateNodes merges nodes grouped by label
func (n *Neo4jBackend) CreateNodes(ctx context.Context, nodes []GraphNode) error {
	for _, group := range groupNodes(nodes) {
		if err := n.writer.WriteNodes(ctx, group.label, uniqueKey(group.label), group.nodes); err != nil {
			return fmt.Errorf("failed to create %s nodes: %w", group.label, err)
		}
	}
	return nil
}

// CreateEdges merges edges grouped by label
func (n *Neo4jBackend) CreateEdges(ctx context.Context, edges []GraphEdge) error {
	for _, group := range groupEdges(edges) {
		if err := n.writer.WriteEdges(ctx, group.label, group.mergeKey, group.edges); err != nil {
			return fmt.Errorf("failed to create %s edges: %w", group.label, err)
		}
	}
	return nil
}

// Count returns the first "count" column of a read query
func (n *Neo4jBackend) Count(ctx context.Context, query string, params map[string]any) (int64, error) {
	// ExecuteQuery takes no transaction config, so the timeout rides on ctx
	ctx, cancel := context.WithTimeout(ctx, GetConfigForOperation(OpCountQuery).Timeout)
	defer cancel()

	result, err := neo4j.ExecuteQuery(ctx, n.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(n.database),
		neo4j.ExecuteQueryWithReadersRouting())
	if err != nil {
		return 0, errors.DatabaseError(err, "count query failed")
	}

	if len(result.Records) > 0 {
		if count, ok := result.Records[0].Get("count"); ok {
			if v, ok := count.(int64); ok {
				return v, nil
			}
		}
	}
	return 0, nil
}

// RunCounts is what one publish run left in the database
type RunCounts struct {
	Speakers  int64
	RepliedTo int64
	Replies   int64
}

// CountRun counts the speakers and relationships last written by runID
func (n *Neo4jBackend) CountRun(ctx context.Context, runID string) (*RunCounts, error) {
	counts := &RunCounts{}
	targets := []struct {
		dest *int64
		run  func(*CypherBuilder) (string, error)
	}{
		{&counts.Speakers, func(b *CypherBuilder) (string, error) { return b.BuildCountNodes(LabelSpeaker, PropRunID, runID) }},
		{&counts.RepliedTo, func(b *CypherBuilder) (string, error) { return b.BuildCountEdges(EdgeRepliedTo, PropRunID, runID) }},
		{&counts.Replies, func(b *CypherBuilder) (string, error) { return b.BuildCountEdges(EdgeReplies, PropRunID, runID) }},
	}

	for _, target := range targets {
		b := NewCypherBuilder()
		query, err := target.run(b)
		if err != nil {
			return nil, err
		}
		if *target.dest, err = n.Count(ctx, query, b.Params()); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// DeleteRun removes the relationships stamped with runID, then the speakers
// stamped with runID that no other relationship still touches. It returns
// the number of deleted relationships and nodes.
func (n *Neo4jBackend) DeleteRun(ctx context.Context, runID string) (int64, int64, error) {
	session := n.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	txConfig := GetConfigForOperation(OpDeleteRun).WithCustomMetadata(PropRunID, runID)

	deleteCount := func(build func(*CypherBuilder) (string, error)) (int64, error) {
		b := NewCypherBuilder()
		query, err := build(b)
		if err != nil {
			return 0, err
		}
		out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, query, b.Params())
			if err != nil {
				return nil, err
			}
			record, err := result.Single(ctx)
			if err != nil {
				return nil, err
			}
			count, _ := record.Get("count")
			return count, nil
		}, txConfig.AsNeo4jConfig()...)
		if err != nil {
			return 0, err
		}
		count, _ := out.(int64)
		return count, nil
	}

	rels, err := deleteCount(func(b *CypherBuilder) (string, error) {
		return b.BuildDeleteEdges(PropRunID, runID)
	})
	if err != nil {
		return 0, 0, errors.DatabaseErrorf(err, "failed to delete relationships of run %s", runID)
	}

	nodes, err := deleteCount(func(b *CypherBuilder) (string, error) {
		return b.BuildDeleteOrphanNodes(LabelSpeaker, PropRunID, runID)
	})
	if err != nil {
		return rels, 0, errors.DatabaseErrorf(err, "failed to delete speakers of run %s", runID)
	}
	return rels, nodes, nil
}

// Close closes the Neo4j driver connection
func (n *Neo4jBackend) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}

type nodeGroup struct {
	label string
	nodes []GraphNode
}

type edgeGroup struct {
	label    string
	mergeKey string
	edges    []GraphEdge
}

// groupNodes groups by label, keeping first-seen label order
func groupNodes(nodes []GraphNode) []nodeGroup {
	var groups []nodeGroup
	index := make(map[string]int)
	for _, node := range nodes {
		i, ok := index[node.Label]
		if !ok {
			i = len(groups)
			index[node.Label] = i
			groups = append(groups, nodeGroup{label: node.Label})
		}
		groups[i].nodes = append(groups[i].nodes, node)
	}
	return groups
}

// groupEdges groups by label and merge key, keeping first-seen order
func groupEdges(edges []GraphEdge) []edgeGroup {
	var groups []edgeGroup
	index := make(map[[2]string]int)
	for _, edge := range edges {
		k := [2]string{edge.Label, edge.MergeKey}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, edgeGroup{label: edge.Label, mergeKey: edge.MergeKey})
		}
		groups[i].edges = append(groups[i].edges, edge)
	}
	return groups
}

// uniqueKey returns the identifying property for a node label
func uniqueKey(label string) string {
	keys := map[string]string{
		LabelSpeaker: PropSpeakerID,
	}
	if key, ok := keys[label]; ok {
		return key
	}
	return "id"
}
