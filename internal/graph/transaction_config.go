package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Operations with their own transaction settings
const (
	OpPublishNodes = "publish_nodes"
	OpPublishEdges = "publish_edges"
	OpSchema       = "schema"
	OpCountQuery   = "count_query"
	OpDeleteRun    = "delete_run"
)

// TransactionConfig defines timeout and metadata for transactions.
// Metadata shows up in Neo4j's query.log.
type TransactionConfig struct {
	Timeout  time.Duration
	Metadata map[string]any
}

// DefaultTransactionConfigs returns the config per operation
func DefaultTransactionConfigs() map[string]TransactionConfig {
	return map[string]TransactionConfig{
		OpPublishNodes: {
			Timeout: 2 * time.Minute,
			Metadata: map[string]any{
				"operation": OpPublishNodes,
				"type":      "write",
			},
		},
		// Edge batches MATCH both endpoints per row and run longer
		OpPublishEdges: {
			Timeout: 5 * time.Minute,
			Metadata: map[string]any{
				"operation": OpPublishEdges,
				"type":      "write",
			},
		},
		OpSchema: {
			Timeout: 5 * time.Minute,
			Metadata: map[string]any{
				"operation": OpSchema,
				"type":      "schema",
			},
		},
		OpDeleteRun: {
			Timeout: 10 * time.Minute,
			Metadata: map[string]any{
				"operation": OpDeleteRun,
				"type":      "write",
			},
		},
		OpCountQuery: {
			Timeout: 30 * time.Second,
			Metadata: map[string]any{
				"operation": OpCountQuery,
				"type":      "read",
			},
		},
	}
}

// GetConfigForOperation returns the operation's config, or a one minute
// default for unknown operations
func GetConfigForOperation(operation string) TransactionConfig {
	if config, ok := DefaultTransactionConfigs()[operation]; ok {
		return config
	}
	return TransactionConfig{
		Timeout: 60 * time.Second,
		Metadata: map[string]any{
			"operation": operation,
			"type":      "unknown",
		},
	}
}

// AsNeo4jConfig converts to transaction config functions for ExecuteRead/ExecuteWrite
func (tc TransactionConfig) AsNeo4jConfig() []func(*neo4j.TransactionConfig) {
	var configs []func(*neo4j.TransactionConfig)
	if tc.Timeout > 0 {
		configs = append(configs, neo4j.WithTxTimeout(tc.Timeout))
	}
	if len(tc.Metadata) > 0 {
		configs = append(configs, neo4j.WithTxMetadata(tc.Metadata))
	}
	return configs
}

// WithCustomMetadata returns a copy with one more metadata entry
func (tc TransactionConfig) WithCustomMetadata(key string, value any) TransactionConfig {
	out := TransactionConfig{
		Timeout:  tc.Timeout,
		Metadata: make(map[string]any, len(tc.Metadata)+1),
	}
	for k, v := range tc.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata[key] = value
	return out
}
