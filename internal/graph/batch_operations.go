package graph

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// queryRunner executes one write query under the operation's transaction config
type queryRunner func(ctx context.Context, operation, query string, params map[string]any) error

// BatchWriter writes nodes and edges with the UNWIND pattern:
//
//	UNWIND $nodes AS node MERGE (n:Speaker {speaker_id: node.speaker_id}) SET n += node
//
// one query per batch instead of one per element.
type BatchWriter struct {
	run     queryRunner
	config  BatchConfig
	limiter *rate.Limiter
}

// NewBatchWriter creates a batch writer. A positive BatchesPerSecond throttles
// every batch through a token bucket.
func NewBatchWriter(run queryRunner, config BatchConfig) *BatchWriter {
	config = config.withDefaults()

	w := &BatchWriter{run: run, config: config}
	if config.BatchesPerSecond > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(config.BatchesPerSecond), 1)
	}
	return w
}

// WriteNodes merges nodes of one label on uniqueKey
func (w *BatchWriter) WriteNodes(ctx context.Context, label, uniqueKey string, nodes []GraphNode) error {
	if len(nodes) == 0 {
		return nil
	}

	query, err := BuildUnwindNodes(label, uniqueKey)
	if err != nil {
		return err
	}

	params := make([]map[string]any, len(nodes))
	for i, node := range nodes {
		params[i] = node.Properties
	}

	for _, b := range batchBounds(len(params), w.config.NodeBatchSize) {
		if err := w.wait(ctx); err != nil {
			return err
		}
		if err := w.run(ctx, OpPublishNodes, query, map[string]any{"nodes": params[b[0]:b[1]]}); err != nil {
			return fmt.Errorf("batch %s creation failed (batch %d-%d): %w", label, b[0], b[1], err)
		}
	}
	return nil
}

// WriteEdges merges edges of one label between Speaker nodes
func (w *BatchWriter) WriteEdges(ctx context.Context, label, mergeKey string, edges []GraphEdge) error {
	if len(edges) == 0 {
		return nil
	}

	query, err := BuildUnwindEdges(LabelSpeaker, PropSpeakerID, label, mergeKey)
	if err != nil {
		return err
	}

	params := make([]map[string]any, len(edges))
	for i, edge := range edges {
		params[i] = map[string]any{
			"from":  edge.From,
			"to":    edge.To,
			"props": edge.Properties,
		}
	}

	for _, b := range batchBounds(len(params), w.config.EdgeBatchSize) {
		if err := w.wait(ctx); err != nil {
			return err
		}
		if err := w.run(ctx, OpPublishEdges, query, map[string]any{"edges": params[b[0]:b[1]]}); err != nil {
			return fmt.Errorf("batch %s creation failed (batch %d-%d): %w", label, b[0], b[1], err)
		}
	}
	return nil
}

func (w *BatchWriter) wait(ctx context.Context) error {
	if w.limiter == nil {
		return ctx.Err()
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// batchBounds splits n items into [start, end) ranges of at most size
func batchBounds(n, size int) [][2]int {
	var bounds [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}
