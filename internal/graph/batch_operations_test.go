package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedQuery struct {
	operation string
	query     string
	params    map[string]any
}

type recordingRunner struct {
	queries []recordedQuery
	failAt  int
}

func (r *recordingRunner) run(_ context.Context, operation, query string, params map[string]any) error {
	r.queries = append(r.queries, recordedQuery{operation: operation, query: query, params: params})
	if r.failAt > 0 && len(r.queries) == r.failAt {
		return errors.New("server unavailable")
	}
	return nil
}

func speakers(ids ...string) []GraphNode {
	nodes := make([]GraphNode, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, GraphNode{Label: LabelSpeaker, ID: id, Properties: map[string]any{PropSpeakerID: id}})
	}
	return nodes
}

func TestBatchBounds(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}, {4, 5}}, batchBounds(5, 2))
	assert.Equal(t, [][2]int{{0, 3}}, batchBounds(3, 10))
	assert.Empty(t, batchBounds(0, 10))
}

func TestBatchWriter_WriteNodes(t *testing.T) {
	r := &recordingRunner{}
	w := NewBatchWriter(r.run, BatchConfig{NodeBatchSize: 2})

	require.NoError(t, w.WriteNodes(context.Background(), LabelSpeaker, PropSpeakerID, speakers("a", "b", "c")))

	require.Len(t, r.queries, 2)
	assert.Equal(t, OpPublishNodes, r.queries[0].operation)
	assert.Len(t, r.queries[0].params["nodes"], 2)
	assert.Len(t, r.queries[1].params["nodes"], 1)
}

func TestBatchWriter_WriteEdges(t *testing.T) {
	r := &recordingRunner{}
	w := NewBatchWriter(r.run, DefaultBatchConfig())

	edges := []GraphEdge{
		{Label: EdgeReplies, From: "a", To: "b", Properties: map[string]any{"weight": int64(2)}},
	}
	require.NoError(t, w.WriteEdges(context.Background(), EdgeReplies, "", edges))

	require.Len(t, r.queries, 1)
	assert.Equal(t, OpPublishEdges, r.queries[0].operation)
	assert.Equal(t, []map[string]any{
		{"from": "a", "to": "b", "props": map[string]any{"weight": int64(2)}},
	}, r.queries[0].params["edges"])
}

func TestBatchWriter_ReportsFailingBatch(t *testing.T) {
	r := &recordingRunner{failAt: 2}
	w := NewBatchWriter(r.run, BatchConfig{NodeBatchSize: 1})

	err := w.WriteNodes(context.Background(), LabelSpeaker, PropSpeakerID, speakers("a", "b", "c"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 1-2")
	assert.Len(t, r.queries, 2, "stops at the first failure")
}

func TestBatchWriter_RateLimitedHonoursContext(t *testing.T) {
	r := &recordingRunner{}
	w := NewBatchWriter(r.run, BatchConfig{NodeBatchSize: 1, BatchesPerSecond: 0.001})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteNodes(ctx, LabelSpeaker, PropSpeakerID, speakers("a", "b"))
	assert.Error(t, err)
	assert.Empty(t, r.queries)
}

func TestGroupEdges(t *testing.T) {
	groups := groupEdges([]GraphEdge{
		{Label: EdgeRepliedTo, MergeKey: "utt_id", From: "a", To: "b"},
		{Label: EdgeReplies, From: "a", To: "b"},
		{Label: EdgeRepliedTo, MergeKey: "utt_id", From: "b", To: "a"},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, EdgeRepliedTo, groups[0].label)
	assert.Len(t, groups[0].edges, 2)
	assert.Equal(t, EdgeReplies, groups[1].label)
}
