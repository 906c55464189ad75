package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/replygraph/internal/errors"
)

func TestNewNeo4jBackend_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Nothing listens on port 1
	_, err := NewNeo4jBackend(ctx, "bolt://127.0.0.1:1", "neo4j", "secret", "neo4j", DefaultBatchConfig())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
}

func TestGroupNodes_FirstSeenOrder(t *testing.T) {
	nodes := []GraphNode{
		{Label: LabelSpeaker, ID: "a"},
		{Label: "Subreddit", ID: "books"},
		{Label: LabelSpeaker, ID: "b"},
	}

	groups := groupNodes(nodes)
	require.Len(t, groups, 2)
	assert.Equal(t, LabelSpeaker, groups[0].label)
	assert.Len(t, groups[0].nodes, 2)
	assert.Equal(t, "Subreddit", groups[1].label)
	assert.Equal(t, PropSpeakerID, uniqueKey(LabelSpeaker))
	assert.Equal(t, "id", uniqueKey("Subreddit"))
}
