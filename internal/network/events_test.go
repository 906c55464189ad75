package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/replygraph/internal/corpus/corpustest"
)

func TestTraverse(t *testing.T) {
	conv := corpustest.Conversation("p", "books", "op").
		Reply("a", "u1", "p").
		Reply("b", "[deleted]", "a").
		Reply("c", "u1", "b").
		Build()

	paths, err := conv.RootToLeafPaths()
	require.NoError(t, err)

	events, err := Traverse(conv, paths, "4", DefaultResolver())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, ReplyEvent{
		ConversationID: "p",
		UtteranceID:    "b",
		From:           "deleted_speaker_4",
		To:             "u1",
		Speaker:        "[deleted]",
		Text:           "text of b",
		Timestamp:      1537000180,
		Score:          3,
	}, events[0])
	assert.Equal(t, "u1", events[1].From)
	assert.Equal(t, "deleted_speaker_4", events[1].To)
}

func TestTraverse_ShortPaths(t *testing.T) {
	tests := []struct {
		name string
		conv *corpustest.ConversationBuilder
	}{
		{name: "post only", conv: corpustest.Conversation("p", "books", "op")},
		{name: "top-level comments only", conv: corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u2", "p")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := tt.conv.Build()
			paths, err := conv.RootToLeafPaths()
			require.NoError(t, err)

			events, err := Traverse(conv, paths, "0", DefaultResolver())
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}
