package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/replygraph/internal/corpus/corpustest"
	"github.com/rohankatakam/replygraph/internal/errors"
	"github.com/rohankatakam/replygraph/internal/models"
)

func TestBuildSubredditIndex(t *testing.T) {
	idx, err := BuildSubredditIndex(loadSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"books", "news"}, idx.Subreddits)
	assert.Equal(t, []string{"op_alpha", "nathan8999", "riverdog", "[deleted]"}, idx.SubredditSpeakers["books"])
	// 9broke is indexed even though it fails the integrity check
	assert.Equal(t, []string{"lurker", "ghostwriter", "news_op", "quietfox", "nathan8999"}, idx.SubredditSpeakers["news"])

	subs, ok := idx.SubredditsOf("nathan8999")
	require.True(t, ok)
	assert.Equal(t, []string{"books", "news"}, subs)

	subs, ok = idx.SubredditsOf("ghostwriter")
	require.True(t, ok)
	assert.Equal(t, []string{"news"}, subs)

	_, ok = idx.SubredditsOf("silent_bob")
	assert.False(t, ok, "speakers who never speak are not indexed")
}

func TestSubredditsOfReturnsCopy(t *testing.T) {
	idx, err := BuildSubredditIndex(corpustest.Corpus(
		corpustest.Conversation("p", "books", "op"),
	))
	require.NoError(t, err)

	subs, _ := idx.SubredditsOf("op")
	subs[0] = "mutated"

	again, _ := idx.SubredditsOf("op")
	assert.Equal(t, []string{"books"}, again)
}

func TestBuildSubredditIndex_MissingSubreddit(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("p", "books", "op"),
		corpustest.Conversation("q", "", "op").WithMeta(models.MetaSubreddit, 7),
	)

	_, err := BuildSubredditIndex(c)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeMetadata))
}
