package network

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/corpus/corpustest"
	"github.com/rohankatakam/replygraph/internal/errors"
	"github.com/rohankatakam/replygraph/internal/models"
)

func loadSample(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.LoadConvoKit(filepath.Join("..", "corpus", "testdata", "reddit-sample"))
	require.NoError(t, err)
	return c
}

func nodeIDs[N interface{ Nodes() []*Node }](g N) []string {
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBuildMulti_RedditSample(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	b := NewBuilder(Options{Logger: logger})

	g, stats, err := b.BuildMulti(context.Background(), loadSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"riverdog", "nathan8999", "deleted_speaker_0", "op_alpha", "quietfox"}, nodeIDs(g))
	assert.Equal(t, 6, g.NumEdges())
	assert.Equal(t, 6, stats.ReplyEvents)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, []string{"9broke"}, stats.Skipped)
	assert.Equal(t, StateSkipped, stats.States["9broke"])
	assert.Equal(t, StateEdgesEmitted, stats.States["9fio59"])
	assert.Equal(t, StateEdgesEmitted, stats.States["9gthts"])

	e, ok := g.Edge("deleted_speaker_0", "nathan8999", "e5a4")
	require.True(t, ok)
	assert.Equal(t, MultiEdge{
		From:         "deleted_speaker_0",
		To:           "nathan8999",
		Key:          "e5a4",
		ConvoID:      "9fio59",
		UttID:        "e5a4",
		UttText:      "[removed]",
		UttSpeaker:   "[deleted]",
		UttTimestamp: 1537000240,
		UttScore:     -4,
	}, *e)

	nathan, ok := g.Node("nathan8999")
	require.True(t, ok)
	require.NotNil(t, nathan.Attributes)
	assert.Equal(t, NodeAttributes{NumComments: 58, NumPosts: 0, Subreddits: []string{"books", "news"}}, *nathan.Attributes)

	synthetic, ok := g.Node("deleted_speaker_0")
	require.True(t, ok)
	assert.Nil(t, synthetic.Attributes, "synthetic speakers have no corpus entry")

	for _, id := range []string{"silent_bob", "news_op", "lurker", "ghostwriter", "[deleted]"} {
		assert.False(t, g.HasNode(id), "%s has no qualifying edge", id)
	}

	var skipped []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			skipped = append(skipped, entry.Message)
		}
	}
	assert.Equal(t, []string{"Conversation 9broke is not intact"}, skipped)
}

func TestBuildWeighted_RedditSample(t *testing.T) {
	g, stats, err := NewBuilder(Options{}).BuildWeighted(context.Background(), loadSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"riverdog", "nathan8999", "deleted_speaker_0", "op_alpha", "quietfox"}, nodeIDs(g))
	assert.Equal(t, 6, g.NumEdges())
	assert.Equal(t, 6, stats.Edges)
	for _, e := range g.Edges() {
		assert.Equal(t, int64(1), e.Weight, "%s -> %s", e.From, e.To)
	}

	fox, ok := g.Node("quietfox")
	require.True(t, ok)
	require.NotNil(t, fox.Attributes)
	assert.Equal(t, NodeAttributes{NumComments: 21, NumPosts: 2, Subreddits: []string{"news"}}, *fox.Attributes)
}

func TestBuildMulti_BranchingPathsShareEdges(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u2", "a").
			Reply("c", "u3", "b").
			Reply("d", "u4", "b"),
	)

	g, stats, err := NewBuilder(Options{}).BuildMulti(context.Background(), c)
	require.NoError(t, err)

	// b sits on both paths: one event per path, one stored edge
	assert.Equal(t, 4, stats.ReplyEvents)
	assert.Equal(t, 3, g.NumEdges())

	_, ok := g.Edge("u2", "u1", "b")
	assert.True(t, ok)
	_, ok = g.Edge("u3", "u2", "c")
	assert.True(t, ok)
	_, ok = g.Edge("u4", "u2", "d")
	assert.True(t, ok)
}

func TestBuildMulti_ParallelEdgesKeptApart(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("p", "books", "op").
			Reply("a", "x", "p").
			Reply("b", "y", "a").
			Reply("c", "x", "b").
			Reply("d", "y", "c"),
	)

	g, _, err := NewBuilder(Options{}).BuildMulti(context.Background(), c)
	require.NoError(t, err)

	var keys []string
	for _, e := range g.EdgesBetween("y", "x") {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"b", "d"}, keys)
	assert.Len(t, g.EdgesBetween("x", "y"), 1)
}

func TestBuild_PostAuthorReplyStillCounts(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "op", "a"),
	)

	g, _, err := NewBuilder(Options{}).BuildMulti(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, 1, g.NumEdges())
	_, ok := g.Edge("op", "u1", "b")
	assert.True(t, ok, "only the first two path elements are excluded")
	assert.Equal(t, []string{"op", "u1"}, nodeIDs(g))
}

func TestBuild_FirstLevelRepliesProduceNoEdges(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u2", "p"),
	)

	g, stats, err := NewBuilder(Options{}).BuildMulti(context.Background(), c)
	require.NoError(t, err)
	assert.Zero(t, g.NumEdges())
	assert.Zero(t, g.NumNodes())
	assert.Zero(t, stats.Attributed)
}

func TestBuild_DeletedSpeakersScopedPerConversation(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("c1", "books", "op").
			Reply("a", "u1", "c1").
			Reply("b", "[deleted]", "a").
			Reply("b2", "[deleted]", "a"),
		corpustest.Conversation("broken", "books", "op").
			Reply("z", "u9", "nowhere"),
		corpustest.Conversation("c2", "news", "op2").
			Reply("d", "u1", "c2").
			Reply("e", "[deleted]", "d"),
	)

	tests := []struct {
		name   string
		scope  ScopeFunc
		first  string
		second string
	}{
		{name: "ordinal", scope: OrdinalScope, first: "deleted_speaker_0", second: "deleted_speaker_1"},
		{name: "conversation", scope: ConversationScope, first: "deleted_speaker_c1", second: "deleted_speaker_c2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, err := NewBuilder(Options{Scope: tt.scope}).BuildMulti(context.Background(), c)
			require.NoError(t, err)

			// both removed replies in c1 collapse onto one node
			assert.Len(t, g.EdgesBetween(tt.first, "u1"), 2)
			assert.Len(t, g.EdgesBetween(tt.second, "u1"), 1)
			assert.NotEqual(t, tt.first, tt.second)

			for _, e := range g.Edges() {
				assert.NotEmpty(t, e.From)
				assert.NotEmpty(t, e.To)
				assert.NotEqual(t, DefaultRemovalMarker, e.From)
				assert.NotEqual(t, DefaultRemovalMarker, e.To)
			}
		})
	}
}

func TestBuild_CustomMarker(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("c1", "books", "op").
			Reply("a", "u1", "c1").
			Reply("b", "<gone>", "a"),
	)

	b := NewBuilder(Options{Resolver: Resolver{Marker: "<gone>", Prefix: "ghost:"}})
	g, _, err := b.BuildMulti(context.Background(), c)
	require.NoError(t, err)

	_, ok := g.Edge("ghost:0", "u1", "b")
	assert.True(t, ok)
}

func TestBuildWeighted_LinearSelfReplies(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u1", "a").
			Reply("c", "u1", "b").
			Reply("d", "u1", "c"),
	)

	g, _, err := NewBuilder(Options{}).BuildWeighted(context.Background(), c)
	require.NoError(t, err)

	require.Equal(t, 1, g.NumEdges())
	e, ok := g.Edge("u1", "u1")
	require.True(t, ok)
	assert.Equal(t, int64(3), e.Weight, "one per reply at depth two or more")
}

func TestBuildWeighted_RunningCountIsPerReplier(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("p", "books", "op").
			Reply("a", "y", "p").
			Reply("b", "x", "a").
			Reply("a2", "z", "p").
			Reply("b2", "x", "a2"),
	)

	g, _, err := NewBuilder(Options{}).BuildWeighted(context.Background(), c)
	require.NoError(t, err)

	xy, ok := g.Edge("x", "y")
	require.True(t, ok)
	xz, ok := g.Edge("x", "z")
	require.True(t, ok)
	assert.Equal(t, int64(1), xy.Weight)
	assert.Equal(t, int64(2), xz.Weight)
}

func TestBuildWeighted_LaterConversationResetsPair(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("c1", "books", "op").
			Reply("a", "y", "c1").
			Reply("b", "x", "a").
			Reply("c", "y", "b").
			Reply("d", "x", "c"),
		corpustest.Conversation("c2", "books", "op2").
			Reply("e", "y", "c2").
			Reply("f", "x", "e"),
	)

	b := NewBuilder(Options{})

	first, err := c.Subset("c1")
	require.NoError(t, err)
	g1, _, err := b.BuildWeighted(context.Background(), first)
	require.NoError(t, err)
	e1, ok := g1.Edge("x", "y")
	require.True(t, ok)
	assert.Equal(t, int64(2), e1.Weight)

	g, _, err := b.BuildWeighted(context.Background(), c)
	require.NoError(t, err)
	e, ok := g.Edge("x", "y")
	require.True(t, ok)
	assert.Equal(t, int64(1), e.Weight, "last conversation touching the pair wins")
}

func TestBuildWeighted_DeletedSpeakerCounted(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("c1", "books", "op").
			Reply("a", "u1", "c1").
			Reply("b", "[deleted]", "a").
			Reply("c", "u1", "b").
			Reply("d", "[deleted]", "c"),
	)

	g, _, err := NewBuilder(Options{}).BuildWeighted(context.Background(), c)
	require.NoError(t, err)

	e, ok := g.Edge("deleted_speaker_0", "u1")
	require.True(t, ok)
	assert.Equal(t, int64(2), e.Weight)
}

func TestBuildBoth_SyntheticSpeakersKeepNilAttributes(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("c1", "books", "op").
			Reply("a", "u1", "c1").
			Reply("b", "[deleted]", "a"),
	)

	result, err := NewBuilder(Options{}).BuildBoth(context.Background(), c)
	require.NoError(t, err)

	for name, nodes := range map[string]interface{ Node(string) (*Node, bool) }{
		VariantMulti:    result.Multi,
		VariantWeighted: result.Weighted,
	} {
		synthetic, ok := nodes.Node("deleted_speaker_0")
		require.True(t, ok, name)
		assert.Nil(t, synthetic.Attributes, name)

		u1, ok := nodes.Node("u1")
		require.True(t, ok, name)
		require.NotNil(t, u1.Attributes, name)
		assert.Equal(t, []string{"books"}, u1.Attributes.Subreddits, name)
	}
}

func TestBuild_IsolatedSpeakersOmitted(t *testing.T) {
	silent := &models.Speaker{ID: "silent", Meta: models.Meta{models.MetaNumPosts: 4, models.MetaNumComments: 9}}
	c := corpustest.CorpusWithSpeakers([]*models.Speaker{silent},
		corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u2", "a"),
	)

	g, stats, err := NewBuilder(Options{}).BuildMulti(context.Background(), c)
	require.NoError(t, err)

	assert.False(t, g.HasNode("silent"))
	assert.False(t, g.HasNode("op"))
	assert.Equal(t, 2, stats.Attributed)
}

func TestBuild_SubredditsIncludeSkippedConversations(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("broken", "askscience", "u1").
			Reply("z", "u1", "gone"),
		corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u2", "a"),
	)

	g, _, err := NewBuilder(Options{}).BuildMulti(context.Background(), c)
	require.NoError(t, err)

	n, ok := g.Node("u1")
	require.True(t, ok)
	assert.Equal(t, []string{"askscience", "books"}, n.Attributes.Subreddits)
}

func TestBuild_Idempotent(t *testing.T) {
	c := loadSample(t)
	b := NewBuilder(Options{})

	g1, _, err := b.BuildMulti(context.Background(), c)
	require.NoError(t, err)
	g2, _, err := b.BuildMulti(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, g1.Nodes(), g2.Nodes())
	assert.Equal(t, g1.Edges(), g2.Edges())

	w1, _, err := b.BuildWeighted(context.Background(), c)
	require.NoError(t, err)
	w2, _, err := b.BuildWeighted(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, w1.Nodes(), w2.Nodes())
	assert.Equal(t, w1.Edges(), w2.Edges())
}

func TestBuild_MetadataFailures(t *testing.T) {
	t.Run("missing score on a reply", func(t *testing.T) {
		conv := corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u2", "a")
		delete(conv.Utterance("b").Meta, models.MetaScore)

		_, _, err := NewBuilder(Options{}).BuildMulti(context.Background(), corpustest.Corpus(conv))
		assert.True(t, errors.IsType(err, errors.ErrorTypeMetadata))
	})

	t.Run("missing score on the post is never read", func(t *testing.T) {
		conv := corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u2", "a")
		delete(conv.Utterance("p").Meta, models.MetaScore)

		_, _, err := NewBuilder(Options{}).BuildMulti(context.Background(), corpustest.Corpus(conv))
		assert.NoError(t, err)
	})

	t.Run("missing subreddit", func(t *testing.T) {
		conv := corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			WithMeta(models.MetaSubreddit, nil)

		_, _, err := NewBuilder(Options{}).BuildWeighted(context.Background(), corpustest.Corpus(conv))
		assert.True(t, errors.IsType(err, errors.ErrorTypeMetadata))
	})

	t.Run("missing speaker counts on a node", func(t *testing.T) {
		conv := corpustest.Conversation("p", "books", "op").
			Reply("a", "u1", "p").
			Reply("b", "u2", "a")
		c := corpustest.Corpus(conv)
		u2, err := c.Speaker("u2")
		require.NoError(t, err)
		delete(u2.Meta, models.MetaNumComments)

		_, _, err = NewBuilder(Options{}).BuildMulti(context.Background(), c)
		assert.True(t, errors.IsType(err, errors.ErrorTypeMetadata))
	})
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewBuilder(Options{}).BuildMulti(ctx, loadSample(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildBoth_MatchesSequentialBuilds(t *testing.T) {
	c := loadSample(t)
	b := NewBuilder(Options{})

	result, err := b.BuildBoth(context.Background(), c)
	require.NoError(t, err)

	multi, _, err := b.BuildMulti(context.Background(), c)
	require.NoError(t, err)
	weighted, _, err := b.BuildWeighted(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, multi.Edges(), result.Multi.Edges())
	assert.Equal(t, weighted.Edges(), result.Weighted.Edges())
	assert.Equal(t, VariantMulti, result.MultiStats.Variant)
	assert.Equal(t, VariantWeighted, result.WeightedStats.Variant)
	assert.Equal(t, result.MultiStats.RunID, result.WeightedStats.RunID, "both graphs belong to one run")
	assert.NotEqual(t, multi.NumEdges(), 0)
}

func TestBuild_SeparateBuildsGetSeparateRuns(t *testing.T) {
	c := loadSample(t)
	b := NewBuilder(Options{})

	_, first, err := b.BuildMulti(context.Background(), c)
	require.NoError(t, err)
	_, second, err := b.BuildWeighted(context.Background(), c)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
}

type countingAccumulator struct {
	conversations int
	replies       int
}

func (a *countingAccumulator) BeginConversation(*corpus.Conversation) { a.conversations++ }
func (a *countingAccumulator) AddReply(ReplyEvent)                    { a.replies++ }
func (a *countingAccumulator) EndConversation()                       {}

func TestRun_CustomAccumulator(t *testing.T) {
	acc := &countingAccumulator{}
	stats, err := NewBuilder(Options{}).Run(context.Background(), loadSample(t), acc)
	require.NoError(t, err)

	assert.Equal(t, 2, acc.conversations)
	assert.Equal(t, 6, acc.replies)
	assert.Equal(t, 6, stats.ReplyEvents)
}
