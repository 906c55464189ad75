package network

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/errors"
)

// Graph variants
const (
	VariantMulti    = "multi"
	VariantWeighted = "weighted"
	VariantBoth     = "both"
)

// ConversationState tracks one conversation through a build
type ConversationState int

const (
	StateUnvisited ConversationState = iota
	StateIntegrityChecked
	StateSkipped
	StatePathsExtracted
	StateEdgesEmitted
)

func (s ConversationState) String() string {
	switch s {
	case StateUnvisited:
		return "unvisited"
	case StateIntegrityChecked:
		return "integrity_checked"
	case StateSkipped:
		return "skipped"
	case StatePathsExtracted:
		return "paths_extracted"
	case StateEdgesEmitted:
		return "edges_emitted"
	default:
		return "unknown"
	}
}

// Options configures a Builder
type Options struct {
	Resolver Resolver
	Scope    ScopeFunc
	Logger   *logrus.Logger
}

// DefaultOptions returns reddit defaults with ordinal scoping and a silent logger
func DefaultOptions() Options {
	return Options{
		Resolver: DefaultResolver(),
		Scope:    OrdinalScope,
	}
}

// BuildStats summarizes one build
type BuildStats struct {
	RunID         string
	Variant       string
	Conversations int
	Processed     int
	Skipped       []string
	ReplyEvents   int
	Nodes         int
	Edges         int
	Attributed    int
	States        map[string]ConversationState
	Duration      time.Duration
}

// Builder turns a corpus into interaction graphs. A Builder holds no state
// between builds and may be shared.
type Builder struct {
	opts   Options
	logger *logrus.Logger
}

// NewBuilder creates a builder, filling unset options with defaults
func NewBuilder(opts Options) *Builder {
	defaults := DefaultOptions()
	if opts.Resolver.Marker == "" {
		opts.Resolver.Marker = defaults.Resolver.Marker
	}
	if opts.Resolver.Prefix == "" {
		opts.Resolver.Prefix = defaults.Resolver.Prefix
	}
	if opts.Scope == nil {
		opts.Scope = defaults.Scope
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Builder{opts: opts, logger: logger}
}

// BuildMulti builds the multigraph: one edge per reply keyed by utterance ID
func (b *Builder) BuildMulti(ctx context.Context, c *corpus.Corpus) (*MultiDiGraph, *BuildStats, error) {
	return b.buildMulti(ctx, c, uuid.NewString())
}

func (b *Builder) buildMulti(ctx context.Context, c *corpus.Corpus, runID string) (*MultiDiGraph, *BuildStats, error) {
	acc := newMultiAccumulator()
	stats, err := b.build(ctx, c, runID, VariantMulti, acc, acc.graph)
	if err != nil {
		return nil, stats, err
	}
	return acc.graph, stats, nil
}

// BuildWeighted builds the weighted digraph: one edge per ordered speaker pair
func (b *Builder) BuildWeighted(ctx context.Context, c *corpus.Corpus) (*DiGraph, *BuildStats, error) {
	return b.buildWeighted(ctx, c, uuid.NewString())
}

func (b *Builder) buildWeighted(ctx context.Context, c *corpus.Corpus, runID string) (*DiGraph, *BuildStats, error) {
	acc := newWeightedAccumulator()
	stats, err := b.build(ctx, c, runID, VariantWeighted, acc, acc.graph)
	if err != nil {
		return nil, stats, err
	}
	return acc.graph, stats, nil
}

// Result holds the graphs produced by BuildBoth
type Result struct {
	Multi         *MultiDiGraph
	MultiStats    *BuildStats
	Weighted      *DiGraph
	WeightedStats *BuildStats
}

// BuildBoth builds both variants concurrently over the same read-only corpus.
// Each variant has its own accumulator; scopes are pure, so the two agree on
// synthetic speaker IDs. Both builds share one run ID, so graphs published
// from them land on the same Speaker nodes under a single run.
func (b *Builder) BuildBoth(ctx context.Context, c *corpus.Corpus) (*Result, error) {
	result := &Result{}
	runID := uuid.NewString()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		graph, stats, err := b.buildMulti(ctx, c, runID)
		result.Multi, result.MultiStats = graph, stats
		return err
	})

	g.Go(func() error {
		graph, stats, err := b.buildWeighted(ctx, c, runID)
		result.Weighted, result.WeightedStats = graph, stats
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Run streams reply events of every intact conversation into acc, without
// node attribution. Useful for custom edge strategies.
func (b *Builder) Run(ctx context.Context, c *corpus.Corpus, acc Accumulator) (*BuildStats, error) {
	return b.traverse(ctx, c, uuid.NewString(), "custom", acc)
}

func (b *Builder) build(ctx context.Context, c *corpus.Corpus, runID, variant string, acc Accumulator, g attributable) (*BuildStats, error) {
	// Indexed over the whole corpus before any conversation is filtered
	index, err := BuildSubredditIndex(c)
	if err != nil {
		return nil, err
	}

	stats, err := b.traverse(ctx, c, runID, variant, acc)
	if err != nil {
		return stats, err
	}

	attributed, err := attributeNodes(c, index, g)
	if err != nil {
		return stats, err
	}

	stats.Attributed = attributed
	stats.Nodes = g.NumNodes()
	stats.Edges = g.NumEdges()

	b.logger.WithFields(logrus.Fields{
		"run_id":     stats.RunID,
		"variant":    variant,
		"processed":  stats.Processed,
		"skipped":    len(stats.Skipped),
		"events":     stats.ReplyEvents,
		"nodes":      stats.Nodes,
		"edges":      stats.Edges,
		"attributed": stats.Attributed,
		"duration":   stats.Duration,
	}).Info("Graph build completed")

	return stats, nil
}

// traverse walks every conversation in corpus order
func (b *Builder) traverse(ctx context.Context, c *corpus.Corpus, runID, variant string, acc Accumulator) (*BuildStats, error) {
	start := time.Now()
	stats := &BuildStats{
		RunID:         runID,
		Variant:       variant,
		Conversations: len(c.Conversations()),
		States:        make(map[string]ConversationState, len(c.Conversations())),
	}
	log := b.logger.WithFields(logrus.Fields{"run_id": stats.RunID, "variant": variant})

	// Each conversation is checked once, here; the verdict travels with the scope
	scopes, violations := AssignScopes(c, b.opts.Scope)

	for _, conv := range c.Conversations() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.States[conv.ID] = StateUnvisited

		if err := violations[conv.ID]; err != nil {
			log.WithField("conversation_id", conv.ID).Debug(err.Error())
			log.Warnf("Conversation %s is not intact", conv.ID)
			stats.States[conv.ID] = StateSkipped
			stats.Skipped = append(stats.Skipped, conv.ID)
			continue
		}
		stats.States[conv.ID] = StateIntegrityChecked

		paths := conv.IntactPaths()
		stats.States[conv.ID] = StatePathsExtracted

		events, err := Traverse(conv, paths, scopes[conv.ID], b.opts.Resolver)
		if err != nil {
			return stats, err
		}

		acc.BeginConversation(conv)
		for _, ev := range events {
			acc.AddReply(ev)
		}
		acc.EndConversation()

		stats.States[conv.ID] = StateEdgesEmitted
		stats.Processed++
		stats.ReplyEvents += len(events)

		log.WithFields(logrus.Fields{
			"conversation_id": conv.ID,
			"paths":           len(paths),
			"events":          len(events),
		}).Debug("Conversation processed")
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// attributeNodes writes counts and subreddits onto speakers that are already
// nodes. Speakers without edges are never materialized, and nodes without a
// corpus speaker keep nil attributes.
func attributeNodes(c *corpus.Corpus, index *SubredditIndex, g attributable) (int, error) {
	attributed := 0
	for _, s := range c.Speakers() {
		if !g.HasNode(s.ID) {
			continue
		}

		comments, err := s.NumComments()
		if err != nil {
			return attributed, errors.MetadataErrorf("speaker %s: %v", s.ID, err)
		}
		posts, err := s.NumPosts()
		if err != nil {
			return attributed, errors.MetadataErrorf("speaker %s: %v", s.ID, err)
		}

		// Every node with a corpus speaker spoke in some conversation, so the index has it
		subs, _ := index.SubredditsOf(s.ID)

		g.SetNodeAttributes(s.ID, NodeAttributes{
			NumComments: comments,
			NumPosts:    posts,
			Subreddits:  subs,
		})
		attributed++
	}
	return attributed, nil
}
