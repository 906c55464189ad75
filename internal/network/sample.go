package network

import (
	"context"
	"fmt"

	"github.com/rohankatakam/replygraph/internal/corpus"
)

// The two validation conversations; they share the participant nathan8999
const (
	DefaultSampleA = "9fio59"
	DefaultSampleB = "9gthts"
)

// SampleTwoConversations extracts exactly two conversations into a standalone
// corpus and builds the multigraph over it. An unknown conversation ID aborts
// the extraction.
func (b *Builder) SampleTwoConversations(ctx context.Context, c *corpus.Corpus, idA, idB string) (*corpus.Corpus, *MultiDiGraph, *BuildStats, error) {
	if idA == idB {
		return nil, nil, nil, fmt.Errorf("sample needs two distinct conversations, got %s twice", idA)
	}

	sub, err := c.Subset(idA, idB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("extract sample: %w", err)
	}

	g, stats, err := b.BuildMulti(ctx, sub)
	if err != nil {
		return sub, nil, stats, err
	}
	return sub, g, stats, nil
}
