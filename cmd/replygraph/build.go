package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/replygraph/internal/config"
	"github.com/rohankatakam/replygraph/internal/graph"
	"github.com/rohankatakam/replygraph/internal/network"
)

var (
	buildVariant string
	buildScope   string
	buildPublish bool
	buildEdges   bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build interaction graphs from the configured corpus",
	Long: `Build the multigraph, the weighted graph, or both from the configured corpus
and print a summary. Conversations whose reply structure is broken are skipped
with a warning.

Examples:
  replygraph build --variant weighted
  replygraph build --variant both --publish`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildVariant, "variant", "", "multi, weighted or both (default from config)")
	buildCmd.Flags().StringVar(&buildScope, "scope", "", "deleted-speaker scope: ordinal or conversation (default from config)")
	buildCmd.Flags().BoolVar(&buildPublish, "publish", false, "write the graphs to Neo4j")
	buildCmd.Flags().BoolVar(&buildEdges, "edges", false, "print every edge")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if buildVariant != "" {
		cfg.Graph.Variant = buildVariant
	}
	if buildScope != "" {
		cfg.Graph.Scope = buildScope
	}

	validation := config.ValidationContextBuild
	if buildPublish {
		validation = config.ValidationContextPublish
	}
	result := cfg.Validate(validation)
	for _, warn := range result.Warnings {
		logger.Warn(warn)
	}
	if err := result.Err(); err != nil {
		return err
	}

	c, err := loadCorpus(ctx, cfg)
	if err != nil {
		return err
	}

	opts, err := builderOptions(cfg)
	if err != nil {
		return err
	}
	builder := network.NewBuilder(opts)

	fmt.Printf("Corpus: %d conversations, %d utterances, %d speakers\n",
		len(c.Conversations()), c.NumUtterances(), len(c.Speakers()))

	var (
		multi    *network.MultiDiGraph
		weighted *network.DiGraph
		runID    string
	)

	switch cfg.Graph.Variant {
	case network.VariantMulti:
		g, stats, err := builder.BuildMulti(ctx, c)
		if err != nil {
			return err
		}
		printStats("Multigraph", stats)
		multi, runID = g, stats.RunID

	case network.VariantWeighted:
		g, stats, err := builder.BuildWeighted(ctx, c)
		if err != nil {
			return err
		}
		printStats("Weighted graph", stats)
		weighted, runID = g, stats.RunID

	case network.VariantBoth:
		res, err := builder.BuildBoth(ctx, c)
		if err != nil {
			return err
		}
		printStats("Multigraph", res.MultiStats)
		printStats("Weighted graph", res.WeightedStats)
		multi, weighted, runID = res.Multi, res.Weighted, res.MultiStats.RunID
	}

	if buildEdges {
		if multi != nil {
			printMultiEdges(multi)
		}
		if weighted != nil {
			printWeightedEdges(weighted)
		}
	}

	if !buildPublish {
		return nil
	}
	return publishGraphs(ctx, multi, weighted, runID)
}

// publishGraphs writes whichever graphs were built under one run ID. Batches
// are sized for the larger of the two.
func publishGraphs(ctx context.Context, multi *network.MultiDiGraph, weighted *network.DiGraph, runID string) error {
	edges := 0
	if multi != nil {
		edges = multi.NumEdges()
	}
	if weighted != nil && weighted.NumEdges() > edges {
		edges = weighted.NumEdges()
	}

	backend, err := openBackend(ctx, cfg, edges)
	if err != nil {
		return err
	}
	defer backend.Close(ctx)
	publisher := graph.NewPublisher(backend, logger.Logger)

	if multi != nil {
		if err := publishMulti(ctx, publisher, multi, runID); err != nil {
			return err
		}
	}
	if weighted != nil {
		return publishWeighted(ctx, publisher, weighted, runID)
	}
	return nil
}

func publishMulti(ctx context.Context, p *graph.Publisher, g *network.MultiDiGraph, runID string) error {
	stats, err := p.PublishMulti(ctx, g, runID)
	if err != nil {
		return err
	}
	fmt.Printf("Published %d speakers and %d REPLIED_TO edges (run %s)\n", stats.Nodes, stats.Edges, stats.RunID)
	return nil
}

func publishWeighted(ctx context.Context, p *graph.Publisher, g *network.DiGraph, runID string) error {
	stats, err := p.PublishWeighted(ctx, g, runID)
	if err != nil {
		return err
	}
	fmt.Printf("Published %d speakers and %d REPLIES edges (run %s)\n", stats.Nodes, stats.Edges, stats.RunID)
	return nil
}

func printStats(title string, stats *network.BuildStats) {
	fmt.Printf("\n%s\n", title)
	fmt.Printf("%s\n", strings.Repeat("═", 50))
	fmt.Printf("  Run: %s\n", stats.RunID)
	fmt.Printf("  Conversations: %d processed, %d skipped\n", stats.Processed, len(stats.Skipped))
	fmt.Printf("  Reply events: %d\n", stats.ReplyEvents)
	fmt.Printf("  Nodes: %d (%d attributed)\n", stats.Nodes, stats.Attributed)
	fmt.Printf("  Edges: %d\n", stats.Edges)
	fmt.Printf("  Duration: %s\n", stats.Duration)
	if len(stats.Skipped) > 0 && verbose {
		fmt.Printf("  Skipped: %s\n", strings.Join(stats.Skipped, ", "))
	}
}

func printMultiEdges(g *network.MultiDiGraph) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nFROM\tTO\tUTTERANCE\tCONVERSATION\tSCORE")
	for _, e := range g.Edges() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", e.From, e.To, e.UttID, e.ConvoID, e.UttScore)
	}
	w.Flush()
}

func printWeightedEdges(g *network.DiGraph) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nFROM\tTO\tWEIGHT")
	for _, e := range g.Edges() {
		fmt.Fprintf(w, "%s\t%s\t%d\n", e.From, e.To, e.Weight)
	}
	w.Flush()
}
