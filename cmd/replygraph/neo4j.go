package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/replygraph/internal/config"
	"github.com/rohankatakam/replygraph/internal/graph"
)

var (
	targetRun string
	wipeForce bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Count what a publish run left in Neo4j",
	Long: `Count the speakers and reply relationships stamped with a run ID.

Example:
  replygraph verify --run-id 3f1c...`,
	RunE: runVerify,
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete one publish run from Neo4j",
	Long: `Delete the relationships stamped with a run ID, then every speaker of that
run left without relationships. Speakers re-published by a later run keep
that run's ID and are left alone.`,
	RunE: runWipe,
}

func init() {
	for _, cmd := range []*cobra.Command{verifyCmd, wipeCmd} {
		cmd.Flags().StringVar(&targetRun, "run-id", "", "run ID printed by build --publish")
		cmd.MarkFlagRequired("run-id")
	}
	wipeCmd.Flags().BoolVar(&wipeForce, "force", false, "delete without printing the counts first")
}

// openBackend connects to the configured Neo4j database. edges sizes the
// batches when neo4j.batch_size is left at zero.
func openBackend(ctx context.Context, cfg *config.Config, edges int) (*graph.Neo4jBackend, error) {
	return graph.NewNeo4jBackend(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database,
		batchConfig(cfg, edges))
}

// batchConfig uses the configured batch size, or a preset for the edge count
func batchConfig(cfg *config.Config, edges int) graph.BatchConfig {
	bc := graph.BatchConfigForEdges(edges)
	if cfg.Neo4j.BatchSize > 0 {
		bc.NodeBatchSize = cfg.Neo4j.BatchSize
		bc.EdgeBatchSize = cfg.Neo4j.BatchSize
	}
	bc.BatchesPerSecond = cfg.Neo4j.BatchesPerSecond
	return bc
}

func connect(cmd *cobra.Command) (context.Context, *graph.Neo4jBackend, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := cfg.Validate(config.ValidationContextNeo4j)
	for _, warn := range result.Warnings {
		logger.Warn(warn)
	}
	if err := result.Err(); err != nil {
		return nil, nil, err
	}

	// Maintenance queries write no batches
	backend, err := openBackend(ctx, cfg, 0)
	if err != nil {
		return nil, nil, err
	}
	return ctx, backend, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, backend, err := connect(cmd)
	if err != nil {
		return err
	}
	defer backend.Close(ctx)

	counts, err := backend.CountRun(ctx, targetRun)
	if err != nil {
		return err
	}
	printRunCounts(counts)
	return nil
}

func runWipe(cmd *cobra.Command, args []string) error {
	ctx, backend, err := connect(cmd)
	if err != nil {
		return err
	}
	defer backend.Close(ctx)

	if !wipeForce {
		counts, err := backend.CountRun(ctx, targetRun)
		if err != nil {
			return err
		}
		printRunCounts(counts)
	}

	rels, nodes, err := backend.DeleteRun(ctx, targetRun)
	if err != nil {
		return err
	}

	logger.WithField("run_id", targetRun).Info("Run wiped")
	fmt.Printf("Deleted %d relationships and %d speakers\n", rels, nodes)
	return nil
}

func printRunCounts(counts *graph.RunCounts) {
	fmt.Printf("Run %s\n", targetRun)
	fmt.Printf("  Speakers:   %d\n", counts.Speakers)
	fmt.Printf("  REPLIED_TO: %d\n", counts.RepliedTo)
	fmt.Printf("  REPLIES:    %d\n", counts.Replies)
}
