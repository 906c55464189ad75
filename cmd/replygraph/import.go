package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/replygraph/internal/config"
	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/storage"
)

var (
	importFrom string
	importTo   string
	importPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a ConvoKit corpus directory into a store",
	Long: `Read utterances.jsonl, speakers.json and conversations.json from a ConvoKit
corpus directory and save the corpus into SQLite, PostgreSQL or bbolt, keeping
its order. Later builds can then use corpus.source to read from the store.

Examples:
  replygraph import --from ./reddit-corpus-small --to sqlite --path corpus.db
  POSTGRES_DSN=postgres://... replygraph import --from ./reddit-corpus-small --to postgres`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFrom, "from", "", "ConvoKit corpus directory (default: corpus.path)")
	importCmd.Flags().StringVar(&importTo, "to", storage.KindSQLite, "store kind: sqlite, postgres or bolt")
	importCmd.Flags().StringVar(&importPath, "path", "", "sqlite or bolt file, or postgres DSN (default: replygraph.<kind>, or POSTGRES_DSN)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	from := importFrom
	if from == "" {
		from = cfg.Corpus.Path
	}

	location := importPath
	switch importTo {
	case storage.KindPostgres:
		if location == "" {
			location = cfg.Corpus.PostgresDSN
		}
		if location == "" {
			return fmt.Errorf("POSTGRES_DSN is required to import into postgres")
		}
	case storage.KindSQLite, storage.KindBolt:
		if location == "" {
			location = "replygraph." + importTo
		}
	default:
		return fmt.Errorf("unknown store kind %q", importTo)
	}

	start := time.Now()
	c, err := corpus.LoadConvoKit(from)
	if err != nil {
		return fmt.Errorf("load corpus from %s: %w", from, err)
	}

	store, err := storage.Open(importTo, location, logger.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveCorpus(ctx, c); err != nil {
		return err
	}

	fmt.Printf("Imported %d conversations, %d utterances, %d speakers into %s in %s\n",
		len(c.Conversations()), c.NumUtterances(), len(c.Speakers()), importTo, time.Since(start).Round(time.Millisecond))
	if importTo != storage.KindPostgres {
		fmt.Printf("Build from it with: REPLYGRAPH_CORPUS_SOURCE=%s REPLYGRAPH_CORPUS_PATH=%s replygraph build\n", importTo, location)
	} else {
		fmt.Printf("Build from it with: REPLYGRAPH_CORPUS_SOURCE=%s replygraph build\n", config.SourcePostgres)
	}
	return nil
}
