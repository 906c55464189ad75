package main

import (
	"context"
	"fmt"

	"github.com/rohankatakam/replygraph/internal/config"
	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/network"
	"github.com/rohankatakam/replygraph/internal/storage"
)

// loadCorpus reads the configured corpus source
func loadCorpus(ctx context.Context, cfg *config.Config) (*corpus.Corpus, error) {
	if cfg.Corpus.Source == config.SourceConvoKit {
		c, err := corpus.LoadConvoKit(cfg.Corpus.Path)
		if err != nil {
			return nil, fmt.Errorf("load corpus from %s: %w", cfg.Corpus.Path, err)
		}
		return c, nil
	}

	location := cfg.Corpus.Path
	if cfg.Corpus.Source == config.SourcePostgres {
		location = cfg.Corpus.PostgresDSN
	}

	store, err := storage.Open(cfg.Corpus.Source, location, logger.Logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	c, err := store.LoadCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus from %s store: %w", cfg.Corpus.Source, err)
	}
	return c, nil
}

// builderOptions maps graph settings onto the builder
func builderOptions(cfg *config.Config) (network.Options, error) {
	scope, err := network.ScopeByName(cfg.Graph.Scope)
	if err != nil {
		return network.Options{}, err
	}
	return network.Options{
		Resolver: network.Resolver{
			Marker: cfg.Graph.RemovalMarker,
			Prefix: cfg.Graph.SyntheticPrefix,
		},
		Scope:  scope,
		Logger: logger.Logger,
	}, nil
}
