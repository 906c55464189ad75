package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/replygraph/internal/corpus"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
	ErrEmpty    = errors.New("store holds no corpus")
)

// Store persists a whole corpus. Conversation, utterance and speaker order
// survive a round trip, since graph construction depends on it.
type Store interface {
	// SaveCorpus replaces whatever corpus the store held
	SaveCorpus(ctx context.Context, c *corpus.Corpus) error
	// LoadCorpus returns ErrEmpty when nothing was saved
	LoadCorpus(ctx context.Context) (*corpus.Corpus, error)

	// Close connection
	Close() error
}

// Store kinds
const (
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindBolt     = "bolt"
)

// Open opens a store of the given kind. location is a file path for sqlite
// and bolt, and a DSN for postgres.
func Open(kind, location string, logger *logrus.Logger) (Store, error) {
	switch kind {
	case KindSQLite:
		return NewSQLiteStore(location, logger)
	case KindPostgres:
		return NewPostgresStore(location, logger)
	case KindBolt:
		return NewBoltStore(location, logger)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
