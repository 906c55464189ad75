package storage

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/errors"
)

// PostgresStore implements storage using PostgreSQL
type PostgresStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewPostgresStore creates a new PostgreSQL storage
func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, errors.DatabaseError(err, "connect to postgres")
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{
		db:     db,
		logger: loggerOrDefault(logger),
	}

	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, errors.DatabaseError(err, "init postgres schema")
	}

	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			seq BIGINT NOT NULL,
			meta TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS utterances (
			seq BIGINT PRIMARY KEY,
			id TEXT NOT NULL,
			conversation_id TEXT NOT NULL REFERENCES conversations(id),
			speaker_id TEXT NOT NULL,
			reply_to TEXT,
			body TEXT,
			posted_at BIGINT,
			meta TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS speakers (
			id TEXT PRIMARY KEY,
			seq BIGINT NOT NULL,
			meta TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_seq ON conversations(seq)`,
		`CREATE INDEX IF NOT EXISTS idx_utterances_conversation ON utterances(conversation_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_speakers_seq ON speakers(seq)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveCorpus replaces the stored corpus
func (s *PostgresStore) SaveCorpus(ctx context.Context, c *corpus.Corpus) error {
	if err := saveCorpus(ctx, s.db, s.logger, c); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

// LoadCorpus reads the stored corpus back in its original order
func (s *PostgresStore) LoadCorpus(ctx context.Context) (*corpus.Corpus, error) {
	return loadCorpus(ctx, s.db)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
