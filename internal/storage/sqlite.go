package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/errors"
)

// SQLiteStore implements storage using SQLite (for local use)
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore creates a new SQLite storage. path may be ":memory:".
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, errors.DatabaseError(err, "connect to sqlite")
	}

	// A single connection keeps an in-memory database alive across calls
	db.SetMaxOpenConns(1)

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{
		db:     db,
		logger: loggerOrDefault(logger),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, errors.DatabaseError(err, "init sqlite schema")
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		meta TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS utterances (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		speaker_id TEXT NOT NULL,
		reply_to TEXT,
		body TEXT,
		posted_at INTEGER,
		meta TEXT NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id)
	);

	CREATE TABLE IF NOT EXISTS speakers (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		meta TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_conversations_seq ON conversations(seq);
	CREATE INDEX IF NOT EXISTS idx_utterances_conversation ON utterances(conversation_id, id);
	CREATE INDEX IF NOT EXISTS idx_speakers_seq ON speakers(seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveCorpus replaces the stored corpus
func (s *SQLiteStore) SaveCorpus(ctx context.Context, c *corpus.Corpus) error {
	return saveCorpus(ctx, s.db, s.logger, c)
}

// LoadCorpus reads the stored corpus back in its original order
func (s *SQLiteStore) LoadCorpus(ctx context.Context) (*corpus.Corpus, error) {
	return loadCorpus(ctx, s.db)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
