package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/errors"
)

// Named statements shared by the sqlite and postgres stores; sqlx rebinds the
// placeholders per driver.
const (
	insertConversation = `INSERT INTO conversations (id, seq, meta) VALUES (:id, :seq, :meta)`
	insertUtterance    = `
		INSERT INTO utterances (id, conversation_id, seq, speaker_id, reply_to, body, posted_at, meta)
		VALUES (:id, :conversation_id, :seq, :speaker_id, :reply_to, :body, :posted_at, :meta)
	`
	insertSpeaker = `INSERT INTO speakers (id, seq, meta) VALUES (:id, :seq, :meta)`
)

// saveCorpus replaces the stored corpus inside one transaction
func saveCorpus(ctx context.Context, db *sqlx.DB, logger *logrus.Logger, c *corpus.Corpus) error {
	rows, err := toRows(c)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError(err, "begin transaction")
	}
	defer tx.Rollback()

	for _, table := range []string{"utterances", "conversations", "speakers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx, insertConversation, rows.conversations); err != nil {
		return fmt.Errorf("save conversations: %w", err)
	}
	if err := insertAll(ctx, tx, insertUtterance, rows.utterances); err != nil {
		return fmt.Errorf("save utterances: %w", err)
	}
	if err := insertAll(ctx, tx, insertSpeaker, rows.speakers); err != nil {
		return fmt.Errorf("save speakers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError(err, "commit corpus")
	}

	logger.WithFields(logrus.Fields{
		"conversations": len(rows.conversations),
		"utterances":    len(rows.utterances),
		"speakers":      len(rows.speakers),
	}).Info("Saved corpus")
	return nil
}

func insertAll[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareNamedContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func loadCorpus(ctx context.Context, db *sqlx.DB) (*corpus.Corpus, error) {
	rows := &corpusRows{}

	if err := db.SelectContext(ctx, &rows.conversations,
		`SELECT id, seq, meta FROM conversations ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	if err := db.SelectContext(ctx, &rows.utterances,
		`SELECT id, conversation_id, seq, speaker_id, reply_to, body, posted_at, meta FROM utterances ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("load utterances: %w", err)
	}
	if err := db.SelectContext(ctx, &rows.speakers,
		`SELECT id, seq, meta FROM speakers ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("load speakers: %w", err)
	}

	return rows.toCorpus()
}
