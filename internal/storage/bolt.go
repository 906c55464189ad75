package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/errors"
)

// One bucket per record kind; keys are big-endian positions so cursor order is corpus order
const (
	conversationsBucket = "conversations"
	utterancesBucket    = "utterances"
	speakersBucket      = "speakers"
)

// BoltStore implements storage in a single bbolt file
type BoltStore struct {
	db     *bolt.DB
	logger *logrus.Logger
}

// NewBoltStore opens or creates a bbolt file
func NewBoltStore(path string, logger *logrus.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.DatabaseErrorf(err, "open bolt file %s", path)
	}

	return &BoltStore{db: db, logger: loggerOrDefault(logger)}, nil
}

// SaveCorpus replaces the stored corpus in one update transaction
func (s *BoltStore) SaveCorpus(ctx context.Context, c *corpus.Corpus) error {
	rows, err := toRows(c)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := putAll(ctx, tx, conversationsBucket, rows.conversations, func(r conversationRow) int64 { return r.Position }); err != nil {
			return err
		}
		if err := putAll(ctx, tx, utterancesBucket, rows.utterances, func(r utteranceRow) int64 { return r.Position }); err != nil {
			return err
		}
		return putAll(ctx, tx, speakersBucket, rows.speakers, func(r speakerRow) int64 { return r.Position })
	})
	if err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"conversations": len(rows.conversations),
		"utterances":    len(rows.utterances),
		"speakers":      len(rows.speakers),
	}).Info("Saved corpus")
	return nil
}

// putAll recreates the bucket and writes rows keyed by position
func putAll[T any](ctx context.Context, tx *bolt.Tx, name string, rows []T, position func(T) int64) error {
	if err := tx.DeleteBucket([]byte(name)); err != nil && err != bolt.ErrBucketNotFound {
		return err
	}
	bucket, err := tx.CreateBucket([]byte(name))
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if err := bucket.Put(positionKey(position(row)), data); err != nil {
			return err
		}
	}
	return nil
}

// LoadCorpus reads the stored corpus back in its original order
func (s *BoltStore) LoadCorpus(ctx context.Context) (*corpus.Corpus, error) {
	rows := &corpusRows{}

	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		if rows.conversations, err = getAll[conversationRow](ctx, tx, conversationsBucket); err != nil {
			return err
		}
		if rows.utterances, err = getAll[utteranceRow](ctx, tx, utterancesBucket); err != nil {
			return err
		}
		rows.speakers, err = getAll[speakerRow](ctx, tx, speakersBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	return rows.toCorpus()
}

func getAll[T any](ctx context.Context, tx *bolt.Tx, name string) ([]T, error) {
	bucket := tx.Bucket([]byte(name))
	if bucket == nil {
		return nil, nil
	}

	var rows []T
	err := bucket.ForEach(func(_, v []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var row T
		if err := json.Unmarshal(v, &row); err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func positionKey(pos int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(pos))
	return key
}

// Close closes the bolt file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func loggerOrDefault(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
