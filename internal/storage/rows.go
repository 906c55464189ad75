package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/models"
)

type conversationRow struct {
	ID       string `db:"id" json:"id"`
	Position int64  `db:"seq" json:"position"`
	Meta     string `db:"meta" json:"meta"`
}

type utteranceRow struct {
	ID             string  `db:"id" json:"id"`
	ConversationID string  `db:"conversation_id" json:"conversation_id"`
	Position       int64   `db:"seq" json:"position"`
	SpeakerID      string  `db:"speaker_id" json:"speaker_id"`
	ReplyTo        *string `db:"reply_to" json:"reply_to"`
	Text           string  `db:"body" json:"text"`
	Timestamp      int64   `db:"posted_at" json:"timestamp"`
	Meta           string  `db:"meta" json:"meta"`
}

type speakerRow struct {
	ID       string `db:"id" json:"id"`
	Position int64  `db:"seq" json:"position"`
	Meta     string `db:"meta" json:"meta"`
}

// corpusRows is a corpus flattened into table rows, each slice in corpus order
type corpusRows struct {
	conversations []conversationRow
	utterances    []utteranceRow
	speakers      []speakerRow
}

func toRows(c *corpus.Corpus) (*corpusRows, error) {
	rows := &corpusRows{}

	var pos int64
	for i, conv := range c.Conversations() {
		meta, err := encodeMeta(conv.Meta)
		if err != nil {
			return nil, fmt.Errorf("conversation %s: %w", conv.ID, err)
		}
		rows.conversations = append(rows.conversations, conversationRow{ID: conv.ID, Position: int64(i), Meta: meta})

		// Duplicates follow the kept utterances so a reload keeps the same first occurrence
		utterances := append(append([]*models.Utterance(nil), conv.Utterances()...), conv.Duplicates()...)
		for _, utt := range utterances {
			meta, err := encodeMeta(utt.Meta)
			if err != nil {
				return nil, fmt.Errorf("utterance %s: %w", utt.ID, err)
			}
			row := utteranceRow{
				ID:             utt.ID,
				ConversationID: conv.ID,
				Position:       pos,
				SpeakerID:      utt.SpeakerID,
				ReplyTo:        utt.ReplyTo,
				Text:           utt.Text,
				Timestamp:      utt.Timestamp,
				Meta:           meta,
			}
			rows.utterances = append(rows.utterances, row)
			pos++
		}
	}

	for i, s := range c.Speakers() {
		meta, err := encodeMeta(s.Meta)
		if err != nil {
			return nil, fmt.Errorf("speaker %s: %w", s.ID, err)
		}
		rows.speakers = append(rows.speakers, speakerRow{ID: s.ID, Position: int64(i), Meta: meta})
	}

	return rows, nil
}

// toCorpus reassembles a corpus from rows already sorted by position
func (rows *corpusRows) toCorpus() (*corpus.Corpus, error) {
	if len(rows.conversations) == 0 && len(rows.speakers) == 0 {
		return nil, ErrEmpty
	}

	byConv := make(map[string][]*models.Utterance, len(rows.conversations))
	for _, row := range rows.utterances {
		meta, err := decodeMeta(row.Meta)
		if err != nil {
			return nil, fmt.Errorf("utterance %s: %w", row.ID, err)
		}
		utt := &models.Utterance{
			ID:             row.ID,
			ConversationID: row.ConversationID,
			SpeakerID:      row.SpeakerID,
			ReplyTo:        row.ReplyTo,
			Text:           row.Text,
			Timestamp:      row.Timestamp,
			Meta:           meta,
		}
		byConv[row.ConversationID] = append(byConv[row.ConversationID], utt)
	}

	convs := make([]*corpus.Conversation, 0, len(rows.conversations))
	for _, row := range rows.conversations {
		meta, err := decodeMeta(row.Meta)
		if err != nil {
			return nil, fmt.Errorf("conversation %s: %w", row.ID, err)
		}
		convs = append(convs, corpus.NewConversation(row.ID, meta, byConv[row.ID]))
	}

	speakers := make([]*models.Speaker, 0, len(rows.speakers))
	for _, row := range rows.speakers {
		meta, err := decodeMeta(row.Meta)
		if err != nil {
			return nil, fmt.Errorf("speaker %s: %w", row.ID, err)
		}
		speakers = append(speakers, &models.Speaker{ID: row.ID, Meta: meta})
	}

	return corpus.New(convs, speakers)
}

func encodeMeta(meta models.Meta) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode meta: %w", err)
	}
	return string(data), nil
}

// decodeMeta keeps numbers as json.Number so integer counts stay exact
func decodeMeta(raw string) (models.Meta, error) {
	meta := models.Meta{}
	if raw == "" {
		return meta, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return meta, nil
}
