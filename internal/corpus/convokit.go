package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rohankatakam/replygraph/internal/models"
)

// ConvoKit corpus directory layout
const (
	UtterancesFile    = "utterances.jsonl"
	SpeakersFile      = "speakers.json"
	ConversationsFile = "conversations.json"
)

// convokitUtterance mirrors one line of utterances.jsonl
type convokitUtterance struct {
	ID             string      `json:"id"`
	Speaker        string      `json:"speaker"`
	ConversationID string      `json:"conversation_id"`
	ReplyTo        *string     `json:"reply_to"`
	Timestamp      json.Number `json:"timestamp"`
	Text           string      `json:"text"`
	Meta           models.Meta `json:"meta"`
}

// LoadConvoKit reads a ConvoKit corpus directory. Conversation order follows
// the first appearance of each conversation in utterances.jsonl; speaker order
// follows speakers.json.
func LoadConvoKit(dir string) (*Corpus, error) {
	utterances, err := readUtterances(filepath.Join(dir, UtterancesFile))
	if err != nil {
		return nil, err
	}

	speakerIDs, speakerMeta, err := readMetaIndex(filepath.Join(dir, SpeakersFile))
	if err != nil {
		return nil, err
	}
	speakers := make([]*models.Speaker, 0, len(speakerIDs))
	for _, id := range speakerIDs {
		speakers = append(speakers, &models.Speaker{ID: id, Meta: speakerMeta[id]})
	}

	_, convMeta, err := readMetaIndex(filepath.Join(dir, ConversationsFile))
	if err != nil {
		return nil, err
	}

	c, err := FromUtterances(utterances, speakers, convMeta)
	if err != nil {
		return nil, fmt.Errorf("build corpus from %s: %w", dir, err)
	}

	// Keep listed speakers that never speak, so node attribution sees the full list
	return c.withSpeakerOrder(speakers)
}

func readUtterances(path string) ([]*models.Utterance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open utterances: %w", err)
	}
	defer f.Close()

	var utterances []*models.Utterance
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var cu convokitUtterance
		if err := dec.Decode(&cu); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		ts, err := parseTimestamp(cu.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}

		utterances = append(utterances, &models.Utterance{
			ID:             cu.ID,
			ConversationID: cu.ConversationID,
			SpeakerID:      cu.Speaker,
			ReplyTo:        cu.ReplyTo,
			Text:           cu.Text,
			Timestamp:      ts,
			Meta:           cu.Meta,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read utterances: %w", err)
	}

	return utterances, nil
}

func parseTimestamp(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", n)
	}
	return int64(f), nil
}

// readMetaIndex reads an {id: meta} object, keeping key order. Entries written
// as {"meta": {...}, "vectors": [...]} are unwrapped. A missing file yields an
// empty index.
func readMetaIndex(path string) ([]string, map[string]models.Meta, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, map[string]models.Meta{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return decodeMetaIndex(f)
}

func decodeMetaIndex(r io.Reader) ([]string, map[string]models.Meta, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decode index: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("decode index: expected object, got %v", tok)
	}

	var order []string
	index := make(map[string]models.Meta)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decode index key: %w", err)
		}
		id, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("decode index: unexpected key %v", tok)
		}

		var entry models.Meta
		if err := dec.Decode(&entry); err != nil {
			return nil, nil, fmt.Errorf("decode index entry %q: %w", id, err)
		}
		if inner, ok := entry["meta"].(map[string]any); ok {
			entry = models.Meta(inner)
		}

		if _, seen := index[id]; !seen {
			order = append(order, id)
		}
		index[id] = entry
	}

	return order, index, nil
}

// withSpeakerOrder returns a corpus whose speaker list is listed followed by
// any speakers only known from utterances.
func (c *Corpus) withSpeakerOrder(listed []*models.Speaker) (*Corpus, error) {
	merged := make([]*models.Speaker, 0, len(listed)+len(c.speakers))
	seen := make(map[string]bool, len(listed))
	for _, s := range listed {
		seen[s.ID] = true
		merged = append(merged, s)
	}
	for _, s := range c.speakers {
		if !seen[s.ID] {
			merged = append(merged, s)
		}
	}
	return New(c.conversations, merged)
}
