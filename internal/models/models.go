package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Metadata keys read by the graph builders
const (
	MetaSubreddit   = "subreddit"
	MetaScore       = "score"
	MetaNumPosts    = "num_posts"
	MetaNumComments = "num_comments"
)

// Meta holds free-form metadata attached to corpus objects
type Meta map[string]any

// Utterance represents one post or reply
type Utterance struct {
	ID             string  `json:"id" db:"id"`
	ConversationID string  `json:"conversation_id" db:"conversation_id"`
	SpeakerID      string  `json:"speaker" db:"speaker_id"`
	ReplyTo        *string `json:"reply_to" db:"reply_to"`
	Text           string  `json:"text" db:"text"`
	Timestamp      int64   `json:"timestamp" db:"timestamp"`
	Meta           Meta    `json:"meta" db:"-"`
}

// IsRoot reports whether the utterance is the original post
func (u *Utterance) IsRoot() bool {
	return u.ReplyTo == nil
}

// Score returns the utterance's numeric score
func (u *Utterance) Score() (int64, error) {
	return u.Meta.Int(MetaScore)
}

// Speaker represents a conversation participant
type Speaker struct {
	ID   string `json:"id" db:"id"`
	Meta Meta   `json:"meta" db:"-"`
}

// NumPosts returns the speaker's total authored posts
func (s *Speaker) NumPosts() (int64, error) {
	return s.Meta.Int(MetaNumPosts)
}

// NumComments returns the speaker's total authored comments
func (s *Speaker) NumComments() (int64, error) {
	return s.Meta.Int(MetaNumComments)
}

// Int reads an integer value. JSON-decoded numbers arrive as float64.
func (m Meta) Int(key string) (int64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("missing metadata %q", key)
	}

	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("metadata %q is not an integer: %v", key, v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("metadata %q has unexpected type %T", key, raw)
	}
}

// String reads a string value
func (m Meta) String(key string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("missing metadata %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("metadata %q has unexpected type %T", key, raw)
	}
	return s, nil
}

// Clone returns a shallow copy
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
