package corpus

import (
	"fmt"

	"github.com/rohankatakam/replygraph/internal/errors"
	"github.com/rohankatakam/replygraph/internal/models"
)

// Conversation is a reply tree rooted at one original post
type Conversation struct {
	ID   string
	Meta models.Meta

	utterances []*models.Utterance
	byID       map[string]*models.Utterance
	duplicates []*models.Utterance
}

// NewConversation creates a conversation from utterances in corpus order.
// Duplicate utterance IDs keep the first occurrence and fail the integrity check.
func NewConversation(id string, meta models.Meta, utterances []*models.Utterance) *Conversation {
	c := &Conversation{
		ID:         id,
		Meta:       meta,
		utterances: make([]*models.Utterance, 0, len(utterances)),
		byID:       make(map[string]*models.Utterance, len(utterances)),
	}
	for _, utt := range utterances {
		if _, exists := c.byID[utt.ID]; exists {
			c.duplicates = append(c.duplicates, utt)
			continue
		}
		c.byID[utt.ID] = utt
		c.utterances = append(c.utterances, utt)
	}
	return c
}

// Utterances returns the conversation's utterances in corpus order
func (c *Conversation) Utterances() []*models.Utterance {
	return c.utterances
}

// Duplicates returns the utterances dropped because an earlier utterance had
// the same ID. Loaders that re-serialize a conversation must keep them so the
// integrity verdict survives.
func (c *Conversation) Duplicates() []*models.Utterance {
	return c.duplicates
}

// Utterance looks up an utterance by ID
func (c *Conversation) Utterance(id string) (*models.Utterance, bool) {
	utt, ok := c.byID[id]
	return utt, ok
}

// SpeakerIDs returns the distinct speaker IDs in first-seen order
func (c *Conversation) SpeakerIDs() []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, utt := range c.utterances {
		if seen[utt.SpeakerID] {
			continue
		}
		seen[utt.SpeakerID] = true
		ids = append(ids, utt.SpeakerID)
	}
	return ids
}

// Subreddit returns the conversation's subreddit metadata
func (c *Conversation) Subreddit() (string, error) {
	sub, err := c.Meta.String(models.MetaSubreddit)
	if err != nil {
		return "", errors.MetadataErrorf("conversation %s: %v", c.ID, err)
	}
	return sub, nil
}

// Corpus is an ordered collection of conversations and their speakers.
// Conversation order is significant: it drives deleted-speaker scoping and
// weighted-edge overwrites, so every loader must preserve it.
type Corpus struct {
	conversations []*Conversation
	convByID      map[string]*Conversation
	speakers      []*models.Speaker
	speakerByID   map[string]*models.Speaker
}

// New creates a corpus. Conversation and speaker IDs must be unique.
func New(conversations []*Conversation, speakers []*models.Speaker) (*Corpus, error) {
	c := &Corpus{
		conversations: make([]*Conversation, 0, len(conversations)),
		convByID:      make(map[string]*Conversation, len(conversations)),
		speakers:      make([]*models.Speaker, 0, len(speakers)),
		speakerByID:   make(map[string]*models.Speaker, len(speakers)),
	}

	for _, conv := range conversations {
		if _, exists := c.convByID[conv.ID]; exists {
			return nil, fmt.Errorf("duplicate conversation id %q", conv.ID)
		}
		c.convByID[conv.ID] = conv
		c.conversations = append(c.conversations, conv)
	}

	for _, s := range speakers {
		if _, exists := c.speakerByID[s.ID]; exists {
			return nil, fmt.Errorf("duplicate speaker id %q", s.ID)
		}
		c.speakerByID[s.ID] = s
		c.speakers = append(c.speakers, s)
	}

	return c, nil
}

// FromUtterances builds a corpus from a flat utterance list. Conversations are
// formed by conversation ID in first-seen order. Speakers referenced by an
// utterance but absent from speakers are added without metadata; speakers
// that never speak are dropped.
func FromUtterances(utterances []*models.Utterance, speakers []*models.Speaker, convMeta map[string]models.Meta) (*Corpus, error) {
	known := make(map[string]*models.Speaker, len(speakers))
	for _, s := range speakers {
		known[s.ID] = s
	}

	var order []string
	grouped := make(map[string][]*models.Utterance)
	var speakerList []*models.Speaker
	seenSpeaker := make(map[string]bool)

	for _, utt := range utterances {
		if utt.ConversationID == "" {
			return nil, fmt.Errorf("utterance %q has no conversation id", utt.ID)
		}
		if _, ok := grouped[utt.ConversationID]; !ok {
			order = append(order, utt.ConversationID)
		}
		grouped[utt.ConversationID] = append(grouped[utt.ConversationID], utt)

		if !seenSpeaker[utt.SpeakerID] {
			seenSpeaker[utt.SpeakerID] = true
			s, ok := known[utt.SpeakerID]
			if !ok {
				s = &models.Speaker{ID: utt.SpeakerID}
			}
			speakerList = append(speakerList, s)
		}
	}

	conversations := make([]*Conversation, 0, len(order))
	for _, id := range order {
		conversations = append(conversations, NewConversation(id, convMeta[id].Clone(), grouped[id]))
	}

	return New(conversations, speakerList)
}

// Conversations returns all conversations in corpus order
func (c *Corpus) Conversations() []*Conversation {
	return c.conversations
}

// Conversation looks up a conversation by ID
func (c *Corpus) Conversation(id string) (*Conversation, error) {
	conv, ok := c.convByID[id]
	if !ok {
		return nil, errors.NotFoundErrorf("conversation %s not found", id)
	}
	return conv, nil
}

// Speakers returns all speakers in corpus order
func (c *Corpus) Speakers() []*models.Speaker {
	return c.speakers
}

// Speaker looks up a speaker by ID
func (c *Corpus) Speaker(id string) (*models.Speaker, error) {
	s, ok := c.speakerByID[id]
	if !ok {
		return nil, errors.NotFoundErrorf("speaker %s not found", id)
	}
	return s, nil
}

// Utterance looks up an utterance within a conversation
func (c *Corpus) Utterance(conversationID, utteranceID string) (*models.Utterance, error) {
	conv, err := c.Conversation(conversationID)
	if err != nil {
		return nil, err
	}
	utt, ok := conv.Utterance(utteranceID)
	if !ok {
		return nil, errors.NotFoundErrorf("utterance %s not found in conversation %s", utteranceID, conversationID)
	}
	return utt, nil
}

// NumUtterances returns the total number of utterances
func (c *Corpus) NumUtterances() int {
	n := 0
	for _, conv := range c.conversations {
		n += len(conv.utterances)
	}
	return n
}

// Subset extracts the named conversations, in argument order, into a
// standalone corpus. Any unknown ID aborts the extraction.
func (c *Corpus) Subset(ids ...string) (*Corpus, error) {
	var utterances []*models.Utterance
	meta := make(map[string]models.Meta, len(ids))

	for _, id := range ids {
		conv, err := c.Conversation(id)
		if err != nil {
			return nil, err
		}
		utterances = append(utterances, conv.Utterances()...)
		utterances = append(utterances, conv.Duplicates()...)
		meta[id] = conv.Meta
	}

	return FromUtterances(utterances, c.speakers, meta)
}
