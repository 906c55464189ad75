// Package corpustest builds small in-memory corpora for tests.
package corpustest

import (
	"fmt"

	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/models"
)

// ConversationBuilder assembles one conversation utterance by utterance
type ConversationBuilder struct {
	id         string
	meta       models.Meta
	utterances []*models.Utterance
	clock      int64
}

// Conversation starts a conversation whose root post has the conversation's ID
func Conversation(id, subreddit, rootSpeaker string) *ConversationBuilder {
	b := &ConversationBuilder{
		id:    id,
		meta:  models.Meta{models.MetaSubreddit: subreddit},
		clock: 1537000000,
	}
	b.add(id, rootSpeaker, nil)
	return b
}

// Reply appends a reply from speaker to parent
func (b *ConversationBuilder) Reply(id, speaker, parent string) *ConversationBuilder {
	p := parent
	b.add(id, speaker, &p)
	return b
}

// WithMeta overrides a conversation metadata value
func (b *ConversationBuilder) WithMeta(key string, value any) *ConversationBuilder {
	b.meta[key] = value
	return b
}

// Utterance returns a previously added utterance for adjustment
func (b *ConversationBuilder) Utterance(id string) *models.Utterance {
	for _, utt := range b.utterances {
		if utt.ID == id {
			return utt
		}
	}
	panic(fmt.Sprintf("corpustest: no utterance %q in %s", id, b.id))
}

func (b *ConversationBuilder) add(id, speaker string, parent *string) {
	b.clock += 60
	b.utterances = append(b.utterances, &models.Utterance{
		ID:             id,
		ConversationID: b.id,
		SpeakerID:      speaker,
		ReplyTo:        parent,
		Text:           "text of " + id,
		Timestamp:      b.clock,
		Meta:           models.Meta{models.MetaScore: int64(len(b.utterances) + 1)},
	})
}

// Build returns the conversation
func (b *ConversationBuilder) Build() *corpus.Conversation {
	return corpus.NewConversation(b.id, b.meta, b.utterances)
}

// Utterances returns the raw utterance list
func (b *ConversationBuilder) Utterances() []*models.Utterance {
	return b.utterances
}

// Corpus builds a corpus from conversations. Every speaker gets num_posts
// equal to its root posts and num_comments equal to its replies. The removal
// marker is listed as a speaker too, as reddit dumps do.
func Corpus(builders ...*ConversationBuilder) *corpus.Corpus {
	return CorpusWithSpeakers(nil, builders...)
}

// CorpusWithSpeakers is Corpus plus extra speakers that never speak
func CorpusWithSpeakers(extra []*models.Speaker, builders ...*ConversationBuilder) *corpus.Corpus {
	var convs []*corpus.Conversation
	var order []string
	posts := make(map[string]int64)
	comments := make(map[string]int64)

	for _, b := range builders {
		convs = append(convs, b.Build())
		for _, utt := range b.utterances {
			if _, seen := posts[utt.SpeakerID]; !seen {
				order = append(order, utt.SpeakerID)
				posts[utt.SpeakerID] = 0
			}
			if utt.IsRoot() {
				posts[utt.SpeakerID]++
			} else {
				comments[utt.SpeakerID]++
			}
		}
	}

	speakers := make([]*models.Speaker, 0, len(order)+len(extra))
	for _, id := range order {
		speakers = append(speakers, &models.Speaker{
			ID: id,
			Meta: models.Meta{
				models.MetaNumPosts:    posts[id],
				models.MetaNumComments: comments[id],
			},
		})
	}
	speakers = append(speakers, extra...)

	c, err := corpus.New(convs, speakers)
	if err != nil {
		panic(fmt.Sprintf("corpustest: %v", err))
	}
	return c
}
