package network

import (
	"github.com/rohankatakam/replygraph/internal/corpus"
	"github.com/rohankatakam/replygraph/internal/errors"
)

// firstReplyDepth is the first path position that produces an edge. Position 0
// is the post and position 1 a top-level comment, which replies to the post
// rather than to a person.
const firstReplyDepth = 2

// ReplyEvent is one "replied-to" observation taken from a root-to-leaf path
type ReplyEvent struct {
	ConversationID string
	UtteranceID    string
	// From and To are resolved speaker IDs
	From string
	To   string
	// Speaker is the replying utterance's raw speaker ID
	Speaker   string
	Text      string
	Timestamp int64
	Score     int64
}

// Traverse turns a conversation's paths into reply events. An utterance shared
// by several paths yields one event per path.
func Traverse(conv *corpus.Conversation, paths []corpus.Path, scope string, resolver Resolver) ([]ReplyEvent, error) {
	var events []ReplyEvent

	for _, path := range paths {
		for i := firstReplyDepth; i < len(path); i++ {
			utt, ok := conv.Utterance(path[i])
			if !ok {
				return nil, errors.InternalErrorf("conversation %s: path references unknown utterance %s", conv.ID, path[i])
			}
			parent, ok := conv.Utterance(path[i-1])
			if !ok {
				return nil, errors.InternalErrorf("conversation %s: path references unknown utterance %s", conv.ID, path[i-1])
			}

			score, err := utt.Score()
			if err != nil {
				return nil, errors.MetadataErrorf("conversation %s utterance %s: %v", conv.ID, utt.ID, err)
			}

			events = append(events, ReplyEvent{
				ConversationID: conv.ID,
				UtteranceID:    utt.ID,
				From:           resolver.Resolve(utt.SpeakerID, scope),
				To:             resolver.Resolve(parent.SpeakerID, scope),
				Speaker:        utt.SpeakerID,
				Text:           utt.Text,
				Timestamp:      utt.Timestamp,
				Score:          score,
			})
		}
	}

	return events, nil
}
