package network

import (
	"github.com/rohankatakam/replygraph/internal/corpus"
)

// Accumulator consumes the reply events of one conversation at a time
type Accumulator interface {
	BeginConversation(conv *corpus.Conversation)
	AddReply(ev ReplyEvent)
	EndConversation()
}

// attributable is the node side shared by both graph variants
type attributable interface {
	HasNode(id string) bool
	SetNodeAttributes(id string, attrs NodeAttributes)
	NumNodes() int
	NumEdges() int
}

// multiAccumulator writes one keyed edge per reply
type multiAccumulator struct {
	graph *MultiDiGraph
}

func newMultiAccumulator() *multiAccumulator {
	return &multiAccumulator{graph: NewMultiDiGraph()}
}

func (a *multiAccumulator) BeginConversation(*corpus.Conversation) {}

func (a *multiAccumulator) AddReply(ev ReplyEvent) {
	a.graph.AddEdge(MultiEdge{
		From:         ev.From,
		To:           ev.To,
		Key:          ev.UtteranceID,
		ConvoID:      ev.ConversationID,
		UttID:        ev.UtteranceID,
		UttText:      ev.Text,
		UttSpeaker:   ev.Speaker,
		UttTimestamp: ev.Timestamp,
		UttScore:     ev.Score,
	})
}

func (a *multiAccumulator) EndConversation() {}

// weightedAccumulator keeps a running reply count per replier within one
// conversation and stamps it onto the (replier, repliee) edge. The count
// restarts with every conversation, so a pair touched by a later conversation
// carries that conversation's count only.
type weightedAccumulator struct {
	graph   *DiGraph
	replies map[string]int64
}

func newWeightedAccumulator() *weightedAccumulator {
	return &weightedAccumulator{graph: NewDiGraph()}
}

func (a *weightedAccumulator) BeginConversation(conv *corpus.Conversation) {
	a.replies = make(map[string]int64)
	for _, id := range conv.SpeakerIDs() {
		a.replies[id] = 0
	}
}

func (a *weightedAccumulator) AddReply(ev ReplyEvent) {
	// Speakers first seen here (synthetic deleted speakers) start from the zero value
	a.replies[ev.From]++
	a.graph.SetEdgeWeight(ev.From, ev.To, a.replies[ev.From])
}

func (a *weightedAccumulator) EndConversation() {
	a.replies = nil
}
