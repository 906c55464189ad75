package network

import (
	"fmt"
	"strconv"

	"github.com/rohankatakam/replygraph/internal/corpus"
)

const (
	// DefaultRemovalMarker is what reddit substitutes for a deleted account
	DefaultRemovalMarker = "[deleted]"
	// DefaultSyntheticPrefix prefixes the stand-in identity of a deleted account
	DefaultSyntheticPrefix = "deleted_speaker_"
)

// Resolver maps the removal marker to a conversation-scoped synthetic speaker.
// Every marker occurrence in one conversation collapses to the same node.
type Resolver struct {
	Marker string
	Prefix string
}

// DefaultResolver returns the reddit resolver
func DefaultResolver() Resolver {
	return Resolver{Marker: DefaultRemovalMarker, Prefix: DefaultSyntheticPrefix}
}

// Resolve returns speakerID unchanged unless it is the removal marker
func (r Resolver) Resolve(speakerID, scope string) string {
	if speakerID == r.Marker {
		return r.Prefix + scope
	}
	return speakerID
}

// ScopeFunc derives a conversation's deleted-speaker scope. ordinal is the
// conversation's zero-based position among intact conversations.
type ScopeFunc func(ordinal int, conv *corpus.Conversation) string

// OrdinalScope numbers deleted speakers by processing position: deleted_speaker_0, deleted_speaker_1, ...
func OrdinalScope(ordinal int, _ *corpus.Conversation) string {
	return strconv.Itoa(ordinal)
}

// ConversationScope names deleted speakers after their conversation, independent of corpus order
func ConversationScope(_ int, conv *corpus.Conversation) string {
	return conv.ID
}

// Scope names accepted by ScopeByName
const (
	ScopeOrdinal      = "ordinal"
	ScopeConversation = "conversation"
)

// ScopeByName looks up a scope strategy
func ScopeByName(name string) (ScopeFunc, error) {
	switch name {
	case "", ScopeOrdinal:
		return OrdinalScope, nil
	case ScopeConversation:
		return ConversationScope, nil
	default:
		return nil, fmt.Errorf("unknown deleted-speaker scope %q (want %s or %s)", name, ScopeOrdinal, ScopeConversation)
	}
}

// AssignScopes computes every intact conversation's scope upfront, so no
// conversation's identity depends on another's processing. Conversations
// failing the integrity check get no scope; their violation is returned
// instead, keyed by conversation ID.
func AssignScopes(c *corpus.Corpus, fn ScopeFunc) (map[string]string, map[string]error) {
	scopes := make(map[string]string, len(c.Conversations()))
	violations := make(map[string]error)
	ordinal := 0
	for _, conv := range c.Conversations() {
		if err := conv.CheckIntegrity(); err != nil {
			violations[conv.ID] = err
			continue
		}
		scopes[conv.ID] = fn(ordinal, conv)
		ordinal++
	}
	return scopes, violations
}
