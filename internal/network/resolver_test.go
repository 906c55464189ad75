package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/replygraph/internal/corpus/corpustest"
	"github.com/rohankatakam/replygraph/internal/errors"
)

func TestResolver_Resolve(t *testing.T) {
	r := DefaultResolver()

	tests := []struct {
		name    string
		speaker string
		scope   string
		want    string
	}{
		{name: "regular speaker untouched", speaker: "nathan8999", scope: "3", want: "nathan8999"},
		{name: "marker becomes synthetic", speaker: "[deleted]", scope: "3", want: "deleted_speaker_3"},
		{name: "conversation scope", speaker: "[deleted]", scope: "9fio59", want: "deleted_speaker_9fio59"},
		{name: "marker lookalike untouched", speaker: "deleted", scope: "0", want: "deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.speaker, tt.scope))
		})
	}
}

func TestScopeByName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: ""},
		{name: ScopeOrdinal},
		{name: ScopeConversation},
		{name: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ScopeByName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, fn)
		})
	}
}

func TestAssignScopes(t *testing.T) {
	c := corpustest.Corpus(
		corpustest.Conversation("a", "books", "op").Reply("a1", "u1", "a"),
		corpustest.Conversation("broken", "books", "op").Reply("b1", "u1", "missing"),
		corpustest.Conversation("c", "news", "op").Reply("c1", "u2", "c"),
	)

	t.Run("ordinal skips broken conversations", func(t *testing.T) {
		scopes, violations := AssignScopes(c, OrdinalScope)
		assert.Equal(t, map[string]string{"a": "0", "c": "1"}, scopes)
		require.Len(t, violations, 1)
		assert.True(t, errors.IsType(violations["broken"], errors.ErrorTypeIntegrity))
	})

	t.Run("conversation scope is order independent", func(t *testing.T) {
		scopes, _ := AssignScopes(c, ConversationScope)
		assert.Equal(t, map[string]string{"a": "a", "c": "c"}, scopes)
	})
}
