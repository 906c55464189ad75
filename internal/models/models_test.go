package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaInt(t *testing.T) {
	tests := []struct {
		name    string
		meta    Meta
		want    int64
		wantErr bool
	}{
		{name: "int", meta: Meta{"score": 3}, want: 3},
		{name: "int64", meta: Meta{"score": int64(-2)}, want: -2},
		{name: "json float", meta: Meta{"score": float64(14)}, want: 14},
		{name: "json number", meta: Meta{"score": json.Number("7")}, want: 7},
		{name: "fractional", meta: Meta{"score": 1.5}, wantErr: true},
		{name: "missing", meta: Meta{}, wantErr: true},
		{name: "null", meta: Meta{"score": nil}, wantErr: true},
		{name: "string", meta: Meta{"score": "12"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.meta.Int("score")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpeakerCounts(t *testing.T) {
	s := Speaker{ID: "nathan8999", Meta: Meta{"num_posts": float64(2), "num_comments": float64(40)}}

	posts, err := s.NumPosts()
	require.NoError(t, err)
	comments, err := s.NumComments()
	require.NoError(t, err)

	assert.Equal(t, int64(2), posts)
	assert.Equal(t, int64(40), comments)
}

func TestUtteranceIsRoot(t *testing.T) {
	parent := "root"
	assert.True(t, (&Utterance{ID: "root"}).IsRoot())
	assert.False(t, (&Utterance{ID: "c1", ReplyTo: &parent}).IsRoot())
}
