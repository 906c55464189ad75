package network

import (
	"github.com/rohankatakam/replygraph/internal/corpus"
)

// SubredditIndex records who participated where. It is computed over every
// conversation in the corpus, including ones later rejected by the integrity
// check: subreddit participation reflects a speaker's whole history.
type SubredditIndex struct {
	// Subreddits in first-seen conversation order
	Subreddits []string
	// SubredditSpeakers maps a subreddit to its participants in first-seen order
	SubredditSpeakers map[string][]string
	// SpeakerSubreddits maps a raw speaker ID to its subreddits, ordered as Subreddits
	SpeakerSubreddits map[string][]string
}

// BuildSubredditIndex aggregates participation for the whole corpus.
// A conversation without subreddit metadata fails the index.
func BuildSubredditIndex(c *corpus.Corpus) (*SubredditIndex, error) {
	idx := &SubredditIndex{
		SubredditSpeakers: make(map[string][]string),
		SpeakerSubreddits: make(map[string][]string),
	}
	members := make(map[string]map[string]bool)

	for _, conv := range c.Conversations() {
		sub, err := conv.Subreddit()
		if err != nil {
			return nil, err
		}

		if _, ok := members[sub]; !ok {
			members[sub] = make(map[string]bool)
			idx.Subreddits = append(idx.Subreddits, sub)
		}
		for _, speaker := range conv.SpeakerIDs() {
			if members[sub][speaker] {
				continue
			}
			members[sub][speaker] = true
			idx.SubredditSpeakers[sub] = append(idx.SubredditSpeakers[sub], speaker)
		}
	}

	for _, sub := range idx.Subreddits {
		for _, speaker := range idx.SubredditSpeakers[sub] {
			idx.SpeakerSubreddits[speaker] = append(idx.SpeakerSubreddits[speaker], sub)
		}
	}

	return idx, nil
}

// SubredditsOf returns a copy of the speaker's subreddit list
func (idx *SubredditIndex) SubredditsOf(speakerID string) ([]string, bool) {
	subs, ok := idx.SpeakerSubreddits[speakerID]
	if !ok {
		return nil, false
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out, true
}
