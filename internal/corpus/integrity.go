package corpus

import (
	"fmt"
	"strings"

	"github.com/rohankatakam/replygraph/internal/errors"
)

// CheckIntegrity verifies that the reply-to links form a single tree: one
// root, every parent present in the conversation, every utterance reachable
// from the root. A nil return means the conversation is intact.
func (c *Conversation) CheckIntegrity() error {
	if len(c.duplicates) > 0 {
		ids := make([]string, 0, len(c.duplicates))
		for _, utt := range c.duplicates {
			ids = append(ids, utt.ID)
		}
		return errors.IntegrityError(c.ID, fmt.Sprintf("duplicate utterance ids: %s", strings.Join(ids, ", ")))
	}
	if len(c.utterances) == 0 {
		return errors.IntegrityError(c.ID, "no utterances")
	}

	var roots []string
	for _, utt := range c.utterances {
		if utt.IsRoot() {
			roots = append(roots, utt.ID)
			continue
		}
		if _, ok := c.byID[*utt.ReplyTo]; !ok {
			return errors.IntegrityError(c.ID,
				fmt.Sprintf("utterance %s replies to missing utterance %s", utt.ID, *utt.ReplyTo))
		}
	}

	if len(roots) != 1 {
		return errors.IntegrityError(c.ID, fmt.Sprintf("expected 1 root, found %d", len(roots)))
	}

	// Anything outside the root's tree sits on a reply cycle
	reached := 0
	children := c.children()
	stack := []string{roots[0]}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached++
		stack = append(stack, children[id]...)
	}

	if reached != len(c.utterances) {
		return errors.IntegrityError(c.ID,
			fmt.Sprintf("%d utterances unreachable from root %s", len(c.utterances)-reached, roots[0]))
	}

	return nil
}

// children maps each utterance ID to its direct replies in corpus order
func (c *Conversation) children() map[string][]string {
	children := make(map[string][]string, len(c.utterances))
	for _, utt := range c.utterances {
		if utt.IsRoot() {
			continue
		}
		children[*utt.ReplyTo] = append(children[*utt.ReplyTo], utt.ID)
	}
	return children
}

// root returns the parentless utterance ID, or "" if there is none
func (c *Conversation) root() string {
	for _, utt := range c.utterances {
		if utt.IsRoot() {
			return utt.ID
		}
	}
	return ""
}
