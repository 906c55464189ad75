package corpus

// Path is an ordered list of utterance IDs from the root to one leaf
type Path []string

// RootToLeafPaths enumerates one path per leaf, depth first, with replies
// visited in corpus order. Branching trees yield paths sharing a prefix.
// The conversation must be intact.
func (c *Conversation) RootToLeafPaths() ([]Path, error) {
	if err := c.CheckIntegrity(); err != nil {
		return nil, err
	}
	return c.IntactPaths(), nil
}

// IntactPaths is RootToLeafPaths without the integrity check, for callers
// that already hold a nil CheckIntegrity verdict for this conversation.
func (c *Conversation) IntactPaths() []Path {
	children := c.children()
	var paths []Path

	var walk func(id string, prefix Path)
	walk = func(id string, prefix Path) {
		current := make(Path, len(prefix)+1)
		copy(current, prefix)
		current[len(prefix)] = id

		kids := children[id]
		if len(kids) == 0 {
			paths = append(paths, current)
			return
		}
		for _, kid := range kids {
			walk(kid, current)
		}
	}
	walk(c.root(), nil)

	return paths
}
