package graph

import "context"

// Backend defines the graph database operations used to publish interaction graphs
type Backend interface {
	// CreateNodes merges nodes in batch, grouped by label
	CreateNodes(ctx context.Context, nodes []GraphNode) error

	// CreateEdges merges edges in batch, grouped by label. Both endpoints
	// must already exist.
	CreateEdges(ctx context.Context, edges []GraphEdge) error

	// Close closes the backend connection
	Close(ctx context.Context) error
}

// Node and relationship labels
const (
	LabelSpeaker = "Speaker"

	// EdgeRepliedTo is one multigraph edge, merged on its utterance
	EdgeRepliedTo = "REPLIED_TO"
	// EdgeReplies is one weighted edge per speaker pair
	EdgeReplies = "REPLIES"
)

// Property names written next to the graph attributes
const (
	PropSpeakerID = "speaker_id"
	PropSynthetic = "synthetic"
	PropRunID     = "run_id"
)

// GraphNode represents a node in the graph
type GraphNode struct {
	Label      string         // Node type, always Speaker for now
	ID         string         // Unique identifier, the resolved speaker ID
	Properties map[string]any // Node properties, including the unique key
}

// GraphEdge represents an edge between two Speaker nodes
type GraphEdge struct {
	Label string // Edge type: REPLIED_TO or REPLIES
	From  string // Source speaker ID
	To    string // Target speaker ID
	// MergeKey names the property that tells parallel edges apart. Empty
	// means at most one edge of this label per ordered pair.
	MergeKey   string
	Properties map[string]any
}
