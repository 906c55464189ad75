package network

// Node attribute keys, shared by both graph variants
const (
	AttrNumComments = "num_comments"
	AttrNumPosts    = "num_posts"
	AttrSubreddits  = "subreddits"
)

// NodeAttributes are attached after all edges exist
type NodeAttributes struct {
	NumComments int64
	NumPosts    int64
	Subreddits  []string
}

// Properties returns the attributes keyed by their attribute names
func (a *NodeAttributes) Properties() map[string]any {
	return map[string]any{
		AttrNumComments: a.NumComments,
		AttrNumPosts:    a.NumPosts,
		AttrSubreddits:  a.Subreddits,
	}
}

// Node is one resolved speaker. Attributes is nil for speakers without a
// corpus entry, such as synthetic deleted speakers.
type Node struct {
	ID         string
	Attributes *NodeAttributes
}

// nodeSet keeps nodes in insertion order
type nodeSet struct {
	order []string
	nodes map[string]*Node
}

func newNodeSet() nodeSet {
	return nodeSet{nodes: make(map[string]*Node)}
}

func (s *nodeSet) add(id string) {
	if _, ok := s.nodes[id]; ok {
		return
	}
	s.nodes[id] = &Node{ID: id}
	s.order = append(s.order, id)
}

// HasNode reports whether the speaker is a node
func (s *nodeSet) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Node looks up a node
func (s *nodeSet) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns nodes in insertion order
func (s *nodeSet) Nodes() []*Node {
	out := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id])
	}
	return out
}

// NumNodes returns the node count
func (s *nodeSet) NumNodes() int {
	return len(s.order)
}

// SetNodeAttributes attaches attributes to an existing node. Unknown IDs are
// ignored: attribution never creates nodes.
func (s *nodeSet) SetNodeAttributes(id string, attrs NodeAttributes) {
	if n, ok := s.nodes[id]; ok {
		n.Attributes = &attrs
	}
}

// Multigraph edge attribute keys
const (
	AttrConvoID      = "convo_id"
	AttrUttID        = "utt_id"
	AttrUttText      = "utt_text"
	AttrUttSpeaker   = "utt_speaker"
	AttrUttTimestamp = "utt_timestamp"
	AttrUttScore     = "utt_score"
	AttrWeight       = "weight"
)

// MultiEdge is one reply, keyed by the replying utterance's ID
type MultiEdge struct {
	From         string
	To           string
	Key          string
	ConvoID      string
	UttID        string
	UttText      string
	UttSpeaker   string
	UttTimestamp int64
	UttScore     int64
}

// Properties returns the edge attributes keyed by their attribute names
func (e *MultiEdge) Properties() map[string]any {
	return map[string]any{
		AttrConvoID:      e.ConvoID,
		AttrUttID:        e.UttID,
		AttrUttText:      e.UttText,
		AttrUttSpeaker:   e.UttSpeaker,
		AttrUttTimestamp: e.UttTimestamp,
		AttrUttScore:     e.UttScore,
	}
}

type multiKey struct {
	from, to, key string
}

// MultiDiGraph is a directed multigraph of speakers. Parallel edges between
// the same speakers are kept apart by their keys.
type MultiDiGraph struct {
	nodeSet
	order []multiKey
	edges map[multiKey]*MultiEdge
}

// NewMultiDiGraph creates an empty multigraph
func NewMultiDiGraph() *MultiDiGraph {
	return &MultiDiGraph{
		nodeSet: newNodeSet(),
		edges:   make(map[multiKey]*MultiEdge),
	}
}

// AddEdge adds both endpoints and the edge. Adding an existing
// (from, to, key) replaces its attributes and returns false.
func (g *MultiDiGraph) AddEdge(e MultiEdge) bool {
	g.add(e.From)
	g.add(e.To)

	k := multiKey{e.From, e.To, e.Key}
	if existing, ok := g.edges[k]; ok {
		*existing = e
		return false
	}
	g.edges[k] = &e
	g.order = append(g.order, k)
	return true
}

// Edge looks up one keyed edge
func (g *MultiDiGraph) Edge(from, to, key string) (*MultiEdge, bool) {
	e, ok := g.edges[multiKey{from, to, key}]
	return e, ok
}

// EdgesBetween returns the parallel edges from one speaker to another
func (g *MultiDiGraph) EdgesBetween(from, to string) []*MultiEdge {
	var out []*MultiEdge
	for _, k := range g.order {
		if k.from == from && k.to == to {
			out = append(out, g.edges[k])
		}
	}
	return out
}

// Edges returns edges in insertion order
func (g *MultiDiGraph) Edges() []*MultiEdge {
	out := make([]*MultiEdge, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.edges[k])
	}
	return out
}

// NumEdges returns the edge count
func (g *MultiDiGraph) NumEdges() int {
	return len(g.order)
}

// WeightedEdge is the single edge for an ordered speaker pair
type WeightedEdge struct {
	From   string
	To     string
	Weight int64
}

type pairKey struct {
	from, to string
}

// DiGraph is a directed graph with at most one weighted edge per ordered pair
type DiGraph struct {
	nodeSet
	order []pairKey
	edges map[pairKey]*WeightedEdge
}

// NewDiGraph creates an empty weighted digraph
func NewDiGraph() *DiGraph {
	return &DiGraph{
		nodeSet: newNodeSet(),
		edges:   make(map[pairKey]*WeightedEdge),
	}
}

// SetEdgeWeight adds both endpoints and sets, not adds to, the pair's weight
func (g *DiGraph) SetEdgeWeight(from, to string, weight int64) {
	g.add(from)
	g.add(to)

	k := pairKey{from, to}
	if e, ok := g.edges[k]; ok {
		e.Weight = weight
		return
	}
	g.edges[k] = &WeightedEdge{From: from, To: to, Weight: weight}
	g.order = append(g.order, k)
}

// Edge looks up the pair's edge
func (g *DiGraph) Edge(from, to string) (*WeightedEdge, bool) {
	e, ok := g.edges[pairKey{from, to}]
	return e, ok
}

// Edges returns edges in insertion order
func (g *DiGraph) Edges() []*WeightedEdge {
	out := make([]*WeightedEdge, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.edges[k])
	}
	return out
}

// NumEdges returns the edge count
func (g *DiGraph) NumEdges() int {
	return len(g.order)
}
