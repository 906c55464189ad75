package graph

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/replygraph/internal/network"
)

// Publisher writes built interaction graphs to a graph database
type Publisher struct {
	backend Backend
	logger  *logrus.Logger
}

// PublishStats summarizes one publish
type PublishStats struct {
	RunID    string
	Nodes    int
	Edges    int
	Duration time.Duration
}

// NewPublisher creates a publisher over backend
func NewPublisher(backend Backend, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Publisher{backend: backend, logger: logger}
}

// PublishMulti writes every keyed reply edge as a REPLIED_TO relationship.
// Publishing the same graph twice leaves the database unchanged apart from run_id.
func (p *Publisher) PublishMulti(ctx context.Context, g *network.MultiDiGraph, runID string) (*PublishStats, error) {
	return p.publish(ctx, network.VariantMulti, runID, SpeakerNodes(g.Nodes(), runID), MultiEdges(g, runID))
}

// PublishWeighted writes one REPLIES relationship per speaker pair
func (p *Publisher) PublishWeighted(ctx context.Context, g *network.DiGraph, runID string) (*PublishStats, error) {
	return p.publish(ctx, network.VariantWeighted, runID, SpeakerNodes(g.Nodes(), runID), WeightedEdges(g, runID))
}

func (p *Publisher) publish(ctx context.Context, variant, runID string, nodes []GraphNode, edges []GraphEdge) (*PublishStats, error) {
	start := time.Now()
	log := p.logger.WithFields(logrus.Fields{"run_id": runID, "variant": variant})

	// Nodes first: edge queries MATCH their endpoints
	if err := p.backend.CreateNodes(ctx, nodes); err != nil {
		return nil, fmt.Errorf("publish speakers: %w", err)
	}
	log.WithField("nodes", len(nodes)).Debug("Speakers published")

	if err := p.backend.CreateEdges(ctx, edges); err != nil {
		return nil, fmt.Errorf("publish replies: %w", err)
	}

	stats := &PublishStats{
		RunID:    runID,
		Nodes:    len(nodes),
		Edges:    len(edges),
		Duration: time.Since(start),
	}
	log.WithFields(logrus.Fields{
		"nodes":    stats.Nodes,
		"edges":    stats.Edges,
		"duration": stats.Duration,
	}).Info("Graph published")

	return stats, nil
}

// SpeakerNodes converts graph nodes into Speaker nodes. Speakers without
// corpus attributes are marked synthetic.
func SpeakerNodes(nodes []*network.Node, runID string) []GraphNode {
	out := make([]GraphNode, 0, len(nodes))
	for _, n := range nodes {
		props := map[string]any{
			PropSpeakerID: n.ID,
			PropSynthetic: n.Attributes == nil,
			PropRunID:     runID,
		}
		if n.Attributes != nil {
			for k, v := range n.Attributes.Properties() {
				props[k] = v
			}
		}
		out = append(out, GraphNode{Label: LabelSpeaker, ID: n.ID, Properties: props})
	}
	return out
}

// MultiEdges converts multigraph edges, merged on utt_id
func MultiEdges(g *network.MultiDiGraph, runID string) []GraphEdge {
	edges := g.Edges()
	out := make([]GraphEdge, 0, len(edges))
	for _, e := range edges {
		props := e.Properties()
		props[PropRunID] = runID
		out = append(out, GraphEdge{
			Label:      EdgeRepliedTo,
			From:       e.From,
			To:         e.To,
			MergeKey:   network.AttrUttID,
			Properties: props,
		})
	}
	return out
}

// WeightedEdges converts weighted edges, one per ordered pair
func WeightedEdges(g *network.DiGraph, runID string) []GraphEdge {
	edges := g.Edges()
	out := make([]GraphEdge, 0, len(edges))
	for _, e := range edges {
		out = append(out, GraphEdge{
			Label: EdgeReplies,
			From:  e.From,
			To:    e.To,
			Properties: map[string]any{
				network.AttrWeight: e.Weight,
				PropRunID:          runID,
			},
		})
	}
	return out
}
