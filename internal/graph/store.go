// Package graph implements the in-memory node/edge store of the diagnosis
// engine. The store is owned exclusively by one engine instance and follows
// the engine's single-threaded model: no operation blocks and no internal
// locking is performed. Callers receive defensive copies, never references
// into internal state.
package graph

import (
	"sort"
	"time"

	"github.com/helixtrade/causegraph/internal/logging"
	"github.com/helixtrade/causegraph/internal/models"
)

// Store holds causal nodes and their directed influence edges with
// adjacency indexes in both directions.
type Store struct {
	nodes    map[string]*models.CausalNode
	edges    map[string]*models.CausalEdge
	outgoing map[string][]string // node ID -> edge IDs leaving it
	incoming map[string][]string // node ID -> edge IDs entering it
	logger   *logging.Logger
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{logger: logging.GetLogger("graph")}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.nodes = map[string]*models.CausalNode{}
	s.edges = map[string]*models.CausalEdge{}
	s.outgoing = map[string][]string{}
	s.incoming = map[string][]string{}
}

// Reset clears all nodes and edges.
func (s *Store) Reset() {
	s.reset()
}

// AddNode stores a node. The store takes ownership of the value.
func (s *Store) AddNode(node models.CausalNode) {
	s.nodes[node.ID] = &node
}

// AddEdge stores an edge after verifying both endpoints exist. An edge
// referencing a missing node is rejected, not created.
func (s *Store) AddEdge(edge models.CausalEdge) bool {
	if _, ok := s.nodes[edge.FromID]; !ok {
		s.logger.Debug("rejecting edge %s: from-node %s not in store", edge.ID, edge.FromID)
		return false
	}
	if _, ok := s.nodes[edge.ToID]; !ok {
		s.logger.Debug("rejecting edge %s: to-node %s not in store", edge.ID, edge.ToID)
		return false
	}
	s.edges[edge.ID] = &edge
	s.outgoing[edge.FromID] = append(s.outgoing[edge.FromID], edge.ID)
	s.incoming[edge.ToID] = append(s.incoming[edge.ToID], edge.ID)
	return true
}

// Node returns a copy of the node with the given ID.
func (s *Store) Node(id string) (models.CausalNode, bool) {
	node, ok := s.nodes[id]
	if !ok {
		return models.CausalNode{}, false
	}
	return *node, true
}

// Nodes returns copies of all nodes, ordered by timestamp ascending with ID
// as a deterministic tie-breaker.
func (s *Store) Nodes() []models.CausalNode {
	out := make([]models.CausalNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	sortNodesByTime(out)
	return out
}

// NodesBefore returns up to limit nodes whose timestamp falls within the
// look-back window [ts-window, ts) — strictly preceding ts — most recent
// first. This is the candidate scan for auto-connection.
func (s *Store) NodesBefore(ts time.Time, window time.Duration, limit int) []models.CausalNode {
	earliest := ts.Add(-window)
	candidates := make([]models.CausalNode, 0, limit)
	for _, n := range s.nodes {
		if n.Timestamp.Before(ts) && !n.Timestamp.Before(earliest) {
			candidates = append(candidates, *n)
		}
	}
	// Most recent first, ID tie-breaker for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].Timestamp.Equal(candidates[j].Timestamp) {
			return candidates[i].Timestamp.After(candidates[j].Timestamp)
		}
		return candidates[i].ID < candidates[j].ID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// OutgoingEdges returns copies of the edges leaving the given node, sorted
// by influence descending.
func (s *Store) OutgoingEdges(nodeID string) []models.CausalEdge {
	return s.collectEdges(s.outgoing[nodeID])
}

// IncomingEdges returns copies of the edges entering the given node, sorted
// by influence descending.
func (s *Store) IncomingEdges(nodeID string) []models.CausalEdge {
	return s.collectEdges(s.incoming[nodeID])
}

func (s *Store) collectEdges(ids []string) []models.CausalEdge {
	out := make([]models.CausalEdge, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.edges[id]; ok {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Influence != out[j].Influence {
			return out[i].Influence > out[j].Influence
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// InDegree returns the number of edges entering the node.
func (s *Store) InDegree(nodeID string) int {
	return len(s.incoming[nodeID])
}

// Roots returns copies of all nodes with no incoming edges, ordered by
// timestamp ascending.
func (s *Store) Roots() []models.CausalNode {
	out := []models.CausalNode{}
	for id, n := range s.nodes {
		if len(s.incoming[id]) == 0 {
			out = append(out, *n)
		}
	}
	sortNodesByTime(out)
	return out
}

// MeanIncomingInfluence returns the average influence of edges entering the
// node, and whether the node has any incoming edges at all.
func (s *Store) MeanIncomingInfluence(nodeID string) (float64, bool) {
	ids := s.incoming[nodeID]
	if len(ids) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, id := range ids {
		sum += s.edges[id].Influence
	}
	return sum / float64(len(ids)), true
}

// RemoveOlderThan evicts every node timestamped before the cutoff together
// with any edge touching an evicted node. Returns counts of removed nodes
// and edges.
func (s *Store) RemoveOlderThan(cutoff time.Time) (int, int) {
	removedNodes := 0
	removedEdges := 0
	for id, n := range s.nodes {
		if !n.Timestamp.Before(cutoff) {
			continue
		}
		removedEdges += s.removeNode(id)
		removedNodes++
	}
	if removedNodes > 0 {
		s.logger.Debug("retention removed %d nodes and %d edges before %s",
			removedNodes, removedEdges, cutoff.Format(time.RFC3339))
	}
	return removedNodes, removedEdges
}

// removeNode deletes the node and every edge touching it, returning the
// number of edges removed.
func (s *Store) removeNode(id string) int {
	removed := 0
	for _, edgeID := range append(append([]string{}, s.outgoing[id]...), s.incoming[id]...) {
		if s.removeEdge(edgeID) {
			removed++
		}
	}
	delete(s.outgoing, id)
	delete(s.incoming, id)
	delete(s.nodes, id)
	return removed
}

func (s *Store) removeEdge(id string) bool {
	edge, ok := s.edges[id]
	if !ok {
		return false
	}
	s.outgoing[edge.FromID] = removeID(s.outgoing[edge.FromID], id)
	s.incoming[edge.ToID] = removeID(s.incoming[edge.ToID], id)
	delete(s.edges, id)
	return true
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// NodeCount returns the number of stored nodes.
func (s *Store) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of stored edges.
func (s *Store) EdgeCount() int {
	return len(s.edges)
}

func sortNodesByTime(nodes []models.CausalNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].Timestamp.Equal(nodes[j].Timestamp) {
			return nodes[i].Timestamp.Before(nodes[j].Timestamp)
		}
		return nodes[i].ID < nodes[j].ID
	})
}
