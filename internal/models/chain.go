package models

import "time"

// ChainShape classifies the structure of an extracted chain based on
// in/out-degree counts over graph edges between the chain's own nodes.
type ChainShape string

const (
	ShapeLinear    ChainShape = "linear"
	ShapeBranching ChainShape = "branching" // some node has out-degree > 1
	ShapeMerging   ChainShape = "merging"   // some node has in-degree > 1
	ShapeComplex   ChainShape = "complex"   // both branching and merging
)

// CausalChain is an ordered path of nodes plus the edges connecting
// consecutive nodes. Chains are derived on demand and never persisted
// independently of the nodes and edges they reference.
type CausalChain struct {
	ID        string        `json:"id"`
	Nodes     []CausalNode  `json:"nodes"`
	Edges     []CausalEdge  `json:"edges"`
	Score     float64       `json:"score"` // 0-100 aggregate
	Length    int           `json:"length"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
	Shape     ChainShape    `json:"shape"`
}

// Root returns the first node of the chain. Chains shorter than 2 nodes are
// discarded during extraction, so Root is safe on any extracted chain.
func (c *CausalChain) Root() CausalNode {
	return c.Nodes[0]
}

// Last returns the final node of the chain.
func (c *CausalChain) Last() CausalNode {
	return c.Nodes[len(c.Nodes)-1]
}

// MeanSeverity returns the average node severity across the chain.
func (c *CausalChain) MeanSeverity() float64 {
	if len(c.Nodes) == 0 {
		return 0
	}
	sum := 0.0
	for _, n := range c.Nodes {
		sum += n.Severity
	}
	return sum / float64(len(c.Nodes))
}

// MaxSeverity returns the highest node severity in the chain.
func (c *CausalChain) MaxSeverity() float64 {
	max := 0.0
	for _, n := range c.Nodes {
		if n.Severity > max {
			max = n.Severity
		}
	}
	return max
}
