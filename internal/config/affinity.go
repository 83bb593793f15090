package config

import "fmt"

// Affinity point weights used by the influence scorer when a directed
// subsystem pair is, or is not, on the strongly-coupled list.
const (
	StrongAffinityWeight  = 20.0
	DefaultAffinityWeight = 10.0
)

// AffinityTable is a weighted adjacency table over directed subsystem pairs.
// It is plain configuration data so coupling knowledge can be tuned and
// tested independently of the scoring code.
type AffinityTable struct {
	defaultWeight float64
	weights       map[string]float64 // "from->to" -> points
}

// NewAffinityTable creates an empty table with the given default weight for
// unknown pairs.
func NewAffinityTable(defaultWeight float64) *AffinityTable {
	return &AffinityTable{
		defaultWeight: defaultWeight,
		weights:       map[string]float64{},
	}
}

// DefaultAffinityTable returns the built-in strongly-coupled pairs observed
// between trading-assistant subsystems. Weight is the scorer's affinity
// contribution in points.
func DefaultAffinityTable() *AffinityTable {
	t := NewAffinityTable(DefaultAffinityWeight)
	for _, pair := range [][2]string{
		{"memory", "execution"},
		{"cpu", "execution"},
		{"network", "market-data"},
		{"market-data", "strategy"},
		{"strategy", "execution"},
		{"execution", "risk"},
		{"disk", "memory"},
		{"database", "api"},
	} {
		t.Set(pair[0], pair[1], StrongAffinityWeight)
	}
	return t
}

func pairKey(from, to string) string {
	return fmt.Sprintf("%s->%s", from, to)
}

// Set assigns an affinity weight to the directed pair (from, to).
func (t *AffinityTable) Set(from, to string, weight float64) {
	t.weights[pairKey(from, to)] = weight
}

// Weight returns the affinity points for the directed pair (from, to),
// falling back to the table's default weight for unknown pairs.
func (t *AffinityTable) Weight(from, to string) float64 {
	if w, ok := t.weights[pairKey(from, to)]; ok {
		return w
	}
	return t.defaultWeight
}

// DefaultWeight returns the fallback weight for unknown pairs.
func (t *AffinityTable) DefaultWeight() float64 {
	return t.defaultWeight
}

// Pairs returns a defensive copy of the configured pair weights.
func (t *AffinityTable) Pairs() map[string]float64 {
	out := make(map[string]float64, len(t.weights))
	for k, v := range t.weights {
		out[k] = v
	}
	return out
}

// Len returns the number of configured pairs.
func (t *AffinityTable) Len() int {
	return len(t.weights)
}
