package indicator

// Graph is the arena owning every indicator of one strategy. Nodes are
// appended in construction order, which is leaves-first by construction:
// composite indicators build their children before registering themselves.
// Node identity is the arena index; owner back-references elsewhere hold
// these indices instead of pointers, so no reference cycles exist.
type Graph struct {
	mode  EvaluationMode
	nodes []Indicator
}

// NewGraph creates an empty graph evaluated in the given mode.
func NewGraph(mode EvaluationMode) *Graph {
	return &Graph{
		mode:  mode,
		nodes: nil,
	}
}

// Mode returns the evaluation mode chosen for the run.
func (g *Graph) Mode() EvaluationMode {
	return g.mode
}

// Add registers a node and returns its arena index.
func (g *Graph) Add(ind Indicator) int {
	g.nodes = append(g.nodes, ind)

	return len(g.nodes) - 1
}

// Node returns the indicator at arena index idx.
func (g *Graph) Node(idx int) Indicator {
	return g.nodes[idx]
}

// Size reports the number of registered nodes.
func (g *Graph) Size() int {
	return len(g.nodes)
}

// MinPeriod is the largest minimum period over all nodes, at least 1.
func (g *Graph) MinPeriod() int {
	minperiod := 1
	for _, node := range g.nodes {
		if node.MinPeriod() > minperiod {
			minperiod = node.MinPeriod()
		}
	}

	return minperiod
}

// StepAll advances every node by one bar, leaves first. Only valid in
// streaming mode.
func (g *Graph) StepAll() {
	for _, node := range g.nodes {
		node.Step()
	}
}

// RunOnceAll batch-evaluates every node, leaves first, leaving all cursors
// rewound to the start. Only valid in batch mode.
func (g *Graph) RunOnceAll() {
	for _, node := range g.nodes {
		node.RunOnce()
	}
}

// AdvanceAll moves every node's cursor forward over slots RunOnceAll has
// already computed.
func (g *Graph) AdvanceAll(n int) {
	for _, node := range g.nodes {
		node.Advance(n)
	}
}
