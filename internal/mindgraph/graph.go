// Package mindgraph holds a concern's nodes as an adjacency list and
// renders them for the client-side graph view.
package mindgraph

import (
	"slices"

	"github.com/lazypower/lifelog/internal/models"
)

// Graph is a directed graph over the nodes of one concern. Forward edges
// run source to target; the reverse index is derived from them.
type Graph struct {
	nodes   map[string]models.Node
	order   []string
	targets map[string][]string
	sources map[string][]string
}

// New builds a graph from nodes and edges. Edges naming unknown nodes are
// dropped, as are duplicates.
func New(nodes []models.Node, edges []models.Edge) *Graph {
	g := &Graph{
		nodes:   make(map[string]models.Node, len(nodes)),
		order:   make([]string, 0, len(nodes)),
		targets: make(map[string][]string),
		sources: make(map[string][]string),
	}
	for _, n := range nodes {
		if _, dup := g.nodes[n.ID]; dup {
			continue
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	for _, e := range edges {
		_, okSrc := g.nodes[e.SourceID]
		_, okDst := g.nodes[e.TargetID]
		if !okSrc || !okDst || slices.Contains(g.targets[e.SourceID], e.TargetID) {
			continue
		}
		g.targets[e.SourceID] = append(g.targets[e.SourceID], e.TargetID)
	}
	g.invert()
	return g
}

func (g *Graph) invert() {
	for _, src := range g.order {
		for _, dst := range g.targets[src] {
			g.sources[dst] = append(g.sources[dst], src)
		}
	}
}

// Len is the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Node returns a node by id.
func (g *Graph) Node(id string) (models.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Targets returns the ids id points at, in insertion order.
func (g *Graph) Targets(id string) []string {
	return slices.Clone(g.targets[id])
}

// Sources returns the ids pointing at id, in node order.
func (g *Graph) Sources(id string) []string {
	return slices.Clone(g.sources[id])
}

// RootNodes returns the nodes flagged as hanging off the concern itself.
func (g *Graph) RootNodes() []models.Node {
	var out []models.Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.ToRoot {
			out = append(out, n)
		}
	}
	return out
}

// RenderNode is one vertex of the rendered graph.
type RenderNode struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	NodeType models.NodeType `json:"node_type"`
	ToRoot   bool            `json:"to_root"`
}

// RenderEdge is one arc of the rendered graph.
type RenderEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Rendered is the JSON document the concern detail page draws.
type Rendered struct {
	Root  RenderRoot   `json:"root"`
	Nodes []RenderNode `json:"nodes"`
	Edges []RenderEdge `json:"edges"`
}

// RenderRoot describes the concern at the centre of the graph.
type RenderRoot struct {
	ID          string             `json:"id"`
	Label       string             `json:"label"`
	ConcernType models.ConcernType `json:"concern_type"`
}

// Render lays the graph out for c. Each to-root node gets an edge to the
// concern id in addition to its node-to-node edges.
func (g *Graph) Render(c models.Concern) Rendered {
	r := Rendered{
		Root:  RenderRoot{ID: c.ID, Label: c.Content, ConcernType: c.ConcernType},
		Nodes: make([]RenderNode, 0, len(g.order)),
		Edges: []RenderEdge{},
	}
	for _, id := range g.order {
		n := g.nodes[id]
		r.Nodes = append(r.Nodes, RenderNode{ID: n.ID, Label: n.Content, NodeType: n.NodeType, ToRoot: n.ToRoot})
		if n.ToRoot {
			r.Edges = append(r.Edges, RenderEdge{From: n.ID, To: c.ID})
		}
		for _, dst := range g.targets[id] {
			r.Edges = append(r.Edges, RenderEdge{From: n.ID, To: dst})
		}
	}
	return r
}
