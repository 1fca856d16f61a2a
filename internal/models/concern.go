package models

const (
	maxConcernContentLen = 40
	maxNodeContentLen    = 40
)

// ConcernType says how a concern's graph is meant to be read.
type ConcernType int

const (
	// ConcernAnalyze is a why-why root cause analysis.
	ConcernAnalyze ConcernType = 0
	// ConcernSetTarget decomposes a goal into steps.
	ConcernSetTarget ConcernType = 1
)

func (t ConcernType) Valid() bool {
	return t == ConcernAnalyze || t == ConcernSetTarget
}

func (t ConcernType) String() string {
	switch t {
	case ConcernAnalyze:
		return "why-why analysis"
	case ConcernSetTarget:
		return "goal setting"
	}
	return "unknown"
}

// Concern is the root of a mind-graph.
type Concern struct {
	Record `yaml:",inline"`

	Content     string      `json:"content" yaml:"content"`
	ConcernType ConcernType `json:"concern_type" yaml:"concern_type"`
}

func (c *Concern) Validate() error {
	v := ValidationErrors{}
	v.requireText("content", c.Content, maxConcernContentLen)
	if !c.ConcernType.Valid() {
		v.Add("concern_type", "select a valid choice")
	}
	return v.Err()
}

// NodeType distinguishes ordinary nodes from counter-arguments.
type NodeType int

const (
	NodeNormal  NodeType = 0
	NodeReverse NodeType = 1
)

func (t NodeType) Valid() bool {
	return t == NodeNormal || t == NodeReverse
}

func (t NodeType) String() string {
	switch t {
	case NodeNormal:
		return "normal"
	case NodeReverse:
		return "counter-argument"
	}
	return "unknown"
}

// Node is one statement in a concern's mind-graph. TargetIDs are the nodes
// this one points at; SourceIDs, filled on read, are the nodes pointing here.
type Node struct {
	Record `yaml:",inline"`

	ConcernID string   `json:"concern_id" yaml:"concern_id"`
	Content   string   `json:"content" yaml:"content"`
	ToRoot    bool     `json:"to_root" yaml:"to_root"`
	NodeType  NodeType `json:"node_type" yaml:"node_type"`
	TargetIDs []string `json:"target_ids" yaml:"target_ids"`
	SourceIDs []string `json:"source_ids,omitempty" yaml:"source_ids,omitempty"`
}

func (n *Node) Validate() error {
	v := ValidationErrors{}
	v.requireID("concern_id", n.ConcernID)
	v.requireText("content", n.Content, maxNodeContentLen)
	if !n.NodeType.Valid() {
		v.Add("node_type", "select a valid choice")
	}
	seen := make(map[string]bool, len(n.TargetIDs))
	for _, id := range n.TargetIDs {
		if n.ID != "" && id == n.ID {
			v.Add("target_ids", "a node cannot target itself")
		}
		if seen[id] {
			v.Add("target_ids", "duplicate target "+id)
		}
		seen[id] = true
	}
	return v.Err()
}

// Edge is a directed connection between two nodes.
type Edge struct {
	SourceID string `json:"source_id" yaml:"source_id"`
	TargetID string `json:"target_id" yaml:"target_id"`
}
