package dag

import (
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// Graph is the complete, validated execution plan.
type Graph struct {
	Nodes  map[string]*Node
	Locals map[string]cty.Value
}

// NodeType distinguishes between different kinds of nodes in the graph.
type NodeType int

const (
	// StepNode represents a node that executes a task.
	StepNode NodeType = iota
	// ResourceNode represents a node that manages a stateful resource.
	ResourceNode
)

// State represents the execution state of a node in the graph.
type State int32

const (
	Pending State = iota
	Running
	Done
	// Failed covers both failed and skipped nodes.
	Failed
)

// Node is a single vertex in the execution graph.
type Node struct {
	ID   string
	Addr *nodeid.Address
	Name string
	Type NodeType

	StepConfig     *config.Step
	ResourceConfig *config.Resource

	Deps       map[string]*Node
	Dependents map[string]*Node

	// Error is set once when the node fails or is skipped.
	Error error
	// Output is the native Go value returned by the handler: the value that
	// `uses` injects into dependent steps, or the live resource instance.
	Output any
	// CtyOutput is Output converted for `step.<type>.<name>.output` references.
	CtyOutput cty.Value

	depCount atomic.Int32
	state    atomic.Int32
	failOnce sync.Once
}

// SetInitialCounters seeds the unmet-dependency counter.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))
}

// DepCount atomically returns the current number of unmet dependencies.
func (n *Node) DepCount() int32 {
	return n.depCount.Load()
}

// DecrementDepCount atomically decrements the dependency counter and returns the new value.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// SetState atomically sets the node's execution state.
func (n *Node) SetState(s State) {
	n.state.Store(int32(s))
}

// GetState atomically retrieves the node's execution state.
func (n *Node) GetState() State {
	return State(n.state.Load())
}

// MarkFailed marks the node failed with err exactly once and runs onMark.
// It is used both for a node's own failure and for skips caused by an
// upstream failure; it reports whether this call finalized the node.
func (n *Node) MarkFailed(err error, onMark func()) bool {
	var marked bool
	n.failOnce.Do(func() {
		n.SetState(Failed)
		n.Error = err
		if onMark != nil {
			onMark()
		}
		marked = true
	})
	return marked
}
