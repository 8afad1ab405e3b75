package autodiff

import (
	"weak"

	"github.com/born-ml/hograd/internal/tensor"
)

// Function is a differentiable operation.
//
// Apply calls CheckInputs (when type checking is enabled), then Forward with
// the input tensors. Backward receives one gradient per output (missing ones
// are zero-filled) and returns one gradient per input; entries for inputs not
// listed in indexes may be nil. Backward must build its results with Apply so
// that they can be differentiated again.
type Function interface {
	Label() string
	CheckInputs(in []TypeInfo) error
	Forward(n *Node, inputs []*tensor.RawTensor) []*tensor.RawTensor
	Backward(n *Node, indexes []int, gradOutputs []*Variable) ([]*Variable, error)
}

// Node is one application of a Function in the graph.
//
// A node references its inputs through varNodes and its outputs through
// weak pointers; the only tensors it keeps alive are the inputs it retained
// during Forward, until a backward pass releases them.
type Node struct {
	fn      Function
	engine  *Engine
	rank    int
	seq     uint64
	inputs  []*varNode
	outputs []weak.Pointer[varNode]
	outInfo []TypeInfo

	inputData   []*tensor.RawTensor // set only while Forward runs
	retainedIdx []int
	retained    []*tensor.RawTensor
	released    bool
}

// Function returns the node's operation.
func (n *Node) Function() Function {
	return n.fn
}

// Label returns the operation label.
func (n *Node) Label() string {
	return n.fn.Label()
}

// Backend returns the backend kernels run on.
func (n *Node) Backend() tensor.Backend {
	return n.engine.backend
}

// Engine returns the engine that created the node.
func (n *Node) Engine() *Engine {
	return n.engine
}

// Rank returns the node's depth: the highest rank among its inputs.
func (n *Node) Rank() int {
	return n.rank
}

// NumInputs returns the number of inputs.
func (n *Node) NumInputs() int {
	return len(n.inputs)
}

// NumOutputs returns the number of outputs.
func (n *Node) NumOutputs() int {
	return len(n.outInfo)
}

// RetainInputs keeps the inputs at indexes alive for Backward.
// It must be called from Forward.
func (n *Node) RetainInputs(indexes ...int) {
	if n.inputData == nil {
		panic("autodiff: RetainInputs called outside Forward of " + n.Label())
	}
	n.dropRetained()
	n.retainedIdx = append([]int(nil), indexes...)
	n.retained = make([]*tensor.RawTensor, len(indexes))
	for k, i := range indexes {
		n.retained[k] = n.inputData[i].Clone()
	}
}

// RetainedIndexes returns the input indexes retained by Forward.
func (n *Node) RetainedIndexes() []int {
	return n.retainedIdx
}

// RetainedInputs returns the retained inputs as Variables, in the order
// passed to RetainInputs. The Variables share graph identity with the
// original inputs, so functions applied to them in a double-backprop pass
// route gradients back to those inputs.
func (n *Node) RetainedInputs() ([]*Variable, error) {
	if n.released {
		return nil, ErrReleasedNode
	}
	vars := make([]*Variable, len(n.retainedIdx))
	for k, i := range n.retainedIdx {
		vars[k] = &Variable{
			node:   n.inputs[i],
			data:   n.retained[k],
			engine: n.engine,
		}
	}
	return vars, nil
}

// Released reports whether the node's retained inputs have been released.
func (n *Node) Released() bool {
	return n.released
}

// release drops the retained inputs.
func (n *Node) release() {
	n.dropRetained()
	n.released = true
}

func (n *Node) dropRetained() {
	for _, r := range n.retained {
		r.Release()
	}
	n.retained = nil
}

// outputNode returns output i's varNode if it is still reachable.
func (n *Node) outputNode(i int) *varNode {
	return n.outputs[i].Value()
}
