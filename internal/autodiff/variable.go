package autodiff

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/hograd/internal/tensor"
)

// varNode is a variable's identity in the graph. It carries no data, so a
// node that references its inputs' varNodes does not keep their tensors
// alive.
type varNode struct {
	creator      *Node
	rank         int
	requiresGrad bool
	name         string
	info         TypeInfo
	grad         *Variable
}

// Variable is a tensor that participates in the computation graph.
// Several Variables may share one varNode (retained inputs handed back
// to a backward pass do), in which case they share gradient and creator.
type Variable struct {
	node   *varNode
	data   *tensor.RawTensor
	engine *Engine
}

// Variable wraps data as a graph leaf.
func (e *Engine) Variable(data *tensor.RawTensor, requiresGrad bool) *Variable {
	return &Variable{
		node: &varNode{
			requiresGrad: requiresGrad,
			info:         typeInfoOf(data),
		},
		data:   data,
		engine: e,
	}
}

// Param wraps data as a leaf that requires gradients.
func (e *Engine) Param(data *tensor.RawTensor) *Variable {
	return e.Variable(data, true)
}

// Const wraps data as a leaf that never receives gradients.
func (e *Engine) Const(data *tensor.RawTensor) *Variable {
	return e.Variable(data, false)
}

// FromSlice copies data into a new leaf Variable on the engine's device.
func FromSlice[T tensor.DType](e *Engine, data []T, shape tensor.Shape, requiresGrad bool) (*Variable, error) {
	t, err := tensor.FromSlice(data, shape, e.backend)
	if err != nil {
		return nil, err
	}
	return e.Variable(t.Raw(), requiresGrad), nil
}

// Data returns the variable's tensor.
func (v *Variable) Data() *tensor.RawTensor {
	return v.data
}

// SetData replaces the variable's tensor. The new tensor must match the
// variable's shape and dtype. Graph nodes that retained the previous tensor
// keep seeing it.
func (v *Variable) SetData(data *tensor.RawTensor) error {
	info := typeInfoOf(data)
	if !info.Shape.Equal(v.node.info.Shape) || info.DType != v.node.info.DType {
		return errors.Wrapf(ErrTypeMismatch, "set data %s on %s", info, v)
	}
	v.data = data
	return nil
}

// Shape returns the variable's shape.
func (v *Variable) Shape() tensor.Shape {
	return v.node.info.Shape
}

// DType returns the variable's data type.
func (v *Variable) DType() tensor.DataType {
	return v.node.info.DType
}

// Engine returns the engine the variable belongs to.
func (v *Variable) Engine() *Engine {
	return v.engine
}

// Name returns the variable's name.
func (v *Variable) Name() string {
	return v.node.name
}

// SetName sets the variable's name, used in diagnostics.
func (v *Variable) SetName(name string) {
	v.node.name = name
}

// RequiresGrad reports whether gradients flow to this variable.
func (v *Variable) RequiresGrad() bool {
	return v.node.requiresGrad
}

// Creator returns the node that produced the variable, or nil for leaves.
func (v *Variable) Creator() *Node {
	return v.node.creator
}

// Rank returns the variable's depth in the graph. Leaves have rank 0.
func (v *Variable) Rank() int {
	return v.node.rank
}

// Grad returns the gradient computed by the last backward pass, or nil.
func (v *Variable) Grad() *Variable {
	return v.node.grad
}

// SetGrad sets the gradient. For non-scalar outputs this is the seed used by
// Backward.
func (v *Variable) SetGrad(g *Variable) {
	v.node.grad = g
}

// ClearGrad drops the stored gradient.
func (v *Variable) ClearGrad() {
	v.node.grad = nil
}

// Unchain cuts the link to the creator, turning the variable into a leaf.
func (v *Variable) Unchain() {
	v.node.creator = nil
	v.node.rank = 0
}

// String returns a short description of the variable.
func (v *Variable) String() string {
	name := v.node.name
	if name == "" {
		name = "variable"
	}
	return fmt.Sprintf("%s(%s)", name, v.node.info)
}
