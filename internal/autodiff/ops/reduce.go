package ops

import (
	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/tensor"
)

// SumOp reduces all elements to a 0-d scalar.
type SumOp struct {
	inShape tensor.Shape
}

// Label implements autodiff.Function.
func (*SumOp) Label() string { return "Sum" }

// CheckInputs implements autodiff.Function.
func (*SumOp) CheckInputs(in []autodiff.TypeInfo) error {
	return autodiff.Expect("Sum", in).Size(1).Float(0).Err()
}

// Forward implements autodiff.Function.
func (op *SumOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	op.inShape = in[0].Shape().Clone()
	return []*tensor.RawTensor{n.Backend().Sum(in[0])}
}

// Backward implements autodiff.Function.
func (op *SumOp) Backward(_ *autodiff.Node, _ []int, gy []*autodiff.Variable) ([]*autodiff.Variable, error) {
	gx, err := BroadcastTo(gy[0], op.inShape)
	if err != nil {
		return nil, err
	}
	return []*autodiff.Variable{gx}, nil
}

// Sum returns the sum of all elements of x as a 0-d scalar.
func Sum(x *autodiff.Variable) (*autodiff.Variable, error) {
	return autodiff.Apply1(&SumOp{}, x)
}

// BroadcastToOp expands a 0-d scalar to Shape.
type BroadcastToOp struct {
	Shape tensor.Shape
}

// Label implements autodiff.Function.
func (BroadcastToOp) Label() string { return "BroadcastTo" }

// CheckInputs implements autodiff.Function.
func (op BroadcastToOp) CheckInputs(in []autodiff.TypeInfo) error {
	if err := autodiff.Expect("BroadcastTo", in).Size(1).Float(0).Rank(0, 0).Err(); err != nil {
		return err
	}
	if err := op.Shape.Validate(); err != nil {
		return &autodiff.TypeCheckError{Function: "BroadcastTo", Inputs: in, Reason: err.Error()}
	}
	return nil
}

// Forward implements autodiff.Function.
func (op BroadcastToOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{n.Backend().Expand(in[0], op.Shape)}
}

// Backward implements autodiff.Function.
func (BroadcastToOp) Backward(_ *autodiff.Node, _ []int, gy []*autodiff.Variable) ([]*autodiff.Variable, error) {
	gx, err := Sum(gy[0])
	if err != nil {
		return nil, err
	}
	return []*autodiff.Variable{gx}, nil
}

// BroadcastTo expands the 0-d scalar x to shape.
func BroadcastTo(x *autodiff.Variable, shape tensor.Shape) (*autodiff.Variable, error) {
	return autodiff.Apply1(BroadcastToOp{Shape: shape.Clone()}, x)
}
