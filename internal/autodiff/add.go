package autodiff

import (
	"github.com/born-ml/hograd/internal/tensor"
)

// AddOp is elementwise addition. It lives in this package because the
// backward pass uses it to accumulate gradients.
type AddOp struct{}

// Label implements Function.
func (AddOp) Label() string { return "Add" }

// CheckInputs implements Function.
func (AddOp) CheckInputs(in []TypeInfo) error {
	return Expect("Add", in).Elementwise(2).Err()
}

// Forward implements Function.
func (AddOp) Forward(n *Node, inputs []*tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{n.Backend().Add(inputs[0], inputs[1])}
}

// Backward implements Function.
func (AddOp) Backward(_ *Node, _ []int, gy []*Variable) ([]*Variable, error) {
	return []*Variable{gy[0], gy[0]}, nil
}

// Add returns a + b.
func Add(a, b *Variable) (*Variable, error) {
	return Apply1(AddOp{}, a, b)
}
