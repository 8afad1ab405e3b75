package ops

import (
	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/tensor"
)

// MaximumOp is the elementwise maximum: y = max(x1, x2).
//
// Ties return x1. A NaN in either operand yields NaN.
type MaximumOp struct{}

// Label implements autodiff.Function.
func (MaximumOp) Label() string { return "Maximum" }

// CheckInputs implements autodiff.Function.
func (MaximumOp) CheckInputs(in []autodiff.TypeInfo) error {
	return autodiff.Expect("Maximum", in).Elementwise(2).Err()
}

// Forward implements autodiff.Function.
func (MaximumOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	n.RetainInputs(0, 1)
	return []*tensor.RawTensor{n.Backend().Maximum(in[0], in[1])}
}

// Backward implements autodiff.Function.
func (MaximumOp) Backward(n *autodiff.Node, _ []int, gy []*autodiff.Variable) ([]*autodiff.Variable, error) {
	xs, err := n.RetainedInputs()
	if err != nil {
		return nil, err
	}
	return autodiff.Apply(MaximumGradOp{}, xs[0], xs[1], gy[0])
}

// MaximumGradOp computes (gx1, gx2) from (x1, x2, gy) with the selector
// x1 >= x2.
type MaximumGradOp struct{}

// Label implements autodiff.Function.
func (MaximumGradOp) Label() string { return "MaximumGrad" }

// CheckInputs implements autodiff.Function.
func (MaximumGradOp) CheckInputs(in []autodiff.TypeInfo) error {
	return autodiff.Expect("MaximumGrad", in).Elementwise(3).Err()
}

// Forward implements autodiff.Function.
func (MaximumGradOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	n.RetainInputs(0, 1)
	return routeGrad(n.Backend(), n.Backend().GreaterEqual(in[0], in[1]), in[2])
}

// Backward implements autodiff.Function.
func (MaximumGradOp) Backward(n *autodiff.Node, _ []int, ggx []*autodiff.Variable) ([]*autodiff.Variable, error) {
	return selectBackward(n, ggx, n.Backend().GreaterEqual)
}

// Maximum returns the elementwise maximum of x1 and x2.
func Maximum(x1, x2 *autodiff.Variable) (*autodiff.Variable, error) {
	return autodiff.Apply1(MaximumOp{}, x1, x2)
}
