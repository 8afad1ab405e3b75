package ops

import (
	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/tensor"
)

// MinimumOp is the elementwise minimum: y = min(x1, x2).
//
// Ties return x1. A NaN in either operand yields NaN.
//
// Backward routes gy to x1 where x1 <= x2 and to x2 elsewhere, via
// MinimumGradOp.
type MinimumOp struct{}

// Label implements autodiff.Function.
func (MinimumOp) Label() string { return "Minimum" }

// CheckInputs implements autodiff.Function.
func (MinimumOp) CheckInputs(in []autodiff.TypeInfo) error {
	return autodiff.Expect("Minimum", in).Elementwise(2).Err()
}

// Forward implements autodiff.Function.
func (MinimumOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	n.RetainInputs(0, 1)
	return []*tensor.RawTensor{n.Backend().Minimum(in[0], in[1])}
}

// Backward implements autodiff.Function.
func (MinimumOp) Backward(n *autodiff.Node, _ []int, gy []*autodiff.Variable) ([]*autodiff.Variable, error) {
	xs, err := n.RetainedInputs()
	if err != nil {
		return nil, err
	}
	return autodiff.Apply(MinimumGradOp{}, xs[0], xs[1], gy[0])
}

// MinimumGradOp computes (gx1, gx2) from (x1, x2, gy):
//
//	gx1 = where(x1 <= x2, gy, 0)
//	gx2 = where(x1 <= x2, 0, gy)
//
// Its own gradient is zero in x1 and x2, and where(x1 <= x2, ggx1, ggx2) in
// gy.
type MinimumGradOp struct{}

// Label implements autodiff.Function.
func (MinimumGradOp) Label() string { return "MinimumGrad" }

// CheckInputs implements autodiff.Function.
func (MinimumGradOp) CheckInputs(in []autodiff.TypeInfo) error {
	return autodiff.Expect("MinimumGrad", in).Elementwise(3).Err()
}

// Forward implements autodiff.Function.
func (MinimumGradOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	n.RetainInputs(0, 1)
	return routeGrad(n.Backend(), n.Backend().LowerEqual(in[0], in[1]), in[2])
}

// Backward implements autodiff.Function.
func (MinimumGradOp) Backward(n *autodiff.Node, _ []int, ggx []*autodiff.Variable) ([]*autodiff.Variable, error) {
	return selectBackward(n, ggx, n.Backend().LowerEqual)
}

// Minimum returns the elementwise minimum of x1 and x2.
//
// Both inputs must be float32 or float64 with the same shape and dtype;
// otherwise the error wraps autodiff.ErrTypeMismatch.
func Minimum(x1, x2 *autodiff.Variable) (*autodiff.Variable, error) {
	return autodiff.Apply1(MinimumOp{}, x1, x2)
}

// routeGrad splits gy by the selector: gy where sel holds to the first
// result, gy elsewhere to the second.
func routeGrad(b tensor.Backend, sel, gy *tensor.RawTensor) []*tensor.RawTensor {
	zero := tensor.ZerosLike(gy)
	return []*tensor.RawTensor{
		b.Where(sel, gy, zero),
		b.Where(sel, zero, gy),
	}
}

// selectBackward is the backward of MinimumGradOp and MaximumGradOp.
// The gradient routing is piecewise constant in x1 and x2, so their
// gradient is zero; it is still built from ggx so that NaN propagates and
// the result stays on the graph.
func selectBackward(n *autodiff.Node, ggx []*autodiff.Variable, compare func(a, b *tensor.RawTensor) *tensor.RawTensor) ([]*autodiff.Variable, error) {
	xs, err := n.RetainedInputs()
	if err != nil {
		return nil, err
	}
	z1, err := MulScalar(ggx[0], 0)
	if err != nil {
		return nil, err
	}
	z2, err := MulScalar(ggx[1], 0)
	if err != nil {
		return nil, err
	}
	gx, err := autodiff.Add(z1, z2)
	if err != nil {
		return nil, err
	}

	cond := compare(xs[0].Data(), xs[1].Data())
	ggy, err := Where(cond, ggx[0], ggx[1])
	if err != nil {
		return nil, err
	}
	return []*autodiff.Variable{gx, gx, ggy}, nil
}
