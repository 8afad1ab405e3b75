package ops

import (
	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/tensor"
)

// MulOp is elementwise multiplication: y = a * b.
//
// Backward:
//   - grad_a = gy * b
//   - grad_b = gy * a
type MulOp struct{}

// Label implements autodiff.Function.
func (MulOp) Label() string { return "Mul" }

// CheckInputs implements autodiff.Function.
func (MulOp) CheckInputs(in []autodiff.TypeInfo) error {
	return autodiff.Expect("Mul", in).Elementwise(2).Err()
}

// Forward implements autodiff.Function.
func (MulOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	n.RetainInputs(0, 1)
	return []*tensor.RawTensor{n.Backend().Mul(in[0], in[1])}
}

// Backward implements autodiff.Function.
func (MulOp) Backward(n *autodiff.Node, indexes []int, gy []*autodiff.Variable) ([]*autodiff.Variable, error) {
	xs, err := n.RetainedInputs()
	if err != nil {
		return nil, err
	}
	gx := make([]*autodiff.Variable, 2)
	if wants(indexes, 0) {
		if gx[0], err = Mul(gy[0], xs[1]); err != nil {
			return nil, err
		}
	}
	if wants(indexes, 1) {
		if gx[1], err = Mul(gy[0], xs[0]); err != nil {
			return nil, err
		}
	}
	return gx, nil
}

// Mul returns a * b.
func Mul(a, b *autodiff.Variable) (*autodiff.Variable, error) {
	return autodiff.Apply1(MulOp{}, a, b)
}

// MulScalarOp multiplies by a constant: y = x * Scalar.
type MulScalarOp struct {
	Scalar float64
}

// Label implements autodiff.Function.
func (MulScalarOp) Label() string { return "MulScalar" }

// CheckInputs implements autodiff.Function.
func (MulScalarOp) CheckInputs(in []autodiff.TypeInfo) error {
	return autodiff.Expect("MulScalar", in).Size(1).Float(0).Err()
}

// Forward implements autodiff.Function.
func (op MulScalarOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{n.Backend().MulScalar(in[0], op.Scalar)}
}

// Backward implements autodiff.Function.
func (op MulScalarOp) Backward(_ *autodiff.Node, _ []int, gy []*autodiff.Variable) ([]*autodiff.Variable, error) {
	gx, err := MulScalar(gy[0], op.Scalar)
	if err != nil {
		return nil, err
	}
	return []*autodiff.Variable{gx}, nil
}

// MulScalar returns x * s.
func MulScalar(x *autodiff.Variable, s float64) (*autodiff.Variable, error) {
	return autodiff.Apply1(MulScalarOp{Scalar: s}, x)
}
