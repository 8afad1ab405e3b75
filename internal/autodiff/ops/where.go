package ops

import (
	"fmt"

	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/tensor"
)

// WhereOp selects elementwise: y[i] = x[i] if Condition[i] else z[i].
//
// The condition is a fixed bool tensor, not a graph input. Backward:
//
//	grad_x = where(cond, gy, 0)
//	grad_z = where(cond, 0, gy)
type WhereOp struct {
	Condition *tensor.RawTensor
}

// Label implements autodiff.Function.
func (WhereOp) Label() string { return "Where" }

// CheckInputs implements autodiff.Function.
func (op WhereOp) CheckInputs(in []autodiff.TypeInfo) error {
	if err := autodiff.Expect("Where", in).Elementwise(2).Err(); err != nil {
		return err
	}
	var reason string
	switch {
	case op.Condition == nil:
		reason = "condition is nil"
	case op.Condition.DType() != tensor.Bool:
		reason = fmt.Sprintf("condition dtype %s is not bool", op.Condition.DType())
	case !op.Condition.Shape().Equal(in[0].Shape):
		reason = fmt.Sprintf("condition shape %v != input shape %v", op.Condition.Shape(), in[0].Shape)
	default:
		return nil
	}
	return &autodiff.TypeCheckError{Function: "Where", Inputs: in, Reason: reason}
}

// Forward implements autodiff.Function.
func (op WhereOp) Forward(n *autodiff.Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{n.Backend().Where(op.Condition, in[0], in[1])}
}

// Backward implements autodiff.Function.
func (op WhereOp) Backward(_ *autodiff.Node, indexes []int, gy []*autodiff.Variable) ([]*autodiff.Variable, error) {
	zero := zerosLike(gy[0])
	gx := make([]*autodiff.Variable, 2)
	var err error
	if wants(indexes, 0) {
		if gx[0], err = Where(op.Condition, gy[0], zero); err != nil {
			return nil, err
		}
	}
	if wants(indexes, 1) {
		if gx[1], err = Where(op.Condition, zero, gy[0]); err != nil {
			return nil, err
		}
	}
	return gx, nil
}

// Where returns x where cond holds and z elsewhere.
func Where(cond *tensor.RawTensor, x, z *autodiff.Variable) (*autodiff.Variable, error) {
	return autodiff.Apply1(WhereOp{Condition: cond}, x, z)
}
