// Package ops implements differentiable functions on top of autodiff.Apply.
//
// Every backward pass is itself built from functions in this package, so
// gradients of any order can be taken:
//   - MinimumOp / MaximumOp: elementwise min and max, NaN-propagating
//   - MinimumGradOp / MaximumGradOp: their gradient routing, with a
//     backward that is zero in x1 and x2 and a select in gy
//   - MulOp, MulScalarOp: products
//   - WhereOp: select by a fixed boolean condition
//   - SumOp, BroadcastToOp: reduce to a scalar and its inverse
package ops

import (
	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/tensor"
)

// wants reports whether the gradient for input i was requested.
func wants(indexes []int, i int) bool {
	for _, idx := range indexes {
		if idx == i {
			return true
		}
	}
	return false
}

// zerosLike returns a constant zero Variable shaped like v.
func zerosLike(v *autodiff.Variable) *autodiff.Variable {
	return v.Engine().Const(tensor.ZerosLike(v.Data()))
}

// Add returns a + b.
func Add(a, b *autodiff.Variable) (*autodiff.Variable, error) {
	return autodiff.Add(a, b)
}
