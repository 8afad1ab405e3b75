package cpu

import (
	"fmt"

	"github.com/born-ml/hograd/internal/tensor"
)

// Where performs conditional element selection.
//
// Returns a tensor where each element is taken from x if condition is true,
// otherwise from y. condition must be a bool tensor; all three tensors must
// share a shape.
//
// Example:
//
//	condition: [true, false]
//	x: [1, 2], y: [10, 20]
//	output: [1, 20]
func (cpu *CPUBackend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool {
		panic(fmt.Sprintf("where: condition must be bool, got %s", condition.DType()))
	}
	if !condition.Shape().Equal(x.Shape()) {
		panic(fmt.Sprintf("where: condition shape %v does not match %v", condition.Shape(), x.Shape()))
	}
	checkSameLayout("where", x, y)

	result := cpu.newResult("where", x.Shape(), x.DType())
	cond := condition.AsBool()

	switch x.DType() {
	case tensor.Float32:
		whereFloat(result.AsFloat32(), cond, x.AsFloat32(), y.AsFloat32(), cpu.parallel)
	case tensor.Float64:
		whereFloat(result.AsFloat64(), cond, x.AsFloat64(), y.AsFloat64(), cpu.parallel)
	default:
		panic(fmt.Sprintf("where: unsupported dtype %s", x.DType()))
	}

	return result
}
