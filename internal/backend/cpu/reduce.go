package cpu

import (
	"fmt"

	"github.com/born-ml/hograd/internal/tensor"
)

// Sum reduces all elements to a scalar tensor (shape []).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.newResult("sum", tensor.Shape{}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = sumFloat(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = sumFloat(x.AsFloat64())
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// Expand repeats the single element of x across shape.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if x.NumElements() != 1 {
		panic(fmt.Sprintf("expand: source must hold one element, got shape %v", x.Shape()))
	}
	result := cpu.newResult("expand", shape, x.DType())

	switch x.DType() {
	case tensor.Float32:
		fillFloat(result.AsFloat32(), x.AsFloat32()[0])
	case tensor.Float64:
		fillFloat(result.AsFloat64(), x.AsFloat64()[0])
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %s", x.DType()))
	}

	return result
}
