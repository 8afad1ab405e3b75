package cpu

import (
	"fmt"

	"github.com/born-ml/hograd/internal/tensor"
)

// Add performs element-wise addition.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, add[float32], add[float64])
}

// Mul performs element-wise multiplication.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, mul[float32], mul[float64])
}

// Minimum returns min(a, b) element-wise. NaN in either operand propagates.
func (cpu *CPUBackend) Minimum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("minimum", a, b, minimum[float32], minimum[float64])
}

// Maximum returns max(a, b) element-wise. NaN in either operand propagates.
func (cpu *CPUBackend) Maximum(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("maximum", a, b, maximum[float32], maximum[float64])
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	result := cpu.newResult("mulScalar", x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		scaleFloat(result.AsFloat32(), x.AsFloat32(), float32(scalar), cpu.parallel)
	case tensor.Float64:
		scaleFloat(result.AsFloat64(), x.AsFloat64(), scalar, cpu.parallel)
	default:
		panic(fmt.Sprintf("mulScalar: unsupported dtype %s", x.DType()))
	}

	return result
}

func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	checkSameLayout(op, a, b)
	result := cpu.newResult(op, a.Shape(), a.DType())

	switch a.DType() {
	case tensor.Float32:
		mapBinary(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), f32, cpu.parallel)
	case tensor.Float64:
		mapBinary(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), f64, cpu.parallel)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}

	return result
}
