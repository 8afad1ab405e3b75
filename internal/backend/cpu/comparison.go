package cpu

import (
	"fmt"

	"github.com/born-ml/hograd/internal/tensor"
)

// Comparison operations - return bool tensors.

// LowerEqual returns a <= b element-wise. False wherever either operand is NaN.
func (cpu *CPUBackend) LowerEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("lowerEqual", a, b, lowerEqual[float32], lowerEqual[float64])
}

// GreaterEqual returns a >= b element-wise. False wherever either operand is NaN.
func (cpu *CPUBackend) GreaterEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.compare("greaterEqual", a, b, greaterEqual[float32], greaterEqual[float64])
}

func (cpu *CPUBackend) compare(
	op string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) bool,
	f64 func(x, y float64) bool,
) *tensor.RawTensor {
	checkSameLayout(op, a, b)
	result := cpu.newResult(op, a.Shape(), tensor.Bool)

	switch a.DType() {
	case tensor.Float32:
		mapCompare(result.AsBool(), a.AsFloat32(), b.AsFloat32(), f32, cpu.parallel)
	case tensor.Float64:
		mapCompare(result.AsBool(), a.AsFloat64(), b.AsFloat64(), f64, cpu.parallel)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}

	return result
}
