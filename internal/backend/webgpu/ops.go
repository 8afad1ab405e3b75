package webgpu

import (
	"github.com/openfluke/webgpu/wgpu"

	"github.com/born-ml/hograd/internal/tensor"
)

// Add performs element-wise addition on GPU.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binary(addKernel, a, other, b.host.Add)
}

// Mul performs element-wise multiplication on GPU.
func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binary(mulKernel, a, other, b.host.Mul)
}

// Minimum returns the element-wise minimum. NaN in either operand yields NaN
// and ties return a.
func (b *Backend) Minimum(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binary(minKernel, a, other, b.host.Minimum)
}

// Maximum returns the element-wise maximum. NaN in either operand yields NaN
// and ties return a.
func (b *Backend) Maximum(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.binary(maxKernel, a, other, b.host.Maximum)
}

// MulScalar multiplies every element by scalar.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	if x.DType() != tensor.Float32 || !fits(x.NumElements()) {
		return onDevice(b.host.MulScalar(x, scalar))
	}
	data, err := b.run(mulScalarKernel, [][]byte{x.Data()}, x.NumElements(), float32(scalar))
	if err != nil {
		panic("webgpu: mulScalar: " + err.Error())
	}
	return b.result(x.Shape(), tensor.Float32, data)
}

// LowerEqual returns a bool tensor holding a <= other. Comparisons with NaN
// are false.
func (b *Backend) LowerEqual(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.compare(lowerEqualKernel, a, other, b.host.LowerEqual)
}

// GreaterEqual returns a bool tensor holding a >= other. Comparisons with
// NaN are false.
func (b *Backend) GreaterEqual(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.compare(greaterEqualKernel, a, other, b.host.GreaterEqual)
}

// Where selects x where condition holds and y elsewhere.
func (b *Backend) Where(condition, x, y *tensor.RawTensor) *tensor.RawTensor {
	if condition.DType() != tensor.Bool || !condition.Shape().Equal(x.Shape()) {
		return onDevice(b.host.Where(condition, x, y))
	}
	checkSameLayout("where", x, y)
	if x.DType() != tensor.Float32 || !fits(x.NumElements()) {
		return onDevice(b.host.Where(condition, x, y))
	}

	cond := make([]uint32, condition.NumElements())
	for i, v := range condition.AsBool() {
		if v {
			cond[i] = 1
		}
	}
	data, err := b.run(whereKernel, [][]byte{wgpu.ToBytes(cond), x.Data(), y.Data()}, x.NumElements(), 0)
	if err != nil {
		panic("webgpu: where: " + err.Error())
	}
	return b.result(x.Shape(), tensor.Float32, data)
}

// Sum reduces all elements to a 0-d tensor on the host.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	return onDevice(b.host.Sum(x))
}

// Expand broadcasts a single-element tensor to shape on the host.
func (b *Backend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return onDevice(b.host.Expand(x, shape))
}

func (b *Backend) binary(spec kernelSpec, a, other *tensor.RawTensor, host func(a, b *tensor.RawTensor) *tensor.RawTensor) *tensor.RawTensor {
	checkSameLayout(spec.name, a, other)
	if a.DType() != tensor.Float32 || !fits(a.NumElements()) {
		return onDevice(host(a, other))
	}
	data, err := b.run(spec, [][]byte{a.Data(), other.Data()}, a.NumElements(), 0)
	if err != nil {
		panic("webgpu: " + spec.name + ": " + err.Error())
	}
	return b.result(a.Shape(), tensor.Float32, data)
}

func (b *Backend) compare(spec kernelSpec, a, other *tensor.RawTensor, host func(a, b *tensor.RawTensor) *tensor.RawTensor) *tensor.RawTensor {
	checkSameLayout(spec.name, a, other)
	if a.DType() != tensor.Float32 || !fits(a.NumElements()) {
		return onDevice(host(a, other))
	}
	data, err := b.run(spec, [][]byte{a.Data(), other.Data()}, a.NumElements(), 0)
	if err != nil {
		panic("webgpu: " + spec.name + ": " + err.Error())
	}

	out := b.alloc(a.Shape(), tensor.Bool)
	dst := out.AsBool()
	for i, v := range wgpu.FromBytes[uint32](data) {
		dst[i] = v != 0
	}
	return out
}

func (b *Backend) alloc(shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, dtype, tensor.WebGPU)
	if err != nil {
		panic("webgpu: " + err.Error())
	}
	return out
}

func (b *Backend) result(shape tensor.Shape, dtype tensor.DataType, data []byte) *tensor.RawTensor {
	out := b.alloc(shape, dtype)
	copy(out.Data(), data)
	return out
}
