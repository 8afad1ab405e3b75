package tensor

// Backend is the elementwise kernel interface every compute device
// implements. The autodiff layer is written once against it.
//
// Binary kernels require operands of identical shape and dtype; backends
// panic on violations, since the graph layer type-checks before dispatch.
//
// Implementations:
//   - CPU: pure Go, goroutine-parallel for large tensors
//   - WebGPU: WGSL compute shaders (float32)
type Backend interface {
	// Element-wise arithmetic
	Add(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise extrema. NaN in either operand yields NaN; ties return a.
	Minimum(a, b *RawTensor) *RawTensor
	Maximum(a, b *RawTensor) *RawTensor

	// Comparison operations (element-wise, return bool tensor)
	LowerEqual(a, b *RawTensor) *RawTensor   // a <= b
	GreaterEqual(a, b *RawTensor) *RawTensor // a >= b

	// Where selects x[i] where condition[i] is true, else y[i].
	Where(condition, x, y *RawTensor) *RawTensor

	// Sum reduces all elements to a scalar (shape []).
	Sum(x *RawTensor) *RawTensor
	// Expand repeats a single-element tensor to shape.
	Expand(x *RawTensor, shape Shape) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
