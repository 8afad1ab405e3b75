package tensor

import "fmt"

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, DataTypeOf[T](), b.Device())
	if err != nil {
		return nil, err
	}

	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// ZerosLike returns a zero-filled tensor with the shape, dtype and device of x.
func ZerosLike(x *RawTensor) *RawTensor {
	out, err := NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		// x already holds a validated shape.
		panic(fmt.Sprintf("zerosLike: %v", err))
	}
	return out
}

// FullLike returns a tensor shaped like x with every element set to value.
// Panics for non-float dtypes.
func FullLike(x *RawTensor, value float64) *RawTensor {
	out := ZerosLike(x)
	switch out.DType() {
	case Float32:
		data := out.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := out.AsFloat64()
		for i := range data {
			data[i] = value
		}
	default:
		panic(fmt.Sprintf("fullLike: unsupported dtype %s", out.DType()))
	}
	return out
}

// OnesLike returns a ones-filled float tensor shaped like x.
func OnesLike(x *RawTensor) *RawTensor {
	return FullLike(x, 1)
}
