// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types of hograd.
//
// # Overview
//
// Tensors are the data carried by autodiff variables. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - The untyped, reference-counted RawTensor handed to backends
//   - The Backend kernel interface implemented by backend/cpu and
//     backend/webgpu
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/hograd/backend/cpu"
//	    "github.com/born-ml/hograd/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x, _ := tensor.FromSlice([]float32{1, 3, 2}, tensor.Shape{3}, backend)
//	    y, _ := tensor.FromSlice([]float32{2, 3, 1}, tensor.Shape{3}, backend)
//	    m := backend.Minimum(x.Raw(), y.Raw()) // [1 3 1]
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point, differentiable)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers)
//   - bool (masks produced by comparisons)
//
// # Memory Management
//
// RawTensor buffers are reference counted. Clone shares a buffer and Release
// drops a reference; the autodiff engine uses this to hold the inputs a
// backward pass needs for exactly as long as it needs them.
package tensor
