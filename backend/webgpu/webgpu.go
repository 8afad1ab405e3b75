// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for GPU-accelerated tensor operations.
//
// WebGPU is a cross-platform compute API that works on:
//   - Windows (D3D12)
//   - macOS (Metal)
//   - Linux (Vulkan)
//
// Example:
//
//	import (
//	    "github.com/born-ml/hograd/autodiff"
//	    "github.com/born-ml/hograd/backend/webgpu"
//	)
//
//	func main() {
//	    gpu, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer gpu.Release()
//
//	    engine := autodiff.New(gpu)
//	}
package webgpu

import (
	internalwebgpu "github.com/born-ml/hograd/internal/backend/webgpu"
	"github.com/born-ml/hograd/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New opens the default GPU adapter. It returns an error when WebGPU is not
// available on this system.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable reports whether a WebGPU device can be opened.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
