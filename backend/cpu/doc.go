// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 kernels
//   - NaN-propagating Minimum and Maximum
//   - Goroutine fan-out for large tensors
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/hograd/autodiff"
//	    "github.com/born-ml/hograd/backend/cpu"
//	)
//
//	func main() {
//	    engine := autodiff.New(cpu.New())
//	    _ = engine
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each kernel allocates its
// result and does not share mutable state.
package cpu
