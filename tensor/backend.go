// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/hograd/internal/tensor"

// Backend defines the kernels a compute device provides to the autodiff
// engine.
//
// Implementations:
//   - backend/cpu: Pure Go, parallel for large tensors
//   - backend/webgpu: WGSL compute shaders via WebGPU
//
// Kernels panic on shape or dtype misuse; autodiff validates inputs before
// any kernel runs.
type Backend = tensor.Backend
