// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-descent optimizers for autodiff variables.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/hograd/autodiff"
//	    "github.com/born-ml/hograd/backend/cpu"
//	    "github.com/born-ml/hograd/optim"
//	)
//
//	func main() {
//	    engine := autodiff.New(cpu.New())
//	    x, _ := autodiff.FromSlice(engine, []float64{1, 5}, tensor.Shape{2}, true)
//	    c, _ := autodiff.FromSlice(engine, []float64{3, 2}, tensor.Shape{2}, false)
//
//	    optimizer := optim.NewSGD([]*autodiff.Variable{x}, optim.SGDConfig{LR: 0.1})
//	    for range 10 {
//	        optimizer.ZeroGrad()
//	        m, _ := autodiff.Minimum(x, c)
//	        loss, _ := autodiff.Sum(m)
//	        _ = loss.Backward()
//	        _ = optimizer.Step()
//	    }
//	}
//
// Parameters are updated in place on their engine's backend. Parameters that
// did not receive a gradient in the last backward pass are left unchanged.
package optim
