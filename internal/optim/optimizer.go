// Package optim implements gradient-descent updates for autodiff variables.
//
// Example usage:
//
//	sgd := optim.NewSGD([]*autodiff.Variable{x}, optim.SGDConfig{LR: 0.1})
//	for step := 0; step < 100; step++ {
//	    sgd.ZeroGrad()
//	    loss := computeLoss(x)
//	    if err := loss.Backward(); err != nil {
//	        return err
//	    }
//	    if err := sgd.Step(); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"github.com/born-ml/hograd/internal/autodiff"
)

// Optimizer updates parameters from the gradients stored on them.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient.
	Step() error

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// gradient returns the gradient stored on param, or nil when the
// parameter did not take part in the last backward pass.
func gradient(param *autodiff.Variable) *autodiff.Variable {
	if param == nil {
		return nil
	}
	return param.Grad()
}
