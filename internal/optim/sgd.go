package optim

import (
	"github.com/pkg/errors"

	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/tensor"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Updates run on the parameter's backend. A parameter whose buffer is held
// only by the parameter is overwritten in place; one shared with a live graph
// gets the updated tensor instead, so the graph keeps the values it was
// built with.
type SGD struct {
	params     []*autodiff.Variable
	lr         float64
	momentum   float64
	velocities map[*autodiff.Variable]*tensor.RawTensor
}

var _ Optimizer = (*SGD)(nil)

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over params.
func NewSGD(params []*autodiff.Variable, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*autodiff.Variable]*tensor.RawTensor),
	}
}

// Step performs a single optimization step.
// Parameters without a gradient are skipped.
func (s *SGD) Step() error {
	for _, param := range s.params {
		grad := gradient(param)
		if grad == nil {
			continue
		}
		b := param.Engine().Backend()

		step := grad.Data()
		if s.momentum != 0 {
			velocity, ok := s.velocities[param]
			if !ok {
				velocity = tensor.ZerosLike(param.Data())
			}
			velocity = b.Add(b.MulScalar(velocity, s.momentum), step)
			s.velocities[param] = velocity
			step = velocity
		}

		data := param.Data()
		updated := b.Add(data, b.MulScalar(step, -s.lr))
		if data.IsUnique() {
			copy(data.Data(), updated.Data())
			continue
		}
		if err := param.SetData(updated); err != nil {
			return errors.Wrapf(err, "sgd: update %s", param)
		}
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	for _, param := range s.params {
		param.ClearGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// Velocity returns the momentum buffer of param, or nil before its first
// update.
func (s *SGD) Velocity(param *autodiff.Variable) *tensor.RawTensor {
	return s.velocities[param]
}
