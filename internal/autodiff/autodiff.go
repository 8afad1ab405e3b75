// Package autodiff implements define-by-run automatic differentiation with
// support for higher-order gradients.
//
// Architecture:
//   - Engine: wraps a tensor.Backend and carries the graph configuration
//   - Variable: user handle holding data plus its position in the graph
//   - Function: a differentiable operation (forward + backward)
//   - Node: one application of a Function, holding only the inputs it
//     retained for backward
//
// Backward passes are themselves built from Functions applied through
// Apply, so with double backprop enabled the gradients are Variables with
// their own creators and can be differentiated again.
//
// Usage:
//
//	engine := autodiff.New(cpu.New())
//	x, _ := autodiff.FromSlice(engine, []float32{1, 3, 2}, tensor.Shape{3}, true)
//	y, _ := autodiff.FromSlice(engine, []float32{2, 3, 1}, tensor.Shape{3}, true)
//	z, _ := ops.Minimum(x, y)
//	z.SetGrad(engine.Const(tensor.OnesLike(z.Data())))
//	_ = z.Backward(autodiff.WithDoubleBackprop())
//	fmt.Println(x.Grad().Data().AsFloat32()) // [1 1 0]
package autodiff

import (
	"github.com/sirupsen/logrus"

	"github.com/born-ml/hograd/internal/tensor"
)

var log = logrus.WithField("pkg", "hograd/autodiff")

// Config controls graph construction.
type Config struct {
	// TypeCheck runs Function.CheckInputs before every forward pass.
	TypeCheck bool
	// Backprop records graph nodes. Disabled inside NoBackprop.
	Backprop bool
	// Debug logs a warning for every node output that contains NaN.
	Debug bool
	// Logger receives engine diagnostics. Defaults to the package logger.
	Logger *logrus.Entry
}

// DefaultConfig returns a Config with type checking and backprop enabled.
func DefaultConfig() Config {
	return Config{
		TypeCheck: true,
		Backprop:  true,
		Logger:    log,
	}
}

// Option configures an Engine.
type Option func(*Config)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithTypeCheck enables or disables input type checking.
func WithTypeCheck(enabled bool) Option {
	return func(c *Config) {
		c.TypeCheck = enabled
	}
}

// WithDebug enables or disables NaN diagnostics.
func WithDebug(enabled bool) Option {
	return func(c *Config) {
		c.Debug = enabled
	}
}

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// Engine builds computation graphs on top of a backend.
// An Engine is not safe for concurrent graph construction.
type Engine struct {
	backend tensor.Backend
	config  Config
}

// New creates an Engine that runs kernels on backend.
func New(backend tensor.Backend, opts ...Option) *Engine {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = log
	}
	return &Engine{
		backend: backend,
		config:  cfg,
	}
}

// Backend returns the wrapped backend.
func (e *Engine) Backend() tensor.Backend {
	return e.backend
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return "Autodiff(" + e.backend.Name() + ")"
}

// BackpropEnabled reports whether Apply currently records graph nodes.
func (e *Engine) BackpropEnabled() bool {
	return e.config.Backprop
}

// NoBackprop disables graph recording and returns a func that restores the
// previous setting.
//
// Example:
//
//	defer engine.NoBackprop()()
func (e *Engine) NoBackprop() func() {
	prev := e.config.Backprop
	e.config.Backprop = false
	return func() {
		e.config.Backprop = prev
	}
}

func (e *Engine) logger() *logrus.Entry {
	return e.config.Logger
}
