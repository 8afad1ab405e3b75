// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides define-by-run automatic differentiation with
// higher-order gradients.
//
// Operations applied to Variables are recorded as graph nodes. Backward
// walks the graph from an output; with WithDoubleBackprop the gradients are
// themselves Variables on the graph and can be differentiated again.
//
// Example:
//
//	import (
//	    "github.com/born-ml/hograd/autodiff"
//	    "github.com/born-ml/hograd/backend/cpu"
//	    "github.com/born-ml/hograd/tensor"
//	)
//
//	func main() {
//	    engine := autodiff.New(cpu.New())
//	    x1, _ := autodiff.FromSlice(engine, []float32{1, 3, 2}, tensor.Shape{3}, true)
//	    x2, _ := autodiff.FromSlice(engine, []float32{2, 3, 1}, tensor.Shape{3}, true)
//
//	    y, _ := autodiff.Minimum(x1, x2) // [1 3 1]
//	    y.SetGrad(engine.Const(tensor.OnesLike(y.Data())))
//	    _ = y.Backward()
//
//	    fmt.Println(x1.Grad().Data().AsFloat32()) // [1 1 0]
//	    fmt.Println(x2.Grad().Data().AsFloat32()) // [0 0 1]
//	}
package autodiff

import (
	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/autodiff/ops"
	"github.com/born-ml/hograd/tensor"
)

// Engine builds computation graphs on top of a backend.
type Engine = autodiff.Engine

// Config controls graph construction.
type Config = autodiff.Config

// Option configures an Engine.
type Option = autodiff.Option

// Variable is a tensor that participates in the computation graph.
type Variable = autodiff.Variable

// Node is one application of a Function in the graph.
type Node = autodiff.Node

// Function is a differentiable operation. Implement it to add custom ops.
type Function = autodiff.Function

// TypeInfo is the static description of a tensor seen by CheckInputs.
type TypeInfo = autodiff.TypeInfo

// TypeCheckError describes why a Function rejected its inputs.
type TypeCheckError = autodiff.TypeCheckError

// BackwardOption configures a backward pass.
type BackwardOption = autodiff.BackwardOption

// Errors returned by the engine.
var (
	ErrTypeMismatch  = autodiff.ErrTypeMismatch
	ErrReleasedNode  = autodiff.ErrReleasedNode
	ErrNoGraph       = autodiff.ErrNoGraph
	ErrGradientShape = autodiff.ErrGradientShape
)

// New creates an Engine that runs kernels on backend.
//
// Example:
//
//	engine := autodiff.New(cpu.New(), autodiff.WithDebug(true))
func New(backend tensor.Backend, opts ...Option) *Engine {
	return autodiff.New(backend, opts...)
}

// DefaultConfig returns a Config with type checking and backprop enabled.
func DefaultConfig() Config {
	return autodiff.DefaultConfig()
}

// WithTypeCheck enables or disables input type checking.
func WithTypeCheck(enabled bool) Option {
	return autodiff.WithTypeCheck(enabled)
}

// WithDebug enables or disables NaN diagnostics.
func WithDebug(enabled bool) Option {
	return autodiff.WithDebug(enabled)
}

// FromSlice copies data into a new leaf Variable.
func FromSlice[T tensor.DType](e *Engine, data []T, shape tensor.Shape, requiresGrad bool) (*Variable, error) {
	return autodiff.FromSlice(e, data, shape, requiresGrad)
}

// Apply runs fn on inputs and records a graph node when needed.
func Apply(fn Function, inputs ...*Variable) ([]*Variable, error) {
	return autodiff.Apply(fn, inputs...)
}

// Grad returns the gradients of outputs with respect to inputs.
func Grad(outputs, inputs, gradOutputs []*Variable, opts ...BackwardOption) ([]*Variable, error) {
	return autodiff.Grad(outputs, inputs, gradOutputs, opts...)
}

// WithRetainGrad keeps intermediate gradients.
func WithRetainGrad() BackwardOption {
	return autodiff.WithRetainGrad()
}

// WithRetainGraph keeps the graph usable for another backward pass.
func WithRetainGraph() BackwardOption {
	return autodiff.WithRetainGraph()
}

// WithDoubleBackprop records the backward pass so gradients are
// differentiable.
func WithDoubleBackprop() BackwardOption {
	return autodiff.WithDoubleBackprop()
}

// Minimum returns the elementwise minimum of x1 and x2. Ties return x1 and
// NaN in either operand yields NaN.
func Minimum(x1, x2 *Variable) (*Variable, error) {
	return ops.Minimum(x1, x2)
}

// Maximum returns the elementwise maximum of x1 and x2.
func Maximum(x1, x2 *Variable) (*Variable, error) {
	return ops.Maximum(x1, x2)
}

// Add returns a + b.
func Add(a, b *Variable) (*Variable, error) {
	return ops.Add(a, b)
}

// Mul returns a * b.
func Mul(a, b *Variable) (*Variable, error) {
	return ops.Mul(a, b)
}

// MulScalar returns x * s.
func MulScalar(x *Variable, s float64) (*Variable, error) {
	return ops.MulScalar(x, s)
}

// Where returns x where cond holds and z elsewhere.
func Where(cond *tensor.RawTensor, x, z *Variable) (*Variable, error) {
	return ops.Where(cond, x, z)
}

// Sum returns the sum of all elements of x as a 0-d scalar.
func Sum(x *Variable) (*Variable, error) {
	return ops.Sum(x)
}

// BroadcastTo expands the 0-d scalar x to shape.
func BroadcastTo(x *Variable, shape tensor.Shape) (*Variable, error) {
	return ops.BroadcastTo(x, shape)
}
