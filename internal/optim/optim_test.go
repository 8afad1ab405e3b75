package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/autodiff/ops"
	"github.com/born-ml/hograd/internal/backend/cpu"
	"github.com/born-ml/hograd/internal/optim"
	"github.com/born-ml/hograd/internal/tensor"
)

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	e := autodiff.New(cpu.New())
	x, err := autodiff.FromSlice(e, []float64{2}, tensor.Shape{1}, true)
	require.NoError(t, err)
	x.SetGrad(e.Const(tensor.OnesLike(x.Data())))

	data := x.Data()
	sgd := optim.NewSGD([]*autodiff.Variable{x}, optim.SGDConfig{LR: 0.1})
	require.NoError(t, sgd.Step())

	assert.Same(t, data, x.Data(), "unshared buffer is updated in place")
	assert.InDelta(t, 1.9, x.Data().AsFloat64()[0], 1e-12)
	assert.Equal(t, 0.1, sgd.LR())
}

// TestSGD_WithMomentum tests SGD with momentum over two steps.
func TestSGD_WithMomentum(t *testing.T) {
	e := autodiff.New(cpu.New())
	x, err := autodiff.FromSlice(e, []float64{0}, tensor.Shape{1}, true)
	require.NoError(t, err)
	x.SetGrad(e.Const(tensor.OnesLike(x.Data())))

	sgd := optim.NewSGD([]*autodiff.Variable{x}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	assert.Nil(t, sgd.Velocity(x))

	require.NoError(t, sgd.Step()) // v = 1, x = -0.1
	assert.InDelta(t, -0.1, x.Data().AsFloat64()[0], 1e-12)
	require.NoError(t, sgd.Step()) // v = 1.9, x = -0.29
	assert.InDelta(t, -0.29, x.Data().AsFloat64()[0], 1e-12)
	assert.InDelta(t, 1.9, sgd.Velocity(x).AsFloat64()[0], 1e-12)
}

// TestSGD_SkipsMissingGrad tests that parameters outside the graph are left
// alone.
func TestSGD_SkipsMissingGrad(t *testing.T) {
	e := autodiff.New(cpu.New())
	x, err := autodiff.FromSlice(e, []float32{5}, tensor.Shape{1}, true)
	require.NoError(t, err)

	sgd := optim.NewSGD([]*autodiff.Variable{x}, optim.SGDConfig{})
	require.NoError(t, sgd.Step())
	assert.Equal(t, []float32{5}, x.Data().AsFloat32())
	assert.Equal(t, 0.01, sgd.LR())
}

// TestSGD_MinimizesMinimum drives min(x1, x2) · w down through repeated
// backward passes. Only the selected operand moves each step.
func TestSGD_MinimizesMinimum(t *testing.T) {
	e := autodiff.New(cpu.New())
	x1, err := autodiff.FromSlice(e, []float64{1, 5}, tensor.Shape{2}, true)
	require.NoError(t, err)
	x2, err := autodiff.FromSlice(e, []float64{3, 2}, tensor.Shape{2}, true)
	require.NoError(t, err)

	sgd := optim.NewSGD([]*autodiff.Variable{x1, x2}, optim.SGDConfig{LR: 0.5})
	for range 4 {
		sgd.ZeroGrad()
		m, err := ops.Minimum(x1, x2)
		require.NoError(t, err)
		loss, err := ops.Sum(m)
		require.NoError(t, err)
		require.NoError(t, loss.Backward())
		require.NoError(t, sgd.Step())
	}

	assert.Equal(t, []float64{-1, 5}, x1.Data().AsFloat64())
	assert.Equal(t, []float64{3, 0}, x2.Data().AsFloat64())
	assert.Equal(t, 1, x1.Data().RefCount())
}

// TestSGD_KeepsLiveGraphInputs steps a parameter while a double-backprop
// graph still holds its old values. The graph must keep differentiating
// against the values it was built with.
func TestSGD_KeepsLiveGraphInputs(t *testing.T) {
	e := autodiff.New(cpu.New())
	x1, err := autodiff.FromSlice(e, []float32{1, 3, 2}, tensor.Shape{3}, true)
	require.NoError(t, err)
	x2, err := autodiff.FromSlice(e, []float32{2, 3, 1}, tensor.Shape{3}, true)
	require.NoError(t, err)
	gy, err := autodiff.FromSlice(e, []float32{1, 1, 1}, tensor.Shape{3}, true)
	require.NoError(t, err)

	y, err := ops.Minimum(x1, x2)
	require.NoError(t, err)
	gs, err := autodiff.Grad([]*autodiff.Variable{y}, []*autodiff.Variable{x1, x2}, []*autodiff.Variable{gy}, autodiff.WithDoubleBackprop())
	require.NoError(t, err)

	old := x1.Data()
	require.False(t, old.IsUnique())

	x1.SetGrad(e.Const(tensor.FullLike(old, 100)))
	sgd := optim.NewSGD([]*autodiff.Variable{x1}, optim.SGDConfig{LR: 1})
	require.NoError(t, sgd.Step())

	assert.Equal(t, []float32{-99, -97, -98}, x1.Data().AsFloat32())
	assert.NotSame(t, old, x1.Data())
	assert.Equal(t, []float32{1, 3, 2}, old.AsFloat32())

	ggy, err := autodiff.Grad([]*autodiff.Variable{gs[0]}, []*autodiff.Variable{gy}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 0}, ggy[0].Data().AsFloat32())
}
