package ops_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/hograd/internal/autodiff"
	"github.com/born-ml/hograd/internal/autodiff/ops"
	"github.com/born-ml/hograd/internal/backend/cpu"
	"github.com/born-ml/hograd/internal/tensor"
)

// numericalGradient computes df/dx[i] for every i by central differences.
func numericalGradient(f func([]float64) float64, x []float64, epsilon float64) []float64 {
	grad := make([]float64, len(x))
	for i := range x {
		orig := x[i]
		x[i] = orig + epsilon
		plus := f(x)
		x[i] = orig - epsilon
		minus := f(x)
		x[i] = orig
		grad[i] = (plus - minus) / (2 * epsilon)
	}
	return grad
}

// checkGradients compares autodiff gradients of a scalar loss against
// central differences for each input.
func checkGradients(t *testing.T, loss func(vars []*autodiff.Variable) (*autodiff.Variable, error), inputs ...[]float64) {
	t.Helper()
	e := autodiff.New(cpu.New())

	build := func(data [][]float64, requiresGrad bool) []*autodiff.Variable {
		vars := make([]*autodiff.Variable, len(data))
		for i, d := range data {
			v, err := autodiff.FromSlice(e, d, tensor.Shape{len(d)}, requiresGrad)
			require.NoError(t, err)
			vars[i] = v
		}
		return vars
	}
	eval := func(data [][]float64) float64 {
		defer e.NoBackprop()()
		y, err := loss(build(data, false))
		require.NoError(t, err)
		return y.Data().AsFloat64()[0]
	}

	vars := build(inputs, true)
	y, err := loss(vars)
	require.NoError(t, err)
	grads, err := autodiff.Grad([]*autodiff.Variable{y}, vars, nil)
	require.NoError(t, err)

	for i := range inputs {
		num := numericalGradient(func(x []float64) float64 {
			data := append([][]float64(nil), inputs...)
			data[i] = x
			return eval(data)
		}, append([]float64(nil), inputs[i]...), 1e-6)

		got := grads[i].Data().AsFloat64()
		for j := range num {
			if math.Abs(got[j]-num[j]) > 1e-4 {
				t.Errorf("input %d[%d]: autodiff grad %f, numerical grad %f", i, j, got[j], num[j])
			}
		}
	}
}

// weightedSum returns sum(y * w).
func weightedSum(y, w *autodiff.Variable) (*autodiff.Variable, error) {
	p, err := ops.Mul(y, w)
	if err != nil {
		return nil, err
	}
	return ops.Sum(p)
}

// TestNumericalGradient_Minimum checks Minimum away from ties.
func TestNumericalGradient_Minimum(t *testing.T) {
	checkGradients(t, func(v []*autodiff.Variable) (*autodiff.Variable, error) {
		y, err := ops.Minimum(v[0], v[1])
		if err != nil {
			return nil, err
		}
		return weightedSum(y, v[2])
	},
		[]float64{0.3, -1.2, 5, 2.5},
		[]float64{0.1, 0.4, 7, -3},
		[]float64{1.5, -2, 0.5, 3},
	)
}

// TestNumericalGradient_Maximum checks Maximum away from ties.
func TestNumericalGradient_Maximum(t *testing.T) {
	checkGradients(t, func(v []*autodiff.Variable) (*autodiff.Variable, error) {
		y, err := ops.Maximum(v[0], v[1])
		if err != nil {
			return nil, err
		}
		return weightedSum(y, v[2])
	},
		[]float64{0.3, -1.2, 5, 2.5},
		[]float64{0.1, 0.4, 7, -3},
		[]float64{1.5, -2, 0.5, 3},
	)
}

// TestNumericalGradient_Composite checks min(x, 2x) scaled and broadcast.
func TestNumericalGradient_Composite(t *testing.T) {
	checkGradients(t, func(v []*autodiff.Variable) (*autodiff.Variable, error) {
		d, err := ops.MulScalar(v[0], 2)
		if err != nil {
			return nil, err
		}
		m, err := ops.Minimum(v[0], d)
		if err != nil {
			return nil, err
		}
		s, err := ops.Sum(m)
		if err != nil {
			return nil, err
		}
		b, err := ops.BroadcastTo(s, tensor.Shape{3})
		if err != nil {
			return nil, err
		}
		return weightedSum(b, v[1])
	},
		[]float64{-1, 2, 0.5},
		[]float64{1, 2, 3},
	)
}
