package autodiff

import (
	"runtime"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/hograd/internal/backend/cpu"
	"github.com/born-ml/hograd/internal/tensor"
)

func newVar(t *testing.T, e *Engine, data []float32, requiresGrad bool) *Variable {
	t.Helper()
	v, err := FromSlice(e, data, tensor.Shape{len(data)}, requiresGrad)
	require.NoError(t, err)
	return v
}

// doubleOp computes 2x and retains its input so tests can observe release.
type doubleOp struct {
	sawReleased bool
}

func (*doubleOp) Label() string { return "Double" }

func (*doubleOp) CheckInputs(in []TypeInfo) error {
	return Expect("Double", in).Size(1).Float(0).Err()
}

func (*doubleOp) Forward(n *Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	n.RetainInputs(0)
	return []*tensor.RawTensor{n.Backend().MulScalar(in[0], 2)}
}

func (op *doubleOp) Backward(n *Node, _ []int, gy []*Variable) ([]*Variable, error) {
	if _, err := n.RetainedInputs(); err != nil {
		op.sawReleased = true
		return nil, err
	}
	gx, err := Add(gy[0], gy[0])
	return []*Variable{gx}, err
}

// splitOp returns two copies of its input.
type splitOp struct {
	forwards int
}

func (*splitOp) Label() string { return "Split" }

func (*splitOp) CheckInputs(in []TypeInfo) error {
	return Expect("Split", in).Size(1).Float(0).Err()
}

func (op *splitOp) Forward(_ *Node, in []*tensor.RawTensor) []*tensor.RawTensor {
	op.forwards++
	return []*tensor.RawTensor{in[0].Copy(), in[0].Copy()}
}

func (*splitOp) Backward(_ *Node, _ []int, gy []*Variable) ([]*Variable, error) {
	gx, err := Add(gy[0], gy[1])
	return []*Variable{gx}, err
}

// TestEngine_Name tests the Name method.
func TestEngine_Name(t *testing.T) {
	e := New(cpu.New())
	assert.Equal(t, "Autodiff(CPU)", e.Name())
	assert.True(t, e.Config().TypeCheck)
	assert.True(t, e.BackpropEnabled())
}

// TestEngine_Options tests functional options.
func TestEngine_Options(t *testing.T) {
	e := New(cpu.New(), WithTypeCheck(false), WithDebug(true))
	assert.False(t, e.Config().TypeCheck)
	assert.True(t, e.Config().Debug)
	assert.NotNil(t, e.Config().Logger)

	e = New(cpu.New(), WithConfig(Config{Backprop: true}))
	assert.False(t, e.Config().TypeCheck)
	assert.NotNil(t, e.Config().Logger)
}

// TestApply_RecordsNode tests that Apply links outputs to their creator.
func TestApply_RecordsNode(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1, 2}, true)
	c := newVar(t, e, []float32{3, 4}, false)

	y, err := Add(x, c)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 6}, y.Data().AsFloat32())
	require.NotNil(t, y.Creator())
	assert.Equal(t, "Add", y.Creator().Label())
	assert.Equal(t, 1, y.Rank())
	assert.Equal(t, 0, y.Creator().Rank())
	assert.True(t, y.RequiresGrad())

	z, err := Add(y, x)
	require.NoError(t, err)
	assert.Equal(t, 2, z.Rank())
	assert.Equal(t, 2, z.Creator().NumInputs())
	assert.Equal(t, 1, z.Creator().NumOutputs())
}

// TestApply_NoGradInputs tests that constants do not build a graph.
func TestApply_NoGradInputs(t *testing.T) {
	e := New(cpu.New())
	a := newVar(t, e, []float32{1}, false)
	b := newVar(t, e, []float32{2}, false)

	y, err := Add(a, b)
	require.NoError(t, err)
	assert.Nil(t, y.Creator())
	assert.False(t, y.RequiresGrad())
	assert.ErrorIs(t, y.Backward(), ErrNoGraph)
}

// TestEngine_NoBackprop tests that NoBackprop suspends recording.
func TestEngine_NoBackprop(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1}, true)

	restore := e.NoBackprop()
	assert.False(t, e.BackpropEnabled())
	y, err := Add(x, x)
	require.NoError(t, err)
	assert.Nil(t, y.Creator())
	restore()

	assert.True(t, e.BackpropEnabled())
	y, err = Add(x, x)
	require.NoError(t, err)
	assert.NotNil(t, y.Creator())
}

// TestApply_TypeCheck tests that rejected inputs never reach Forward.
func TestApply_TypeCheck(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1, 2}, true)
	y := newVar(t, e, []float32{1, 2, 3}, true)

	_, err := Add(x, y)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var tce *TypeCheckError
	require.True(t, errors.As(err, &tce))
	assert.Equal(t, "Add", tce.Function)
	assert.Len(t, tce.Inputs, 2)

	op := &splitOp{}
	i, err := FromSlice(e, []int32{1, 2}, tensor.Shape{2}, false)
	require.NoError(t, err)
	_, err = Apply(op, i)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Zero(t, op.forwards)
}

// TestBackward_Accumulates tests gradient accumulation for a reused input.
func TestBackward_Accumulates(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{3}, true)

	y, err := Add(x, x)
	require.NoError(t, err)
	require.NoError(t, y.Backward())
	assert.Equal(t, []float32{2}, x.Grad().Data().AsFloat32())

	// A second pass adds to the stored gradient.
	y, err = Add(x, x)
	require.NoError(t, err)
	require.NoError(t, y.Backward())
	assert.Equal(t, []float32{4}, x.Grad().Data().AsFloat32())

	x.ClearGrad()
	assert.Nil(t, x.Grad())
}

// TestBackward_RankOrder tests a diamond graph where an intermediate
// gradient must be complete before its creator runs.
func TestBackward_RankOrder(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1}, true)

	a, err := Add(x, x) // 2x
	require.NoError(t, err)
	b, err := Add(a, x) // 3x
	require.NoError(t, err)
	c, err := Add(a, b) // 5x
	require.NoError(t, err)

	require.NoError(t, c.Backward(WithRetainGrad()))
	assert.Equal(t, []float32{5}, x.Grad().Data().AsFloat32())
	require.NotNil(t, a.Grad())
	assert.Equal(t, []float32{2}, a.Grad().Data().AsFloat32())
	assert.Equal(t, []float32{1}, b.Grad().Data().AsFloat32())
}

// TestBackward_DropsIntermediateGrads tests the default of keeping only
// leaf gradients.
func TestBackward_DropsIntermediateGrads(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1}, true)
	a, err := Add(x, x)
	require.NoError(t, err)
	b, err := Add(a, a)
	require.NoError(t, err)

	require.NoError(t, b.Backward())
	assert.Nil(t, a.Grad())
	assert.Equal(t, []float32{4}, x.Grad().Data().AsFloat32())
}

// TestBackward_Seed tests seeding rules for non-scalar outputs.
func TestBackward_Seed(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1, 2}, true)
	y, err := Add(x, x)
	require.NoError(t, err)

	assert.Error(t, y.Backward())

	y.SetGrad(newVar(t, e, []float32{1, 2, 3}, false))
	assert.ErrorIs(t, y.Backward(), ErrGradientShape)

	y.SetGrad(newVar(t, e, []float32{1, 10}, false))
	require.NoError(t, y.Backward())
	assert.Equal(t, []float32{2, 20}, x.Grad().Data().AsFloat32())
}

// TestBackward_ReleasesRetainedInputs tests that retained inputs live exactly
// until the node's backward has run.
func TestBackward_ReleasesRetainedInputs(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1, 2}, true)
	assert.Equal(t, 1, x.Data().RefCount())

	op := &doubleOp{}
	y, err := Apply1(op, x)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 4}, y.Data().AsFloat32())
	assert.Equal(t, 2, x.Data().RefCount())
	assert.Equal(t, []int{0}, y.Creator().RetainedIndexes())

	node := y.Creator()
	y.SetGrad(e.Const(tensor.OnesLike(y.Data())))
	require.NoError(t, y.Backward())
	assert.Equal(t, []float32{2, 2}, x.Grad().Data().AsFloat32())
	assert.True(t, node.Released())
	assert.Equal(t, 1, x.Data().RefCount())

	_, err = node.RetainedInputs()
	assert.ErrorIs(t, err, ErrReleasedNode)

	// Walking the released graph again fails.
	err = y.Backward()
	assert.ErrorIs(t, err, ErrReleasedNode)
	assert.True(t, op.sawReleased)
}

// TestBackward_RetainGraph tests that RetainGraph allows a second pass.
func TestBackward_RetainGraph(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1}, true)
	y, err := Apply1(&doubleOp{}, x)
	require.NoError(t, err)

	require.NoError(t, y.Backward(WithRetainGraph()))
	assert.False(t, y.Creator().Released())
	require.NoError(t, y.Backward())
	assert.Equal(t, []float32{4}, x.Grad().Data().AsFloat32())
	assert.True(t, y.Creator().Released())
}

// TestNode_RetainedInputsShareIdentity tests that retained inputs map back
// to the original variables.
func TestNode_RetainedInputsShareIdentity(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1}, true)
	x.SetName("x")
	y, err := Apply1(&doubleOp{}, x)
	require.NoError(t, err)

	vars, err := y.Creator().RetainedInputs()
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, "x", vars[0].Name())
	assert.Equal(t, x.Data().AsFloat32(), vars[0].Data().AsFloat32())
}

// TestBackward_ZeroFillsMissingOutputGrads tests a multi-output node where
// only one output is used.
func TestBackward_ZeroFillsMissingOutputGrads(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1, 2}, true)

	outs, err := Apply(&splitOp{}, x)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	y := outs[0]
	y.SetGrad(newVar(t, e, []float32{3, 4}, false))
	require.NoError(t, y.Backward())
	assert.Equal(t, []float32{3, 4}, x.Grad().Data().AsFloat32())
}

func splitNode(t *testing.T, e *Engine) *Node {
	x := newVar(t, e, []float32{1}, true)
	outs, err := Apply(&splitOp{}, x)
	require.NoError(t, err)
	return outs[0].Creator()
}

// TestNode_WeakOutputs tests that a node does not keep its outputs alive.
func TestNode_WeakOutputs(t *testing.T) {
	e := New(cpu.New())
	n := splitNode(t, e)

	runtime.GC()
	runtime.GC()

	assert.Nil(t, n.outputNode(0))
	assert.Nil(t, n.outputNode(1))
	assert.Equal(t, 2, n.NumOutputs())
}

// TestGrad tests Grad without touching stored gradients.
func TestGrad(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1, 2}, true)
	c := newVar(t, e, []float32{5, 5}, false)
	a, err := Add(x, c)
	require.NoError(t, err)
	y, err := Add(a, x)
	require.NoError(t, err)

	u := newVar(t, e, []float32{0, 0}, true)

	gs, err := Grad([]*Variable{y}, []*Variable{x, a, c, u}, nil)
	require.NoError(t, err)
	require.Len(t, gs, 4)
	assert.Equal(t, []float32{2, 2}, gs[0].Data().AsFloat32())
	assert.Equal(t, []float32{1, 1}, gs[1].Data().AsFloat32())
	assert.Equal(t, []float32{1, 1}, gs[2].Data().AsFloat32())
	assert.Nil(t, gs[3])
	assert.Nil(t, x.Grad())

	_, err = Grad([]*Variable{x}, []*Variable{x}, nil)
	assert.ErrorIs(t, err, ErrNoGraph)

	_, err = Grad([]*Variable{y}, []*Variable{x}, []*Variable{nil, nil})
	assert.Error(t, err)
}

// TestVariable_Unchain tests cutting a variable from its creator.
func TestVariable_Unchain(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1}, true)
	y, err := Add(x, x)
	require.NoError(t, err)

	y.Unchain()
	assert.Nil(t, y.Creator())
	assert.Equal(t, 0, y.Rank())
	assert.ErrorIs(t, y.Backward(), ErrNoGraph)
	assert.Equal(t, "variable(float32[1])", y.String())
}

// TestApply_ConcurrentEngines builds graphs on separate engines from separate
// goroutines. Node sequence numbers must stay unique across all of them.
func TestApply_ConcurrentEngines(t *testing.T) {
	const workers, steps = 4, 200

	var mu sync.Mutex
	seqs := make(map[uint64]bool, workers*steps)

	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			e := New(cpu.New())
			x, err := FromSlice(e, []float32{1, 2}, tensor.Shape{2}, true)
			if err != nil {
				return err
			}
			local := make([]uint64, 0, steps)
			for range steps {
				y, err := Add(x, x)
				if err != nil {
					return err
				}
				local = append(local, y.Creator().seq)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, s := range local {
				seqs[s] = true
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, seqs, workers*steps)
}

// TestVariable_SetData tests replacing a variable's tensor.
func TestVariable_SetData(t *testing.T) {
	e := New(cpu.New())
	x := newVar(t, e, []float32{1, 2}, true)

	fresh, err := tensor.FromSlice([]float32{3, 4}, tensor.Shape{2}, cpu.New())
	require.NoError(t, err)
	require.NoError(t, x.SetData(fresh.Raw()))
	assert.Equal(t, []float32{3, 4}, x.Data().AsFloat32())

	wrongShape, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, cpu.New())
	require.NoError(t, err)
	assert.ErrorIs(t, x.SetData(wrongShape.Raw()), ErrTypeMismatch)

	wrongType, err := tensor.FromSlice([]float64{1, 2}, tensor.Shape{2}, cpu.New())
	require.NoError(t, err)
	assert.ErrorIs(t, x.SetData(wrongType.Raw()), ErrTypeMismatch)
	assert.Equal(t, []float32{3, 4}, x.Data().AsFloat32())
}
