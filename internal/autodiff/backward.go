package autodiff

import (
	"container/heap"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/hograd/internal/tensor"
)

// BackwardOptions controls a backward pass.
type BackwardOptions struct {
	// RetainGrad keeps the gradients of intermediate variables.
	RetainGrad bool
	// RetainGraph keeps retained inputs alive so the graph can be walked again.
	RetainGraph bool
	// EnableDoubleBackprop records the backward computation itself, so the
	// resulting gradients can be differentiated. It implies RetainGraph: the
	// recorded gradients reach back into the forward nodes.
	EnableDoubleBackprop bool
}

// BackwardOption configures a backward pass.
type BackwardOption func(*BackwardOptions)

// WithRetainGrad keeps intermediate gradients.
func WithRetainGrad() BackwardOption {
	return func(o *BackwardOptions) {
		o.RetainGrad = true
	}
}

// WithRetainGraph keeps the graph usable for another backward pass.
func WithRetainGraph() BackwardOption {
	return func(o *BackwardOptions) {
		o.RetainGraph = true
	}
}

// WithDoubleBackprop records the backward pass so gradients are
// differentiable.
func WithDoubleBackprop() BackwardOption {
	return func(o *BackwardOptions) {
		o.EnableDoubleBackprop = true
	}
}

// Backward computes gradients of v with respect to every leaf that requires
// them and accumulates the result into the leaves' Grad.
//
// For single-element outputs the seed defaults to ones; otherwise the seed
// must be set with SetGrad first.
func (v *Variable) Backward(opts ...BackwardOption) error {
	if v.node.creator == nil {
		return ErrNoGraph
	}
	seed := v.node.grad
	if seed == nil {
		if v.data.NumElements() != 1 {
			return errors.Errorf("backward from %s needs a gradient seed, use SetGrad", v)
		}
		seed = v.engine.Const(tensor.OnesLike(v.data))
	}

	o := collect(opts)
	grads, err := v.engine.backward([]*Variable{v}, []*Variable{seed}, nil, o)
	if err != nil {
		return err
	}
	for vn, g := range grads {
		if vn == v.node {
			continue
		}
		switch {
		case vn.creator == nil:
			if !vn.requiresGrad {
				continue
			}
			if vn.grad == nil {
				vn.grad = g
				continue
			}
			sum, err := Add(vn.grad, g)
			if err != nil {
				return errors.Wrapf(err, "accumulate gradient of %s", vn.name)
			}
			vn.grad = sum
		case o.RetainGrad:
			vn.grad = g
		}
	}
	return nil
}

// Grad returns the gradients of outputs with respect to inputs without
// touching any variable's stored Grad. gradOutputs seeds each output; a nil
// slice or nil entry defaults to ones. Inputs the outputs do not depend on
// get a nil gradient.
func Grad(outputs, inputs, gradOutputs []*Variable, opts ...BackwardOption) ([]*Variable, error) {
	if len(outputs) == 0 {
		return nil, errors.New("grad: no outputs")
	}
	if gradOutputs != nil && len(gradOutputs) != len(outputs) {
		return nil, errors.Errorf("grad: %d outputs but %d gradients", len(outputs), len(gradOutputs))
	}
	e := outputs[0].engine

	seeds := make([]*Variable, len(outputs))
	for i, out := range outputs {
		if out.node.creator == nil {
			return nil, errors.Wrapf(ErrNoGraph, "grad: output %d", i)
		}
		if gradOutputs != nil && gradOutputs[i] != nil {
			seeds[i] = gradOutputs[i]
			continue
		}
		seeds[i] = e.Const(tensor.OnesLike(out.data))
	}

	targets := make(map[*varNode]bool, len(inputs))
	for _, in := range inputs {
		targets[in.node] = true
	}

	grads, err := e.backward(outputs, seeds, targets, collect(opts))
	if err != nil {
		return nil, err
	}
	result := make([]*Variable, len(inputs))
	for i, in := range inputs {
		result[i] = grads[in.node]
	}
	return result, nil
}

func collect(opts []BackwardOption) BackwardOptions {
	var o BackwardOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// backward walks the graph from roots in decreasing rank order and returns
// the accumulated gradient of every variable it reached. Intermediate
// gradients are dropped once consumed unless RetainGrad is set or the
// variable is in targets.
func (e *Engine) backward(roots, seeds []*Variable, targets map[*varNode]bool, o BackwardOptions) (map[*varNode]*Variable, error) {
	if !o.EnableDoubleBackprop {
		defer e.NoBackprop()()
	}

	grads := make(map[*varNode]*Variable)
	queue := &nodeHeap{}
	seen := make(map[*Node]bool)
	push := func(n *Node) {
		if !seen[n] {
			seen[n] = true
			heap.Push(queue, n)
		}
	}

	for i, root := range roots {
		if err := checkGrad(root.node, seeds[i]); err != nil {
			return nil, err
		}
		if err := accumulate(grads, root.node, seeds[i]); err != nil {
			return nil, err
		}
		push(root.node.creator)
	}

	for queue.Len() > 0 {
		n := heap.Pop(queue).(*Node)

		gys := make([]*Variable, n.NumOutputs())
		var outNodes []*varNode
		for i := range gys {
			vn := n.outputNode(i)
			if vn != nil {
				gys[i] = grads[vn]
				outNodes = append(outNodes, vn)
			}
			if gys[i] == nil {
				gys[i] = e.zeroGrad(n.outInfo[i])
			}
		}

		indexes := make([]int, 0, len(n.inputs))
		for i, in := range n.inputs {
			if in.requiresGrad || targets[in] {
				indexes = append(indexes, i)
			}
		}

		gxs, err := n.fn.Backward(n, indexes, gys)
		if err != nil {
			return nil, errors.Wrapf(err, "backward %s", n.Label())
		}
		if len(gxs) != len(n.inputs) {
			return nil, errors.Errorf("backward %s: returned %d gradients for %d inputs", n.Label(), len(gxs), len(n.inputs))
		}

		for _, i := range indexes {
			gx := gxs[i]
			if gx == nil {
				continue
			}
			in := n.inputs[i]
			if err := checkGrad(in, gx); err != nil {
				return nil, errors.Wrapf(err, "backward %s: input %d", n.Label(), i)
			}
			if err := accumulate(grads, in, gx); err != nil {
				return nil, err
			}
			if in.creator != nil {
				push(in.creator)
			}
		}

		if !o.RetainGrad {
			for _, vn := range outNodes {
				if !targets[vn] && !isRoot(roots, vn) {
					delete(grads, vn)
				}
			}
		}
		if !o.RetainGraph && !o.EnableDoubleBackprop {
			n.release()
		}

		e.logger().WithFields(logrus.Fields{
			"function": n.Label(),
			"rank":     n.rank,
		}).Debug("backward node")
	}
	return grads, nil
}

func isRoot(roots []*Variable, vn *varNode) bool {
	for _, r := range roots {
		if r.node == vn {
			return true
		}
	}
	return false
}

func accumulate(grads map[*varNode]*Variable, vn *varNode, g *Variable) error {
	prev, ok := grads[vn]
	if !ok {
		grads[vn] = g
		return nil
	}
	sum, err := Add(prev, g)
	if err != nil {
		return errors.Wrap(err, "accumulate gradient")
	}
	grads[vn] = sum
	return nil
}

func checkGrad(vn *varNode, g *Variable) error {
	if !g.node.info.Shape.Equal(vn.info.Shape) || g.node.info.DType != vn.info.DType {
		return errors.Wrapf(ErrGradientShape, "gradient %s for variable %s", g.node.info, vn.info)
	}
	return nil
}

func (e *Engine) zeroGrad(info TypeInfo) *Variable {
	raw, err := tensor.NewRaw(info.Shape, info.DType, e.backend.Device())
	if err != nil {
		panic(err)
	}
	return e.Const(raw)
}

// nodeHeap pops the node with the highest rank first; ties go to the most
// recently created node.
type nodeHeap []*Node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank > h[j].rank
	}
	return h[i].seq > h[j].seq
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*Node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}
