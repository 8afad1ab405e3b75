package autodiff

import (
	"sync/atomic"
	"weak"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/hograd/internal/tensor"
)

// nodeSeq orders nodes across every engine in the process.
var nodeSeq atomic.Uint64

// Apply runs fn on inputs and records a graph node when backprop is enabled
// and at least one input requires gradients.
//
// With type checking enabled, a rejected input set returns an error wrapping
// ErrTypeMismatch and no kernel runs.
func Apply(fn Function, inputs ...*Variable) ([]*Variable, error) {
	if len(inputs) == 0 {
		return nil, errors.Errorf("%s: no inputs", fn.Label())
	}
	e := inputs[0].engine

	info := make([]TypeInfo, len(inputs))
	raws := make([]*tensor.RawTensor, len(inputs))
	for i, in := range inputs {
		info[i] = in.node.info
		raws[i] = in.data
	}
	if e.config.TypeCheck {
		if err := fn.CheckInputs(info); err != nil {
			return nil, errors.Wrapf(err, "apply %s", fn.Label())
		}
	}

	n := &Node{
		fn:        fn,
		engine:    e,
		seq:       nodeSeq.Add(1),
		inputData: raws,
	}
	outData := fn.Forward(n, raws)
	n.inputData = nil

	record := false
	if e.config.Backprop {
		for _, in := range inputs {
			if in.node.requiresGrad {
				record = true
				break
			}
		}
	}

	outputs := make([]*Variable, len(outData))
	for i, d := range outData {
		outputs[i] = e.Variable(d, record)
	}

	if e.config.Debug {
		for i, d := range outData {
			if d.DType().IsFloat() && d.HasNaN() {
				e.logger().WithFields(logrus.Fields{
					"function": fn.Label(),
					"output":   i,
				}).Warn("NaN in forward output")
			}
		}
	}

	if !record {
		n.release()
		return outputs, nil
	}

	n.inputs = make([]*varNode, len(inputs))
	for i, in := range inputs {
		n.inputs[i] = in.node
		if in.node.rank > n.rank {
			n.rank = in.node.rank
		}
	}
	n.outputs = make([]weak.Pointer[varNode], len(outputs))
	n.outInfo = make([]TypeInfo, len(outputs))
	for i, out := range outputs {
		out.node.creator = n
		out.node.rank = n.rank + 1
		n.outputs[i] = weak.Make(out.node)
		n.outInfo[i] = out.node.info
	}

	e.logger().WithFields(logrus.Fields{
		"function": fn.Label(),
		"rank":     n.rank,
		"inputs":   info,
	}).Debug("recorded node")

	return outputs, nil
}

// Apply1 runs a single-output fn and returns its only output.
func Apply1(fn Function, inputs ...*Variable) (*Variable, error) {
	outs, err := Apply(fn, inputs...)
	if err != nil {
		return nil, err
	}
	if len(outs) != 1 {
		return nil, errors.Errorf("%s: expected 1 output, got %d", fn.Label(), len(outs))
	}
	return outs[0], nil
}
