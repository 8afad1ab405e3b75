// Package main provides the hograd CLI.
//
// Usage:
//
//	hograd version
//	hograd min -x1 1,3,2 -x2 2,3,1 [-gy 1,1,1] [-dtype float64] [-device cpu|webgpu]
//	hograd max -x1 1,3,2 -x2 2,3,1
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/hograd/autodiff"
	"github.com/born-ml/hograd/backend/cpu"
	"github.com/born-ml/hograd/backend/webgpu"
	"github.com/born-ml/hograd/tensor"
)

const version = "v0.1.0"

var log = logrus.WithField("pkg", "hograd/cmd")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}
	switch args[0] {
	case "version":
		fmt.Fprintf(out, "hograd %s\n", version)
		return nil
	case "min", "max":
		return runSelect(args[0], args[1:], out)
	default:
		usage(out)
		return errors.Errorf("unknown command %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "hograd - higher-order automatic differentiation")
	fmt.Fprintf(out, "Version: %s\n\n", version)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "  min        Elementwise minimum with first- and second-order gradients")
	fmt.Fprintln(out, "  max        Elementwise maximum with first- and second-order gradients")
}

// runSelect evaluates min or max of two vectors and prints y, the gradients
// with respect to x1 and x2, and the second-order gradient with respect to gy.
func runSelect(cmd string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	x1Flag := fs.String("x1", "", "comma-separated first operand")
	x2Flag := fs.String("x2", "", "comma-separated second operand")
	gyFlag := fs.String("gy", "", "comma-separated output gradient (default ones)")
	dtypeFlag := fs.String("dtype", "float32", "float32 or float64")
	deviceFlag := fs.String("device", "cpu", "cpu or webgpu")
	verbose := fs.Bool("v", false, "log graph construction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	x1, err := parseFloats(*x1Flag)
	if err != nil {
		return errors.Wrap(err, "-x1")
	}
	x2, err := parseFloats(*x2Flag)
	if err != nil {
		return errors.Wrap(err, "-x2")
	}
	gy := make([]float64, len(x1))
	for i := range gy {
		gy[i] = 1
	}
	if *gyFlag != "" {
		if gy, err = parseFloats(*gyFlag); err != nil {
			return errors.Wrap(err, "-gy")
		}
	}
	dtype, ok := tensor.ParseDataType(*dtypeFlag)
	if !ok || !dtype.IsFloat() {
		return errors.Errorf("-dtype: unsupported %q", *dtypeFlag)
	}

	backend, release, err := openBackend(*deviceFlag)
	if err != nil {
		return err
	}
	defer release()
	engine := autodiff.New(backend)

	v1, err := newVariable(engine, x1, dtype)
	if err != nil {
		return errors.Wrap(err, "x1")
	}
	v2, err := newVariable(engine, x2, dtype)
	if err != nil {
		return errors.Wrap(err, "x2")
	}
	vgy, err := newVariable(engine, gy, dtype)
	if err != nil {
		return errors.Wrap(err, "gy")
	}

	f := autodiff.Minimum
	if cmd == "max" {
		f = autodiff.Maximum
	}
	y, err := f(v1, v2)
	if err != nil {
		return err
	}
	gx, err := autodiff.Grad(
		[]*autodiff.Variable{y},
		[]*autodiff.Variable{v1, v2},
		[]*autodiff.Variable{vgy},
		autodiff.WithDoubleBackprop(),
	)
	if err != nil {
		return err
	}
	ggy, err := autodiff.Grad([]*autodiff.Variable{gx[0]}, []*autodiff.Variable{vgy}, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "device: %s\n", engine.Name())
	fmt.Fprintf(out, "y:        %v\n", y.Data().Float64s())
	fmt.Fprintf(out, "gx1:      %v\n", gx[0].Data().Float64s())
	fmt.Fprintf(out, "gx2:      %v\n", gx[1].Data().Float64s())
	fmt.Fprintf(out, "dgx1/dgy: %v\n", ggy[0].Data().Float64s())
	return nil
}

func openBackend(name string) (tensor.Backend, func(), error) {
	switch name {
	case "cpu":
		return cpu.New(), func() {}, nil
	case "webgpu":
		gpu, err := webgpu.New()
		if err != nil {
			return nil, nil, err
		}
		log.WithField("adapter", gpu.AdapterName()).Info("using WebGPU")
		return gpu, gpu.Release, nil
	default:
		return nil, nil, errors.Errorf("-device: unknown %q", name)
	}
}

func newVariable(e *autodiff.Engine, data []float64, dtype tensor.DataType) (*autodiff.Variable, error) {
	shape := tensor.Shape{len(data)}
	if dtype == tensor.Float64 {
		return autodiff.FromSlice(e, data, shape, true)
	}
	f32 := make([]float32, len(data))
	for i, v := range data {
		f32[i] = float32(v)
	}
	return autodiff.FromSlice(e, f32, shape, true)
}

func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("empty list")
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out[i] = v
	}
	return out, nil
}
