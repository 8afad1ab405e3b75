package autodiff

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/hograd/internal/tensor"
)

var (
	// ErrTypeMismatch is returned when a Function rejects its inputs'
	// shapes or dtypes.
	ErrTypeMismatch = errors.New("shape or type mismatch")

	// ErrReleasedNode is returned when a node's retained inputs are requested
	// after a backward pass released them.
	ErrReleasedNode = errors.New("retained inputs already released")

	// ErrNoGraph is returned when backward starts from a variable that has no
	// creator.
	ErrNoGraph = errors.New("variable has no creator")

	// ErrGradientShape is returned when a gradient does not match the shape or
	// dtype of its variable.
	ErrGradientShape = errors.New("gradient does not match variable")
)

// TypeInfo is the static description of a tensor seen by CheckInputs.
type TypeInfo struct {
	Shape tensor.Shape
	DType tensor.DataType
}

// String formats the info as dtype[dims].
func (ti TypeInfo) String() string {
	return fmt.Sprintf("%s%v", ti.DType, []int(ti.Shape))
}

func typeInfoOf(r *tensor.RawTensor) TypeInfo {
	return TypeInfo{Shape: r.Shape(), DType: r.DType()}
}

// TypeCheckError describes why a Function rejected its inputs.
// It unwraps to ErrTypeMismatch.
type TypeCheckError struct {
	Function string
	Inputs   []TypeInfo
	Reason   string
}

func (e *TypeCheckError) Error() string {
	in := make([]string, len(e.Inputs))
	for i, ti := range e.Inputs {
		in[i] = ti.String()
	}
	return fmt.Sprintf("%s: invalid inputs (%s): %s", e.Function, strings.Join(in, ", "), e.Reason)
}

// Unwrap returns ErrTypeMismatch.
func (e *TypeCheckError) Unwrap() error {
	return ErrTypeMismatch
}
