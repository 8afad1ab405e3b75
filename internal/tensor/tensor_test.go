package tensor_test

import (
	"testing"

	"github.com/born-ml/hograd/internal/backend/cpu"
	"github.com/born-ml/hograd/internal/tensor"
)

// TestBackendInterface verifies that cpu.CPUBackend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.CPUBackend)(nil)
}

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if x.DType() != tensor.Float32 || x.Device() != tensor.CPU {
		t.Errorf("metadata = %s on %s", x.DType(), x.Device())
	}
	if got := x.At(1, 2); got != 6 {
		t.Errorf("At(1, 2) = %v, want 6", got)
	}

	if _, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{3}, backend); err == nil {
		t.Error("FromSlice should reject a length mismatch")
	}
}

func TestZerosAndFull(t *testing.T) {
	backend := cpu.New()

	z := tensor.Zeros[float64](tensor.Shape{4}, backend)
	for _, v := range z.Data() {
		if v != 0 {
			t.Fatalf("Zeros = %v", z.Data())
		}
	}

	f := tensor.Full[float32](tensor.Shape{2, 2}, 1.5, backend)
	for _, v := range f.Data() {
		if v != 1.5 {
			t.Fatalf("Full = %v", f.Data())
		}
	}
	if f.String() != "Tensor[float32][2 2] on CPU" {
		t.Errorf("String() = %q", f.String())
	}
}
