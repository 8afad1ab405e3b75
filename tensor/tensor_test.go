// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/hograd/backend/cpu"
	"github.com/born-ml/hograd/tensor"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = cpu.New()
}

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, tensor.CPU, raw.Device())
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())

	ones := tensor.OnesLike(raw)
	assert.Equal(t, []float32{1, 1, 1, 1, 1, 1}, ones.AsFloat32())
	assert.Equal(t, make([]float32, 6), tensor.ZerosLike(ones).AsFloat32())
}

// TestFromSlice verifies typed construction through the public API.
func TestFromSlice(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	assert.Equal(t, float64(3), x.At(1, 0))

	_, err = tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{2, 2}, backend)
	assert.Error(t, err)

	z := tensor.Zeros[float32](tensor.Shape{2}, backend)
	assert.Equal(t, []float32{0, 0}, z.Data())
	f := tensor.Full[float32](tensor.Shape{2}, 7, backend)
	assert.Equal(t, []float32{7, 7}, f.Data())
}

// TestParseDataType verifies dtype name parsing.
func TestParseDataType(t *testing.T) {
	dt, ok := tensor.ParseDataType("float64")
	assert.True(t, ok)
	assert.Equal(t, tensor.Float64, dt)

	_, ok = tensor.ParseDataType("complex64")
	assert.False(t, ok)
}
