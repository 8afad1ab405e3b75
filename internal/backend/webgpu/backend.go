// Package webgpu implements the WebGPU backend for GPU-accelerated tensor
// operations, using github.com/openfluke/webgpu.
//
// Float32 elementwise, comparison and select kernels run as WGSL compute
// shaders. Reductions and other dtypes run on the host.
package webgpu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/openfluke/webgpu/wgpu"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/hograd/internal/backend/cpu"
	"github.com/born-ml/hograd/internal/tensor"
)

var log = logrus.WithField("pkg", "hograd/webgpu")

// Backend implements tensor.Backend on a WebGPU device.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	adapterName string

	// mu serializes kernel compilation and queue submissions.
	mu      sync.Mutex
	kernels map[string]*kernel

	host *cpu.CPUBackend
}

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (backend *Backend, err error) {
	// The native library panics when it cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, fmt.Errorf("webgpu: failed to create instance")
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %v", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{})
	if err != nil || device == nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %v", err)
	}

	info := adapter.GetInfo()
	b := &Backend{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       device.GetQueue(),
		adapterName: strings.TrimSpace(info.Name),
		kernels:     make(map[string]*kernel),
		host:        cpu.New(),
	}
	log.WithField("adapter", b.adapterName).Debug("webgpu backend ready")
	return b, nil
}

// IsAvailable reports whether a WebGPU device can be opened.
func IsAvailable() bool {
	b, err := New()
	if err != nil {
		return false
	}
	b.Release()
	return true
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, k := range b.kernels {
		k.release()
	}
	b.kernels = nil

	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// AdapterName returns the name reported by the GPU adapter.
func (b *Backend) AdapterName() string {
	return b.adapterName
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// onDevice copies a host-computed result into a tensor tagged for this
// backend.
func onDevice(r *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(r.Shape(), r.DType(), tensor.WebGPU)
	if err != nil {
		panic(fmt.Sprintf("webgpu: %v", err))
	}
	copy(out.Data(), r.Data())
	return out
}

func checkSameLayout(op string, a, b *tensor.RawTensor) {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("webgpu: %s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("webgpu: %s: dtype mismatch %s vs %s", op, a.DType(), b.DType()))
	}
}
