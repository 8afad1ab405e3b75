package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/openfluke/webgpu/wgpu"
)

// mapTimeout bounds the wait for a readback buffer to map.
const mapTimeout = 5 * time.Second

// kernel is a compiled compute pipeline and its bind group layout.
type kernel struct {
	spec     kernelSpec
	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.ComputePipeline
}

func (k *kernel) release() {
	k.pipeline.Release()
	k.layout.Release()
}

// kernel returns the cached pipeline for spec, compiling it on first use.
// Must be called with b.mu held.
func (b *Backend) kernel(spec kernelSpec) (*kernel, error) {
	if k, ok := b.kernels[spec.name]; ok {
		return k, nil
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          spec.name + "_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: spec.source()},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", spec.name, err)
	}
	defer module.Release()

	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(spec.inputs)+2)
	for i := range spec.inputs {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage},
		})
	}
	n := uint32(len(spec.inputs))
	entries = append(entries,
		wgpu.BindGroupLayoutEntry{Binding: n, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
		wgpu.BindGroupLayoutEntry{Binding: n + 1, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
	)

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   spec.name + "_bgl",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bind group layout %s: %w", spec.name, err)
	}

	pl, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            spec.name + "_pl",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("pipeline layout %s: %w", spec.name, err)
	}
	defer pl.Release()

	pipeline, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  spec.name + "_pipeline",
		Layout: pl,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: "main",
		},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("pipeline %s: %w", spec.name, err)
	}

	k := &kernel{spec: spec, layout: layout, pipeline: pipeline}
	b.kernels[spec.name] = k
	log.WithField("kernel", spec.name).Debug("compiled kernel")
	return k, nil
}

// fits reports whether n elements can be covered by a single 1-D dispatch.
func fits(n int) bool {
	return (n+workgroupSize-1)/workgroupSize <= maxWorkgroups
}

// run uploads inputs, dispatches spec over n elements and returns the
// output buffer contents. Every element type is 4 bytes wide.
func (b *Backend) run(spec kernelSpec, inputs [][]byte, n int, scalar float32) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	k, err := b.kernel(spec)
	if err != nil {
		return nil, err
	}

	var buffers []*wgpu.Buffer
	defer func() {
		for _, buf := range buffers {
			buf.Release()
		}
	}()
	newBuffer := func(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: spec.name + "_" + label,
			Size:  size,
			Usage: usage,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: create %s buffer: %w", spec.name, label, err)
		}
		buffers = append(buffers, buf)
		return buf, nil
	}

	outBytes := uint64(n) * 4
	entries := make([]wgpu.BindGroupEntry, 0, len(inputs)+2)
	for i, data := range inputs {
		buf, err := newBuffer(fmt.Sprintf("in%d", i), uint64(len(data)), wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
		if err != nil {
			return nil, err
		}
		b.queue.WriteBuffer(buf, 0, data)
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i), Buffer: buf, Offset: 0, Size: buf.GetSize()})
	}

	out, err := newBuffer("out", outBytes, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	if err != nil {
		return nil, err
	}
	params, err := newBuffer("params", 16, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	readback, err := newBuffer("readback", outBytes, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	p := make([]byte, 16)
	binary.LittleEndian.PutUint32(p[0:4], uint32(n))
	binary.LittleEndian.PutUint32(p[4:8], math.Float32bits(scalar))
	b.queue.WriteBuffer(params, 0, p)

	nIn := uint32(len(inputs))
	entries = append(entries,
		wgpu.BindGroupEntry{Binding: nIn, Buffer: out, Offset: 0, Size: out.GetSize()},
		wgpu.BindGroupEntry{Binding: nIn + 1, Buffer: params, Offset: 0, Size: params.GetSize()},
	)
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   spec.name + "_bg",
		Layout:  k.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: bind group: %w", spec.name, err)
	}
	defer bg.Release()

	enc, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("%s: command encoder: %w", spec.name, err)
	}
	pass := enc.BeginComputePass(nil)
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups(uint32((n+workgroupSize-1)/workgroupSize), 1, 1)
	pass.End()
	enc.CopyBufferToBuffer(out, 0, readback, 0, outBytes)

	cb, err := enc.Finish(nil)
	enc.Release()
	if err != nil {
		return nil, fmt.Errorf("%s: finish: %w", spec.name, err)
	}
	b.queue.Submit(cb)
	cb.Release()

	return b.readBuffer(readback, outBytes)
}

// readBuffer maps a readback buffer and copies its contents to host memory.
func (b *Backend) readBuffer(buf *wgpu.Buffer, size uint64) ([]byte, error) {
	done := make(chan struct{})
	var mapErr error
	buf.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("map status: %d", status)
		}
		close(done)
	})

	timeout := time.After(mapTimeout)
Loop:
	for {
		b.device.Poll(false, nil)
		select {
		case <-done:
			break Loop
		case <-timeout:
			return nil, fmt.Errorf("map timeout")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if mapErr != nil {
		return nil, mapErr
	}

	data := buf.GetMappedRange(0, uint(size))
	defer buf.Unmap()
	if data == nil {
		return nil, fmt.Errorf("mapped range nil")
	}
	out := make([]byte, size)
	copy(out, data)
	return out, nil
}
