package webgpu

import (
	"fmt"
	"strings"
)

// workgroupSize is the number of threads per workgroup.
const workgroupSize = 256

// maxWorkgroups is the per-dimension dispatch limit guaranteed by WebGPU.
const maxWorkgroups = 65535

// wgslPrelude is shared by every kernel. NaN is tested on the bit pattern
// because WGSL lets implementations assume floats are never NaN.
const wgslPrelude = `
struct Params {
    size: u32,
    scalar: f32,
}

fn is_nan(v: f32) -> bool {
    let u = bitcast<u32>(v);
    return (u & 0x7f800000u) == 0x7f800000u && (u & 0x007fffffu) != 0u;
}

fn minimum_nan(x: f32, y: f32) -> f32 {
    if (is_nan(x)) { return x; }
    if (is_nan(y)) { return y; }
    if (x <= y) { return x; }
    return y;
}

fn maximum_nan(x: f32, y: f32) -> f32 {
    if (is_nan(x)) { return x; }
    if (is_nan(y)) { return y; }
    if (x >= y) { return x; }
    return y;
}
`

// kernelSpec describes an elementwise kernel: out[i] = expr, where expr
// reads in0[i], in1[i], ... and params.scalar.
type kernelSpec struct {
	name   string
	inputs []string // WGSL element type per input
	output string   // WGSL element type of the output
	expr   string
}

var (
	addKernel = kernelSpec{"add", []string{"f32", "f32"}, "f32", "in0[i] + in1[i]"}
	mulKernel = kernelSpec{"mul", []string{"f32", "f32"}, "f32", "in0[i] * in1[i]"}
	minKernel = kernelSpec{"minimum", []string{"f32", "f32"}, "f32", "minimum_nan(in0[i], in1[i])"}
	maxKernel = kernelSpec{"maximum", []string{"f32", "f32"}, "f32", "maximum_nan(in0[i], in1[i])"}

	mulScalarKernel = kernelSpec{"mulScalar", []string{"f32"}, "f32", "in0[i] * params.scalar"}

	lowerEqualKernel = kernelSpec{"lowerEqual", []string{"f32", "f32"}, "u32",
		"select(0u, 1u, !is_nan(in0[i]) && !is_nan(in1[i]) && in0[i] <= in1[i])"}
	greaterEqualKernel = kernelSpec{"greaterEqual", []string{"f32", "f32"}, "u32",
		"select(0u, 1u, !is_nan(in0[i]) && !is_nan(in1[i]) && in0[i] >= in1[i])"}

	whereKernel = kernelSpec{"where", []string{"u32", "f32", "f32"}, "f32", "select(in2[i], in1[i], in0[i] != 0u)"}
)

// source generates the WGSL module for the kernel.
func (s kernelSpec) source() string {
	var sb strings.Builder
	sb.WriteString(wgslPrelude)
	for i, t := range s.inputs {
		fmt.Fprintf(&sb, "@group(0) @binding(%d) var<storage, read> in%d: array<%s>;\n", i, i, t)
	}
	fmt.Fprintf(&sb, "@group(0) @binding(%d) var<storage, read_write> out: array<%s>;\n", len(s.inputs), s.output)
	fmt.Fprintf(&sb, "@group(0) @binding(%d) var<uniform> params: Params;\n", len(s.inputs)+1)
	fmt.Fprintf(&sb, `
@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let i = gid.x;
    if (i >= params.size) {
        return;
    }
    out[i] = %s;
}
`, workgroupSize, s.expr)
	return sb.String()
}
