package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/solid.wgsl
var solidShaderSource string

//go:embed shaders/sdf.wgsl
var sdfShaderSource string

//go:embed shaders/texture.wgsl
var textureShaderSource string

//go:embed shaders/glyph.wgsl
var glyphShaderSource string

//go:embed shaders/stencil.wgsl
var stencilShaderSource string

//go:embed shaders/composite.wgsl
var compositeShaderSource string

// targetFormat is the color format of every render target: the caller's
// surface, the offscreen layers, and the composite source.
const targetFormat = gputypes.TextureFormatBGRA8Unorm

// stencilFormat is the format of the shared depth/stencil attachment.
const stencilFormat = gputypes.TextureFormatDepth24PlusStencil8

// Vertex strides must match the staging buffer layouts.
const (
	strideSolid   = 12 // float32x2 position + unorm8x4 color
	strideSolidUV = 20 // position + color + float32x2 uv
	stridePosUV   = 16 // position + float32x2 uv
)

// pipelineSet bundles every render pipeline playback uses, plus the two
// bind group layouts they are built from.
type pipelineSet struct {
	uniformLayout hal.BindGroupLayout // group 0: one uniform block
	textureLayout hal.BindGroupLayout // group 1: texture + sampler

	plainLayout    hal.PipelineLayout // uniform only
	texturedLayout hal.PipelineLayout // uniform + texture

	modules []hal.ShaderModule

	solid     hal.RenderPipeline // rects, lines, beziers, meshes
	sdf       hal.RenderPipeline // round rects, circles, arcs
	textured  hal.RenderPipeline // images
	glyph     hal.RenderPipeline // glyph runs
	clipPush  hal.RenderPipeline // stencil increment, no color writes
	clipPop   hal.RenderPipeline // stencil replace, no color writes
	composite hal.RenderPipeline // layer blit, fullscreen triangle

	sampler hal.Sampler
}

var (
	solidVertexLayout = []gputypes.VertexBufferLayout{{
		ArrayStride: strideSolid,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 8, ShaderLocation: 1},
		},
	}}
	solidUVVertexLayout = []gputypes.VertexBufferLayout{{
		ArrayStride: strideSolidUV,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 8, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 2},
		},
	}}
	posUVVertexLayout = []gputypes.VertexBufferLayout{{
		ArrayStride: stridePosUV,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
		},
	}}
)

// drawStencilState returns the depth/stencil state for color draws: pass
// only where the stencil equals the current clip reference, never write.
func drawStencilState() *hal.DepthStencilState {
	face := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionEqual,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            stencilFormat,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      face,
		StencilBack:       face,
		StencilReadMask:   0xFF,
		StencilWriteMask:  0x00,
	}
}

// clipPushStencilState increments the stencil where it equals the
// current reference. Pixels outside the enclosing clip fail the test and
// keep their value.
func clipPushStencilState() *hal.DepthStencilState {
	face := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionEqual,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationIncrementWrap,
	}
	return &hal.DepthStencilState{
		Format:            stencilFormat,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      face,
		StencilBack:       face,
		StencilReadMask:   0xFF,
		StencilWriteMask:  0xFF,
	}
}

// clipPopStencilState rewrites every pixel whose stencil exceeds the
// restore target back to the target value. The WebGPU stencil test is
// (reference OP stored), so Less passes exactly where stored > reference,
// which lets one pass unwind any number of clip levels.
func clipPopStencilState() *hal.DepthStencilState {
	face := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionLess,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationReplace,
	}
	return &hal.DepthStencilState{
		Format:            stencilFormat,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      face,
		StencilBack:       face,
		StencilReadMask:   0xFF,
		StencilWriteMask:  0xFF,
	}
}

// compositeStencilState ignores the stencil entirely; layer composites
// cover the full target.
func compositeStencilState() *hal.DepthStencilState {
	face := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            stencilFormat,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      face,
		StencilBack:       face,
		StencilReadMask:   0xFF,
		StencilWriteMask:  0x00,
	}
}

// newPipelineSet compiles the shaders and creates every pipeline.
func newPipelineSet(device hal.Device, label string) (*pipelineSet, error) {
	p := &pipelineSet{}
	ok := false
	defer func() {
		if !ok {
			p.destroy(device)
		}
	}()

	uniformLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create uniform bind group layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	textureLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture bind group layout: %w", err)
	}
	p.textureLayout = textureLayout

	plainLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_plain_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("create plain pipeline layout: %w", err)
	}
	p.plainLayout = plainLayout

	texturedLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label + "_textured_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout, p.textureLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("create textured pipeline layout: %w", err)
	}
	p.texturedLayout = texturedLayout

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	p.sampler = sampler

	type pipelineSpec struct {
		name      string
		source    string
		layout    hal.PipelineLayout
		vertex    []gputypes.VertexBufferLayout
		blend     bool
		writeMask gputypes.ColorWriteMask
		stencil   *hal.DepthStencilState
		out       *hal.RenderPipeline
	}
	specs := []pipelineSpec{
		{"solid", solidShaderSource, p.plainLayout, solidVertexLayout,
			true, gputypes.ColorWriteMaskAll, drawStencilState(), &p.solid},
		{"sdf", sdfShaderSource, p.plainLayout, solidUVVertexLayout,
			true, gputypes.ColorWriteMaskAll, drawStencilState(), &p.sdf},
		{"textured", textureShaderSource, p.texturedLayout, solidUVVertexLayout,
			true, gputypes.ColorWriteMaskAll, drawStencilState(), &p.textured},
		{"glyph", glyphShaderSource, p.texturedLayout, posUVVertexLayout,
			true, gputypes.ColorWriteMaskAll, drawStencilState(), &p.glyph},
		{"clip_push", stencilShaderSource, p.plainLayout, solidVertexLayout,
			false, gputypes.ColorWriteMaskNone, clipPushStencilState(), &p.clipPush},
		{"clip_pop", stencilShaderSource, p.plainLayout, solidVertexLayout,
			false, gputypes.ColorWriteMaskNone, clipPopStencilState(), &p.clipPop},
		{"composite", compositeShaderSource, p.texturedLayout, nil,
			true, gputypes.ColorWriteMaskAll, compositeStencilState(), &p.composite},
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	for _, spec := range specs {
		module, err := compileShaderModule(device, label+"_"+spec.name, spec.source)
		if err != nil {
			return nil, err
		}
		p.modules = append(p.modules, module)

		target := gputypes.ColorTargetState{
			Format:    targetFormat,
			WriteMask: spec.writeMask,
		}
		if spec.blend {
			target.Blend = &premulBlend
		}

		pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  label + "_" + spec.name + "_pipeline",
			Layout: spec.layout,
			Vertex: hal.VertexState{
				Module:     module,
				EntryPoint: "vs_main",
				Buffers:    spec.vertex,
			},
			Fragment: &hal.FragmentState{
				Module:     module,
				EntryPoint: "fs_main",
				Targets:    []gputypes.ColorTargetState{target},
			},
			DepthStencil: spec.stencil,
			Multisample:  gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
			Primitive: gputypes.PrimitiveState{
				Topology: gputypes.PrimitiveTopologyTriangleList,
				CullMode: gputypes.CullModeNone,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create %s pipeline: %w", spec.name, err)
		}
		*spec.out = pipeline
	}

	ok = true
	return p, nil
}

func (p *pipelineSet) destroy(device hal.Device) {
	for _, pl := range []hal.RenderPipeline{
		p.solid, p.sdf, p.textured, p.glyph, p.clipPush, p.clipPop, p.composite,
	} {
		if pl != nil {
			device.DestroyRenderPipeline(pl)
		}
	}
	for _, m := range p.modules {
		device.DestroyShaderModule(m)
	}
	p.modules = nil
	if p.sampler != nil {
		device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.plainLayout != nil {
		device.DestroyPipelineLayout(p.plainLayout)
		p.plainLayout = nil
	}
	if p.texturedLayout != nil {
		device.DestroyPipelineLayout(p.texturedLayout)
		p.texturedLayout = nil
	}
	if p.uniformLayout != nil {
		device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.textureLayout != nil {
		device.DestroyBindGroupLayout(p.textureLayout)
		p.textureLayout = nil
	}
}
