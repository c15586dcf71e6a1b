package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceCompositor blends samples into the converged target with a
// fixed-function alpha blend and blits the converged target to the surface.
type SurfaceCompositor struct {
	device  *WGPUDevice
	surface *wgpu.Surface

	accumulate *wgpu.RenderPipeline
	present    *wgpu.RenderPipeline
	sampler    *wgpu.Sampler
	weight     *wgpu.Buffer
}

func NewSurfaceCompositor(device *WGPUDevice, surface *wgpu.Surface, surfaceFormat wgpu.TextureFormat, accumulateWGSL, presentWGSL string) (*SurfaceCompositor, error) {
	c := &SurfaceCompositor{device: device, surface: surface}

	var err error
	c.accumulate, err = c.createPipeline("Accumulate", accumulateWGSL, TargetFormat, &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	})
	if err != nil {
		return nil, err
	}
	c.present, err = c.createPipeline("Present", presentWGSL, surfaceFormat, nil)
	if err != nil {
		c.Release()
		return nil, err
	}

	c.sampler, err = device.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("present sampler: %w", err)
	}

	c.weight, err = device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "BlendWeightBuf",
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("%w: blend weight buffer: %v", ErrAllocation, err)
	}
	return c, nil
}

func (c *SurfaceCompositor) createPipeline(label, wgsl string, format wgpu.TextureFormat, blend *wgpu.BlendState) (*wgpu.RenderPipeline, error) {
	module, err := c.device.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + " VS/FS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgsl},
	})
	if err != nil {
		return nil, fmt.Errorf("%s shader: %w", label, err)
	}
	defer module.Release()

	pipeline, err := c.device.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: label + " Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				Blend:     blend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s pipeline: %w", label, err)
	}
	return pipeline, nil
}

// Blend draws src over dst with alpha = weight.
func (c *SurfaceCompositor) Blend(src, dst Texture, weight float32) error {
	srcView, err := textureView(src)
	if err != nil {
		return err
	}
	dstView, err := textureView(dst)
	if err != nil {
		return err
	}

	var w [16]byte
	putFloat(w[:], weight)
	c.device.Queue.WriteBuffer(c.weight, 0, w[:])

	group, err := c.device.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: c.accumulate.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: srcView},
			{Binding: 1, Buffer: c.weight, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("accumulate bind group: %w", err)
	}
	defer group.Release()

	return c.draw(dstView, wgpu.LoadOpLoad, c.accumulate, group)
}

// Present blits src to the next surface image and presents it.
func (c *SurfaceCompositor) Present(src Texture) error {
	srcView, err := textureView(src)
	if err != nil {
		return err
	}

	next, err := c.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("surface texture: %w", err)
	}
	defer next.Release()

	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer view.Release()

	group, err := c.device.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: c.present.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: srcView},
			{Binding: 1, Sampler: c.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("present bind group: %w", err)
	}
	defer group.Release()

	if err := c.draw(view, wgpu.LoadOpClear, c.present, group); err != nil {
		return err
	}
	c.surface.Present()
	return nil
}

func (c *SurfaceCompositor) draw(target *wgpu.TextureView, load wgpu.LoadOp, pipeline *wgpu.RenderPipeline, group *wgpu.BindGroup) error {
	encoder, err := c.device.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("compositor encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{0, 0, 0, 1},
		}},
	})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, group, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("compositor pass: %w", err)
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("compositor finish: %w", err)
	}
	defer cmd.Release()
	c.device.Queue.Submit(cmd)
	return nil
}

func (c *SurfaceCompositor) Release() {
	if c.weight != nil {
		c.weight.Release()
		c.weight = nil
	}
	if c.sampler != nil {
		c.sampler.Release()
		c.sampler = nil
	}
	if c.present != nil {
		c.present.Release()
		c.present = nil
	}
	if c.accumulate != nil {
		c.accumulate.Release()
		c.accumulate = nil
	}
}
