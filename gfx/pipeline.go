package gfx

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/vkngwrapper/presentctx/internal/handle"
)

type AttachmentDescription struct {
	Format         Format
	Samples        SampleCount
	LoadOp         AttachmentLoadOp
	StoreOp        AttachmentStoreOp
	StencilLoadOp  AttachmentLoadOp
	StencilStoreOp AttachmentStoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

type AttachmentReference struct {
	Attachment uint32
	Layout     ImageLayout
}

type SubpassDescription struct {
	BindPoint        PipelineBindPoint
	ColorAttachments []AttachmentReference
}

// RenderPassDescription declares how attachments are loaded and stored across
// the subpasses of a render pass.
type RenderPassDescription struct {
	Attachments []AttachmentDescription
	Subpasses   []SubpassDescription
}

// RenderPassFor describes a pass that clears one color attachment in format and
// leaves it ready for presentation.
func RenderPassFor(format Format) RenderPassDescription {
	return RenderPassDescription{
		Attachments: []AttachmentDescription{
			{
				Format:         format,
				Samples:        SampleCount1,
				LoadOp:         AttachmentLoadOpClear,
				StoreOp:        AttachmentStoreOpStore,
				StencilLoadOp:  AttachmentLoadOpDontCare,
				StencilStoreOp: AttachmentStoreOpDontCare,
				InitialLayout:  ImageLayoutUndefined,
				FinalLayout:    ImageLayoutPresentSrc,
			},
		},
		Subpasses: []SubpassDescription{
			{
				BindPoint: PipelineBindPointGraphics,
				ColorAttachments: []AttachmentReference{
					{
						Attachment: 0,
						Layout:     ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
	}
}

type RenderPass struct {
	Handle      Handle
	Description RenderPassDescription
}

type VertexBinding struct {
	Binding   uint32
	Stride    uint32
	InputRate VertexInputRate
}

type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

type VertexInputState struct {
	Bindings   []VertexBinding
	Attributes []VertexAttribute
}

type InputAssemblyState struct {
	Topology         PrimitiveTopology
	PrimitiveRestart bool
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

type RasterizationState struct {
	DepthClamp        bool
	RasterizerDiscard bool
	PolygonMode       PolygonMode
	CullMode          CullMode
	FrontFace         FrontFace
	DepthBias         bool
	LineWidth         float32
}

type MultisampleState struct {
	Samples        SampleCount
	SampleShading  bool
	MinSampleShade float32
}

type ColorBlendAttachment struct {
	BlendEnabled bool
	WriteMask    ColorComponent

	SrcColor BlendFactor
	DstColor BlendFactor
	ColorOp  BlendOp
	SrcAlpha BlendFactor
	DstAlpha BlendFactor
	AlphaOp  BlendOp
}

type ColorBlendState struct {
	LogicOpEnabled bool
	LogicOp        LogicOp
	Attachments    []ColorBlendAttachment
	BlendConstants [4]float32
}

// PipelineDescription is the fixed-function state baked into a pipeline.
type PipelineDescription struct {
	VertexInput   VertexInputState
	InputAssembly InputAssemblyState
	Viewports     []Viewport
	Scissors      []Rect2D
	Rasterization RasterizationState
	Multisample   MultisampleState
	ColorBlend    ColorBlendState
}

// FixedFunctionState returns the constant fixed-function state for a pipeline
// drawing over the whole of extent with alpha blending. Geometry comes from the
// vertex shader, so there is no vertex input.
func FixedFunctionState(extent Extent2D) PipelineDescription {
	return PipelineDescription{
		InputAssembly: InputAssemblyState{
			Topology: PrimitiveTopologyTriangleList,
		},
		Viewports: []Viewport{
			{
				Width:    float32(extent.Width),
				Height:   float32(extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []Rect2D{
			{Extent: extent},
		},
		Rasterization: RasterizationState{
			PolygonMode: PolygonModeFill,
			CullMode:    CullModeBack,
			FrontFace:   FrontFaceClockwise,
			LineWidth:   1.0,
		},
		Multisample: MultisampleState{
			Samples:        SampleCount1,
			MinSampleShade: 1.0,
		},
		ColorBlend: ColorBlendState{
			LogicOp: LogicOpCopy,
			Attachments: []ColorBlendAttachment{
				{
					BlendEnabled: true,
					WriteMask:    ColorComponentRGBA,
					SrcColor:     BlendFactorSrcAlpha,
					DstColor:     BlendFactorOneMinusSrcAlpha,
					ColorOp:      BlendOpAdd,
					SrcAlpha:     BlendFactorOne,
					DstAlpha:     BlendFactorZero,
					AlphaOp:      BlendOpAdd,
				},
			},
		},
	}
}

// GraphicsPipeline is immutable once built. Layout and RenderPass are only
// referenced and outlive it.
type GraphicsPipeline struct {
	Handle      Handle
	Layout      Handle
	RenderPass  Handle
	Description PipelineDescription
}

func (c *Context) createRenderPass() error {
	device := c.Device.Handle
	desc := RenderPassFor(c.Swapchain.Config.SurfaceFormat.Format)

	renderPass, err := c.driver.CreateRenderPass(device, desc)
	if err != nil {
		return createFailed(handle.RenderPass, err)
	}
	if err := c.own(renderPass, device, func() {
		c.driver.DestroyRenderPass(device, renderPass)
	}); err != nil {
		return err
	}

	c.RenderPass = &RenderPass{Handle: renderPass, Description: desc}
	return nil
}

// loadShaderModule creates a module for the named blob. The module stays
// registered until release is called.
func (c *Context) loadShaderModule(name string) (Handle, func(), error) {
	code, err := c.shaders.Load(name)
	if err != nil {
		var fileErr *FileAccessError
		if !errors.As(err, &fileErr) {
			err = &FileAccessError{Path: name, Err: err}
		}
		return Handle{}, nil, err
	}

	device := c.Device.Handle
	module, err := c.driver.CreateShaderModule(device, code)
	if err != nil {
		return Handle{}, nil, createFailed(handle.ShaderModule, errors.Wrapf(err, "shader %s", name))
	}
	if err := c.own(module, device, func() {
		c.driver.DestroyShaderModule(device, module)
	}); err != nil {
		return Handle{}, nil, err
	}

	release := func() {
		if err := c.registry.Release(module); err != nil {
			c.log.WithError(err).WithField("shader", name).Warn("Shader module release")
		}
	}
	return module, release, nil
}

func (c *Context) createGraphicsPipeline() error {
	device := c.Device.Handle

	vert, releaseVert, err := c.loadShaderModule(c.vertexShader)
	if err != nil {
		return err
	}
	defer releaseVert()

	frag, releaseFrag, err := c.loadShaderModule(c.fragmentShader)
	if err != nil {
		return err
	}
	defer releaseFrag()

	layout, err := c.driver.CreatePipelineLayout(device, PipelineLayoutInfo{})
	if err != nil {
		return createFailed(handle.PipelineLayout, err)
	}
	if err := c.own(layout, device, func() {
		c.driver.DestroyPipelineLayout(device, layout)
	}); err != nil {
		return err
	}

	desc := FixedFunctionState(c.Swapchain.Config.Extent)
	pipeline, err := c.driver.CreateGraphicsPipeline(device, GraphicsPipelineInfo{
		Stages: []PipelineShaderStage{
			{Stage: ShaderStageVertex, Module: vert, Entry: "main"},
			{Stage: ShaderStageFragment, Module: frag, Entry: "main"},
		},
		State:             desc,
		Layout:            layout,
		RenderPass:        c.RenderPass.Handle,
		Subpass:           0,
		BasePipelineIndex: -1,
	})
	if err != nil {
		return createFailed(handle.Pipeline, err)
	}
	if err := c.own(pipeline, device, func() {
		c.driver.DestroyPipeline(device, pipeline)
	}); err != nil {
		return err
	}
	for _, target := range []Handle{layout, c.RenderPass.Handle} {
		if err := c.registry.Reference(pipeline, target); err != nil {
			return err
		}
	}

	c.Pipeline = &GraphicsPipeline{
		Handle:      pipeline,
		Layout:      layout,
		RenderPass:  c.RenderPass.Handle,
		Description: desc,
	}

	c.log.WithFields(logrus.Fields{
		"vertex":   c.vertexShader,
		"fragment": c.fragmentShader,
		"extent":   c.Swapchain.Config.Extent,
	}).Debug("Graphics pipeline created")
	return nil
}
