package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/presentctx/gfx"
	"github.com/vkngwrapper/presentctx/shader"
)

func renderPassOptions(desc gfx.RenderPassDescription) core1_0.RenderPassCreateInfo {
	var options core1_0.RenderPassCreateInfo
	for _, a := range desc.Attachments {
		options.Attachments = append(options.Attachments, core1_0.AttachmentDescription{
			Format:         core1_0.Format(a.Format),
			Samples:        core1_0.SampleCountFlags(a.Samples),
			LoadOp:         core1_0.AttachmentLoadOp(a.LoadOp),
			StoreOp:        core1_0.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  core1_0.AttachmentLoadOp(a.StencilLoadOp),
			StencilStoreOp: core1_0.AttachmentStoreOp(a.StencilStoreOp),
			InitialLayout:  core1_0.ImageLayout(a.InitialLayout),
			FinalLayout:    core1_0.ImageLayout(a.FinalLayout),
		})
	}
	for _, s := range desc.Subpasses {
		subpass := core1_0.SubpassDescription{
			PipelineBindPoint: core1_0.PipelineBindPoint(s.BindPoint),
		}
		for _, ref := range s.ColorAttachments {
			subpass.ColorAttachments = append(subpass.ColorAttachments, core1_0.AttachmentReference{
				Attachment: int(ref.Attachment),
				Layout:     core1_0.ImageLayout(ref.Layout),
			})
		}
		options.Subpasses = append(options.Subpasses, subpass)
	}
	return options
}

func (d *Driver) CreateRenderPass(h gfx.Handle, desc gfx.RenderPassDescription) (gfx.Handle, error) {
	dev, err := d.device(h)
	if err != nil {
		return gfx.Handle{}, err
	}
	obj, _, err := dev.driver.CreateRenderPass(nil, renderPassOptions(desc))
	if err != nil {
		return gfx.Handle{}, err
	}
	return d.renderPasses.add(obj), nil
}

func (d *Driver) DestroyRenderPass(device, h gfx.Handle) {
	obj, ok := d.renderPasses.remove(h)
	if !ok {
		return
	}
	if dev, err := d.device(device); err == nil {
		dev.driver.DestroyRenderPass(obj, nil)
	}
}

func (d *Driver) CreateShaderModule(h gfx.Handle, code []byte) (gfx.Handle, error) {
	dev, err := d.device(h)
	if err != nil {
		return gfx.Handle{}, err
	}
	words, err := shader.Words(code)
	if err != nil {
		return gfx.Handle{}, err
	}
	obj, _, err := dev.driver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{Code: words})
	if err != nil {
		return gfx.Handle{}, err
	}
	return d.modules.add(obj), nil
}

func (d *Driver) DestroyShaderModule(device, h gfx.Handle) {
	obj, ok := d.modules.remove(h)
	if !ok {
		return
	}
	if dev, err := d.device(device); err == nil {
		dev.driver.DestroyShaderModule(obj, nil)
	}
}

func (d *Driver) CreatePipelineLayout(h gfx.Handle, info gfx.PipelineLayoutInfo) (gfx.Handle, error) {
	dev, err := d.device(h)
	if err != nil {
		return gfx.Handle{}, err
	}
	if len(info.SetLayouts) > 0 {
		return gfx.Handle{}, errors.Newf("descriptor set layouts are not supported, got %d", len(info.SetLayouts))
	}

	var options core1_0.PipelineLayoutCreateInfo
	for _, r := range info.PushConstantRanges {
		options.PushConstantRanges = append(options.PushConstantRanges, core1_0.PushConstantRange{
			StageFlags: core1_0.ShaderStageFlags(r.Stages),
			Offset:     int(r.Offset),
			Size:       int(r.Size),
		})
	}
	obj, _, err := dev.driver.CreatePipelineLayout(nil, options)
	if err != nil {
		return gfx.Handle{}, err
	}
	return d.layouts.add(obj), nil
}

func (d *Driver) DestroyPipelineLayout(device, h gfx.Handle) {
	obj, ok := d.layouts.remove(h)
	if !ok {
		return
	}
	if dev, err := d.device(device); err == nil {
		dev.driver.DestroyPipelineLayout(obj, nil)
	}
}

func vertexInputOptions(state gfx.VertexInputState) *core1_0.PipelineVertexInputStateCreateInfo {
	options := &core1_0.PipelineVertexInputStateCreateInfo{}
	for _, b := range state.Bindings {
		options.VertexBindingDescriptions = append(options.VertexBindingDescriptions, core1_0.VertexInputBindingDescription{
			Binding:   int(b.Binding),
			Stride:    int(b.Stride),
			InputRate: core1_0.VertexInputRate(b.InputRate),
		})
	}
	for _, a := range state.Attributes {
		options.VertexAttributeDescriptions = append(options.VertexAttributeDescriptions, core1_0.VertexInputAttributeDescription{
			Location: uint32(a.Location),
			Binding:  int(a.Binding),
			Format:   core1_0.Format(a.Format),
			Offset:   int(a.Offset),
		})
	}
	return options
}

func viewportOptions(viewports []gfx.Viewport, scissors []gfx.Rect2D) *core1_0.PipelineViewportStateCreateInfo {
	options := &core1_0.PipelineViewportStateCreateInfo{}
	for _, v := range viewports {
		options.Viewports = append(options.Viewports, core1_0.Viewport{
			X:        v.X,
			Y:        v.Y,
			Width:    v.Width,
			Height:   v.Height,
			MinDepth: v.MinDepth,
			MaxDepth: v.MaxDepth,
		})
	}
	for _, s := range scissors {
		options.Scissors = append(options.Scissors, core1_0.Rect2D{
			Offset: core1_0.Offset2D{X: int(s.Offset.X), Y: int(s.Offset.Y)},
			Extent: core1_0.Extent2D{Width: int(s.Extent.Width), Height: int(s.Extent.Height)},
		})
	}
	return options
}

func colorBlendOptions(state gfx.ColorBlendState) *core1_0.PipelineColorBlendStateCreateInfo {
	options := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: state.LogicOpEnabled,
		LogicOp:        core1_0.LogicOp(state.LogicOp),
		BlendConstants: state.BlendConstants,
	}
	for _, a := range state.Attachments {
		options.Attachments = append(options.Attachments, core1_0.PipelineColorBlendAttachmentState{
			BlendEnabled:        a.BlendEnabled,
			SrcColorBlendFactor: core1_0.BlendFactor(a.SrcColor),
			DstColorBlendFactor: core1_0.BlendFactor(a.DstColor),
			ColorBlendOp:        core1_0.BlendOp(a.ColorOp),
			SrcAlphaBlendFactor: core1_0.BlendFactor(a.SrcAlpha),
			DstAlphaBlendFactor: core1_0.BlendFactor(a.DstAlpha),
			AlphaBlendOp:        core1_0.BlendOp(a.AlphaOp),
			ColorWriteMask:      core1_0.ColorComponentFlags(a.WriteMask),
		})
	}
	return options
}

func (d *Driver) graphicsPipelineOptions(info gfx.GraphicsPipelineInfo) (core1_0.GraphicsPipelineCreateInfo, error) {
	layout, err := d.layouts.get(info.Layout)
	if err != nil {
		return core1_0.GraphicsPipelineCreateInfo{}, err
	}
	renderPass, err := d.renderPasses.get(info.RenderPass)
	if err != nil {
		return core1_0.GraphicsPipelineCreateInfo{}, err
	}

	state := info.State
	options := core1_0.GraphicsPipelineCreateInfo{
		VertexInputState: vertexInputOptions(state.VertexInput),
		InputAssemblyState: &core1_0.PipelineInputAssemblyStateCreateInfo{
			Topology:               core1_0.PrimitiveTopology(state.InputAssembly.Topology),
			PrimitiveRestartEnable: state.InputAssembly.PrimitiveRestart,
		},
		ViewportState: viewportOptions(state.Viewports, state.Scissors),
		RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{
			DepthClampEnable:        state.Rasterization.DepthClamp,
			RasterizerDiscardEnable: state.Rasterization.RasterizerDiscard,
			PolygonMode:             core1_0.PolygonMode(state.Rasterization.PolygonMode),
			CullMode:                core1_0.CullModeFlags(state.Rasterization.CullMode),
			FrontFace:               core1_0.FrontFace(state.Rasterization.FrontFace),
			DepthBiasEnable:         state.Rasterization.DepthBias,
			LineWidth:               state.Rasterization.LineWidth,
		},
		MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{
			RasterizationSamples: core1_0.SampleCountFlags(state.Multisample.Samples),
			SampleShadingEnable:  state.Multisample.SampleShading,
			MinSampleShading:     state.Multisample.MinSampleShade,
		},
		ColorBlendState:   colorBlendOptions(state.ColorBlend),
		Layout:            layout,
		RenderPass:        renderPass,
		Subpass:           int(info.Subpass),
		BasePipelineIndex: info.BasePipelineIndex,
	}
	for _, stage := range info.Stages {
		module, err := d.modules.get(stage.Module)
		if err != nil {
			return core1_0.GraphicsPipelineCreateInfo{}, errors.Wrapf(err, "%s stage", stage.Stage)
		}
		options.Stages = append(options.Stages, core1_0.PipelineShaderStageCreateInfo{
			Stage:  core1_0.ShaderStageFlags(stage.Stage),
			Module: module,
			Name:   stage.Entry,
		})
	}
	return options, nil
}

func (d *Driver) CreateGraphicsPipeline(h gfx.Handle, info gfx.GraphicsPipelineInfo) (gfx.Handle, error) {
	dev, err := d.device(h)
	if err != nil {
		return gfx.Handle{}, err
	}
	options, err := d.graphicsPipelineOptions(info)
	if err != nil {
		return gfx.Handle{}, err
	}
	pipelines, _, err := dev.driver.CreateGraphicsPipelines(nil, nil, options)
	if err != nil {
		return gfx.Handle{}, err
	}
	if len(pipelines) != 1 {
		return gfx.Handle{}, errors.AssertionFailedf("created %d pipelines, want 1", len(pipelines))
	}
	p := d.pipelines.add(pipelines[0])
	d.log.WithField("handle", p).Trace("vkCreateGraphicsPipelines")
	return p, nil
}

func (d *Driver) DestroyPipeline(device, h gfx.Handle) {
	obj, ok := d.pipelines.remove(h)
	if !ok {
		return
	}
	if dev, err := d.device(device); err == nil {
		dev.driver.DestroyPipeline(obj, nil)
	}
}
