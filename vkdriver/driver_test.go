package vkdriver

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/presentctx/gfx"
	"github.com/vkngwrapper/presentctx/internal/handle"
)

func TestTableHandles(t *testing.T) {
	c := qt.New(t)

	var ids uint64
	views := newTable[string](handle.ImageView, &ids)
	passes := newTable[string](handle.RenderPass, &ids)

	a := views.add("a")
	b := passes.add("b")
	c.Assert(a, qt.Equals, gfx.Handle{Kind: handle.ImageView, ID: 1})
	c.Assert(b, qt.Equals, gfx.Handle{Kind: handle.RenderPass, ID: 2})

	obj, err := views.get(a)
	c.Assert(err, qt.IsNil)
	c.Assert(obj, qt.Equals, "a")

	_, err = views.get(b)
	c.Assert(errors.Is(err, handle.ErrNotLive), qt.IsTrue)

	obj, ok := views.remove(a)
	c.Assert(ok, qt.IsTrue)
	c.Assert(obj, qt.Equals, "a")
	_, ok = views.remove(a)
	c.Assert(ok, qt.IsFalse)
	c.Assert(views.len(), qt.Equals, 0)

	// Ids are never reused after removal.
	c.Assert(views.add("c").ID, qt.Equals, uint64(3))
}

func TestExtentSentinel(t *testing.T) {
	c := qt.New(t)

	c.Assert(extent(core1_0.Extent2D{Width: -1, Height: -1}), qt.Equals,
		gfx.Extent2D{Width: gfx.IndeterminateExtent, Height: gfx.IndeterminateExtent})
	c.Assert(extent(core1_0.Extent2D{Width: 800, Height: 600}), qt.Equals,
		gfx.Extent2D{Width: 800, Height: 600})
}

func TestSwapchainOptions(t *testing.T) {
	c := qt.New(t)

	info := gfx.SwapchainInfo{
		Config: gfx.SwapchainConfig{
			SurfaceFormat: gfx.SurfaceFormat{
				Format:     gfx.FormatB8G8R8A8SRGB,
				ColorSpace: gfx.ColorSpaceSRGBNonlinear,
			},
			PresentMode:        gfx.PresentModeFIFO,
			Extent:             gfx.Extent2D{Width: 1280, Height: 1080},
			ImageCount:         3,
			Sharing:            gfx.SharingModeConcurrent,
			QueueFamilyIndices: []uint32{0, 2},
			PreTransform:       gfx.SurfaceTransformIdentity,
		},
		ArrayLayers:    1,
		Usage:          gfx.ImageUsageColorAttachment,
		CompositeAlpha: gfx.CompositeAlphaOpaque,
		Clipped:        true,
	}

	var surface khr_surface.Surface
	options := swapchainOptions(surface, info)
	c.Assert(options.MinImageCount, qt.Equals, 3)
	c.Assert(options.ImageFormat, qt.Equals, core1_0.FormatB8G8R8A8SRGB)
	c.Assert(options.ImageColorSpace, qt.Equals, khr_surface.ColorSpaceSRGBNonlinear)
	c.Assert(options.ImageExtent, qt.Equals, core1_0.Extent2D{Width: 1280, Height: 1080})
	c.Assert(options.ImageArrayLayers, qt.Equals, 1)
	c.Assert(options.ImageUsage, qt.Equals, core1_0.ImageUsageColorAttachment)
	c.Assert(options.ImageSharingMode, qt.Equals, core1_0.SharingModeConcurrent)
	c.Assert(options.QueueFamilyIndices, qt.DeepEquals, []int{0, 2})
	c.Assert(options.CompositeAlpha, qt.Equals, khr_surface.CompositeAlphaOpaque)
	c.Assert(options.PresentMode, qt.Equals, khr_surface.PresentModeFIFO)
	c.Assert(options.Clipped, qt.IsTrue)
}

func TestRenderPassOptions(t *testing.T) {
	c := qt.New(t)

	options := renderPassOptions(gfx.RenderPassFor(gfx.FormatB8G8R8A8SRGB))
	c.Assert(options.Attachments, qt.HasLen, 1)

	a := options.Attachments[0]
	c.Assert(a.Format, qt.Equals, core1_0.FormatB8G8R8A8SRGB)
	c.Assert(a.Samples, qt.Equals, core1_0.Samples1)
	c.Assert(a.LoadOp, qt.Equals, core1_0.AttachmentLoadOpClear)
	c.Assert(a.StoreOp, qt.Equals, core1_0.AttachmentStoreOpStore)
	c.Assert(a.StencilLoadOp, qt.Equals, core1_0.AttachmentLoadOpDontCare)
	c.Assert(a.StencilStoreOp, qt.Equals, core1_0.AttachmentStoreOpDontCare)
	c.Assert(a.InitialLayout, qt.Equals, core1_0.ImageLayoutUndefined)
	c.Assert(a.FinalLayout, qt.Equals, khr_swapchain.ImageLayoutPresentSrc)

	c.Assert(options.Subpasses, qt.HasLen, 1)
	c.Assert(options.Subpasses[0].PipelineBindPoint, qt.Equals, core1_0.PipelineBindPointGraphics)
	c.Assert(options.Subpasses[0].ColorAttachments, qt.DeepEquals, []core1_0.AttachmentReference{
		{Attachment: 0, Layout: core1_0.ImageLayoutColorAttachmentOptimal},
	})
}

func TestImageViewOptions(t *testing.T) {
	c := qt.New(t)

	var img core1_0.Image
	options := imageViewOptions(img, gfx.ImageViewInfo{
		ViewType: gfx.ImageViewType2D,
		Format:   gfx.FormatB8G8R8A8SRGB,
		Range: gfx.SubresourceRange{
			Aspect:     gfx.ImageAspectColor,
			LevelCount: 1,
			LayerCount: 1,
		},
	})
	c.Assert(options.ViewType, qt.Equals, core1_0.ImageViewType2D)
	c.Assert(options.Format, qt.Equals, core1_0.FormatB8G8R8A8SRGB)
	c.Assert(options.SubresourceRange.AspectMask, qt.Equals, core1_0.ImageAspectColor)
	c.Assert(options.SubresourceRange.LevelCount, qt.Equals, 1)
	c.Assert(options.SubresourceRange.LayerCount, qt.Equals, 1)
}

func TestFixedFunctionOptions(t *testing.T) {
	c := qt.New(t)

	state := gfx.FixedFunctionState(gfx.Extent2D{Width: 640, Height: 480})

	viewport := viewportOptions(state.Viewports, state.Scissors)
	c.Assert(viewport.Viewports, qt.DeepEquals, []core1_0.Viewport{{Width: 640, Height: 480, MaxDepth: 1}})
	c.Assert(viewport.Scissors, qt.DeepEquals, []core1_0.Rect2D{{
		Extent: core1_0.Extent2D{Width: 640, Height: 480},
	}})

	blend := colorBlendOptions(state.ColorBlend)
	c.Assert(blend.LogicOpEnabled, qt.IsFalse)
	c.Assert(blend.LogicOp, qt.Equals, core1_0.LogicOpCopy)
	c.Assert(blend.Attachments, qt.HasLen, 1)
	c.Assert(blend.Attachments[0].BlendEnabled, qt.IsTrue)
	c.Assert(blend.Attachments[0].ColorBlendOp, qt.Equals, core1_0.BlendOpAdd)
	c.Assert(blend.Attachments[0].ColorWriteMask, qt.Equals,
		core1_0.ColorComponentRed|core1_0.ColorComponentGreen|core1_0.ColorComponentBlue|core1_0.ColorComponentAlpha)

	input := vertexInputOptions(state.VertexInput)
	c.Assert(input.VertexBindingDescriptions, qt.HasLen, 0)
	c.Assert(input.VertexAttributeDescriptions, qt.HasLen, 0)
}

func TestGraphicsPipelineOptionsRequireLiveObjects(t *testing.T) {
	c := qt.New(t)

	d := newDriver(nil, nil)
	_, err := d.graphicsPipelineOptions(gfx.GraphicsPipelineInfo{
		Layout: gfx.Handle{Kind: handle.PipelineLayout, ID: 7},
	})
	c.Assert(errors.Is(err, handle.ErrNotLive), qt.IsTrue)
	c.Assert(d.Live(), qt.Equals, 0)
}

func TestDebugMessengerOptionsForwardMessages(t *testing.T) {
	c := qt.New(t)

	var got []string
	options := debugMessengerOptions(gfx.DebugMessengerInfo{
		Severities: gfx.DebugSeverityWarning | gfx.DebugSeverityError,
		Types:      gfx.DebugMessageValidation,
		Callback: func(severity gfx.DebugSeverity, types gfx.DebugMessageType, message string) bool {
			got = append(got, severity.String()+" "+types.String()+" "+message)
			return false
		},
	})
	c.Assert(uint32(options.MessageSeverity), qt.Equals, uint32(gfx.DebugSeverityWarning|gfx.DebugSeverityError))

	abort := options.UserCallback(0x2, 0x1000, nil)
	c.Assert(abort, qt.IsFalse)
	c.Assert(got, qt.DeepEquals, []string{"error validation "})
}
