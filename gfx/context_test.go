package gfx_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/vkngwrapper/presentctx/gfx"
	"github.com/vkngwrapper/presentctx/gfx/gfxtest"
	"github.com/vkngwrapper/presentctx/internal/handle"
)

func debugPolicy() gfx.Policy {
	p := gfx.DefaultPolicy()
	p.Debug = true
	return p
}

func build(d *gfxtest.Driver, p gfx.Policy, opts ...gfx.Option) (*gfx.Context, error) {
	return gfx.Build(d, gfxtest.NewWindow(800, 600), gfxtest.DefaultShaders(), p, opts...)
}

func withoutShaderModules(hs []gfx.Handle) []gfx.Handle {
	var out []gfx.Handle
	for _, h := range hs {
		if h.Kind != handle.ShaderModule {
			out = append(out, h)
		}
	}
	return out
}

func reversed(hs []gfx.Handle) []gfx.Handle {
	if len(hs) == 0 {
		return nil
	}
	out := make([]gfx.Handle, len(hs))
	for i, h := range hs {
		out[len(hs)-1-i] = h
	}
	return out
}

func kinds(hs []gfx.Handle) []gfx.Kind {
	var out []gfx.Kind
	for _, h := range hs {
		out = append(out, h.Kind)
	}
	return out
}

func assertCleanTeardown(c *qt.C, d *gfxtest.Driver) {
	c.Helper()
	c.Assert(d.Leaked(), qt.HasLen, 0)
	c.Assert(d.Violations, qt.HasLen, 0)
	c.Assert(withoutShaderModules(d.Destroyed()), qt.DeepEquals, reversed(withoutShaderModules(d.Created())))
}

func TestBuildAndDestroy(t *testing.T) {
	c := qt.New(t)

	d := gfxtest.NewDriver(gfxtest.SuitableDevice("gpu"))
	ctx, err := build(d, debugPolicy())
	c.Assert(err, qt.IsNil)

	c.Assert(kinds(withoutShaderModules(d.Created())), qt.DeepEquals, []gfx.Kind{
		handle.Instance,
		handle.DebugMessenger,
		handle.Surface,
		handle.Device,
		handle.Swapchain,
		handle.ImageView,
		handle.ImageView,
		handle.ImageView,
		handle.RenderPass,
		handle.PipelineLayout,
		handle.Pipeline,
	})
	// Shader modules are gone as soon as the pipeline exists.
	c.Assert(kinds(d.Destroyed()), qt.DeepEquals, []gfx.Kind{handle.ShaderModule, handle.ShaderModule})

	c.Assert(ctx.PhysicalDevice.Handle, qt.Equals, d.Device(0))
	c.Assert(ctx.Live(ctx.PhysicalDevice.Handle), qt.IsTrue)
	c.Assert(ctx.Device.GraphicsQueue, qt.Equals, ctx.Device.PresentQueue)
	c.Assert(ctx.Swapchain.Images, qt.HasLen, 3)
	c.Assert(ctx.Swapchain.Views, qt.HasLen, 3)
	for _, image := range ctx.Swapchain.Images {
		c.Assert(ctx.Live(image), qt.IsTrue)
	}

	c.Assert(ctx.Destroy(), qt.IsNil)
	assertCleanTeardown(c, d)
	c.Assert(ctx.Live(ctx.Swapchain.Images[0]), qt.IsFalse)
	c.Assert(ctx.Live(ctx.PhysicalDevice.Handle), qt.IsFalse)

	calls := len(d.Calls)
	c.Assert(ctx.Destroy(), qt.IsNil)
	c.Assert(d.Calls, qt.HasLen, calls)
}

func TestFailedStartupReleasesEverything(t *testing.T) {
	c := qt.New(t)
	injected := errors.New("out of device memory")

	tests := []struct {
		kind gfx.Kind
		nth  int
	}{
		{handle.Instance, 1},
		{handle.DebugMessenger, 1},
		{handle.Surface, 1},
		{handle.Device, 1},
		{handle.Swapchain, 1},
		{handle.ImageView, 2},
		{handle.RenderPass, 1},
		{handle.ShaderModule, 2},
		{handle.PipelineLayout, 1},
		{handle.Pipeline, 1},
	}
	for _, tt := range tests {
		c.Run(string(tt.kind), func(c *qt.C) {
			d := gfxtest.NewDriver(gfxtest.SuitableDevice("gpu"))
			d.Fail(tt.kind, tt.nth, injected)

			ctx, err := build(d, debugPolicy())
			c.Assert(ctx, qt.IsNil)
			c.Assert(err, qt.ErrorIs, injected)

			var createErr *gfx.ResourceCreationError
			c.Assert(err, qt.ErrorAs, &createErr)
			c.Assert(createErr.Object, qt.Equals, tt.kind)

			assertCleanTeardown(c, d)
		})
	}
}

func TestMissingValidationLayer(t *testing.T) {
	c := qt.New(t)

	d := gfxtest.NewDriver(gfxtest.SuitableDevice("gpu"))
	d.Layers = nil

	_, err := build(d, debugPolicy())
	var envErr *gfx.UnsupportedEnvironmentError
	c.Assert(err, qt.ErrorAs, &envErr)
	c.Assert(*envErr, qt.Equals, gfx.UnsupportedEnvironmentError{Kind: "layer", Name: "VK_LAYER_KHRONOS_validation"})
	c.Assert(d.Created(), qt.HasLen, 0)
}

func TestMissingWindowExtension(t *testing.T) {
	c := qt.New(t)

	d := gfxtest.NewDriver(gfxtest.SuitableDevice("gpu"))
	d.InstanceExtensions = []string{"VK_EXT_debug_utils"}

	_, err := build(d, debugPolicy())
	var envErr *gfx.UnsupportedEnvironmentError
	c.Assert(err, qt.ErrorAs, &envErr)
	c.Assert(*envErr, qt.Equals, gfx.UnsupportedEnvironmentError{Kind: "instance extension", Name: "VK_KHR_surface"})
}

func TestReleasePolicySkipsDiagnostics(t *testing.T) {
	c := qt.New(t)

	d := gfxtest.NewDriver(gfxtest.SuitableDevice("gpu"))
	d.Layers = nil
	d.InstanceExtensions = []string{"VK_KHR_surface"}
	p := gfx.DefaultPolicy()
	p.Debug = false

	ctx, err := build(d, p)
	c.Assert(err, qt.IsNil)
	c.Assert(ctx.Messenger.Null(), qt.IsTrue)
	c.Assert(d.InstanceInfo.Layers, qt.HasLen, 0)
	c.Assert(d.InstanceInfo.Diagnostics, qt.IsNil)
	c.Assert(d.MessengerInfo, qt.IsNil)
	c.Assert(ctx.Destroy(), qt.IsNil)
	assertCleanTeardown(c, d)
}

func TestMissingDebugMessengerIsIgnored(t *testing.T) {
	c := qt.New(t)

	d := gfxtest.NewDriver(gfxtest.SuitableDevice("gpu"))
	d.NoDebugMessenger = true

	ctx, err := build(d, debugPolicy())
	c.Assert(err, qt.IsNil)
	c.Assert(ctx.Messenger.Null(), qt.IsTrue)
	c.Assert(d.InstanceInfo.Diagnostics, qt.IsNotNil)
	c.Assert(ctx.Destroy(), qt.IsNil)
	assertCleanTeardown(c, d)
}

func TestDiagnosticsNeverAbort(t *testing.T) {
	c := qt.New(t)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	d := gfxtest.NewDriver(gfxtest.SuitableDevice("gpu"))
	ctx, err := build(d, debugPolicy(), gfx.WithLogger(logger))
	c.Assert(err, qt.IsNil)
	defer ctx.Destroy()

	info := d.MessengerInfo
	c.Assert(info, qt.IsNotNil)
	c.Assert(info.Severities, qt.Equals, gfx.DebugSeverityError|gfx.DebugSeverityWarning|gfx.DebugSeverityVerbose)
	c.Assert(info.Types, qt.Equals, gfx.DebugMessageValidation|gfx.DebugMessagePerformance|gfx.DebugMessageGeneral)

	tests := []struct {
		severity gfx.DebugSeverity
		level    logrus.Level
	}{
		{gfx.DebugSeverityError, logrus.ErrorLevel},
		{gfx.DebugSeverityWarning, logrus.WarnLevel},
		{gfx.DebugSeverityInfo, logrus.InfoLevel},
		{gfx.DebugSeverityVerbose, logrus.DebugLevel},
	}
	for _, tt := range tests {
		hook.Reset()
		c.Assert(info.Callback(tt.severity, gfx.DebugMessageValidation, "vkCreateDevice: bad queue"), qt.IsFalse)
		entry := hook.LastEntry()
		c.Assert(entry, qt.IsNotNil)
		c.Assert(entry.Level, qt.Equals, tt.level)
		c.Assert(entry.Message, qt.Equals, "vkCreateDevice: bad queue")
		c.Assert(entry.Data["type"], qt.Equals, "validation")
	}
}

func TestMissingShaderFile(t *testing.T) {
	c := qt.New(t)

	d := gfxtest.NewDriver(gfxtest.SuitableDevice("gpu"))
	shaders := gfxtest.DefaultShaders()
	delete(shaders, gfx.DefaultFragmentShader)

	_, err := gfx.Build(d, gfxtest.NewWindow(800, 600), shaders, debugPolicy())
	var fileErr *gfx.FileAccessError
	c.Assert(err, qt.ErrorAs, &fileErr)
	c.Assert(fileErr.Path, qt.Equals, gfx.DefaultFragmentShader)
	assertCleanTeardown(c, d)
}

func TestNoSuitableDeviceUnwinds(t *testing.T) {
	c := qt.New(t)

	pd := gfxtest.SuitableDevice("gpu")
	pd.Features.GeometryShader = false
	d := gfxtest.NewDriver(pd)

	_, err := build(d, debugPolicy())
	var noneErr *gfx.NoSuitableDeviceError
	c.Assert(err, qt.ErrorAs, &noneErr)
	c.Assert(kinds(d.Destroyed()), qt.DeepEquals, []gfx.Kind{handle.Surface, handle.DebugMessenger, handle.Instance})
	assertCleanTeardown(c, d)
}

func TestSeparateQueueFamilies(t *testing.T) {
	c := qt.New(t)

	pd := gfxtest.SuitableDevice("gpu")
	pd.QueueFamilies = []gfx.QueueFamilyProperties{{Flags: gfx.QueueGraphics}, {Flags: gfx.QueueTransfer}}
	pd.PresentFamilies = []uint32{1}
	d := gfxtest.NewDriver(pd)

	ctx, err := build(d, debugPolicy())
	c.Assert(err, qt.IsNil)
	defer ctx.Destroy()

	c.Assert(d.DeviceInfo.Queues, qt.DeepEquals, []gfx.QueueInfo{
		{Family: 0, Priorities: []float32{1.0}},
		{Family: 1, Priorities: []float32{1.0}},
	})
	c.Assert(ctx.Device.GraphicsQueue, qt.Not(qt.Equals), ctx.Device.PresentQueue)
	c.Assert(d.SwapchainInfo.Config.Sharing, qt.Equals, gfx.SharingModeConcurrent)
	c.Assert(d.SwapchainInfo.Config.QueueFamilyIndices, qt.DeepEquals, []uint32{0, 1})
}

func TestPortabilityExtensions(t *testing.T) {
	c := qt.New(t)

	pd := gfxtest.SuitableDevice("gpu")
	pd.Extensions = append(pd.Extensions, "VK_KHR_portability_subset")
	d := gfxtest.NewDriver(pd)
	d.InstanceExtensions = append(d.InstanceExtensions, "VK_KHR_portability_enumeration")

	ctx, err := build(d, debugPolicy())
	c.Assert(err, qt.IsNil)
	defer ctx.Destroy()

	c.Assert(d.InstanceInfo.EnumeratePortability, qt.IsTrue)
	c.Assert(d.InstanceInfo.Extensions, qt.DeepEquals, []string{
		"VK_KHR_surface", "VK_EXT_debug_utils", "VK_KHR_portability_enumeration",
	})
	c.Assert(d.DeviceInfo.Extensions, qt.DeepEquals, []string{"VK_KHR_swapchain", "VK_KHR_portability_subset"})
}

func TestImageViewsFollowReturnedImages(t *testing.T) {
	c := qt.New(t)

	pd := gfxtest.SuitableDevice("gpu")
	pd.SwapchainImages = 4
	d := gfxtest.NewDriver(pd)

	ctx, err := build(d, debugPolicy())
	c.Assert(err, qt.IsNil)
	defer ctx.Destroy()

	c.Assert(ctx.Swapchain.Config.ImageCount, qt.Equals, uint32(3))
	c.Assert(ctx.Swapchain.Views, qt.HasLen, 4)
	c.Assert(d.ViewInfos, qt.HasLen, 4)
	for i, info := range d.ViewInfos {
		c.Assert(info.Image, qt.Equals, ctx.Swapchain.Images[i])
		c.Assert(info.Format, qt.Equals, gfx.FormatB8G8R8A8SRGB)
		c.Assert(info.ViewType, qt.Equals, gfx.ImageViewType2D)
		c.Assert(info.Range, qt.Equals, gfx.SubresourceRange{Aspect: gfx.ImageAspectColor, LevelCount: 1, LayerCount: 1})
	}
}
