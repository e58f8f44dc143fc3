package gfx_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/vkngwrapper/presentctx/gfx"
)

func TestChooseSurfaceFormat(t *testing.T) {
	c := qt.New(t)

	linear := gfx.SurfaceFormat{Format: gfx.FormatR8G8B8A8UNorm, ColorSpace: gfx.ColorSpaceExtendedSRGBLinear}
	preferred := gfx.SurfaceFormat{Format: gfx.FormatB8G8R8A8SRGB, ColorSpace: gfx.ColorSpaceSRGBNonlinear}
	unorm := gfx.SurfaceFormat{Format: gfx.FormatB8G8R8A8UNorm, ColorSpace: gfx.ColorSpaceSRGBNonlinear}

	tests := []struct {
		name    string
		formats []gfx.SurfaceFormat
		want    gfx.SurfaceFormat
	}{
		{"preferred after others", []gfx.SurfaceFormat{linear, preferred}, preferred},
		{"fallback to first", []gfx.SurfaceFormat{linear}, linear},
		{"fallback keeps order", []gfx.SurfaceFormat{unorm, linear}, unorm},
		{"format alone is not enough", []gfx.SurfaceFormat{
			{Format: gfx.FormatB8G8R8A8SRGB, ColorSpace: gfx.ColorSpaceDisplayP3Nonlinear},
			unorm,
		}, gfx.SurfaceFormat{Format: gfx.FormatB8G8R8A8SRGB, ColorSpace: gfx.ColorSpaceDisplayP3Nonlinear}},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			got, err := gfx.ChooseSurfaceFormat(tt.formats)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, tt.want)
		})
	}

	_, err := gfx.ChooseSurfaceFormat(nil)
	c.Assert(err, qt.ErrorIs, gfx.ErrNoSurfaceFormats)
}

func TestChoosePresentMode(t *testing.T) {
	c := qt.New(t)

	c.Assert(gfx.ChoosePresentMode([]gfx.PresentMode{
		gfx.PresentModeImmediate, gfx.PresentModeFIFO, gfx.PresentModeMailbox,
	}), qt.Equals, gfx.PresentModeMailbox)
	c.Assert(gfx.ChoosePresentMode([]gfx.PresentMode{
		gfx.PresentModeImmediate, gfx.PresentModeFIFORelaxed,
	}), qt.Equals, gfx.PresentModeFIFO)
	c.Assert(gfx.ChoosePresentMode(nil), qt.Equals, gfx.PresentModeFIFO)
}

func TestChooseExtent(t *testing.T) {
	c := qt.New(t)

	caps := gfx.SurfaceCapabilities{
		CurrentExtent:  gfx.Extent2D{Width: 800, Height: 600},
		MinImageExtent: gfx.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: gfx.Extent2D{Width: 1920, Height: 1080},
	}
	c.Assert(gfx.ChooseExtent(caps, 3000, 1), qt.Equals, gfx.Extent2D{Width: 800, Height: 600})

	caps.CurrentExtent = gfx.Extent2D{Width: gfx.IndeterminateExtent, Height: gfx.IndeterminateExtent}
	c.Assert(gfx.ChooseExtent(caps, 1000, 10), qt.Equals, gfx.Extent2D{Width: 1000, Height: 100})
	c.Assert(gfx.ChooseExtent(caps, 4000, 2000), qt.Equals, gfx.Extent2D{Width: 1920, Height: 1080})
	c.Assert(gfx.ChooseExtent(caps, -5, 500), qt.Equals, gfx.Extent2D{Width: 100, Height: 500})
}

func TestChooseImageCount(t *testing.T) {
	c := qt.New(t)

	c.Assert(gfx.ChooseImageCount(gfx.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}), qt.Equals, uint32(3))
	c.Assert(gfx.ChooseImageCount(gfx.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}), qt.Equals, uint32(2))
	c.Assert(gfx.ChooseImageCount(gfx.SurfaceCapabilities{MinImageCount: 1, MaxImageCount: 8}), qt.Equals, uint32(2))
}

func TestNegotiateSwapchain(t *testing.T) {
	c := qt.New(t)

	graphics, present := uint32(0), uint32(1)
	support := gfx.SwapchainSupport{
		Capabilities: gfx.SurfaceCapabilities{
			MinImageCount:    2,
			CurrentExtent:    gfx.Extent2D{Width: 640, Height: 480},
			CurrentTransform: gfx.SurfaceTransformIdentity,
		},
		Formats:      []gfx.SurfaceFormat{{Format: gfx.FormatB8G8R8A8UNorm}},
		PresentModes: []gfx.PresentMode{gfx.PresentModeFIFO},
	}

	config, err := gfx.NegotiateSwapchain(support, gfx.QueueFamilyRoles{Graphics: &graphics, Present: &present}, 0, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(config, qt.DeepEquals, gfx.SwapchainConfig{
		SurfaceFormat:      gfx.SurfaceFormat{Format: gfx.FormatB8G8R8A8UNorm},
		PresentMode:        gfx.PresentModeFIFO,
		Extent:             gfx.Extent2D{Width: 640, Height: 480},
		ImageCount:         3,
		Sharing:            gfx.SharingModeConcurrent,
		QueueFamilyIndices: []uint32{0, 1},
		PreTransform:       gfx.SurfaceTransformIdentity,
	})

	config, err = gfx.NegotiateSwapchain(support, gfx.QueueFamilyRoles{Graphics: &graphics, Present: &graphics}, 0, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(config.Sharing, qt.Equals, gfx.SharingModeExclusive)
	c.Assert(config.QueueFamilyIndices, qt.HasLen, 0)
}
