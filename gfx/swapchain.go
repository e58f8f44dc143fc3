package gfx

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/vkngwrapper/presentctx/internal/handle"
)

// SwapchainSupport is what a surface reports for one physical device.
type SwapchainSupport struct {
	Capabilities SurfaceCapabilities
	Formats      []SurfaceFormat
	PresentModes []PresentMode
}

// Adequate reports whether a swapchain can be negotiated at all.
func (s *SwapchainSupport) Adequate() bool {
	return s != nil && len(s.Formats) > 0 && len(s.PresentModes) > 0
}

func QuerySwapchainSupport(d Driver, physicalDevice, surface Handle) (SwapchainSupport, error) {
	var support SwapchainSupport
	var err error

	support.Capabilities, err = d.SurfaceCapabilities(physicalDevice, surface)
	if err != nil {
		return support, errors.Wrapf(err, "query surface capabilities of %s", physicalDevice)
	}
	support.Formats, err = d.SurfaceFormats(physicalDevice, surface)
	if err != nil {
		return support, errors.Wrapf(err, "query surface formats of %s", physicalDevice)
	}
	support.PresentModes, err = d.SurfacePresentModes(physicalDevice, surface)
	if err != nil {
		return support, errors.Wrapf(err, "query present modes of %s", physicalDevice)
	}

	return support, nil
}

// ChooseSurfaceFormat picks 8-bit BGRA in non-linear sRGB when offered and the
// first offered format otherwise.
func ChooseSurfaceFormat(formats []SurfaceFormat) (SurfaceFormat, error) {
	if len(formats) == 0 {
		return SurfaceFormat{}, ErrNoSurfaceFormats
	}
	for _, f := range formats {
		if f.Format == FormatB8G8R8A8SRGB && f.ColorSpace == ColorSpaceSRGBNonlinear {
			return f, nil
		}
	}
	return formats[0], nil
}

// ChoosePresentMode picks mailbox when offered. FIFO is always available, so
// it is the fallback whether or not it was listed.
func ChoosePresentMode(modes []PresentMode) PresentMode {
	for _, m := range modes {
		if m == PresentModeMailbox {
			return m
		}
	}
	return PresentModeFIFO
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ChooseExtent uses the surface's current extent unless it is indeterminate,
// in which case the framebuffer size is clamped into the allowed range.
func ChooseExtent(caps SurfaceCapabilities, framebufferWidth, framebufferHeight int) Extent2D {
	if caps.CurrentExtent.Width != IndeterminateExtent {
		return caps.CurrentExtent
	}

	if framebufferWidth < 0 {
		framebufferWidth = 0
	}
	if framebufferHeight < 0 {
		framebufferHeight = 0
	}

	return Extent2D{
		Width:  clamp(uint32(framebufferWidth), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(framebufferHeight), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum, bounded by the
// maximum when the surface has one.
func ChooseImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseSharing shares images concurrently between distinct graphics and
// present families and exclusively otherwise.
func ChooseSharing(roles QueueFamilyRoles) (SharingMode, []uint32) {
	if roles.Resolved() && !roles.Shared() {
		return SharingModeConcurrent, []uint32{*roles.Graphics, *roles.Present}
	}
	return SharingModeExclusive, nil
}

// SwapchainConfig is the negotiated swapchain configuration. Every field comes
// from what the surface reported.
type SwapchainConfig struct {
	SurfaceFormat      SurfaceFormat
	PresentMode        PresentMode
	Extent             Extent2D
	ImageCount         uint32
	Sharing            SharingMode
	QueueFamilyIndices []uint32
	PreTransform       SurfaceTransform
}

func NegotiateSwapchain(support SwapchainSupport, roles QueueFamilyRoles, framebufferWidth, framebufferHeight int) (SwapchainConfig, error) {
	format, err := ChooseSurfaceFormat(support.Formats)
	if err != nil {
		return SwapchainConfig{}, err
	}
	sharing, families := ChooseSharing(roles)

	return SwapchainConfig{
		SurfaceFormat:      format,
		PresentMode:        ChoosePresentMode(support.PresentModes),
		Extent:             ChooseExtent(support.Capabilities, framebufferWidth, framebufferHeight),
		ImageCount:         ChooseImageCount(support.Capabilities),
		Sharing:            sharing,
		QueueFamilyIndices: families,
		PreTransform:       support.Capabilities.CurrentTransform,
	}, nil
}

// Swapchain owns its image views. The images belong to the swapchain object
// itself and are only borrowed.
type Swapchain struct {
	Handle Handle
	Config SwapchainConfig
	Images []Handle
	Views  []Handle
}

func (c *Context) createSwapchain() error {
	cand := c.PhysicalDevice

	// Capabilities are re-read here; the extent may have moved since selection.
	support, err := QuerySwapchainSupport(c.driver, cand.Handle, c.Surface)
	if err != nil {
		return err
	}
	width, height := c.window.FramebufferSize()
	config, err := NegotiateSwapchain(support, cand.Roles, width, height)
	if err != nil {
		return createFailed(handle.Swapchain, err)
	}

	device := c.Device.Handle
	swapchain, err := c.driver.CreateSwapchain(device, SwapchainInfo{
		Surface:        c.Surface,
		Config:         config,
		ArrayLayers:    1,
		Usage:          ImageUsageColorAttachment,
		CompositeAlpha: CompositeAlphaOpaque,
		Clipped:        true,
	})
	if err != nil {
		return createFailed(handle.Swapchain, err)
	}
	if err := c.own(swapchain, device, func() {
		c.driver.DestroySwapchain(device, swapchain)
	}); err != nil {
		return err
	}
	if err := c.registry.Reference(swapchain, c.Surface); err != nil {
		return err
	}

	c.Swapchain = &Swapchain{Handle: swapchain, Config: config}

	c.log.WithFields(logrus.Fields{
		"format":       config.SurfaceFormat.Format,
		"color space":  config.SurfaceFormat.ColorSpace,
		"present mode": config.PresentMode.String(),
		"extent":       config.Extent,
		"images":       config.ImageCount,
		"sharing":      config.Sharing.String(),
	}).Debug("Swapchain created")
	return nil
}

func (c *Context) createImageViews() error {
	device := c.Device.Handle
	sc := c.Swapchain

	images, err := c.driver.SwapchainImages(device, sc.Handle)
	if err != nil {
		return errors.Wrap(err, "query swapchain images")
	}
	for _, image := range images {
		if err := c.registry.Borrow(image, sc.Handle); err != nil {
			return err
		}
	}
	sc.Images = images

	for _, image := range images {
		view, err := c.driver.CreateImageView(device, ImageViewInfo{
			Image:    image,
			ViewType: ImageViewType2D,
			Format:   sc.Config.SurfaceFormat.Format,
			Components: ComponentMapping{
				R: ComponentSwizzleIdentity,
				G: ComponentSwizzleIdentity,
				B: ComponentSwizzleIdentity,
				A: ComponentSwizzleIdentity,
			},
			Range: SubresourceRange{
				Aspect:         ImageAspectColor,
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		})
		if err != nil {
			return createFailed(handle.ImageView, err)
		}
		if err := c.own(view, sc.Handle, func() {
			c.driver.DestroyImageView(device, view)
		}); err != nil {
			return err
		}
		if err := c.registry.Reference(view, image); err != nil {
			return err
		}
		sc.Views = append(sc.Views, view)
	}

	if len(sc.Views) != len(sc.Images) {
		return errors.AssertionFailedf("%d image views for %d swapchain images", len(sc.Views), len(sc.Images))
	}
	return nil
}
