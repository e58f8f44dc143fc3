package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"golang.org/x/exp/slices"

	"github.com/vkngwrapper/presentctx/gfx"
)

type swapchain struct {
	device *device
	obj    khr_swapchain.Swapchain
	images []gfx.Handle
}

type imageView struct {
	device *device
	obj    core1_0.ImageView
}

func swapchainOptions(surface khr_surface.Surface, info gfx.SwapchainInfo) khr_swapchain.SwapchainCreateInfo {
	cfg := info.Config
	options := khr_swapchain.SwapchainCreateInfo{
		Surface:         surface,
		MinImageCount:   int(cfg.ImageCount),
		ImageFormat:     core1_0.Format(cfg.SurfaceFormat.Format),
		ImageColorSpace: khr_surface.ColorSpace(cfg.SurfaceFormat.ColorSpace),
		ImageExtent: core1_0.Extent2D{
			Width:  int(cfg.Extent.Width),
			Height: int(cfg.Extent.Height),
		},
		ImageArrayLayers: int(info.ArrayLayers),
		ImageUsage:       core1_0.ImageUsageFlags(info.Usage),
		ImageSharingMode: core1_0.SharingMode(cfg.Sharing),
		PreTransform:     khr_surface.SurfaceTransformFlags(cfg.PreTransform),
		CompositeAlpha:   khr_surface.CompositeAlphaFlags(info.CompositeAlpha),
		PresentMode:      khr_surface.PresentMode(cfg.PresentMode),
		Clipped:          info.Clipped,
	}
	for _, family := range cfg.QueueFamilyIndices {
		options.QueueFamilyIndices = append(options.QueueFamilyIndices, int(family))
	}
	return options
}

func (d *Driver) CreateSwapchain(h gfx.Handle, info gfx.SwapchainInfo) (gfx.Handle, error) {
	dev, err := d.device(h)
	if err != nil {
		return gfx.Handle{}, err
	}
	s, err := d.surfaces.get(info.Surface)
	if err != nil {
		return gfx.Handle{}, err
	}

	if dev.swapchainExt == nil {
		if !slices.Contains(dev.extensions, khr_swapchain.ExtensionName) {
			return gfx.Handle{}, errors.Newf("%s is not enabled", khr_swapchain.ExtensionName)
		}
		dev.swapchainExt = khr_swapchain.CreateExtensionDriverFromCoreDriver(dev.driver)
		if dev.swapchainExt == nil {
			return gfx.Handle{}, errors.Newf("%s is not enabled", khr_swapchain.ExtensionName)
		}
	}

	obj, _, err := dev.swapchainExt.CreateSwapchain(nil, swapchainOptions(s.obj, info))
	if err != nil {
		return gfx.Handle{}, err
	}
	sc := d.swapchains.add(&swapchain{device: dev, obj: obj})
	d.log.WithField("handle", sc).Trace("vkCreateSwapchainKHR")
	return sc, nil
}

func (d *Driver) DestroySwapchain(device, h gfx.Handle) {
	sc, ok := d.swapchains.remove(h)
	if !ok {
		return
	}
	for _, img := range sc.images {
		d.images.remove(img)
	}
	sc.device.swapchainExt.DestroySwapchain(sc.obj, nil)
	d.log.WithField("handle", h).Trace("vkDestroySwapchainKHR")
}

// SwapchainImages returns the images the presentation engine allocated. The
// images belong to the swapchain and disappear with it.
func (d *Driver) SwapchainImages(device, h gfx.Handle) ([]gfx.Handle, error) {
	sc, err := d.swapchains.get(h)
	if err != nil {
		return nil, err
	}
	if sc.images != nil {
		return append([]gfx.Handle(nil), sc.images...), nil
	}

	images, _, err := sc.device.swapchainExt.GetSwapchainImages(sc.obj)
	if err != nil {
		return nil, err
	}
	sc.images = []gfx.Handle{}
	for _, img := range images {
		sc.images = append(sc.images, d.images.add(img))
	}
	return append([]gfx.Handle(nil), sc.images...), nil
}

func imageViewOptions(img core1_0.Image, info gfx.ImageViewInfo) core1_0.ImageViewCreateInfo {
	return core1_0.ImageViewCreateInfo{
		Image:    img,
		ViewType: core1_0.ImageViewType(info.ViewType),
		Format:   core1_0.Format(info.Format),
		Components: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzle(info.Components.R),
			G: core1_0.ComponentSwizzle(info.Components.G),
			B: core1_0.ComponentSwizzle(info.Components.B),
			A: core1_0.ComponentSwizzle(info.Components.A),
		},
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectFlags(info.Range.Aspect),
			BaseMipLevel:   int(info.Range.BaseMipLevel),
			LevelCount:     int(info.Range.LevelCount),
			BaseArrayLayer: int(info.Range.BaseArrayLayer),
			LayerCount:     int(info.Range.LayerCount),
		},
	}
}

func (d *Driver) CreateImageView(h gfx.Handle, info gfx.ImageViewInfo) (gfx.Handle, error) {
	dev, err := d.device(h)
	if err != nil {
		return gfx.Handle{}, err
	}
	img, err := d.images.get(info.Image)
	if err != nil {
		return gfx.Handle{}, err
	}

	obj, _, err := dev.driver.CreateImageView(nil, imageViewOptions(img, info))
	if err != nil {
		return gfx.Handle{}, err
	}
	return d.views.add(imageView{device: dev, obj: obj}), nil
}

func (d *Driver) DestroyImageView(device, h gfx.Handle) {
	view, ok := d.views.remove(h)
	if !ok {
		return
	}
	view.device.driver.DestroyImageView(view.obj, nil)
}
