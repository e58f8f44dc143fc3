package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/presentctx/gfx"
)

type device struct {
	driver       core1_0.CoreDeviceDriver
	extensions   []string
	swapchainExt khr_swapchain.ExtensionDriver
}

// EnumeratePhysicalDevices returns the same handles for the same devices on
// every call.
func (d *Driver) EnumeratePhysicalDevices(h gfx.Handle) ([]gfx.Handle, error) {
	inst, err := d.instances.get(h)
	if err != nil {
		return nil, err
	}
	if inst.physical != nil {
		return append([]gfx.Handle(nil), inst.physical...), nil
	}

	devices, _, err := inst.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}
	inst.physical = []gfx.Handle{}
	for _, pd := range devices {
		inst.physical = append(inst.physical, d.physical.add(&physicalDevice{instance: inst, obj: pd}))
	}
	return append([]gfx.Handle(nil), inst.physical...), nil
}

func (d *Driver) DeviceProperties(h gfx.Handle) (gfx.DeviceProperties, error) {
	pd, err := d.physical.get(h)
	if err != nil {
		return gfx.DeviceProperties{}, err
	}
	props, err := pd.instance.driver.GetPhysicalDeviceProperties(pd.obj)
	if err != nil {
		return gfx.DeviceProperties{}, err
	}
	return gfx.DeviceProperties{
		Name:              props.DriverName,
		Type:              gfx.DeviceType(props.DriverType),
		VendorID:          uint32(props.VendorID),
		DeviceID:          uint32(props.DeviceID),
		DriverVersion:     uint32(props.DriverVersion),
		PipelineCacheUUID: props.PipelineCacheUUID,
	}, nil
}

func (d *Driver) DeviceFeatures(h gfx.Handle) (gfx.DeviceFeatures, error) {
	pd, err := d.physical.get(h)
	if err != nil {
		return gfx.DeviceFeatures{}, err
	}
	features := pd.instance.driver.GetPhysicalDeviceFeatures(pd.obj)
	return gfx.DeviceFeatures{GeometryShader: features.GeometryShader}, nil
}

func (d *Driver) DeviceExtensions(h gfx.Handle) ([]string, error) {
	pd, err := d.physical.get(h)
	if err != nil {
		return nil, err
	}
	extensions, _, err := pd.instance.driver.EnumerateDeviceExtensionProperties(pd.obj)
	if err != nil {
		return nil, err
	}
	return sortedKeys(extensions), nil
}

func (d *Driver) QueueFamilies(h gfx.Handle) ([]gfx.QueueFamilyProperties, error) {
	pd, err := d.physical.get(h)
	if err != nil {
		return nil, err
	}
	var families []gfx.QueueFamilyProperties
	for _, family := range pd.instance.driver.GetPhysicalDeviceQueueFamilyProperties(pd.obj) {
		families = append(families, gfx.QueueFamilyProperties{Flags: gfx.QueueFlags(family.QueueFlags)})
	}
	return families, nil
}

func (d *Driver) surfaceQuery(physical, surf gfx.Handle) (*physicalDevice, *surface, error) {
	pd, err := d.physical.get(physical)
	if err != nil {
		return nil, nil, err
	}
	s, err := d.surfaces.get(surf)
	if err != nil {
		return nil, nil, err
	}
	return pd, s, nil
}

func (d *Driver) SurfaceSupport(physical gfx.Handle, family uint32, surf gfx.Handle) (bool, error) {
	pd, s, err := d.surfaceQuery(physical, surf)
	if err != nil {
		return false, err
	}
	supported, _, err := s.instance.surfaceExt.GetPhysicalDeviceSurfaceSupport(s.obj, pd.obj, int(family))
	return supported, err
}

func extent(e core1_0.Extent2D) gfx.Extent2D {
	var out gfx.Extent2D
	if e.Width < 0 {
		out.Width = gfx.IndeterminateExtent
	} else {
		out.Width = uint32(e.Width)
	}
	if e.Height < 0 {
		out.Height = gfx.IndeterminateExtent
	} else {
		out.Height = uint32(e.Height)
	}
	return out
}

func surfaceCapabilities(caps *khr_surface.SurfaceCapabilities) gfx.SurfaceCapabilities {
	return gfx.SurfaceCapabilities{
		MinImageCount:    uint32(caps.MinImageCount),
		MaxImageCount:    uint32(caps.MaxImageCount),
		CurrentExtent:    extent(caps.CurrentExtent),
		MinImageExtent:   extent(caps.MinImageExtent),
		MaxImageExtent:   extent(caps.MaxImageExtent),
		CurrentTransform: gfx.SurfaceTransform(caps.CurrentTransform),
	}
}

func (d *Driver) SurfaceCapabilities(physical, surf gfx.Handle) (gfx.SurfaceCapabilities, error) {
	pd, s, err := d.surfaceQuery(physical, surf)
	if err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	caps, _, err := s.instance.surfaceExt.GetPhysicalDeviceSurfaceCapabilities(s.obj, pd.obj)
	if err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	return surfaceCapabilities(caps), nil
}

func (d *Driver) SurfaceFormats(physical, surf gfx.Handle) ([]gfx.SurfaceFormat, error) {
	pd, s, err := d.surfaceQuery(physical, surf)
	if err != nil {
		return nil, err
	}
	formats, _, err := s.instance.surfaceExt.GetPhysicalDeviceSurfaceFormats(s.obj, pd.obj)
	if err != nil {
		return nil, err
	}
	var out []gfx.SurfaceFormat
	for _, f := range formats {
		out = append(out, gfx.SurfaceFormat{
			Format:     gfx.Format(f.Format),
			ColorSpace: gfx.ColorSpace(f.ColorSpace),
		})
	}
	return out, nil
}

func (d *Driver) SurfacePresentModes(physical, surf gfx.Handle) ([]gfx.PresentMode, error) {
	pd, s, err := d.surfaceQuery(physical, surf)
	if err != nil {
		return nil, err
	}
	modes, _, err := s.instance.surfaceExt.GetPhysicalDeviceSurfacePresentModes(s.obj, pd.obj)
	if err != nil {
		return nil, err
	}
	var out []gfx.PresentMode
	for _, m := range modes {
		out = append(out, gfx.PresentMode(m))
	}
	return out, nil
}

func deviceOptions(info gfx.DeviceInfo) core1_0.DeviceCreateInfo {
	options := core1_0.DeviceCreateInfo{
		EnabledFeatures: &core1_0.PhysicalDeviceFeatures{
			GeometryShader: info.Features.GeometryShader,
		},
		EnabledExtensionNames: info.Extensions,
	}
	for _, q := range info.Queues {
		options.QueueCreateInfos = append(options.QueueCreateInfos, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: int(q.Family),
			QueuePriorities:  q.Priorities,
		})
	}
	return options
}

func (d *Driver) CreateDevice(physical gfx.Handle, info gfx.DeviceInfo) (gfx.Handle, error) {
	pd, err := d.physical.get(physical)
	if err != nil {
		return gfx.Handle{}, err
	}
	deviceDriver, _, err := pd.instance.driver.CreateDevice(pd.obj, nil, deviceOptions(info))
	if err != nil {
		return gfx.Handle{}, err
	}
	h := d.devices.add(&device{
		driver:     deviceDriver,
		extensions: append([]string(nil), info.Extensions...),
	})
	d.log.WithField("handle", h).Trace("vkCreateDevice")
	return h, nil
}

func (d *Driver) DestroyDevice(h gfx.Handle) {
	dev, ok := d.devices.remove(h)
	if !ok {
		return
	}
	for key, q := range d.queueIDs {
		if key.device == h {
			d.queues.remove(q)
			delete(d.queueIDs, key)
		}
	}
	dev.driver.DestroyDevice(nil)
	d.log.WithField("handle", h).Trace("vkDestroyDevice")
}

func (d *Driver) Queue(h gfx.Handle, family, index uint32) gfx.Handle {
	key := queueKey{device: h, family: family, index: index}
	if q, ok := d.queueIDs[key]; ok {
		return q
	}
	dev, err := d.devices.get(h)
	if err != nil {
		return gfx.Handle{}
	}
	q := d.queues.add(dev.driver.GetQueue(int(family), int(index)))
	d.queueIDs[key] = q
	return q
}

func (d *Driver) device(h gfx.Handle) (*device, error) {
	dev, err := d.devices.get(h)
	if err != nil {
		return nil, errors.Wrap(err, "device")
	}
	return dev, nil
}
