package gfx

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/vkngwrapper/presentctx/internal/handle"
)

// QueueFamilyRoles maps the graphics and present roles to queue family
// indices. Both roles may name the same family.
type QueueFamilyRoles struct {
	Graphics *uint32
	Present  *uint32
}

// Resolved reports whether both roles have a family.
func (r QueueFamilyRoles) Resolved() bool {
	return r.Graphics != nil && r.Present != nil
}

// Shared reports whether both roles resolved to one family.
func (r QueueFamilyRoles) Shared() bool {
	return r.Resolved() && *r.Graphics == *r.Present
}

// Families returns the distinct resolved families, graphics first.
func (r QueueFamilyRoles) Families() []uint32 {
	var families []uint32
	if r.Graphics != nil {
		families = append(families, *r.Graphics)
	}
	if r.Present != nil && (r.Graphics == nil || *r.Present != *r.Graphics) {
		families = append(families, *r.Present)
	}
	return families
}

func (r QueueFamilyRoles) String() string {
	role := func(i *uint32) string {
		if i == nil {
			return "none"
		}
		return fmt.Sprint(*i)
	}
	return fmt.Sprintf("graphics=%s present=%s", role(r.Graphics), role(r.Present))
}

// ResolveQueueFamilies walks the device's queue families in index order and
// gives each role to the first family able to fill it, stopping once both
// roles are taken.
func ResolveQueueFamilies(d Driver, physicalDevice, surface Handle) (QueueFamilyRoles, error) {
	var roles QueueFamilyRoles

	families, err := d.QueueFamilies(physicalDevice)
	if err != nil {
		return roles, errors.Wrapf(err, "query queue families of %s", physicalDevice)
	}

	for i, family := range families {
		index := uint32(i)
		if roles.Graphics == nil && family.Flags&QueueGraphics != 0 {
			roles.Graphics = &index
		}
		if roles.Present == nil {
			supported, err := d.SurfaceSupport(physicalDevice, index, surface)
			if err != nil {
				return roles, errors.Wrapf(err, "query present support of %s family %d", physicalDevice, index)
			}
			if supported {
				roles.Present = &index
			}
		}
		if roles.Resolved() {
			break
		}
	}

	return roles, nil
}

// DeviceCandidate is a physical device together with everything queried to
// judge it. The device itself belongs to the instance.
type DeviceCandidate struct {
	Handle     Handle
	Properties DeviceProperties
	Features   DeviceFeatures
	Extensions []string
	Roles      QueueFamilyRoles
	// Support is only queried when the required extensions are present.
	Support *SwapchainSupport
}

func missingExtensions(available, required []string) []string {
	var missing []string
	for _, ext := range required {
		if !slices.Contains(available, ext) {
			missing = append(missing, ext)
		}
	}
	return missing
}

// EvaluateDevice queries a physical device and checks it against the
// suitability requirements. The returned reason is empty when the device is
// suitable, otherwise it names the first requirement that failed.
func EvaluateDevice(d Driver, physicalDevice, surface Handle, requiredExtensions []string) (*DeviceCandidate, string, error) {
	cand := &DeviceCandidate{Handle: physicalDevice}

	var err error
	cand.Properties, err = d.DeviceProperties(physicalDevice)
	if err != nil {
		return nil, "", errors.Wrapf(err, "query properties of %s", physicalDevice)
	}
	cand.Features, err = d.DeviceFeatures(physicalDevice)
	if err != nil {
		return nil, "", errors.Wrapf(err, "query features of %s", physicalDevice)
	}
	cand.Extensions, err = d.DeviceExtensions(physicalDevice)
	if err != nil {
		return nil, "", errors.Wrapf(err, "query extensions of %s", physicalDevice)
	}
	cand.Roles, err = ResolveQueueFamilies(d, physicalDevice, surface)
	if err != nil {
		return nil, "", err
	}

	missing := missingExtensions(cand.Extensions, requiredExtensions)
	if len(missing) == 0 {
		support, err := QuerySwapchainSupport(d, physicalDevice, surface)
		if err != nil {
			return nil, "", err
		}
		cand.Support = &support
	}

	switch {
	case cand.Properties.Type != DeviceTypeDiscreteGPU:
		return cand, fmt.Sprintf("device type is %s, not discrete", cand.Properties.Type), nil
	case !cand.Features.GeometryShader:
		return cand, "no geometry shader support", nil
	case !cand.Roles.Resolved():
		return cand, fmt.Sprintf("queue families unresolved (%s)", cand.Roles), nil
	case len(missing) > 0:
		return cand, "missing extensions " + strings.Join(missing, ", "), nil
	case !cand.Support.Adequate():
		return cand, "no surface formats or present modes", nil
	}
	return cand, "", nil
}

// SelectDevice returns the first enumerated device that passes every
// suitability requirement. Enumeration order is whatever the driver reports.
func SelectDevice(d Driver, instance, surface Handle, p Policy, log logrus.FieldLogger) (*DeviceCandidate, error) {
	if log == nil {
		log = discardLogger()
	}

	devices, err := d.EnumeratePhysicalDevices(instance)
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}

	var rejections []Rejection
	for _, device := range devices {
		cand, reason, err := EvaluateDevice(d, device, surface, p.DeviceExtensions)
		if err != nil {
			return nil, err
		}

		entry := log.WithFields(logrus.Fields{
			"name":           cand.Properties.Name,
			"type":           cand.Properties.Type.String(),
			"device id":      cand.Properties.DeviceID,
			"driver version": cand.Properties.DriverVersion,
		})
		if reason != "" {
			entry.WithField("reason", reason).Debug("Physical device rejected")
			rejections = append(rejections, Rejection{Device: cand.Properties.Name, Reason: reason})
			continue
		}

		entry.Info("Physical device selected")
		return cand, nil
	}

	return nil, &NoSuitableDeviceError{Rejections: rejections}
}

func (c *Context) pickPhysicalDevice() error {
	cand, err := SelectDevice(c.driver, c.Instance, c.Surface, c.Policy, c.log)
	if err != nil {
		return err
	}
	if err := c.registry.Borrow(cand.Handle, c.Instance); err != nil {
		return err
	}
	c.PhysicalDevice = cand
	return nil
}

// LogicalDevice is the device created on the selected physical device with
// one queue per role. The queues belong to the device.
type LogicalDevice struct {
	Handle        Handle
	GraphicsQueue Handle
	PresentQueue  Handle
}

func (c *Context) createLogicalDevice() error {
	cand := c.PhysicalDevice
	if cand == nil || !cand.Roles.Resolved() {
		return createFailed(handle.Device, ErrQueueFamiliesUnresolved)
	}

	info := DeviceInfo{
		Extensions: append([]string(nil), c.Policy.DeviceExtensions...),
	}
	for _, family := range cand.Roles.Families() {
		info.Queues = append(info.Queues, QueueInfo{
			Family:     family,
			Priorities: []float32{1.0},
		})
	}
	if slices.Contains(cand.Extensions, portabilitySubsetExtension) {
		info.Extensions = append(info.Extensions, portabilitySubsetExtension)
	}

	device, err := c.driver.CreateDevice(cand.Handle, info)
	if err != nil {
		return createFailed(handle.Device, err)
	}
	if err := c.own(device, Handle{}, func() {
		c.driver.DestroyDevice(device)
	}); err != nil {
		return err
	}
	if err := c.registry.Reference(device, cand.Handle); err != nil {
		return err
	}

	c.Device = LogicalDevice{
		Handle:        device,
		GraphicsQueue: c.driver.Queue(device, *cand.Roles.Graphics, 0),
		PresentQueue:  c.driver.Queue(device, *cand.Roles.Present, 0),
	}
	for _, q := range []Handle{c.Device.GraphicsQueue, c.Device.PresentQueue} {
		if c.registry.Live(q) {
			continue
		}
		if err := c.registry.Borrow(q, device); err != nil {
			return err
		}
	}

	c.log.WithFields(logrus.Fields{
		"queues":     cand.Roles.String(),
		"extensions": info.Extensions,
	}).Debug("Logical device created")
	return nil
}
