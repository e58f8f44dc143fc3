// Package gfxtest provides an in-memory gfx.Driver that records every object
// it creates and destroys.
package gfxtest

import (
	"fmt"
	"io/fs"

	"github.com/cockroachdb/errors"

	"github.com/vkngwrapper/presentctx/gfx"
	"github.com/vkngwrapper/presentctx/internal/handle"
)

// PhysicalDevice describes one fake GPU and what its surface reports.
type PhysicalDevice struct {
	Properties      gfx.DeviceProperties
	Features        gfx.DeviceFeatures
	Extensions      []string
	QueueFamilies   []gfx.QueueFamilyProperties
	PresentFamilies []uint32

	Capabilities gfx.SurfaceCapabilities
	Formats      []gfx.SurfaceFormat
	PresentModes []gfx.PresentMode

	// SwapchainImages overrides the number of images a swapchain hands out.
	// Zero means the requested count.
	SwapchainImages int
}

// SuitableDevice returns a discrete GPU with one graphics and present family
// that passes every selection requirement.
func SuitableDevice(name string) PhysicalDevice {
	return PhysicalDevice{
		Properties: gfx.DeviceProperties{
			Name:          name,
			Type:          gfx.DeviceTypeDiscreteGPU,
			VendorID:      0x10de,
			DeviceID:      0x2204,
			DriverVersion: 1,
		},
		Features:        gfx.DeviceFeatures{GeometryShader: true},
		Extensions:      []string{"VK_KHR_swapchain"},
		QueueFamilies:   []gfx.QueueFamilyProperties{{Flags: gfx.QueueGraphics | gfx.QueueCompute | gfx.QueueTransfer}},
		PresentFamilies: []uint32{0},
		Capabilities: gfx.SurfaceCapabilities{
			MinImageCount:    2,
			CurrentExtent:    gfx.Extent2D{Width: 800, Height: 600},
			MinImageExtent:   gfx.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   gfx.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: gfx.SurfaceTransformIdentity,
		},
		Formats: []gfx.SurfaceFormat{
			{Format: gfx.FormatB8G8R8A8SRGB, ColorSpace: gfx.ColorSpaceSRGBNonlinear},
		},
		PresentModes: []gfx.PresentMode{gfx.PresentModeFIFO, gfx.PresentModeMailbox},
	}
}

type Op string

const (
	Create  Op = "create"
	Destroy Op = "destroy"
)

// Call is one recorded create or destroy.
type Call struct {
	Op     Op
	Handle gfx.Handle
}

func (c Call) String() string {
	return fmt.Sprintf("%s %s", c.Op, c.Handle)
}

type failure struct {
	kind gfx.Kind
	nth  int
	err  error
}

type queueKey struct {
	device        gfx.Handle
	family, index uint32
}

// Driver is a gfx.Driver backed by plain maps. The zero value is not usable;
// call NewDriver.
type Driver struct {
	Layers             []string
	InstanceExtensions []string
	// NoDebugMessenger makes the diagnostics entry point lookup fail.
	NoDebugMessenger bool
	// QueryErr, when set, is returned by every physical device query.
	QueryErr error

	// Most recent creation arguments.
	InstanceInfo  gfx.InstanceInfo
	MessengerInfo *gfx.DebugMessengerInfo
	DeviceInfo    gfx.DeviceInfo
	SwapchainInfo gfx.SwapchainInfo
	ViewInfos     []gfx.ImageViewInfo
	RenderPass    gfx.RenderPassDescription
	ShaderCode    [][]byte
	PipelineInfo  gfx.GraphicsPipelineInfo

	Calls []Call
	// Violations lists destroys of unknown or already destroyed handles and
	// parents destroyed before their children.
	Violations []string

	next     uint64
	devices  []gfx.Handle
	physical map[gfx.Handle]*PhysicalDevice
	live     map[gfx.Handle]bool
	parent   map[gfx.Handle]gfx.Handle
	queues   map[queueKey]gfx.Handle
	images   map[gfx.Handle][]gfx.Handle
	created  map[gfx.Kind]int
	failures []failure
}

var _ gfx.Driver = (*Driver)(nil)

func NewDriver(devices ...PhysicalDevice) *Driver {
	d := &Driver{
		Layers:             []string{"VK_LAYER_KHRONOS_validation"},
		InstanceExtensions: []string{"VK_KHR_surface", "VK_EXT_debug_utils"},
		physical:           map[gfx.Handle]*PhysicalDevice{},
		live:               map[gfx.Handle]bool{},
		parent:             map[gfx.Handle]gfx.Handle{},
		queues:             map[queueKey]gfx.Handle{},
		images:             map[gfx.Handle][]gfx.Handle{},
		created:            map[gfx.Kind]int{},
	}
	for i := range devices {
		pd := devices[i]
		h := d.alloc(handle.PhysicalDevice)
		d.devices = append(d.devices, h)
		d.physical[h] = &pd
	}
	return d
}

// Device returns the handle of the i-th device passed to NewDriver.
func (d *Driver) Device(i int) gfx.Handle {
	return d.devices[i]
}

// Fail makes the nth creation of kind fail with err, counting from one. A
// zero nth fails every creation of kind.
func (d *Driver) Fail(kind gfx.Kind, nth int, err error) {
	d.failures = append(d.failures, failure{kind: kind, nth: nth, err: err})
}

// Created returns the created handles in order.
func (d *Driver) Created() []gfx.Handle {
	return d.filter(Create)
}

// Destroyed returns the destroyed handles in order.
func (d *Driver) Destroyed() []gfx.Handle {
	return d.filter(Destroy)
}

// Leaked returns the created handles that were never destroyed.
func (d *Driver) Leaked() []gfx.Handle {
	var leaked []gfx.Handle
	for _, h := range d.Created() {
		if d.live[h] {
			leaked = append(leaked, h)
		}
	}
	return leaked
}

func (d *Driver) filter(op Op) []gfx.Handle {
	var hs []gfx.Handle
	for _, c := range d.Calls {
		if c.Op == op {
			hs = append(hs, c.Handle)
		}
	}
	return hs
}

func (d *Driver) alloc(kind gfx.Kind) gfx.Handle {
	d.next++
	return gfx.Handle{Kind: kind, ID: d.next}
}

func (d *Driver) create(kind gfx.Kind, parent gfx.Handle) (gfx.Handle, error) {
	if !parent.Null() && !d.live[parent] && d.physical[parent] == nil {
		return gfx.Handle{}, errors.Newf("create %s: parent %s is not live", kind, parent)
	}

	d.created[kind]++
	for _, f := range d.failures {
		if f.kind == kind && (f.nth == 0 || f.nth == d.created[kind]) {
			return gfx.Handle{}, f.err
		}
	}

	h := d.alloc(kind)
	d.live[h] = true
	if !parent.Null() {
		d.parent[h] = parent
	}
	d.Calls = append(d.Calls, Call{Op: Create, Handle: h})
	return h, nil
}

func (d *Driver) destroy(h gfx.Handle) {
	if !d.live[h] {
		d.Violations = append(d.Violations, fmt.Sprintf("destroy of dead handle %s", h))
		return
	}
	for child, p := range d.parent {
		if p == h && d.live[child] {
			d.Violations = append(d.Violations, fmt.Sprintf("%s destroyed before child %s", h, child))
		}
	}
	delete(d.live, h)
	d.Calls = append(d.Calls, Call{Op: Destroy, Handle: h})
}

func (d *Driver) device(h gfx.Handle) (*PhysicalDevice, error) {
	if d.QueryErr != nil {
		return nil, d.QueryErr
	}
	pd, ok := d.physical[h]
	if !ok {
		return nil, errors.Newf("unknown physical device %s", h)
	}
	return pd, nil
}

func (d *Driver) AvailableLayers() ([]string, error) {
	return d.Layers, nil
}

func (d *Driver) AvailableInstanceExtensions() ([]string, error) {
	return d.InstanceExtensions, nil
}

func (d *Driver) CreateInstance(info gfx.InstanceInfo) (gfx.Handle, error) {
	d.InstanceInfo = info
	return d.create(handle.Instance, gfx.Handle{})
}

func (d *Driver) DestroyInstance(instance gfx.Handle) {
	d.destroy(instance)
}

type messenger struct {
	d        *Driver
	instance gfx.Handle
}

func (m messenger) Create(info gfx.DebugMessengerInfo) (gfx.Handle, error) {
	m.d.MessengerInfo = &info
	return m.d.create(handle.DebugMessenger, m.instance)
}

func (m messenger) Destroy(h gfx.Handle) {
	m.d.destroy(h)
}

func (d *Driver) LookupDebugMessenger(instance gfx.Handle, name string) (gfx.DebugMessenger, bool) {
	if d.NoDebugMessenger || name != gfx.DebugMessengerEntryPoint {
		return nil, false
	}
	return messenger{d: d, instance: instance}, true
}

func (d *Driver) CreateSurface(instance gfx.Handle, w gfx.Window) (gfx.Handle, error) {
	return d.create(handle.Surface, instance)
}

func (d *Driver) DestroySurface(instance, surface gfx.Handle) {
	d.destroy(surface)
}

func (d *Driver) EnumeratePhysicalDevices(instance gfx.Handle) ([]gfx.Handle, error) {
	if !d.live[instance] {
		return nil, errors.Newf("enumerate: instance %s is not live", instance)
	}
	return append([]gfx.Handle(nil), d.devices...), nil
}

func (d *Driver) DeviceProperties(physicalDevice gfx.Handle) (gfx.DeviceProperties, error) {
	pd, err := d.device(physicalDevice)
	if err != nil {
		return gfx.DeviceProperties{}, err
	}
	return pd.Properties, nil
}

func (d *Driver) DeviceFeatures(physicalDevice gfx.Handle) (gfx.DeviceFeatures, error) {
	pd, err := d.device(physicalDevice)
	if err != nil {
		return gfx.DeviceFeatures{}, err
	}
	return pd.Features, nil
}

func (d *Driver) DeviceExtensions(physicalDevice gfx.Handle) ([]string, error) {
	pd, err := d.device(physicalDevice)
	if err != nil {
		return nil, err
	}
	return pd.Extensions, nil
}

func (d *Driver) QueueFamilies(physicalDevice gfx.Handle) ([]gfx.QueueFamilyProperties, error) {
	pd, err := d.device(physicalDevice)
	if err != nil {
		return nil, err
	}
	return pd.QueueFamilies, nil
}

func (d *Driver) SurfaceSupport(physicalDevice gfx.Handle, family uint32, surface gfx.Handle) (bool, error) {
	pd, err := d.device(physicalDevice)
	if err != nil {
		return false, err
	}
	for _, f := range pd.PresentFamilies {
		if f == family {
			return true, nil
		}
	}
	return false, nil
}

func (d *Driver) SurfaceCapabilities(physicalDevice, surface gfx.Handle) (gfx.SurfaceCapabilities, error) {
	pd, err := d.device(physicalDevice)
	if err != nil {
		return gfx.SurfaceCapabilities{}, err
	}
	return pd.Capabilities, nil
}

func (d *Driver) SurfaceFormats(physicalDevice, surface gfx.Handle) ([]gfx.SurfaceFormat, error) {
	pd, err := d.device(physicalDevice)
	if err != nil {
		return nil, err
	}
	return pd.Formats, nil
}

func (d *Driver) SurfacePresentModes(physicalDevice, surface gfx.Handle) ([]gfx.PresentMode, error) {
	pd, err := d.device(physicalDevice)
	if err != nil {
		return nil, err
	}
	return pd.PresentModes, nil
}

func (d *Driver) CreateDevice(physicalDevice gfx.Handle, info gfx.DeviceInfo) (gfx.Handle, error) {
	d.DeviceInfo = info
	return d.create(handle.Device, physicalDevice)
}

func (d *Driver) DestroyDevice(device gfx.Handle) {
	d.destroy(device)
}

func (d *Driver) Queue(device gfx.Handle, family, index uint32) gfx.Handle {
	key := queueKey{device: device, family: family, index: index}
	q, ok := d.queues[key]
	if !ok {
		q = d.alloc(handle.Queue)
		d.queues[key] = q
	}
	return q
}

func (d *Driver) CreateSwapchain(device gfx.Handle, info gfx.SwapchainInfo) (gfx.Handle, error) {
	d.SwapchainInfo = info
	if !d.live[info.Surface] {
		return gfx.Handle{}, errors.Newf("create swapchain: surface %s is not live", info.Surface)
	}
	sc, err := d.create(handle.Swapchain, device)
	if err != nil {
		return sc, err
	}

	count := int(info.Config.ImageCount)
	if pd := d.physical[d.parent[device]]; pd != nil && pd.SwapchainImages > 0 {
		count = pd.SwapchainImages
	}
	for i := 0; i < count; i++ {
		d.images[sc] = append(d.images[sc], d.alloc(handle.Image))
	}
	return sc, nil
}

func (d *Driver) DestroySwapchain(device, swapchain gfx.Handle) {
	d.destroy(swapchain)
}

func (d *Driver) SwapchainImages(device, swapchain gfx.Handle) ([]gfx.Handle, error) {
	if !d.live[swapchain] {
		return nil, errors.Newf("swapchain %s is not live", swapchain)
	}
	return append([]gfx.Handle(nil), d.images[swapchain]...), nil
}

func (d *Driver) CreateImageView(device gfx.Handle, info gfx.ImageViewInfo) (gfx.Handle, error) {
	d.ViewInfos = append(d.ViewInfos, info)
	return d.create(handle.ImageView, device)
}

func (d *Driver) DestroyImageView(device, view gfx.Handle) {
	d.destroy(view)
}

func (d *Driver) CreateRenderPass(device gfx.Handle, desc gfx.RenderPassDescription) (gfx.Handle, error) {
	d.RenderPass = desc
	return d.create(handle.RenderPass, device)
}

func (d *Driver) DestroyRenderPass(device, renderPass gfx.Handle) {
	d.destroy(renderPass)
}

func (d *Driver) CreateShaderModule(device gfx.Handle, code []byte) (gfx.Handle, error) {
	d.ShaderCode = append(d.ShaderCode, code)
	return d.create(handle.ShaderModule, device)
}

func (d *Driver) DestroyShaderModule(device, module gfx.Handle) {
	d.destroy(module)
}

func (d *Driver) CreatePipelineLayout(device gfx.Handle, info gfx.PipelineLayoutInfo) (gfx.Handle, error) {
	return d.create(handle.PipelineLayout, device)
}

func (d *Driver) DestroyPipelineLayout(device, layout gfx.Handle) {
	d.destroy(layout)
}

func (d *Driver) CreateGraphicsPipeline(device gfx.Handle, info gfx.GraphicsPipelineInfo) (gfx.Handle, error) {
	d.PipelineInfo = info
	for _, s := range info.Stages {
		if !d.live[s.Module] {
			return gfx.Handle{}, errors.Newf("create pipeline: %s module %s is not live", s.Stage, s.Module)
		}
	}
	return d.create(handle.Pipeline, device)
}

func (d *Driver) DestroyPipeline(device, pipeline gfx.Handle) {
	d.destroy(pipeline)
}

// Window is a fixed-size window that needs only the surface extension.
type Window struct {
	Width, Height int
	Extensions    []string
}

func NewWindow(width, height int) *Window {
	return &Window{
		Width:      width,
		Height:     height,
		Extensions: []string{"VK_KHR_surface"},
	}
}

func (w *Window) NativeHandle() any {
	return w
}

func (w *Window) FramebufferSize() (int, int) {
	return w.Width, w.Height
}

func (w *Window) InstanceExtensions() []string {
	return w.Extensions
}

// Shaders serves shader bytecode from memory.
type Shaders map[string][]byte

// DefaultShaders holds placeholder bytecode under the default names.
func DefaultShaders() Shaders {
	return Shaders{
		gfx.DefaultVertexShader:   {0x03, 0x02, 0x23, 0x07, 0x01},
		gfx.DefaultFragmentShader: {0x03, 0x02, 0x23, 0x07, 0x02},
	}
}

func (s Shaders) Load(name string) ([]byte, error) {
	code, ok := s[name]
	if !ok {
		return nil, &gfx.FileAccessError{Path: name, Err: fs.ErrNotExist}
	}
	return code, nil
}
