// Package vkdriver implements gfx.Driver on top of vkngwrapper and SDL2.
package vkdriver

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/vkngwrapper/presentctx/gfx"
	"github.com/vkngwrapper/presentctx/internal/handle"
)

type instance struct {
	driver     core1_0.CoreInstanceDriver
	extensions []string
	surfaceExt khr_surface.ExtensionDriver
	physical   []gfx.Handle
}

type messenger struct {
	ext      ext_debug_utils.ExtensionDriver
	instance gfx.Handle
	obj      ext_debug_utils.DebugUtilsMessenger
}

type surface struct {
	instance *instance
	obj      khr_surface.Surface
}

type physicalDevice struct {
	instance *instance
	obj      core1_0.PhysicalDevice
}

type queueKey struct {
	device        gfx.Handle
	family, index uint32
}

// Driver drives a real Vulkan implementation. It is not safe for concurrent
// use and, like SDL, expects to be called from the main OS thread.
type Driver struct {
	global core1_0.GlobalDriver
	log    logrus.FieldLogger

	ids          uint64
	instances    *table[*instance]
	messengers   *table[*messenger]
	surfaces     *table[*surface]
	physical     *table[*physicalDevice]
	devices      *table[*device]
	queues       *table[core1_0.Queue]
	queueIDs     map[queueKey]gfx.Handle
	swapchains   *table[*swapchain]
	images       *table[core1_0.Image]
	views        *table[imageView]
	renderPasses *table[core1_0.RenderPass]
	modules      *table[core1_0.ShaderModule]
	layouts      *table[core1_0.PipelineLayout]
	pipelines    *table[core1_0.Pipeline]
}

var _ gfx.Driver = (*Driver)(nil)

// New loads the Vulkan loader through SDL. The SDL Vulkan library must already
// be loaded.
func New(log logrus.FieldLogger) (*Driver, error) {
	global, err := core.CreateDriverFromProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan driver")
	}
	return newDriver(global, log), nil
}

func newDriver(global core1_0.GlobalDriver, log logrus.FieldLogger) *Driver {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	d := &Driver{
		global:   global,
		log:      log,
		queueIDs: map[queueKey]gfx.Handle{},
	}
	d.instances = newTable[*instance](handle.Instance, &d.ids)
	d.messengers = newTable[*messenger](handle.DebugMessenger, &d.ids)
	d.surfaces = newTable[*surface](handle.Surface, &d.ids)
	d.physical = newTable[*physicalDevice](handle.PhysicalDevice, &d.ids)
	d.devices = newTable[*device](handle.Device, &d.ids)
	d.queues = newTable[core1_0.Queue](handle.Queue, &d.ids)
	d.swapchains = newTable[*swapchain](handle.Swapchain, &d.ids)
	d.images = newTable[core1_0.Image](handle.Image, &d.ids)
	d.views = newTable[imageView](handle.ImageView, &d.ids)
	d.renderPasses = newTable[core1_0.RenderPass](handle.RenderPass, &d.ids)
	d.modules = newTable[core1_0.ShaderModule](handle.ShaderModule, &d.ids)
	d.layouts = newTable[core1_0.PipelineLayout](handle.PipelineLayout, &d.ids)
	d.pipelines = newTable[core1_0.Pipeline](handle.Pipeline, &d.ids)
	return d
}

// Live returns the number of objects the driver still holds.
func (d *Driver) Live() int {
	return d.instances.len() + d.messengers.len() + d.surfaces.len() +
		d.devices.len() + d.swapchains.len() + d.views.len() + d.renderPasses.len() +
		d.modules.len() + d.layouts.len() + d.pipelines.len()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func (d *Driver) AvailableLayers() ([]string, error) {
	layers, _, err := d.global.AvailableLayers()
	if err != nil {
		return nil, err
	}
	return sortedKeys(layers), nil
}

func (d *Driver) AvailableInstanceExtensions() ([]string, error) {
	extensions, _, err := d.global.AvailableExtensions()
	if err != nil {
		return nil, err
	}
	return sortedKeys(extensions), nil
}

func debugMessengerOptions(info gfx.DebugMessengerInfo) ext_debug_utils.DebugUtilsMessengerCreateInfo {
	callback := info.Callback
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.DebugUtilsMessageSeverityFlags(info.Severities),
		MessageType:     ext_debug_utils.DebugUtilsMessageTypeFlags(info.Types),
		UserCallback: func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			if callback == nil {
				return false
			}
			var message string
			if data != nil {
				message = data.Message
			}
			return callback(gfx.DebugSeverity(severity), gfx.DebugMessageType(msgType), message)
		},
	}
}

func instanceOptions(info gfx.InstanceInfo) core1_0.InstanceCreateInfo {
	options := core1_0.InstanceCreateInfo{
		ApplicationName:       info.ApplicationName,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            info.EngineName,
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: info.Extensions,
		EnabledLayerNames:     info.Layers,
	}
	if info.EnumeratePortability {
		options.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}
	if info.Diagnostics != nil {
		options.Next = debugMessengerOptions(*info.Diagnostics)
	}
	return options
}

func (d *Driver) CreateInstance(info gfx.InstanceInfo) (gfx.Handle, error) {
	instanceDriver, _, err := d.global.CreateInstance(nil, instanceOptions(info))
	if err != nil {
		return gfx.Handle{}, err
	}

	h := d.instances.add(&instance{
		driver:     instanceDriver,
		extensions: append([]string(nil), info.Extensions...),
	})
	d.log.WithField("handle", h).Trace("vkCreateInstance")
	return h, nil
}

func (d *Driver) DestroyInstance(h gfx.Handle) {
	inst, ok := d.instances.remove(h)
	if !ok {
		return
	}
	for _, pd := range inst.physical {
		d.physical.remove(pd)
	}
	inst.driver.DestroyInstance(nil)
	d.log.WithField("handle", h).Trace("vkDestroyInstance")
}

type debugMessenger struct {
	d        *Driver
	ext      ext_debug_utils.ExtensionDriver
	instance gfx.Handle
}

func (m *debugMessenger) Create(info gfx.DebugMessengerInfo) (gfx.Handle, error) {
	obj, _, err := m.ext.CreateDebugUtilsMessenger(nil, debugMessengerOptions(info))
	if err != nil {
		return gfx.Handle{}, err
	}
	return m.d.messengers.add(&messenger{ext: m.ext, instance: m.instance, obj: obj}), nil
}

func (m *debugMessenger) Destroy(h gfx.Handle) {
	msg, ok := m.d.messengers.remove(h)
	if !ok {
		return
	}
	msg.ext.DestroyDebugUtilsMessenger(msg.obj, nil)
}

// LookupDebugMessenger resolves the debug utils entry points. They are only
// loaded when the instance was created with the debug utils extension.
func (d *Driver) LookupDebugMessenger(h gfx.Handle, name string) (gfx.DebugMessenger, bool) {
	if name != gfx.DebugMessengerEntryPoint {
		return nil, false
	}
	inst, err := d.instances.get(h)
	if err != nil || !slices.Contains(inst.extensions, ext_debug_utils.ExtensionName) {
		return nil, false
	}
	ext := ext_debug_utils.CreateExtensionDriverFromCoreDriver(inst.driver)
	if ext == nil {
		return nil, false
	}
	return &debugMessenger{d: d, ext: ext, instance: h}, true
}

func (d *Driver) CreateSurface(h gfx.Handle, w gfx.Window) (gfx.Handle, error) {
	inst, err := d.instances.get(h)
	if err != nil {
		return gfx.Handle{}, err
	}
	window, ok := w.NativeHandle().(*sdl.Window)
	if !ok {
		return gfx.Handle{}, errors.Newf("window handle %T is not an SDL window", w.NativeHandle())
	}

	if inst.surfaceExt == nil {
		if !slices.Contains(inst.extensions, khr_surface.ExtensionName) {
			return gfx.Handle{}, errors.Newf("%s is not enabled", khr_surface.ExtensionName)
		}
		inst.surfaceExt = khr_surface.CreateExtensionDriverFromCoreDriver(inst.driver)
		if inst.surfaceExt == nil {
			return gfx.Handle{}, errors.Newf("%s is not enabled", khr_surface.ExtensionName)
		}
	}

	obj, err := vkng_sdl2.CreateSurface(inst.driver.Instance(), inst.surfaceExt, window)
	if err != nil {
		return gfx.Handle{}, err
	}
	return d.surfaces.add(&surface{instance: inst, obj: obj}), nil
}

func (d *Driver) DestroySurface(instance, h gfx.Handle) {
	s, ok := d.surfaces.remove(h)
	if !ok {
		return
	}
	s.instance.surfaceExt.DestroySurface(s.obj, nil)
}
