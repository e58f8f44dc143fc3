package gfx

// Driver is the graphics API seen by the startup sequence. Every object it
// creates comes back as an opaque Handle; the caller decides who owns it.
// Implementations are not expected to be safe for concurrent use.
type Driver interface {
	AvailableLayers() ([]string, error)
	AvailableInstanceExtensions() ([]string, error)
	CreateInstance(info InstanceInfo) (Handle, error)
	DestroyInstance(instance Handle)

	// LookupDebugMessenger resolves the named diagnostics entry point on an
	// instance. A false result means the entry point is unavailable.
	LookupDebugMessenger(instance Handle, name string) (DebugMessenger, bool)

	CreateSurface(instance Handle, w Window) (Handle, error)
	DestroySurface(instance, surface Handle)

	EnumeratePhysicalDevices(instance Handle) ([]Handle, error)
	DeviceProperties(physicalDevice Handle) (DeviceProperties, error)
	DeviceFeatures(physicalDevice Handle) (DeviceFeatures, error)
	DeviceExtensions(physicalDevice Handle) ([]string, error)
	QueueFamilies(physicalDevice Handle) ([]QueueFamilyProperties, error)
	SurfaceSupport(physicalDevice Handle, family uint32, surface Handle) (bool, error)
	SurfaceCapabilities(physicalDevice, surface Handle) (SurfaceCapabilities, error)
	SurfaceFormats(physicalDevice, surface Handle) ([]SurfaceFormat, error)
	SurfacePresentModes(physicalDevice, surface Handle) ([]PresentMode, error)

	CreateDevice(physicalDevice Handle, info DeviceInfo) (Handle, error)
	DestroyDevice(device Handle)
	Queue(device Handle, family, index uint32) Handle

	CreateSwapchain(device Handle, info SwapchainInfo) (Handle, error)
	DestroySwapchain(device, swapchain Handle)
	SwapchainImages(device, swapchain Handle) ([]Handle, error)
	CreateImageView(device Handle, info ImageViewInfo) (Handle, error)
	DestroyImageView(device, view Handle)

	CreateRenderPass(device Handle, desc RenderPassDescription) (Handle, error)
	DestroyRenderPass(device, renderPass Handle)
	CreateShaderModule(device Handle, code []byte) (Handle, error)
	DestroyShaderModule(device, module Handle)
	CreatePipelineLayout(device Handle, info PipelineLayoutInfo) (Handle, error)
	DestroyPipelineLayout(device, layout Handle)
	CreateGraphicsPipeline(device Handle, info GraphicsPipelineInfo) (Handle, error)
	DestroyPipeline(device, pipeline Handle)
}

// DebugMessenger is the optional diagnostics entry point pair.
type DebugMessenger interface {
	Create(info DebugMessengerInfo) (Handle, error)
	Destroy(messenger Handle)
}

// Window is the windowing collaborator.
type Window interface {
	// NativeHandle returns the toolkit window the driver binds a surface to.
	NativeHandle() any
	// FramebufferSize returns the drawable size in pixels.
	FramebufferSize() (width, height int)
	// InstanceExtensions lists the instance extensions the window needs.
	InstanceExtensions() []string
}

// ShaderSource loads pre-compiled shader bytecode by name.
type ShaderSource interface {
	Load(name string) ([]byte, error)
}

// DebugCallback receives diagnostics messages. Returning true asks the driver
// to abort the call that triggered the message.
type DebugCallback func(severity DebugSeverity, types DebugMessageType, message string) bool

type DebugMessengerInfo struct {
	Severities DebugSeverity
	Types      DebugMessageType
	Callback   DebugCallback
}

type InstanceInfo struct {
	ApplicationName string
	EngineName      string
	Extensions      []string
	Layers          []string

	// EnumeratePortability includes portability (non-conformant) devices.
	EnumeratePortability bool

	// Diagnostics, when set, is chained into instance creation so messages
	// emitted while the instance is created and destroyed are captured too.
	Diagnostics *DebugMessengerInfo
}

type QueueInfo struct {
	Family     uint32
	Priorities []float32
}

type DeviceInfo struct {
	Queues     []QueueInfo
	Extensions []string
	Features   DeviceFeatures
}

type SwapchainInfo struct {
	Surface        Handle
	Config         SwapchainConfig
	ArrayLayers    uint32
	Usage          ImageUsage
	CompositeAlpha CompositeAlpha
	Clipped        bool
}

type ImageViewInfo struct {
	Image      Handle
	ViewType   ImageViewType
	Format     Format
	Components ComponentMapping
	Range      SubresourceRange
}

type PushConstantRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

type PipelineLayoutInfo struct {
	SetLayouts         []Handle
	PushConstantRanges []PushConstantRange
}

type PipelineShaderStage struct {
	Stage  ShaderStage
	Module Handle
	Entry  string
}

type GraphicsPipelineInfo struct {
	Stages            []PipelineShaderStage
	State             PipelineDescription
	Layout            Handle
	RenderPass        Handle
	Subpass           uint32
	BasePipelineIndex int
}
