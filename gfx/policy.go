package gfx

const (
	swapchainExtension            = "VK_KHR_swapchain"
	portabilitySubsetExtension    = "VK_KHR_portability_subset"
	portabilityEnumerateExtension = "VK_KHR_portability_enumeration"
	debugUtilsExtension           = "VK_EXT_debug_utils"

	// DebugMessengerEntryPoint is the name the diagnostics channel is looked
	// up by.
	DebugMessengerEntryPoint = "vkCreateDebugUtilsMessengerEXT"
)

var (
	deviceExtensions = []string{swapchainExtension}
	validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
)

// Policy holds the fixed lists and switches the startup sequence runs with.
type Policy struct {
	ApplicationName string
	EngineName      string

	// DeviceExtensions must all be present on the selected device.
	DeviceExtensions []string
	// ValidationLayers are enabled, and must be available, when Debug is set.
	ValidationLayers []string
	// Debug enables validation layers and the diagnostics channel.
	Debug bool
}

// DefaultPolicy returns the policy for this build. Debug is on unless the
// binary is built with the release tag.
func DefaultPolicy() Policy {
	return Policy{
		ApplicationName:  "Vulkan",
		EngineName:       "No Engine",
		DeviceExtensions: append([]string(nil), deviceExtensions...),
		ValidationLayers: append([]string(nil), validationLayers...),
		Debug:            debugBuild,
	}
}
