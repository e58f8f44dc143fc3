// Package gfx brings up a presentation context for a single window surface:
// instance, surface, physical and logical device, swapchain with its image
// views, render pass and one graphics pipeline.
//
// Enumerations carry the numeric values of their Vulkan counterparts so a
// driver backend can convert them directly.
package gfx

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/vkngwrapper/presentctx/internal/handle"
)

// Handle is an opaque reference to a driver object.
type Handle = handle.Handle

// Kind names the type of driver object a Handle refers to.
type Kind = handle.Kind

type Format int32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8UNorm Format = 37
	FormatR8G8B8A8SRGB  Format = 43
	FormatB8G8R8A8UNorm Format = 44
	FormatB8G8R8A8SRGB  Format = 50
)

type ColorSpace int32

const (
	ColorSpaceSRGBNonlinear      ColorSpace = 0
	ColorSpaceDisplayP3Nonlinear ColorSpace = 1000104001
	ColorSpaceExtendedSRGBLinear ColorSpace = 1000104002
)

// SurfaceFormat pairs a pixel format with the color space the presentation
// engine interprets it in.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFIFO:
		return "fifo"
	case PresentModeFIFORelaxed:
		return "fifo-relaxed"
	}
	return fmt.Sprintf("PresentMode(%d)", int32(m))
}

// IndeterminateExtent is the current-extent value a surface reports when the
// swapchain decides the size.
const IndeterminateExtent = math.MaxUint32

type Extent2D struct {
	Width  uint32
	Height uint32
}

type Offset2D struct {
	X int32
	Y int32
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type SurfaceTransform uint32

const SurfaceTransformIdentity SurfaceTransform = 0x1

type CompositeAlpha uint32

const CompositeAlphaOpaque CompositeAlpha = 0x1

// SurfaceCapabilities are the limits a surface reports for one device.
type SurfaceCapabilities struct {
	MinImageCount    uint32
	MaxImageCount    uint32 // zero means unbounded
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform SurfaceTransform
}

type DeviceType int32

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeOther:
		return "other"
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	}
	return fmt.Sprintf("DeviceType(%d)", int32(t))
}

type DeviceProperties struct {
	Name              string
	Type              DeviceType
	VendorID          uint32
	DeviceID          uint32
	DriverVersion     uint32
	PipelineCacheUUID uuid.UUID
}

type DeviceFeatures struct {
	GeometryShader bool
}

type QueueFlags uint32

const (
	QueueGraphics      QueueFlags = 0x1
	QueueCompute       QueueFlags = 0x2
	QueueTransfer      QueueFlags = 0x4
	QueueSparseBinding QueueFlags = 0x8
)

type QueueFamilyProperties struct {
	Flags QueueFlags
}

type SharingMode int32

const (
	SharingModeExclusive  SharingMode = 0
	SharingModeConcurrent SharingMode = 1
)

func (m SharingMode) String() string {
	if m == SharingModeConcurrent {
		return "concurrent"
	}
	return "exclusive"
}

type ImageUsage uint32

const ImageUsageColorAttachment ImageUsage = 0x10

type ImageViewType int32

const ImageViewType2D ImageViewType = 1

type ImageAspect uint32

const ImageAspectColor ImageAspect = 0x1

type ComponentSwizzle int32

const ComponentSwizzleIdentity ComponentSwizzle = 0

type ComponentMapping struct {
	R, G, B, A ComponentSwizzle
}

type SubresourceRange struct {
	Aspect         ImageAspect
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

type SampleCount uint32

const SampleCount1 SampleCount = 0x1

type AttachmentLoadOp int32

const (
	AttachmentLoadOpLoad     AttachmentLoadOp = 0
	AttachmentLoadOpClear    AttachmentLoadOp = 1
	AttachmentLoadOpDontCare AttachmentLoadOp = 2
)

type AttachmentStoreOp int32

const (
	AttachmentStoreOpStore    AttachmentStoreOp = 0
	AttachmentStoreOpDontCare AttachmentStoreOp = 1
)

type ImageLayout int32

const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

type PipelineBindPoint int32

const PipelineBindPointGraphics PipelineBindPoint = 0

type ShaderStage uint32

const (
	ShaderStageVertex   ShaderStage = 0x1
	ShaderStageFragment ShaderStage = 0x10
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	}
	return fmt.Sprintf("ShaderStage(%#x)", uint32(s))
}

type PrimitiveTopology int32

const PrimitiveTopologyTriangleList PrimitiveTopology = 3

type PolygonMode int32

const PolygonModeFill PolygonMode = 0

type CullMode uint32

const (
	CullModeNone  CullMode = 0
	CullModeFront CullMode = 0x1
	CullModeBack  CullMode = 0x2
)

type FrontFace int32

const (
	FrontFaceCounterClockwise FrontFace = 0
	FrontFaceClockwise        FrontFace = 1
)

type BlendFactor int32

const (
	BlendFactorZero             BlendFactor = 0
	BlendFactorOne              BlendFactor = 1
	BlendFactorSrcAlpha         BlendFactor = 6
	BlendFactorOneMinusSrcAlpha BlendFactor = 7
)

type BlendOp int32

const BlendOpAdd BlendOp = 0

type ColorComponent uint32

const (
	ColorComponentR ColorComponent = 0x1
	ColorComponentG ColorComponent = 0x2
	ColorComponentB ColorComponent = 0x4
	ColorComponentA ColorComponent = 0x8

	ColorComponentRGBA = ColorComponentR | ColorComponentG | ColorComponentB | ColorComponentA
)

type LogicOp int32

const LogicOpCopy LogicOp = 3

type VertexInputRate int32

const VertexInputRateVertex VertexInputRate = 0

// DebugSeverity is a set of diagnostics message severities.
type DebugSeverity uint32

const (
	DebugSeverityVerbose DebugSeverity = 0x1
	DebugSeverityInfo    DebugSeverity = 0x10
	DebugSeverityWarning DebugSeverity = 0x100
	DebugSeverityError   DebugSeverity = 0x1000
)

func (s DebugSeverity) String() string {
	switch {
	case s&DebugSeverityError != 0:
		return "error"
	case s&DebugSeverityWarning != 0:
		return "warning"
	case s&DebugSeverityInfo != 0:
		return "info"
	case s&DebugSeverityVerbose != 0:
		return "verbose"
	}
	return "none"
}

// DebugMessageType is a set of diagnostics message categories.
type DebugMessageType uint32

const (
	DebugMessageGeneral     DebugMessageType = 0x1
	DebugMessageValidation  DebugMessageType = 0x2
	DebugMessagePerformance DebugMessageType = 0x4
)

func (t DebugMessageType) String() string {
	var s string
	for _, n := range []struct {
		bit  DebugMessageType
		name string
	}{
		{DebugMessageGeneral, "general"},
		{DebugMessageValidation, "validation"},
		{DebugMessagePerformance, "performance"},
	} {
		if t&n.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
	}
	if s == "" {
		return "none"
	}
	return s
}
