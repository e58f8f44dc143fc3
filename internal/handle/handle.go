// Package handle tracks driver objects as opaque handles and owns their
// release order.
package handle

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind names the type of driver object a handle refers to.
type Kind string

const (
	Instance       Kind = "instance"
	DebugMessenger Kind = "debug messenger"
	Surface        Kind = "surface"
	PhysicalDevice Kind = "physical device"
	Device         Kind = "device"
	Queue          Kind = "queue"
	Swapchain      Kind = "swapchain"
	Image          Kind = "image"
	ImageView      Kind = "image view"
	RenderPass     Kind = "render pass"
	ShaderModule   Kind = "shader module"
	PipelineLayout Kind = "pipeline layout"
	Pipeline       Kind = "pipeline"
)

// Handle is an opaque reference to a driver object. The zero Handle is null.
type Handle struct {
	Kind Kind
	ID   uint64
}

// Null reports whether h refers to nothing.
func (h Handle) Null() bool {
	return h.ID == 0
}

func (h Handle) String() string {
	if h.Null() {
		return "null"
	}
	return fmt.Sprintf("%s#%d", h.Kind, h.ID)
}

var (
	// ErrNotOwned is returned when releasing a handle the registry does not own,
	// including one that was already released.
	ErrNotOwned = errors.New("handle not owned")
	// ErrStillReferenced is returned when releasing a handle that a live handle
	// still owns or references.
	ErrStillReferenced = errors.New("handle still referenced")
	// ErrNotLive is returned when linking handles the registry does not know.
	ErrNotLive = errors.New("handle not live")
)
