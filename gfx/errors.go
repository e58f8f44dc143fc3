package gfx

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrQueueFamiliesUnresolved is returned when a device is requested before
	// both queue roles have a family.
	ErrQueueFamiliesUnresolved = errors.New("queue family roles not resolved")
	// ErrNoSurfaceFormats is returned when a surface reports no formats.
	ErrNoSurfaceFormats = errors.New("surface reports no formats")
)

// UnsupportedEnvironmentError reports a layer or extension the platform does
// not provide.
type UnsupportedEnvironmentError struct {
	Kind string
	Name string
}

func (e *UnsupportedEnvironmentError) Error() string {
	return fmt.Sprintf("unsupported environment: %s %q not available", e.Kind, e.Name)
}

// Rejection records why a device candidate was passed over.
type Rejection struct {
	Device string
	Reason string
}

// NoSuitableDeviceError is returned when no candidate satisfies every
// suitability requirement.
type NoSuitableDeviceError struct {
	Rejections []Rejection
}

func (e *NoSuitableDeviceError) Error() string {
	if len(e.Rejections) == 0 {
		return "no suitable device: no physical devices available"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "no suitable device among %d candidates", len(e.Rejections))
	for i, r := range e.Rejections {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s (%s)", r.Device, r.Reason)
	}
	return b.String()
}

// ResourceCreationError reports a failed object creation.
type ResourceCreationError struct {
	Object Kind
	Err    error
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("create %s: %v", e.Object, e.Err)
}

func (e *ResourceCreationError) Unwrap() error { return e.Err }

func createFailed(object Kind, err error) error {
	return &ResourceCreationError{Object: object, Err: errors.WithStack(err)}
}

// FileAccessError reports a shader file that could not be read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }
