package gfx

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"

	"github.com/vkngwrapper/presentctx/internal/handle"
)

const (
	DefaultVertexShader   = "shader.vert.spv"
	DefaultFragmentShader = "shader.frag.spv"
)

// Context is a fully negotiated presentation context. It owns every object
// created during Build and releases them in reverse order on Destroy.
type Context struct {
	ID     uuid.UUID
	Policy Policy

	Instance       Handle
	Messenger      Handle // null when diagnostics are inactive
	Surface        Handle
	PhysicalDevice *DeviceCandidate
	Device         LogicalDevice
	Swapchain      *Swapchain
	RenderPass     *RenderPass
	Pipeline       *GraphicsPipeline

	driver   Driver
	window   Window
	shaders  ShaderSource
	registry *handle.Registry
	log      logrus.FieldLogger

	vertexShader   string
	fragmentShader string
}

type options struct {
	logger         logrus.FieldLogger
	vertexShader   string
	fragmentShader string
}

type Option func(*options)

// WithLogger routes startup progress and diagnostics messages to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithShaders overrides the names the vertex and fragment bytecode are loaded
// by.
func WithShaders(vertex, fragment string) Option {
	return func(o *options) {
		o.vertexShader = vertex
		o.fragmentShader = fragment
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Build runs the startup sequence against d. On failure everything acquired
// so far is released before the error is returned.
func Build(d Driver, w Window, shaders ShaderSource, p Policy, opts ...Option) (_ *Context, err error) {
	o := options{
		logger:         discardLogger(),
		vertexShader:   DefaultVertexShader,
		fragmentShader: DefaultFragmentShader,
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.New()
	c := &Context{
		ID:             id,
		Policy:         p,
		driver:         d,
		window:         w,
		shaders:        shaders,
		registry:       handle.NewRegistry(),
		log:            o.logger.WithField("context", id.String()),
		vertexShader:   o.vertexShader,
		fragmentShader: o.fragmentShader,
	}

	defer func() {
		if err == nil {
			return
		}
		if uerr := c.registry.Unwind(); uerr != nil {
			c.log.WithError(uerr).Error("Teardown after failed startup")
			err = errors.CombineErrors(err, uerr)
		}
	}()

	stages := []struct {
		name string
		run  func() error
	}{
		{"instance", c.createInstance},
		{"debug messenger", c.setupDebugMessenger},
		{"surface", c.createSurface},
		{"physical device", c.pickPhysicalDevice},
		{"logical device", c.createLogicalDevice},
		{"swapchain", c.createSwapchain},
		{"image views", c.createImageViews},
		{"render pass", c.createRenderPass},
		{"graphics pipeline", c.createGraphicsPipeline},
	}

	start := hrtime.Now()
	for _, stage := range stages {
		stageStart := hrtime.Now()
		if err := stage.run(); err != nil {
			return nil, errors.Wrapf(err, "startup: %s", stage.name)
		}
		c.log.WithFields(logrus.Fields{
			"stage":   stage.name,
			"elapsed": hrtime.Since(stageStart),
		}).Debug("Startup stage complete")
	}
	c.log.WithField("elapsed", hrtime.Since(start)).Info("Presentation context ready")

	return c, nil
}

// Destroy releases every object in reverse order of creation. Calling it
// more than once is harmless.
func (c *Context) Destroy() error {
	err := c.registry.Unwind()
	if err != nil {
		c.log.WithError(err).Error("Teardown incomplete")
		return err
	}
	c.log.Debug("Presentation context destroyed")
	return nil
}

// Live reports whether h is still owned or borrowed by the context.
func (c *Context) Live(h Handle) bool {
	return c.registry.Live(h)
}

// own registers h with its release action, undoing the creation right away
// if registration is refused.
func (c *Context) own(h, owner Handle, release func()) error {
	if err := c.registry.Own(h, owner, release); err != nil {
		release()
		return err
	}
	return nil
}
