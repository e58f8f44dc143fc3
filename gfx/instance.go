package gfx

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/vkngwrapper/presentctx/internal/handle"
)

func (c *Context) diagnosticsInfo() DebugMessengerInfo {
	return DebugMessengerInfo{
		Severities: DebugSeverityError | DebugSeverityWarning | DebugSeverityVerbose,
		Types:      DebugMessageValidation | DebugMessagePerformance | DebugMessageGeneral,
		Callback:   c.logDiagnostic,
	}
}

func (c *Context) createInstance() error {
	info := InstanceInfo{
		ApplicationName: c.Policy.ApplicationName,
		EngineName:      c.Policy.EngineName,
	}

	available, err := c.driver.AvailableInstanceExtensions()
	if err != nil {
		return errors.Wrap(err, "query instance extensions")
	}

	requested := append([]string(nil), c.window.InstanceExtensions()...)
	if c.Policy.Debug {
		requested = append(requested, debugUtilsExtension)
	}
	for _, ext := range requested {
		if !slices.Contains(available, ext) {
			return &UnsupportedEnvironmentError{Kind: "instance extension", Name: ext}
		}
		if !slices.Contains(info.Extensions, ext) {
			info.Extensions = append(info.Extensions, ext)
		}
	}

	if slices.Contains(available, portabilityEnumerateExtension) {
		info.Extensions = append(info.Extensions, portabilityEnumerateExtension)
		info.EnumeratePortability = true
	}

	if c.Policy.Debug {
		layers, err := c.driver.AvailableLayers()
		if err != nil {
			return errors.Wrap(err, "query instance layers")
		}
		for _, layer := range c.Policy.ValidationLayers {
			if !slices.Contains(layers, layer) {
				return &UnsupportedEnvironmentError{Kind: "layer", Name: layer}
			}
			info.Layers = append(info.Layers, layer)
		}

		diag := c.diagnosticsInfo()
		info.Diagnostics = &diag
	}

	instance, err := c.driver.CreateInstance(info)
	if err != nil {
		return createFailed(handle.Instance, err)
	}
	c.Instance = instance

	c.log.WithFields(logrus.Fields{
		"extensions": info.Extensions,
		"layers":     info.Layers,
	}).Debug("Instance created")

	return c.own(instance, Handle{}, func() {
		c.driver.DestroyInstance(instance)
	})
}

// setupDebugMessenger installs the diagnostics channel. A missing entry point
// leaves the context without one.
func (c *Context) setupDebugMessenger() error {
	if !c.Policy.Debug {
		return nil
	}

	messenger, ok := c.driver.LookupDebugMessenger(c.Instance, DebugMessengerEntryPoint)
	if !ok {
		c.log.WithField("entry point", DebugMessengerEntryPoint).Debug("Diagnostics channel unavailable")
		return nil
	}

	h, err := messenger.Create(c.diagnosticsInfo())
	if err != nil {
		return createFailed(handle.DebugMessenger, err)
	}
	c.Messenger = h

	return c.own(h, c.Instance, func() {
		messenger.Destroy(h)
	})
}

// logDiagnostic surfaces a driver message. It never asks the driver to abort.
func (c *Context) logDiagnostic(severity DebugSeverity, types DebugMessageType, message string) bool {
	entry := c.log.WithFields(logrus.Fields{
		"severity": severity.String(),
		"type":     types.String(),
	})

	switch {
	case severity&DebugSeverityError != 0:
		entry.Error(message)
	case severity&DebugSeverityWarning != 0:
		entry.Warn(message)
	case severity&DebugSeverityInfo != 0:
		entry.Info(message)
	default:
		entry.Debug(message)
	}
	return false
}

func (c *Context) createSurface() error {
	surface, err := c.driver.CreateSurface(c.Instance, c.window)
	if err != nil {
		return createFailed(handle.Surface, err)
	}
	c.Surface = surface

	instance := c.Instance
	return c.own(surface, instance, func() {
		c.driver.DestroySurface(instance, surface)
	})
}
