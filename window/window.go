// Package window opens the SDL2 window a presentation context is bound to and
// runs its event loop. Everything here must run on the main OS thread.
package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/presentctx/gfx"
)

// Config describes the window to open.
type Config struct {
	Width  int
	Height int
	Title  string
}

func DefaultConfig() Config {
	return Config{
		Width:  1280,
		Height: 1080,
		Title:  "Triangle",
	}
}

// Validate rejects sizes SDL cannot create a window with.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Newf("window size %dx%d must be positive", c.Width, c.Height)
	}
	return nil
}

type Window struct {
	Config Config
	sdl    *sdl.Window
}

var _ gfx.Window = (*Window)(nil)

// Open initializes SDL video, loads the Vulkan library and creates a Vulkan
// capable window.
func Open(cfg Config) (*Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "initialize sdl")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "load vulkan library")
	}

	w, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{Config: cfg, sdl: w}, nil
}

// NativeHandle returns the *sdl.Window.
func (w *Window) NativeHandle() any {
	return w.sdl
}

func (w *Window) FramebufferSize() (int, int) {
	width, height := w.sdl.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) InstanceExtensions() []string {
	return w.sdl.VulkanGetInstanceExtensions()
}

// Run blocks on window events until the window is closed, a quit is requested
// or Escape is pressed.
func (w *Window) Run() {
	for {
		if ShouldClose(sdl.WaitEvent()) {
			return
		}
	}
}

// ShouldClose reports whether an event ends the loop.
func ShouldClose(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return true
	case *sdl.WindowEvent:
		return e.Event == sdl.WINDOWEVENT_CLOSE
	case *sdl.KeyboardEvent:
		return e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE
	}
	return false
}

// Close destroys the window and shuts SDL down.
func (w *Window) Close() error {
	var err error
	if w.sdl != nil {
		err = w.sdl.Destroy()
		w.sdl = nil
	}
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
	return errors.Wrap(err, "destroy window")
}
