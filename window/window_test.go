package window_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/presentctx/window"
)

func TestShouldClose(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		name  string
		event sdl.Event
		want  bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, true},
		{"window close", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_CLOSE}, true},
		{"window resize", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED}, false},
		{"escape down", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}, true},
		{"escape up", &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_ESCAPE}}, false},
		{"other key", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_SPACE}}, false},
		{"no event", nil, false},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			c.Assert(window.ShouldClose(tt.event), qt.Equals, tt.want)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	c := qt.New(t)

	c.Assert(window.DefaultConfig().Validate(), qt.IsNil)
	c.Assert(window.Config{Width: 0, Height: 600}.Validate(), qt.ErrorMatches, "window size 0x600 must be positive")
}
