// Command presentctx opens a window, brings up a Vulkan presentation context
// for it and keeps both alive until the window is closed.
package main

import (
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/vkngwrapper/presentctx/gfx"
	"github.com/vkngwrapper/presentctx/shader"
	"github.com/vkngwrapper/presentctx/vkdriver"
	"github.com/vkngwrapper/presentctx/window"
)

func init() {
	runtime.LockOSThread()
}

func run(cfg config) error {
	w, err := window.Open(cfg.Window)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.WithError(err).Warn("Closing window")
		}
	}()

	driver, err := vkdriver.New(log.StandardLogger())
	if err != nil {
		return err
	}

	ctx, err := gfx.Build(driver, w, shader.NewLoader(os.DirFS(cfg.Shaders)), gfx.DefaultPolicy(),
		gfx.WithLogger(log.StandardLogger()))
	if err != nil {
		return err
	}
	defer func() {
		if err := ctx.Destroy(); err != nil {
			log.WithError(err).Error("Tearing down presentation context")
		}
	}()

	w.Run()
	return nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := loadConfig(envFile, os.Getenv)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	log.SetLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatalf("%+v", err)
	}
}
