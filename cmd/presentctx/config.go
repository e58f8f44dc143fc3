package main

import (
	"io/fs"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vkngwrapper/presentctx/window"
)

const envFile = "presentctx.env"

type config struct {
	Window   window.Config
	Shaders  string
	LogLevel log.Level
}

func defaultConfig() config {
	return config{
		Window:   window.DefaultConfig(),
		Shaders:  "shaders",
		LogLevel: log.InfoLevel,
	}
}

// loadConfig reads settings from the env file at path, if there is one, and
// lets the process environment override them.
func loadConfig(path string, getenv func(string) string) (config, error) {
	vars, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, errors.Wrapf(err, "read %s", path)
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return vars[key]
	}

	cfg := defaultConfig()
	if v := lookup("PRESENTCTX_WIDTH"); v != "" {
		if cfg.Window.Width, err = strconv.Atoi(v); err != nil {
			return config{}, errors.Wrap(err, "PRESENTCTX_WIDTH")
		}
	}
	if v := lookup("PRESENTCTX_HEIGHT"); v != "" {
		if cfg.Window.Height, err = strconv.Atoi(v); err != nil {
			return config{}, errors.Wrap(err, "PRESENTCTX_HEIGHT")
		}
	}
	if v := lookup("PRESENTCTX_TITLE"); v != "" {
		cfg.Window.Title = v
	}
	if v := lookup("PRESENTCTX_SHADERS"); v != "" {
		cfg.Shaders = v
	}
	if v := lookup("PRESENTCTX_LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = log.ParseLevel(v); err != nil {
			return config{}, errors.Wrap(err, "PRESENTCTX_LOG_LEVEL")
		}
	}

	if err := cfg.Window.Validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}
