package main

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	log "github.com/sirupsen/logrus"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadConfigDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := loadConfig(filepath.Join(c.TempDir(), envFile), env(nil))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, defaultConfig())
}

func TestLoadConfigFileAndEnvironment(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(c.TempDir(), envFile)
	err := os.WriteFile(path, []byte("PRESENTCTX_WIDTH=640\nPRESENTCTX_HEIGHT=480\nPRESENTCTX_TITLE=from file\n"), 0o644)
	c.Assert(err, qt.IsNil)

	cfg, err := loadConfig(path, env(map[string]string{
		"PRESENTCTX_TITLE":     "from env",
		"PRESENTCTX_SHADERS":   "assets/spv",
		"PRESENTCTX_LOG_LEVEL": "debug",
	}))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Window.Width, qt.Equals, 640)
	c.Assert(cfg.Window.Height, qt.Equals, 480)
	c.Assert(cfg.Window.Title, qt.Equals, "from env")
	c.Assert(cfg.Shaders, qt.Equals, "assets/spv")
	c.Assert(cfg.LogLevel, qt.Equals, log.DebugLevel)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(c.TempDir(), envFile)

	for name, vars := range map[string]map[string]string{
		"width":     {"PRESENTCTX_WIDTH": "wide"},
		"size":      {"PRESENTCTX_HEIGHT": "-1"},
		"log level": {"PRESENTCTX_LOG_LEVEL": "loud"},
	} {
		c.Run(name, func(c *qt.C) {
			_, err := loadConfig(path, env(vars))
			c.Assert(err, qt.Not(qt.IsNil))
		})
	}
}
