//go:build !release

package gfx

const debugBuild = true
