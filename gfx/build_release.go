//go:build release

package gfx

const debugBuild = false
