//go:build debug

package world

const debugAssert = true
