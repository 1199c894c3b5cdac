//go:build !debug

package world

// debugAssert включает паники на внутренних ошибках (сборка с -tags debug)
const debugAssert = false
