//go:build debug

package engine

const (
	defaultLogLevel   = "debug"
	defaultValidation = true

	// Unoptimized shaders carrying debug info.
	vertexShaderName   = "triangle_debug.vert"
	fragmentShaderName = "triangle_debug.frag"
)
