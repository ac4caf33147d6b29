//go:build !debug

package engine

const (
	defaultLogLevel   = "info"
	defaultValidation = false

	vertexShaderName   = "triangle_release.vert"
	fragmentShaderName = "triangle_release.frag"
)
