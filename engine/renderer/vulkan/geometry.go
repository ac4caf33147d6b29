package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/trigon/engine/math"
)

// TriangleVertices is the static vertex data: an equilateral triangle with a
// red top, green bottom-right and blue bottom-left corner.
var TriangleVertices = [3]math.Vertex{
	{Position: math.Vec3{X: 0.0, Y: -0.5 + 0.5*1.7320508, Z: 0.0}, Colour: math.Vec3{X: 1, Y: 0, Z: 0}},
	{Position: math.Vec3{X: 0.5, Y: -0.5, Z: 0.0}, Colour: math.Vec3{X: 0, Y: 1, Z: 0}},
	{Position: math.Vec3{X: -0.5, Y: -0.5, Z: 0.0}, Colour: math.Vec3{X: 0, Y: 0, Z: 1}},
}

// VertexStride is the size of one interleaved vertex.
const VertexStride = uint32(unsafe.Sizeof(math.Vertex{}))

/**
 * @brief Attribute layout of math.Vertex: position at location 0, colour at
 * location 1, both three 32-bit floats.
 */
func vertexAttributes() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(math.Vertex{}.Position)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(math.Vertex{}.Colour)),
		},
	}
}

// vertexBytes reinterprets the vertices as raw bytes for upload.
func vertexBytes(vertices []math.Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(VertexStride))
}
