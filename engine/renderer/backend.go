package renderer

import "github.com/spaghettifunk/trigon/engine/math"

// ResourceState is the usage a swap chain image is transitioned between.
type ResourceState uint8

const (
	ResourceStatePresent ResourceState = iota
	ResourceStateRenderTarget
)

func (s ResourceState) String() string {
	switch s {
	case ResourceStatePresent:
		return "present"
	case ResourceStateRenderTarget:
		return "render-target"
	default:
		return "unknown"
	}
}

type PrimitiveTopology uint8

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
)

// SwapChain is the set of presentable images the frame is drawn into.
type SwapChain interface {
	// CurrentBackBufferIndex returns the image to draw into this frame, in [0, BufferCount()).
	CurrentBackBufferIndex() (uint32, error)
	Present(imageIndex uint32, syncInterval uint32) error
	BufferCount() uint32
}

type CommandQueue interface {
	Execute(list CommandList) error
	// Signal enqueues a fence update to value after all previously submitted work.
	Signal(fence Fence, value uint64) error
}

// CommandList records the frame. Recording calls cannot fail on their own;
// errors surface from Close.
type CommandList interface {
	// Reset reclaims the allocator and reopens the list for recording. The
	// previous submission must have completed.
	Reset() error
	ResourceBarrier(imageIndex uint32, before, after ResourceState)
	BeginRenderTarget(imageIndex uint32)
	ClearRenderTarget(color math.Vec4)
	SetViewportAndScissor(width, height uint32)
	BindPipeline()
	BindConstants()
	SetPrimitiveTopology(topology PrimitiveTopology)
	BindVertexBuffer()
	Draw(vertexCount, instanceCount uint32)
	EndRenderTarget()
	Close() error
}

// ConstantBuffer is the vertex stage constant holding the object-to-clip matrix.
type ConstantBuffer interface {
	Write(objectToClip math.Mat4) error
}

type Fence interface {
	CompletedValue() (uint64, error)
	// WaitFor blocks until CompletedValue() >= value. There is no timeout.
	WaitFor(value uint64) error
}
