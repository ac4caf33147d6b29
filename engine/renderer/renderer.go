package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/scene"
)

const (
	RenderWidth  uint32 = 1280
	RenderHeight uint32 = 720
	BufferCount  uint32 = 2

	VertexCount   uint32 = 3
	InstanceCount uint32 = 1
	SyncInterval  uint32 = 1
)

// ClearColor is the background the target is cleared to every frame.
var ClearColor = math.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1.0}

// FrameContext bundles the objects built once at startup that a frame is
// recorded and submitted with. It is not modified after construction.
type FrameContext struct {
	SwapChain   SwapChain
	Queue       CommandQueue
	CommandList CommandList
	Constants   ConstantBuffer
	Fence       Fence
	Width       uint32
	Height      uint32
}

func (fc FrameContext) validate() error {
	switch {
	case fc.SwapChain == nil:
		return errors.New("frame context: missing swap chain")
	case fc.Queue == nil:
		return errors.New("frame context: missing command queue")
	case fc.CommandList == nil:
		return errors.New("frame context: missing command list")
	case fc.Constants == nil:
		return errors.New("frame context: missing constant buffer")
	case fc.Fence == nil:
		return errors.New("frame context: missing fence")
	case fc.Width == 0 || fc.Height == 0:
		return fmt.Errorf("frame context: invalid render size %dx%d", fc.Width, fc.Height)
	}
	return nil
}

/**
 * @brief FrameCycleController advances the triangle and drives one fully
 * synchronized frame at a time: record, submit, present, signal, wait.
 * It is not safe for concurrent use; the render loop owns it.
 */
type FrameCycleController struct {
	ctx       FrameContext
	transform *scene.Transform
	lastFrame uint64
}

func NewFrameCycleController(ctx FrameContext, transform *scene.Transform) (*FrameCycleController, error) {
	if err := ctx.validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if transform == nil {
		err := errors.New("frame cycle controller requires a transform")
		core.LogError(err.Error())
		return nil, err
	}
	return &FrameCycleController{
		ctx:       ctx,
		transform: transform,
	}, nil
}

// Advance rotates the triangle by the time elapsed since the previous call.
func (c *FrameCycleController) Advance(deltaTime float64) {
	c.transform.Advance(deltaTime)
}

func (c *FrameCycleController) Transform() *scene.Transform {
	return c.transform
}

// LastFrame is the id of the last frame passed to RenderFrame, 0 before the first one.
func (c *FrameCycleController) LastFrame() uint64 {
	return c.lastFrame
}

/**
 * @brief Records, submits and presents one frame, then blocks until the GPU
 * has finished it. frameID doubles as the fence value and must be strictly
 * greater than any id passed before.
 * @param frameID The id of this frame, starting at 1.
 * @return An error naming the failed step. Errors are not recoverable.
 */
func (c *FrameCycleController) RenderFrame(frameID uint64) error {
	if frameID <= c.lastFrame {
		err := fmt.Errorf("render frame %d after frame %d: %w", frameID, c.lastFrame, core.ErrFrameOutOfOrder)
		core.LogError(err.Error())
		return err
	}
	c.lastFrame = frameID

	ctx := c.ctx

	imageIndex, err := ctx.SwapChain.CurrentBackBufferIndex()
	if err != nil {
		return c.fail(frameID, "acquire back buffer", err)
	}
	if imageIndex >= ctx.SwapChain.BufferCount() {
		return c.fail(frameID, "acquire back buffer", fmt.Errorf("index %d out of range [0, %d)", imageIndex, ctx.SwapChain.BufferCount()))
	}

	if err := ctx.CommandList.Reset(); err != nil {
		return c.fail(frameID, "reset command list", err)
	}

	if err := c.record(imageIndex); err != nil {
		return c.fail(frameID, "write constants", err)
	}

	if err := ctx.CommandList.Close(); err != nil {
		return c.fail(frameID, "close command list", err)
	}
	if err := ctx.Queue.Execute(ctx.CommandList); err != nil {
		return c.fail(frameID, "execute command list", err)
	}
	if err := ctx.SwapChain.Present(imageIndex, SyncInterval); err != nil {
		return c.fail(frameID, "present", err)
	}
	if err := ctx.Queue.Signal(ctx.Fence, frameID); err != nil {
		return c.fail(frameID, "signal fence", err)
	}

	completed, err := ctx.Fence.CompletedValue()
	if err != nil {
		return c.fail(frameID, "wait for fence", err)
	}
	if completed < frameID {
		if err := ctx.Fence.WaitFor(frameID); err != nil {
			return c.fail(frameID, "wait for fence", err)
		}
	}
	return nil
}

func (c *FrameCycleController) record(imageIndex uint32) error {
	cl := c.ctx.CommandList

	cl.ResourceBarrier(imageIndex, ResourceStatePresent, ResourceStateRenderTarget)
	cl.BeginRenderTarget(imageIndex)
	cl.ClearRenderTarget(ClearColor)
	cl.SetViewportAndScissor(c.ctx.Width, c.ctx.Height)
	cl.BindPipeline()
	cl.BindConstants()
	if err := c.ctx.Constants.Write(c.transform.ObjectToClip()); err != nil {
		return err
	}
	cl.SetPrimitiveTopology(PrimitiveTopologyTriangleList)
	cl.BindVertexBuffer()
	cl.Draw(VertexCount, InstanceCount)
	cl.EndRenderTarget()
	cl.ResourceBarrier(imageIndex, ResourceStateRenderTarget, ResourceStatePresent)
	return nil
}

func (c *FrameCycleController) fail(frameID uint64, step string, cause error) error {
	err := fmt.Errorf("frame %d: %s: %w", frameID, step, cause)
	core.LogError(err.Error())
	return err
}
