package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

func (s VulkanCommandBufferState) String() string {
	switch s {
	case COMMAND_BUFFER_STATE_READY:
		return "ready"
	case COMMAND_BUFFER_STATE_RECORDING:
		return "recording"
	case COMMAND_BUFFER_STATE_IN_RENDER_PASS:
		return "in render pass"
	case COMMAND_BUFFER_STATE_RECORDING_ENDED:
		return "recording ended"
	case COMMAND_BUFFER_STATE_SUBMITTED:
		return "submitted"
	default:
		return "not allocated"
	}
}

// VulkanCommandBuffer is the frame's command list. It is allocated from the
// graphics command pool, and resetting it resets the whole pool.
type VulkanCommandBuffer struct {
	context *VulkanContext
	pool    vk.CommandPool
	Handle  vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState

	// First recording error, reported by Close.
	err error
}

var _ renderer.CommandList = (*VulkanCommandBuffer)(nil)

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool) (*VulkanCommandBuffer, error) {
	vCommandBuffer := &VulkanCommandBuffer{
		context: context,
		pool:    pool,
		State:   COMMAND_BUFFER_STATE_NOT_ALLOCATED,
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              vk.CommandBufferLevelPrimary,
	}

	handles := make([]vk.CommandBuffer, 1)
	err := lockPool.SafeCall(CommandBufferManagement, func() error {
		return checkResult("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles))
	})
	if err != nil {
		return nil, err
	}
	vCommandBuffer.Handle = handles[0]
	vCommandBuffer.State = COMMAND_BUFFER_STATE_READY
	return vCommandBuffer, nil
}

func (v *VulkanCommandBuffer) Free() {
	if v.Handle == nil {
		return
	}
	lockPool.SafeCall(CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(v.context.Device.LogicalDevice, v.pool, 1, []vk.CommandBuffer{v.Handle})
		return nil
	})
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

// Reset reclaims the pool memory and begins a one-time-submit recording.
func (v *VulkanCommandBuffer) Reset() error {
	if v.State == COMMAND_BUFFER_STATE_NOT_ALLOCATED {
		return fmt.Errorf("reset of a freed command buffer")
	}
	err := lockPool.SafeCall(CommandBufferManagement, func() error {
		if err := checkResult("vkResetCommandPool", vk.ResetCommandPool(v.context.Device.LogicalDevice, v.pool, 0)); err != nil {
			return err
		}
		beginInfo := vk.CommandBufferBeginInfo{
			SType: vk.StructureTypeCommandBufferBeginInfo,
			Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
		}
		return checkResult("vkBeginCommandBuffer", vk.BeginCommandBuffer(v.Handle, &beginInfo))
	})
	if err != nil {
		return err
	}
	v.err = nil
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) Close() error {
	if v.err != nil {
		return v.err
	}
	if v.State != COMMAND_BUFFER_STATE_RECORDING {
		return fmt.Errorf("close of command buffer in state %s", v.State)
	}
	if err := checkResult("vkEndCommandBuffer", vk.EndCommandBuffer(v.Handle)); err != nil {
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

// record runs fn when the buffer is in one of the allowed states and keeps
// the first failure for Close.
func (v *VulkanCommandBuffer) record(op string, fn func() error, allowed ...VulkanCommandBufferState) {
	if v.err != nil {
		return
	}
	for _, s := range allowed {
		if v.State == s {
			if err := fn(); err != nil {
				v.err = fmt.Errorf("%s: %w", op, err)
			}
			return
		}
	}
	v.err = fmt.Errorf("%s: command buffer is %s", op, v.State)
}

func (v *VulkanCommandBuffer) ResourceBarrier(imageIndex uint32, before, after renderer.ResourceState) {
	v.record("resource barrier", func() error {
		if imageIndex >= uint32(len(v.context.Swapchain.Images)) {
			return fmt.Errorf("image index %d out of range", imageIndex)
		}
		t, err := layoutTransition(before, after)
		if err != nil {
			return err
		}
		barrier := vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       t.srcAccess,
			DstAccessMask:       t.dstAccess,
			OldLayout:           t.oldLayout,
			NewLayout:           t.newLayout,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               v.context.Swapchain.Images[imageIndex],
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		vk.CmdPipelineBarrier(v.Handle, t.srcStage, t.dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
		return nil
	}, COMMAND_BUFFER_STATE_RECORDING)
}

func (v *VulkanCommandBuffer) BeginRenderTarget(imageIndex uint32) {
	v.record("begin render target", func() error {
		if imageIndex >= uint32(len(v.context.Framebuffers)) {
			return fmt.Errorf("no framebuffer for image %d", imageIndex)
		}
		v.context.Renderpass.Begin(v, v.context.Framebuffers[imageIndex])
		return nil
	}, COMMAND_BUFFER_STATE_RECORDING)
}

func (v *VulkanCommandBuffer) ClearRenderTarget(color math.Vec4) {
	v.record("clear render target", func() error {
		attachment := vk.ClearAttachment{
			AspectMask:      vk.ImageAspectFlags(vk.ImageAspectColorBit),
			ColorAttachment: 0,
			ClearValue:      vk.NewClearValue([]float32{color.X, color.Y, color.Z, color.W}),
		}
		rect := vk.ClearRect{
			Rect: vk.Rect2D{
				Offset: vk.Offset2D{X: 0, Y: 0},
				Extent: vk.Extent2D{Width: v.context.Renderpass.Width, Height: v.context.Renderpass.Height},
			},
			BaseArrayLayer: 0,
			LayerCount:     1,
		}
		vk.CmdClearAttachments(v.Handle, 1, []vk.ClearAttachment{attachment}, 1, []vk.ClearRect{rect})
		return nil
	}, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
}

func (v *VulkanCommandBuffer) SetViewportAndScissor(width, height uint32) {
	v.record("set viewport", func() error {
		viewport := vk.Viewport{
			X:        0,
			Y:        0,
			Width:    float32(width),
			Height:   float32(height),
			MinDepth: 0,
			MaxDepth: 1,
		}
		scissor := vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: width, Height: height},
		}
		vk.CmdSetViewport(v.Handle, 0, 1, []vk.Viewport{viewport})
		vk.CmdSetScissor(v.Handle, 0, 1, []vk.Rect2D{scissor})
		return nil
	}, COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
}

func (v *VulkanCommandBuffer) BindPipeline() {
	v.record("bind pipeline", func() error {
		return v.context.Pipeline.Bind(v, vk.PipelineBindPointGraphics)
	}, COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
}

func (v *VulkanCommandBuffer) BindConstants() {
	v.record("bind constants", func() error {
		vk.CmdBindDescriptorSets(
			v.Handle,
			vk.PipelineBindPointGraphics,
			v.context.Pipeline.PipelineLayout,
			0,
			1,
			[]vk.DescriptorSet{v.context.Descriptors.Set},
			0,
			nil,
		)
		return nil
	}, COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
}

// SetPrimitiveTopology only validates: the topology is part of the pipeline.
func (v *VulkanCommandBuffer) SetPrimitiveTopology(topology renderer.PrimitiveTopology) {
	v.record("set primitive topology", func() error {
		if topology != renderer.PrimitiveTopologyTriangleList {
			return fmt.Errorf("unsupported topology %d", topology)
		}
		return nil
	}, COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
}

func (v *VulkanCommandBuffer) BindVertexBuffer() {
	v.record("bind vertex buffer", func() error {
		vk.CmdBindVertexBuffers(v.Handle, 0, 1, []vk.Buffer{v.context.VertexBuffer.Handle}, []vk.DeviceSize{0})
		return nil
	}, COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
}

func (v *VulkanCommandBuffer) Draw(vertexCount, instanceCount uint32) {
	v.record("draw", func() error {
		vk.CmdDraw(v.Handle, vertexCount, instanceCount, 0, 0)
		return nil
	}, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
}

func (v *VulkanCommandBuffer) EndRenderTarget() {
	v.record("end render target", func() error {
		v.context.Renderpass.End(v)
		return nil
	}, COMMAND_BUFFER_STATE_IN_RENDER_PASS)
}

type imageTransition struct {
	oldLayout vk.ImageLayout
	newLayout vk.ImageLayout
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
}

/**
 * @brief Maps a resource state change on a swapchain image to layouts,
 * stages and access masks. Leaving the present state discards the image
 * contents since the frame clears it anyway.
 */
func layoutTransition(before, after renderer.ResourceState) (imageTransition, error) {
	colorOutput := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	switch {
	case before == renderer.ResourceStatePresent && after == renderer.ResourceStateRenderTarget:
		return imageTransition{
			oldLayout: vk.ImageLayoutUndefined,
			newLayout: vk.ImageLayoutColorAttachmentOptimal,
			srcStage:  colorOutput,
			dstStage:  colorOutput,
			srcAccess: 0,
			dstAccess: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		}, nil
	case before == renderer.ResourceStateRenderTarget && after == renderer.ResourceStatePresent:
		return imageTransition{
			oldLayout: vk.ImageLayoutColorAttachmentOptimal,
			newLayout: vk.ImageLayoutPresentSrc,
			srcStage:  colorOutput,
			dstStage:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
			srcAccess: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
			dstAccess: 0,
		}, nil
	default:
		return imageTransition{}, fmt.Errorf("unsupported transition %s -> %s", before, after)
	}
}
