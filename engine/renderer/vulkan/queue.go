package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/trigon/engine/renderer"
)

// VulkanQueue submits recorded frames to the graphics queue.
type VulkanQueue struct {
	context *VulkanContext
	Handle  vk.Queue
	Family  uint32
}

var _ renderer.CommandQueue = (*VulkanQueue)(nil)

func NewVulkanQueue(context *VulkanContext) *VulkanQueue {
	return &VulkanQueue{
		context: context,
		Handle:  context.Device.GraphicsQueue,
		Family:  uint32(context.Device.GraphicsQueueIndex),
	}
}

// Execute submits the command list. When a swapchain image has been acquired
// the batch waits for it before color output and signals the image's
// render-complete semaphore for presentation.
func (q *VulkanQueue) Execute(list renderer.CommandList) error {
	cb, ok := list.(*VulkanCommandBuffer)
	if !ok {
		return fmt.Errorf("cannot execute command list of type %T", list)
	}
	if cb.State != COMMAND_BUFFER_STATE_RECORDING_ENDED {
		return fmt.Errorf("command buffer must be closed before execution, state is %d", cb.State)
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
	}
	if q.context.Swapchain != nil {
		if wait, signal, acquired := q.context.Swapchain.pendingAcquire(); acquired {
			submitInfo.WaitSemaphoreCount = 1
			submitInfo.PWaitSemaphores = []vk.Semaphore{wait}
			submitInfo.PWaitDstStageMask = []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)}
			submitInfo.SignalSemaphoreCount = 1
			submitInfo.PSignalSemaphores = []vk.Semaphore{signal}
		}
	}

	if err := q.submit([]vk.SubmitInfo{submitInfo}, vk.NullFence); err != nil {
		return err
	}
	cb.UpdateSubmitted()
	return nil
}

func (q *VulkanQueue) Signal(fence renderer.Fence, value uint64) error {
	vf, ok := fence.(*VulkanFence)
	if !ok {
		return fmt.Errorf("cannot signal fence of type %T", fence)
	}
	return vf.signal(q, value)
}

func (q *VulkanQueue) WaitIdle() error {
	return lockPool.SafeQueueCall(q.Family, func() error {
		return checkResult("vkQueueWaitIdle", vk.QueueWaitIdle(q.Handle))
	})
}

func (q *VulkanQueue) submit(infos []vk.SubmitInfo, fence vk.Fence) error {
	return lockPool.SafeQueueCall(q.Family, func() error {
		return checkResult("vkQueueSubmit", vk.QueueSubmit(q.Handle, uint32(len(infos)), infos, fence))
	})
}
