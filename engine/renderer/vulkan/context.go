package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/trigon/engine/core"
)

// VulkanContext owns every native object created during initialization.
// Objects are created once and destroyed in reverse order at shutdown.
type VulkanContext struct {
	// The framebuffer's width, fixed for the lifetime of the context.
	FramebufferWidth uint32
	// The framebuffer's height, fixed for the lifetime of the context.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	// Only set when validation is enabled.
	debugReport vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain    *VulkanSwapchain
	Renderpass   *VulkanRenderpass
	Framebuffers []*VulkanFramebuffer

	GraphicsQueue *VulkanQueue
	CommandBuffer *VulkanCommandBuffer
	Fence         *VulkanFence

	VertexBuffer  *VulkanBuffer
	UniformBuffer *VulkanBuffer
	Descriptors   *VulkanDescriptors

	ShaderStages []*VulkanShaderStage
	Pipeline     *VulkanPipeline
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has all of propertyFlags.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryType := memoryProperties.MemoryTypes[i]
		memoryType.Deref()
		if (typeFilter&(1<<i)) != 0 && (memoryType.PropertyFlags&propertyFlags) == propertyFlags {
			return i, nil
		}
	}
	err := fmt.Errorf("unable to find suitable memory type (filter %#x, flags %#x)", typeFilter, uint32(propertyFlags))
	core.LogWarn(err.Error())
	return 0, err
}
