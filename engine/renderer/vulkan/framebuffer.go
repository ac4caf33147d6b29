package vulkan

import (
	vk "github.com/goki/vulkan"
)

type VulkanFramebuffer struct {
	Handle     vk.Framebuffer
	Attachment vk.ImageView
	Renderpass *VulkanRenderpass
}

func FramebufferCreate(context *VulkanContext, renderpass *VulkanRenderpass, width, height uint32, attachment vk.ImageView) (*VulkanFramebuffer, error) {
	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{attachment},
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	var handle vk.Framebuffer
	if err := checkResult("vkCreateFramebuffer", vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferCreateInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	return &VulkanFramebuffer{
		Handle:     handle,
		Attachment: attachment,
		Renderpass: renderpass,
	}, nil
}

// FramebuffersCreate builds one framebuffer per swapchain image view.
func FramebuffersCreate(context *VulkanContext) ([]*VulkanFramebuffer, error) {
	framebuffers := make([]*VulkanFramebuffer, 0, len(context.Swapchain.Views))
	for _, view := range context.Swapchain.Views {
		fb, err := FramebufferCreate(context, context.Renderpass, context.Swapchain.Extent.Width, context.Swapchain.Extent.Height, view)
		if err != nil {
			for _, created := range framebuffers {
				created.Destroy(context)
			}
			return nil, err
		}
		framebuffers = append(framebuffers, fb)
	}
	return framebuffers, nil
}

func (vfb *VulkanFramebuffer) Destroy(context *VulkanContext) {
	if vfb.Handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, vfb.Handle, context.Allocator)
		vfb.Handle = vk.NullFramebuffer
	}
	vfb.Attachment = vk.NullImageView
	vfb.Renderpass = nil
}
