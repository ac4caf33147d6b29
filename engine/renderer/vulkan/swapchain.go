package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// VulkanSwapchain owns the presentable images, their views and the
// semaphores ordering acquire, render and present.
type VulkanSwapchain struct {
	context *VulkanContext

	ImageFormat vk.SurfaceFormat
	Extent      vk.Extent2D
	Handle      vk.Swapchain
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	// Signaled by the presentation engine when the acquired image can be written.
	imageAvailable vk.Semaphore
	// One per image, signaled when the frame drawn into that image completes.
	renderComplete []vk.Semaphore

	currentImage uint32
	acquired     bool
}

var _ renderer.SwapChain = (*VulkanSwapchain)(nil)

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func SwapchainCreate(context *VulkanContext, width, height, bufferCount uint32) (*VulkanSwapchain, error) {
	support := context.Device.SwapchainSupport
	swapchain := &VulkanSwapchain{context: context}

	format, err := chooseSurfaceFormat(support.Formats)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	swapchain.ImageFormat = format
	swapchain.Extent = chooseExtent(support.Capabilities, width, height)
	imageCount := chooseImageCount(support.Capabilities, bufferCount)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		// FIFO is always available and waits for one vertical blank per present.
		PresentMode: vk.PresentModeFifo,
		Clipped:     vk.True,
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if err := checkResult("vkCreateSwapchainKHR", vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	swapchain.Handle = handle

	// Images
	if err := checkResult("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(context.Device.LogicalDevice, handle, &swapchain.ImageCount, nil)); err != nil {
		swapchain.Destroy()
		return nil, err
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	if err := checkResult("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(context.Device.LogicalDevice, handle, &swapchain.ImageCount, swapchain.Images)); err != nil {
		swapchain.Destroy()
		return nil, err
	}
	if swapchain.ImageCount != bufferCount {
		core.LogWarn("Requested %d swapchain images, the driver created %d.", bufferCount, swapchain.ImageCount)
	}

	// Views
	swapchain.Views = make([]vk.ImageView, 0, swapchain.ImageCount)
	for i := range swapchain.Images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		var view vk.ImageView
		if err := checkResult("vkCreateImageView", vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &view)); err != nil {
			swapchain.Destroy()
			return nil, err
		}
		swapchain.Views = append(swapchain.Views, view)
	}

	// Semaphores
	semaphoreInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	if err := checkResult("vkCreateSemaphore", vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreInfo, context.Allocator, &swapchain.imageAvailable)); err != nil {
		swapchain.Destroy()
		return nil, err
	}
	swapchain.renderComplete = make([]vk.Semaphore, 0, swapchain.ImageCount)
	for range swapchain.Images {
		var semaphore vk.Semaphore
		if err := checkResult("vkCreateSemaphore", vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreInfo, context.Allocator, &semaphore)); err != nil {
			swapchain.Destroy()
			return nil, err
		}
		swapchain.renderComplete = append(swapchain.renderComplete, semaphore)
	}

	core.LogInfo("Swapchain created: %d images, %dx%d, format %d.",
		swapchain.ImageCount, swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageFormat.Format)
	return swapchain, nil
}

// Destroy releases the views, the semaphores and the swapchain. The images
// belong to the swapchain and go with it.
func (vs *VulkanSwapchain) Destroy() {
	device := vs.context.Device.LogicalDevice
	for _, semaphore := range vs.renderComplete {
		vk.DestroySemaphore(device, semaphore, vs.context.Allocator)
	}
	vs.renderComplete = nil
	if vs.imageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(device, vs.imageAvailable, vs.context.Allocator)
		vs.imageAvailable = vk.NullSemaphore
	}
	for _, view := range vs.Views {
		vk.DestroyImageView(device, view, vs.context.Allocator)
	}
	vs.Views = nil
	vs.Images = nil
	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, vs.Handle, vs.context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
	vs.ImageCount = 0
}

// CurrentBackBufferIndex acquires the next image. The acquire semaphore is
// consumed by the next queue submission.
func (vs *VulkanSwapchain) CurrentBackBufferIndex() (uint32, error) {
	var imageIndex uint32
	err := lockPool.SafeCall(SwapchainManagement, func() error {
		result := vk.AcquireNextImage(vs.context.Device.LogicalDevice, vs.Handle, vk.MaxUint64, vs.imageAvailable, vk.NullFence, &imageIndex)
		if result == vk.Suboptimal {
			core.LogDebug("Acquired image %d from a suboptimal swapchain.", imageIndex)
		}
		return checkResult("vkAcquireNextImageKHR", result)
	})
	if err != nil {
		return 0, err
	}
	vs.currentImage = imageIndex
	vs.acquired = true
	return imageIndex, nil
}

// Present queues imageIndex for display once its frame has finished rendering.
// The swapchain always presents in FIFO mode, so any non-zero syncInterval
// waits for one vertical blank.
func (vs *VulkanSwapchain) Present(imageIndex uint32, syncInterval uint32) error {
	if imageIndex >= vs.ImageCount {
		return fmt.Errorf("image index %d out of range [0, %d)", imageIndex, vs.ImageCount)
	}
	if syncInterval == 0 {
		core.LogDebug("Sync interval 0 requested, presenting with FIFO anyway.")
	}
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{vs.renderComplete[imageIndex]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	family := uint32(vs.context.Device.PresentQueueIndex)
	err := lockPool.SafeQueueCall(family, func() error {
		return checkResult("vkQueuePresentKHR", vk.QueuePresent(vs.context.Device.PresentQueue, &presentInfo))
	})
	vs.acquired = false
	return err
}

func (vs *VulkanSwapchain) BufferCount() uint32 {
	return vs.ImageCount
}

// pendingAcquire returns the semaphore to wait on before writing the acquired
// image and the one to signal when done. ok is false if nothing was acquired.
func (vs *VulkanSwapchain) pendingAcquire() (wait, signal vk.Semaphore, ok bool) {
	if !vs.acquired {
		return vk.NullSemaphore, vk.NullSemaphore, false
	}
	return vs.imageAvailable, vs.renderComplete[vs.currentImage], true
}

// chooseSurfaceFormat takes the first preferred UNORM format the surface offers.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	for _, preferred := range preferredSurfaceFormats {
		for _, format := range formats {
			if format.Format == preferred {
				return format, nil
			}
		}
	}
	return vk.SurfaceFormat{}, fmt.Errorf("surface offers none of the supported formats (%d available)", len(formats))
}

// chooseExtent uses the surface extent when the surface dictates one,
// otherwise the requested size clamped to what the surface accepts.
func chooseExtent(capabilities vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != ^uint32(0) {
		return capabilities.CurrentExtent
	}
	minExtent := capabilities.MinImageExtent
	maxExtent := capabilities.MaxImageExtent
	return vk.Extent2D{
		Width:  math.Clamp(width, minExtent.Width, maxExtent.Width),
		Height: math.Clamp(height, minExtent.Height, maxExtent.Height),
	}
}

// chooseImageCount clamps want to the surface limits. A MaxImageCount of 0 means no limit.
func chooseImageCount(capabilities vk.SurfaceCapabilities, want uint32) uint32 {
	count := want
	if count < capabilities.MinImageCount {
		count = capabilities.MinImageCount
	}
	if capabilities.MaxImageCount > 0 && count > capabilities.MaxImageCount {
		count = capabilities.MaxImageCount
	}
	return count
}
