package vulkan

import vk "github.com/goki/vulkan"

const ValidationLayerName = "VK_LAYER_KHRONOS_validation"

const EngineName = "Trigon"

/**
 * @brief Surface formats accepted for the swapchain, in order of preference.
 * Both are 8 bits per channel UNORM.
 */
var preferredSurfaceFormats = []vk.Format{
	vk.FormatR8g8b8a8Unorm,
	vk.FormatB8g8r8a8Unorm,
}

// Size in bytes of the object-to-clip matrix held by the uniform buffer.
const objectToClipSize = 16 * 4
