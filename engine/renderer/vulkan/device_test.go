package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectQueueFamiliesPrefersShared(t *testing.T) {
	info := selectQueueFamilies(
		[]bool{true, false, true},
		[]bool{false, true, true},
	)
	assert.Equal(t, int32(2), info.GraphicsFamilyIndex)
	assert.Equal(t, int32(2), info.PresentFamilyIndex)
}

func TestSelectQueueFamiliesSplit(t *testing.T) {
	info := selectQueueFamilies(
		[]bool{true, false},
		[]bool{false, true},
	)
	assert.Equal(t, int32(0), info.GraphicsFamilyIndex)
	assert.Equal(t, int32(1), info.PresentFamilyIndex)
}

func TestSelectQueueFamiliesMissing(t *testing.T) {
	info := selectQueueFamilies([]bool{false}, []bool{true})
	assert.Equal(t, int32(-1), info.GraphicsFamilyIndex)
	assert.Equal(t, int32(0), info.PresentFamilyIndex)
}

func TestMissingExtension(t *testing.T) {
	available := []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}

	_, ok := missingExtension(available, []string{"VK_KHR_swapchain"})
	assert.True(t, ok)

	missing, ok := missingExtension(available, []string{"VK_KHR_swapchain", "VK_KHR_ray_query"})
	assert.False(t, ok)
	assert.Equal(t, "VK_KHR_ray_query", missing)
}

func TestContainsName(t *testing.T) {
	layers := []string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_MESA_device_select"}
	assert.True(t, containsName(layers, ValidationLayerName))
	assert.False(t, containsName(layers, "VK_LAYER_LUNARG_api_dump"))
	assert.False(t, containsName(nil, ValidationLayerName))
}
