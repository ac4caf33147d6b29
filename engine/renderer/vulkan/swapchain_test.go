package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseSurfaceFormatPrefersRGBA(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	format, err := chooseSurfaceFormat(formats)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, format.Format)
}

func TestChooseSurfaceFormatFallsBackToBGRA(t *testing.T) {
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	format, err := chooseSurfaceFormat(formats)
	require.NoError(t, err)
	assert.Equal(t, vk.FormatB8g8r8a8Unorm, format.Format)
}

func TestChooseSurfaceFormatNoneSupported(t *testing.T) {
	_, err := chooseSurfaceFormat([]vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Srgb}})
	assert.Error(t, err)

	_, err = chooseSurfaceFormat(nil)
	assert.Error(t, err)
}

func TestChooseExtentUsesSurfaceExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: 1280, Height: 720},
	}
	assert.Equal(t, vk.Extent2D{Width: 1280, Height: 720}, chooseExtent(caps, 800, 600))
}

func TestChooseExtentClampsRequest(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: ^uint32(0), Height: ^uint32(0)},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 1024, Height: 1024},
	}
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 720}, chooseExtent(caps, 1280, 720))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(2), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}, 2))
	assert.Equal(t, uint32(3), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 8}, 2))
	assert.Equal(t, uint32(2), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 1, MaxImageCount: 0}, 2))
	assert.Equal(t, uint32(1), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 1, MaxImageCount: 1}, 2))
}
