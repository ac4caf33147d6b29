package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/trigon/engine/renderer"
)

func TestLayoutTransitionToRenderTarget(t *testing.T) {
	tr, err := layoutTransition(renderer.ResourceStatePresent, renderer.ResourceStateRenderTarget)
	require.NoError(t, err)
	assert.Equal(t, vk.ImageLayoutUndefined, tr.oldLayout)
	assert.Equal(t, vk.ImageLayoutColorAttachmentOptimal, tr.newLayout)
	assert.Equal(t, vk.AccessFlags(vk.AccessColorAttachmentWriteBit), tr.dstAccess)
}

func TestLayoutTransitionToPresent(t *testing.T) {
	tr, err := layoutTransition(renderer.ResourceStateRenderTarget, renderer.ResourceStatePresent)
	require.NoError(t, err)
	assert.Equal(t, vk.ImageLayoutColorAttachmentOptimal, tr.oldLayout)
	assert.Equal(t, vk.ImageLayoutPresentSrc, tr.newLayout)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit), tr.dstStage)
}

func TestLayoutTransitionUnsupported(t *testing.T) {
	_, err := layoutTransition(renderer.ResourceStatePresent, renderer.ResourceStatePresent)
	assert.Error(t, err)
}

func TestRecordKeepsFirstError(t *testing.T) {
	cb := &VulkanCommandBuffer{State: COMMAND_BUFFER_STATE_RECORDING}

	first := errors.New("first")
	cb.record("one", func() error { return first }, COMMAND_BUFFER_STATE_RECORDING)
	cb.record("two", func() error { return errors.New("second") }, COMMAND_BUFFER_STATE_RECORDING)

	assert.ErrorIs(t, cb.Close(), first)
}

func TestRecordRejectsWrongState(t *testing.T) {
	cb := &VulkanCommandBuffer{State: COMMAND_BUFFER_STATE_RECORDING}

	called := false
	cb.Draw(3, 1)
	cb.record("after", func() error { called = true; return nil }, COMMAND_BUFFER_STATE_RECORDING)

	assert.False(t, called)
	err := cb.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draw")
}

func TestSetPrimitiveTopologyValidates(t *testing.T) {
	cb := &VulkanCommandBuffer{State: COMMAND_BUFFER_STATE_RECORDING}
	cb.SetPrimitiveTopology(renderer.PrimitiveTopology(7))
	assert.Error(t, cb.err)
}
