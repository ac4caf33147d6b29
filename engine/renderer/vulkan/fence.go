package vulkan

import (
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// nativeFence is the binary fence a VulkanFence counts on top of.
type nativeFence interface {
	// submit queues a signal of the fence behind all prior work on queue.
	submit(queue *VulkanQueue) error
	// signaled polls the fence without blocking.
	signaled() (bool, error)
	wait() error
	reset() error
	destroy()
}

// VulkanFence is a monotonically increasing counter backed by a single binary
// fence. Only the most recent Signal is tracked: signaling again while a
// value is pending first waits for that value.
type VulkanFence struct {
	mu        sync.Mutex
	native    nativeFence
	completed uint64
	pending   uint64
	inFlight  bool
}

var _ renderer.Fence = (*VulkanFence)(nil)

func NewFence(context *VulkanContext) (*VulkanFence, error) {
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	var handle vk.Fence
	if err := checkResult("vkCreateFence", vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &handle)); err != nil {
		return nil, err
	}
	return newVulkanFence(&vkFence{context: context, handle: handle}), nil
}

func newVulkanFence(native nativeFence) *VulkanFence {
	return &VulkanFence{native: native}
}

func (vf *VulkanFence) Destroy() {
	vf.mu.Lock()
	defer vf.mu.Unlock()
	if vf.native != nil {
		vf.native.destroy()
		vf.native = nil
	}
	vf.inFlight = false
}

func (vf *VulkanFence) signal(queue *VulkanQueue, value uint64) error {
	vf.mu.Lock()
	defer vf.mu.Unlock()

	if value <= vf.pending {
		return fmt.Errorf("signal %d after %d: %w", value, vf.pending, core.ErrFenceValueNotMonotonic)
	}
	if vf.inFlight {
		core.LogDebug("Fence value %d still pending, waiting before signaling %d.", vf.pending, value)
		if err := vf.settle(); err != nil {
			return err
		}
	}
	if err := vf.native.submit(queue); err != nil {
		return err
	}
	vf.pending = value
	vf.inFlight = true
	return nil
}

func (vf *VulkanFence) CompletedValue() (uint64, error) {
	vf.mu.Lock()
	defer vf.mu.Unlock()

	if !vf.inFlight {
		return vf.completed, nil
	}
	done, err := vf.native.signaled()
	if err != nil {
		return vf.completed, err
	}
	if done {
		if err := vf.native.reset(); err != nil {
			return vf.completed, err
		}
		vf.completed = vf.pending
		vf.inFlight = false
	}
	return vf.completed, nil
}

// WaitFor blocks without timeout. Waiting on a value never signaled is an error.
func (vf *VulkanFence) WaitFor(value uint64) error {
	vf.mu.Lock()
	defer vf.mu.Unlock()

	if vf.completed >= value {
		return nil
	}
	if value > vf.pending {
		return fmt.Errorf("wait for fence value %d, last signaled %d", value, vf.pending)
	}
	return vf.settle()
}

// settle waits for the pending value and rearms the native fence.
func (vf *VulkanFence) settle() error {
	if err := vf.native.wait(); err != nil {
		return err
	}
	if err := vf.native.reset(); err != nil {
		return err
	}
	vf.completed = vf.pending
	vf.inFlight = false
	return nil
}

type vkFence struct {
	context *VulkanContext
	handle  vk.Fence
}

func (f *vkFence) submit(queue *VulkanQueue) error {
	// An empty batch signals its fence once all earlier submissions are done.
	return queue.submit([]vk.SubmitInfo{{SType: vk.StructureTypeSubmitInfo}}, f.handle)
}

func (f *vkFence) signaled() (bool, error) {
	var status vk.Result
	lockPool.SafeCall(SynchronizationManagement, func() error {
		status = vk.GetFenceStatus(f.context.Device.LogicalDevice, f.handle)
		return nil
	})
	switch status {
	case vk.Success:
		return true, nil
	case vk.NotReady:
		return false, nil
	default:
		return false, checkResult("vkGetFenceStatus", status)
	}
}

func (f *vkFence) wait() error {
	return lockPool.SafeCall(SynchronizationManagement, func() error {
		result := vk.WaitForFences(f.context.Device.LogicalDevice, 1, []vk.Fence{f.handle}, vk.True, vk.MaxUint64)
		switch result {
		case vk.Success:
			return nil
		case vk.Timeout:
			core.LogWarn("vk_fence_wait - Timed out")
		case vk.ErrorDeviceLost:
			core.LogError("vk_fence_wait - VK_ERROR_DEVICE_LOST.")
		}
		if result == vk.Timeout {
			return fmt.Errorf("vkWaitForFences timed out")
		}
		return checkResult("vkWaitForFences", result)
	})
}

func (f *vkFence) reset() error {
	return lockPool.SafeCall(SynchronizationManagement, func() error {
		return checkResult("vkResetFences", vk.ResetFences(f.context.Device.LogicalDevice, 1, []vk.Fence{f.handle}))
	})
}

func (f *vkFence) destroy() {
	if f.handle != vk.NullFence {
		vk.DestroyFence(f.context.Device.LogicalDevice, f.handle, f.context.Allocator)
		f.handle = vk.NullFence
	}
}
