package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/trigon/engine/math"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// VulkanBuffer is a host-visible, coherent buffer written directly from the CPU.
type VulkanBuffer struct {
	context *VulkanContext
	Handle  vk.Buffer
	Memory  vk.DeviceMemory
	Size    vk.DeviceSize
	Usage   vk.BufferUsageFlagBits
}

var _ renderer.ConstantBuffer = (*VulkanBuffer)(nil)

func BufferCreate(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlagBits) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		context: context,
		Size:    size,
		Usage:   usage,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	err := lockPool.SafeCall(BufferManagement, func() error {
		return checkResult("vkCreateBuffer", vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &buffer.Handle))
	})
	if err != nil {
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()

	memoryFlags := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	memoryIndex, err := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryIndex,
	}
	if err := checkResult("vkAllocateMemory", vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &buffer.Memory)); err != nil {
		buffer.Destroy()
		return nil, err
	}
	if err := checkResult("vkBindBufferMemory", vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0)); err != nil {
		buffer.Destroy()
		return nil, err
	}
	return buffer, nil
}

func (vb *VulkanBuffer) Destroy() {
	if vb.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(vb.context.Device.LogicalDevice, vb.Memory, vb.context.Allocator)
		vb.Memory = vk.NullDeviceMemory
	}
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(vb.context.Device.LogicalDevice, vb.Handle, vb.context.Allocator)
		vb.Handle = vk.NullBuffer
	}
	vb.Size = 0
}

// LoadData copies data into the buffer at offset.
func (vb *VulkanBuffer) LoadData(offset vk.DeviceSize, data []byte) error {
	size := vk.DeviceSize(len(data))
	if offset+size > vb.Size {
		return fmt.Errorf("write of %d bytes at offset %d overflows buffer of %d bytes", size, offset, vb.Size)
	}
	return lockPool.SafeCall(BufferManagement, func() error {
		var pData unsafe.Pointer
		if err := checkResult("vkMapMemory", vk.MapMemory(vb.context.Device.LogicalDevice, vb.Memory, offset, size, 0, &pData)); err != nil {
			return err
		}
		vk.Memcopy(pData, data)
		vk.UnmapMemory(vb.context.Device.LogicalDevice, vb.Memory)
		return nil
	})
}

// Write stores the object-to-clip matrix. The caller must make sure the
// previous frame reading it has completed.
func (vb *VulkanBuffer) Write(objectToClip math.Mat4) error {
	return vb.LoadData(0, mat4Bytes(&objectToClip))
}

func mat4Bytes(m *math.Mat4) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&m.Data[0])), objectToClipSize)
}
