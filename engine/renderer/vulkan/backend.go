package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/platform"
	"github.com/spaghettifunk/trigon/engine/renderer"
)

// VulkanRenderer builds the one-time GPU state and hands it to the frame
// cycle through the renderer interfaces.
type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext

	validation bool
}

func New(p *platform.Platform, validation bool) *VulkanRenderer {
	return &VulkanRenderer{
		platform:   p,
		context:    &VulkanContext{},
		validation: validation,
	}
}

/**
 * @brief Creates every native object in dependency order: instance, surface,
 * device, swapchain, render pass, framebuffers, command buffer, fence,
 * buffers, descriptors, shader modules and pipeline.
 * @param vertexShader SPIR-V words of the vertex stage.
 * @param fragmentShader SPIR-V words of the fragment stage.
 */
func (vr *VulkanRenderer) Initialize(appName string, width, height uint32, vertexShader, fragmentShader []uint32) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height

	if err := vr.createInstance(appName); err != nil {
		return err
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateSurface(vr.context.Instance)
	if err != nil {
		return err
	}
	vr.context.Surface = surface
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		return fmt.Errorf("device: %w", err)
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, width, height, renderer.BufferCount)
	if err != nil {
		return fmt.Errorf("swapchain: %w", err)
	}
	vr.context.Swapchain = sc
	if sc.Extent.Width != width || sc.Extent.Height != height {
		core.LogWarn("Surface extent is %dx%d, rendering at %dx%d.", sc.Extent.Width, sc.Extent.Height, width, height)
	}

	rp, err := RenderpassCreate(vr.context, sc.Extent.Width, sc.Extent.Height)
	if err != nil {
		return fmt.Errorf("render pass: %w", err)
	}
	vr.context.Renderpass = rp

	// Swapchain framebuffers.
	fbs, err := FramebuffersCreate(vr.context)
	if err != nil {
		return fmt.Errorf("framebuffers: %w", err)
	}
	vr.context.Framebuffers = fbs

	vr.context.GraphicsQueue = NewVulkanQueue(vr.context)

	cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool)
	if err != nil {
		return fmt.Errorf("command buffer: %w", err)
	}
	vr.context.CommandBuffer = cb

	fence, err := NewFence(vr.context)
	if err != nil {
		return fmt.Errorf("fence: %w", err)
	}
	vr.context.Fence = fence

	// Geometry
	vertices := vertexBytes(TriangleVertices[:])
	vb, err := BufferCreate(vr.context, vk.DeviceSize(len(vertices)), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return fmt.Errorf("vertex buffer: %w", err)
	}
	vr.context.VertexBuffer = vb
	if err := vb.LoadData(0, vertices); err != nil {
		return fmt.Errorf("vertex upload: %w", err)
	}

	ub, err := BufferCreate(vr.context, vk.DeviceSize(objectToClipSize), vk.BufferUsageUniformBufferBit)
	if err != nil {
		return fmt.Errorf("uniform buffer: %w", err)
	}
	vr.context.UniformBuffer = ub

	descriptors, err := DescriptorsCreate(vr.context, ub)
	if err != nil {
		return fmt.Errorf("descriptors: %w", err)
	}
	vr.context.Descriptors = descriptors

	// Shaders
	vert, err := ShaderStageCreate(vr.context, vertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return fmt.Errorf("vertex shader: %w", err)
	}
	vr.context.ShaderStages = append(vr.context.ShaderStages, vert)
	frag, err := ShaderStageCreate(vr.context, fragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		return fmt.Errorf("fragment shader: %w", err)
	}
	vr.context.ShaderStages = append(vr.context.ShaderStages, frag)

	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(vr.context.ShaderStages))
	for _, s := range vr.context.ShaderStages {
		stages = append(stages, s.ShaderStageCreateInfo)
	}
	pipeline, err := NewGraphicsPipeline(vr.context, &VulkanPipelineConfig{
		Renderpass:           rp,
		Stride:               VertexStride,
		Attributes:           vertexAttributes(),
		DescriptorSetLayouts: []vk.DescriptorSetLayout{descriptors.Layout},
		Stages:               stages,
		Topology:             vk.PrimitiveTopologyTriangleList,
	})
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	vr.context.Pipeline = pipeline

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createInstance(appName string) error {
	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString(EngineName),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	// Obtain a list of required extensions
	requiredExtensions := vr.platform.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var requiredLayers []string
	if vr.validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)

		// If validation should be done, make sure the layer exists.
		core.LogInfo("Validation layers enabled. Enumerating...")
		available, err := instanceLayerNames()
		if err != nil {
			return err
		}
		if !containsName(available, ValidationLayerName) {
			err := fmt.Errorf("required validation layer is missing: %s", ValidationLayerName)
			core.LogError(err.Error())
			return err
		}
		core.LogInfo("All required validation layers are present.")
		requiredLayers = []string{ValidationLayerName}
	}

	core.LogDebug("Required extensions: %v", requiredExtensions)
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)
	createInfo.EnabledLayerCount = uint32(len(requiredLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredLayers)

	if err := checkResult("vkCreateInstance", vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance)); err != nil {
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	// Debugger
	if vr.validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := checkResult("vkCreateDebugReportCallbackEXT", vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, vr.context.Allocator, &dbg)); err != nil {
			return err
		}
		vr.context.debugReport = dbg
		core.LogDebug("Vulkan debugger created.")
	}
	return nil
}

// FrameContext exposes the objects the frame cycle records and submits with.
func (vr *VulkanRenderer) FrameContext() renderer.FrameContext {
	return renderer.FrameContext{
		SwapChain:   vr.context.Swapchain,
		Queue:       vr.context.GraphicsQueue,
		CommandList: vr.context.CommandBuffer,
		Constants:   vr.context.UniformBuffer,
		Fence:       vr.context.Fence,
		Width:       vr.context.Swapchain.Extent.Width,
		Height:      vr.context.Swapchain.Extent.Height,
	}
}

// WaitIdle blocks until the device has finished all submitted work.
func (vr *VulkanRenderer) WaitIdle() error {
	if vr.context.Device == nil || vr.context.Device.LogicalDevice == nil {
		return nil
	}
	return checkResult("vkDeviceWaitIdle", vk.DeviceWaitIdle(vr.context.Device.LogicalDevice))
}

// Shutdown destroys whatever Initialize managed to create, in reverse order.
func (vr *VulkanRenderer) Shutdown() error {
	ctx := vr.context
	if err := vr.WaitIdle(); err != nil {
		core.LogWarn("Device did not go idle before shutdown: %s", err)
	}

	if ctx.Pipeline != nil {
		ctx.Pipeline.Destroy(ctx)
		ctx.Pipeline = nil
	}
	for _, stage := range ctx.ShaderStages {
		stage.Destroy(ctx)
	}
	ctx.ShaderStages = nil
	if ctx.Descriptors != nil {
		ctx.Descriptors.Destroy(ctx)
		ctx.Descriptors = nil
	}
	if ctx.UniformBuffer != nil {
		ctx.UniformBuffer.Destroy()
		ctx.UniformBuffer = nil
	}
	if ctx.VertexBuffer != nil {
		ctx.VertexBuffer.Destroy()
		ctx.VertexBuffer = nil
	}
	if ctx.Fence != nil {
		ctx.Fence.Destroy()
		ctx.Fence = nil
	}
	if ctx.CommandBuffer != nil {
		ctx.CommandBuffer.Free()
		ctx.CommandBuffer = nil
	}
	ctx.GraphicsQueue = nil
	for _, fb := range ctx.Framebuffers {
		fb.Destroy(ctx)
	}
	ctx.Framebuffers = nil
	if ctx.Renderpass != nil {
		ctx.Renderpass.Destroy(ctx)
		ctx.Renderpass = nil
	}
	if ctx.Swapchain != nil {
		ctx.Swapchain.Destroy()
		ctx.Swapchain = nil
	}
	if ctx.Device != nil {
		DeviceDestroy(ctx)
		ctx.Device = nil
	}
	if ctx.Surface != vk.NullSurface {
		vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
		ctx.Surface = vk.NullSurface
	}
	if ctx.debugReport != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugReport, ctx.Allocator)
		ctx.debugReport = vk.NullDebugReportCallback
	}
	if ctx.Instance != nil {
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	}
	core.LogInfo("Vulkan renderer shut down.")
	return nil
}

func instanceLayerNames() ([]string, error) {
	var count uint32
	if err := checkResult("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	layers := make([]vk.LayerProperties, count)
	if err := checkResult("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range layers {
		layers[i].Deref()
		names = append(names, VulkanString(layers[i].LayerName[:]))
	}
	return names, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		core.LogDebug("DEBUG: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
