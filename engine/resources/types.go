package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Files the asset manager does not know how to load. */
	ResourceTypeNone ResourceType = iota
	/** @brief Binary resource type. */
	ResourceTypeBinary
	/** @brief Compiled SPIR-V shader stage. */
	ResourceTypeShader
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeShader:
		return "shader"
	default:
		return "none"
	}
}

/** @brief SPIR-V magic number, the first word of every module. */
const SPIRVMagic uint32 = 0x07230203

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	Type     ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/**
	 * @brief The resource data: []byte for binary resources, []uint32
	 * words for shaders.
	 */
	Data interface{}
}

// ShaderCode returns the SPIR-V words of a shader resource.
func (r *Resource) ShaderCode() ([]uint32, bool) {
	if r == nil || r.Type != ResourceTypeShader {
		return nil, false
	}
	code, ok := r.Data.([]uint32)
	return code, ok
}
