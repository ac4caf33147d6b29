package loaders

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/resources"
)

// ShaderLoader reads a compiled SPIR-V stage and returns its words.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, params interface{}) (*resources.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%s: %w", path, core.ErrShaderNotFound)
		}
		core.LogError("shader loader: %s", err)
		return nil, err
	}
	code, err := bytesToBytecode(data)
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		core.LogError("shader loader: %s", err)
		return nil, err
	}
	return &resources.Resource{
		Name:     resourceName(path, params),
		FullPath: path,
		Type:     resources.ResourceTypeShader,
		DataSize: uint64(len(data)),
		Data:     code,
	}, nil
}

func (sl *ShaderLoader) Unload(res *resources.Resource) error {
	if res != nil {
		res.Data = nil
		res.DataSize = 0
	}
	return nil
}

// bytesToBytecode converts a little-endian SPIR-V file into words. The length
// must be a non-zero multiple of four and the first word the SPIR-V magic.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("size %d is not a multiple of 4: %w", len(b), core.ErrInvalidShaderBinary)
	}
	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if byteCode[0] != resources.SPIRVMagic {
		return nil, fmt.Errorf("bad magic %#08x: %w", byteCode[0], core.ErrInvalidShaderBinary)
	}
	return byteCode, nil
}
