package loaders

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/resources"
)

func spirvWords(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestShaderLoaderReadsWords(t *testing.T) {
	path := writeFile(t, "triangle_debug.vert.spv", spirvWords(resources.SPIRVMagic, 0x00010000, 42))

	res, err := (&ShaderLoader{}).Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "triangle_debug", res.Name)
	assert.Equal(t, resources.ResourceTypeShader, res.Type)
	assert.Equal(t, uint64(12), res.DataSize)

	code, ok := res.ShaderCode()
	require.True(t, ok)
	assert.Equal(t, []uint32{resources.SPIRVMagic, 0x00010000, 42}, code)
}

func TestShaderLoaderRejectsTruncatedFile(t *testing.T) {
	data := append(spirvWords(resources.SPIRVMagic), 0x01, 0x02)
	path := writeFile(t, "bad.spv", data)

	_, err := (&ShaderLoader{}).Load(path, nil)
	assert.ErrorIs(t, err, core.ErrInvalidShaderBinary)
}

func TestShaderLoaderRejectsBadMagic(t *testing.T) {
	path := writeFile(t, "bad.spv", spirvWords(0xdeadbeef, 1))

	_, err := (&ShaderLoader{}).Load(path, nil)
	assert.ErrorIs(t, err, core.ErrInvalidShaderBinary)
}

func TestShaderLoaderEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.spv", nil)

	_, err := (&ShaderLoader{}).Load(path, nil)
	assert.ErrorIs(t, err, core.ErrInvalidShaderBinary)
}

func TestShaderLoaderMissingFile(t *testing.T) {
	_, err := (&ShaderLoader{}).Load(filepath.Join(t.TempDir(), "missing.spv"), nil)
	assert.ErrorIs(t, err, core.ErrShaderNotFound)
}

func TestBinaryLoader(t *testing.T) {
	path := writeFile(t, "blob.bin", []byte{1, 2, 3})

	res, err := (&BinaryLoader{}).Load(path, map[string]string{"name": "blob"})
	require.NoError(t, err)
	assert.Equal(t, "blob", res.Name)
	assert.Equal(t, []byte{1, 2, 3}, res.Data)

	require.NoError(t, (&BinaryLoader{}).Unload(res))
	assert.Nil(t, res.Data)
}
