package assets

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/trigon/engine/core"
	"github.com/spaghettifunk/trigon/engine/resources"
)

func writeShader(t *testing.T, dir, name string) string {
	t.Helper()
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b, resources.SPIRVMagic)
	binary.LittleEndian.PutUint32(b[4:], 0x00010000)
	path := filepath.Join(dir, shaderDir, name+".spv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func newManager(t *testing.T, dir string) *AssetManager {
	t.Helper()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	t.Cleanup(func() { am.Shutdown() })
	return am
}

func TestAssetManagerIndexesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeShader(t, dir, "triangle_debug.vert")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	am := newManager(t, dir)

	assert.Equal(t, 1, am.Count())
	info, ok := am.Asset(path)
	require.True(t, ok)
	assert.Equal(t, resources.ResourceTypeShader, info.Type)
}

func TestAssetManagerLoadShader(t *testing.T) {
	dir := t.TempDir()
	writeShader(t, dir, "triangle_debug.frag")
	am := newManager(t, dir)

	res, err := am.LoadAsset("triangle_debug.frag", resources.ResourceTypeShader, nil)
	require.NoError(t, err)
	code, ok := res.ShaderCode()
	require.True(t, ok)
	assert.Equal(t, []uint32{resources.SPIRVMagic, 0x00010000}, code)

	require.NoError(t, am.UnloadAsset(res))
	assert.Nil(t, res.Data)
}

func TestAssetManagerMissingShader(t *testing.T) {
	am := newManager(t, t.TempDir())

	_, err := am.LoadAsset("triangle_release.vert", resources.ResourceTypeShader, nil)
	assert.ErrorIs(t, err, core.ErrShaderNotFound)
}

func TestAssetManagerUnknownType(t *testing.T) {
	am := newManager(t, t.TempDir())

	_, err := am.LoadAsset("anything", resources.ResourceTypeNone, nil)
	assert.ErrorIs(t, err, core.ErrUnknownAssetType)
}

func TestAssetManagerClosed(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(t.TempDir()))
	require.NoError(t, am.Shutdown())

	assert.ErrorIs(t, am.Shutdown(), core.ErrAssetManagerClosed)
	_, err = am.LoadAsset("x", resources.ResourceTypeShader, nil)
	assert.ErrorIs(t, err, core.ErrAssetManagerClosed)
}

func TestAssetManagerPublishesChanges(t *testing.T) {
	core.EventInitialize()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, shaderDir), 0o755))
	am := newManager(t, dir)

	var mu sync.Mutex
	var changed []string
	listener := &struct{ name string }{"asset-test"}
	require.True(t, core.EventRegister(core.EVENT_CODE_ASSET_CHANGED, listener,
		func(code core.SystemEventCode, sender, l interface{}, data core.EventContext) bool {
			mu.Lock()
			changed = append(changed, data.Data.C[0])
			mu.Unlock()
			return false
		}))
	defer core.EventUnregister(core.EVENT_CODE_ASSET_CHANGED, listener)

	path := writeShader(t, dir, "triangle_debug.vert")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range changed {
			if p == path {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	_, ok := am.Asset(path)
	assert.True(t, ok)
}
