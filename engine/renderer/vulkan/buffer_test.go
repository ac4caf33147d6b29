package vulkan

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/trigon/engine/math"
)

func TestMat4BytesLayout(t *testing.T) {
	m := math.NewMat4Identity()
	m.Data[12] = 2.5

	b := mat4Bytes(&m)
	require.Len(t, b, objectToClipSize)

	at := func(i int) float32 {
		return stdmath.Float32frombits(binary.NativeEndian.Uint32(b[i*4:]))
	}
	assert.Equal(t, float32(1), at(0))
	assert.Equal(t, float32(0), at(1))
	assert.Equal(t, float32(1), at(5))
	assert.Equal(t, float32(2.5), at(12))
	assert.Equal(t, float32(1), at(15))
}
