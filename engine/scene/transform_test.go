package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/trigon/engine/math"
)

const (
	aspect    float32 = 1280.0 / 720.0
	tolerance float32 = 1e-4
)

func sameRotation(t *testing.T, want, got math.Quaternion) {
	t.Helper()
	// q and -q describe the same rotation.
	dot := want.Dot(got)
	if dot < 0 {
		dot = -dot
	}
	assert.InDelta(t, 1.0, dot, 1e-5, "want %+v got %+v", want, got)
}

func TestTransformStartsAtIdentity(t *testing.T) {
	tr := NewTransform(aspect, false)
	assert.Equal(t, math.NewQuatIdentity(), tr.Orientation())
	assert.True(t, tr.World().Compare(math.NewMat4Translation(Translation), tolerance))
}

func TestFullRevolutionReturnsToIdentity(t *testing.T) {
	sequences := [][]float64{
		{4.0},
		{1, 1, 1, 1},
		{0.5, 0.25, 0.25, 2.0, 0.0, 1.0},
	}
	for _, seq := range sequences {
		tr := NewTransform(aspect, false)
		for _, dt := range seq {
			tr.Advance(dt)
		}
		sameRotation(t, math.NewQuatIdentity(), tr.Orientation())
	}

	tr := NewTransform(aspect, false)
	for i := 0; i < 240; i++ {
		tr.Advance(1.0 / 60.0)
	}
	sameRotation(t, math.NewQuatIdentity(), tr.Orientation())
}

func TestAdvanceComposesLikeASingleStep(t *testing.T) {
	stepped := NewTransform(aspect, false)
	for i := 0; i < 10; i++ {
		stepped.Advance(0.137)
	}
	single := NewTransform(aspect, false)
	single.Advance(1.37)

	sameRotation(t, single.Orientation(), stepped.Orientation())
	assert.True(t, single.ObjectToClip().Compare(stepped.ObjectToClip(), tolerance))
}

func TestAdvanceOneSecondIsQuarterTurn(t *testing.T) {
	tr := NewTransform(aspect, false)
	tr.Advance(1.0)

	want := math.NewQuatFromAxisAngle(math.NewVec3Up(), math.DegToRad(90), false)
	sameRotation(t, want, tr.Orientation())

	// +X ends up on -Z.
	p := math.NewVec4(1, 0, 0, 1).MulMat4(tr.Orientation().ToMat4())
	assert.True(t, p.Compare(math.NewVec4(0, 0, -1, 1), tolerance), "%+v", p)
}

func TestObjectToClipAfterFullRevolution(t *testing.T) {
	for _, flip := range []bool{false, true} {
		tr := NewTransform(aspect, flip)
		tr.Advance(4.0)

		trans := math.NewMat4Translation(math.NewVec3(0, 0, 2.5))
		proj := math.NewMat4PerspectiveLH(math.DegToRad(45), aspect, 0.1, 100)
		if flip {
			proj.Data[5] = -proj.Data[5]
		}
		want := math.NewMat4Transposed(math.NewMat4Identity().Mul(trans).Mul(proj))

		assert.True(t, want.Compare(tr.ObjectToClip(), tolerance), "flip=%v", flip)
	}
}

func TestOriginProjectsInsideClipVolume(t *testing.T) {
	tr := NewTransform(aspect, true)
	clip := math.NewVec4(0, 0, 0, 1).MulMat4(math.NewMat4Transposed(tr.ObjectToClip()))
	require.Greater(t, clip.W, float32(0))

	depth := clip.Z / clip.W
	assert.Greater(t, depth, float32(0))
	assert.Less(t, depth, float32(1))
}

func TestFlipYNegatesOnlyYScale(t *testing.T) {
	plain := NewTransform(aspect, false).Projection()
	flipped := NewTransform(aspect, true).Projection()
	assert.Equal(t, -plain.Data[5], flipped.Data[5])
	plain.Data[5] = flipped.Data[5]
	assert.Equal(t, plain, flipped)
}
