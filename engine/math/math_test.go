package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance float32 = 1e-5

func TestMat4MulAppliesLeftOperandFirst(t *testing.T) {
	rot := NewQuatFromAxisAngle(NewVec3Up(), K_HALF_PI, false).ToMat4()
	trans := NewMat4Translation(NewVec3(0, 0, 2.5))

	p := NewVec4(1, 0, 0, 1)
	composed := p.MulMat4(rot.Mul(trans))
	stepwise := p.MulMat4(rot).MulMat4(trans)
	assert.True(t, composed.Compare(stepwise, tolerance))

	// +X rotated 90 degrees about +Y lands on -Z, then moves 2.5 forward.
	assert.True(t, composed.Compare(NewVec4(0, 0, 1.5, 1), tolerance), "%+v", composed)
}

func TestQuaternionToMat4Identity(t *testing.T) {
	assert.True(t, NewQuatIdentity().ToMat4().Compare(NewMat4Identity(), tolerance))
}

func TestQuaternionMulAccumulatesAngle(t *testing.T) {
	step := NewQuatFromAxisAngle(NewVec3Up(), K_QUARTER_PI, false)
	twice := step.Mul(step)
	once := NewQuatFromAxisAngle(NewVec3Up(), K_HALF_PI, false)
	assert.True(t, twice.ToMat4().Compare(once.ToMat4(), tolerance))
}

func TestQuaternionFullTurnIsIdentityRotation(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3Up(), K_PI_2, false)
	// q == -identity, which describes the same rotation.
	assert.InDelta(t, 1.0, kabs(q.Dot(NewQuatIdentity())), 1e-6)
	assert.True(t, q.ToMat4().Compare(NewMat4Identity(), tolerance))
}

func TestNewQuatFromAxisAngleNormalizesAxis(t *testing.T) {
	q := NewQuatFromAxisAngle(NewVec3(0, 5, 0), K_HALF_PI, true)
	assert.InDelta(t, 1.0, q.Normal(), 1e-6)
}

func TestPerspectiveLHMapsNearAndFar(t *testing.T) {
	proj := NewMat4PerspectiveLH(DegToRad(45), 16.0/9.0, 0.1, 100)

	near := NewVec4(0, 0, 0.1, 1).MulMat4(proj)
	far := NewVec4(0, 0, 100, 1).MulMat4(proj)

	assert.InDelta(t, 0.0, near.Z/near.W, 1e-5)
	assert.InDelta(t, 1.0, far.Z/far.W, 1e-5)
	assert.Equal(t, float32(1), proj.Data[11])
}

func TestTransposed(t *testing.T) {
	mt := NewMat4Translation(NewVec3(1, 2, 3))
	tr := NewMat4Transposed(mt)
	assert.Equal(t, float32(1), tr.Data[3])
	assert.Equal(t, float32(2), tr.Data[7])
	assert.Equal(t, float32(3), tr.Data[11])
	assert.Equal(t, mt, NewMat4Transposed(tr))
}

func TestDegToRad(t *testing.T) {
	assert.InDelta(t, K_PI, DegToRad(180), 1e-6)
	assert.InDelta(t, 90.0, RadToDeg(K_HALF_PI), 1e-4)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, uint32(2), Clamp[uint32](5, 1, 2))
	assert.Equal(t, 1.5, Clamp(1.5, 1.0, 2.0))
	assert.Equal(t, -1, Clamp(-3, -1, 4))
}
