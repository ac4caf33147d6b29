package scene

import (
	"sync"

	"github.com/spaghettifunk/trigon/engine/math"
)

const (
	// RotationRate is the spin speed in radians per second divided by π.
	// 0.5 means one full revolution every 4 seconds.
	RotationRate float32 = 0.5

	FieldOfViewDegrees float32 = 45.0
	NearClip           float32 = 0.1
	FarClip            float32 = 100.0
)

// Translation is the fixed offset pushing the triangle in front of the camera.
var Translation = math.Vec3{X: 0, Y: 0, Z: 2.5}

/**
 * @brief Transform holds the triangle orientation together with the fixed
 * translation and projection it is drawn with. Only the orientation changes
 * after construction.
 */
type Transform struct {
	mu          sync.RWMutex
	orientation math.Quaternion
	translation math.Mat4
	projection  math.Mat4
}

/**
 * @brief Creates a transform at identity orientation.
 * @param aspectRatio Render width divided by render height.
 * @param flipY Negates the projection Y axis, needed when clip space Y points down.
 */
func NewTransform(aspectRatio float32, flipY bool) *Transform {
	proj := math.NewMat4PerspectiveLH(math.DegToRad(FieldOfViewDegrees), aspectRatio, NearClip, FarClip)
	if flipY {
		proj.Data[5] = -proj.Data[5]
	}
	return &Transform{
		orientation: math.NewQuatIdentity(),
		translation: math.NewMat4Translation(Translation),
		projection:  proj,
	}
}

// Advance spins the orientation about the vertical axis by π * RotationRate * deltaTime.
// deltaTime is not validated.
func (t *Transform) Advance(deltaTime float64) {
	step := math.NewQuatFromAxisAngle(math.NewVec3Up(), math.K_PI*RotationRate*float32(deltaTime), false)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.orientation = t.orientation.Mul(step).Normalize()
}

func (t *Transform) Orientation() math.Quaternion {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.orientation
}

// World returns rotation * translation.
func (t *Transform) World() math.Mat4 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.orientation.ToMat4().Mul(t.translation)
}

func (t *Transform) Projection() math.Mat4 {
	return t.projection
}

/**
 * @brief Returns rotation * translation * projection, transposed so that a
 * shader reading it column-major applies it to column vectors. This is the
 * value written to the per-frame constant buffer.
 */
func (t *Transform) ObjectToClip() math.Mat4 {
	return math.NewMat4Transposed(t.World().Mul(t.projection))
}
