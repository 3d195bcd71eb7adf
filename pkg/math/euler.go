package math

import "math"

// Axis names a basis axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * (math.Pi / 180)
}

// sinCosDeg returns the sine and cosine of an angle in degrees. Quarter turns
// are exact, so a bone keyed to 90 degrees puts its vertices on exact
// coordinates.
func sinCosDeg(deg float32) (sin, cos float32) {
	d := math.Mod(float64(deg), 360)
	if d < 0 {
		d += 360
	}
	switch d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	s, c := math.Sincos(d * math.Pi / 180)
	return float32(s), float32(c)
}

// Rotate returns a right-handed rotation of deg degrees about one axis.
func Rotate(axis Axis, deg float32) Mat4 {
	s, c := sinCosDeg(deg)
	switch axis {
	case AxisX:
		return Mat4{0: 1, 5: c, 6: s, 9: -s, 10: c, 15: 1}
	case AxisY:
		return Mat4{0: c, 2: -s, 5: 1, 8: s, 10: c, 15: 1}
	default:
		return Mat4{0: c, 1: s, 4: -s, 5: c, 10: 1, 15: 1}
	}
}

// EulerDegrees builds a rotation from per-axis angles in degrees.
// X is applied first, then Y, then Z (R = Rz * Ry * Rx). Zero angles are
// skipped so an unrotated bone stays exactly the identity.
func EulerDegrees(rot [3]float32) Mat4 {
	m := Identity()
	for _, axis := range [...]Axis{AxisZ, AxisY, AxisX} {
		if rot[axis] != 0 {
			m = m.Mul(Rotate(axis, rot[axis]))
		}
	}
	return m
}

// Compose builds T * R * S from scale, Euler rotation (degrees) and translation.
func Compose(scale, rotDeg, trans [3]float32) Mat4 {
	m := Translate(trans[0], trans[1], trans[2]).Mul(EulerDegrees(rotDeg))
	if scale != [3]float32{1, 1, 1} {
		m = m.Mul(Scale(scale[0], scale[1], scale[2]))
	}
	return m
}
