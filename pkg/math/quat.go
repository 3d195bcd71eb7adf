package math

import "math"

// Quat is a rotation quaternion with W as the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the quaternion of no rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns the rotation of angle radians about a unit axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math.Sincos(float64(angle) / 2)
	v := axis.Scale(float32(s))
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: float32(c)}
}

// QuatFromYawPitch returns a camera rotation: pitch degrees about X, then
// yaw degrees about Y.
func QuatFromYawPitch(yawDeg, pitchDeg float32) Quat {
	yaw := QuatFromAxisAngle(Vec3{Y: 1}, DegToRad(yawDeg))
	pitch := QuatFromAxisAngle(Vec3{X: 1}, DegToRad(pitchDeg))
	return yaw.Mul(pitch)
}

// Len returns the quaternion's norm.
func (q Quat) Len() float32 {
	return float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
}

// Normalize returns q scaled to unit length; a zero quaternion becomes the
// identity.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l == 0 {
		return QuatIdentity()
	}
	if l == 1 {
		return q
	}
	return Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Mul returns q * o, the rotation o followed by q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// ToMat4 returns the rotation matrix of q.
func (q Quat) ToMat4() Mat4 {
	n := q.Normalize()
	x2, y2, z2 := n.X+n.X, n.Y+n.Y, n.Z+n.Z
	xx, yy, zz := n.X*x2, n.Y*y2, n.Z*z2
	xy, xz, yz := n.X*y2, n.X*z2, n.Y*z2
	wx, wy, wz := n.W*x2, n.W*y2, n.W*z2

	return Mat4{
		1 - (yy + zz), xy + wz, xz - wy, 0,
		xy - wz, 1 - (xx + zz), yz + wx, 0,
		xz + wy, yz - wx, 1 - (xx + yy), 0,
		0, 0, 0, 1,
	}
}
