package math

import (
	"math"
	"testing"
)

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	if l := n.Len(); math.Abs(float64(l-1)) > 1e-6 {
		t.Errorf("normalized length = %v, want 1", l)
	}
	if (Quat{}).Normalize() != QuatIdentity() {
		t.Error("zero quaternion should normalize to identity")
	}
}

func TestQuatConjugateUndoesRotation(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/3))
	r := q.Mul(q.Conjugate())
	if math.Abs(float64(r.W-1)) > 1e-6 || math.Abs(float64(r.Y)) > 1e-6 {
		t.Errorf("q * conj(q) = %+v, want identity", r)
	}
}

func TestQuatToMat4(t *testing.T) {
	tests := []struct {
		name string
		q    Quat
		want Mat4
	}{
		{"identity", QuatIdentity(), Identity()},
		{"quarter turn about y", QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2)), Rotate(AxisY, 90)},
		{"sixth turn about x", QuatFromAxisAngle(Vec3{X: 1}, float32(math.Pi/3)), Rotate(AxisX, 60)},
		{"unnormalized", Quat{Z: 2, W: 2}, Rotate(AxisZ, 90)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.ToMat4(); !got.NearlyEqual(tt.want, 1e-5) {
				t.Errorf("ToMat4 = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{Z: 1}, float32(math.Pi/2))
	b := QuatFromAxisAngle(Vec3{X: 1}, float32(math.Pi/2))
	want := Rotate(AxisZ, 90).Mul(Rotate(AxisX, 90))
	if got := a.Mul(b).ToMat4(); !got.NearlyEqual(want, 1e-5) {
		t.Errorf("(a*b).ToMat4 = %v, want %v", got, want)
	}
}

func TestQuatFromYawPitch(t *testing.T) {
	want := Rotate(AxisY, 30).Mul(Rotate(AxisX, -45))
	if got := QuatFromYawPitch(30, -45).ToMat4(); !got.NearlyEqual(want, 1e-5) {
		t.Errorf("QuatFromYawPitch(30, -45) = %v, want %v", got, want)
	}
	if got := QuatFromYawPitch(0, 0); got != QuatIdentity() {
		t.Errorf("QuatFromYawPitch(0, 0) = %+v, want identity", got)
	}
}
