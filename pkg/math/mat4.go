package math

// Mat4 is a column-major 4x4 matrix: element (row r, column c) is m[c*4+r]
// and the translation sits in m[12], m[13], m[14]. Every matrix built by this
// package is affine.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	return Mat4{0: x, 5: y, 10: z, 15: 1}
}

// Mul returns m * o, so o is applied first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		b0, b1, b2, b3 := o[c*4], o[c*4+1], o[c*4+2], o[c*4+3]
		for r := 0; r < 4; r++ {
			out[c*4+r] = m[r]*b0 + m[4+r]*b1 + m[8+r]*b2 + m[12+r]*b3
		}
	}
	return out
}

// TransformPoint applies the matrix to a point.
func (m Mat4) TransformPoint(p [3]float32) [3]float32 {
	d := m.TransformDirection(p)
	return [3]float32{d[0] + m[12], d[1] + m[13], d[2] + m[14]}
}

// TransformDirection applies the upper 3x3 to a direction.
func (m Mat4) TransformDirection(d [3]float32) [3]float32 {
	return [3]float32{
		m[0]*d[0] + m[4]*d[1] + m[8]*d[2],
		m[1]*d[0] + m[5]*d[1] + m[9]*d[2],
		m[2]*d[0] + m[6]*d[1] + m[10]*d[2],
	}
}

// Inverse returns the inverse of an affine matrix. A singular matrix, such
// as a bone scaled to zero on one axis, yields the identity.
func (m Mat4) Inverse() Mat4 {
	a, b, c := m[0], m[4], m[8]
	d, e, f := m[1], m[5], m[9]
	g, h, i := m[2], m[6], m[10]

	c0 := e*i - f*h
	c1 := f*g - d*i
	c2 := d*h - e*g
	det := a*c0 + b*c1 + c*c2
	if det == 0 {
		return Identity()
	}
	inv := 1 / det

	var out Mat4
	out[0], out[4], out[8] = c0*inv, (c*h-b*i)*inv, (b*f-c*e)*inv
	out[1], out[5], out[9] = c1*inv, (a*i-c*g)*inv, (c*d-a*f)*inv
	out[2], out[6], out[10] = c2*inv, (b*g-a*h)*inv, (a*e-b*d)*inv

	t := out.TransformDirection([3]float32{m[12], m[13], m[14]})
	out[12], out[13], out[14], out[15] = -t[0], -t[1], -t[2], 1
	return out
}

// Translation returns the translation column.
func (m Mat4) Translation() [3]float32 {
	return [3]float32{m[12], m[13], m[14]}
}

// AxisScale returns the length of each basis column of the upper 3x3.
func (m Mat4) AxisScale() [3]float32 {
	var s [3]float32
	for c := range s {
		s[c] = Vec3{m[c*4], m[c*4+1], m[c*4+2]}.Length()
	}
	return s
}

// Float64 widens the matrix for double precision consumers such as glTF.
func (m Mat4) Float64() [16]float64 {
	var out [16]float64
	for i, v := range m {
		out[i] = float64(v)
	}
	return out
}

// NearlyEqual reports whether every element of m and o differs by at most eps.
func (m Mat4) NearlyEqual(o Mat4, eps float32) bool {
	for i := range m {
		if d := m[i] - o[i]; d > eps || d < -eps {
			return false
		}
	}
	return true
}
