package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a rigid placement (rotation then translation) in 3D space
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// Matrix returns the homogeneous local-to-parent matrix
func (t Transform) Matrix() mgl64.Mat4 {
	m := t.rotation().Mat4()
	m[12], m[13], m[14] = t.Position[0], t.Position[1], t.Position[2]
	return m
}

// InverseMatrix returns the parent-to-local matrix.
// The rotation is orthonormal so its inverse is its transpose.
func (t Transform) InverseMatrix() mgl64.Mat4 {
	rt := t.rotation().Mat4().Mat3().Transpose()
	p := rt.Mul3x1(t.Position).Mul(-1)

	m := rt.Mat4()
	m[12], m[13], m[14] = p[0], p[1], p[2]
	return m
}

func (t Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Rotate(p).Add(t.Position)
}

func (t Transform) InverseTransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.rotation().Conjugate().Rotate(p.Sub(t.Position))
}

// rotation treats the zero quaternion as identity so that zero-value transforms stay usable
func (t Transform) rotation() mgl64.Quat {
	if t.Rotation.W == 0 && t.Rotation.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return t.Rotation
}

// TransformPoint applies a homogeneous affine matrix to a point
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

// RotateVector applies only the linear part of an affine matrix
func RotateVector(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2],
	}
}

// UnrotateVector applies the transpose of the linear part of an affine matrix
func UnrotateVector(m mgl64.Mat4, v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}
