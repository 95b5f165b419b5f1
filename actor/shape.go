package actor

import "github.com/go-gl/mathgl/mgl64"

// Convex is the interface that all moving collision shapes must implement.
// Implementations are immutable once built and may be shared by many instances.
type Convex interface {
	// Support returns the farthest point of the shape along direction, in local space
	Support(direction mgl64.Vec3) mgl64.Vec3
	// GetContactFeature returns the vertices of the feature (face, edge or point)
	// most aligned with direction, in local space
	GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3
	// CalcAABB calculates the axis-aligned bounding box of the shape mapped by matrix
	CalcAABB(matrix mgl64.Mat4) AABB
}

// Sphere represents a spherical collision shape
type Sphere struct {
	Radius float64
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	length := direction.Len()
	if length < 1e-12 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Mul(s.Radius / length)
}

func (s *Sphere) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Support(direction)}
}

// CalcAABB bounds the (possibly scaled) sphere: each row of the linear part
// stretches the radius by its length.
func (s *Sphere) CalcAABB(matrix mgl64.Mat4) AABB {
	center := TransformPoint(matrix, mgl64.Vec3{})

	var extent mgl64.Vec3
	for row := 0; row < 3; row++ {
		r := mgl64.Vec3{matrix[row], matrix[4+row], matrix[8+row]}
		extent[row] = s.Radius * r.Len()
	}

	return AABB{Min: center.Sub(extent), Max: center.Add(extent)}
}
