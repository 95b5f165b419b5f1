package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is defined by the equation: Normal · p + Distance = 0
// where Normal is normalized and Distance is the signed offset from the origin.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// NewPlaneFromPoints builds the plane through a, b, c with the normal given by
// the right-hand rule on (b-a) x (c-a). ok is false for degenerate triangles.
func NewPlaneFromPoints(a, b, c mgl64.Vec3) (plane Plane, ok bool) {
	normal := b.Sub(a).Cross(c.Sub(a))
	length := normal.Len()
	if length < 1e-12 {
		return Plane{Normal: mgl64.Vec3{0, 0, 1}, Distance: -a.Z()}, false
	}
	normal = normal.Mul(1.0 / length)

	return Plane{Normal: normal, Distance: -normal.Dot(a)}, true
}

// NewPlaneFromPolygon builds the plane of a convex polygon using Newell's method,
// which stays stable when the first vertices are nearly collinear.
func NewPlaneFromPolygon(points []mgl64.Vec3) (plane Plane, ok bool) {
	if len(points) < 3 {
		return Plane{}, false
	}

	var normal, centroid mgl64.Vec3
	for i, p0 := range points {
		p1 := points[(i+1)%len(points)]
		normal[0] += (p0.Y() - p1.Y()) * (p0.Z() + p1.Z())
		normal[1] += (p0.Z() - p1.Z()) * (p0.X() + p1.X())
		normal[2] += (p0.X() - p1.X()) * (p0.Y() + p1.Y())
		centroid = centroid.Add(p0)
	}
	centroid = centroid.Mul(1.0 / float64(len(points)))

	length := normal.Len()
	if length < 1e-12 {
		return Plane{Normal: mgl64.Vec3{0, 0, 1}, Distance: -centroid.Z()}, false
	}
	normal = normal.Mul(1.0 / length)

	return Plane{Normal: normal, Distance: -normal.Dot(centroid)}, true
}

// Evaluate returns the signed distance of p from the plane
func (p Plane) Evaluate(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.Distance
}

func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Mul(-1), Distance: -p.Distance}
}

// Offset moves the plane along its normal
func (p Plane) Offset(d float64) Plane {
	return Plane{Normal: p.Normal, Distance: p.Distance - d}
}

// Project returns the closest point on the plane
func (p Plane) Project(point mgl64.Vec3) mgl64.Vec3 {
	return point.Sub(p.Normal.Mul(p.Evaluate(point)))
}

// Transform maps the plane through an affine matrix whose linear part may carry scale
func (p Plane) Transform(m mgl64.Mat4) Plane {
	point := TransformPoint(m, p.Normal.Mul(-p.Distance))

	// normals transform with the inverse transpose
	linear := m.Mat3()
	if math.Abs(linear.Det()) < 1e-15 {
		return p
	}
	normal := linear.Inv().Transpose().Mul3x1(p.Normal).Normalize()

	return Plane{Normal: normal, Distance: -normal.Dot(point)}
}
