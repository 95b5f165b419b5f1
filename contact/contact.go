// Package contact holds the contact data produced by the mesh narrow phase and
// consumed by a constraint solver.
package contact

import (
	"math"

	"github.com/akmonengine/polysoup/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMaxPoints is the usual per-face contact budget of a solver
	DefaultMaxPoints = 4
	// MaxReducedPoints is the most points Reduce keeps: the deepest point and
	// the four tangent extremes
	MaxReducedPoints = 5
)

// ContactPoint is one point of a contact patch. Penetration is positive when the
// convex shape is inside the face and negative inside the skin band.
type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

// FaceContact gathers the contacts generated against one mesh face
type FaceContact struct {
	// Face is the index of the face in its static mesh
	Face int
	// HitDistance is the coarse distance the face was sorted by: a separation for
	// discrete queries, a sweep fraction for continuous ones.
	HitDistance float64
	// Plane is the face plane in mesh local space
	Plane actor.Plane
	// Normal is the world space face normal, pointing from the mesh to the convex shape
	Normal mgl64.Vec3
	// Points are in world space
	Points []ContactPoint
}

// MaxPenetration returns the deepest penetration of the patch, or -Inf without points
func (c *FaceContact) MaxPenetration() float64 {
	deepest := math.Inf(-1)
	for _, p := range c.Points {
		deepest = math.Max(deepest, p.Penetration)
	}
	return deepest
}

// TangentBasis returns two unit vectors orthogonal to normal and to each other
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}

// Reduce keeps at most limit points of a patch: the deepest one first, then the
// extremes along the tangent plane of normal. A patch of more than limit points
// never keeps more than MaxReducedPoints, whatever the limit. The result reuses
// the points slice.
func Reduce(points []ContactPoint, normal mgl64.Vec3, limit int) []ContactPoint {
	if limit <= 0 {
		return points[:0]
	}
	if len(points) <= limit {
		return points
	}

	tangent1, tangent2 := TangentBasis(normal)

	deepest := 0
	minX, maxX, minY, maxY := 0, 0, 0, 0
	minXval, maxXval := math.Inf(1), math.Inf(-1)
	minYval, maxYval := math.Inf(1), math.Inf(-1)

	for i, p := range points {
		if p.Penetration > points[deepest].Penetration {
			deepest = i
		}

		x := p.Position.Dot(tangent1)
		y := p.Position.Dot(tangent2)

		if x < minXval {
			minXval, minX = x, i
		}
		if x > maxXval {
			maxXval, maxX = x, i
		}
		if y < minYval {
			minYval, minY = y, i
		}
		if y > maxYval {
			maxYval, maxY = y, i
		}
	}

	var keep [MaxReducedPoints]int
	n := 0
	for _, idx := range [...]int{deepest, minX, maxX, minY, maxY} {
		duplicate := false
		for _, k := range keep[:n] {
			if k == idx {
				duplicate = true
				break
			}
		}
		if !duplicate {
			keep[n] = idx
			n++
		}
	}
	n = min(n, limit)

	var selected [MaxReducedPoints]ContactPoint
	for i := 0; i < n; i++ {
		selected[i] = points[keep[i]]
	}
	return append(points[:0], selected[:n]...)
}
