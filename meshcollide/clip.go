package meshcollide

import (
	"math"

	"github.com/akmonengine/polysoup/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// clipMergeDistance is the distance below which two clip points are merged
const clipMergeDistance = 1e-9

// PlaneIntersection walks the edge loop of the face index[start:start+count] over a
// strided vertex buffer and appends to out the points where the loop crosses plane.
// Only the first three scalars of each vertex record are read.
//
// A convex face crossing the plane yields two points; a face on one side yields none.
// On error no points are appended.
func PlaneIntersection(vertex []float64, index []int32, start, count, stride int, plane actor.Plane, out []mgl64.Vec3) ([]mgl64.Vec3, error) {
	if stride < 3 {
		return out, errors.Wrapf(ErrInvalidFace, "vertex stride %d", stride)
	}
	if count < 1 || start < 0 || start+count > len(index) {
		return out, errors.Wrapf(ErrInvalidFace, "face range [%d, +%d) over %d indices", start, count, len(index))
	}
	if count > MaxClipPoints {
		return out, errors.Wrapf(ErrCapacityExceeded, "face with %d vertices, clip limit is %d", count, MaxClipPoints)
	}

	face := index[start : start+count]
	for _, i := range face {
		if i < 0 || int(i)*stride+2 >= len(vertex) {
			return out, errors.Wrapf(ErrInvalidFace, "vertex %d outside a buffer of %d records", i, len(vertex)/stride)
		}
	}

	p0 := stridedVertex(vertex, face[count-1], stride)
	side0 := plane.Evaluate(p0)
	for _, i := range face {
		p1 := stridedVertex(vertex, i, stride)
		side1 := plane.Evaluate(p1)

		var crossing bool
		if side0 < 0 {
			crossing = side1 >= 0
		} else {
			crossing = side1 <= 0
		}

		if crossing {
			dp := p1.Sub(p0)
			t := plane.Normal.Dot(dp)
			if math.Abs(t) < ClipEpsilon {
				if t < 0 {
					t = -ClipEpsilon
				} else {
					t = ClipEpsilon
				}
			}
			out = append(out, p0.Sub(dp.Mul(side0/t)))
		}

		p0, side0 = p1, side1
	}

	return out, nil
}

func stridedVertex(vertex []float64, i int32, stride int) mgl64.Vec3 {
	j := int(i) * stride
	return mgl64.Vec3{vertex[j], vertex[j+1], vertex[j+2]}
}

// ClipPolygon clips a convex polygon against each plane in turn, keeping the part
// on the non-negative side of all of them, and returns the result appended to out.
func ClipPolygon(polygon []mgl64.Vec3, planes []actor.Plane, out []mgl64.Vec3) ([]mgl64.Vec3, error) {
	if len(polygon) > MaxClipPoints {
		return out, errors.Wrapf(ErrCapacityExceeded, "polygon with %d points, clip limit is %d", len(polygon), MaxClipPoints)
	}

	var front, back [MaxClipPoints]mgl64.Vec3
	input := front[:copy(front[:], polygon)]

	for _, plane := range planes {
		if len(input) == 0 {
			break
		}

		output := back[:0]
		for i, current := range input {
			next := input[(i+1)%len(input)]
			currentDist := plane.Evaluate(current)
			nextDist := plane.Evaluate(next)

			const tolerance = 1e-6

			var err error
			if currentDist >= -tolerance {
				if output, err = appendDistinct(output, current); err != nil {
					return out, err
				}
			}
			if (currentDist >= -tolerance) != (nextDist >= -tolerance) {
				if output, err = appendDistinct(output, segmentPlaneIntersection(current, next, currentDist, nextDist)); err != nil {
					return out, err
				}
			}
		}
		if n := len(output); n > 1 && samePoint(output[n-1], output[0]) {
			output = output[:n-1]
		}

		// the result becomes the input of the next plane
		n := copy(front[:], output)
		input = front[:n]
	}

	return append(out, input...), nil
}

// appendDistinct skips a point that repeats the previous one, as happens when a
// vertex lies on the plane
func appendDistinct(polygon []mgl64.Vec3, p mgl64.Vec3) ([]mgl64.Vec3, error) {
	if n := len(polygon); n > 0 && samePoint(polygon[n-1], p) {
		return polygon, nil
	}
	if len(polygon) == MaxClipPoints {
		return polygon, errors.Wrapf(ErrCapacityExceeded, "clip produced more than %d points", MaxClipPoints)
	}
	return append(polygon, p), nil
}

// samePoint compares by absolute distance, whatever the magnitude of the coordinates
func samePoint(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() < clipMergeDistance
}

func segmentPlaneIntersection(p1, p2 mgl64.Vec3, d1, d2 float64) mgl64.Vec3 {
	denom := d1 - d2
	if math.Abs(denom) < 1e-12 {
		return p1
	}

	t := math.Max(0, math.Min(1, d1/denom))
	return p1.Add(p2.Sub(p1).Mul(t))
}
