package meshcollide

import (
	"math"

	"github.com/akmonengine/polysoup/actor"
	"github.com/akmonengine/polysoup/contact"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// FaceAlignment is the minimum |cos| between a convex face and a mesh face for
// the two to be clipped against each other as touching faces.
const FaceAlignment = 0.7

const prismTolerance = 1e-6

// FaceContacts generates the mesh space contact points between the convex shape
// and the mesh face of candidate c, and appends them to out. It also returns the
// face plane. Points farther from the face than the skin thickness are dropped.
//
// A convex face aligned with the mesh face is clipped against the face side
// planes. A tilted convex face contributes its vertices inside the skin band plus
// the points where its boundary crosses the band. Other features contribute their
// points. Every point must project inside the mesh face.
func FaceContacts(d *Descriptor, convex *actor.ConvexInstance, mesh *actor.StaticMesh, c Candidate, out []contact.ContactPoint) ([]contact.ContactPoint, actor.Plane, error) {
	if !d.built {
		return out, actor.Plane{}, errors.Wrap(ErrInvalidQuery, "descriptor is not built")
	}

	f, ok := mesh.FaceAt(c.IndexStart)
	if !ok || mesh.Faces[f].IndexCount != c.IndexCount {
		return out, actor.Plane{}, errors.Wrapf(ErrInvalidFace, "no face at index range [%d, +%d)", c.IndexStart, c.IndexCount)
	}

	plane := mesh.FacePlane(f)
	matrix := d.PoseMatrix(c.HitDistance)
	skin := d.SkinThickness
	toward := plane.Normal.Mul(-1)

	deepest := convex.Support(matrix, toward)
	if plane.Evaluate(deepest) > skin+prismTolerance {
		return out, plane, nil
	}

	d.facePts = mesh.FaceVertices(f, d.facePts[:0])
	d.sides = sidePlanes(d.facePts, plane.Normal, d.sides[:0])
	d.feature = convex.ContactFeature(matrix, toward, d.feature[:0])

	start := len(out)

	switch {
	case len(d.feature) >= 3 && isAligned(d.feature, plane.Normal):
		clipped, err := ClipPolygon(d.feature, d.sides, d.crossings[:0])
		if err != nil {
			return out[:start], plane, err
		}
		d.crossings = clipped
		for _, p := range clipped {
			out = d.appendContact(out, plane, p)
		}

	case len(d.feature) >= 3:
		d.packFeature()
		crossings, err := PlaneIntersection(d.packed, d.identity, 0, len(d.feature), 3, plane.Offset(skin), d.crossings[:0])
		if err != nil {
			return out[:start], plane, err
		}
		d.crossings = crossings
		for _, p := range d.feature {
			out = d.appendContact(out, plane, p)
		}
		for _, p := range crossings {
			out = d.appendContact(out, plane, p)
		}

	default:
		for _, p := range d.feature {
			out = d.appendContact(out, plane, p)
		}
	}

	if len(out) == start {
		out = d.appendContact(out, plane, deepest)
	}

	return out, plane, nil
}

func (d *Descriptor) appendContact(out []contact.ContactPoint, plane actor.Plane, p mgl64.Vec3) []contact.ContactPoint {
	depth := plane.Evaluate(p)
	if depth > d.SkinThickness+prismTolerance {
		return out
	}
	for _, side := range d.sides {
		if side.Evaluate(p) < -prismTolerance {
			return out
		}
	}
	return append(out, contact.ContactPoint{Position: p, Penetration: -depth})
}

// packFeature lays the feature out as a stride 3 vertex buffer with an identity index
func (d *Descriptor) packFeature() {
	d.packed = d.packed[:0]
	for _, p := range d.feature {
		d.packed = append(d.packed, p[0], p[1], p[2])
	}
	for len(d.identity) < len(d.feature) {
		d.identity = append(d.identity, int32(len(d.identity)))
	}
}

// sidePlanes builds the inward facing planes through the edges of a face wound
// counter-clockwise around normal.
func sidePlanes(face []mgl64.Vec3, normal mgl64.Vec3, out []actor.Plane) []actor.Plane {
	for i, v0 := range face {
		v1 := face[(i+1)%len(face)]

		inward := normal.Cross(v1.Sub(v0))
		length := inward.Len()
		if length < 1e-12 {
			continue
		}
		inward = inward.Mul(1 / length)
		out = append(out, actor.Plane{Normal: inward, Distance: -inward.Dot(v0)})
	}
	return out
}

func isAligned(feature []mgl64.Vec3, normal mgl64.Vec3) bool {
	plane, ok := actor.NewPlaneFromPolygon(feature)
	if !ok {
		return false
	}
	return math.Abs(plane.Normal.Dot(normal)) >= FaceAlignment
}
