// Package meshcollide implements the convex-versus-static-mesh query core: the
// per-query descriptor, the mesh space transform, candidate face ordering and
// plane clipping.
//
// Everything in this package is re-entrant. A Descriptor belongs to a single query
// and must not be shared between goroutines; shapes and meshes are read only.
package meshcollide

import (
	"math"

	"github.com/akmonengine/polysoup/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

const (
	// MaxCollidingFaces bounds the candidate faces of one query
	MaxCollidingFaces = 512
	// MaxClipPoints bounds the points produced by one clip
	MaxClipPoints = 64
	// DefaultSortThreshold is the partition size below which the sort leaves
	// candidates to the insertion pass
	DefaultSortThreshold = 8
	// ClipEpsilon clamps the edge-plane derivative of near parallel edges
	ClipEpsilon = 1e-8
)

// QueryParams are the per-pair inputs handed over by the broad phase
type QueryParams struct {
	SkinThickness float64
	Continuous    bool
	// Displacement is the world space motion of the convex shape over the step,
	// only used by continuous queries.
	Displacement mgl64.Vec3
}

// Candidate is one entry of the candidate face arrays
type Candidate struct {
	IndexStart  int32
	IndexCount  int32
	HitDistance float64
}

// Descriptor is the context of one convex-versus-mesh query. Build fills the
// transforms and bounds, a mesh traversal adds candidate faces, SortFaces orders
// them and FaceContacts turns each one into contact points.
type Descriptor struct {
	// Matrix maps the companion space of the convex shape to mesh space. Its
	// translation is expressed in unscaled mesh units.
	Matrix mgl64.Mat4
	// ConvexMatrix is the companion transform that removes the mesh scale
	ConvexMatrix mgl64.Mat4
	// FullMatrix maps convex local space to mesh space: Matrix * ConvexMatrix
	FullMatrix mgl64.Mat4

	// Box is the tight mesh space box of the convex shape, swept by Travel when continuous
	Box actor.AABB

	// oriented box of the convex shape in mesh space
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
	Rotation    mgl64.Mat3

	SkinThickness float64
	Continuous    bool
	// Travel is the displacement of the convex shape in mesh space
	Travel mgl64.Vec3
	// MaxT is the time of impact bound in [0, 1]; 1 means unclamped
	MaxT float64

	faceIndexStart [MaxCollidingFaces]int32
	faceIndexCount [MaxCollidingFaces]int32
	hitDistance    [MaxCollidingFaces]float64
	faceCount      int
	overflowed     bool
	built          bool

	// scratch buffers for contact generation
	feature   []mgl64.Vec3
	packed    []float64
	identity  []int32
	facePts   []mgl64.Vec3
	sides     []actor.Plane
	crossings []mgl64.Vec3
}

// Reset clears the descriptor for a new query
func (d *Descriptor) Reset() {
	d.Matrix = mgl64.Ident4()
	d.ConvexMatrix = mgl64.Ident4()
	d.FullMatrix = mgl64.Ident4()
	d.Box = actor.AABB{}
	d.Center = mgl64.Vec3{}
	d.HalfExtents = mgl64.Vec3{}
	d.Rotation = mgl64.Ident3()
	d.SkinThickness = 0
	d.Continuous = false
	d.Travel = mgl64.Vec3{}
	d.MaxT = 1
	d.faceCount = 0
	d.overflowed = false
	d.built = false
}

// Built reports whether the last Build succeeded
func (d *Descriptor) Built() bool {
	return d.built
}

func (d *Descriptor) FaceCount() int {
	return d.faceCount
}

// Overflowed reports whether a candidate was rejected for lack of capacity
func (d *Descriptor) Overflowed() bool {
	return d.overflowed
}

// AddFace appends a candidate face. hitDistance must be a number.
func (d *Descriptor) AddFace(indexStart, indexCount int32, hitDistance float64) error {
	if indexCount < 3 || indexStart < 0 {
		return errors.Wrapf(ErrInvalidFace, "face range [%d, +%d)", indexStart, indexCount)
	}
	if math.IsNaN(hitDistance) {
		return errors.Wrap(ErrInvalidQuery, "hit distance is NaN")
	}
	if d.faceCount >= MaxCollidingFaces {
		d.overflowed = true
		return errors.Wrapf(ErrCapacityExceeded, "more than %d candidate faces", MaxCollidingFaces)
	}

	d.faceIndexStart[d.faceCount] = indexStart
	d.faceIndexCount[d.faceCount] = indexCount
	d.hitDistance[d.faceCount] = hitDistance
	d.faceCount++
	return nil
}

// Candidate returns candidate i
func (d *Descriptor) Candidate(i int) Candidate {
	return Candidate{
		IndexStart:  d.faceIndexStart[i],
		IndexCount:  d.faceIndexCount[i],
		HitDistance: d.hitDistance[i],
	}
}

// Candidates appends every candidate to out, in the current order
func (d *Descriptor) Candidates(out []Candidate) []Candidate {
	for i := 0; i < d.faceCount; i++ {
		out = append(out, d.Candidate(i))
	}
	return out
}

// HitDistances is a view of the hit distance array
func (d *Descriptor) HitDistances() []float64 {
	return d.hitDistance[:d.faceCount]
}

// SetMaxT lowers the time of impact bound. Values are clamped into [0, 1].
func (d *Descriptor) SetMaxT(t float64) {
	t = math.Max(0, math.Min(1, t))
	if t < d.MaxT {
		d.MaxT = t
	}
}

// BoxPlaneDistance returns the signed separation between the oriented box and a
// mesh space plane: negative when the box crosses it.
func (d *Descriptor) BoxPlaneDistance(plane actor.Plane) float64 {
	radius := 0.0
	for axis := 0; axis < 3; axis++ {
		radius += math.Abs(plane.Normal.Dot(d.Rotation.Col(axis))) * d.HalfExtents[axis]
	}
	return plane.Evaluate(d.Center) - radius
}

// TimeOfImpact returns the sweep fraction at which the oriented box reaches the
// plane. ok is false when the box moves away or arrives after MaxT.
func (d *Descriptor) TimeOfImpact(plane actor.Plane) (t float64, ok bool) {
	separation := d.BoxPlaneDistance(plane)
	if separation <= 0 {
		return 0, true
	}

	speed := -plane.Normal.Dot(d.Travel)
	if speed <= 1e-12 {
		return 0, false
	}

	t = separation / speed
	if t > d.MaxT {
		return 0, false
	}
	return t, true
}

// HitDistance classifies a mesh face plane for this query. Faces the shape is
// behind are culled, and so are faces farther than the skin thickness (discrete)
// or not reached within MaxT (continuous).
func (d *Descriptor) HitDistance(plane actor.Plane) (float64, bool) {
	if plane.Evaluate(d.Center) < 0 {
		return 0, false
	}

	if d.Continuous {
		return d.TimeOfImpact(plane)
	}

	separation := d.BoxPlaneDistance(plane)
	if separation > d.SkinThickness {
		return 0, false
	}
	return separation, true
}

// PoseMatrix is FullMatrix advanced along the sweep to hitDistance for
// continuous queries.
func (d *Descriptor) PoseMatrix(hitDistance float64) mgl64.Mat4 {
	if !d.Continuous {
		return d.FullMatrix
	}

	offset := d.Travel.Mul(math.Max(0, hitDistance))
	m := d.FullMatrix
	m[12] += offset[0]
	m[13] += offset[1]
	m[14] += offset[2]
	return m
}
