package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// MaxHullElements is the complexity ceiling of a convex hull: vertex and
// half-edge indices are stored on 16 bits.
const MaxHullElements = math.MaxUint16

const hullConvexityTolerance = 1e-6

// HalfEdge is one directed edge of a hull face. All links are indices into the
// owning hull's edge arena.
type HalfEdge struct {
	Twin   uint16 // opposite-direction edge on the adjacent face
	Next   uint16 // next edge around the same face
	Prev   uint16 // previous edge around the same face
	Vertex uint16 // vertex the edge originates from
}

// ConvexHull is a closed convex polyhedron stored as a half-edge mesh.
// It is immutable after construction, so one hull can back any number of
// instances across goroutines.
type ConvexHull struct {
	vertices []mgl64.Vec3
	edges    []HalfEdge

	vertexEdge   []uint16 // one outgoing edge per vertex
	faceEdge     []uint16 // first edge of each face
	facePlanes   []Plane
	faceVertices [][]mgl64.Vec3
}

// NewConvexHull builds the half-edge structure for the given faces. Each face lists
// vertex indices counter-clockwise seen from outside the hull.
func NewConvexHull(vertices []mgl64.Vec3, faces [][]int) (*ConvexHull, error) {
	if len(vertices) < 4 {
		return nil, errors.Errorf("convex hull needs at least 4 vertices, got %d", len(vertices))
	}
	if len(vertices) > MaxHullElements {
		return nil, errors.Errorf("convex hull has %d vertices, limit is %d", len(vertices), MaxHullElements)
	}

	edgeCount := 0
	for f, face := range faces {
		if len(face) < 3 {
			return nil, errors.Errorf("face %d has %d vertices, need at least 3", f, len(face))
		}
		edgeCount += len(face)
	}
	if edgeCount > MaxHullElements {
		return nil, errors.Errorf("convex hull has %d half-edges, limit is %d", edgeCount, MaxHullElements)
	}

	hull := &ConvexHull{
		vertices:     append([]mgl64.Vec3(nil), vertices...),
		edges:        make([]HalfEdge, 0, edgeCount),
		vertexEdge:   make([]uint16, len(vertices)),
		faceEdge:     make([]uint16, 0, len(faces)),
		facePlanes:   make([]Plane, 0, len(faces)),
		faceVertices: make([][]mgl64.Vec3, 0, len(faces)),
	}

	referenced := make([]bool, len(vertices))
	directed := make(map[[2]uint16]uint16, edgeCount)

	for f, face := range faces {
		base := len(hull.edges)
		n := len(face)
		points := make([]mgl64.Vec3, n)

		for i, v := range face {
			if v < 0 || v >= len(vertices) {
				return nil, errors.Errorf("face %d references vertex %d out of range", f, v)
			}
			next := face[(i+1)%n]
			if next == v {
				return nil, errors.Errorf("face %d repeats vertex %d", f, v)
			}

			index := uint16(base + i)
			key := [2]uint16{uint16(v), uint16(next)}
			if _, exists := directed[key]; exists {
				return nil, errors.Errorf("edge %d->%d appears twice, faces are not consistently wound", v, next)
			}
			directed[key] = index

			hull.edges = append(hull.edges, HalfEdge{
				Next:   uint16(base + (i+1)%n),
				Prev:   uint16(base + (i+n-1)%n),
				Vertex: uint16(v),
			})
			if !referenced[v] {
				referenced[v] = true
				hull.vertexEdge[v] = index
			}
			points[i] = vertices[v]
		}

		plane, ok := NewPlaneFromPolygon(points)
		if !ok {
			return nil, errors.Errorf("face %d is degenerate", f)
		}
		hull.faceEdge = append(hull.faceEdge, uint16(base))
		hull.facePlanes = append(hull.facePlanes, plane)
		hull.faceVertices = append(hull.faceVertices, points)
	}

	for i := range hull.edges {
		from := hull.edges[i].Vertex
		to := hull.edges[hull.edges[i].Next].Vertex
		twin, ok := directed[[2]uint16{to, from}]
		if !ok {
			return nil, errors.Errorf("edge %d->%d has no twin, hull is not closed", from, to)
		}
		hull.edges[i].Twin = twin
	}

	for v, ok := range referenced {
		if !ok {
			return nil, errors.Errorf("vertex %d is not used by any face", v)
		}
	}

	for f, plane := range hull.facePlanes {
		for v, p := range hull.vertices {
			if plane.Evaluate(p) > hullConvexityTolerance {
				return nil, errors.Errorf("vertex %d lies in front of face %d, hull is not convex or is wound inside out", v, f)
			}
		}
	}

	return hull, nil
}

// NewBox builds the hull of a box centered on the origin
func NewBox(halfExtents mgl64.Vec3) (*ConvexHull, error) {
	if halfExtents.X() <= 0 || halfExtents.Y() <= 0 || halfExtents.Z() <= 0 {
		return nil, errors.Errorf("box half extents must be positive, got %v", halfExtents)
	}

	// vertex i has the sign bits x = i&1, y = i&2, z = i&4
	vertices := make([]mgl64.Vec3, 8)
	for i := range vertices {
		v := halfExtents.Mul(-1)
		if i&1 != 0 {
			v[0] = halfExtents.X()
		}
		if i&2 != 0 {
			v[1] = halfExtents.Y()
		}
		if i&4 != 0 {
			v[2] = halfExtents.Z()
		}
		vertices[i] = v
	}

	faces := [][]int{
		{1, 3, 7, 5}, // +X
		{0, 4, 6, 2}, // -X
		{2, 6, 7, 3}, // +Y
		{0, 1, 5, 4}, // -Y
		{4, 5, 7, 6}, // +Z
		{0, 2, 3, 1}, // -Z
	}

	return NewConvexHull(vertices, faces)
}

func (h *ConvexHull) VertexCount() int {
	return len(h.vertices)
}

func (h *ConvexHull) EdgeCount() int {
	return len(h.edges)
}

func (h *ConvexHull) FaceCount() int {
	return len(h.faceEdge)
}

// Vertices returns the vertex array. Callers must not modify it.
func (h *ConvexHull) Vertices() []mgl64.Vec3 {
	return h.vertices
}

// Edges returns the half-edge arena. Callers must not modify it.
func (h *ConvexHull) Edges() []HalfEdge {
	return h.edges
}

func (h *ConvexHull) Vertex(i int) mgl64.Vec3 {
	return h.vertices[i]
}

func (h *ConvexHull) Edge(i int) HalfEdge {
	return h.edges[i]
}

// FaceEdge returns the first half-edge of face f
func (h *ConvexHull) FaceEdge(f int) int {
	return int(h.faceEdge[f])
}

// FacePlane returns the outward plane of face f
func (h *ConvexHull) FacePlane(f int) Plane {
	return h.facePlanes[f]
}

// FaceVertices returns the vertices of face f in winding order. Callers must not modify it.
func (h *ConvexHull) FaceVertices(f int) []mgl64.Vec3 {
	return h.faceVertices[f]
}

// Support walks the vertex graph towards direction. On a convex hull a vertex
// with no better neighbour is the global maximum.
func (h *ConvexHull) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := 0
	bestDot := h.vertices[0].Dot(direction)

	for steps := 0; steps < len(h.vertices); steps++ {
		improved := false

		start := h.vertexEdge[best]
		e := start
		for guard := 0; guard < len(h.edges); guard++ {
			neighbour := int(h.edges[h.edges[e].Next].Vertex)
			if dot := h.vertices[neighbour].Dot(direction); dot > bestDot {
				best, bestDot = neighbour, dot
				improved = true
				break
			}

			// next outgoing edge around the vertex
			e = h.edges[h.edges[e].Prev].Twin
			if e == start {
				break
			}
		}

		if !improved {
			break
		}
	}

	return h.vertices[best]
}

// GetContactFeature returns the face whose outward normal is most aligned with direction
func (h *ConvexHull) GetContactFeature(direction mgl64.Vec3) []mgl64.Vec3 {
	bestFace := 0
	bestDot := -math.MaxFloat64
	for f, plane := range h.facePlanes {
		if dot := plane.Normal.Dot(direction); dot > bestDot {
			bestFace, bestDot = f, dot
		}
	}
	return h.faceVertices[bestFace]
}

func (h *ConvexHull) CalcAABB(matrix mgl64.Mat4) AABB {
	box := AABB{Min: TransformPoint(matrix, h.vertices[0])}
	box.Max = box.Min
	for _, v := range h.vertices[1:] {
		box = box.ExtendPoint(TransformPoint(matrix, v))
	}
	return box
}
