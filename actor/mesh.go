package actor

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// MaxFaceIndices bounds the vertex count of a single mesh face
const MaxFaceIndices = 32

// Face locates one polygon inside a mesh index buffer
type Face struct {
	IndexStart int32
	IndexCount int32
}

// StaticMesh is an immutable polygon soup. Vertices is a flat buffer of records of
// Stride scalars each; the first three scalars of a record are its position, the
// rest are user attributes the collision code skips over.
type StaticMesh struct {
	Vertices []float64
	Stride   int
	Indices  []int32
	Faces    []Face

	planes    []Plane
	boxOrigin mgl64.Vec3
	boxSize   mgl64.Vec3
}

// NewStaticMesh validates the buffers and precomputes face planes and the mesh box.
// faceCounts lists the number of indices of each consecutive face in indices.
func NewStaticMesh(vertices []float64, stride int, indices []int32, faceCounts []int) (*StaticMesh, error) {
	if stride < 3 {
		return nil, errors.Errorf("vertex stride must be at least 3, got %d", stride)
	}
	if len(vertices) == 0 || len(vertices)%stride != 0 {
		return nil, errors.Errorf("vertex buffer length %d is not a multiple of stride %d", len(vertices), stride)
	}
	vertexCount := len(vertices) / stride

	mesh := &StaticMesh{
		Vertices: vertices,
		Stride:   stride,
		Indices:  indices,
		Faces:    make([]Face, 0, len(faceCounts)),
		planes:   make([]Plane, 0, len(faceCounts)),
	}

	start := 0
	points := make([]mgl64.Vec3, 0, MaxFaceIndices)
	for f, count := range faceCounts {
		if count < 3 || count > MaxFaceIndices {
			return nil, errors.Errorf("face %d has %d indices, want 3..%d", f, count, MaxFaceIndices)
		}
		if start+count > len(indices) {
			return nil, errors.Errorf("face %d overruns the index buffer (%d > %d)", f, start+count, len(indices))
		}

		points = points[:0]
		for _, index := range indices[start : start+count] {
			if index < 0 || int(index) >= vertexCount {
				return nil, errors.Errorf("face %d references vertex %d out of range", f, index)
			}
			points = append(points, mesh.Vertex(int(index)))
		}

		plane, ok := NewPlaneFromPolygon(points)
		if !ok {
			return nil, errors.Errorf("face %d is degenerate", f)
		}

		mesh.Faces = append(mesh.Faces, Face{IndexStart: int32(start), IndexCount: int32(count)})
		mesh.planes = append(mesh.planes, plane)
		start += count
	}

	box := AABBFromPoints(mesh.Vertex(0))
	for i := 1; i < vertexCount; i++ {
		box = box.ExtendPoint(mesh.Vertex(i))
	}
	mesh.SetCollisionBBox(box.Min, box.Max)

	return mesh, nil
}

// Vertex returns the position of vertex record i
func (m *StaticMesh) Vertex(i int) mgl64.Vec3 {
	j := i * m.Stride
	return mgl64.Vec3{m.Vertices[j], m.Vertices[j+1], m.Vertices[j+2]}
}

func (m *StaticMesh) FaceCount() int {
	return len(m.Faces)
}

// FacePlane returns the plane of face f, oriented by its winding
func (m *StaticMesh) FacePlane(f int) Plane {
	return m.planes[f]
}

// FaceVertices appends the positions of face f to out
func (m *StaticMesh) FaceVertices(f int, out []mgl64.Vec3) []mgl64.Vec3 {
	face := m.Faces[f]
	for _, index := range m.Indices[face.IndexStart : face.IndexStart+face.IndexCount] {
		out = append(out, m.Vertex(int(index)))
	}
	return out
}

// FaceAt returns the face whose indices begin at indexStart
func (m *StaticMesh) FaceAt(indexStart int32) (int, bool) {
	f := sort.Search(len(m.Faces), func(i int) bool {
		return m.Faces[i].IndexStart >= indexStart
	})
	if f == len(m.Faces) || m.Faces[f].IndexStart != indexStart {
		return -1, false
	}
	return f, true
}

func (m *StaticMesh) FaceAABB(f int) AABB {
	face := m.Faces[f]
	indices := m.Indices[face.IndexStart : face.IndexStart+face.IndexCount]

	box := AABBFromPoints(m.Vertex(int(indices[0])))
	for _, index := range indices[1:] {
		box = box.ExtendPoint(m.Vertex(int(index)))
	}
	return box
}

// SetCollisionBBox stores the mesh box as origin and half size
func (m *StaticMesh) SetCollisionBBox(p0, p1 mgl64.Vec3) {
	m.boxSize = p1.Sub(p0).Mul(0.5)
	m.boxOrigin = p1.Add(p0).Mul(0.5)
}

// Box returns the local mesh bounds
func (m *StaticMesh) Box() AABB {
	return AABB{Min: m.boxOrigin.Sub(m.boxSize), Max: m.boxOrigin.Add(m.boxSize)}
}

// CalcAABB bounds the mesh box under matrix
func (m *StaticMesh) CalcAABB(matrix mgl64.Mat4) AABB {
	return TransformAABB(matrix, m.Box())
}
