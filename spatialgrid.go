package polysoup

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/polysoup/actor"
	"github.com/akmonengine/polysoup/meshcollide"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the faces overlapping it
type Cell struct {
	faceIndices []int
}

// SpatialGrid is a hashed uniform grid over the face boxes of one static mesh,
// in mesh vertex space. Once built it is only read, so any number of queries
// can run against it concurrently.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	mesh      *actor.StaticMesh
	faceBoxes []actor.AABB
}

var faceListPool = sync.Pool{
	New: func() interface{} {
		faces := make([]int, 0, 64)
		return &faces
	},
}

// NewSpatialGrid creates an empty grid. numCells is rounded up to a power of two.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].faceIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Build indexes every face of mesh, replacing the previous content
func (sg *SpatialGrid) Build(mesh *actor.StaticMesh) {
	sg.Clear()
	sg.mesh = mesh
	sg.faceBoxes = make([]actor.AABB, mesh.FaceCount())

	for f := range sg.faceBoxes {
		sg.faceBoxes[f] = mesh.FaceAABB(f)
		sg.Insert(f, sg.faceBoxes[f])
	}
	sg.SortCells()
}

// Mesh returns the mesh the grid was built for
func (sg *SpatialGrid) Mesh() *actor.StaticMesh {
	return sg.mesh
}

// Insert adds a face to every cell its box occupies
func (sg *SpatialGrid) Insert(faceIndex int, box actor.AABB) {
	sg.forEachCell(box, func(cellIdx int) {
		sg.cells[cellIdx].faceIndices = append(sg.cells[cellIdx].faceIndices, faceIndex)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].faceIndices = sg.cells[i].faceIndices[:0]
	}
	sg.mesh = nil
	sg.faceBoxes = sg.faceBoxes[:0]
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].faceIndices) > 1 {
			sort.Ints(sg.cells[i].faceIndices)
		}
	}
}

// Query adds to d every face of mesh whose box overlaps the descriptor box,
// expanded by the skin thickness, and whose plane the descriptor accepts. Faces
// are visited in ascending index order.
func (sg *SpatialGrid) Query(d *meshcollide.Descriptor, mesh *actor.StaticMesh) error {
	if mesh == nil || mesh != sg.mesh {
		return errors.Wrap(meshcollide.ErrInvalidQuery, "grid was not built for this mesh")
	}
	if !d.Built() {
		return errors.Wrap(meshcollide.ErrInvalidQuery, "descriptor is not built")
	}

	box := d.Box.Expand(d.SkinThickness)

	facesPtr := faceListPool.Get().(*[]int)
	defer faceListPool.Put(facesPtr)

	faces := (*facesPtr)[:0]
	sg.forEachCell(box, func(cellIdx int) {
		faces = append(faces, sg.cells[cellIdx].faceIndices...)
	})
	sort.Ints(faces)
	*facesPtr = faces

	previous := -1
	for _, f := range faces {
		if f == previous {
			continue
		}
		previous = f

		if !sg.faceBoxes[f].Overlaps(box) {
			continue
		}

		hitDistance, ok := d.HitDistance(mesh.FacePlane(f))
		if !ok {
			continue
		}

		face := mesh.Faces[f]
		if err := d.AddFace(face.IndexStart, face.IndexCount, hitDistance); err != nil {
			return err
		}
	}

	return nil
}

// forEachCell visits the cells covered by box. A box spanning more cells than the
// grid holds visits every cell once instead.
func (sg *SpatialGrid) forEachCell(box actor.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(box.Min)
	maxCell := sg.worldToCell(box.Max)

	span := float64(maxCell.X-minCell.X+1) * float64(maxCell.Y-minCell.Y+1) * float64(maxCell.Z-minCell.Z+1)
	if span > float64(len(sg.cells)) {
		for i := range sg.cells {
			fn(i)
		}
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: cellCoord(pos.X() / sg.cellSize),
		Y: cellCoord(pos.Y() / sg.cellSize),
		Z: cellCoord(pos.Z() / sg.cellSize),
	}
}

// cellCoord floors v into a cell coordinate, saturating far out of range values
func cellCoord(v float64) int {
	const limit = 1 << 40
	v = math.Floor(v)
	switch {
	case v > limit:
		return limit
	case v < -limit:
		return -limit
	default:
		return int(v)
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
