package polysoup

import (
	"testing"

	"github.com/akmonengine/polysoup/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

// createGround builds a single triangle on z=0 facing +z
func createGround(t *testing.T) *actor.MeshInstance {
	t.Helper()
	vertices := []float64{
		-4, -4, 0,
		6, -4, 0,
		-4, 6, 0,
	}
	mesh, err := actor.NewStaticMesh(vertices, 3, []int32{0, 1, 2}, []int{3})
	require.NoError(t, err)
	return actor.NewMeshInstance(mesh, actor.NewTransform())
}

// createTerrain builds a flat n x n quad grid of unit cells on z=0, centered on
// the origin, two triangles per quad.
func createTerrain(t *testing.T, n int) *actor.MeshInstance {
	t.Helper()

	half := float64(n) / 2
	vertices := make([]float64, 0, (n+1)*(n+1)*3)
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			vertices = append(vertices, float64(i)-half, float64(j)-half, 0)
		}
	}

	index := func(i, j int) int32 { return int32(j*(n+1) + i) }
	var indices []int32
	var counts []int
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			v00, v10, v01, v11 := index(i, j), index(i+1, j), index(i, j+1), index(i+1, j+1)
			indices = append(indices, v00, v10, v11, v00, v11, v01)
			counts = append(counts, 3, 3)
		}
	}

	mesh, err := actor.NewStaticMesh(vertices, 3, indices, counts)
	require.NoError(t, err)
	return actor.NewMeshInstance(mesh, actor.NewTransform())
}

func createStatic(t *testing.T, instance *actor.MeshInstance) *StaticBody {
	t.Helper()
	body, err := NewStaticBody(instance, 2.0, 256)
	require.NoError(t, err)
	return body
}

func createCube(t *testing.T, position mgl64.Vec3, halfExtents mgl64.Vec3) *actor.ConvexInstance {
	t.Helper()
	box, err := actor.NewBox(halfExtents)
	require.NoError(t, err)
	return actor.NewConvexInstance(box, actor.Transform{Position: position, Rotation: mgl64.QuatIdent()})
}

func unitCube(t *testing.T, position mgl64.Vec3) *actor.ConvexInstance {
	return createCube(t, position, mgl64.Vec3{0.5, 0.5, 0.5})
}

// assertVecNear compares component-wise with an absolute tolerance
func assertVecNear(t *testing.T, expected, actual mgl64.Vec3, delta float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.InDeltaSlice(t, expected[:], actual[:], delta, msgAndArgs...)
}
