package meshcollide

import (
	"testing"

	"github.com/akmonengine/polysoup/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

// a single large triangle on z=0 facing +z
func newGroundTriangle(t *testing.T) *actor.MeshInstance {
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

func newCube(t *testing.T, position mgl64.Vec3, rotation mgl64.Quat) *actor.ConvexInstance {
	t.Helper()
	box, err := actor.NewBox(mgl64.Vec3{0.5, 0.5, 0.5})
	require.NoError(t, err)
	return actor.NewConvexInstance(box, actor.Transform{Position: position, Rotation: rotation})
}

func newBuilt(t *testing.T, convex *actor.ConvexInstance, mesh *actor.MeshInstance, params QueryParams) *Descriptor {
	t.Helper()
	d := &Descriptor{}
	require.NoError(t, Build(d, convex, mesh, params))
	return d
}

func groundCandidate() Candidate {
	return Candidate{IndexStart: 0, IndexCount: 3}
}
