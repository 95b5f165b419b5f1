package meshcollide

import (
	"math"
	"testing"

	"github.com/akmonengine/polysoup/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, expected, actual mgl64.Vec3, tolerance float64, msgAndArgs ...interface{}) {
	t.Helper()
	for axis := 0; axis < 3; axis++ {
		assert.InDelta(t, expected[axis], actual[axis], tolerance, msgAndArgs...)
	}
}

func assertMatNear(t *testing.T, expected, actual mgl64.Mat4, tolerance float64) {
	t.Helper()
	assert.InDeltaSlice(t, expected[:], actual[:], tolerance)
}

func TestBuild_UnitScaleRoundTrip(t *testing.T) {
	mesh := newGroundTriangle(t)
	mesh.Transform = actor.Transform{
		Position: mgl64.Vec3{3, -1, 2},
		Rotation: mgl64.QuatRotate(0.8, mgl64.Vec3{0, 0, 1}),
	}
	convex := newCube(t, mgl64.Vec3{1, 2, 3}, mgl64.QuatRotate(0.3, mgl64.Vec3{1, 1, 0}.Normalize()))

	d := newBuilt(t, convex, mesh, QueryParams{SkinThickness: 0.01})

	assertMatNear(t, mgl64.Ident4(), d.ConvexMatrix, 0)
	assertMatNear(t, mgl64.Ident4(), d.Matrix.Mul4(d.Matrix.Inv()), 1e-12)

	for _, p := range []mgl64.Vec3{{0, 0, 0}, {0.5, -0.5, 0.5}, {2, 3, -1}} {
		expected := mesh.Transform.InverseTransformPoint(convex.Transform.TransformPoint(p))
		assertVecNear(t, expected, actor.TransformPoint(d.FullMatrix, p), 1e-12)
	}
}

func TestBuild_ScaledMeshMapsIntoVertexSpace(t *testing.T) {
	tests := []struct {
		name  string
		scale mgl64.Vec3
		mode  actor.ScaleMode
	}{
		{"uniform", mgl64.Vec3{2, 2, 2}, actor.ScaleUniform},
		{"non-uniform", mgl64.Vec3{2, 1, 0.5}, actor.ScaleNonUniform},
		{"mirrored", mgl64.Vec3{-1, 3, 1}, actor.ScaleNonUniform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh := newGroundTriangle(t)
			mesh.Transform = actor.Transform{
				Position: mgl64.Vec3{-2, 1, 0.5},
				Rotation: mgl64.QuatRotate(0.6, mgl64.Vec3{1, 2, 3}.Normalize()),
			}
			require.NoError(t, mesh.SetScale(tt.scale))
			require.Equal(t, tt.mode, mesh.ScaleMode())

			convex := newCube(t, mgl64.Vec3{1, 0, 2}, mgl64.QuatRotate(1.2, mgl64.Vec3{0, 1, 0}))
			d := newBuilt(t, convex, mesh, QueryParams{})

			toVertexSpace := mesh.ScaledMatrix().Inv()
			for _, p := range []mgl64.Vec3{{0, 0, 0}, {0.5, 0.5, -0.5}, {-1, 2, 0.25}} {
				world := convex.Transform.TransformPoint(p)
				assertVecNear(t, actor.TransformPoint(toVertexSpace, world), actor.TransformPoint(d.FullMatrix, p), 1e-9, "point %v", p)
			}
		})
	}
}

func TestBuild_CompanionUndoesScale(t *testing.T) {
	for _, scale := range []mgl64.Vec3{{3, 3, 3}, {2, 1, 0.5}} {
		mesh := newGroundTriangle(t)
		require.NoError(t, mesh.SetScale(scale))
		convex := newCube(t, mgl64.Vec3{0, 0, 1}, mgl64.QuatIdent())

		d := newBuilt(t, convex, mesh, QueryParams{})

		for _, p := range []mgl64.Vec3{{1, 2, 3}, {-0.5, 0.25, 4}} {
			scaled := mgl64.Vec3{p[0] * scale[0], p[1] * scale[1], p[2] * scale[2]}
			assertVecNear(t, p, actor.TransformPoint(d.ConvexMatrix, scaled), 1e-12, "scale %v", scale)
		}
	}
}

func TestBuild_NonUniformMeshBox(t *testing.T) {
	mesh := newGroundTriangle(t)
	require.NoError(t, mesh.SetScale(mgl64.Vec3{2, 1, 1}))
	convex := newCube(t, mgl64.Vec3{4, 0, 1}, mgl64.QuatIdent())

	d := newBuilt(t, convex, mesh, QueryParams{SkinThickness: 0.02})

	// reference: the cube spans x in [3.5, 4.5] in world, that is [1.75, 2.25] in mesh units
	assertVecNear(t, mgl64.Vec3{0.25, 0.5, 0.5}, d.HalfExtents, 1e-12)
	assertVecNear(t, mgl64.Vec3{2, 0, 1}, d.Center, 1e-12)
	assertVecNear(t, mgl64.Vec3{1.75, -0.5, 0.5}, d.Box.Min, 1e-12)
	assertVecNear(t, mgl64.Vec3{2.25, 0.5, 1.5}, d.Box.Max, 1e-12)
	assert.Equal(t, 0.02, d.SkinThickness)
	assert.True(t, d.Built())
}

func TestBuild_OrientedBox(t *testing.T) {
	mesh := newGroundTriangle(t)
	convex := newCube(t, mgl64.Vec3{0, 0, 2}, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}))

	d := newBuilt(t, convex, mesh, QueryParams{})

	assertVecNear(t, mgl64.Vec3{0.5, 0.5, 0.5}, d.HalfExtents, 1e-12)
	assertVecNear(t, mgl64.Vec3{0, 0, 2}, d.Center, 1e-12)

	half := math.Sqrt2 / 2
	assertVecNear(t, mgl64.Vec3{-half, -half, 1.5}, d.Box.Min, 1e-12)
	assertVecNear(t, mgl64.Vec3{half, half, 2.5}, d.Box.Max, 1e-12)

	ground := actor.Plane{Normal: mgl64.Vec3{0, 0, 1}}
	assert.InDelta(t, 1.5, d.BoxPlaneDistance(ground), 1e-12)

	wall := actor.Plane{Normal: mgl64.Vec3{1, 0, 0}, Distance: 3}
	assert.InDelta(t, 3-half, d.BoxPlaneDistance(wall), 1e-12)
}

func TestBuild_ContinuousTravel(t *testing.T) {
	mesh := newGroundTriangle(t)
	mesh.Transform.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	require.NoError(t, mesh.SetScale(mgl64.Vec3{2, 2, 2}))

	convex := newCube(t, mgl64.Vec3{0, 0, 4}, mgl64.QuatIdent())
	d := newBuilt(t, convex, mesh, QueryParams{Continuous: true, Displacement: mgl64.Vec3{2, 0, -2}})

	// world +x is mesh -y after the quarter turn, then halved by the scale
	assertVecNear(t, mgl64.Vec3{0, -1, -1}, d.Travel, 1e-12)
	assertVecNear(t, mgl64.Vec3{-0.25, -1.25, 0.75}, d.Box.Min, 1e-12)
	assertVecNear(t, mgl64.Vec3{0.25, 0.25, 2.25}, d.Box.Max, 1e-12)
	assert.True(t, d.Continuous)
	assert.Equal(t, 1.0, d.MaxT)
}

func TestBuild_Errors(t *testing.T) {
	t.Run("global scale", func(t *testing.T) {
		mesh := newGroundTriangle(t)
		require.NoError(t, mesh.SetGlobalScale(mgl64.Vec3{1, 2, 1}))
		d := &Descriptor{}

		err := Build(d, newCube(t, mgl64.Vec3{}, mgl64.QuatIdent()), mesh, QueryParams{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedScaleMode))
		assert.Contains(t, err.Error(), "global")
		assert.False(t, d.Built())
	})

	t.Run("negative skin", func(t *testing.T) {
		err := Build(&Descriptor{}, newCube(t, mgl64.Vec3{}, mgl64.QuatIdent()), newGroundTriangle(t), QueryParams{SkinThickness: -0.1})
		assert.True(t, errors.Is(err, ErrInvalidQuery))
	})

	t.Run("missing shapes", func(t *testing.T) {
		err := Build(&Descriptor{}, nil, newGroundTriangle(t), QueryParams{})
		assert.True(t, errors.Is(err, ErrInvalidQuery))

		err = Build(&Descriptor{}, newCube(t, mgl64.Vec3{}, mgl64.QuatIdent()), &actor.MeshInstance{}, QueryParams{})
		assert.True(t, errors.Is(err, ErrInvalidQuery))
	})
}
