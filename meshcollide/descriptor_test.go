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

func TestDescriptor_AddFaceCapacity(t *testing.T) {
	d := &Descriptor{}
	d.Reset()

	for i := 0; i < MaxCollidingFaces; i++ {
		require.NoError(t, d.AddFace(int32(3*i), 3, float64(i)))
	}
	assert.False(t, d.Overflowed())

	err := d.AddFace(0, 3, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.True(t, d.Overflowed())
	assert.Equal(t, MaxCollidingFaces, d.FaceCount())

	d.Reset()
	assert.False(t, d.Overflowed())
	assert.Zero(t, d.FaceCount())
}

func TestDescriptor_AddFaceRejectsBadInput(t *testing.T) {
	d := &Descriptor{}
	d.Reset()

	assert.True(t, errors.Is(d.AddFace(0, 2, 0), ErrInvalidFace))
	assert.True(t, errors.Is(d.AddFace(-3, 3, 0), ErrInvalidFace))
	assert.True(t, errors.Is(d.AddFace(0, 3, math.NaN()), ErrInvalidQuery))
	assert.Zero(t, d.FaceCount())
}

func TestDescriptor_SetMaxT(t *testing.T) {
	d := &Descriptor{}
	d.Reset()
	assert.Equal(t, 1.0, d.MaxT)

	d.SetMaxT(0.5)
	assert.Equal(t, 0.5, d.MaxT)

	d.SetMaxT(0.8)
	assert.Equal(t, 0.5, d.MaxT, "the bound only decreases")

	d.SetMaxT(-2)
	assert.Equal(t, 0.0, d.MaxT)

	d.Reset()
	d.SetMaxT(7)
	assert.Equal(t, 1.0, d.MaxT)
}

func TestDescriptor_TimeOfImpact(t *testing.T) {
	ground := actor.Plane{Normal: mgl64.Vec3{0, 0, 1}}
	mesh := newGroundTriangle(t)

	tests := []struct {
		name         string
		height       float64
		displacement mgl64.Vec3
		maxT         float64
		expected     float64
		ok           bool
	}{
		{"falling", 1.5, mgl64.Vec3{0, 0, -2}, 1, 0.5, true},
		{"falling sideways", 1.5, mgl64.Vec3{3, 0, -4}, 1, 0.25, true},
		{"rising", 1.5, mgl64.Vec3{0, 0, 2}, 1, 0, false},
		{"too short", 1.5, mgl64.Vec3{0, 0, -0.5}, 1, 0, false},
		{"clamped by bound", 1.5, mgl64.Vec3{0, 0, -2}, 0.4, 0, false},
		{"already touching", 0.4, mgl64.Vec3{0, 0, 1}, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convex := newCube(t, mgl64.Vec3{0, 0, tt.height}, mgl64.QuatIdent())
			d := newBuilt(t, convex, mesh, QueryParams{Continuous: true, Displacement: tt.displacement})
			d.SetMaxT(tt.maxT)

			toi, ok := d.TimeOfImpact(ground)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, toi, 1e-12)
		})
	}
}

func TestDescriptor_HitDistance(t *testing.T) {
	ground := actor.Plane{Normal: mgl64.Vec3{0, 0, 1}}
	mesh := newGroundTriangle(t)

	t.Run("within skin", func(t *testing.T) {
		d := newBuilt(t, newCube(t, mgl64.Vec3{0, 0, 0.55}, mgl64.QuatIdent()), mesh, QueryParams{SkinThickness: 0.1})
		dist, ok := d.HitDistance(ground)
		assert.True(t, ok)
		assert.InDelta(t, 0.05, dist, 1e-12)
	})

	t.Run("beyond skin", func(t *testing.T) {
		d := newBuilt(t, newCube(t, mgl64.Vec3{0, 0, 0.8}, mgl64.QuatIdent()), mesh, QueryParams{SkinThickness: 0.1})
		_, ok := d.HitDistance(ground)
		assert.False(t, ok)
	})

	t.Run("behind the face", func(t *testing.T) {
		d := newBuilt(t, newCube(t, mgl64.Vec3{0, 0, -0.2}, mgl64.QuatIdent()), mesh, QueryParams{SkinThickness: 0.1})
		_, ok := d.HitDistance(ground)
		assert.False(t, ok)
	})

	t.Run("continuous", func(t *testing.T) {
		d := newBuilt(t, newCube(t, mgl64.Vec3{0, 0, 0.7}, mgl64.QuatIdent()), mesh, QueryParams{Continuous: true, Displacement: mgl64.Vec3{0, 0, -0.4}})
		dist, ok := d.HitDistance(ground)
		assert.True(t, ok)
		assert.InDelta(t, 0.5, dist, 1e-12)

		pose := d.PoseMatrix(dist)
		assert.InDelta(t, 0.5, pose[14], 1e-12)
	})
}
