package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ScaleMode describes how an instance scale acts on its shape
type ScaleMode uint8

const (
	ScaleUnit ScaleMode = iota
	ScaleUniform
	ScaleNonUniform
	// ScaleGlobal is a scale expressed in the parent frame. Shapes sheared this way
	// cannot be queried against a static mesh.
	ScaleGlobal
)

const scaleTolerance = 1e-6

func (m ScaleMode) String() string {
	switch m {
	case ScaleUnit:
		return "unit"
	case ScaleUniform:
		return "uniform"
	case ScaleNonUniform:
		return "non-uniform"
	case ScaleGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Instance places a shared shape in the world: a rigid transform plus a scale.
// The zero value is an identity placement with unit scale.
type Instance struct {
	Transform Transform

	scale     mgl64.Vec3
	invScale  mgl64.Vec3
	scaleMode ScaleMode
	scaled    bool
}

func NewInstance(transform Transform) Instance {
	return Instance{Transform: transform}
}

// SetScale sets a local scale and classifies it as unit, uniform or non-uniform
func (i *Instance) SetScale(scale mgl64.Vec3) error {
	if err := i.setScale(scale); err != nil {
		return err
	}

	switch {
	case isUnit(scale):
		i.scaleMode = ScaleUnit
	case math.Abs(scale.X()-scale.Y()) < scaleTolerance && math.Abs(scale.X()-scale.Z()) < scaleTolerance:
		i.scaleMode = ScaleUniform
	default:
		i.scaleMode = ScaleNonUniform
	}
	return nil
}

// SetGlobalScale sets a scale applied in the parent frame
func (i *Instance) SetGlobalScale(scale mgl64.Vec3) error {
	if err := i.setScale(scale); err != nil {
		return err
	}
	i.scaleMode = ScaleGlobal
	return nil
}

func (i *Instance) setScale(scale mgl64.Vec3) error {
	for axis := 0; axis < 3; axis++ {
		if math.Abs(scale[axis]) < scaleTolerance || math.IsNaN(scale[axis]) || math.IsInf(scale[axis], 0) {
			return errors.Errorf("invalid scale %v: component %d must be finite and non-zero", scale, axis)
		}
	}

	i.scale = scale
	i.invScale = mgl64.Vec3{1 / scale[0], 1 / scale[1], 1 / scale[2]}
	i.scaled = true
	return nil
}

func (i *Instance) Scale() mgl64.Vec3 {
	if !i.scaled {
		return mgl64.Vec3{1, 1, 1}
	}
	return i.scale
}

func (i *Instance) InvScale() mgl64.Vec3 {
	if !i.scaled {
		return mgl64.Vec3{1, 1, 1}
	}
	return i.invScale
}

func (i *Instance) ScaleMode() ScaleMode {
	return i.scaleMode
}

// GlobalMatrix is the unscaled local-to-world matrix
func (i *Instance) GlobalMatrix() mgl64.Mat4 {
	return i.Transform.Matrix()
}

// ScaledMatrix is the local-to-world matrix including the scale
func (i *Instance) ScaledMatrix() mgl64.Mat4 {
	s := i.Scale()
	return i.Transform.Matrix().Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

func isUnit(scale mgl64.Vec3) bool {
	return math.Abs(scale.X()-1) < scaleTolerance &&
		math.Abs(scale.Y()-1) < scaleTolerance &&
		math.Abs(scale.Z()-1) < scaleTolerance
}

// ConvexInstance is a moving convex shape with its own placement
type ConvexInstance struct {
	Instance
	Shape Convex
	// Velocity is the linear velocity in world space, used to sweep continuous queries
	Velocity mgl64.Vec3
}

func NewConvexInstance(shape Convex, transform Transform) *ConvexInstance {
	return &ConvexInstance{Instance: NewInstance(transform), Shape: shape}
}

// CalcAABB bounds the scaled shape under matrix
func (c *ConvexInstance) CalcAABB(matrix mgl64.Mat4) AABB {
	return c.Shape.CalcAABB(c.scaleMatrix(matrix))
}

// WorldAABB bounds the scaled shape in world space
func (c *ConvexInstance) WorldAABB() AABB {
	return c.CalcAABB(c.GlobalMatrix())
}

// Support returns the support point of the scaled shape under matrix, for a direction
// given in the matrix output space.
func (c *ConvexInstance) Support(matrix mgl64.Mat4, direction mgl64.Vec3) mgl64.Vec3 {
	m := c.scaleMatrix(matrix)
	local := c.Shape.Support(UnrotateVector(m, direction))
	return TransformPoint(m, local)
}

// ContactFeature returns the shape feature most aligned with direction, mapped through matrix
func (c *ConvexInstance) ContactFeature(matrix mgl64.Mat4, direction mgl64.Vec3, out []mgl64.Vec3) []mgl64.Vec3 {
	m := c.scaleMatrix(matrix)
	feature := c.Shape.GetContactFeature(UnrotateVector(m, direction))

	out = out[:0]
	for _, p := range feature {
		out = append(out, TransformPoint(m, p))
	}
	return out
}

func (c *ConvexInstance) scaleMatrix(matrix mgl64.Mat4) mgl64.Mat4 {
	if c.scaleMode == ScaleUnit {
		return matrix
	}
	s := c.Scale()
	return matrix.Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// MeshInstance places a shared static mesh in the world
type MeshInstance struct {
	Instance
	Mesh *StaticMesh
}

func NewMeshInstance(mesh *StaticMesh, transform Transform) *MeshInstance {
	return &MeshInstance{Instance: NewInstance(transform), Mesh: mesh}
}

// WorldAABB bounds the scaled mesh in world space
func (m *MeshInstance) WorldAABB() AABB {
	return m.Mesh.CalcAABB(m.ScaledMatrix())
}
