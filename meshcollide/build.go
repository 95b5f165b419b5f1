package meshcollide

import (
	"math"

	"github.com/akmonengine/polysoup/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Build prepares d for a query of convex against mesh. It derives the relative
// transform from convex space to mesh space, the companion transform that removes
// the mesh scale, and the convex bounds in mesh space.
//
// On error, d is left reset and must not be queried.
func Build(d *Descriptor, convex *actor.ConvexInstance, mesh *actor.MeshInstance, params QueryParams) error {
	d.Reset()

	if convex == nil || convex.Shape == nil {
		return errors.Wrap(ErrInvalidQuery, "nil convex instance")
	}
	if mesh == nil || mesh.Mesh == nil {
		return errors.Wrap(ErrInvalidQuery, "nil mesh instance")
	}
	if params.SkinThickness < 0 || math.IsNaN(params.SkinThickness) || math.IsInf(params.SkinThickness, 0) {
		return errors.Wrapf(ErrInvalidQuery, "skin thickness %v", params.SkinThickness)
	}

	matrix := mesh.Transform.InverseMatrix().Mul4(convex.GlobalMatrix())
	convexMatrix := mgl64.Ident4()

	switch mode := mesh.ScaleMode(); mode {
	case actor.ScaleUnit:

	case actor.ScaleUniform:
		invScale := mesh.InvScale().X()
		convexMatrix = mgl64.Scale3D(invScale, invScale, invScale)
		matrix[12] *= invScale
		matrix[13] *= invScale
		matrix[14] *= invScale

	case actor.ScaleNonUniform:
		// the scale acts along mesh axes, so in convex space it is conjugated by the rotation
		invScale := mesh.InvScale()
		rotation := matrix.Mat3()
		convexMatrix = rotation.Transpose().
			Mul3(mgl64.Diag3(invScale)).
			Mul3(rotation).
			Mat4()
		matrix[12] *= invScale[0]
		matrix[13] *= invScale[1]
		matrix[14] *= invScale[2]

	default:
		return errors.Wrapf(ErrUnsupportedScaleMode, "mesh instance has %s scale", mode)
	}

	d.Matrix = matrix
	d.ConvexMatrix = convexMatrix
	d.FullMatrix = matrix.Mul4(convexMatrix)
	d.SkinThickness = params.SkinThickness
	d.Continuous = params.Continuous

	box := convex.CalcAABB(d.FullMatrix)

	local := convex.CalcAABB(convexMatrix)
	d.HalfExtents = local.HalfExtents()
	d.Center = actor.TransformPoint(matrix, local.Center())
	d.Rotation = matrix.Mat3()

	if params.Continuous {
		invScale := mesh.InvScale()
		travel := actor.UnrotateVector(mesh.GlobalMatrix(), params.Displacement)
		d.Travel = mgl64.Vec3{travel[0] * invScale[0], travel[1] * invScale[1], travel[2] * invScale[2]}
		box = box.Sweep(d.Travel)
	}

	d.Box = box
	d.built = true
	return nil
}
