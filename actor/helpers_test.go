package actor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

// assertVecNear compares component-wise with an absolute tolerance. mgl64's
// ApproxEqual switches to epsilon squared when a component is zero.
func assertVecNear(t *testing.T, expected, actual mgl64.Vec3, delta float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.InDeltaSlice(t, expected[:], actual[:], delta, msgAndArgs...)
}

func assertMatNear(t *testing.T, expected, actual mgl64.Mat4, delta float64, msgAndArgs ...interface{}) bool {
	t.Helper()
	return assert.InDeltaSlice(t, expected[:], actual[:], delta, msgAndArgs...)
}

func assertBoxNear(t *testing.T, expected, actual AABB, delta float64) {
	t.Helper()
	assertVecNear(t, expected.Min, actual.Min, delta, "min of %v", actual)
	assertVecNear(t, expected.Max, actual.Max, delta, "max of %v", actual)
}
