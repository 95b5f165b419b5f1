package meshcollide

import "github.com/pkg/errors"

var (
	// ErrUnsupportedScaleMode is returned when a mesh instance carries a scale the
	// query cannot express, such as a global scale.
	ErrUnsupportedScaleMode = errors.New("meshcollide: unsupported scale mode")
	// ErrCapacityExceeded is returned when a fixed candidate or clip buffer is full
	ErrCapacityExceeded = errors.New("meshcollide: capacity exceeded")
	// ErrInvalidFace is returned for face ranges outside the mesh buffers
	ErrInvalidFace = errors.New("meshcollide: invalid face")
	// ErrInvalidQuery is returned for malformed query parameters or unbuilt descriptors
	ErrInvalidQuery = errors.New("meshcollide: invalid query")
)
