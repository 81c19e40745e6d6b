package capture

import (
	"context"
	"errors"

	"ecosort/internal/vision"
)

// ErrDeviceUnavailable indicates the capture device could not be acquired.
var ErrDeviceUnavailable = errors.New("capture device unavailable")

// ErrNoFrame indicates the device has no valid frame yet (e.g. the camera
// is still warming up and reports no dimensions).
var ErrNoFrame = errors.New("no frame available")

// Device provides still frames from a camera-like source.
// This allows mocking the camera in tests.
type Device interface {
	// Acquire opens the underlying capture source. Fails with
	// ErrDeviceUnavailable if the source cannot be opened.
	Acquire(ctx context.Context) error

	// SampleFrame grabs the current still frame. Fails with ErrNoFrame
	// until the source produces valid dimensions.
	SampleFrame() (*vision.Frame, error)

	// Release closes the capture source. Safe to call when not acquired.
	Release()
}
