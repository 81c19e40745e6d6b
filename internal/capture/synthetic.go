package capture

import (
	"context"
	"sync"

	"ecosort/internal/vision"
)

// SyntheticDevice generates frames without camera hardware: a flat gray
// scene into which a bright "object" is periodically presented and removed.
// Used by the demo server and in tests.
type SyntheticDevice struct {
	width  int
	height int

	// PresentEvery controls how many samples elapse between the object
	// appearing and disappearing. Zero means a static scene.
	presentEvery int

	mu       sync.Mutex
	acquired bool
	samples  int
}

// NewSyntheticDevice creates a synthetic device producing frames of the
// given dimensions.
func NewSyntheticDevice(width, height, presentEvery int) *SyntheticDevice {
	return &SyntheticDevice{
		width:        width,
		height:       height,
		presentEvery: presentEvery,
	}
}

// Acquire marks the device as open.
func (d *SyntheticDevice) Acquire(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return ErrDeviceUnavailable
	}
	d.acquired = true
	d.samples = 0
	return nil
}

// SampleFrame renders the current scene.
func (d *SyntheticDevice) SampleFrame() (*vision.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.acquired {
		return nil, ErrNoFrame
	}

	frame := vision.NewFrame(d.width, d.height)
	for i := range frame.Pix {
		frame.Pix[i] = 0x80
	}

	if d.presentEvery > 0 && (d.samples/d.presentEvery)%2 == 1 {
		d.drawObject(frame)
	}
	d.samples++
	return frame, nil
}

// Release marks the device as closed.
func (d *SyntheticDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquired = false
}

// drawObject fills the center quarter of the frame with a bright block.
func (d *SyntheticDevice) drawObject(frame *vision.Frame) {
	for y := d.height / 4; y < 3*d.height/4; y++ {
		for x := d.width / 4; x < 3*d.width/4; x++ {
			i := (y*d.width + x) * 4
			frame.Pix[i] = 0xF0
			frame.Pix[i+1] = 0xD0
			frame.Pix[i+2] = 0x40
		}
	}
}

// Ensure SyntheticDevice implements Device
var _ Device = (*SyntheticDevice)(nil)
