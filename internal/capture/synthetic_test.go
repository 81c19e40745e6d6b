package capture

import (
	"context"
	"testing"

	"ecosort/internal/vision"
)

func TestSyntheticDeviceLifecycle(t *testing.T) {
	device := NewSyntheticDevice(32, 24, 2)

	// Not acquired yet: no frames
	if _, err := device.SampleFrame(); err != ErrNoFrame {
		t.Fatalf("SampleFrame before acquire: err = %v, want ErrNoFrame", err)
	}

	if err := device.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	frame, err := device.SampleFrame()
	if err != nil {
		t.Fatalf("SampleFrame failed: %v", err)
	}
	if frame.Width != 32 || frame.Height != 24 || len(frame.Pix) != 32*24*4 {
		t.Errorf("unexpected frame dimensions: %dx%d", frame.Width, frame.Height)
	}

	device.Release()
	if _, err := device.SampleFrame(); err != ErrNoFrame {
		t.Errorf("SampleFrame after release: err = %v, want ErrNoFrame", err)
	}
}

func TestSyntheticDevicePresentsObject(t *testing.T) {
	device := NewSyntheticDevice(32, 24, 2)
	if err := device.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	// Samples 0,1 are the empty scene; samples 2,3 contain the object
	empty, _ := device.SampleFrame()
	device.SampleFrame()
	object, _ := device.SampleFrame()

	score, err := vision.MotionScore(empty, object)
	if err != nil {
		t.Fatalf("MotionScore failed: %v", err)
	}
	if score == 0 {
		t.Error("presented object should register as motion")
	}
}

func TestSyntheticDeviceAcquireCancelled(t *testing.T) {
	device := NewSyntheticDevice(32, 24, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := device.Acquire(ctx); err != ErrDeviceUnavailable {
		t.Errorf("Acquire with cancelled context: err = %v, want ErrDeviceUnavailable", err)
	}
}
