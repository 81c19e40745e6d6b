package types

import "time"

// Scan event names emitted by the controller.
const (
	EventScanStarted          = "scan_started"
	EventFrameCaptured        = "frame_captured"
	EventMotionTriggered      = "motion_triggered"
	EventClassificationResult = "classification_result"
	EventClassifierError      = "classifier_error"
	EventScanStopped          = "scan_stopped"
)

// ScanEvent is a single controller event delivered to subscribers.
type ScanEvent struct {
	Name       string    `json:"name"`
	Score      int64     `json:"score,omitempty"`
	Category   string    `json:"category,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Level      string    `json:"level,omitempty"`
	Points     uint64    `json:"points,omitempty"`
	BadgeTier  uint      `json:"badge_tier,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
