package classify

import (
	"context"

	"ecosort/internal/vision"
)

// StubClassifier is a deterministic stand-in for a real model: it buckets
// the mean frame brightness into one of the three categories. Used by the
// demo server when no model backend is configured.
type StubClassifier struct{}

// NewStubClassifier creates a stub classifier.
func NewStubClassifier() *StubClassifier {
	return &StubClassifier{}
}

// Classify buckets mean brightness into a category.
func (s *StubClassifier) Classify(ctx context.Context, frame *vision.Frame) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(frame.Pix) == 0 {
		return Result{}, ErrClassifierFailed
	}

	var sum uint64
	var n uint64
	for i := 0; i+2 < len(frame.Pix); i += 4 {
		sum += uint64(frame.Pix[i]) + uint64(frame.Pix[i+1]) + uint64(frame.Pix[i+2])
		n += 3
	}
	if n == 0 {
		return Result{}, ErrClassifierFailed
	}
	mean := sum / n

	res := Result{Confidence: 0.5 + float64(mean%128)/256}
	switch {
	case mean < 96:
		res.Category = Organic
	case mean < 160:
		res.Category = Inorganic
	default:
		res.Category = Radioactive
	}
	return res, nil
}

// Ensure StubClassifier implements Classifier
var _ Classifier = (*StubClassifier)(nil)
