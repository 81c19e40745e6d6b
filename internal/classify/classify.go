package classify

import (
	"context"
	"errors"

	"ecosort/internal/vision"
)

// ErrClassifierFailed indicates a transient classification failure. The
// scan loop logs it and continues; no points are awarded for the attempt.
var ErrClassifierFailed = errors.New("classification failed")

// Category is a waste category produced by the classifier.
type Category string

const (
	Organic     Category = "Organic"
	Inorganic   Category = "Inorganic"
	Radioactive Category = "Radioactive"
)

// Info describes a waste category for display and scoring.
type Info struct {
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Color       string   `json:"color"`
	Points      uint64   `json:"points"`
}

var categories = map[Category]Info{
	Organic: {
		Description: "Biodegradable waste from natural sources",
		Examples:    []string{"Food scraps", "Yard waste", "Paper products", "Cardboard"},
		Color:       "#4CAF50",
		Points:      5,
	},
	Inorganic: {
		Description: "Non-biodegradable materials that can be recycled",
		Examples:    []string{"Plastic containers", "Glass bottles", "Metal cans", "Electronics"},
		Color:       "#2196F3",
		Points:      10,
	},
	Radioactive: {
		Description: "Materials contaminated with radioactive substances",
		Examples:    []string{"Nuclear waste", "Medical isotopes", "Contaminated equipment"},
		Color:       "#ff9800",
		Points:      20,
	},
}

// InfoFor returns display and scoring info for a category.
func InfoFor(c Category) (Info, bool) {
	info, ok := categories[c]
	return info, ok
}

// Categories returns all known categories and their info.
func Categories() map[Category]Info {
	out := make(map[Category]Info, len(categories))
	for c, info := range categories {
		out[c] = info
	}
	return out
}

// ConfidenceLevel bands a confidence value for display.
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.7:
		return "high"
	case confidence >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

// Result is a single classification outcome.
type Result struct {
	Category   Category
	Confidence float64
}

// Classifier maps a frame to a waste category. The label mapping from raw
// model output to a category is the classifier's responsibility.
// This allows mocking the model in tests.
type Classifier interface {
	Classify(ctx context.Context, frame *vision.Frame) (Result, error)
}
