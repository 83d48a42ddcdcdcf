// Package classifier trains and applies intent classification models.
package classifier

import (
	"errors"
	"fmt"

	"github.com/happyhackingspace/niyet/internal/vectorizer"
)

// Estimator is the numeric learning capability behind an IntentModel.
//
// Fit requires non-empty, equal-length inputs where every feature vector has
// the same width and every label vector has the same width. Predict returns
// a probability distribution over labels and is defined only for inputs of
// the feature width seen by Fit; any other width is a *DimensionMismatchError.
type Estimator interface {
	Fit(features []vectorizer.FeatureVector, labels []vectorizer.LabelVector) error
	Predict(x vectorizer.FeatureVector) ([]float64, error)
}

var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("estimator is not fitted")
	// ErrEmptyDataset is returned by Fit when there are no examples.
	ErrEmptyDataset = errors.New("empty training set")
)

// DimensionMismatchError reports inconsistent vector widths or counts.
// Index is the offending example, or -1 when the error is not tied to one.
type DimensionMismatchError struct {
	What     string
	Index    int
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("dimension mismatch: %s: expected %d, got %d", e.What, e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch: %s of example %d: expected %d, got %d", e.What, e.Index, e.Expected, e.Actual)
}

// CheckDimensions validates a training set and returns its feature and
// label widths.
func CheckDimensions(features []vectorizer.FeatureVector, labels []vectorizer.LabelVector) (int, int, error) {
	if len(features) != len(labels) {
		return 0, 0, &DimensionMismatchError{What: "label count", Index: -1, Expected: len(features), Actual: len(labels)}
	}
	if len(features) == 0 {
		return 0, 0, ErrEmptyDataset
	}
	featWidth, labelWidth := len(features[0]), len(labels[0])
	for i := range features {
		if len(features[i]) != featWidth {
			return 0, 0, &DimensionMismatchError{What: "feature width", Index: i, Expected: featWidth, Actual: len(features[i])}
		}
		if len(labels[i]) != labelWidth {
			return 0, 0, &DimensionMismatchError{What: "label width", Index: i, Expected: labelWidth, Actual: len(labels[i])}
		}
	}
	return featWidth, labelWidth, nil
}
