package classifier

import (
	"errors"
	"fmt"
	"sort"

	"github.com/happyhackingspace/niyet/internal/textutil"
	"github.com/happyhackingspace/niyet/internal/vectorizer"
)

// IntentModel is a trained intent classifier. The vocabulary, label set and
// normalizer settings are frozen at training time and must travel with the
// estimator: without them raw text cannot be vectorized the way the
// estimator was trained.
type IntentModel struct {
	Vocabulary vectorizer.Vocabulary
	Labels     vectorizer.LabelSet
	Normalizer textutil.Settings
	Estimator  Estimator

	normalizer *textutil.Normalizer
}

// Prediction is a single intent and its probability.
type Prediction struct {
	Intent      string  `json:"intent"`
	Probability float64 `json:"probability"`
}

// InitRuntime rebuilds the normalizer from the frozen settings.
func (m *IntentModel) InitRuntime() error {
	n, err := textutil.FromSettings(m.Normalizer)
	if err != nil {
		return err
	}
	m.normalizer = n
	return nil
}

// Vectorize normalizes text and encodes it over the frozen vocabulary.
func (m *IntentModel) Vectorize(text string) (vectorizer.FeatureVector, error) {
	if m.normalizer == nil {
		if err := m.InitRuntime(); err != nil {
			return nil, err
		}
	}
	return vectorizer.Features(m.normalizer.Normalize(text), m.Vocabulary), nil
}

// ClassifyProba returns the probability of every intent for text.
func (m *IntentModel) ClassifyProba(text string) (map[string]float64, error) {
	probs, err := m.predict(text)
	if err != nil {
		return nil, err
	}
	result := make(map[string]float64, len(probs))
	for i, p := range probs {
		result[m.Labels.At(i)] = p
	}
	return result, nil
}

// Classify returns the intents whose probability is at least threshold,
// most probable first. An empty result means the text was not recognized.
func (m *IntentModel) Classify(text string, threshold float64) ([]Prediction, error) {
	probs, err := m.predict(text)
	if err != nil {
		return nil, err
	}
	out := make([]Prediction, 0, len(probs))
	for i, p := range probs {
		if p >= threshold {
			out = append(out, Prediction{Intent: m.Labels.At(i), Probability: p})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out, nil
}

func (m *IntentModel) predict(text string) ([]float64, error) {
	if m.Estimator == nil {
		return nil, ErrNotFitted
	}
	x, err := m.Vectorize(text)
	if err != nil {
		return nil, err
	}
	probs, err := m.Estimator.Predict(x)
	if err != nil {
		return nil, err
	}
	if len(probs) != m.Labels.Len() {
		return nil, &DimensionMismatchError{What: "label width", Index: -1, Expected: m.Labels.Len(), Actual: len(probs)}
	}
	return probs, nil
}

// Validate checks that the estimator accepts the model's vocabulary width.
func (m *IntentModel) Validate() error {
	if m.Estimator == nil {
		return ErrNotFitted
	}
	probs, err := m.Estimator.Predict(make(vectorizer.FeatureVector, m.Vocabulary.Len()))
	if err != nil {
		if errors.Is(err, ErrNotFitted) {
			return err
		}
		return fmt.Errorf("vocabulary does not match estimator: %w", err)
	}
	if len(probs) != m.Labels.Len() {
		return &DimensionMismatchError{What: "label width", Index: -1, Expected: m.Labels.Len(), Actual: len(probs)}
	}
	return nil
}
