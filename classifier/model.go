package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/happyhackingspace/niyet/internal/textutil"
	"github.com/happyhackingspace/niyet/internal/vectorizer"
)

// Estimator type names stored in model files.
const estimatorLogReg = "logistic_regression"

// serializedModel is the on-disk form of an IntentModel.
type serializedModel struct {
	Vocabulary    vectorizer.Vocabulary `json:"vocabulary"`
	Labels        vectorizer.LabelSet   `json:"labels"`
	Normalizer    textutil.Settings     `json:"normalizer"`
	EstimatorType string                `json:"estimator_type"`
	Estimator     json.RawMessage       `json:"estimator"`
}

func estimatorTypeName(e Estimator) (string, error) {
	switch e.(type) {
	case *LogisticRegression:
		return estimatorLogReg, nil
	default:
		return "", fmt.Errorf("unsupported estimator %T", e)
	}
}

// MarshalModel serializes the model to JSON bytes.
func MarshalModel(m *IntentModel) ([]byte, error) {
	typ, err := estimatorTypeName(m.Estimator)
	if err != nil {
		return nil, err
	}
	est, err := json.Marshal(m.Estimator)
	if err != nil {
		return nil, err
	}
	return json.Marshal(serializedModel{
		Vocabulary:    m.Vocabulary,
		Labels:        m.Labels,
		Normalizer:    m.Normalizer,
		EstimatorType: typ,
		Estimator:     est,
	})
}

// UnmarshalModel deserializes a model from JSON bytes and checks that the
// estimator fits the stored vocabulary and label set.
func UnmarshalModel(data []byte) (*IntentModel, error) {
	var sm serializedModel
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, err
	}
	var est Estimator
	switch sm.EstimatorType {
	case estimatorLogReg:
		lr := &LogisticRegression{}
		if err := json.Unmarshal(sm.Estimator, lr); err != nil {
			return nil, fmt.Errorf("decode estimator: %w", err)
		}
		est = lr
	default:
		return nil, fmt.Errorf("unknown estimator type %q", sm.EstimatorType)
	}

	m := &IntentModel{
		Vocabulary: sm.Vocabulary,
		Labels:     sm.Labels,
		Normalizer: sm.Normalizer,
		Estimator:  est,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := m.InitRuntime(); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveModel writes the model to path as JSON.
func SaveModel(m *IntentModel, path string) error {
	data, err := MarshalModel(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadModel reads a model written by SaveModel.
func LoadModel(path string) (*IntentModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalModel(data)
}
