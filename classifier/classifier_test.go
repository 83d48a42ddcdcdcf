package classifier

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/niyet/internal/textutil"
	"github.com/happyhackingspace/niyet/internal/vectorizer"
)

func TestCheckDimensions(t *testing.T) {
	tests := []struct {
		name     string
		features []vectorizer.FeatureVector
		labels   []vectorizer.LabelVector
		what     string
		index    int
	}{
		{
			name:     "inconsistent feature width",
			features: []vectorizer.FeatureVector{{1, 0}, {1}},
			labels:   []vectorizer.LabelVector{{1, 0}, {0, 1}},
			what:     "feature width",
			index:    1,
		},
		{
			name:     "inconsistent label width",
			features: []vectorizer.FeatureVector{{1, 0}, {0, 1}},
			labels:   []vectorizer.LabelVector{{1, 0}, {0, 0, 1}},
			what:     "label width",
			index:    1,
		},
		{
			name:     "count mismatch",
			features: []vectorizer.FeatureVector{{1, 0}, {0, 1}},
			labels:   []vectorizer.LabelVector{{1, 0}},
			what:     "label count",
			index:    -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLogisticRegression(DefaultLogRegConfig()).Fit(tt.features, tt.labels)
			var dim *DimensionMismatchError
			require.True(t, errors.As(err, &dim), "got %v", err)
			assert.Equal(t, tt.what, dim.What)
			assert.Equal(t, tt.index, dim.Index)
		})
	}

	featWidth, labelWidth, err := CheckDimensions(
		[]vectorizer.FeatureVector{{1, 0, 0}},
		[]vectorizer.LabelVector{{0, 1}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, featWidth)
	assert.Equal(t, 2, labelWidth)
}

func TestFitEmpty(t *testing.T) {
	err := NewLogisticRegression(DefaultLogRegConfig()).Fit(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestFitRejectsNonOneHot(t *testing.T) {
	lr := NewLogisticRegression(DefaultLogRegConfig())
	err := lr.Fit(
		[]vectorizer.FeatureVector{{1, 0}, {0, 1}},
		[]vectorizer.LabelVector{{1, 0}, {1, 1}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "example 1")
}

func separable() ([]vectorizer.FeatureVector, []vectorizer.LabelVector) {
	features := []vectorizer.FeatureVector{
		{1, 1, 0, 0, 0},
		{1, 0, 0, 0, 0},
		{0, 1, 0, 0, 0},
		{0, 0, 1, 1, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 1, 0},
	}
	labels := []vectorizer.LabelVector{
		{1, 0}, {1, 0}, {1, 0},
		{0, 1}, {0, 1}, {0, 1},
	}
	return features, labels
}

func TestLogisticRegression(t *testing.T) {
	features, labels := separable()
	lr := NewLogisticRegression(DefaultLogRegConfig())

	_, err := lr.Predict(features[0])
	require.ErrorIs(t, err, ErrNotFitted)

	require.NoError(t, lr.Fit(features, labels))
	assert.Equal(t, 5, lr.NumFeatures)

	for i, x := range features {
		probs, err := lr.Predict(x)
		require.NoError(t, err)
		require.Len(t, probs, 2)

		sum := probs[0] + probs[1]
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Equal(t, vectorizer.ArgMax(labels[i]), vectorizer.ArgMax(probs), "example %d", i)
	}

	// A feature never seen during training has no weight.
	probs, err := lr.Predict(vectorizer.FeatureVector{0, 0, 0, 0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, probs[0], 0.05)
}

func TestPredictWidthMismatch(t *testing.T) {
	features, labels := separable()
	lr := NewLogisticRegression(DefaultLogRegConfig())
	require.NoError(t, lr.Fit(features, labels))

	for _, x := range []vectorizer.FeatureVector{{1, 0}, {1, 0, 0, 0, 0, 0}} {
		_, err := lr.Predict(x)
		var dim *DimensionMismatchError
		require.True(t, errors.As(err, &dim))
		assert.Equal(t, 5, dim.Expected)
		assert.Equal(t, len(x), dim.Actual)
	}
}

func TestSoftmax(t *testing.T) {
	probs := softmax([]float64{1000, 1000})
	assert.InDelta(t, 0.5, probs[0], 1e-12)
	assert.False(t, math.IsNaN(probs[1]))
}

func trainedIntentModel(t *testing.T) *IntentModel {
	t.Helper()
	vocab := vectorizer.NewVocabulary([]string{"bye", "hello", "hi", "see", "you"})
	vocab = vectorizer.Augment(vocab, []string{"museum"})
	labels := vectorizer.NewLabelSet([]string{"greet", "bye"})

	docs := []vectorizer.Document{
		{Tokens: []string{"hi"}, Tag: "greet"},
		{Tokens: []string{"hello"}, Tag: "greet"},
		{Tokens: []string{"hello", "you"}, Tag: "greet"},
		{Tokens: []string{"bye"}, Tag: "bye"},
		{Tokens: []string{"see", "you"}, Tag: "bye"},
		{Tokens: []string{"bye", "bye"}, Tag: "bye"},
	}
	var features []vectorizer.FeatureVector
	var labelVecs []vectorizer.LabelVector
	for _, d := range docs {
		lv, err := vectorizer.Label(d.Tag, labels)
		require.NoError(t, err)
		features = append(features, vectorizer.Features(d.Tokens, vocab))
		labelVecs = append(labelVecs, lv)
	}

	lr := NewLogisticRegression(DefaultLogRegConfig())
	require.NoError(t, lr.Fit(features, labelVecs))
	return &IntentModel{
		Vocabulary: vocab,
		Labels:     labels,
		Normalizer: textutil.Settings{Lemmatizer: textutil.LemmatizerIdentity, IgnoreTokens: textutil.DefaultIgnoreTokens},
		Estimator:  lr,
	}
}

func TestIntentModelClassify(t *testing.T) {
	m := trainedIntentModel(t)

	preds, err := m.Classify("Hi !", 0)
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "greet", preds[0].Intent)
	assert.GreaterOrEqual(t, preds[0].Probability, preds[1].Probability)

	preds, err = m.Classify("see you", 0.99999)
	require.NoError(t, err)
	assert.Empty(t, preds)

	proba, err := m.ClassifyProba("bye")
	require.NoError(t, err)
	assert.Greater(t, proba["bye"], proba["greet"])
	assert.InDelta(t, 1.0, proba["bye"]+proba["greet"], 1e-9)

	fv, err := m.Vectorize("visit the museum")
	require.NoError(t, err)
	assert.Equal(t, vectorizer.FeatureVector{0, 0, 0, 0, 0, 1}, fv)
}

func TestIntentModelNotFitted(t *testing.T) {
	m := &IntentModel{}
	_, err := m.Classify("hi", 0)
	assert.ErrorIs(t, err, ErrNotFitted)
	assert.ErrorIs(t, m.Validate(), ErrNotFitted)
}

func TestIntentModelValidate(t *testing.T) {
	m := trainedIntentModel(t)
	require.NoError(t, m.Validate())

	m.Vocabulary = vectorizer.Augment(m.Vocabulary, []string{"temple"})
	err := m.Validate()
	var dim *DimensionMismatchError
	require.True(t, errors.As(err, &dim))
	assert.Equal(t, 6, dim.Expected)
	assert.Equal(t, 7, dim.Actual)
}

func TestSaveLoadModel(t *testing.T) {
	m := trainedIntentModel(t)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveModel(m, path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, m.Vocabulary.Terms(), loaded.Vocabulary.Terms())
	assert.Equal(t, m.Labels.Terms(), loaded.Labels.Terms())
	assert.Equal(t, m.Normalizer, loaded.Normalizer)

	for _, text := range []string{"hi", "see you", "hello museum", ""} {
		want, err := m.ClassifyProba(text)
		require.NoError(t, err)
		got, err := loaded.ClassifyProba(text)
		require.NoError(t, err)
		for tag, p := range want {
			assert.InDelta(t, p, got[tag], 1e-12, "%q/%s", text, tag)
		}
	}
}

func TestUnmarshalModelErrors(t *testing.T) {
	_, err := UnmarshalModel([]byte(`{"vocabulary":["a"],"labels":["x"],"estimator_type":"svm","estimator":{}}`))
	require.Error(t, err)

	// Estimator trained on a different vocabulary width.
	_, err = UnmarshalModel([]byte(`{
		"vocabulary": ["a", "b"],
		"labels": ["x", "y"],
		"normalizer": {"lemmatizer": "identity"},
		"estimator_type": "logistic_regression",
		"estimator": {"num_features": 3, "coef": [[0,0,0],[0,0,0]], "intercept": [0,0]}
	}`))
	var dim *DimensionMismatchError
	require.True(t, errors.As(err, &dim))

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
