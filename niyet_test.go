package niyet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/niyet/internal/storage"
	"github.com/happyhackingspace/niyet/internal/vectorizer"
)

const intentsJSON = `{"intents": [
  {"tag": "greeting", "patterns": ["Hi", "Hello", "Hey there", "Good morning", "hello friend"]},
  {"tag": "goodbye", "patterns": ["Bye", "See you later", "Goodbye", "see you soon", "bye bye"]},
  {"tag": "heritage", "patterns": ["Tell me about the temple", "Show me the museum", "What is this inscription ?", "temple history"]},
  {"tag": "fallback"}
]}`

func writeCorpus(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "intents.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func testConfig() *TrainConfig {
	seed := uint64(1)
	config := DefaultTrainConfig()
	config.Lemmatizer = "identity"
	config.ShuffleSeed = &seed
	config.SupplementaryTerms = []string{"bronze", "temple", "chola"}
	return config
}

func TestTrainEndToEnd(t *testing.T) {
	path := writeCorpus(t, `{"intents": [
		{"tag": "greet", "patterns": ["hi", "hello"]},
		{"tag": "bye", "patterns": ["bye", "see you"]}
	]}`)
	config := testConfig()
	config.SupplementaryTerms = nil

	c, err := Train(path, config)
	require.NoError(t, err)
	assert.Equal(t, []string{"bye", "hello", "hi", "see", "you"}, c.Vocabulary())
	assert.Equal(t, []string{"bye", "greet"}, c.Intents())

	preds, err := c.Classify("hi", 0)
	require.NoError(t, err)
	require.NotEmpty(t, preds)
	assert.Equal(t, "greet", preds[0].Intent)
}

func TestTrainVocabulary(t *testing.T) {
	c, err := Train(writeCorpus(t, intentsJSON), testConfig())
	require.NoError(t, err)

	// Intents without patterns still get a class.
	assert.Equal(t, []string{"fallback", "goodbye", "greeting", "heritage"}, c.Intents())

	vocab := c.Vocabulary()
	assert.NotContains(t, vocab, "?")
	// Supplementary terms already learned keep their sorted position;
	// new ones are appended.
	assert.Equal(t, []string{"bronze", "chola"}, vocab[len(vocab)-2:])
	assert.Equal(t, 1, countOf(vocab, "temple"))
}

func countOf(items []string, s string) int {
	n := 0
	for _, it := range items {
		if it == s {
			n++
		}
	}
	return n
}

func TestTrainDeterministic(t *testing.T) {
	path := writeCorpus(t, intentsJSON)
	a, err := Train(path, testConfig())
	require.NoError(t, err)
	b, err := Train(path, testConfig())
	require.NoError(t, err)
	assert.Equal(t, a.Vocabulary(), b.Vocabulary())
	assert.Equal(t, a.Intents(), b.Intents())

	pa, err := a.ClassifyProba("hello temple")
	require.NoError(t, err)
	pb, err := b.ClassifyProba("hello temple")
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestTrainParallel(t *testing.T) {
	path := writeCorpus(t, intentsJSON)
	seq, err := Train(path, testConfig())
	require.NoError(t, err)

	config := testConfig()
	config.Workers = 4
	par, err := Train(path, config)
	require.NoError(t, err)

	ps, err := seq.ClassifyProba("see you")
	require.NoError(t, err)
	pp, err := par.ClassifyProba("see you")
	require.NoError(t, err)
	assert.Equal(t, ps, pp)
}

func TestClassify(t *testing.T) {
	c, err := Train(writeCorpus(t, intentsJSON), testConfig())
	require.NoError(t, err)

	tests := []struct {
		text string
		want string
	}{
		{"hello", "greeting"},
		{"see you later", "goodbye"},
		{"show me the temple", "heritage"},
	}
	for _, tt := range tests {
		preds, err := c.Classify(tt.text, 0)
		require.NoError(t, err)
		require.NotEmpty(t, preds, tt.text)
		assert.Equal(t, tt.want, preds[0].Intent, tt.text)
	}

	proba, err := c.ClassifyProba("bye")
	require.NoError(t, err)
	assert.Len(t, proba, 4)
}

func TestSaveLoad(t *testing.T) {
	c, err := Train(writeCorpus(t, intentsJSON), testConfig())
	require.NoError(t, err)

	modelPath := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, c.Save(modelPath))

	loaded, err := Load(modelPath)
	require.NoError(t, err)
	assert.Equal(t, c.Vocabulary(), loaded.Vocabulary())
	assert.Equal(t, c.Intents(), loaded.Intents())

	want, err := c.ClassifyProba("good morning")
	require.NoError(t, err)
	got, err := loaded.ClassifyProba("good morning")
	require.NoError(t, err)
	for tag, p := range want {
		assert.InDelta(t, p, got[tag], 1e-12, tag)
	}
}

func TestTrainMalformedCorpus(t *testing.T) {
	path := writeCorpus(t, `{"intents": [{"tag": "ok", "patterns": ["hi"]}, {"patterns": ["x"]}]}`)
	_, err := Train(path, testConfig())
	require.Error(t, err)
	var malformed *storage.MalformedCorpusError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 1, malformed.Index)
}

func TestTrainNoPatterns(t *testing.T) {
	_, err := Train(writeCorpus(t, `{"intents": [{"tag": "lonely"}]}`), testConfig())
	require.Error(t, err)
}

func TestTrainUnknownLemmatizer(t *testing.T) {
	config := testConfig()
	config.Lemmatizer = "nope"
	_, err := Train(writeCorpus(t, intentsJSON), config)
	require.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	path := writeCorpus(t, intentsJSON)
	result, err := Evaluate(path, &EvalConfig{TrainConfig: *testConfig(), Folds: 3})
	require.NoError(t, err)
	assert.Equal(t, 14, result.Total)
	assert.Equal(t, 0, result.Unrecognized)
	assert.Equal(t, []string{"fallback", "goodbye", "greeting", "heritage"}, result.Classes)
	assert.InDelta(t, float64(result.Correct)/float64(result.Total), result.Accuracy, 1e-12)

	confused := 0
	for _, row := range result.Confusion {
		for _, n := range row {
			confused += n
		}
	}
	assert.Equal(t, result.Total-result.Unrecognized, confused)
}

func TestEvaluateUnrecognized(t *testing.T) {
	path := writeCorpus(t, `{"intents": [
		{"tag": "greet", "patterns": ["hi", "hello", "hey"]},
		{"tag": "once", "patterns": ["only one"]}
	]}`)
	result, err := Evaluate(path, &EvalConfig{TrainConfig: *testConfig(), Folds: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 1, result.Unrecognized)
}

func TestEvaluateErrors(t *testing.T) {
	path := writeCorpus(t, intentsJSON)
	_, err := Evaluate(path, &EvalConfig{TrainConfig: *testConfig(), Folds: 1})
	require.Error(t, err)

	_, err = Evaluate(writeCorpus(t, `{"intents": [{"tag": "a", "patterns": ["x"]}]}`), &EvalConfig{TrainConfig: *testConfig()})
	require.Error(t, err)
}

func TestStratifiedKFold(t *testing.T) {
	folds := stratifiedKFold(docsOf("a", "a", "a", "b", "b", "b"), 3)
	require.Len(t, folds, 3)
	for i, fold := range folds {
		assert.Len(t, fold, 2, "fold %d", i)
	}

	folds = stratifiedKFold(docsOf("a", "b"), 5)
	assert.Len(t, folds, 2)
}

func docsOf(tags ...string) []vectorizer.Document {
	docs := make([]vectorizer.Document, len(tags))
	for i, tag := range tags {
		docs[i] = vectorizer.Document{Tokens: []string{"w"}, Tag: tag}
	}
	return docs
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.json")
	require.Error(t, err)
}

func TestClassifierNotInitialized(t *testing.T) {
	c := &Classifier{}
	_, err := c.Classify("hi", 0)
	require.Error(t, err)
	_, err = c.ClassifyProba("hi")
	require.Error(t, err)
	require.Error(t, c.Save(filepath.Join(t.TempDir(), "model.json")))
	assert.Nil(t, c.Vocabulary())
}
