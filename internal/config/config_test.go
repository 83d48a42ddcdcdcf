package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/niyet/internal/textutil"
)

func TestDefaults(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "intents.json", c.Corpus)
	assert.Equal(t, textutil.DefaultIgnoreTokens, c.IgnoreTokens)
	assert.Equal(t, DefaultSupplementaryTerms, c.SupplementaryTerms)
	assert.Nil(t, c.ShuffleSeed)
	assert.Equal(t, textutil.LemmatizerGolem, c.Lemmatizer)
	assert.Equal(t, 1, c.Workers)
	assert.Equal(t, 0.25, c.Threshold)
	assert.Equal(t, Classifier{C: 5.0, MaxIter: 100}, c.Classifier)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "niyet.yaml")
	yaml := `corpus: data/intents.yaml
ignore_tokens: ["?", "!"]
supplementary_terms: [museum, temple]
shuffle_seed: 7
lemmatizer: snowball
workers: 4
classifier:
  c: 2.5
  max_iter: 50
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	v := New()
	require.NoError(t, ReadFile(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "data/intents.yaml", c.Corpus)
	assert.Equal(t, []string{"?", "!"}, c.IgnoreTokens)
	assert.Equal(t, []string{"museum", "temple"}, c.SupplementaryTerms)
	require.NotNil(t, c.ShuffleSeed)
	assert.Equal(t, uint64(7), *c.ShuffleSeed)
	assert.Equal(t, textutil.LemmatizerSnowball, c.Lemmatizer)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, Classifier{C: 2.5, MaxIter: 50}, c.Classifier)
}

func TestReadFileMissing(t *testing.T) {
	v := New()
	require.Error(t, ReadFile(v, filepath.Join(t.TempDir(), "nope.yaml")))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()
	require.NoError(t, ReadFile(New(), ""))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("NIYET_SHUFFLE_SEED", "11")
	t.Setenv("NIYET_CLASSIFIER_MAX_ITER", "9")
	c, err := Load(New())
	require.NoError(t, err)
	require.NotNil(t, c.ShuffleSeed)
	assert.Equal(t, uint64(11), *c.ShuffleSeed)
	assert.Equal(t, 9, c.Classifier.MaxIter)
}

func TestLoadValidation(t *testing.T) {
	v := New()
	v.Set(KeyThreshold, 1.5)
	_, err := Load(v)
	require.Error(t, err)

	v = New()
	v.Set(KeyWorkers, 0)
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Workers)
}
