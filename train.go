package niyet

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/happyhackingspace/niyet/classifier"
	"github.com/happyhackingspace/niyet/internal/dataset"
	"github.com/happyhackingspace/niyet/internal/storage"
	"github.com/happyhackingspace/niyet/internal/textutil"
	"github.com/happyhackingspace/niyet/internal/vectorizer"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	// IgnoreTokens are dropped after lemmatization.
	IgnoreTokens []string
	// SupplementaryTerms are appended to the learned vocabulary so they
	// can be recognized at inference time.
	SupplementaryTerms []string
	// ShuffleSeed makes the example order reproducible. Nil shuffles
	// differently on every run.
	ShuffleSeed *uint64
	// Lemmatizer is "golem", "snowball" or "identity".
	Lemmatizer string
	// Workers vectorizes documents in parallel when greater than one.
	Workers int
	// C is the inverse L2 regularization strength.
	C       float64
	MaxIter int
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() *TrainConfig {
	lr := classifier.DefaultLogRegConfig()
	return &TrainConfig{
		IgnoreTokens: textutil.DefaultIgnoreTokens,
		Lemmatizer:   textutil.LemmatizerGolem,
		Workers:      1,
		C:            lr.C,
		MaxIter:      lr.MaxIter,
	}
}

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	TrainConfig
	Folds int
}

// EvalResult holds cross-validation evaluation results.
type EvalResult struct {
	Accuracy float64
	Correct  int
	Total    int
	// Unrecognized counts test patterns whose intent had no training
	// pattern in their fold.
	Unrecognized int
	Classes      []string
	Confusion    map[string]map[string]int // true -> predicted -> count
}

// Train trains a classifier on the intent corpus at corpusPath.
func Train(corpusPath string, config *TrainConfig) (*Classifier, error) {
	if config == nil {
		config = DefaultTrainConfig()
	}
	corpus, err := storage.NewStorage(corpusPath).Load()
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}
	p, err := newPipeline(config)
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}

	docs := dataset.Documents(corpus.Intents, p.normalizer)
	slog.Info("Corpus loaded", "path", corpusPath, "intents", len(corpus.Intents), "patterns", len(docs))
	model, err := p.fit(docs, corpus.Tags())
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}
	slog.Info("Model trained", "classes", model.Labels.Terms(), "vocabulary", model.Vocabulary.Len())
	return &Classifier{model: model}, nil
}

// Evaluate runs stratified k-fold cross-validation on the corpus.
func Evaluate(corpusPath string, config *EvalConfig) (*EvalResult, error) {
	if config == nil {
		config = &EvalConfig{TrainConfig: *DefaultTrainConfig()}
	}
	nFolds := config.Folds
	if nFolds <= 0 {
		nFolds = 5
	}
	if nFolds < 2 {
		return nil, fmt.Errorf("niyet: need at least 2 folds, got %d", nFolds)
	}

	corpus, err := storage.NewStorage(corpusPath).Load()
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}
	p, err := newPipeline(&config.TrainConfig)
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}
	docs := dataset.Documents(corpus.Intents, p.normalizer)
	if len(docs) < 2 {
		return nil, fmt.Errorf("niyet: need at least 2 patterns to evaluate, got %d", len(docs))
	}

	result := &EvalResult{
		Classes:   vectorizer.NewLabelSet(corpus.Tags()).Terms(),
		Confusion: make(map[string]map[string]int),
	}
	for fold, testIdx := range stratifiedKFold(docs, nFolds) {
		if len(testIdx) == 0 {
			continue
		}
		testSet := makeTestSet(len(docs), testIdx)
		var trainDocs []vectorizer.Document
		for i, d := range docs {
			if !testSet[i] {
				trainDocs = append(trainDocs, d)
			}
		}

		model, err := p.fit(trainDocs, nil)
		if err != nil {
			return nil, fmt.Errorf("niyet: fold %d: %w", fold, err)
		}

		for _, idx := range testIdx {
			doc := docs[idx]
			result.Total++
			if _, err := vectorizer.Label(doc.Tag, model.Labels); err != nil {
				var unknown *vectorizer.UnknownLabelError
				if !errors.As(err, &unknown) {
					return nil, fmt.Errorf("niyet: %w", err)
				}
				slog.Debug("Intent not seen in training fold", "fold", fold, "intent", doc.Tag, "document", idx)
				result.Unrecognized++
				continue
			}
			probs, err := model.Estimator.Predict(vectorizer.Features(doc.Tokens, model.Vocabulary))
			if err != nil {
				return nil, fmt.Errorf("niyet: fold %d: %w", fold, err)
			}
			predicted := model.Labels.At(vectorizer.ArgMax(probs))
			if result.Confusion[doc.Tag] == nil {
				result.Confusion[doc.Tag] = make(map[string]int)
			}
			result.Confusion[doc.Tag][predicted]++
			if predicted == doc.Tag {
				result.Correct++
			}
		}
	}
	if result.Total > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Total)
	}
	return result, nil
}

// pipeline holds the frozen settings shared by every training run.
type pipeline struct {
	settings      textutil.Settings
	normalizer    *textutil.Normalizer
	supplementary []string
	seed          *uint64
	workers       int
	lr            classifier.LogRegConfig
}

func newPipeline(config *TrainConfig) (*pipeline, error) {
	settings := textutil.Settings{
		Lemmatizer:   config.Lemmatizer,
		IgnoreTokens: config.IgnoreTokens,
	}
	if settings.Lemmatizer == "" {
		settings.Lemmatizer = textutil.LemmatizerGolem
	}
	n, err := textutil.FromSettings(settings)
	if err != nil {
		return nil, err
	}
	return &pipeline{
		settings:      settings,
		normalizer:    n,
		supplementary: config.SupplementaryTerms,
		seed:          config.ShuffleSeed,
		workers:       config.Workers,
		lr:            classifier.LogRegConfig{C: config.C, MaxIter: config.MaxIter},
	}, nil
}

// fit builds the vocabulary and label set from docs, vectorizes, shuffles
// and trains. Extra tags join the label set even without documents.
func (p *pipeline) fit(docs []vectorizer.Document, tags []string) (*classifier.IntentModel, error) {
	vocab, docLabels := vectorizer.Build(docs)
	labels := vectorizer.NewLabelSet(append(docLabels.Terms(), tags...))
	learned := vocab.Len()
	vocab = vectorizer.Augment(vocab, p.supplementary)
	slog.Debug("Vocabulary built", "classes", labels.Terms(), "unique_words", learned, "vocabulary", vocab.Len())

	examples, err := dataset.Assemble(docs, vocab, labels, dataset.Options{Workers: p.workers})
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	features, labelVecs := dataset.Split(dataset.Shuffle(examples, p.seed))

	est := classifier.NewLogisticRegression(p.lr)
	if err := est.Fit(features, labelVecs); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	model := &classifier.IntentModel{
		Vocabulary: vocab,
		Labels:     labels,
		Normalizer: p.settings,
		Estimator:  est,
	}
	if err := model.InitRuntime(); err != nil {
		return nil, err
	}
	return model, nil
}

// stratifiedKFold deals each intent's documents round-robin over the folds
// so every fold sees every intent where possible.
func stratifiedKFold(docs []vectorizer.Document, nFolds int) [][]int {
	if nFolds > len(docs) {
		nFolds = len(docs)
	}
	perTag := make(map[string]int)
	folds := make([][]int, nFolds)
	offset := 0
	for i, d := range docs {
		if _, ok := perTag[d.Tag]; !ok {
			// Start each intent on a different fold to balance fold sizes.
			perTag[d.Tag] = offset
			offset++
		}
		fold := perTag[d.Tag] % nFolds
		perTag[d.Tag]++
		folds[fold] = append(folds[fold], i)
	}
	return folds
}

func makeTestSet(n int, testIdx []int) []bool {
	set := make([]bool, n)
	for _, i := range testIdx {
		set[i] = true
	}
	return set
}
