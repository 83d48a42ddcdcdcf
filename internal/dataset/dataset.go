// Package dataset assembles labeled training examples from normalized
// documents.
package dataset

import (
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/happyhackingspace/niyet/internal/storage"
	"github.com/happyhackingspace/niyet/internal/textutil"
	"github.com/happyhackingspace/niyet/internal/vectorizer"
)

// Example pairs a document's feature vector with its label vector.
// Tag and Source identify the document the example was built from.
type Example struct {
	Features vectorizer.FeatureVector
	Label    vectorizer.LabelVector
	Tag      string
	Source   int
}

// Options controls assembly.
type Options struct {
	// Workers is the number of goroutines vectorizing documents.
	// Values below 2 vectorize sequentially.
	Workers int
}

// Documents normalizes every pattern of every intent into one Document,
// in corpus order.
func Documents(intents []storage.Intent, n *textutil.Normalizer) []vectorizer.Document {
	var docs []vectorizer.Document
	for _, intent := range intents {
		for _, pattern := range intent.Patterns {
			docs = append(docs, vectorizer.Document{
				Tokens: n.Normalize(pattern),
				Tag:    intent.Tag,
			})
		}
	}
	return docs
}

// Assemble vectorizes each document against the frozen vocabulary and label
// set. The result is in document order regardless of Workers.
func Assemble(docs []vectorizer.Document, vocab vectorizer.Vocabulary, labels vectorizer.LabelSet, opts Options) ([]Example, error) {
	examples := make([]Example, len(docs))
	build := func(i int) error {
		lv, err := vectorizer.Label(docs[i].Tag, labels)
		if err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		examples[i] = Example{
			Features: vectorizer.Features(docs[i].Tokens, vocab),
			Label:    lv,
			Tag:      docs[i].Tag,
			Source:   i,
		}
		return nil
	}

	if opts.Workers < 2 {
		for i := range docs {
			if err := build(i); err != nil {
				return nil, err
			}
		}
		return examples, nil
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range docs {
		g.Go(func() error { return build(i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return examples, nil
}

// NewRand returns a PCG source seeded with seed, or a randomly seeded one
// when seed is nil.
func NewRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed))
}

// Shuffle returns a random permutation of examples. The input slice is not
// modified. A nil seed gives a different order on every call.
func Shuffle(examples []Example, seed *uint64) []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	r := NewRand(seed)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Split separates examples into index-aligned feature and label sequences.
func Split(examples []Example) ([]vectorizer.FeatureVector, []vectorizer.LabelVector) {
	features := lo.Map(examples, func(e Example, _ int) vectorizer.FeatureVector { return e.Features })
	labels := lo.Map(examples, func(e Example, _ int) vectorizer.LabelVector { return e.Label })
	return features, labels
}
