package vectorizer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Document is one normalized pattern and the intent it belongs to.
type Document struct {
	Tokens []string `json:"tokens"`
	Tag    string   `json:"tag"`
}

// termIndex is an immutable ordered list of distinct terms. Position i is
// the index of the term.
type termIndex struct {
	terms []string
	index map[string]int
}

func newTermIndex(terms []string) (termIndex, error) {
	index := make(map[string]int, len(terms))
	for i, t := range terms {
		if _, dup := index[t]; dup {
			return termIndex{}, fmt.Errorf("duplicate term %q at index %d", t, i)
		}
		index[t] = i
	}
	return termIndex{terms: terms, index: index}, nil
}

// sortedUnique returns the distinct items in byte order.
func sortedUnique(items []string) []string {
	out := lo.Uniq(items)
	sort.Strings(out)
	return out
}

func mustTermIndex(terms []string) termIndex {
	ti, err := newTermIndex(terms)
	if err != nil {
		panic(err)
	}
	return ti
}

// Len returns the number of terms.
func (t termIndex) Len() int {
	return len(t.terms)
}

// Terms returns a copy of the terms in index order.
func (t termIndex) Terms() []string {
	out := make([]string, len(t.terms))
	copy(out, t.terms)
	return out
}

// At returns the term at index i.
func (t termIndex) At(i int) string {
	return t.terms[i]
}

// Index returns the position of term.
func (t termIndex) Index(term string) (int, bool) {
	i, ok := t.index[term]
	return i, ok
}

// Contains reports whether term is present.
func (t termIndex) Contains(term string) bool {
	_, ok := t.index[term]
	return ok
}

// MarshalJSON encodes the terms as a JSON array in index order.
func (t termIndex) MarshalJSON() ([]byte, error) {
	if t.terms == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.terms)
}

// UnmarshalJSON decodes a JSON array, keeping its order as the index order.
func (t *termIndex) UnmarshalJSON(data []byte) error {
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return err
	}
	ti, err := newTermIndex(terms)
	if err != nil {
		return err
	}
	*t = ti
	return nil
}

// Vocabulary maps feature terms to feature indices.
type Vocabulary struct {
	termIndex
}

// NewVocabulary builds a sorted, deduplicated vocabulary from terms.
func NewVocabulary(terms []string) Vocabulary {
	return Vocabulary{mustTermIndex(sortedUnique(terms))}
}

// OrderedVocabulary keeps terms in the given order. Duplicates are an error.
func OrderedVocabulary(terms []string) (Vocabulary, error) {
	ti, err := newTermIndex(append([]string(nil), terms...))
	if err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary: %w", err)
	}
	return Vocabulary{ti}, nil
}

// LabelSet maps intent tags to class indices.
type LabelSet struct {
	termIndex
}

// NewLabelSet builds a sorted, deduplicated label set from tags.
func NewLabelSet(tags []string) LabelSet {
	return LabelSet{mustTermIndex(sortedUnique(tags))}
}

// OrderedLabelSet keeps tags in the given order. Duplicates are an error.
func OrderedLabelSet(tags []string) (LabelSet, error) {
	ti, err := newTermIndex(append([]string(nil), tags...))
	if err != nil {
		return LabelSet{}, fmt.Errorf("label set: %w", err)
	}
	return LabelSet{ti}, nil
}

// Build collects the vocabulary and label set of a document collection.
// Both are sorted in byte order so the same corpus always produces the same
// index assignment. An empty collection yields empty results.
func Build(docs []Document) (Vocabulary, LabelSet) {
	tokens := lo.FlatMap(docs, func(d Document, _ int) []string { return d.Tokens })
	tags := lo.Map(docs, func(d Document, _ int) string { return d.Tag })
	return NewVocabulary(tokens), NewLabelSet(tags)
}

// Augment appends supplementary terms to vocab. Terms already present keep
// their index; new terms are appended in input order without duplicates.
func Augment(vocab Vocabulary, terms []string) Vocabulary {
	out := vocab.Terms()
	seen := make(map[string]struct{}, len(out)+len(terms))
	for _, t := range out {
		seen[t] = struct{}{}
	}
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return Vocabulary{mustTermIndex(out)}
}
