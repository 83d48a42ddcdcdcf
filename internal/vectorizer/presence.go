package vectorizer

import "fmt"

// FeatureVector is a binary bag-of-words vector; entry i is 1 when
// vocabulary term i occurs in the document.
type FeatureVector []float64

// LabelVector is a one-hot encoding of an intent tag.
type LabelVector []float64

// UnknownLabelError is returned when a tag is not part of the label set.
type UnknownLabelError struct {
	Tag string
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown label %q", e.Tag)
}

// Features encodes tokens as a presence vector over vocab. Repeated tokens
// do not increase the value and tokens outside vocab are ignored.
func Features(tokens []string, vocab Vocabulary) FeatureVector {
	fv := make(FeatureVector, vocab.Len())
	for _, tok := range tokens {
		if idx, ok := vocab.Index(tok); ok {
			fv[idx] = 1
		}
	}
	return fv
}

// Label returns the one-hot vector of tag over labels.
func Label(tag string, labels LabelSet) (LabelVector, error) {
	idx, ok := labels.Index(tag)
	if !ok {
		return nil, &UnknownLabelError{Tag: tag}
	}
	lv := make(LabelVector, labels.Len())
	lv[idx] = 1
	return lv, nil
}

// Sparse converts the vector to its sparse form.
func (fv FeatureVector) Sparse() SparseVector {
	return FromDense(fv)
}

// ArgMax returns the index of the largest entry, or -1 for an empty vector.
// Ties resolve to the lowest index.
func ArgMax(v []float64) int {
	best := -1
	for i, x := range v {
		if best < 0 || x > v[best] {
			best = i
		}
	}
	return best
}
