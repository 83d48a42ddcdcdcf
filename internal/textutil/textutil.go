// Package textutil turns raw utterances into canonical token sequences.
package textutil

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultIgnoreTokens are the punctuation tokens dropped after lemmatization.
var DefaultIgnoreTokens = []string{"?", "!", ".", ","}

// Settings describes a Normalizer in serializable form so a trained model
// can rebuild exactly the normalizer it was trained with.
type Settings struct {
	Lemmatizer   string   `json:"lemmatizer"`
	IgnoreTokens []string `json:"ignore_tokens"`
}

// Normalizer maps raw text to canonical tokens.
type Normalizer struct {
	lemmatizer Lemmatizer
	ignore     map[string]struct{}
}

// NewNormalizer creates a Normalizer with the given lemmatizer and ignore set.
// A nil lemmatizer leaves tokens unchanged.
func NewNormalizer(lemmatizer Lemmatizer, ignoreTokens []string) *Normalizer {
	if lemmatizer == nil {
		lemmatizer = Identity
	}
	ignore := make(map[string]struct{}, len(ignoreTokens))
	for _, t := range ignoreTokens {
		ignore[t] = struct{}{}
	}
	return &Normalizer{
		lemmatizer: lemmatizer,
		ignore:     ignore,
	}
}

// FromSettings builds the Normalizer described by s.
func FromSettings(s Settings) (*Normalizer, error) {
	lem, err := LemmatizerByName(s.Lemmatizer)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(lem, s.IgnoreTokens), nil
}

// Normalize splits text on whitespace, lowercases and lemmatizes each token,
// then removes ignored tokens. Empty text yields an empty slice.
func (n *Normalizer) Normalize(text string) []string {
	fields := strings.Fields(norm.NFC.String(text))
	// A Caser is stateful and not safe for concurrent use.
	lower := cases.Lower(language.Und)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, n.lemmatizer.Lemma(lower.String(f)))
	}
	return lo.Filter(tokens, func(t string, _ int) bool {
		_, skip := n.ignore[t]
		return !skip && t != ""
	})
}
