// Package storage loads intent corpora used for training.
package storage

import (
	"fmt"

	"github.com/samber/lo"
)

// Intent is a labeled category of utterances with example patterns.
type Intent struct {
	Tag      string   `json:"tag" yaml:"tag" validate:"required"`
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

// Corpus is the parsed training input.
type Corpus struct {
	Intents []Intent `json:"intents" yaml:"intents"`
}

// Tags returns the tag of every intent, including intents without patterns.
func (c *Corpus) Tags() []string {
	return lo.Map(c.Intents, func(i Intent, _ int) string { return i.Tag })
}

// NumPatterns returns the total number of patterns in the corpus.
func (c *Corpus) NumPatterns() int {
	return lo.SumBy(c.Intents, func(i Intent) int { return len(i.Patterns) })
}

// MalformedCorpusError reports a missing or invalid required field.
// Index is the position of the offending intent, or -1 for the document root.
type MalformedCorpusError struct {
	Path   string
	Index  int
	Field  string
	Reason string
}

func (e *MalformedCorpusError) Error() string {
	where := "corpus"
	if e.Path != "" {
		where = e.Path
	}
	if e.Index < 0 {
		return fmt.Sprintf("%s: malformed corpus: %s: %s", where, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: malformed corpus: intent %d: %s: %s", where, e.Index, e.Field, e.Reason)
}
