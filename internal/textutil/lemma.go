package textutil

import (
	"fmt"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/kljensen/snowball/english"
)

// Lemmatizer reduces a lowercase token to its canonical form.
// Implementations must be pure and safe for concurrent use.
type Lemmatizer interface {
	Lemma(token string) string
}

// LemmatizerFunc adapts a function to the Lemmatizer interface.
type LemmatizerFunc func(token string) string

// Lemma calls f(token).
func (f LemmatizerFunc) Lemma(token string) string {
	return f(token)
}

// Lemmatizer names accepted by LemmatizerByName.
const (
	LemmatizerGolem    = "golem"
	LemmatizerSnowball = "snowball"
	LemmatizerIdentity = "identity"
)

// Identity returns tokens unchanged.
var Identity Lemmatizer = LemmatizerFunc(func(token string) string { return token })

// Snowball stems tokens with the English Snowball (Porter2) algorithm.
var Snowball Lemmatizer = LemmatizerFunc(func(token string) string {
	return english.Stem(token, false)
})

// The English dictionary is several megabytes; load it once per process.
var loadGolem = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// Golem returns the dictionary-backed English lemmatizer.
func Golem() (Lemmatizer, error) {
	l, err := loadGolem()
	if err != nil {
		return nil, fmt.Errorf("load golem dictionary: %w", err)
	}
	return LemmatizerFunc(l.Lemma), nil
}

// LemmatizerByName resolves a lemmatizer by its configuration name.
// The empty name selects the golem lemmatizer.
func LemmatizerByName(name string) (Lemmatizer, error) {
	switch name {
	case "", LemmatizerGolem:
		return Golem()
	case LemmatizerSnowball:
		return Snowball, nil
	case LemmatizerIdentity:
		return Identity, nil
	default:
		return nil, fmt.Errorf("unknown lemmatizer %q", name)
	}
}
