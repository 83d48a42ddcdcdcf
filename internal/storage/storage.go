package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Format of a corpus file.
type Format string

// Supported corpus formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Storage wraps a corpus file.
type Storage struct {
	Path string
}

// NewStorage creates a Storage for the given corpus file.
func NewStorage(path string) *Storage {
	return &Storage{Path: path}
}

// FormatOf infers the corpus format from a file extension. Unknown
// extensions are read as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// rawCorpus mirrors Corpus with pointers so absent and null fields can be
// told apart from empty ones.
type rawCorpus struct {
	Intents *[]rawIntent `json:"intents" yaml:"intents"`
}

type rawIntent struct {
	Tag      *string   `json:"tag" yaml:"tag"`
	Patterns []*string `json:"patterns" yaml:"patterns"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and parses the corpus file.
func (s *Storage) Load() (*Corpus, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	corpus, err := Parse(data, FormatOf(s.Path))
	if err != nil {
		var malformed *MalformedCorpusError
		if errors.As(err, &malformed) {
			malformed.Path = s.Path
		}
		return nil, err
	}
	slog.Debug("Corpus loaded", "path", s.Path, "intents", len(corpus.Intents), "patterns", corpus.NumPatterns())
	return corpus, nil
}

// Parse decodes a corpus document. A missing patterns list is legal; a
// missing tag or a null pattern is a *MalformedCorpusError.
func Parse(data []byte, format Format) (*Corpus, error) {
	var raw rawCorpus
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, &MalformedCorpusError{Index: -1, Field: "document", Reason: err.Error()}
	}
	if raw.Intents == nil {
		return nil, &MalformedCorpusError{Index: -1, Field: "intents", Reason: "missing"}
	}

	corpus := &Corpus{Intents: make([]Intent, 0, len(*raw.Intents))}
	for i, ri := range *raw.Intents {
		intent := Intent{Patterns: make([]string, 0, len(ri.Patterns))}
		if ri.Tag != nil {
			intent.Tag = strings.TrimSpace(*ri.Tag)
		}
		if err := validate.Struct(intent); err != nil {
			return nil, validationError(i, err)
		}
		for j, p := range ri.Patterns {
			if p == nil {
				return nil, &MalformedCorpusError{Index: i, Field: fmt.Sprintf("patterns[%d]", j), Reason: "null pattern"}
			}
			intent.Patterns = append(intent.Patterns, *p)
		}
		corpus.Intents = append(corpus.Intents, intent)
	}
	return corpus, nil
}

func validationError(index int, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &MalformedCorpusError{Index: index, Field: fe.Field(), Reason: "failed " + fe.Tag() + " check"}
	}
	return &MalformedCorpusError{Index: index, Field: "intent", Reason: err.Error()}
}
