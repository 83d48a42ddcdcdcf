// Package config loads pipeline settings from a YAML file, NIYET_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/happyhackingspace/niyet/internal/textutil"
)

// DefaultSupplementaryTerms is the heritage and archaeology vocabulary the
// assistant must recognize even when no training pattern uses it.
var DefaultSupplementaryTerms = []string{
	"artifact", "excavation", "archaeology", "heritage", "ancient",
	"chola", "pallava", "pandya", "temple", "inscription", "bronze",
	"manuscript", "tamil", "kalanjiyam", "museum", "historical",
}

// Config keys.
const (
	KeyCorpus             = "corpus"
	KeyIgnoreTokens       = "ignore_tokens"
	KeySupplementaryTerms = "supplementary_terms"
	KeyShuffleSeed        = "shuffle_seed"
	KeyLemmatizer         = "lemmatizer"
	KeyWorkers            = "workers"
	KeyThreshold          = "threshold"
	KeyClassifierC        = "classifier.c"
	KeyClassifierMaxIter  = "classifier.max_iter"
)

// Config holds the pipeline settings.
type Config struct {
	Corpus             string     `mapstructure:"corpus"`
	IgnoreTokens       []string   `mapstructure:"ignore_tokens"`
	SupplementaryTerms []string   `mapstructure:"supplementary_terms"`
	ShuffleSeed        *uint64    `mapstructure:"-"`
	Lemmatizer         string     `mapstructure:"lemmatizer"`
	Workers            int        `mapstructure:"workers"`
	Threshold          float64    `mapstructure:"threshold"`
	Classifier         Classifier `mapstructure:"classifier"`
}

// Classifier holds estimator settings.
type Classifier struct {
	C       float64 `mapstructure:"c"`
	MaxIter int     `mapstructure:"max_iter"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCorpus, "intents.json")
	v.SetDefault(KeyIgnoreTokens, textutil.DefaultIgnoreTokens)
	v.SetDefault(KeySupplementaryTerms, DefaultSupplementaryTerms)
	v.SetDefault(KeyLemmatizer, textutil.LemmatizerGolem)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyThreshold, 0.25)
	v.SetDefault(KeyClassifierC, 5.0)
	v.SetDefault(KeyClassifierMaxIter, 100)
}

// New returns a viper instance with defaults and NIYET_* environment
// variables enabled.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("niyet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads path into v. An empty path looks for niyet.yaml in the
// working directory and ignores its absence.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("niyet")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes the settings held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if v.IsSet(KeyShuffleSeed) && v.GetString(KeyShuffleSeed) != "" {
		seed := v.GetUint64(KeyShuffleSeed)
		c.ShuffleSeed = &seed
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return Config{}, fmt.Errorf("threshold %v outside [0, 1]", c.Threshold)
	}
	return c, nil
}
