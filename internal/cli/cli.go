package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/happyhackingspace/niyet"
	"github.com/happyhackingspace/niyet/internal/banner"
	"github.com/happyhackingspace/niyet/internal/config"
)

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version     string
	verbose     bool
	silent      bool
	cfgFile     string
	initialized bool
	v           *viper.Viper
	rootCmd     *cobra.Command
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version, v: config.New()}
	c.setupCommands()
	return c
}

// setupCommands initializes all CLI commands and their configurations.
func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:           "niyet",
		Short:         "Intent classifier training and inference",
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.initApp()
			return config.ReadFile(c.v, c.cfgFile)
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "Config file (default: ./niyet.yaml if present)")
	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose/debug output")
	c.rootCmd.PersistentFlags().BoolVarP(&c.silent, "silent", "s", false, "Suppress all logging and banner")

	defaultHelp := c.rootCmd.HelpFunc()
	c.rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		c.initApp()
		defaultHelp(cmd, args)
	})

	c.rootCmd.AddCommand(c.newTrainCommand())
	c.rootCmd.AddCommand(c.newRunCommand())
	c.rootCmd.AddCommand(c.newEvaluateCommand())
	c.rootCmd.AddCommand(c.newVocabCommand())
	c.rootCmd.AddCommand(c.newUpCommand())
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	err := c.rootCmd.Execute()
	if err != nil {
		slog.Error("Command failed", "error", err)
	}
	return err
}

// initApp initializes logging and prints the banner.
func (c *CLI) initApp() {
	if c.initialized {
		return
	}
	c.initialized = true

	level := log.InfoLevel
	if c.verbose {
		level = log.DebugLevel
	}
	if c.silent {
		level = log.Level(100)
	}
	slog.SetDefault(slog.New(log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})))
	if !c.silent {
		fmt.Fprint(os.Stderr, banner.Banner(c.version))
	}
}

// loadConfig binds the command's flags to their config keys and decodes the
// merged settings. Flags are bound per invocation because several commands
// share keys.
func (c *CLI) loadConfig(cmd *cobra.Command, flags map[string]string) (config.Config, error) {
	for key, name := range flags {
		if err := c.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return config.Config{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	cfg, err := config.Load(c.v)
	if err != nil {
		return config.Config{}, err
	}
	if used := c.v.ConfigFileUsed(); used != "" {
		slog.Debug("Using config file", "path", used)
	}
	return cfg, nil
}

// trainConfig maps loaded settings onto the library's training options.
func trainConfig(cfg config.Config) *niyet.TrainConfig {
	return &niyet.TrainConfig{
		IgnoreTokens:       cfg.IgnoreTokens,
		SupplementaryTerms: cfg.SupplementaryTerms,
		ShuffleSeed:        cfg.ShuffleSeed,
		Lemmatizer:         cfg.Lemmatizer,
		Workers:            cfg.Workers,
		C:                  cfg.Classifier.C,
		MaxIter:            cfg.Classifier.MaxIter,
	}
}

// pipelineFlags registers the flags shared by train and evaluate and returns
// their config key bindings.
func pipelineFlags(cmd *cobra.Command) map[string]string {
	f := cmd.Flags()
	f.String("corpus", "intents.json", "Path to the intents corpus (JSON or YAML)")
	f.String("seed", "", "Shuffle seed for reproducible runs (default: random)")
	f.String("lemmatizer", "golem", "Lemmatizer: golem, snowball or identity")
	f.Int("workers", 1, "Number of goroutines vectorizing documents")
	f.StringSlice("ignore", nil, "Tokens dropped after lemmatization")
	f.StringSlice("supplementary", nil, "Domain terms appended to the vocabulary")
	f.Float64("c", 5.0, "Inverse L2 regularization strength")
	f.Int("max-iter", 100, "Maximum optimizer iterations")
	return map[string]string{
		config.KeyCorpus:             "corpus",
		config.KeyShuffleSeed:        "seed",
		config.KeyLemmatizer:         "lemmatizer",
		config.KeyWorkers:            "workers",
		config.KeyIgnoreTokens:       "ignore",
		config.KeySupplementaryTerms: "supplementary",
		config.KeyClassifierC:        "c",
		config.KeyClassifierMaxIter:  "max-iter",
	}
}
