package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/niyet"
	"github.com/happyhackingspace/niyet/internal/config"
)

// runResult is the JSON shape printed for each classified utterance.
type runResult struct {
	Text    string             `json:"text"`
	Intents []niyet.Prediction `json:"intents,omitempty"`
	Proba   map[string]float64 `json:"proba,omitempty"`
}

func (c *CLI) newRunCommand() *cobra.Command {
	var modelPath string
	var proba bool

	cmd := &cobra.Command{
		Use:   "run [text...]",
		Short: "Classify the intent of an utterance from arguments or stdin",
		Example: `  # Classify an utterance
  niyet run "tell me about the temple"

  # One utterance per line from stdin
  cat utterances.txt | niyet run -s

  # Show every intent probability
  niyet run "hello" --proba

  # Use custom threshold and model file
  niyet run "bye" --threshold 0.5 --model custom.json`,
	}
	cmd.Flags().StringVar(&modelPath, "model", "", "Path to model file (default: auto-detect model.json)")
	cmd.Flags().Float64("threshold", 0.25, "Minimum probability threshold")
	cmd.Flags().BoolVar(&proba, "proba", false, "Show probabilities of all intents")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := c.loadConfig(cmd, map[string]string{config.KeyThreshold: "threshold"})
		if err != nil {
			return err
		}

		var texts []string
		if len(args) > 0 {
			texts = []string{strings.Join(args, " ")}
		} else {
			if isStdinTerminal() {
				return cmd.Help()
			}
			texts, err = readLines(os.Stdin)
			if err != nil {
				return err
			}
		}

		start := time.Now()
		cl, err := loadModel(modelPath)
		if err != nil {
			return err
		}
		slog.Debug("Model loaded", "duration", time.Since(start), "intents", len(cl.Intents()))

		results := make([]runResult, 0, len(texts))
		for _, text := range texts {
			r := runResult{Text: text}
			if proba {
				r.Proba, err = cl.ClassifyProba(text)
			} else {
				r.Intents, err = cl.Classify(text, cfg.Threshold)
			}
			if err != nil {
				return err
			}
			if !proba && len(r.Intents) == 0 {
				slog.Debug("No intent above threshold", "text", text, "threshold", cfg.Threshold)
			}
			results = append(results, r)
		}

		var output []byte
		if len(results) == 1 {
			output, _ = json.MarshalIndent(results[0], "", "  ")
		} else {
			output, _ = json.MarshalIndent(results, "", "  ")
		}
		fmt.Println(string(output))
		return nil
	}
	return cmd
}

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func loadModel(modelPath string) (*niyet.Classifier, error) {
	if modelPath != "" {
		slog.Debug("Loading custom model", "path", modelPath)
		return niyet.Load(modelPath)
	}
	return niyet.New()
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	slog.Debug("Reading from stdin")
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("stdin is empty")
	}
	return lines, nil
}
