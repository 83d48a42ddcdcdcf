package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/niyet"
)

func (c *CLI) newVocabCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "vocab <modelfile>",
		Short: "Export a model's vocabulary and intent labels as JSON",
		Args:  cobra.ExactArgs(1),
		Example: `  niyet vocab model.json
  niyet vocab model.json --out-dir export`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := niyet.Load(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := writeJSON(filepath.Join(outDir, "words.json"), cl.Vocabulary()); err != nil {
				return err
			}
			if err := writeJSON(filepath.Join(outDir, "classes.json"), cl.Intents()); err != nil {
				return err
			}
			slog.Info("Vocabulary exported", "dir", outDir, "words", len(cl.Vocabulary()), "classes", len(cl.Intents()))
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory for words.json and classes.json")
	return cmd
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
