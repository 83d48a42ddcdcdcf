package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/niyet"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train an intent model on a corpus of example utterances",
		Args:  cobra.ExactArgs(1),
		Example: `  niyet train model.json --corpus intents.json
  niyet train model.json --seed 42 --workers 4 -v
  niyet train model.json --lemmatizer snowball --supplementary temple,bronze`,
	}
	flags := pipelineFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := c.loadConfig(cmd, flags)
		if err != nil {
			return err
		}
		modelPath := args[0]
		slog.Info("Training classifier", "corpus", cfg.Corpus, "output", modelPath)
		start := time.Now()
		cl, err := niyet.Train(cfg.Corpus, trainConfig(cfg))
		if err != nil {
			return err
		}
		slog.Debug("Training completed", "duration", time.Since(start))
		if err := cl.Save(modelPath); err != nil {
			return err
		}
		slog.Info("Model saved", "path", modelPath)
		return nil
	}
	return cmd
}
