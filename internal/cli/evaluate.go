package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/niyet"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var cvFolds int

	cmd := &cobra.Command{
		Use:     "evaluate",
		Short:   "Evaluate model accuracy via stratified cross-validation",
		Example: `  niyet evaluate --corpus intents.json --cv 5 --seed 1`,
	}
	flags := pipelineFlags(cmd)
	cmd.Flags().IntVar(&cvFolds, "cv", 5, "Number of cross-validation folds")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := c.loadConfig(cmd, flags)
		if err != nil {
			return err
		}
		slog.Info("Evaluating", "folds", cvFolds, "corpus", cfg.Corpus)
		start := time.Now()
		result, err := niyet.Evaluate(cfg.Corpus, &niyet.EvalConfig{
			TrainConfig: *trainConfig(cfg),
			Folds:       cvFolds,
		})
		if err != nil {
			return err
		}
		slog.Debug("Evaluation completed", "duration", time.Since(start))

		fmt.Printf("Intent accuracy: %.1f%% (%d/%d)\n", result.Accuracy*100, result.Correct, result.Total)
		if result.Unrecognized > 0 {
			fmt.Printf("Unrecognized: %d (intent absent from its training fold)\n", result.Unrecognized)
		}
		printConfusionMatrix(result.Confusion, slices.Clone(result.Classes))
		printClassReport(result.Confusion, result.Classes)
		return nil
	}
	return cmd
}

// classMetrics derives precision, recall and F1 for cls from a confusion
// map keyed true -> predicted -> count.
func classMetrics(confusion map[string]map[string]int, cls string) (precision, recall, f1 float64, support int) {
	tp := confusion[cls][cls]
	predicted := 0
	for _, row := range confusion {
		predicted += row[cls]
	}
	for _, n := range confusion[cls] {
		support += n
	}
	if predicted > 0 {
		precision = float64(tp) / float64(predicted)
	}
	if support > 0 {
		recall = float64(tp) / float64(support)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1, support
}

func printClassReport(confusion map[string]map[string]int, classes []string) {
	if len(confusion) == 0 {
		return
	}
	fmt.Printf("\nPer-class metrics:\n")
	fmt.Printf("%12s  %6s  %6s  %6s  %7s\n", "intent", "prec", "recall", "f1", "support")
	for _, cls := range classes {
		precision, recall, f1, support := classMetrics(confusion, cls)
		fmt.Printf("%12s  %5.1f%%  %5.1f%%  %5.1f%%  %7d\n",
			cls, precision*100, recall*100, f1*100, support)
	}
}

func printConfusionMatrix(confusion map[string]map[string]int, classes []string) {
	if len(confusion) == 0 {
		return
	}

	rowTotal := func(cls string) int {
		t := 0
		for _, v := range confusion[cls] {
			t += v
		}
		return t
	}
	sort.SliceStable(classes, func(i, j int) bool {
		return rowTotal(classes[i]) > rowTotal(classes[j])
	})

	fmt.Printf("\nConfusion matrix (rows=true, cols=predicted):\n")
	fmt.Printf("%12s", "")
	for i := range classes {
		fmt.Printf(" %5d", i)
	}
	fmt.Printf("  total  acc%%\n")

	for i, trueClass := range classes {
		fmt.Printf("%9s %2d", truncate(trueClass, 9), i)
		total := 0
		correct := 0
		for _, predClass := range classes {
			count := confusion[trueClass][predClass]
			total += count
			if trueClass == predClass {
				correct = count
			}
			if count == 0 {
				fmt.Printf(" %5s", ".")
			} else {
				fmt.Printf(" %5d", count)
			}
		}
		acc := 0.0
		if total > 0 {
			acc = float64(correct) / float64(total) * 100
		}
		fmt.Printf("  %5d %5.1f\n", total, acc)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
