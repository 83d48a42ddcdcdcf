// Package niyet trains and runs intent classifiers for conversational
// assistants.
//
// Training turns a catalog of example utterances grouped by intent into
// binary bag-of-words vectors over a deterministic vocabulary and fits a
// multinomial logistic regression:
//
//	c, _ := niyet.Train("intents.json", niyet.DefaultTrainConfig())
//	_ = c.Save("model.json")
//	preds, _ := c.Classify("hello there", 0.25)
//	fmt.Println(preds[0].Intent) // "greeting"
package niyet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/happyhackingspace/niyet/classifier"
)

// Classifier wraps a trained intent model.
type Classifier struct {
	model *classifier.IntentModel
}

// Prediction is an intent and its probability.
type Prediction = classifier.Prediction

// New loads the classifier from "model.json", searching the current directory
// and parent directories up to the module root (where go.mod lives).
func New() (*Classifier, error) {
	path, err := findModel("model.json")
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}
	return Load(path)
}

func findModel(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		// Stop at module root
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%s not found", name)
}

// Load loads a trained classifier from a model file.
func Load(path string) (*Classifier, error) {
	m, err := classifier.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}
	return &Classifier{model: m}, nil
}

// Save writes the classifier to a model file.
func (c *Classifier) Save(path string) error {
	if c.model == nil {
		return fmt.Errorf("niyet: classifier not initialized")
	}
	if err := classifier.SaveModel(c.model, path); err != nil {
		return fmt.Errorf("niyet: %w", err)
	}
	return nil
}

// Vocabulary returns the frozen feature terms in index order.
func (c *Classifier) Vocabulary() []string {
	if c.model == nil {
		return nil
	}
	return c.model.Vocabulary.Terms()
}

// Intents returns the frozen intent tags in class index order.
func (c *Classifier) Intents() []string {
	if c.model == nil {
		return nil
	}
	return c.model.Labels.Terms()
}

// Classify returns intents with probability at least threshold, most
// probable first. An empty slice means the text was not recognized.
func (c *Classifier) Classify(text string, threshold float64) ([]Prediction, error) {
	if c.model == nil {
		return nil, fmt.Errorf("niyet: classifier not initialized")
	}
	preds, err := c.model.Classify(text, threshold)
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}
	return preds, nil
}

// ClassifyProba returns the probability of every intent.
func (c *Classifier) ClassifyProba(text string) (map[string]float64, error) {
	if c.model == nil {
		return nil, fmt.Errorf("niyet: classifier not initialized")
	}
	proba, err := c.model.ClassifyProba(text)
	if err != nil {
		return nil, fmt.Errorf("niyet: %w", err)
	}
	return proba, nil
}
