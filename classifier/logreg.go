package classifier

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/happyhackingspace/niyet/internal/vectorizer"
)

// LogisticRegression is an L2-regularized multinomial logistic regression
// trained with L-BFGS.
type LogisticRegression struct {
	C           float64     `json:"c"`
	MaxIter     int         `json:"max_iter"`
	NumFeatures int         `json:"num_features"`
	Coef        [][]float64 `json:"coef"`      // [numClasses][numFeatures]
	Intercept   []float64   `json:"intercept"` // [numClasses]
}

// LogRegConfig holds training configuration.
type LogRegConfig struct {
	C       float64
	MaxIter int
}

// DefaultLogRegConfig returns default training config.
func DefaultLogRegConfig() LogRegConfig {
	return LogRegConfig{
		C:       5.0,
		MaxIter: 100,
	}
}

// NewLogisticRegression creates an unfitted estimator.
func NewLogisticRegression(config LogRegConfig) *LogisticRegression {
	if config.C <= 0 {
		config.C = 5.0
	}
	if config.MaxIter <= 0 {
		config.MaxIter = 100
	}
	return &LogisticRegression{C: config.C, MaxIter: config.MaxIter}
}

// Fit trains the model. Labels must be one-hot.
func (m *LogisticRegression) Fit(features []vectorizer.FeatureVector, labels []vectorizer.LabelVector) error {
	totalDim, numClasses, err := CheckDimensions(features, labels)
	if err != nil {
		return err
	}

	n := len(features)
	xData := make([]vectorizer.SparseVector, n)
	y := make([]int, n)
	for j := range n {
		xData[j] = features[j].Sparse()
		cls, err := oneHotIndex(labels[j])
		if err != nil {
			return fmt.Errorf("label of example %d: %w", j, err)
		}
		y[j] = cls
	}

	numParams := numClasses * (totalDim + 1)
	params := make([]float64, numParams)
	obj := objective{x: xData, y: y, numClasses: numClasses, totalDim: totalDim, c: m.C}

	opt := newLBFGS(10)
	loss, grad := obj.eval(params)
	for iter := range m.MaxIter {
		if iter%10 == 0 {
			slog.Debug("Logistic regression", "iter", iter, "loss", loss)
		}

		dir := opt.direction(grad)
		step := obj.lineSearch(params, dir, loss)

		s := make([]float64, numParams)
		for i := range numParams {
			s[i] = step * dir[i]
			params[i] += s[i]
		}

		newLoss, newGrad := obj.eval(params)
		yVec := make([]float64, numParams)
		for i := range numParams {
			yVec[i] = newGrad[i] - grad[i]
		}
		opt.update(s, yVec)
		loss, grad = newLoss, newGrad

		maxGrad := 0.0
		for _, g := range grad {
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}
		if maxGrad < 1e-5 {
			slog.Debug("Logistic regression converged", "iter", iter, "loss", loss)
			break
		}
	}

	m.NumFeatures = totalDim
	m.Coef = make([][]float64, numClasses)
	m.Intercept = make([]float64, numClasses)
	for c := range numClasses {
		offset := c * (totalDim + 1)
		m.Coef[c] = make([]float64, totalDim)
		copy(m.Coef[c], params[offset:offset+totalDim])
		m.Intercept[c] = params[offset+totalDim]
	}
	return nil
}

// Predict returns the class probability distribution for x.
func (m *LogisticRegression) Predict(x vectorizer.FeatureVector) ([]float64, error) {
	if len(m.Coef) == 0 {
		return nil, ErrNotFitted
	}
	if len(x) != m.NumFeatures {
		return nil, &DimensionMismatchError{What: "feature width", Index: -1, Expected: m.NumFeatures, Actual: len(x)}
	}
	sv := x.Sparse()
	logits := make([]float64, len(m.Coef))
	for c := range m.Coef {
		logits[c] = sv.Dot(m.Coef[c]) + m.Intercept[c]
	}
	return softmax(logits), nil
}

func oneHotIndex(lv vectorizer.LabelVector) (int, error) {
	idx := -1
	for i, v := range lv {
		switch v {
		case 0:
		case 1:
			if idx >= 0 {
				return 0, fmt.Errorf("more than one class set")
			}
			idx = i
		default:
			return 0, fmt.Errorf("value %v at index %d is not 0 or 1", v, i)
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("no class set")
	}
	return idx, nil
}

// objective is the regularized negative log-likelihood over a training set.
type objective struct {
	x          []vectorizer.SparseVector
	y          []int
	numClasses int
	totalDim   int
	c          float64
}

func (o objective) eval(params []float64) (float64, []float64) {
	grad := make([]float64, len(params))
	loss := 0.0
	logits := make([]float64, o.numClasses)

	for j, xj := range o.x {
		for k := range o.numClasses {
			offset := k * (o.totalDim + 1)
			logits[k] = xj.Dot(params[offset:offset+o.totalDim]) + params[offset+o.totalDim]
		}
		probs := softmax(logits)

		if probs[o.y[j]] > 0 {
			loss -= math.Log(probs[o.y[j]])
		} else {
			loss += 100
		}

		for k := range o.numClasses {
			offset := k * (o.totalDim + 1)
			diff := probs[k]
			if k == o.y[j] {
				diff -= 1
			}
			for vi, idx := range xj.Indices {
				grad[offset+idx] += diff * xj.Values[vi]
			}
			grad[offset+o.totalDim] += diff
		}
	}

	regCoeff := 1.0 / o.c
	for k := range o.numClasses {
		offset := k * (o.totalDim + 1)
		for i := range o.totalDim {
			loss += 0.5 * regCoeff * params[offset+i] * params[offset+i]
			grad[offset+i] += regCoeff * params[offset+i]
		}
	}
	return loss, grad
}

// lineSearch halves the step until the loss decreases.
func (o objective) lineSearch(params, dir []float64, currentLoss float64) float64 {
	step := 1.0
	wNew := make([]float64, len(params))
	for range 20 {
		for i := range params {
			wNew[i] = params[i] + step*dir[i]
		}
		if newLoss, _ := o.eval(wNew); newLoss < currentLoss {
			return step
		}
		step *= 0.5
	}
	return step
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
