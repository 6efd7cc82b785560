package app

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"autoclass/adapters/classifiers"
	"autoclass/domain/training"
	"autoclass/internal/metrics"
	"autoclass/internal/split"
	"autoclass/ports"
)

// ProgressFunc is invoked once per variant before it trains. Advisory only:
// a nil or failing callback never affects results.
type ProgressFunc func(name string, index, total int)

// Trainer trains and evaluates the selected classifier variants and ranks
// the outcomes. One Trainer instance covers one run; results are not
// retained between separate runs.
type Trainer struct {
	CVFolds int
	Scoring string

	registry *classifiers.Registry
	results  []training.Result
	status   map[string]training.Status
}

// NewTrainer creates a trainer with k-fold count and weighted-F1 scoring.
func NewTrainer(cvFolds int) *Trainer {
	if cvFolds < 2 {
		cvFolds = 3
	}
	return &Trainer{
		CVFolds:  cvFolds,
		Scoring:  "f1_weighted",
		registry: classifiers.NewRegistry(),
		status:   make(map[string]training.Status),
	}
}

// AvailableModels returns the registry's variant names in order.
func (t *Trainer) AvailableModels() []string {
	return t.registry.Names()
}

// Status returns the state of one variant within this run.
func (t *Trainer) Status(name string) training.Status {
	if s, ok := t.status[name]; ok {
		return s
	}
	return training.StatusPending
}

// TrainModel fits a single variant, with an exhaustive grid search under
// k-fold cross-validation when useSearch is set, otherwise a plain fit with
// default parameters and a cross-validation score. Any error or panic during
// fitting is converted into a failed result; it never reaches the caller.
func (t *Trainer) TrainModel(XTrain [][]float64, yTrain []int, name string, useSearch bool) training.Result {
	start := time.Now()
	result := training.Result{ModelName: name}

	variant, err := t.registry.Get(name)
	if err != nil {
		result.TrainingTime = time.Since(start).Seconds()
		result.Error = err.Error()
		return result
	}

	model, bestParams, cvScore, err := t.fit(variant, XTrain, yTrain, useSearch)
	result.TrainingTime = time.Since(start).Seconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Model = model
	result.BestParams = bestParams
	result.CVScore = cvScore
	result.Success = true
	return result
}

func (t *Trainer) fit(variant *classifiers.Variant, X [][]float64, y []int, useSearch bool) (model ports.Classifier, params map[string]interface{}, score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			model, params = nil, nil
			err = fmt.Errorf("model fit panicked: %v", r)
		}
	}()

	if useSearch {
		return t.gridSearch(variant, X, y)
	}

	model = variant.New(variant.Defaults.Clone())
	if err = model.Fit(X, y); err != nil {
		return nil, nil, 0, err
	}
	score, err = t.crossValidate(variant, variant.Defaults, X, y)
	if err != nil {
		return nil, nil, 0, err
	}
	return model, variant.Defaults.Clone(), score, nil
}

// gridSearch evaluates every parameter combination under k-fold CV, fans the
// combinations out across cores, then refits the winner on the full training
// set. The call blocks until the best combination is found.
func (t *Trainer) gridSearch(variant *classifiers.Variant, X [][]float64, y []int) (ports.Classifier, map[string]interface{}, float64, error) {
	combos := expandGrid(variant.Defaults, variant.Grid)
	scores := make([]float64, len(combos))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range combos {
		i := i
		g.Go(func() error {
			s, err := t.crossValidate(variant, combos[i], X, y)
			if err != nil {
				return fmt.Errorf("params %v: %w", combos[i], err)
			}
			scores[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, 0, err
	}

	best := 0
	for i := 1; i < len(combos); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	model := variant.New(combos[best])
	if err := model.Fit(X, y); err != nil {
		return nil, nil, 0, err
	}
	return model, combos[best], scores[best], nil
}

// crossValidate returns the mean weighted-F1 over k folds.
func (t *Trainer) crossValidate(variant *classifiers.Variant, params classifiers.Params, X [][]float64, y []int) (float64, error) {
	folds, err := split.KFold(X, y, t.CVFolds, split.DefaultSeed)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, fold := range folds {
		model := variant.New(params.Clone())
		if err := model.Fit(fold.XTrain, fold.YTrain); err != nil {
			return 0, err
		}
		pred, err := model.Predict(fold.XVal)
		if err != nil {
			return 0, err
		}
		total += metrics.WeightedF1(fold.YVal, pred)
	}
	return total / float64(len(folds)), nil
}

// EvaluateModel computes held-out metrics for a fitted model.
func (t *Trainer) EvaluateModel(model ports.Classifier, XTest [][]float64, yTest []int, name string) (training.Evaluation, error) {
	pred, err := model.Predict(XTest)
	if err != nil {
		return training.Evaluation{}, err
	}
	return metrics.Evaluate(name, yTest, pred), nil
}

// TrainAll trains the selected variants sequentially; on success each is
// evaluated on the held-out set, while failures are appended with zeroed
// metrics and the batch continues. A nil selection trains every variant.
func (t *Trainer) TrainAll(XTrain [][]float64, yTrain []int, XTest [][]float64, yTest []int, selected []string, useSearch bool, progress ProgressFunc) []training.Result {
	if selected == nil {
		selected = t.AvailableModels()
	}

	t.results = nil
	t.status = make(map[string]training.Status)
	for _, name := range selected {
		t.status[name] = training.StatusPending
	}

	for i, name := range selected {
		if progress != nil {
			func() {
				defer func() { _ = recover() }()
				progress(name, i+1, len(selected))
			}()
		}

		t.status[name] = training.StatusTraining
		result := t.TrainModel(XTrain, yTrain, name, useSearch)

		if result.Success {
			eval, err := t.EvaluateModel(result.Model.(ports.Classifier), XTest, yTest, name)
			if err != nil {
				result.Success = false
				result.Error = err.Error()
				result.Model = nil
			} else {
				result.Evaluation = eval
			}
		}

		if result.Success {
			t.status[name] = training.StatusSuccess
		} else {
			t.status[name] = training.StatusFailed
			result.Evaluation.ModelName = name
		}
		t.results = append(t.results, result)
	}
	return t.results
}

// Results returns this run's results in training order.
func (t *Trainer) Results() []training.Result {
	return t.results
}

// BestModel returns the successful result with the highest F1 score, ties
// broken in favor of the first-trained variant, or nil when nothing
// succeeded.
func (t *Trainer) BestModel() *training.Result {
	var best *training.Result
	for i := range t.results {
		r := &t.results[i]
		if !r.Success {
			continue
		}
		if best == nil || r.F1Score > best.F1Score {
			best = r
		}
	}
	return best
}

// ResultsTable tabulates every requested variant, failed ones included,
// sorted by F1 score in non-increasing order.
func (t *Trainer) ResultsTable() []training.TableRow {
	rows := make([]training.TableRow, len(t.results))
	for i, r := range t.results {
		status := "Success"
		if !r.Success {
			status = "Failed"
		}
		rows[i] = training.TableRow{
			Model:        r.ModelName,
			Accuracy:     r.Accuracy,
			Precision:    r.Precision,
			Recall:       r.Recall,
			F1Score:      r.F1Score,
			TrainingTime: r.TrainingTime,
			Status:       status,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].F1Score > rows[j].F1Score })
	return rows
}

// expandGrid enumerates the cartesian product of the grid over the defaults,
// in sorted parameter order so enumeration is deterministic.
func expandGrid(defaults classifiers.Params, grid map[string][]interface{}) []classifiers.Params {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []classifiers.Params{defaults.Clone()}
	for _, key := range keys {
		var next []classifiers.Params
		for _, combo := range combos {
			for _, value := range grid[key] {
				c := combo.Clone()
				c[key] = value
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}
