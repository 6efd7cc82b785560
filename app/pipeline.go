package app

import (
	"context"
	"fmt"
	"sync"

	advisoradapter "autoclass/adapters/advisor"
	"autoclass/adapters/ingest"
	prepadapter "autoclass/adapters/prep"
	qualityadapter "autoclass/adapters/quality"
	reportadapter "autoclass/adapters/report"
	"autoclass/domain/advisor"
	"autoclass/domain/core"
	"autoclass/domain/dataset"
	"autoclass/domain/prep"
	"autoclass/domain/quality"
	"autoclass/domain/training"
	"autoclass/internal"
	"autoclass/internal/split"
	"autoclass/ports"
)

// RunRequest configures one end-to-end classification run.
type RunRequest struct {
	Dataset *dataset.Dataset
	Target  string
	// Config overrides the advisor's suggested plan when non-nil.
	Config *prep.Config
	// Models limits training to these variants; empty means the advisor's
	// shortlist.
	Models    []string
	UseSearch bool
	CVFolds   int
	// TestSize overrides the config's held-out fraction when positive.
	TestSize float64
	Progress ProgressFunc
}

// RunOutcome is everything one run produced.
type RunOutcome struct {
	RunID   core.RunID          `json:"run_id"`
	Issues  *quality.Report     `json:"issues"`
	Plan    advisor.Plan        `json:"plan"`
	Steps   prep.Log            `json:"steps"`
	Clean   *dataset.Dataset    `json:"-"`
	Results []training.Result   `json:"results"`
	Table   []training.TableRow `json:"table"`
	Best    *training.Result    `json:"best,omitempty"`
	Report  string              `json:"report"`
}

// Pipeline drives a run through its fixed stage order: detect issues,
// recommend, preprocess, split, train, rank, report. All run state lives in
// the RunOutcome; the service itself only holds the detection cache.
type Pipeline struct {
	reader   ports.DatasetReaderPort
	detector *qualityadapter.Detector
	engine   *advisoradapter.Engine
	renderer ports.ReportRendererPort

	mu    sync.Mutex
	cache map[string]*quality.Report // fingerprint+target -> report
}

// NewPipeline wires the pipeline with its default adapters.
func NewPipeline() *Pipeline {
	return &Pipeline{
		reader:   ingest.NewReader(),
		detector: qualityadapter.NewDetector(),
		engine:   advisoradapter.NewEngine(),
		renderer: reportadapter.NewRenderer(),
		cache:    make(map[string]*quality.Report),
	}
}

// NewPipelineWith wires the pipeline with explicit adapters, for tests and
// alternate transports.
func NewPipelineWith(reader ports.DatasetReaderPort, renderer ports.ReportRendererPort) *Pipeline {
	p := NewPipeline()
	p.reader = reader
	p.renderer = renderer
	return p
}

// Load reads a dataset from disk through the configured reader.
func (p *Pipeline) Load(ctx context.Context, path string) (*dataset.Dataset, error) {
	return p.reader.ReadFile(ctx, path)
}

// Detect runs issue detection, memoized on the dataset fingerprint and
// target. A preprocessed dataset has a different fingerprint, so stale
// reports are never returned for transformed data with changed shape;
// Invalidate covers in-place edits.
func (p *Pipeline) Detect(ds *dataset.Dataset, target string) (*quality.Report, error) {
	key := cacheKey(ds, target)

	p.mu.Lock()
	if report, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return report, nil
	}
	p.mu.Unlock()

	report, err := p.detector.DetectIssues(ds, target)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[key] = report
	p.mu.Unlock()
	return report, nil
}

// Invalidate drops any cached detection reports for the dataset.
func (p *Pipeline) Invalidate(ds *dataset.Dataset) {
	prefix := string(ds.Fingerprint())
	p.mu.Lock()
	for key := range p.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(p.cache, key)
		}
	}
	p.mu.Unlock()
}

// Recommend builds the suggested preprocessing plan and model shortlist.
func (p *Pipeline) Recommend(ds *dataset.Dataset, target string, report *quality.Report) advisor.Plan {
	return p.engine.BuildPlan(ds, target, report)
}

// Preprocess runs outlier handling followed by the transformation chain,
// returning the cleaned dataset and the ordered step log.
func (p *Pipeline) Preprocess(ds *dataset.Dataset, cfg prep.Config) (*dataset.Dataset, prep.Log, error) {
	work := ds
	var steps prep.Log

	if len(cfg.OutlierColumns) > 0 && cfg.OutlierStrategy != "" {
		cleaned, outlierLog, err := prepadapter.HandleOutliers(work, cfg.OutlierColumns, cfg.OutlierStrategy)
		if err != nil {
			return nil, nil, err
		}
		work = cleaned
		steps = append(steps, outlierLog...)
	}

	cleaned, applyLog, err := prepadapter.Apply(work, cfg)
	if err != nil {
		return nil, nil, err
	}
	steps = append(steps, applyLog...)
	return cleaned, steps, nil
}

// Run executes the full pipeline for one request.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (*RunOutcome, error) {
	if req.Dataset == nil {
		return nil, core.ErrEmptyDataset
	}
	if !req.Dataset.HasColumn(req.Target) {
		return nil, core.NewTargetNotFoundError(req.Target)
	}

	outcome := &RunOutcome{RunID: core.NewRunID()}

	report, err := p.Detect(req.Dataset, req.Target)
	if err != nil {
		return nil, fmt.Errorf("issue detection failed: %w", err)
	}
	outcome.Issues = report

	outcome.Plan = p.Recommend(req.Dataset, req.Target, report)

	cfg := outcome.Plan.Config
	if req.Config != nil {
		cfg = *req.Config
	}
	if cfg.TargetCol == "" {
		cfg.TargetCol = req.Target
	}
	if req.TestSize > 0 {
		cfg.TestSize = req.TestSize
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean, steps, err := p.Preprocess(req.Dataset, cfg)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	outcome.Clean = clean
	outcome.Steps = steps

	X, y, err := clean.Matrix(cfg.TargetCol)
	if err != nil {
		return nil, err
	}

	parts, err := split.Stratified(X, y, cfg.EffectiveTestSize(), split.DefaultSeed)
	if err != nil {
		return nil, err
	}
	internal.DefaultLogger.Info("[Pipeline] run %s: %d train / %d test rows, %d features",
		outcome.RunID, len(parts.XTrain), len(parts.XTest), len(X[0]))

	models := req.Models
	if len(models) == 0 {
		models = outcome.Plan.Models.Models
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trainer := NewTrainer(req.CVFolds)
	outcome.Results = trainer.TrainAll(parts.XTrain, parts.YTrain, parts.XTest, parts.YTest, models, req.UseSearch, req.Progress)
	outcome.Table = trainer.ResultsTable()
	outcome.Best = trainer.BestModel()

	bestParams := make(map[string]map[string]interface{})
	for _, res := range outcome.Results {
		if res.Success {
			bestParams[res.ModelName] = res.BestParams
		}
	}
	md, err := p.renderer.RenderMarkdown(ports.ReportInput{
		DatasetName: req.Dataset.Name,
		Rows:        req.Dataset.Rows(),
		Columns:     len(req.Dataset.Columns),
		Issues:      report,
		Steps:       steps,
		Results:     outcome.Table,
		BestParams:  bestParams,
		Best:        outcome.Best,
	})
	if err != nil {
		return nil, err
	}
	outcome.Report = md

	return outcome, nil
}

// RenderHTML renders an outcome's report as HTML.
func (p *Pipeline) RenderHTML(req RunRequest, outcome *RunOutcome) ([]byte, error) {
	bestParams := make(map[string]map[string]interface{})
	for _, res := range outcome.Results {
		if res.Success {
			bestParams[res.ModelName] = res.BestParams
		}
	}
	return p.renderer.RenderHTML(ports.ReportInput{
		DatasetName: req.Dataset.Name,
		Rows:        req.Dataset.Rows(),
		Columns:     len(req.Dataset.Columns),
		Issues:      outcome.Issues,
		Steps:       outcome.Steps,
		Results:     outcome.Table,
		BestParams:  bestParams,
		Best:        outcome.Best,
	})
}

func cacheKey(ds *dataset.Dataset, target string) string {
	return string(ds.Fingerprint()) + "|" + target
}
