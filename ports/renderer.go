package ports

import (
	"autoclass/domain/prep"
	"autoclass/domain/quality"
	"autoclass/domain/training"
)

// ReportInput carries everything the report document is assembled from.
type ReportInput struct {
	DatasetName string
	Rows        int
	Columns     int
	Issues      *quality.Report
	Steps       prep.Log
	Results     []training.TableRow
	BestParams  map[string]map[string]interface{} // model name -> chosen params
	Best        *training.Result
}

// ReportRendererPort assembles the run report. Any failure invalidates the
// whole document; partial output is never returned.
type ReportRendererPort interface {
	RenderMarkdown(in ReportInput) (string, error)
	RenderHTML(in ReportInput) ([]byte, error)
}
