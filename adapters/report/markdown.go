package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"autoclass/domain/core"
	"autoclass/ports"
)

// Renderer assembles the run summary document. Sections always appear in the
// same order so reports from different runs line up when diffed.
type Renderer struct {
	now func() time.Time
}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// RenderMarkdown produces the full markdown report. The document is built
// completely before returning; no partial output on error.
func (r *Renderer) RenderMarkdown(in ports.ReportInput) (string, error) {
	if in.DatasetName == "" {
		return "", fmt.Errorf("%w: dataset name is empty", core.ErrReportFailed)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Classification Run Report: %s\n\n", in.DatasetName))
	b.WriteString(fmt.Sprintf("_Generated %s_\n\n", r.now().Format("2006-01-02 15:04:05")))

	r.writeOverview(&b, in)
	r.writeIssues(&b, in)
	r.writeSteps(&b, in)
	if err := r.writeResults(&b, in); err != nil {
		return "", err
	}
	r.writeBest(&b, in)

	return b.String(), nil
}

// RenderHTML renders the markdown report to a standalone HTML fragment.
func (r *Renderer) RenderHTML(in ports.ReportInput) ([]byte, error) {
	md, err := r.RenderMarkdown(in)
	if err != nil {
		return nil, err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer), nil
}

func (r *Renderer) writeOverview(b *strings.Builder, in ports.ReportInput) {
	b.WriteString("## Dataset Overview\n\n")
	b.WriteString(fmt.Sprintf("- **Rows:** %d\n", in.Rows))
	b.WriteString(fmt.Sprintf("- **Columns:** %d\n\n", in.Columns))
}

func (r *Renderer) writeIssues(b *strings.Builder, in ports.ReportInput) {
	b.WriteString("## EDA & Detected Issues\n\n")
	if in.Issues == nil || !in.Issues.HasIssues {
		b.WriteString("No data quality issues detected.\n\n")
		return
	}

	if len(in.Issues.MissingValues) > 0 {
		b.WriteString("### Missing Values\n\n")
		b.WriteString("| Column | Count | Percentage |\n|---|---|---|\n")
		for _, name := range sortedKeys(in.Issues.MissingValues) {
			info := in.Issues.MissingValues[name]
			b.WriteString(fmt.Sprintf("| %s | %d | %.2f%% |\n", name, info.Count, info.Percentage))
		}
		b.WriteString("\n")
	}

	if len(in.Issues.Outliers) > 0 {
		b.WriteString("### Outliers (IQR method)\n\n")
		b.WriteString("| Column | Count | Percentage | Lower Bound | Upper Bound |\n|---|---|---|---|---|\n")
		for _, name := range sortedKeys(in.Issues.Outliers) {
			info := in.Issues.Outliers[name]
			b.WriteString(fmt.Sprintf("| %s | %d | %.2f%% | %.4f | %.4f |\n",
				name, info.Count, info.Percentage, info.LowerBound, info.UpperBound))
		}
		b.WriteString("\n")
	}

	if ci := in.Issues.ClassImbalance; ci != nil && ci.IsImbalanced {
		b.WriteString("### Class Imbalance\n\n")
		b.WriteString(fmt.Sprintf("- Majority class %q: %.1f%%\n", ci.MajorityClass, ci.MajorityRatio))
		b.WriteString(fmt.Sprintf("- Minority class %q: %.1f%%\n\n", ci.MinorityClass, ci.MinorityRatio))
	}
}

func (r *Renderer) writeSteps(b *strings.Builder, in ports.ReportInput) {
	b.WriteString("## Preprocessing Decisions\n\n")
	if len(in.Steps) == 0 {
		b.WriteString("No preprocessing applied.\n\n")
		return
	}
	for i, step := range in.Steps {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}
	b.WriteString("\n")
}

func (r *Renderer) writeResults(b *strings.Builder, in ports.ReportInput) error {
	b.WriteString("## Model Evaluation\n\n")
	if len(in.Results) == 0 {
		return fmt.Errorf("%w: no training results to report", core.ErrReportFailed)
	}

	b.WriteString("| Model | Accuracy | Precision | Recall | F1-Score | Time (s) |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, row := range in.Results {
		if row.Status != "Success" {
			b.WriteString(fmt.Sprintf("| %s | failed | - | - | - | %.2f |\n", row.Model, row.TrainingTime))
			continue
		}
		b.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f | %.4f | %.2f |\n",
			row.Model, row.Accuracy, row.Precision, row.Recall, row.F1Score, row.TrainingTime))
	}
	b.WriteString("\n")
	return nil
}

func (r *Renderer) writeBest(b *strings.Builder, in ports.ReportInput) {
	b.WriteString("## Best Model Summary\n\n")
	if in.Best == nil {
		b.WriteString("No model trained successfully.\n")
		return
	}

	b.WriteString(fmt.Sprintf("**%s** achieved the highest weighted F1 score (%.4f).\n\n", in.Best.ModelName, in.Best.F1Score))
	b.WriteString(fmt.Sprintf("- Cross-validation score: %.4f\n", in.Best.CVScore))
	b.WriteString(fmt.Sprintf("- Test accuracy: %.4f\n", in.Best.Accuracy))

	params := in.Best.BestParams
	if chosen, ok := in.BestParams[in.Best.ModelName]; ok {
		params = chosen
	}
	if len(params) > 0 {
		b.WriteString("- Selected hyperparameters:\n")
		for _, k := range sortedKeys(params) {
			b.WriteString(fmt.Sprintf("  - `%s`: %v\n", k, params[k]))
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
