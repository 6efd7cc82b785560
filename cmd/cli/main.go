package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"autoclass/app"
	"autoclass/domain/prep"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "autoclass",
		Short: "Automated tabular classification: issue detection, preprocessing and model comparison",
	}

	rootCmd.AddCommand(
		newDetectCmd(),
		newRecommendCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDetectCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "detect [data-file]",
		Short: "Detect missing values, outliers and class imbalance",
		Long: `Scan a CSV or XLSX dataset for data quality issues.

Example: autoclass detect customers.csv --target churn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd.Context(), args[0], target)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target column for class imbalance detection")
	return cmd
}

func newRecommendCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "recommend [data-file]",
		Short: "Suggest preprocessing steps and a classifier shortlist",
		Long: `Analyze a dataset and print the suggested preprocessing plan
and model shortlist without training anything.

Example: autoclass recommend customers.csv --target churn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd.Context(), args[0], target)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target column (required)")
	cmd.MarkFlagRequired("target")
	return cmd
}

func newRunCmd() *cobra.Command {
	var target string
	var models []string
	var useSearch bool
	var cvFolds int
	var testSize float64
	var reportPath string

	cmd := &cobra.Command{
		Use:   "run [data-file]",
		Short: "Run the full pipeline: detect, preprocess, train and rank models",
		Long: `Run the complete classification pipeline on a CSV or XLSX dataset.

Preprocessing follows the recommendation engine's plan unless overridden.
Training compares the selected classifier variants with 3-fold
cross-validated grid search and ranks them by weighted F1.

Example: autoclass run customers.csv --target churn --search --report report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFull(cmd.Context(), args[0], target, models, useSearch, cvFolds, testSize, reportPath)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target column (required)")
	cmd.Flags().StringSliceVar(&models, "models", nil, "Model names to train (default: recommended shortlist)")
	cmd.Flags().BoolVar(&useSearch, "search", false, "Enable hyperparameter grid search")
	cmd.Flags().IntVar(&cvFolds, "cv-folds", 3, "Cross-validation folds")
	cmd.Flags().Float64Var(&testSize, "test-size", prep.DefaultTestSize, "Held-out test fraction (clamped to [0.1, 0.4])")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write the markdown report to this file")
	cmd.MarkFlagRequired("target")
	return cmd
}

func runDetect(ctx context.Context, path, target string) error {
	pipeline := app.NewPipeline()
	ds, err := pipeline.Load(ctx, path)
	if err != nil {
		return err
	}

	report, err := pipeline.Detect(ds, target)
	if err != nil {
		return err
	}

	fmt.Printf("Dataset: %s (%d rows, %d columns)\n\n", ds.Name, ds.Rows(), len(ds.Columns))
	if !report.HasIssues {
		fmt.Println("No data quality issues detected.")
		return nil
	}

	if len(report.MissingValues) > 0 {
		fmt.Println("Missing values:")
		for _, name := range sortedKeys(report.MissingValues) {
			info := report.MissingValues[name]
			fmt.Printf("  %-20s %6d (%.2f%%)\n", name, info.Count, info.Percentage)
		}
		fmt.Println()
	}
	if len(report.Outliers) > 0 {
		fmt.Println("Outliers (IQR method):")
		for _, name := range sortedKeys(report.Outliers) {
			info := report.Outliers[name]
			fmt.Printf("  %-20s %6d (%.2f%%)  bounds [%.4f, %.4f]\n",
				name, info.Count, info.Percentage, info.LowerBound, info.UpperBound)
		}
		fmt.Println()
	}
	if ci := report.ClassImbalance; ci != nil && ci.IsImbalanced {
		fmt.Printf("Class imbalance: majority %q %.1f%%, minority %q %.1f%%\n",
			ci.MajorityClass, ci.MajorityRatio, ci.MinorityClass, ci.MinorityRatio)
	}
	return nil
}

func runRecommend(ctx context.Context, path, target string) error {
	pipeline := app.NewPipeline()
	ds, err := pipeline.Load(ctx, path)
	if err != nil {
		return err
	}

	report, err := pipeline.Detect(ds, target)
	if err != nil {
		return err
	}
	plan := pipeline.Recommend(ds, target, report)

	fmt.Printf("Dataset: %s (%d rows, %d columns)\n\n", ds.Name, ds.Rows(), len(ds.Columns))

	if len(plan.MissingAdvice) > 0 {
		fmt.Println("Missing values:")
		for _, name := range sortedKeys(plan.MissingAdvice) {
			rec := plan.MissingAdvice[name]
			fmt.Printf("  %s: %s\n", name, rec.Headline)
		}
		fmt.Println()
	}
	if len(plan.OutlierAdvice) > 0 {
		fmt.Println("Outliers:")
		for _, name := range sortedKeys(plan.OutlierAdvice) {
			fmt.Printf("  %s: %s\n", name, plan.OutlierAdvice[name].Headline)
		}
		fmt.Println()
	}
	if len(plan.EncodingAdvice) > 0 {
		fmt.Println("Encoding:")
		for _, name := range sortedKeys(plan.EncodingAdvice) {
			fmt.Printf("  %s: %s\n", name, plan.EncodingAdvice[name].Headline)
		}
		fmt.Println()
	}
	if plan.ScalingAdvice != nil {
		fmt.Printf("Scaling: %s\n", plan.ScalingAdvice.Headline)
	}
	if plan.ImbalanceAdvice != nil {
		fmt.Printf("Imbalance: %s\n", plan.ImbalanceAdvice.Headline)
	}

	fmt.Printf("\nSuggested models: %s\n", strings.Join(plan.Models.Models, ", "))
	fmt.Println(plan.Models.Reasoning)
	return nil
}

func runFull(ctx context.Context, path, target string, models []string, useSearch bool, cvFolds int, testSize float64, reportPath string) error {
	pipeline := app.NewPipeline()
	ds, err := pipeline.Load(ctx, path)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %s (%d rows, %d columns)\n", ds.Name, ds.Rows(), len(ds.Columns))

	outcome, err := pipeline.Run(ctx, app.RunRequest{
		Dataset:   ds,
		Target:    target,
		Models:    models,
		UseSearch: useSearch,
		CVFolds:   cvFolds,
		TestSize:  testSize,
		Progress: func(name string, index, total int) {
			fmt.Printf("  [%d/%d] training %s...\n", index, total, name)
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nPreprocessing steps:\n")
	for i, step := range outcome.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}

	fmt.Printf("\nModel comparison (ranked by weighted F1):\n")
	fmt.Printf("  %-24s %9s %9s %9s %9s %8s\n", "Model", "Accuracy", "Precision", "Recall", "F1", "Time(s)")
	for _, row := range outcome.Table {
		if row.Status != "Success" {
			fmt.Printf("  %-24s %s\n", row.Model, "failed")
			continue
		}
		fmt.Printf("  %-24s %9.4f %9.4f %9.4f %9.4f %8.2f\n",
			row.Model, row.Accuracy, row.Precision, row.Recall, row.F1Score, row.TrainingTime)
	}

	if outcome.Best != nil {
		fmt.Printf("\nBest model: %s (F1 %.4f, CV %.4f)\n",
			outcome.Best.ModelName, outcome.Best.F1Score, outcome.Best.CVScore)
	} else {
		fmt.Println("\nNo model trained successfully.")
	}

	if reportPath != "" {
		if err := os.WriteFile(reportPath, []byte(outcome.Report), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
