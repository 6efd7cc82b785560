package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"autoclass/domain/dataset"
)

// numericThreshold is the fraction of non-missing cells that must parse as
// numbers for a column to be typed numeric.
const numericThreshold = 0.9

// missingTokens are cell values treated as missing, case-insensitive.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
}

// Reader loads CSV and XLSX files into typed datasets. Type sniffing happens
// here at the boundary so everything downstream works with typed columns.
type Reader struct{}

// NewReader creates a dataset reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadFile loads a dataset from disk, dispatching on the file extension.
func (r *Reader) ReadFile(ctx context.Context, path string) (*dataset.Dataset, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("data file not found: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return r.Read(ctx, name, f, filepath.Ext(path))
}

// Read loads a dataset from a stream. format is the file extension
// (".csv" or ".xlsx"); anything else is rejected.
func (r *Reader) Read(ctx context.Context, name string, src io.Reader, format string) (*dataset.Dataset, error) {
	start := time.Now()

	var rows [][]string
	var err error
	switch strings.ToLower(format) {
	case ".csv", "csv":
		rows, err = readCSVRows(src)
	case ".xlsx", "xlsx":
		rows, err = readExcelRows(src)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", format)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("data file must have at least a header row and one data row")
	}

	ds, err := buildDataset(name, rows)
	if err != nil {
		return nil, err
	}

	log.Printf("[Reader] Loaded %q (%d rows, %d columns) in %.2fms",
		name, ds.Rows(), len(ds.Columns), float64(time.Since(start).Nanoseconds())/1e6)
	return ds, nil
}

func readCSVRows(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	return rows, nil
}

func readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel data: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// buildDataset types each column by sniffing its cells and assembles the
// aligned columnar dataset.
func buildDataset(name string, rows [][]string) (*dataset.Dataset, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}

	nRows := len(rows) - 1
	columns := make([]dataset.Column, len(headers))
	for j, header := range headers {
		cells := make([]string, nRows)
		for i := 0; i < nRows; i++ {
			row := rows[i+1]
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}
		columns[j] = buildColumn(header, cells)
	}

	return dataset.New(name, columns)
}

func buildColumn(name string, cells []string) dataset.Column {
	parsed := make([]float64, len(cells))
	missing := make([]bool, len(cells))
	numericCount, presentCount := 0, 0

	for i, cell := range cells {
		if isMissing(cell) {
			missing[i] = true
			continue
		}
		presentCount++
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			parsed[i] = v
			numericCount++
		}
	}

	if presentCount > 0 && float64(numericCount)/float64(presentCount) >= numericThreshold {
		// Cells that failed to parse in a numeric column become missing.
		for i, cell := range cells {
			if missing[i] {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				missing[i] = true
				parsed[i] = 0
			}
		}
		return dataset.Column{Name: name, Kind: dataset.Numeric, Float: parsed, Missing: missing}
	}

	str := make([]string, len(cells))
	for i, cell := range cells {
		if !missing[i] {
			str[i] = cell
		}
	}
	return dataset.Column{Name: name, Kind: dataset.Categorical, Str: str, Missing: missing}
}

func isMissing(cell string) bool {
	return missingTokens[strings.ToLower(cell)]
}
