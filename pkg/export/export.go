// Package export writes per-sample tables to data files next to the report.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Supported data formats.
const (
	FormatTSV  = "tsv"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SampleColumn heads the first column of tabular formats.
const SampleColumn = "Sample"

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrUnknownFormat is returned for a data format the writer cannot produce.
var ErrUnknownFormat = errors.New("unknown data format")

// Formats lists the supported data formats.
func Formats() []string {
	return []string{FormatTSV, FormatCSV, FormatJSON, FormatYAML}
}

// Writer writes data files into one directory in one format.
type Writer struct {
	dir    string
	format string
	logger *slog.Logger
}

// NewWriter creates a Writer for format under dir.
func NewWriter(dir, format string, logger *slog.Logger) (*Writer, error) {
	if !slices.Contains(Formats(), format) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return &Writer{
		dir:    dir,
		format: format,
		logger: logger.With(slog.String("component", "export")),
	}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write saves data as filename plus the format extension and returns the
// written path. Columns fix the column order of tabular formats; when empty
// the sorted union of keys in data is used.
func (w *Writer) Write(filename string, data map[string]map[string]any, columns []string) (string, error) {
	err := os.MkdirAll(w.dir, dirPerm)
	if err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(w.dir, filename+"."+w.format)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return "", fmt.Errorf("create data file: %w", err)
	}

	counter := &countingWriter{w: file}

	encodeErr := Encode(counter, w.format, data, columns)
	closeErr := file.Close()

	if encodeErr != nil {
		return "", fmt.Errorf("write %s: %w", path, encodeErr)
	}

	if closeErr != nil {
		return "", fmt.Errorf("close %s: %w", path, closeErr)
	}

	w.logger.Debug("Wrote data file",
		slog.String("path", path), slog.Int("samples", len(data)),
		slog.String("size", humanize.Bytes(counter.n)))

	return path, nil
}

// Encode writes data to out in format.
func Encode(out io.Writer, format string, data map[string]map[string]any, columns []string) error {
	switch format {
	case FormatTSV, FormatCSV:
		return encodeTable(out, format, data, columns)
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		err := enc.Encode(data)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)

		err := enc.Encode(data)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Columns returns the sorted union of keys across all rows of data.
func Columns(data map[string]map[string]any) []string {
	seen := make(map[string]struct{})

	for _, row := range data {
		for key := range row {
			seen[key] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

func encodeTable(out io.Writer, format string, data map[string]map[string]any, columns []string) error {
	if len(columns) == 0 {
		columns = Columns(data)
	}

	tw := table.NewWriter()

	header := table.Row{SampleColumn}
	for _, col := range columns {
		header = append(header, col)
	}

	tw.AppendHeader(header)

	for _, sample := range slices.Sorted(maps.Keys(data)) {
		row := table.Row{sample}

		for _, col := range columns {
			v, ok := data[sample][col]
			if !ok || v == nil {
				row = append(row, "")

				continue
			}

			row = append(row, v)
		}

		tw.AppendRow(row)
	}

	var rendered string
	if format == FormatCSV {
		rendered = tw.RenderCSV()
	} else {
		rendered = tw.RenderTSV()
	}

	_, err := io.WriteString(out, rendered+"\n")
	if err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}

	return nil
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += uint64(n) //nolint:gosec // n is never negative.

	return n, err
}
