// Package datasource records which file each sample's data came from.
package datasource

import (
	"log/slog"
	"maps"
	"path/filepath"
	"slices"

	"github.com/Sumatoshi-tech/qcreport/pkg/discovery"
)

// DefaultSection groups sources added without a section.
const DefaultSection = "all_sections"

// Source describes one data source. Sample and Path fall back to Match.
type Source struct {
	Module  string
	Section string
	Sample  string
	Path    string
	Match   *discovery.LogFileMatch
}

// Row is one flattened registry entry.
type Row struct {
	Module  string `json:"module" yaml:"module"`
	Section string `json:"section" yaml:"section"`
	Sample  string `json:"sample" yaml:"sample"`
	Path    string `json:"path" yaml:"path"`
}

// Registry maps module → section → sample → absolute source path.
type Registry struct {
	sources map[string]map[string]map[string]string
	logger  *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		sources: make(map[string]map[string]map[string]string),
		logger:  logger.With(slog.String("component", "datasource")),
	}
}

// Add records src. A source without a module, or whose sample or path
// cannot be resolved, is logged as a warning and dropped. Modules add their
// sources through module.Base, which fills in the module name.
func (r *Registry) Add(src Source) {
	if src.Section == "" {
		src.Section = DefaultSection
	}

	if src.Sample == "" && src.Match != nil {
		src.Sample = src.Match.SampleName
	}

	if src.Path == "" && src.Match != nil {
		src.Path = src.Match.Path()
	}

	if src.Module == "" || src.Sample == "" || src.Path == "" {
		r.logger.Warn("Tried to add data source but was missing fields data",
			slog.String("module", src.Module), slog.String("sample", src.Sample), slog.String("path", src.Path))

		return
	}

	if abs, err := filepath.Abs(src.Path); err == nil {
		src.Path = abs
	}

	sections, ok := r.sources[src.Module]
	if !ok {
		sections = make(map[string]map[string]string)
		r.sources[src.Module] = sections
	}

	samples, ok := sections[src.Section]
	if !ok {
		samples = make(map[string]string)
		sections[src.Section] = samples
	}

	samples[src.Sample] = src.Path
}

// Lookup returns the path recorded for a sample.
func (r *Registry) Lookup(module, section, sample string) (string, bool) {
	path, ok := r.sources[module][section][sample]

	return path, ok
}

// Len returns the number of recorded sources.
func (r *Registry) Len() int {
	var n int

	for _, sections := range r.sources {
		for _, samples := range sections {
			n += len(samples)
		}
	}

	return n
}

// Rows flattens the registry sorted by module, section and sample.
func (r *Registry) Rows() []Row {
	var rows []Row

	for _, module := range slices.Sorted(maps.Keys(r.sources)) {
		sections := r.sources[module]

		for _, section := range slices.Sorted(maps.Keys(sections)) {
			samples := sections[section]

			for _, sample := range slices.Sorted(maps.Keys(samples)) {
				rows = append(rows, Row{Module: module, Section: section, Sample: sample, Path: samples[sample]})
			}
		}
	}

	return rows
}

// Table returns the rows keyed by "module | section | sample", the shape
// written to the sources data file.
func (r *Registry) Table() map[string]map[string]any {
	out := make(map[string]map[string]any)

	for _, row := range r.Rows() {
		out[row.Module+" | "+row.Section+" | "+row.Sample] = map[string]any{
			"Module":      row.Module,
			"Section":     row.Section,
			"Sample Name": row.Sample,
			"Source":      row.Path,
		}
	}

	return out
}
