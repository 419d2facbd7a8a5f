// Package stats holds the general statistics table: one block of summary
// columns per module, merged into a single cross-module table.
package stats

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/Sumatoshi-tech/qcreport/pkg/identity"
)

// Header defaults.
const (
	DefaultScale  = "GnBu"
	DefaultFormat = "%.1f"
)

// Column configures one metric key. Only Key is required.
type Column struct {
	Key         string
	Title       string
	Description string
	Scale       string
	Format      string
	// Min and Max fix the display bounds. Nil bounds are derived from data.
	Min *float64
	Max *float64
	// Modify transforms every value before it is compared for bounds.
	Modify func(float64) float64
}

// Header is a fully resolved column.
type Header struct {
	ID          string   `json:"id" yaml:"id"`
	Key         string   `json:"key" yaml:"key"`
	Module      string   `json:"module" yaml:"module"`
	Namespace   string   `json:"namespace" yaml:"namespace"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Scale       string   `json:"scale" yaml:"scale"`
	Format      string   `json:"format" yaml:"format"`
	Min         *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	DerivedMin  float64  `json:"-" yaml:"-"`
	DerivedMax  float64  `json:"-" yaml:"-"`

	Modify func(float64) float64 `json:"-" yaml:"-"`
}

// FormatValue renders v with the header format. Non-numeric values are
// printed as they are and absent values as an empty string.
func (h Header) FormatValue(v any) string {
	if v == nil {
		return ""
	}

	f, ok := ToFloat(v)
	if !ok {
		return fmt.Sprint(v)
	}

	if h.Modify != nil {
		f = h.Modify(f)
	}

	return fmt.Sprintf(h.Format, f)
}

// Section is the block one namespace contributed.
type Section struct {
	Namespace string
	Data      map[string]map[string]any
	Headers   []Header
}

// Table is the general statistics table of one report run.
// It is not safe for concurrent use.
type Table struct {
	sections []*Section
	index    map[string]int
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// AddColumns registers data under namespace, with the namespace also
// naming the module the column ids derive from.
func (t *Table) AddColumns(namespace string, data map[string]map[string]any, headers []Column) {
	t.AddModuleColumns(namespace, namespace, data, headers)
}

// AddModuleColumns registers data of module under namespace. An empty
// namespace defaults to module. Column ids are built from the module name
// and the key. Keys come from headers in order or, when headers is empty,
// from the sorted union of keys in data. A namespace registered again is
// replaced as a whole and keeps its position.
func (t *Table) AddModuleColumns(module, namespace string, data map[string]map[string]any, headers []Column) {
	if namespace == "" {
		namespace = module
	}

	columns := headers
	if len(columns) == 0 {
		columns = columnsFromData(data)
	}

	section := &Section{
		Namespace: namespace,
		Data:      data,
		Headers:   make([]Header, 0, len(columns)),
	}

	for _, col := range columns {
		section.Headers = append(section.Headers, resolveHeader(module, namespace, col, data))
	}

	if idx, ok := t.index[namespace]; ok {
		t.sections[idx] = section

		return
	}

	t.index[namespace] = len(t.sections)
	t.sections = append(t.sections, section)
}

// Section returns the block registered under namespace.
func (t *Table) Section(namespace string) (*Section, bool) {
	idx, ok := t.index[namespace]
	if !ok {
		return nil, false
	}

	return t.sections[idx], true
}

// Sections returns all blocks in registration order.
func (t *Table) Sections() []*Section {
	return slices.Clone(t.sections)
}

// Headers returns every header of every block in registration order.
func (t *Table) Headers() []Header {
	var out []Header

	for _, s := range t.sections {
		out = append(out, s.Headers...)
	}

	return out
}

// Samples returns the sorted union of sample names across all blocks.
func (t *Table) Samples() []string {
	seen := make(map[string]struct{})

	for _, s := range t.sections {
		for name := range s.Data {
			seen[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Len returns the number of registered namespaces.
func (t *Table) Len() int {
	return len(t.sections)
}

// Rows flattens the table to one row per sample keyed by column id, the
// shape written to the general statistics data file.
func (t *Table) Rows() map[string]map[string]any {
	rows := make(map[string]map[string]any)

	for _, s := range t.sections {
		for sample, values := range s.Data {
			row, ok := rows[sample]
			if !ok {
				row = make(map[string]any)
				rows[sample] = row
			}

			for _, h := range s.Headers {
				if v, present := values[h.Key]; present {
					row[h.ID] = v
				}
			}
		}
	}

	return rows
}

func columnsFromData(data map[string]map[string]any) []Column {
	seen := make(map[string]struct{})

	for _, values := range data {
		for key := range values {
			seen[key] = struct{}{}
		}
	}

	columns := make([]Column, 0, len(seen))
	for _, key := range slices.Sorted(maps.Keys(seen)) {
		columns = append(columns, Column{Key: key})
	}

	return columns
}

func resolveHeader(module, namespace string, col Column, data map[string]map[string]any) Header {
	h := Header{
		ID:          identity.ColumnID(module, col.Key),
		Key:         col.Key,
		Module:      module,
		Namespace:   namespace,
		Title:       col.Title,
		Description: col.Description,
		Scale:       col.Scale,
		Format:      col.Format,
		Min:         col.Min,
		Max:         col.Max,
		Modify:      col.Modify,
	}

	if h.Title == "" {
		h.Title = col.Key
	}

	if h.Description == "" {
		h.Description = namespace + ": " + h.Title
	}

	if h.Scale == "" {
		h.Scale = DefaultScale
	}

	if h.Format == "" {
		h.Format = DefaultFormat
	}

	h.DerivedMin, h.DerivedMax = math.Inf(1), math.Inf(-1)

	if h.Min != nil {
		h.DerivedMin = *h.Min
	}

	if h.Max != nil {
		h.DerivedMax = *h.Max
	}

	if h.Min != nil && h.Max != nil {
		return h
	}

	for _, values := range data {
		raw, ok := values[col.Key]
		if !ok {
			continue
		}

		val, ok := ToFloat(raw)
		if !ok {
			continue
		}

		if h.Modify != nil {
			val = h.Modify(val)
		}

		if h.Min == nil {
			h.DerivedMin = math.Min(h.DerivedMin, val)
		}

		if h.Max == nil {
			h.DerivedMax = math.Max(h.DerivedMax, val)
		}
	}

	return h
}
