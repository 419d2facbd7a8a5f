package datasource_test

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/qcreport/pkg/datasource"
	"github.com/Sumatoshi-tech/qcreport/pkg/discovery"
)

func TestRegistry_DefaultsFromMatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	reg := datasource.NewRegistry(slog.New(slog.DiscardHandler))

	reg.Add(datasource.Source{
		Module: "filescan",
		Match:  &discovery.LogFileMatch{SampleName: "s1", Root: root, Filename: "s1.log"},
	})

	path, ok := reg.Lookup("filescan", datasource.DefaultSection, "s1")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "s1.log"), path)
	assert.True(t, filepath.IsAbs(path))
}

func TestRegistry_ExplicitFieldsWin(t *testing.T) {
	t.Parallel()

	reg := datasource.NewRegistry(slog.New(slog.DiscardHandler))

	reg.Add(datasource.Source{
		Module:  "m",
		Section: "lengths",
		Sample:  "override",
		Path:    "relative/file.txt",
		Match:   &discovery.LogFileMatch{SampleName: "s1", Root: "/data", Filename: "s1.log"},
	})

	path, ok := reg.Lookup("m", "lengths", "override")
	require.True(t, ok)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "file.txt", filepath.Base(path))
}

func TestRegistry_MissingFieldsWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	reg := datasource.NewRegistry(slog.New(slog.NewTextHandler(&buf, nil)))
	reg.Add(datasource.Source{Module: "m", Sample: "s1"})

	assert.Zero(t, reg.Len())
	assert.Contains(t, buf.String(), "missing fields")
}

func TestRegistry_MissingModuleWarns(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	reg := datasource.NewRegistry(slog.New(slog.NewTextHandler(&buf, nil)))
	reg.Add(datasource.Source{Sample: "s1", Path: "/x/1"})

	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.Rows())
	assert.Contains(t, buf.String(), "missing fields")
}

func TestRegistry_RowsSorted(t *testing.T) {
	t.Parallel()

	reg := datasource.NewRegistry(slog.New(slog.DiscardHandler))
	reg.Add(datasource.Source{Module: "b", Sample: "s2", Path: "/x/2"})
	reg.Add(datasource.Source{Module: "a", Sample: "s9", Path: "/x/9"})
	reg.Add(datasource.Source{Module: "b", Sample: "s1", Path: "/x/1"})
	reg.Add(datasource.Source{Module: "b", Sample: "s1", Path: "/x/1b"})

	rows := reg.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Module)
	assert.Equal(t, "s1", rows[1].Sample)
	assert.Equal(t, "1b", filepath.Base(rows[1].Path))
	assert.Equal(t, "s2", rows[2].Sample)

	table := reg.Table()
	assert.Len(t, table, 3)
	assert.Equal(t, "s9", table["a | all_sections | s9"]["Sample Name"])
}
