package samplename_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/qcreport/pkg/samplename"
)

func TestResolve_StripsSuffixes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		exts     []string
		want     string
	}{
		{name: "single suffix", filename: "sample1.log", exts: []string{".log"}, want: "sample1"},
		{name: "first occurrence wins", filename: "a.txt.b.txt", exts: []string{".txt"}, want: "a"},
		{name: "order matters", filename: "s1_fastqc.zip", exts: []string{".zip", "_fastqc"}, want: "s1"},
		{name: "token missing", filename: "reads.bam", exts: []string{".gz"}, want: "reads.bam"},
		{name: "empty token ignored", filename: "x.log", exts: []string{"", ".log"}, want: "x"},
		{name: "no tokens", filename: "plain", exts: nil, want: "plain"},
		{name: "truncate to empty", filename: ".hidden", exts: []string{"."}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, samplename.Resolve(tt.filename, "", tt.exts, false))
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	exts := []string{".gz", ".fastq", "_trimmed", ".txt"}

	for _, fn := range []string{"s1_trimmed.fastq.gz", "s2.txt", "s3", "a.gz.txt.gz"} {
		once := samplename.Resolve(fn, "", exts, false)
		twice := samplename.Resolve(once, "", exts, false)

		assert.Equal(t, once, twice, fn)
	}
}

func TestResolve_PrependDirs(t *testing.T) {
	t.Parallel()

	root := filepath.Join("runs", "lane1")

	got := samplename.Resolve("s1.log", root, []string{".log"}, true)
	assert.Equal(t, "runs | lane1 | s1", got)

	got = samplename.Resolve("s1.log", ".", []string{".log"}, true)
	assert.Equal(t, "s1", got)

	got = samplename.Resolve("s1.log", "", []string{".log"}, true)
	assert.Equal(t, "s1", got)
}

func TestResolver_CopiesTokens(t *testing.T) {
	t.Parallel()

	exts := []string{".log"}
	resolver := samplename.NewResolver(exts, false)
	exts[0] = ".txt"

	assert.Equal(t, "s1", resolver.Resolve("s1.log", "dir"))
}
