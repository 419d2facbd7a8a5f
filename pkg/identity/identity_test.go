package identity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/qcreport/pkg/identity"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fastqscreen", identity.Slug("FastQ Screen"))
	assert.Equal(t, "bowtie2", identity.Slug("Bowtie-2"))
	assert.Empty(t, identity.Slug(" _-"))
}

func TestColumnID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "moda_depth", identity.ColumnID("modA", "depth"))

	anon := identity.ColumnID("", "depth")
	assert.Len(t, anon, len("abcd_depth"))
	assert.True(t, strings.HasSuffix(anon, "_depth"))
}

func TestPlotID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "my_plot", identity.PlotID("my_plot", identity.InteractivePrefix))

	id := identity.PlotID("", identity.StaticPrefix)
	assert.True(t, strings.HasPrefix(id, identity.StaticPrefix))
	assert.Len(t, id, len(identity.StaticPrefix)+10)
}

func TestRandomLetters(t *testing.T) {
	t.Parallel()

	s := identity.RandomLetters(32)
	assert.Len(t, s, 32)

	for _, r := range s {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'), string(r))
	}
}
