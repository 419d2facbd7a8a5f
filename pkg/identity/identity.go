// Package identity generates the identifiers that tie report elements
// together: column ids in the general statistics table and plot element ids.
package identity

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Plot id prefixes.
const (
	// InteractivePrefix marks plots drawn in the browser.
	InteractivePrefix = "mqc_hcplot_"
	// StaticPrefix marks plots embedded as images.
	StaticPrefix = "mqc_mplplot_"

	plotSuffixLen = 10
	slugRandLen   = 4
)

// RandomLetters returns n random ASCII letters.
func RandomLetters(n int) string {
	var sb strings.Builder

	sb.Grow(n)

	for range n {
		sb.WriteByte(letters[rand.IntN(len(letters))]) //nolint:gosec // ids only need to be distinct.
	}

	return sb.String()
}

// Slug lowercases name and keeps only its letters and digits.
func Slug(name string) string {
	var sb strings.Builder

	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

// ColumnID returns the table-wide id of a metric key of module.
// An unnamed module gets a random slug.
func ColumnID(module, key string) string {
	slug := Slug(module)
	if module == "" {
		slug = RandomLetters(slugRandLen)
	}

	return slug + "_" + key
}

// PlotID returns id when set, otherwise a random id with prefix.
func PlotID(id, prefix string) string {
	if id != "" {
		return id
	}

	return prefix + RandomLetters(plotSuffixLen)
}
