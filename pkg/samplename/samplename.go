// Package samplename turns log file names into clean sample identifiers.
package samplename

import (
	"os"
	"strings"
)

// dirJoiner separates directory components from the file part when
// directories are prepended to a sample name.
const dirJoiner = " | "

// leadingTrim lists the characters stripped from the front of a name that
// had its directory prepended.
const leadingTrim = ". |"

// Resolve strips every cleaning suffix from filename and optionally prepends
// the containing directory. Tokens are applied in order; each one truncates
// the name at its first occurrence.
func Resolve(filename, root string, cleanExts []string, prependDirs bool) string {
	name := filename

	for _, ext := range cleanExts {
		if ext == "" {
			continue
		}

		if idx := strings.Index(name, ext); idx >= 0 {
			name = name[:idx]
		}
	}

	if !prependDirs {
		return name
	}

	dirs := strings.ReplaceAll(root, string(os.PathSeparator), dirJoiner)

	return strings.TrimLeft(dirs+dirJoiner+name, leadingTrim)
}

// Resolver binds the cleaning configuration of one run.
type Resolver struct {
	CleanExts   []string
	PrependDirs bool
}

// NewResolver creates a Resolver. The suffix list is copied.
func NewResolver(cleanExts []string, prependDirs bool) Resolver {
	return Resolver{
		CleanExts:   append([]string(nil), cleanExts...),
		PrependDirs: prependDirs,
	}
}

// Resolve cleans filename found under root.
func (r Resolver) Resolve(filename, root string) string {
	return Resolve(filename, root, r.CleanExts, r.PrependDirs)
}
