// Package textutil provides line-oriented text helpers shared by discovery
// and modules: token scanning, line counting and line-length summaries.
package textutil

import (
	"strings"
)

// ContainsAnyLine reports whether any line of text contains one of tokens.
// Lines are scanned in order and scanning stops at the first hit.
func ContainsAnyLine(text string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}

	for line := range strings.Lines(text) {
		for _, token := range tokens {
			if strings.Contains(line, token) {
				return true
			}
		}
	}

	return false
}

// ContainsAny reports whether s contains any of tokens.
func ContainsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}

	return false
}

// CountLines returns the number of newline-delimited lines in text.
// A non-empty text without a trailing newline counts the last partial line.
func CountLines(text string) int {
	if text == "" {
		return 0
	}

	lines := strings.Count(text, "\n")

	if !strings.HasSuffix(text, "\n") {
		lines++
	}

	return lines
}

// LineSummary describes the line structure of a text.
type LineSummary struct {
	Lines   int
	Blank   int
	Longest int
	// Lengths maps a line length bucket (lower bound) to the number of lines in it.
	Lengths map[int]int
}

// Summarize walks every line of text, grouping lengths into buckets of
// bucketSize characters. A bucketSize below 1 is treated as 1.
func Summarize(text string, bucketSize int) LineSummary {
	if bucketSize < 1 {
		bucketSize = 1
	}

	summary := LineSummary{Lengths: make(map[int]int)}

	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\r\n")

		summary.Lines++

		if strings.TrimSpace(line) == "" {
			summary.Blank++
		}

		length := len([]rune(line))
		summary.Longest = max(summary.Longest, length)
		summary.Lengths[(length/bucketSize)*bucketSize]++
	}

	return summary
}
