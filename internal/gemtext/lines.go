package gemtext

import "strings"

// SplitLines splits a document on '\n', dropping a trailing '\r' from each
// line. A final newline does not produce an empty last line.
func SplitLines(doc string) []string {
	if doc == "" {
		return nil
	}
	lines := strings.Split(doc, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
