// Package shared provides small text helpers used by the tabular input
// readers.
package shared

import (
	"strings"
)

const byteOrderMark = "\uFEFF"

// NormalizeHeaderCell trims a header cell and strips a leading byte order
// mark, so " username " with a BOM reads as "username".
func NormalizeHeaderCell(value string) string {
	return strings.TrimSpace(strings.TrimPrefix(value, byteOrderMark))
}

// NormalizeHeader applies NormalizeHeaderCell to every cell.
func NormalizeHeader(cells []string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = NormalizeHeaderCell(cell)
	}
	return out
}

// ZipRow maps header columns to the trimmed cells of one record. Missing
// trailing cells read as empty; surplus cells are dropped.
func ZipRow(header []string, cells []string) map[string]string {
	values := make(map[string]string, len(header))
	for i, column := range header {
		if column == "" {
			continue
		}
		if i < len(cells) {
			values[column] = strings.TrimSpace(cells[i])
		} else {
			values[column] = ""
		}
	}
	return values
}

// BlankRecord reports whether every cell is empty after trimming.
func BlankRecord(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
