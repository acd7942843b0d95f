package adapters

import (
	"path/filepath"
	"strings"

	"bulkops/internal/ports"
)

// FileRowSourceOpener picks a reader by file extension. Anything that is not
// a spreadsheet is read as CSV.
type FileRowSourceOpener struct{}

func NewFileRowSourceOpener() FileRowSourceOpener {
	return FileRowSourceOpener{}
}

func (FileRowSourceOpener) Open(path string) (ports.RowSourcePort, error) {
	if IsSpreadsheet(path) {
		source, err := OpenXLSXRowSource(path)
		if err != nil {
			return nil, err
		}
		return source, nil
	}
	source, err := OpenCSVRowSource(path)
	if err != nil {
		return nil, err
	}
	return source, nil
}

func IsSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}
