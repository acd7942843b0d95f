package adapters

import (
	"io"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/xuri/excelize/v2"

	"bulkops/internal/ports"
	"bulkops/internal/shared"
)

// XLSXRowSource streams the first worksheet of a spreadsheet. Row numbers
// follow the sheet, so the first data row is line 2.
type XLSXRowSource struct {
	file   *excelize.File
	rows   *excelize.Rows
	header []string
	line   int
}

func OpenXLSXRowSource(path string) (*XLSXRowSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to open spreadsheet").
			WithCause(err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("spreadsheet has no worksheet")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read worksheet").
			WithCause(err)
	}
	source := &XLSXRowSource{file: f, rows: rows}
	if !rows.Next() {
		_ = source.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("input file has no header")
	}
	header, err := rows.Columns()
	if err != nil {
		_ = source.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read input header").
			WithCause(err)
	}
	source.header = shared.NormalizeHeader(header)
	source.line = 1
	return source, nil
}

func (s *XLSXRowSource) Header() []string {
	return append([]string(nil), s.header...)
}

func (s *XLSXRowSource) Next() (ports.Row, error) {
	for s.rows.Next() {
		s.line++
		cells, err := s.rows.Columns()
		if err != nil {
			return ports.Row{}, err
		}
		if shared.BlankRecord(cells) {
			continue
		}
		return ports.Row{Line: s.line, Values: shared.ZipRow(s.header, cells)}, nil
	}
	if err := s.rows.Error(); err != nil {
		return ports.Row{}, err
	}
	return ports.Row{}, io.EOF
}

func (s *XLSXRowSource) Close() error {
	rowsErr := s.rows.Close()
	if err := s.file.Close(); err != nil {
		return err
	}
	return rowsErr
}
