package adapters

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bulkops/internal/ports"
	"bulkops/internal/shared"
)

// CSVRowSource streams records of a comma separated file. The header is
// read eagerly; data rows are numbered from 2.
type CSVRowSource struct {
	file   *os.File
	reader *csv.Reader
	header []string
	line   int
}

func OpenCSVRowSource(path string) (*CSVRowSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open input file").
			WithCause(err)
	}
	reader := csv.NewReader(stripUTF8BOM(bufio.NewReader(f)))
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false
	header, err := reader.Read()
	if err != nil {
		_ = f.Close()
		if errors.Is(err, io.EOF) {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("input file has no header")
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read input header").
			WithCause(err)
	}
	return &CSVRowSource{file: f, reader: reader, header: shared.NormalizeHeader(header), line: 1}, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func (s *CSVRowSource) Header() []string {
	return append([]string(nil), s.header...)
}

func (s *CSVRowSource) Next() (ports.Row, error) {
	for {
		record, err := s.reader.Read()
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			s.line++
			return ports.Row{}, &ports.RowError{Line: s.line, Err: parseErr.Err}
		}
		if err != nil {
			return ports.Row{}, err
		}
		s.line++
		if shared.BlankRecord(record) {
			continue
		}
		return ports.Row{Line: s.line, Values: shared.ZipRow(s.header, record)}, nil
	}
}

func (s *CSVRowSource) Close() error {
	return s.file.Close()
}
