package ports

import "fmt"

// Row is one record of tabular input. Line is the 1-based line number of the
// record in the source, so the first data row after the header is line 2.
type Row struct {
	Line   int
	Values map[string]string
}

// Get returns the cell for column, or "" when absent. Sources trim cells
// before building a Row.
func (r Row) Get(column string) string {
	return r.Values[column]
}

// RowError reports a record that could not be decoded. The source stays
// usable and the next call to Next continues after the broken record.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// RowSourcePort yields rows lazily in input order. Next returns io.EOF once
// the input is exhausted and *RowError for a single malformed record.
type RowSourcePort interface {
	Header() []string
	Next() (Row, error)
	Close() error
}

type RowSourceOpener interface {
	Open(path string) (RowSourcePort, error)
}
