package core

import (
	"errors"
	"io"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bulkops/internal/ports"
)

// RowCursor walks a row source in order, skipping rows before StartLine so
// an interrupted run can be resumed by position.
type RowCursor struct {
	source    ports.RowSourcePort
	startLine int
}

func NewRowCursor(source ports.RowSourcePort, startLine int) *RowCursor {
	return &RowCursor{source: source, startLine: startLine}
}

// Each calls fn for every remaining row and bad for every record the source
// could not decode. It stops at the end of input or at the first other read
// error, which is returned.
func (c *RowCursor) Each(fn func(row ports.Row), bad func(failure *ports.RowError)) (int, error) {
	count := 0
	for {
		row, err := c.source.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		var rowErr *ports.RowError
		if errors.As(err, &rowErr) {
			if rowErr.Line >= c.startLine {
				bad(rowErr)
				count++
			}
			continue
		}
		if err != nil {
			return count, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read input row").
				WithCause(err)
		}
		if row.Line < c.startLine {
			continue
		}
		fn(row)
		count++
	}
}
