package core

import (
	"errors"

	"bulkops/internal/types"
)

// ErrorAggregator collects unit errors in the order units and steps run. It
// never deduplicates.
type ErrorAggregator struct {
	entries []types.UnitError
}

func (a *ErrorAggregator) Add(errs ...types.UnitError) {
	a.entries = append(a.entries, errs...)
}

func (a *ErrorAggregator) Entries() []types.UnitError {
	out := make([]types.UnitError, len(a.entries))
	copy(out, a.entries)
	return out
}

func (a *ErrorAggregator) Len() int {
	return len(a.entries)
}

// lineErrors tags messages with an import line and action.
func lineErrors(line int, action string, messages []string) []types.UnitError {
	if len(messages) == 0 {
		return nil
	}
	out := make([]types.UnitError, 0, len(messages))
	for _, msg := range messages {
		out = append(out, types.UnitError{Line: line, Action: action, Message: msg})
	}
	return out
}

// errorMessages flattens a store error into report sentences.
func errorMessages(err error) []string {
	if err == nil {
		return nil
	}
	var validation *types.ValidationError
	if errors.As(err, &validation) && len(validation.Messages) > 0 {
		return append([]string(nil), validation.Messages...)
	}
	return []string{err.Error()}
}
