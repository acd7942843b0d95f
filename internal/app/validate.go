package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"bulkops/internal/core"
)

// ValidateInput checks that an import file can be opened and that its
// header carries every column the auth mode requires. No rows are read.
func (s Service) ValidateInput(ctx context.Context, req ValidateInputRequest) (ValidateInputResult, error) {
	if err := validateRequest(req); err != nil {
		return ValidateInputResult{}, err
	}
	source, err := s.Sources.Open(req.InputPath)
	if err != nil {
		return ValidateInputResult{}, err
	}
	defer source.Close()
	header := source.Header()
	if err := core.ValidateHeader(header, req.AuthMode); err != nil {
		return ValidateInputResult{}, err
	}
	log.Ctx(ctx).Debug().Strs("columns", header).Msg("input header valid")
	return ValidateInputResult{Columns: header}, nil
}
