package app

import (
	"context"
	"errors"
	"os"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bulkops/internal/core"
	"bulkops/internal/policies"
	"bulkops/internal/types"
)

// ImportUsers runs one user import job. A missing actor ends the job without
// side effects. A malformed header is fatal and is reported to the actor;
// every other failure is recorded per row in the report, which is sent to
// the actor when the run ends.
func (s Service) ImportUsers(ctx context.Context, req ImportUsersRequest) (ImportUsersResult, error) {
	if err := validateRequest(req); err != nil {
		return ImportUsersResult{}, err
	}
	if req.AuthMode == types.AuthModeIdentityURL && strings.TrimSpace(req.IdentityPrefix) == "" {
		return ImportUsersResult{}, invalidRequest("identity_prefix is required for identity_url mode")
	}

	runID := s.runID()
	assert.NotEmpty(ctx, runID, "run id must be set")
	logger := log.Ctx(ctx).With().Str("job", "import-users").Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	actor, found, err := s.Store.FindUserByID(ctx, req.ActorID)
	if err != nil {
		return ImportUsersResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to load the importing user").
			WithCause(err)
	}
	if !found {
		logger.Warn().Int64("actor_id", req.ActorID).Msg("importing user not found, nothing to do")
		return ImportUsersResult{}, nil
	}
	if req.RemoveInput {
		defer removeInput(ctx, req.InputPath)
	}

	path, release, err := s.Scratch.Acquire(req.InputPath)
	if err != nil {
		return ImportUsersResult{}, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn().Err(err).Msg("failed to remove scratch copy")
		}
	}()

	source, err := s.Sources.Open(path)
	if err != nil {
		return ImportUsersResult{}, err
	}
	defer source.Close()
	if err := core.ValidateHeader(source.Header(), req.AuthMode); err != nil {
		logger.Warn().Err(err).Msg("input header rejected")
		if notifyErr := s.Notifier.ImportInvalidInput(ctx, actor, invalidInputMessages(err)); notifyErr != nil {
			logger.Error().Err(notifyErr).Msg("failed to deliver import failure")
		}
		return ImportUsersResult{}, err
	}

	logger.Info().
		Str("auth_mode", string(req.AuthMode)).
		Bool("allow_create", req.AllowCreate).
		Int("start_line", req.StartLine).
		Msg("import started")
	rc := core.NewResolutionContext(actor, policies.CreatePolicyFor(req.AllowCreate))
	importer := core.NewUserImporter(core.NewEntityResolver(s.Store, s.Gate), core.ImportOptions{
		AuthMode:       req.AuthMode,
		IdentityPrefix: strings.TrimSpace(req.IdentityPrefix),
		DefaultRole:    s.DefaultRole,
		StartLine:      req.StartLine,
	})
	report := importer.Run(ctx, rc, source)
	report.RunID = runID

	if err := s.Notifier.ImportCompleted(ctx, actor, report); err != nil {
		logger.Error().Err(err).Msg("failed to deliver import report")
	}
	return ImportUsersResult{Report: report}, nil
}

func invalidInputMessages(err error) []string {
	var malformed *core.MalformedInputError
	if errors.As(err, &malformed) {
		return malformed.Messages()
	}
	return []string{err.Error()}
}

func removeInput(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("failed to remove input file")
	}
}
