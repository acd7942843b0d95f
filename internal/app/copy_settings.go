package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"bulkops/internal/core"
	"bulkops/internal/policies"
)

// CopySettings propagates the selected settings of a project to its active
// children. A missing or archived project is reported to the actor and is
// not an error of the call.
func (s Service) CopySettings(ctx context.Context, req CopySettingsRequest) (CopySettingsResult, error) {
	if err := validateRequest(req); err != nil {
		return CopySettingsResult{}, err
	}
	selection := policies.ParseSettingsSelection(req.Settings, req.Order)
	if selection.Empty() {
		return CopySettingsResult{}, invalidRequest("No settings were chosen to be copied.")
	}

	runID := s.runID()
	logger := log.Ctx(ctx).With().Str("job", "copy-settings").Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	actor, found, err := s.Store.FindUserByID(ctx, req.ActorID)
	if err != nil {
		return CopySettingsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to load the requesting user").
			WithCause(err)
	}
	if !found {
		logger.Warn().Int64("actor_id", req.ActorID).Msg("requesting user not found, nothing to do")
		return CopySettingsResult{}, nil
	}

	project, found, err := s.Store.FindProjectByIdentifier(ctx, strings.TrimSpace(req.ProjectID))
	if err != nil {
		return CopySettingsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to load the project").
			WithCause(err)
	}
	if !found || !project.Active {
		logger.Warn().Str("project", req.ProjectID).Msg("project missing or archived")
		if err := s.Notifier.CopySettingsInvalidProject(ctx, actor); err != nil {
			logger.Error().Err(err).Msg("failed to deliver copy settings failure")
		}
		return CopySettingsResult{InvalidProject: true}, nil
	}

	logger.Info().
		Str("project", project.Identifier).
		Int("categories", len(selection.Categories)).
		Msg("settings propagation started")
	report, err := core.NewSettingsPropagator(s.Store, s.Gate).Propagate(ctx, actor, project, selection)
	if err != nil {
		return CopySettingsResult{}, err
	}
	report.RunID = runID

	if err := s.Notifier.CopySettingsCompleted(ctx, actor, project, report); err != nil {
		logger.Error().Err(err).Msg("failed to deliver copy settings report")
	}
	return CopySettingsResult{Report: report}, nil
}
