package adapters

import (
	"context"

	"github.com/rs/zerolog/log"

	"bulkops/internal/types"
)

// LogNotifier writes end-of-run reports to the structured log instead of
// sending mail.
type LogNotifier struct{}

func NewLogNotifier() LogNotifier {
	return LogNotifier{}
}

func (LogNotifier) ImportCompleted(ctx context.Context, recipient types.User, report types.ImportReport) error {
	logMessage(ctx, importCompletedMessage(recipient, report), report.Errors)
	return nil
}

func (LogNotifier) ImportInvalidInput(ctx context.Context, recipient types.User, messages []string) error {
	msg := importInvalidInputMessage(recipient, messages)
	logger := log.Ctx(ctx)
	logger.Info().Str("to", msg.To).Int("errors", len(messages)).Msg(msg.Subject)
	for _, m := range messages {
		logger.Warn().Msg(m)
	}
	return nil
}

func (LogNotifier) CopySettingsCompleted(ctx context.Context, recipient types.User, project types.Project, report types.CopySettingsReport) error {
	logMessage(ctx, copySettingsCompletedMessage(recipient, project, report), report.Errors)
	return nil
}

func (LogNotifier) CopySettingsInvalidProject(ctx context.Context, recipient types.User) error {
	logMessage(ctx, copySettingsInvalidMessage(recipient), nil)
	return nil
}

func logMessage(ctx context.Context, msg MailMessage, errs []types.UnitError) {
	logger := log.Ctx(ctx)
	logger.Info().Str("to", msg.To).Int("errors", len(errs)).Msg(msg.Subject)
	for _, e := range errs {
		logger.Warn().Int("line", e.Line).Str("unit", e.Unit).Str("action", e.Action).Msg(e.Message)
	}
}
