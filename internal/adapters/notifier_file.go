package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"bulkops/internal/types"
)

// FileNotifier writes every notification as a YAML document into a
// directory, one file per message.
type FileNotifier struct {
	Dir string
	now func() time.Time
}

func NewFileNotifier(dir string) FileNotifier {
	return FileNotifier{Dir: dir, now: time.Now}
}

type notificationFile struct {
	Message MailMessage `yaml:"message"`
	Report  any         `yaml:"report,omitempty"`
}

func (n FileNotifier) ImportCompleted(ctx context.Context, recipient types.User, report types.ImportReport) error {
	return n.write("import", report.RunID, notificationFile{Message: importCompletedMessage(recipient, report), Report: report})
}

func (n FileNotifier) ImportInvalidInput(ctx context.Context, recipient types.User, messages []string) error {
	return n.write("import-invalid", "", notificationFile{Message: importInvalidInputMessage(recipient, messages)})
}

func (n FileNotifier) CopySettingsCompleted(ctx context.Context, recipient types.User, project types.Project, report types.CopySettingsReport) error {
	return n.write("copy-settings", report.RunID, notificationFile{
		Message: copySettingsCompletedMessage(recipient, project, report),
		Report:  report,
	})
}

func (n FileNotifier) CopySettingsInvalidProject(ctx context.Context, recipient types.User) error {
	return n.write("copy-settings-invalid", "", notificationFile{Message: copySettingsInvalidMessage(recipient)})
}

func (n FileNotifier) write(kind string, runID string, doc notificationFile) error {
	if err := os.MkdirAll(n.Dir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create notification directory").
			WithCause(err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode notification").
			WithCause(err)
	}
	if runID == "" {
		runID = fmt.Sprintf("%d", n.now().UnixNano())
	}
	path := filepath.Join(n.Dir, fmt.Sprintf("%s-%s.yaml", kind, runID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write notification").
			WithCause(err)
	}
	return nil
}
