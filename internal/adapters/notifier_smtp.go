package adapters

import (
	"context"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"

	"bulkops/internal/types"
)

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPNotifier sends notifications as multipart text and HTML mail.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send func(ctx context.Context, msg *mail.Msg) error
	now  func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig) SMTPNotifier {
	n := SMTPNotifier{cfg: cfg, now: time.Now}
	n.send = n.dialAndSend
	return n
}

func (n SMTPNotifier) ImportCompleted(ctx context.Context, recipient types.User, report types.ImportReport) error {
	return n.deliver(ctx, importCompletedMessage(recipient, report))
}

func (n SMTPNotifier) ImportInvalidInput(ctx context.Context, recipient types.User, messages []string) error {
	return n.deliver(ctx, importInvalidInputMessage(recipient, messages))
}

func (n SMTPNotifier) CopySettingsCompleted(ctx context.Context, recipient types.User, project types.Project, report types.CopySettingsReport) error {
	return n.deliver(ctx, copySettingsCompletedMessage(recipient, project, report))
}

func (n SMTPNotifier) CopySettingsInvalidProject(ctx context.Context, recipient types.User) error {
	return n.deliver(ctx, copySettingsInvalidMessage(recipient))
}

func (n SMTPNotifier) deliver(ctx context.Context, msg MailMessage) error {
	if msg.To == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("notification recipient has no email address")
	}
	composed, err := n.compose(msg)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to compose notification").
			WithCause(err)
	}
	if err := n.send(ctx, composed); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to send notification").
			WithCause(err)
	}
	log.Ctx(ctx).Debug().Str("to", msg.To).Str("subject", msg.Subject).Msg("notification sent")
	return nil
}

// compose builds a multipart/alternative message with the text body first.
func (n SMTPNotifier) compose(msg MailMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return nil, err
	}
	if err := m.To(msg.To); err != nil {
		return nil, err
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(n.now())
	m.SetMessageIDWithValue(uuid.NewString() + "@bulkops")
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

func (n SMTPNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
