package adapters

import (
	"bytes"
	"fmt"
	"strings"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"bulkops/internal/types"
)

// MailMessage is a rendered notification with plain text and HTML bodies.
type MailMessage struct {
	To      string `yaml:"to"`
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
	HTML    string `yaml:"html"`
}

const (
	subjectImportCompleted     = "User import completed"
	subjectImportFailed        = "User import failed"
	subjectCopySettingsFailed  = "Bulk copying settings failed"
	subjectCopySettingsPattern = "Bulk copying settings of %s finished"
)

type createdLine struct {
	label string
	count int
}

func createdLines(created types.CreatedCounts) []createdLine {
	return []createdLine{
		{"Users", created.Users},
		{"Groups", created.Groups},
		{"Roles", created.Roles},
		{"Projects", created.Projects},
	}
}

func importCompletedMessage(recipient types.User, report types.ImportReport) MailMessage {
	errs := types.FormatUnitErrors(report.Errors)
	var text strings.Builder
	fmt.Fprintf(&text, "The user import has finished. %d rows were processed.\n\n", report.Processed)
	text.WriteString("Created:\n")
	for _, line := range createdLines(report.Created) {
		fmt.Fprintf(&text, "  %s: %d\n", line.label, line.count)
	}
	writeTextErrors(&text, errs)

	createdItems := make([]gomponents.Node, 0, 4)
	for _, line := range createdLines(report.Created) {
		createdItems = append(createdItems, html.Li(gomponents.Textf("%s: %d", line.label, line.count)))
	}
	body := []gomponents.Node{
		html.P(gomponents.Textf("The user import has finished. %d rows were processed.", report.Processed)),
		html.H3(gomponents.Text("Created")),
		html.Ul(createdItems...),
		htmlErrors(errs),
	}
	return MailMessage{
		To:      recipient.Mail,
		Subject: subjectImportCompleted,
		Text:    text.String(),
		HTML:    renderMailHTML(subjectImportCompleted, body),
	}
}

func importInvalidInputMessage(recipient types.User, messages []string) MailMessage {
	intro := "The user import could not be started because the chosen file is invalid."
	var text strings.Builder
	text.WriteString(intro + "\n")
	writeTextErrors(&text, messages)
	body := []gomponents.Node{
		html.P(gomponents.Text(intro)),
		htmlErrors(messages),
	}
	return MailMessage{
		To:      recipient.Mail,
		Subject: subjectImportFailed,
		Text:    text.String(),
		HTML:    renderMailHTML(subjectImportFailed, body),
	}
}

func copySettingsCompletedMessage(recipient types.User, project types.Project, report types.CopySettingsReport) MailMessage {
	subject := fmt.Sprintf(subjectCopySettingsPattern, project.Name)
	errs := types.FormatUnitErrors(report.Errors)
	intro := fmt.Sprintf("Copying the settings of %s to its %d sub-projects has finished.", project.Name, report.Children)
	var text strings.Builder
	text.WriteString(intro + "\n")
	writeTextErrors(&text, errs)
	body := []gomponents.Node{
		html.P(gomponents.Text(intro)),
		htmlErrors(errs),
	}
	return MailMessage{
		To:      recipient.Mail,
		Subject: subject,
		Text:    text.String(),
		HTML:    renderMailHTML(subject, body),
	}
}

func copySettingsInvalidMessage(recipient types.User) MailMessage {
	intro := "The settings could not be copied because the selected project is invalid or no longer exists."
	return MailMessage{
		To:      recipient.Mail,
		Subject: subjectCopySettingsFailed,
		Text:    intro + "\n",
		HTML:    renderMailHTML(subjectCopySettingsFailed, []gomponents.Node{html.P(gomponents.Text(intro))}),
	}
}

func writeTextErrors(text *strings.Builder, errs []string) {
	if len(errs) == 0 {
		text.WriteString("\nNo errors occurred.\n")
		return
	}
	fmt.Fprintf(text, "\nThe following %d errors occurred:\n", len(errs))
	for _, e := range errs {
		text.WriteString("  - " + e + "\n")
	}
}

func htmlErrors(errs []string) gomponents.Node {
	if len(errs) == 0 {
		return html.P(gomponents.Text("No errors occurred."))
	}
	items := make([]gomponents.Node, 0, len(errs))
	for _, e := range errs {
		items = append(items, html.Li(gomponents.Text(e)))
	}
	return gomponents.Group([]gomponents.Node{
		html.P(gomponents.Textf("The following %d errors occurred:", len(errs))),
		html.Ul(items...),
	})
}

func renderMailHTML(title string, body []gomponents.Node) string {
	doc := html.Doctype(html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.TitleEl(gomponents.Text(title)),
		),
		html.Body(body...),
	))
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}
