package mailer

import (
	"html/template"

	"github.com/gartstein/clubhire/internal/hiring/models"
)

const layout = `<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#222">
{{template "content" .}}
<p style="color:#888;font-size:12px">{{.Club}}</p>
</body></html>`

var contents = map[models.NotificationKind]struct {
	subject string
	body    string
}{
	models.NotifyApplicationReceived: {
		subject: "Application received",
		body: `{{define "content"}}<p>Hi {{.name}},</p>
<p>We have received your application. Your reference ID is <b>{{.referenceId}}</b>;
use it to check your status at any time.</p>{{end}}`,
	},
	models.NotifyStatusChanged: {
		subject: "Application update",
		body: `{{define "content"}}<p>Hi {{.name}},</p>
{{if eq .status "Hired"}}<p>Congratulations! You have been selected to join us.</p>
{{else if eq .status "Rejected"}}<p>Thank you for your interest. We are unable to move forward with your application this time.</p>
{{else}}<p>Your application status is now <b>{{.status}}</b>.</p>{{end}}
<p>Reference ID: {{.referenceId}}</p>{{end}}`,
	},
	models.NotifyTeamInvite: {
		subject: "You are invited to the team page",
		body: `{{define "content"}}<p>Hello,</p>
<p>You have been added to the <b>{{.category}}</b> section of our team roster.
Complete your profile here: <a href="{{.link}}">{{.link}}</a></p>
<p>The link expires on {{.expiresAt}}.</p>{{end}}`,
	},
	models.NotifyEventRegistration: {
		subject: "Registration confirmed",
		body: `{{define "content"}}<p>Hi {{.name}},</p>
<p>You are registered for <b>{{.event}}</b>{{if .venue}} at {{.venue}}{{end}} on {{.startsAt}}.</p>{{end}}`,
	},
}

// parseTemplates compiles every notification template; it panics on a
// malformed template since they are compiled into the binary.
func parseTemplates() map[models.NotificationKind]message {
	out := make(map[models.NotificationKind]message, len(contents))
	for kind, c := range contents {
		t := template.Must(template.New("layout").Option("missingkey=zero").Parse(layout))
		template.Must(t.Parse(c.body))
		out[kind] = message{subject: c.subject, body: t}
	}
	return out
}
