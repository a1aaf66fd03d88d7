// internal/notification/templates.go

package notification

import (
	"bytes"
	"text/template"
)

type eventTemplate struct {
	title *template.Template
	body  *template.Template
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=zero").Parse(text))
}

var eventTemplates = map[EventType]eventTemplate{
	EventMutualMatch: {
		title: mustTemplate("match.title", "You have a Covenant Match!"),
		body:  mustTemplate("match.body", "You and {{.partnerName}} liked each other. Start the conversation."),
	},
	EventDateRequested: {
		title: mustTemplate("requested.title", "New date request"),
		body:  mustTemplate("requested.body", "{{.requesterName}} would like to meet{{if .venue}} at {{.venue}}{{end}}."),
	},
	EventDateResponded: {
		title: mustTemplate("responded.title", "Your date request was {{.status}}"),
		body:  mustTemplate("responded.body", "{{.recipientName}} {{.status}} your date request."),
	},
	EventDateCancelled: {
		title: mustTemplate("cancelled.title", "Date request cancelled"),
		body:  mustTemplate("cancelled.body", "{{.requesterName}} cancelled their date request."),
	},
	EventDateCompleted: {
		title: mustTemplate("completed.title", "You both confirmed you met!"),
		body:  mustTemplate("completed.body", "Your reputation score went up. Thank you for showing up."),
	},
	EventDateReminder: {
		title: mustTemplate("reminder.title", "Upcoming date"),
		body:  mustTemplate("reminder.body", "Reminder: you are meeting {{.partnerName}}{{if .venue}} at {{.venue}}{{end}} on {{.when}}."),
	},
	EventAdmirersDigest: {
		title: mustTemplate("digest.title", "{{.count}} people are interested in you"),
		body:  mustTemplate("digest.body", "You have {{.count}} unanswered likes.{{if .topPicks}} Top picks today: {{.topPicks}}.{{end}}"),
	},
}

// render fills in title and body for an event type. Unknown types render
// with the type as the title.
func render(t EventType, payload map[string]string) (title, body string) {
	tmpl, ok := eventTemplates[t]
	if !ok {
		return string(t), ""
	}
	return execute(tmpl.title, payload), execute(tmpl.body, payload)
}

func execute(t *template.Template, payload map[string]string) string {
	if payload == nil {
		payload = map[string]string{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, payload); err != nil {
		return ""
	}
	return buf.String()
}
