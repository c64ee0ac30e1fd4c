package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// Known template names.
const (
	TemplateWelcome           = "welcome"
	TemplateEventCreated      = "event_created"
	TemplateEventRegistration = "event_registration"
)

type templateDef struct {
	subject string // text/template, may reference Data fields
	text    string
	html    string
}

var templateDefs = map[string]templateDef{
	TemplateWelcome: {
		subject: "Welcome to {{.AppName}}!",
		text: "Hi {{.Name}},\n\n" +
			"Thanks for joining {{.AppName}}. You can now discover campus events, " +
			"register for them and create your own.\n\nSee you there!",
		html: "<div style=\"font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;\">" +
			"<h2>Welcome to {{.AppName}}, {{.Name}}!</h2>" +
			"<p>Thanks for joining. You can now discover campus events, register for them and create your own.</p>" +
			"<p>See you there!</p></div>",
	},
	TemplateEventCreated: {
		subject: "New Event Created: {{.EventTitle}}",
		text:    "Hi {{.Name}},\n\nYou have successfully created a new event: {{.EventTitle}}.",
		html: "<div style=\"font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;\">" +
			"<h2>Event created</h2>" +
			"<p>Hi {{.Name}}, you have successfully created a new event: <strong>{{.EventTitle}}</strong>.</p></div>",
	},
	TemplateEventRegistration: {
		subject: "Successfully Registered for {{.EventTitle}}",
		text:    "Hi {{.Name}},\n\nYou have successfully registered for the event: {{.EventTitle}}.",
		html: "<div style=\"font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;\">" +
			"<h2>Registration confirmed</h2>" +
			"<p>Hi {{.Name}}, you have successfully registered for: <strong>{{.EventTitle}}</strong>.</p></div>",
	},
}

// Render produces subject, text and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	def, ok := templateDefs[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	if subject, err = renderText(name+":subject", def.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+":text", def.text, data); err != nil {
		return "", "", "", err
	}
	if html, err = renderHTML(name+":html", def.html, data); err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}

func renderText(name, src string, data map[string]any) (string, error) {
	t, err := texttpl.New(name).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data map[string]any) (string, error) {
	t, err := htmpl.New(name).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
