package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	WelcomeSubject  = "Welcome to ThreadCraft AI!"
	WelcomeCategory = "Welcome Email"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Welcome to ThreadCraft AI</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;">
<h1>Welcome to ThreadCraft AI, {{.Name}}!</h1>
<p>We're excited to have you on board. You start with {{.Points}} free points, enough for {{.Generations}} generations.</p>
{{if .AppURL}}<p><a href="{{.AppURL}}/generate">Write your first thread</a></p>{{end}}
</body>
</html>`))

type WelcomeData struct {
	Name        string
	Points      int
	Generations int
	AppURL      string
}

// RenderWelcome renders the welcome email. Name is HTML-escaped by the template.
func RenderWelcome(data WelcomeData) (html, text string, err error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render welcome template: %w", err)
	}

	textBody := fmt.Sprintf("Welcome to ThreadCraft AI, %s!\n\nWe're excited to have you on board. You start with %d free points, enough for %d generations.",
		data.Name, data.Points, data.Generations)
	if data.AppURL != "" {
		textBody += "\n\nWrite your first thread: " + data.AppURL + "/generate"
	}

	return buf.String(), textBody, nil
}
