package mail

import (
	"bytes"
	"html/template"
	"net/url"
)

var (
	verificationTmpl = template.Must(template.New("verify").Parse(
		`<p>Please verify your email by clicking on the following link:</p>` +
			`<p><a href="{{.Link}}">Verify Email</a></p>` +
			`<p>If you did not register for Project Manager, please ignore this email.</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<p>You requested a password reset for your Project Manager account:</p>` +
			`<p><a href="{{.Link}}">Reset Password</a></p>` +
			`<p>If you did not request this, please ignore this email.</p>`))

	assignmentTmpl = template.Must(template.New("assign").Parse(
		`<p>You have been assigned a new task:</p>` +
			`<p><strong>Task:</strong> {{.Task}}</p>` +
			`<p><strong>Project:</strong> {{.Project}}</p>` +
			`<p>Please log in to Project Manager to view details.</p>`))
)

const (
	SubjectVerification = "Email Verification - Project Manager"
	SubjectReset        = "Password Reset - Project Manager"
	SubjectAssignment   = "Task Assigned - Project Manager"
)

func tokenLink(baseURL, path, token string) string {
	return baseURL + path + "?token=" + url.QueryEscape(token)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
