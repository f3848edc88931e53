package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

const (
	EmailValidate = "email_validate"
	PasswordReset = "password_reset"
)

// Render produces subject, text and html bodies for a known template.
// Data must contain "Code"; "Name" and "ExpiresIn" are optional.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case EmailValidate:
		subject = "Email verification code"
		text = fmt.Sprintf("Your verification code is: %v", data["Code"])
	case PasswordReset:
		subject = "Password reset code"
		text = fmt.Sprintf("Your password reset code is: %v", data["Code"])
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}

	t, err := htmpl.ParseFS(FS, name+".tmpl")
	if err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	return subject, text, buf.String(), nil
}
