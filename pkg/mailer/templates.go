package mailer

import (
	"bytes"
	"html/template"
	texttemplate "text/template"
)

const passwordResetHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Reset your password</h2>
  <p>Hi {{.Name}},</p>
  <p>We received a request to reset the password for your account. Click the
  button below to choose a new one. The link expires in {{.ExpiryText}}.</p>
  <p><a href="{{.ResetLink}}" style="background: #2563eb; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Reset Password</a></p>
  <p>If you did not request a reset, you can safely ignore this email.</p>
</body>
</html>`

const passwordResetText = `Hi {{.Name}},

We received a request to reset the password for your account. Open the link
below to choose a new one. The link expires in {{.ExpiryText}}.

{{.ResetLink}}

If you did not request a reset, you can safely ignore this email.`

const welcomeHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome, {{.Name}}!</h2>
  <p>Your account has been created. Sign in to start managing your tasks.</p>
  <p><a href="{{.LoginLink}}" style="background: #2563eb; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">Sign In</a></p>
</body>
</html>`

const welcomeText = `Welcome, {{.Name}}!

Your account has been created. Sign in to start managing your tasks:

{{.LoginLink}}`

type passwordResetContext struct {
	Name       string
	ResetLink  string
	ExpiryText string
}

type welcomeContext struct {
	Name      string
	LoginLink string
}

var (
	passwordResetHTMLTmpl = template.Must(template.New("password_reset_html").Parse(passwordResetHTML))
	passwordResetTextTmpl = texttemplate.Must(texttemplate.New("password_reset_text").Parse(passwordResetText))
	welcomeHTMLTmpl       = template.Must(template.New("welcome_html").Parse(welcomeHTML))
	welcomeTextTmpl       = texttemplate.Must(texttemplate.New("welcome_text").Parse(welcomeText))
)

func renderHTML(tmpl *template.Template, context any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderText(tmpl *texttemplate.Template, context any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, context); err != nil {
		return "", err
	}
	return buf.String(), nil
}
