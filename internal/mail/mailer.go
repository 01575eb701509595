package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

var confirmationTmpl = template.Must(template.New("confirm").Parse(`
<html>
  <body>
    <p>Hello {{.Username}},</p>
    <p>Please confirm your email address by following the link below:</p>
    <p><a href="{{.Link}}">Confirm email</a></p>
    <p>If you did not sign up, ignore this message.</p>
  </body>
</html>
`))

// SMTPMailer delivers templated messages over SMTP.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

func NewSMTPMailer(host string, port int, username, password, from, baseURL string) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(host, port, username, password),
		from:    from,
		baseURL: baseURL,
	}
}

// SendConfirmation sends the email-confirmation message carrying the
// signed confirmation token as a link.
func (m *SMTPMailer) SendConfirmation(to, username, token string) error {
	link := fmt.Sprintf("%s/api/auth/confirmed_email/%s", m.baseURL, token)

	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, struct {
		Username string
		Link     string
	}{Username: username, Link: link}); err != nil {
		return fmt.Errorf("render confirmation mail: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Email confirmation")
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}
	return nil
}
