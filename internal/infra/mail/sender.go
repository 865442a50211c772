package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"
)

func NewAlertSender(host string, port int, user, password, to string) *AlertSender {
	return &AlertSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		To:       to,
	}
}

// SendTemplateRejected mails the operator when Meta rejects a submitted
// template.
func (s *AlertSender) SendTemplateRejected(name, language, reason string) error {
	data := RejectionEmailData{
		TemplateName: name,
		Language:     language,
		Reason:       reason,
	}

	tmplPath := filepath.Join("templates", "template_rejected.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("load alert template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("render alert template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.User)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("Template %q (%s) was rejected", name, language))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert mail: %w", err)
	}

	return nil
}
