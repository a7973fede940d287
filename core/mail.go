package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TextTemplate *texttmpl.Template
		HTMLTemplate *htmltmpl.Template
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) renderText() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TextTemplate == nil {
		return nil
	}

	var buff bytes.Buffer
	if err := m.TextTemplate.Execute(&buff, m.TemplateData); err != nil {
		return errors.Wrap(err, "rendering text template")
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML() error {
	if m.HTMLTemplate == nil {
		return nil
	}

	var buff bytes.Buffer
	if err := m.HTMLTemplate.Execute(&buff, m.TemplateData); err != nil {
		return errors.Wrap(err, "rendering html template")
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) Render() error {
	if err := m.renderText(); err != nil {
		return err
	}
	return m.renderHTML()
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
