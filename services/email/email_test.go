package emailsvc

import (
	"net/mail"
	"strings"
	texttmpl "text/template"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pragya-git-bug/aibackend/core"
	logsvc "github.com/pragya-git-bug/aibackend/services/logger"
)

var testConf = &core.Config{
	AppName:          "Classwork",
	DefaultFromEmail: mail.Address{Name: "Classwork", Address: "noreply@classwork.test"},
	SendgridApiKey:   "SG.test",
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(testConf, logsvc.NewRollbarLoggerMock())
	jane := mail.Address{Name: "Jane Doe", Address: "jane@school.test"}

	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{jane}, Subject: "plain", BodyStr: "hello"},
		&core.EmailMessage{
			To:           []mail.Address{jane},
			Subject:      "templated",
			TextTemplate: texttmpl.Must(texttmpl.New("t").Parse("score: {{.}}")),
			TemplateData: 8,
		},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "lost"},
		&core.EmailMessage{To: []mail.Address{jane}, Subject: "no content"},
	)

	sent := svc.SentMessages()
	if assert.Len(t, sent, 2) {
		assert.Equal(t, "hello", sent[0].TextContent)
		assert.Equal(t, "score: 8", sent[1].TextContent)
	}
}

func TestConsoleService_send(t *testing.T) {
	svc := consoleService{defaultFromEmail: testConf.DefaultFromEmail, subjPrefix: "[Classwork] ", disableOutput: true}
	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "jane@school.test"}},
		Subject:     "Your work was reviewed",
		TextContent: "text",
		HTMLContent: "<p>html</p>",
	}
	assert.NoError(t, svc.send(msg))
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConf, logsvc.NewRollbarLoggerMock()).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Jane Doe", Address: "jane@school.test"}},
		Cc:          []mail.Address{{Address: "teacher@school.test"}},
		Subject:     "Your work was reviewed",
		TextContent: "text",
	})

	assert.Equal(t, "noreply@classwork.test", m.From.Address)
	if assert.Len(t, m.Personalizations, 1) {
		p := m.Personalizations[0]
		assert.Equal(t, "[Classwork] Your work was reviewed", p.Subject)
		assert.Equal(t, "jane@school.test", p.To[0].Address)
		assert.Equal(t, "teacher@school.test", p.CC[0].Address)
	}
	if assert.Len(t, m.Content, 1, "no html part without html content") {
		assert.Equal(t, "text/plain", m.Content[0].Type)
	}
}

func TestJoinAddresses(t *testing.T) {
	got := joinAddresses([]mail.Address{{Address: "a@x.test"}, {Name: "B", Address: "b@x.test"}})
	assert.True(t, strings.Contains(got, "<a@x.test>, "), got)
	assert.True(t, strings.HasSuffix(got, `"B" <b@x.test>`), got)
}
