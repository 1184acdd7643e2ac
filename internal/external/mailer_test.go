package external

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMailerFallsBackToLog(t *testing.T) {
	m := NewMailer(MailConfig{})
	assert.IsType(t, LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), Email{To: "a@example.com", Subject: "hi"}))

	assert.IsType(t, &SMTPMailer{}, NewMailer(MailConfig{Host: "smtp.example.com", Port: 587}))
}
