package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
)

type fakeMailClient struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	text    string
	html    string
}

func (f *fakeMailClient) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, text: text, html: html})
	return nil
}

func testMailConfig() config.MailConfig {
	return config.MailConfig{
		AuthTokenSubject: "Your access token",
		AuthTokenText:    "Sign in with your token: ${AUTH_TOKEN}",
		AuthTokenHTML:    "<p>Sign in with your token: <b>${AUTH_TOKEN}</b></p>",
	}
}

func TestNewService_RequiresMailClient(t *testing.T) {
	_, err := NewService(nil, testMailConfig())
	require.Error(t, err)
}

func TestSend_ValidatesRecipient(t *testing.T) {
	mail := &fakeMailClient{}
	sender, err := NewService(mail, testMailConfig())
	require.NoError(t, err)

	err = sender.Send(context.Background(), "not-an-email", "subject", "body", "")
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Empty(t, mail.sent)
}

func TestSend_ValidatesSubjectAndBody(t *testing.T) {
	sender, err := NewService(&fakeMailClient{}, testMailConfig())
	require.NoError(t, err)

	err = sender.Send(context.Background(), "user@example.com", "  ", "body", "")
	require.Error(t, err)

	err = sender.Send(context.Background(), "user@example.com", "subject", "", "")
	require.Error(t, err)
}

func TestSendTemplate_SubstitutesVariables(t *testing.T) {
	mail := &fakeMailClient{}
	sender, err := NewService(mail, testMailConfig())
	require.NoError(t, err)

	err = sender.SendTemplate(context.Background(), "user@example.com", config.TemplateNewAuthToken, map[string]string{
		"AUTH_TOKEN": "tok-123",
	})
	require.NoError(t, err)

	require.Len(t, mail.sent, 1)
	got := mail.sent[0]
	assert.Equal(t, "user@example.com", got.to)
	assert.Equal(t, "Your access token", got.subject)
	assert.Equal(t, "Sign in with your token: tok-123", got.text)
	assert.Equal(t, "<p>Sign in with your token: <b>tok-123</b></p>", got.html)
}

func TestSendTemplate_UnknownTemplate(t *testing.T) {
	mail := &fakeMailClient{}
	sender, err := NewService(mail, testMailConfig())
	require.NoError(t, err)

	err = sender.SendTemplate(context.Background(), "user@example.com", "no-such-template", nil)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDelivery, appErr.Code())
	assert.Empty(t, mail.sent)
}
