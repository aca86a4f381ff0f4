package notifications

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
)

// Sender delivers transactional email, either raw or from a named template.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
	SendTemplate(ctx context.Context, to, templateName string, vars map[string]string) error
}

type mailClient interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type service struct {
	mail      mailClient
	templates map[string]config.Template
	validate  *validator.Validate
}

// NewService wires the sender against the mail client and configured templates.
func NewService(mail mailClient, cfg config.MailConfig) (Sender, error) {
	if mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail client required")
	}
	return &service{
		mail:      mail,
		templates: cfg.Templates(),
		validate:  validator.New(),
	}, nil
}

func (s *service) Send(ctx context.Context, to, subject, text, html string) error {
	if err := s.validate.Var(to, "required,email"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient must be a valid email")
	}
	if strings.TrimSpace(subject) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	if strings.TrimSpace(text) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "text body is required")
	}
	return s.mail.Send(ctx, to, subject, text, html)
}

// SendTemplate renders the named template with ${KEY} substitution and sends
// it. Substitution is plain string replacement; callers own making the values
// safe for the template context.
func (s *service) SendTemplate(ctx context.Context, to, templateName string, vars map[string]string) error {
	tpl, ok := s.templates[templateName]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeDelivery, "unknown email template").
			WithDetails(map[string]any{"template": templateName})
	}

	subject := substitute(tpl.Subject, vars)
	text := substitute(tpl.Text, vars)
	html := substitute(tpl.HTML, vars)

	return s.Send(ctx, to, subject, text, html)
}

func substitute(content string, vars map[string]string) string {
	for key, value := range vars {
		content = strings.ReplaceAll(content, "${"+key+"}", value)
	}
	return content
}
