package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

// Client wraps the Sendgrid send API.
type Client struct {
	sender sendClient
	from   string
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// NewClient initializes Sendgrid with the configured key and sender address.
func NewClient(ctx context.Context, cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, fmt.Errorf("sendgrid sender address is required")
	}

	if logg != nil {
		logg.Info(ctx, "sendgrid client initialized")
	}

	return &Client{
		sender: sendgrid.NewSendClient(apiKey),
		from:   from,
	}, nil
}

// Send delivers a single email. html falls back to text when empty.
func (c *Client) Send(ctx context.Context, to, subject, text, html string) error {
	if html == "" {
		html = text
	}

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail("", c.from),
		subject,
		sgmail.NewEmail("", to),
		text,
		html,
	)

	resp, err := c.sender.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDelivery, err, "send email")
	}
	if resp.StatusCode >= 400 {
		return pkgerrors.New(pkgerrors.CodeDelivery, fmt.Sprintf("sendgrid responded %d", resp.StatusCode))
	}
	return nil
}
