package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errSecretRequired   = errors.New("stripe webhook secret is required")
	errPriceRequired    = errors.New("stripe price id is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// CheckoutCompletion is the normalized payload of a confirmed payment event.
type CheckoutCompletion struct {
	PaymentCustomerID string
	Email             string
}

// Client wraps Stripe's API client plus the checkout/webhook configuration.
type Client struct {
	environment   string
	signingSecret string
	priceID       string
	successURL    string
	cancelURL     string
}

// NewClient initializes Stripe once with the configured secrets and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, client config.ClientConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	signingSecret := strings.TrimSpace(cfg.WebhookSecret)
	if signingSecret == "" {
		return nil, errSecretRequired
	}

	priceID := strings.TrimSpace(cfg.PriceID)
	if priceID == "" {
		return nil, errPriceRequired
	}

	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		environment:   env,
		signingSecret: signingSecret,
		priceID:       priceID,
		successURL:    client.SuccessURL(),
		cancelURL:     client.CancelURL(),
	}, nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

// CreateCustomer registers a new provider-side customer and returns its id.
func (c *Client) CreateCustomer(ctx context.Context) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeGateway, err, "create stripe customer")
	}
	return cust.ID, nil
}

// CreateCheckoutSession opens a hosted checkout for the fixed price and
// returns its redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID string) (string, error) {
	if strings.TrimSpace(customerID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment customer id is required")
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeGateway, err, "create checkout session")
	}
	return sess.URL, nil
}

// VerifyWebhook checks the provider signature against the raw body and returns
// the decoded event. The payload must be the exact bytes read from the wire;
// re-serializing the body before verification breaks the signature.
func (c *Client) VerifyWebhook(payload []byte, sigHeader string) (*stripe.Event, error) {
	if c == nil || c.signingSecret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeSignature, "webhook secret not configured")
	}
	event, err := webhook.ConstructEvent(payload, sigHeader, c.signingSecret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeSignature, err, "verify webhook signature")
	}
	return &event, nil
}

// CheckoutCompletionFromEvent extracts the customer id and email from a
// completed, paid checkout event. It returns nil for any other event shape:
// unrelated types, unpaid sessions, and payloads missing the customer or email
// are benign non-matches that the caller must still acknowledge.
func CheckoutCompletionFromEvent(event *stripe.Event) *CheckoutCompletion {
	if event == nil || event.Type != stripe.EventTypeCheckoutSessionCompleted || event.Data == nil {
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil
	}
	if sess.Customer == nil || sess.Customer.ID == "" {
		return nil
	}

	email := sess.CustomerEmail
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		email = sess.CustomerDetails.Email
	}
	if email == "" {
		return nil
	}

	return &CheckoutCompletion{
		PaymentCustomerID: sess.Customer.ID,
		Email:             email,
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
