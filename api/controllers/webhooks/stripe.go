package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"

	"github.com/gatepasshq/gatepass-backend/api/responses"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (*stripe.Event, error)
}

// StripeWebhook receives payment-provider events. The body must reach the
// verifier as the exact bytes from the wire, so this route is mounted without
// any body-decoding middleware. Signature failure is the only non-2xx path:
// everything after verification is acknowledged so the provider never loops
// redelivering an event we cannot use.
func StripeWebhook(svc StripeWebhookService, verifier stripeVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignature, "stripe signature missing"))
			return
		}

		event, err := verifier.VerifyWebhook(payload, sigHeader)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithEventID(ctx, event.ID)
		}

		if err := svc.HandleEvent(ctx, event); err != nil && logg != nil {
			// The event was authentic; a processing failure is ours to chase,
			// not the provider's to retry.
			logg.Error(ctx, "webhook event processing failed", err)
		}

		responses.WriteSuccess(w, types.WebhookAckResponse{Received: true})
	}
}
