package stripewebhooks

import (
	"context"
	"errors"
	"time"

	"footprint-app/internal/api/billing"
	"footprint-app/internal/domain/users"
	"footprint-app/internal/identity"
	"footprint-app/internal/infra/events"
	stripestatus "footprint-app/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
)

// handleCheckoutSessionCompleted allocates the identity for the paying email
// and announces the claim. It reports false while payment is still pending.
func (h *Handler) handleCheckoutSessionCompleted(ctx context.Context, session *stripe.CheckoutSession) (bool, error) {
	if !stripestatus.ClaimSettled(string(session.PaymentStatus)) {
		h.log.Info("checkout completed without payment yet",
			zap.String("session", session.ID),
			zap.String("payment_status", string(session.PaymentStatus)))
		return false, nil
	}

	email := claimEmail(session)
	if email == "" {
		return false, errors.New("checkout session has no customer email")
	}

	res, err := h.alloc.Allocate(ctx, email, identity.WithProvider(users.ProviderStripe))
	if err != nil {
		return false, err
	}

	draftSlug := ""
	if session.Metadata != nil {
		draftSlug = session.Metadata[billing.MetaDraftSlug]
	}

	e := events.Event{
		Type:       events.TypePageClaimed,
		UserID:     res.User.ID,
		Email:      res.User.Email,
		Serial:     res.Serial,
		Slug:       res.Page.Slug,
		DraftSlug:  draftSlug,
		OccurredAt: time.Now(),
	}
	if err := h.events.Publish(ctx, e); err != nil {
		h.log.Warn("event publish failed", zap.String("type", e.Type), zap.Error(err))
	}

	h.log.Info("page claimed",
		zap.String("session", session.ID),
		zap.Int64("serial", res.Serial),
		zap.Bool("existed", res.Existed),
		zap.String("draft_slug", draftSlug))
	return true, nil
}

func claimEmail(session *stripe.CheckoutSession) string {
	if session.Metadata != nil && session.Metadata[billing.MetaEmail] != "" {
		return session.Metadata[billing.MetaEmail]
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}
