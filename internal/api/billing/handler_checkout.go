package billing

import (
	"net/http"
	"strings"

	"footprint-app/config"
	"footprint-app/internal/api/respond"
	"footprint-app/internal/identity"
	"footprint-app/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"go.uber.org/zap"
)

// Metadata keys read back by the webhook.
const (
	MetaDraftSlug = "draft_slug"
	MetaEmail     = "claim_email"
)

// newCheckoutSession is swapped in tests.
var newCheckoutSession = checkoutsession.New

type Handler struct {
	log *zap.Logger
}

func NewHandler(log *zap.Logger) *Handler {
	return &Handler{log: logger.OrNop(log)}
}

// POST /claim/checkout
// Starts a one-off payment that claims a page for email. The draft slug rides
// along in metadata so the claimed page can pick up the draft afterwards.
func (h *Handler) CreateClaimCheckout(c *gin.Context) {
	var body struct {
		Email     string `json:"email" binding:"required"`
		DraftSlug string `json:"draft_slug"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, "Email is required")
		return
	}
	email := identity.NormalizeEmail(body.Email)
	if !strings.Contains(email, "@") {
		respond.BadRequest(c, "Invalid email format")
		return
	}

	if config.STRIPE_SECRET_KEY == "" || config.STRIPE_PRICE_ID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured", "kind": "unavailable"})
		return
	}
	stripe.Key = config.STRIPE_SECRET_KEY

	appURL := strings.TrimRight(config.APP_URL, "/")
	meta := map[string]string{
		MetaEmail:     email,
		MetaDraftSlug: strings.TrimSpace(body.DraftSlug),
	}
	params := &stripe.CheckoutSessionParams{
		SuccessURL:    stripe.String(appURL + "/claimed?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(appURL + "/editor?canceled=1"),
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(config.STRIPE_PRICE_ID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(meta[MetaDraftSlug]),
		Metadata:          meta,
	}

	s, err := newCheckoutSession(params)
	if err != nil {
		h.log.Error("stripe checkout failed", zap.String("email", email), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL, "id": s.ID})
}
