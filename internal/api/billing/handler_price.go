package billing

import (
	"net/http"

	"footprint-app/config"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
	"go.uber.org/zap"
)

// getPrice is swapped in tests.
var getPrice = price.Get

type ClaimPrice struct {
	PriceID     string  `json:"price_id"`
	ProductName string  `json:"product_name"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

// GET /claim/price
// Shows what claiming a page costs, read live from the configured Stripe price.
func (h *Handler) GetClaimPrice(c *gin.Context) {
	if config.STRIPE_SECRET_KEY == "" || config.STRIPE_PRICE_ID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured", "kind": "unavailable"})
		return
	}
	stripe.Key = config.STRIPE_SECRET_KEY

	params := &stripe.PriceParams{}
	params.AddExpand("product")
	p, err := getPrice(config.STRIPE_PRICE_ID, params)
	if err != nil {
		h.log.Error("stripe price lookup failed", zap.String("price", config.STRIPE_PRICE_ID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch price"})
		return
	}
	if !p.Active || p.Type != stripe.PriceTypeOneTime {
		h.log.Warn("claim price is not an active one-time price", zap.String("price", p.ID))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Claim price is not available", "kind": "unavailable"})
		return
	}

	out := ClaimPrice{
		PriceID:  p.ID,
		Amount:   float64(p.UnitAmount) / 100.0,
		Currency: string(p.Currency),
	}
	if p.Product != nil {
		out.ProductName = p.Product.Name
	}
	c.JSON(http.StatusOK, out)
}
