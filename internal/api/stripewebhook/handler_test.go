package stripewebhooks

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"footprint-app/config"
	"footprint-app/database"
	"footprint-app/internal/domain/users"
	"footprint-app/internal/identity"
	"footprint-app/internal/infra/events"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "whsec_test"

func setup(t *testing.T) (*gin.Engine, *gorm.DB, *events.Recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.STRIPE_WEBHOOK_SECRET = testSecret

	db := database.OpenTestDB(t)
	rec := events.NewRecorder(16)
	alloc := identity.NewAllocator(db, identity.NewTableCounter(db), database.TestSerialFloor, rec, nil)

	r := gin.New()
	r.POST("/webhook", NewHandler(alloc, rec, nil).StripeWebhook)
	return r, db, rec
}

func sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func checkoutEvent(eventType, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": "evt_test",
  "object": "event",
  "api_version": "2020-08-27",
  "type": %q,
  "data": {"object": {
    "id": "cs_test_1",
    "object": "checkout.session",
    "payment_status": %q,
    "customer_email": "buyer@x.com",
    "metadata": {"draft_slug": "fp-draft-1", "claim_email": "buyer@x.com"}
  }}
}`, eventType, paymentStatus))
}

func post(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutCompleted_ClaimsPage(t *testing.T) {
	r, db, rec := setup(t)
	payload := checkoutEvent("checkout.session.completed", "paid")

	w := post(r, payload, sign(payload, testSecret))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "received")

	var user users.User
	require.NoError(t, db.Where("email = ?", "buyer@x.com").First(&user).Error)
	assert.Equal(t, int64(1002), user.Serial)
	assert.Equal(t, users.ProviderStripe, user.AuthProvider)

	got := rec.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, events.TypeIdentityAllocated, got[0].Type)
	assert.Equal(t, events.TypePageClaimed, got[1].Type)
	assert.Equal(t, "fp-draft-1", got[1].DraftSlug)
	assert.Equal(t, int64(1002), got[1].Serial)
	assert.NotEmpty(t, got[1].Slug)

	// Stripe retries deliver the same event again
	w = post(r, payload, sign(payload, testSecret))
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	db.Model(&users.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCheckoutCompleted_UnpaidWaits(t *testing.T) {
	r, db, rec := setup(t)
	payload := checkoutEvent("checkout.session.completed", "unpaid")

	w := post(r, payload, sign(payload, testSecret))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pending")

	var count int64
	db.Model(&users.User{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, rec.Drain())

	payload = checkoutEvent("checkout.session.async_payment_succeeded", "paid")
	w = post(r, payload, sign(payload, testSecret))
	require.Equal(t, http.StatusOK, w.Code)
	db.Model(&users.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	r, _, _ := setup(t)
	payload := checkoutEvent("checkout.session.completed", "paid")

	w := post(r, payload, sign(payload, "whsec_other"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_IgnoresOtherEvents(t *testing.T) {
	r, _, _ := setup(t)
	payload := []byte(`{"id":"evt_2","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice"}}}`)

	w := post(r, payload, sign(payload, testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}
