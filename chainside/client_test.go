package chainside

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("client-id", "client-secret", false)
	c.baseURL = srv.URL
	return c
}

func TestAccessToken(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/token", r.URL.Path)

		expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))
		assert.Equal(t, expectedAuth, r.Header.Get("Authorization"))
		assert.Equal(t, "v1", r.Header.Get("X-Api-Version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client_credentials", body["grant_type"])
		assert.Equal(t, "*", body["scope"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1"}`))
	})

	token, err := c.AccessToken(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestAccessToken_MissingField(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"bearer"}`))
	})

	_, err := c.AccessToken(context.Background())
	assert.ErrorContains(t, err, "access_token")
}

func TestCreatePaymentOrder(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment-order", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "v1", r.Header.Get("X-Api-Version"))

		var body PaymentOrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "25.00", body.Amount)
		assert.Equal(t, "order-42", body.Reference)
		assert.Equal(t, 3, body.RequiredConfirmations)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"redirect_url":"https://pay.chainside.net/abc","uuid":"pay-1"}`))
	})

	resp, err := c.CreatePaymentOrder(context.Background(), "tok-1", PaymentOrderRequest{
		Amount:                "25.00",
		Reference:             "order-42",
		RequiredConfirmations: 3,
	})
	assert.NoError(t, err)
	assert.Equal(t, "https://pay.chainside.net/abc", resp.RedirectURL)
	assert.Equal(t, "pay-1", resp.UUID)
	assert.Empty(t, resp.Message)
}

// Business failures come back in the body, possibly with a non-2xx status.
// The client must still decode them so the caller can surface the message.
func TestCreatePaymentOrder_DeclinedWithErrorStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"message":"declined"}`))
	})

	resp, err := c.CreatePaymentOrder(context.Background(), "tok-1", PaymentOrderRequest{Amount: "25.00"})
	assert.NoError(t, err)
	assert.Equal(t, "declined", resp.Message)
	assert.Empty(t, resp.RedirectURL)
}

func TestCreatePaymentOrder_MalformedBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	})

	_, err := c.CreatePaymentOrder(context.Background(), "tok-1", PaymentOrderRequest{Amount: "25.00"})
	assert.Error(t, err)
}

func TestTransactionURL(t *testing.T) {
	live := NewClient("id", "secret", false)
	assert.Equal(t, "https://checkout.chainside.net/pay-1", live.TransactionURL("pay-1"))

	sandbox := NewClient("id", "secret", true)
	assert.Equal(t, "https://sandbox.checkout.chainside.net/pay-1", sandbox.TransactionURL("pay-1"))
}

func TestClientDoesNotFollowRedirects(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://elsewhere.example.com", http.StatusFound)
	})

	// The redirect response body is not JSON; the client must surface the
	// decode failure instead of chasing the Location header.
	_, err := c.CreatePaymentOrder(context.Background(), "tok-1", PaymentOrderRequest{Amount: "1.00"})
	assert.Error(t, err)
}
