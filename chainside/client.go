package chainside

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	liveBaseURL    = "https://api.webpos.chainside.net"
	sandboxBaseURL = "https://api.sandbox.webpos.chainside.net"

	liveCheckoutURL    = "https://checkout.chainside.net/%s"
	sandboxCheckoutURL = "https://sandbox.checkout.chainside.net/%s"

	apiVersion     = "v1"
	requestTimeout = 30 * time.Second
)

// Processor is the subset of the Chainside webPOS API the gateway uses.
type Processor interface {
	// AccessToken exchanges the configured client credentials for a
	// short-lived bearer token. Tokens are not cached; each payment
	// initiation fetches a fresh one.
	AccessToken(ctx context.Context) (string, error)

	// CreatePaymentOrder creates a payment order and returns the decoded
	// response. Business errors arrive in the response body as a message,
	// not as an HTTP error.
	CreatePaymentOrder(ctx context.Context, accessToken string, order PaymentOrderRequest) (*PaymentOrderResponse, error)

	// TransactionURL returns the hosted checkout page for a payment order uuid.
	TransactionURL(paymentUUID string) string
}

// Client implements Processor against the live or sandbox webPOS API.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	checkoutURL  string
	httpClient   *http.Client
}

// NewClient creates a Chainside API client. The sandbox flag selects the
// sandbox API base and checkout URL template.
func NewClient(clientID, clientSecret string, sandbox bool) *Client {
	baseURL := liveBaseURL
	checkoutURL := liveCheckoutURL
	if sandbox {
		baseURL = sandboxBaseURL
		checkoutURL = sandboxCheckoutURL
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		checkoutURL:  checkoutURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// ---- wire types ----

type PaymentOrderRequest struct {
	Amount                string `json:"amount"` // fiat total, fixed two decimals
	CancelURL             string `json:"cancel_url"`
	CallbackURL           string `json:"callback_url"`
	ContinueURL           string `json:"continue_url"`
	Details               string `json:"details"`
	Reference             string `json:"reference"`
	RequiredConfirmations int    `json:"required_confirmations"`
}

type PaymentOrderResponse struct {
	RedirectURL string `json:"redirect_url"`
	Message     string `json:"message"`
	UUID        string `json:"uuid"`
}

type tokenRequest struct {
	GrantType string `json:"grant_type"`
	Scope     string `json:"scope"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ---- Processor implementation ----

func (c *Client) AccessToken(ctx context.Context) (string, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))

	var resp tokenResponse
	err := c.doRequest(ctx, "/token", "Basic "+basic, tokenRequest{
		GrantType: "client_credentials",
		Scope:     "*",
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("chainside token exchange: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("chainside token exchange: response missing access_token")
	}
	return resp.AccessToken, nil
}

func (c *Client) CreatePaymentOrder(ctx context.Context, accessToken string, order PaymentOrderRequest) (*PaymentOrderResponse, error) {
	var resp PaymentOrderResponse
	if err := c.doRequest(ctx, "/payment-order", "Bearer "+accessToken, order, &resp); err != nil {
		return nil, fmt.Errorf("chainside create payment order: %w", err)
	}
	return &resp, nil
}

func (c *Client) TransactionURL(paymentUUID string) string {
	return fmt.Sprintf(c.checkoutURL, paymentUUID)
}

// ---- HTTP helper ----

// doRequest POSTs a JSON body and decodes the JSON response. The webPOS
// reports business failures inside the response body, so non-2xx responses
// are decoded rather than turned into errors.
func (c *Client) doRequest(ctx context.Context, path, authorization string, body interface{}, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
