package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultAPIURL = "https://api.stripe.com/v1/checkout/sessions"

var (
	// ErrFractionalAmount means the cart total does not land on a whole
	// number of minor units and cannot be charged as-is.
	ErrFractionalAmount = errors.New("amount has fractional minor units")
	// ErrGateway wraps any failure of the provider call. Not locally
	// recoverable; surfaced to the caller as a failed checkout.
	ErrGateway = errors.New("payment gateway error")
)

// Client talks to the checkout-session endpoint of the payment provider.
type Client struct {
	secretKey  string
	apiURL     string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

// NewClientFromEnv builds a client from STRIPE_SECRET_KEY, STRIPE_API_URL
// (optional), PAYMENT_SUCCESS_URL and PAYMENT_CANCEL_URL.
func NewClientFromEnv() (*Client, error) {
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("payment configuration missing: STRIPE_SECRET_KEY")
	}

	apiURL := os.Getenv("STRIPE_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		secretKey:  secretKey,
		apiURL:     apiURL,
		successURL: os.Getenv("PAYMENT_SUCCESS_URL"),
		cancelURL:  os.Getenv("PAYMENT_CANCEL_URL"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// NewClient is the fully explicit constructor, used by tests.
func NewClient(secretKey, apiURL, successURL, cancelURL string) *Client {
	return &Client{
		secretKey:  secretKey,
		apiURL:     apiURL,
		successURL: successURL,
		cancelURL:  cancelURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// MinorUnits converts a major-unit amount to the provider's integer minor
// units (cents). Amounts that do not land exactly on a cent are rejected
// rather than silently rounded.
func MinorUnits(amount float64) (int64, error) {
	cents := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(6)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: %v", ErrFractionalAmount, amount)
	}
	return cents.IntPart(), nil
}

type sessionResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Session is a provider-issued, short-lived payment intent.
type Session struct {
	ID  string
	URL string
}

// CreateSession opens a single-line-item checkout session for the whole
// cart amount and returns the provider redirect target. The idempotency
// key must be stable per order so a retried request cannot mint a second
// session.
func (c *Client) CreateSession(orderRef string, totalPrice float64, currency, description string) (*Session, error) {
	amount, err := MinorUnits(totalPrice)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", orderRef)
	form.Set("line_items[0][price_data][currency]", strings.ToLower(currency))
	form.Set("line_items[0][price_data][product_data][name]", description)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(amount, 10))
	form.Set("line_items[0][quantity]", "1")
	if c.successURL != "" {
		form.Set("success_url", c.successURL)
	}
	if c.cancelURL != "" {
		form.Set("cancel_url", c.cancelURL)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	// keyed on ref AND amount: a retry after the cart changed is a new
	// request, not a replay of the old one
	req.Header.Set("Idempotency-Key", fmt.Sprintf("checkout-%s-%d", orderRef, amount))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %d: %s", ErrGateway, resp.StatusCode, string(body))
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("%w: failed to parse provider response: %v", ErrGateway, err)
	}
	if session.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrGateway, session.Error.Message)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("%w: provider returned empty redirect URL", ErrGateway)
	}

	return &Session{ID: session.ID, URL: session.URL}, nil
}
