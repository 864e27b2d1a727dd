package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/splitcpg/splitcpg-backend/internal/pkg/httpx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
)

const defaultBaseURL = "https://api.stripe.com/v1"

// Account is the subset of a connected account the backend cares about:
// whether the organizer can actually receive funds.
type Account struct {
	ID             string `json:"id"`
	ChargesEnabled bool   `json:"charges_enabled"`
	PayoutsEnabled bool   `json:"payouts_enabled"`
}

type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

type PaymentIntent struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

type CheckoutSessionInput struct {
	AmountMinor         int64
	Currency            string
	ProductName         string
	ProductDescription  string
	ApplicationFeeMinor int64
	DestinationAccount  string
	SuccessURL          string
	CancelURL           string
	Metadata            map[string]string
}

// Client is the payment-processor surface consumed by the settlement layer.
// Payment truth only ever comes back through GetCheckoutSession /
// GetPaymentIntent or a signature-verified webhook event.
type Client interface {
	CreateAccount(ctx context.Context, email, businessName string) (Account, error)
	GetAccount(ctx context.Context, accountID string) (Account, error)
	CreateAccountLink(ctx context.Context, accountID, returnURL, refreshURL string) (string, error)
	CreateLoginLink(ctx context.Context, accountID string) (string, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error)
	GetPaymentIntent(ctx context.Context, intentID string) (PaymentIntent, error)
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	key := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	if key == "" {
		return nil, fmt.Errorf("missing STRIPE_SECRET_KEY")
	}
	base := strings.TrimSpace(os.Getenv("STRIPE_API_BASE"))
	if base == "" {
		base = defaultBaseURL
	}
	return &client{
		log:        log.With("client", "StripeClient"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(base, "/"),
		secretKey:  key,
	}, nil
}

// APIError carries the processor's HTTP status so callers can distinguish
// rejections from transport failures.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: %s (%s, http %d)", e.Message, e.Type, e.Status)
}

func (e *APIError) HTTPStatusCode() int { return e.Status }

var _ httpx.HTTPStatusCoder = (*APIError)(nil)

func (c *client) CreateAccount(ctx context.Context, email, businessName string) (Account, error) {
	form := url.Values{}
	form.Set("type", "express")
	form.Set("email", email)
	if strings.TrimSpace(businessName) != "" {
		form.Set("business_profile[name]", businessName)
	}
	form.Set("capabilities[card_payments][requested]", "true")
	form.Set("capabilities[transfers][requested]", "true")

	var out Account
	if err := c.post(ctx, "/accounts", form, &out); err != nil {
		return Account{}, err
	}
	return out, nil
}

func (c *client) GetAccount(ctx context.Context, accountID string) (Account, error) {
	var out Account
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID), &out); err != nil {
		return Account{}, err
	}
	return out, nil
}

func (c *client) CreateAccountLink(ctx context.Context, accountID, returnURL, refreshURL string) (string, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("return_url", returnURL)
	form.Set("refresh_url", refreshURL)
	form.Set("type", "account_onboarding")

	var out struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/account_links", form, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *client) CreateLoginLink(ctx context.Context, accountID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := "/accounts/" + url.PathEscape(accountID) + "/login_links"
	if err := c.post(ctx, path, url.Values{}, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *client) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (CheckoutSession, error) {
	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = "usd"
	}
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][product_data][name]", in.ProductName)
	if strings.TrimSpace(in.ProductDescription) != "" {
		form.Set("line_items[0][price_data][product_data][description]", in.ProductDescription)
	}
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(in.AmountMinor, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("payment_intent_data[application_fee_amount]", strconv.FormatInt(in.ApplicationFeeMinor, 10))
	form.Set("payment_intent_data[transfer_data][destination]", in.DestinationAccount)
	form.Set("success_url", in.SuccessURL)
	form.Set("cancel_url", in.CancelURL)
	for k, v := range in.Metadata {
		form.Set("metadata["+k+"]", v)
		form.Set("payment_intent_data[metadata]["+k+"]", v)
	}

	var out CheckoutSession
	if err := c.post(ctx, "/checkout/sessions", form, &out); err != nil {
		return CheckoutSession{}, err
	}
	return out, nil
}

func (c *client) GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error) {
	var out CheckoutSession
	if err := c.get(ctx, "/checkout/sessions/"+url.PathEscape(sessionID), &out); err != nil {
		return CheckoutSession{}, err
	}
	return out, nil
}

func (c *client) GetPaymentIntent(ctx context.Context, intentID string) (PaymentIntent, error) {
	var out PaymentIntent
	if err := c.get(ctx, "/payment_intents/"+url.PathEscape(intentID), &out); err != nil {
		return PaymentIntent{}, err
	}
	return out, nil
}

func (c *client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var envelope struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil && envelope.Error.Message != "" {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
		}
		c.log.Warn("stripe request failed", "path", req.URL.Path, "status", resp.StatusCode, "error", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
