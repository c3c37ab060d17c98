package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/glowora/payconfirm/pkg/errors"
	"github.com/glowora/payconfirm/pkg/types"
)

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 2048
	paymentIntentsPath         = "/payment-intents"
	checkPathFormat            = "/payments/check/%s"
	cancelPathFormat           = "/appointments/%s/cancel"
)

var errBaseURLRequired = errors.New("gateway base url is required")

// Client talks to the payments backend: intent creation, status checks, and
// best-effort appointment cancellation. It satisfies watch.StatusChecker.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a payments backend client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// CreateIntent asks the backend to open a payment intent and returns the
// handle the confirmation session attaches to.
func (c *Client) CreateIntent(ctx context.Context, req CreateIntentRequest) (types.PaymentIntent, error) {
	var intent types.PaymentIntent
	if err := c.do(ctx, http.MethodPost, paymentIntentsPath, req, &intent); err != nil {
		return types.PaymentIntent{}, err
	}
	if err := intent.Validate(); err != nil {
		return types.PaymentIntent{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend returned unusable intent")
	}
	return intent, nil
}

// CheckStatus reads the current payment status for a payment code.
func (c *Client) CheckStatus(ctx context.Context, paymentCode string) (types.StatusSnapshot, error) {
	code := strings.TrimSpace(paymentCode)
	if code == "" {
		return types.StatusSnapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "payment code is required")
	}
	var snapshot types.StatusSnapshot
	path := fmt.Sprintf(checkPathFormat, url.PathEscape(code))
	if err := c.do(ctx, http.MethodGet, path, nil, &snapshot); err != nil {
		return types.StatusSnapshot{}, err
	}
	if !snapshot.Status.IsValid() {
		return types.StatusSnapshot{}, pkgerrors.New(pkgerrors.CodeDependency, "backend returned unknown status "+snapshot.Status.String())
	}
	return snapshot, nil
}

// CancelAppointment releases the reservation behind an abandoned payment.
// Callers treat failures as log-only.
func (c *Client) CancelAppointment(ctx context.Context, appointmentID string) error {
	id := strings.TrimSpace(appointmentID)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "appointment id is required")
	}
	path := fmt.Sprintf(cancelPathFormat, url.PathEscape(id))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payloadBytes, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		reader = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payments backend unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil
	}

	var envelope dataEnvelope
	envelope.Data = out
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	message := fmt.Sprintf("payments backend returned %d", resp.StatusCode)
	var envelope errorEnvelope
	if err := json.Unmarshal(bodyBytes, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return pkgerrors.New(pkgerrors.CodeStateConflict, message)
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return pkgerrors.New(pkgerrors.CodeValidation, message)
	default:
		return pkgerrors.New(pkgerrors.CodeDependency, message)
	}
}
