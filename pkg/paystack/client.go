package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/pkg/config"
)

// ErrVerificationDisabled is returned when no secret key is configured.
var ErrVerificationDisabled = errors.New("paystack verification disabled")

// Transaction is the subset of the verify payload this service relies on.
type Transaction struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
}

// Successful reports whether the gateway settled the transaction.
func (t Transaction) Successful() bool {
	return strings.EqualFold(t.Status, "success")
}

type verifyResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    Transaction `json:"data"`
}

// Client verifies transactions against the Paystack API.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient constructs a verification client.
func NewClient(cfg config.PaystackConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.paystack.co"
	}
	return &Client{
		baseURL:   base,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
	}
}

// Enabled reports whether server-side verification is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.secretKey != ""
}

// Verify fetches the transaction for reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if !c.Enabled() {
		return nil, ErrVerificationDisabled
	}
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", reference, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}

	var payload verifyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode verify response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !payload.Status {
		c.logger.Warn("paystack verify rejected",
			zap.String("reference", reference),
			zap.Int("status", resp.StatusCode),
			zap.String("message", payload.Message))
		return nil, fmt.Errorf("verify %s: %s", reference, payload.Message)
	}
	return &payload.Data, nil
}
