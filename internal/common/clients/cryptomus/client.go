package cryptomus

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leonid6372/cars-bot/pkg/errs"
)

const (
	createInvoicePath = "/v1/payment"
	invoiceInfoPath   = "/v1/payment/info"
)

type Client struct {
	baseURL    string
	merchantID string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, merchantID, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		merchantID: merchantID,
		apiKey:     apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateInvoice creates a payment invoice. OrderID must be unique per merchant.
func (c *Client) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error) {
	return c.do(ctx, createInvoicePath, req)
}

// InvoiceInfo returns the current state of the invoice created with orderID.
func (c *Client) InvoiceInfo(ctx context.Context, orderID string) (*Invoice, error) {
	return c.do(ctx, invoiceInfoPath, &invoiceInfoRequest{OrderID: orderID})
}

// Sign returns md5(base64(body) + apiKey) as a hex string.
func Sign(body []byte, apiKey string) string {
	sum := md5.Sum([]byte(base64.StdEncoding.EncodeToString(body) + apiKey))
	return hex.EncodeToString(sum[:])
}

func (c *Client) do(ctx context.Context, path string, payload any) (*Invoice, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.NewStack(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errs.NewStack(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("merchant", c.merchantID)
	req.Header.Set("sign", Sign(body, c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.NewStack(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewStack(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return nil, errs.NewStack(fmt.Errorf("api error: %s (status: %d)", string(respBody), resp.StatusCode))
	}

	var res response
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, errs.NewStack(fmt.Errorf("failed to unmarshal response: %w", err))
	}

	if res.State != 0 || res.Result == nil {
		return nil, errs.NewStack(fmt.Errorf("api error: state %d: %s", res.State, res.Message))
	}

	return res.Result, nil
}
