package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"footballshop/internal/models"
)

// Client is an HTTP client for the external shop API: product catalog,
// checkout-start and order lookup. The API owns pricing, stock and
// order settlement; this client only moves data.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config holds shop API connection details.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new shop API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListProducts fetches the catalog, optionally filtered by free-text
// query and category.
func (c *Client) ListProducts(ctx context.Context, q, category string) ([]models.Product, error) {
	params := url.Values{}
	if q != "" {
		params.Set("q", q)
	}
	if category != "" {
		params.Set("category", category)
	}

	endpoint := c.baseURL + "/v1/products"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create products request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("shop API error listing products: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Items []models.Product `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode products response: %w", err)
	}
	return payload.Items, nil
}

// StartCheckout submits a cart snapshot to the checkout-start endpoint
// and returns the gateway's answer. A missing payment_url is not an
// error here; the caller decides the fallback.
func (c *Client) StartCheckout(ctx context.Context, request models.CheckoutRequest) (*models.CheckoutStartResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/start", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to start checkout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("shop API error starting checkout: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out models.CheckoutStartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	return &out, nil
}

// GetOrder fetches the settled order record by its ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	endpoint := fmt.Sprintf("%s/v1/orders/%s", c.baseURL, url.PathEscape(orderID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order %s not found: status %d", orderID, resp.StatusCode)
	}

	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order %s: %w", orderID, err)
	}
	return &order, nil
}
