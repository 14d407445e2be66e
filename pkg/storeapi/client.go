// Package storeapi is the HTTP client for the remote store service that serves the product
// catalog and accepts orders.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/order"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 4096
	unreachableMessage         = "store service unavailable"
	invalidPayloadMessage      = "store service returned an invalid response"
)

var errBaseURLRequired = errors.New("store api base url is required")

// Client calls the remote store API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
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

// WithTimeout bounds every request made by the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient builds a client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	client := &Client{
		baseURL:    trimmed,
		timeout:    defaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type catalogResponse struct {
	Total int               `json:"total"`
	Items []catalog.Product `json:"items"`
}

type orderRequest struct {
	Payment enums.PaymentMethod `json:"payment"`
	Address string              `json:"address"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone"`
	Items   []string            `json:"items"`
	Total   json.Number         `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// FetchCatalog loads the full product list.
func (c *Client) FetchCatalog(ctx context.Context) ([]catalog.Product, error) {
	var payload catalogResponse
	if err := c.do(ctx, http.MethodGet, "/product", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Items == nil {
		return []catalog.Product{}, nil
	}
	return payload.Items, nil
}

// SubmitOrder posts the order and returns the confirmation.
func (c *Client) SubmitOrder(ctx context.Context, o order.Order) (order.Result, error) {
	items := o.Items
	if items == nil {
		items = []string{}
	}
	body := orderRequest{
		Payment: o.Payment,
		Address: o.Address,
		Email:   o.Email,
		Phone:   o.Phone,
		Items:   items,
		Total:   json.Number(o.Total.String()),
	}
	var result order.Result
	if err := c.do(ctx, http.MethodPost, "/order", body, &result); err != nil {
		return order.Result{}, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "store api client not configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal store api request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build store api request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, unreachableMessage)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, invalidPayloadMessage)
	}
	return nil
}

// statusError prefers the service's own error text and falls back to the status text.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	message := ""
	var body errorResponse
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		message = strings.TrimSpace(body.Error)
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	if message == "" {
		message = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d", resp.StatusCode), message).
		WithDetails(map[string]any{"status": resp.StatusCode})
}
