package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/order"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestFetchCatalogUnwrapsItems(t *testing.T) {
	var capturedURL, capturedMethod string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedMethod = req.Method
		return jsonResponse(http.StatusOK, `{"total":2,"items":[
			{"id":"A","title":"Alpha","category":"soft","price":100,"description":"d","image":"/a.svg"},
			{"id":"B","title":"Beta","category":"other","price":null,"description":"","image":""}
		]}`), nil
	})

	client, err := NewClient("http://store.test/api/", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	products, err := client.FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("fetch catalog: %v", err)
	}
	if capturedMethod != http.MethodGet || capturedURL != "http://store.test/api/product" {
		t.Fatalf("unexpected request %s %s", capturedMethod, capturedURL)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].PriceOrZero().IntPart() != 100 || products[0].Priceless() {
		t.Fatalf("unexpected first product %+v", products[0])
	}
	if !products[1].Priceless() {
		t.Fatalf("expected null price to decode as priceless")
	}
}

func TestSubmitOrderSendsNumericTotal(t *testing.T) {
	var payload map[string]any
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/order" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type %q", got)
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"id":"ord-1","total":100}`), nil
	})

	client, err := NewClient("http://store.test", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.SubmitOrder(context.Background(), order.Order{
		Payment: enums.PaymentMethodCard,
		Address: "Main St 1",
		Email:   "a@b.c",
		Phone:   "+100",
		Items:   []string{"A", "B"},
		Total:   decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("submit order: %v", err)
	}
	if result.ID != "ord-1" || !result.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected result %+v", result)
	}
	if total, ok := payload["total"].(float64); !ok || total != 100 {
		t.Fatalf("expected numeric total 100, got %#v", payload["total"])
	}
	if payload["payment"] != "card" || payload["address"] != "Main St 1" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	items, ok := payload["items"].([]any)
	if !ok || len(items) != 2 || items[0] != "A" {
		t.Fatalf("unexpected items %#v", payload["items"])
	}
}

func TestSubmitOrderUsesServiceErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Out of stock"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.SubmitOrder(context.Background(), order.Order{Total: decimal.Zero})
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %s", typed.Code())
	}
	if typed.Message() != "Out of stock" {
		t.Fatalf("expected service message, got %q", typed.Message())
	}
}

func TestStatusTextFallback(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `<html>down</html>`), nil
	})
	client, err := NewClient("http://store.test", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.FetchCatalog(context.Background())
	if got := pkgerrors.PublicMessage(err, ""); got != "Service Unavailable" {
		t.Fatalf("expected status text, got %q", got)
	}
}

func TestTransportFailureIsDependencyError(t *testing.T) {
	cause := errors.New("connection refused")
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, cause
	})
	client, err := NewClient("http://store.test", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.FetchCatalog(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
