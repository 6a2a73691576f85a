package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return NewClient(url, "test-token", "110001", 2*time.Second)
}

func TestQuoteParsesKnownResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"flat object total_amount", `{"total_amount": 72.5}`, 72.5},
		{"camel case totalAmount", `{"totalAmount": 60}`, 60},
		{"bare total", `{"total": 45}`, 45},
		{"rate field", `{"rate": 81}`, 81},
		{"freight charge", `{"freight_charge": 99}`, 99},
		{"array wrapped", `[{"total_amount": 55}]`, 55},
		{"data envelope", `{"data": {"total": 40}}`, 40},
		{"data envelope array", `{"data": [{"rate": 66}]}`, 66},
		{"string amount", `{"total_amount": "88.25"}`, 88.25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer test-token" {
					t.Errorf("missing carrier token header")
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			fee, err := newTestClient(srv.URL).Quote(context.Background(), QuoteRequest{
				DeliveryPincode: "560001",
				WeightGrams:     500,
				PaymentMode:     PaymentModePrepaid,
			})
			if err != nil {
				t.Fatalf("Quote returned error: %v", err)
			}
			if fee != tc.want {
				t.Fatalf("expected fee %v, got %v", tc.want, fee)
			}
		})
	}
}

func TestQuoteFailsClosedOnUnknownShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"charges": {"base": 10}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Quote(context.Background(), QuoteRequest{
		DeliveryPincode: "560001",
		WeightGrams:     500,
		PaymentMode:     PaymentModeCOD,
	})
	if err == nil {
		t.Fatal("expected error for response with no known fee field")
	}
}

func TestQuoteRejectsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Quote(context.Background(), QuoteRequest{
		DeliveryPincode: "560001",
		WeightGrams:     500,
		PaymentMode:     PaymentModePrepaid,
	})
	if err == nil {
		t.Fatal("expected error for non-2xx carrier response")
	}
}

func TestQuoteRequiresConfiguration(t *testing.T) {
	c := NewClient("", "", "", time.Second)
	if _, err := c.Quote(context.Background(), QuoteRequest{DeliveryPincode: "560001"}); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
