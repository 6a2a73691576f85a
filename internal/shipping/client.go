// Package shipping wraps the carrier charge-estimate API. The carrier
// response schema is not versioned, so the fee is extracted from an
// ordered list of known field names and the client fails closed when
// none match; the order handler falls back to a flat fee on any error.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	PaymentModeCOD     = "COD"
	PaymentModePrepaid = "Prepaid"
)

var ErrNotConfigured = errors.New("shipping: carrier not configured")

type Client struct {
	baseURL       string
	token         string
	pickupPincode string
	httpClient    *http.Client
}

func NewClient(baseURL, token, pickupPincode string, timeout time.Duration) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		pickupPincode: pickupPincode,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.token != "" && c.pickupPincode != ""
}

func (c *Client) PickupPincode() string {
	if c == nil {
		return ""
	}
	return c.pickupPincode
}

type QuoteRequest struct {
	DeliveryPincode string
	WeightGrams     int
	PaymentMode     string // COD | Prepaid
}

type quotePayload struct {
	PickupPostcode   string `json:"pickup_postcode"`
	DeliveryPostcode string `json:"delivery_postcode"`
	Weight           int    `json:"weight"`
	PaymentMode      string `json:"payment_mode"`
}

// Quote returns the carrier's shipping fee estimate in rupees.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (float64, error) {
	if !c.Configured() {
		return 0, ErrNotConfigured
	}

	payload := quotePayload{
		PickupPostcode:   c.pickupPincode,
		DeliveryPostcode: req.DeliveryPincode,
		Weight:           req.WeightGrams,
		PaymentMode:      req.PaymentMode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/courier/estimate", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("shipping: carrier returned status %d", resp.StatusCode)
	}

	var raw interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return 0, fmt.Errorf("shipping: decode response: %w", err)
	}

	fee, ok := extractFee(raw)
	if !ok {
		return 0, errors.New("shipping: no fee field in carrier response")
	}
	if fee < 0 {
		return 0, fmt.Errorf("shipping: negative fee %v in carrier response", fee)
	}
	return fee, nil
}

// feeFieldCandidates is the ordered list of field names the carrier has
// been observed to use for the same logical value.
var feeFieldCandidates = []string{
	"total_amount",
	"totalAmount",
	"total",
	"rate",
	"freight_charge",
}

// extractFee normalizes the fee from object- or array-wrapped responses,
// unwrapping a "data" envelope when present.
func extractFee(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case []interface{}:
		if len(v) == 0 {
			return 0, false
		}
		return extractFee(v[0])
	case map[string]interface{}:
		for _, field := range feeFieldCandidates {
			if fee, ok := numericValue(v[field]); ok {
				return fee, true
			}
		}
		if inner, ok := v["data"]; ok {
			return extractFee(inner)
		}
		return 0, false
	default:
		return 0, false
	}
}

func numericValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		var parsed float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &parsed); err == nil {
			return parsed, true
		}
		return 0, false
	default:
		return 0, false
	}
}
