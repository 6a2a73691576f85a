package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestValidateSaleFieldsMissingSalePrice(t *testing.T) {
	err := validateSaleFields(100, true, 0, false)
	if err == nil {
		t.Fatal("expected validation error when saleEnabled=true and salePrice is missing")
	}
}

func TestValidateSaleFieldsSalePriceGreaterOrEqualPrice(t *testing.T) {
	tests := []float64{100, 120}
	for _, salePrice := range tests {
		err := validateSaleFields(100, true, salePrice, true)
		if err == nil {
			t.Fatalf("expected validation error for salePrice=%v", salePrice)
		}
	}
}

func TestEffectiveProductPriceUsesSalePriceWhenOnSale(t *testing.T) {
	if got := effectiveProductPrice(100, true, 75); got != 75 {
		t.Fatalf("expected sale price 75, got %v", got)
	}
	if got := effectiveProductPrice(100, false, 75); got != 100 {
		t.Fatalf("expected regular price 100 when sale disabled, got %v", got)
	}
}

func TestResolveSaleUpdateDisablingSaleClearsPrice(t *testing.T) {
	disabled := false
	result, err := resolveSaleUpdate(100, true, 80, saleUpdateInput{SaleEnabled: &disabled})
	if err != nil {
		t.Fatalf("resolveSaleUpdate returned error: %v", err)
	}
	if result.SaleEnabled || result.SalePrice != 0 || !result.SetSalePrice {
		t.Fatalf("expected sale cleared, got %+v", result)
	}
}

func TestNormalizeProductDocumentCoercesLegacyFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "Test",
		"price":       100.0,
		"saleEnabled": true,
		"salePrice":   80.0,
		"stock":       int32(5),
		"weight":      int64(500),
		"category":    "Electronics",
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if !product.SaleEnabled || product.SalePrice != 80 {
		t.Fatalf("expected sale fields preserved, got saleEnabled=%v salePrice=%v", product.SaleEnabled, product.SalePrice)
	}
	if !product.IsOnSale {
		t.Fatal("expected IsOnSale to be true")
	}
	if !product.InStock || product.Stock != 5 {
		t.Fatalf("expected stock coerced to 5, got %d", product.Stock)
	}
	if product.Weight != 500 {
		t.Fatalf("expected weight coerced to 500, got %v", product.Weight)
	}
	if len(product.Category) != 1 || product.Category[0] != "Electronics" {
		t.Fatalf("expected string category promoted to list, got %v", product.Category)
	}
}
