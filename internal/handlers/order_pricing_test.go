package handlers

import (
	"testing"

	"backend/internal/models"
)

func TestActualItemWeightGramsHeuristic(t *testing.T) {
	// 500 stored without a unit reads as 500 g = 0.5 kg.
	p := models.Product{Weight: 500}
	if got := actualItemWeightKg(p); got != 0.5 {
		t.Fatalf("expected 0.5 kg for weight=500, got %v", got)
	}

	// 25 reads as 25 g = 0.025 kg, then floors to the 0.5 kg minimum.
	p = models.Product{Weight: 25}
	if got := actualItemWeightKg(p); got != 0.5 {
		t.Fatalf("expected 0.5 kg floor for weight=25, got %v", got)
	}

	// Values at or below the threshold read as kilograms.
	p = models.Product{Weight: 12}
	if got := actualItemWeightKg(p); got != 12 {
		t.Fatalf("expected 12 kg for weight=12, got %v", got)
	}
}

func TestActualItemWeightShippingInfoOverrides(t *testing.T) {
	p := models.Product{
		Weight:       5000, // would read as 5 kg via heuristic
		ShippingInfo: &models.ShippingInfo{WeightKg: 2},
	}
	if got := actualItemWeightKg(p); got != 2 {
		t.Fatalf("expected shippingInfo weight 2 kg, got %v", got)
	}
}

func TestActualItemWeightDefaults(t *testing.T) {
	if got := actualItemWeightKg(models.Product{}); got != 0.5 {
		t.Fatalf("expected 0.5 kg default, got %v", got)
	}
	if got := actualItemWeightKg(models.Product{Weight: -3}); got != 0.5 {
		t.Fatalf("expected 0.5 kg for negative weight, got %v", got)
	}
}

func TestVolumetricWeight(t *testing.T) {
	d := &models.Dimensions{Length: 10, Width: 10, Height: 10}
	if got := volumetricWeightKg(d); got != 0.2 {
		t.Fatalf("expected 0.2 kg volumetric for 10x10x10, got %v", got)
	}

	// Any missing dimension disables the volumetric path.
	if got := volumetricWeightKg(&models.Dimensions{Length: 10, Width: 10}); got != 0 {
		t.Fatalf("expected 0 for incomplete dimensions, got %v", got)
	}
	if got := volumetricWeightKg(nil); got != 0 {
		t.Fatalf("expected 0 for nil dimensions, got %v", got)
	}
}

func TestEffectiveItemWeightTakesMax(t *testing.T) {
	// 500 g actual vs 0.2 kg volumetric: actual wins.
	p := models.Product{
		Weight:     500,
		Dimensions: &models.Dimensions{Length: 10, Width: 10, Height: 10},
	}
	if got := effectiveItemWeightKg(p, 1); got != 0.5 {
		t.Fatalf("expected 0.5 kg effective, got %v", got)
	}

	// Bulky but light: volumetric wins. 40x50x50/5000 = 20 kg.
	p = models.Product{
		Weight:     2,
		Dimensions: &models.Dimensions{Length: 40, Width: 50, Height: 50},
	}
	if got := effectiveItemWeightKg(p, 3); got != 60 {
		t.Fatalf("expected 60 kg for qty 3, got %v", got)
	}
}

func TestChargeableWeightGramsClampsMinimum(t *testing.T) {
	if got := chargeableWeightGrams(0.2); got != 500 {
		t.Fatalf("expected 500 g clamp, got %d", got)
	}
	if got := chargeableWeightGrams(1.25); got != 1250 {
		t.Fatalf("expected 1250 g, got %d", got)
	}
}

func TestFlatShippingFee(t *testing.T) {
	if got := flatShippingFee("standard"); got != 50 {
		t.Fatalf("expected flat 50 for standard, got %v", got)
	}
	if got := flatShippingFee("express"); got != 100 {
		t.Fatalf("expected flat 100 for express, got %v", got)
	}
}

func TestOrderTotalInvariant(t *testing.T) {
	if got := orderTotal(500, 50, 50); got != 500 {
		t.Fatalf("expected total 500, got %v", got)
	}
	if got := orderTotal(10, 0, 50); got != 0 {
		t.Fatalf("expected total floored at 0, got %v", got)
	}
}
