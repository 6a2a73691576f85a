package handlers

import (
	"math"

	"backend/internal/models"
)

const (
	// defaultItemWeightKg is assumed when a product has no usable weight.
	defaultItemWeightKg = 0.5
	// minChargeableWeightKg is the carrier's minimum billable weight.
	minChargeableWeightKg = 0.5
	// volumetricDivisor converts cm³ to a kg-equivalent billing weight.
	volumetricDivisor = 5000.0
	// gramsHeuristicThreshold: legacy product documents stored weight in
	// grams or kilograms with no unit field. Values above this are read
	// as grams. Documented behavior, do not change the threshold.
	gramsHeuristicThreshold = 20.0
)

// Flat fallback fees used when the carrier quote is unavailable.
const (
	flatShippingFeeStandard = 50.0
	flatShippingFeeExpress  = 100.0
)

// actualItemWeightKg resolves the physical weight of one unit.
// shippingInfo.weightKg wins when present; the legacy weight field goes
// through the grams heuristic; anything non-positive falls back to the
// default, and the result never drops below the carrier minimum.
func actualItemWeightKg(p models.Product) float64 {
	weight := 0.0

	if p.ShippingInfo != nil && p.ShippingInfo.WeightKg > 0 {
		weight = p.ShippingInfo.WeightKg
	} else if p.Weight > 0 {
		weight = p.Weight
		if weight > gramsHeuristicThreshold {
			weight = weight / 1000
		}
	} else {
		weight = defaultItemWeightKg
	}

	if weight <= 0 {
		weight = defaultItemWeightKg
	}
	if weight < minChargeableWeightKg {
		weight = minChargeableWeightKg
	}
	return weight
}

// volumetricWeightKg derives the dimensional billing weight; zero when
// any dimension is missing.
func volumetricWeightKg(d *models.Dimensions) float64 {
	if d == nil || d.Length <= 0 || d.Width <= 0 || d.Height <= 0 {
		return 0
	}
	return d.Length * d.Width * d.Height / volumetricDivisor
}

// effectiveItemWeightKg is the billable weight for a line: the larger of
// actual and volumetric weight, times quantity.
func effectiveItemWeightKg(p models.Product, quantity int) float64 {
	if quantity < 1 {
		quantity = 1
	}
	unit := math.Max(actualItemWeightKg(p), volumetricWeightKg(p.Dimensions))
	return unit * float64(quantity)
}

// chargeableWeightGrams converts a total order weight to the grams value
// sent to the carrier, clamped to the 500 g minimum.
func chargeableWeightGrams(totalKg float64) int {
	if totalKg < minChargeableWeightKg {
		totalKg = minChargeableWeightKg
	}
	return int(math.Round(totalKg * 1000))
}

// flatShippingFee is the fallback fee when no carrier quote is
// available. Quote failure must never block order creation.
func flatShippingFee(shippingMethod string) float64 {
	if shippingMethod == "express" {
		return flatShippingFeeExpress
	}
	return flatShippingFeeStandard
}

// orderTotal applies the pricing invariant: total = subtotal + shipping − discount.
func orderTotal(subtotal, shippingCost, discount float64) float64 {
	total := subtotal + shippingCost - discount
	if total < 0 {
		return 0
	}
	return total
}
