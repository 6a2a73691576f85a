package handlers

import "errors"

// Sale pricing rules shared by the product handlers and order assembly:
// a sale takes effect only when enabled with a positive salePrice below
// the regular price, and order lines always charge the effective price.

var (
	errSalePriceRequired = errors.New("salePrice is required when saleEnabled is true")
	errSalePriceInvalid  = errors.New("salePrice must be greater than 0")
	errSalePriceTooHigh  = errors.New("salePrice must be less than price")
)

type saleUpdateInput struct {
	Price       *float64
	SaleEnabled *bool
	SalePrice   *float64
}

type saleUpdateResult struct {
	Price          float64
	SaleEnabled    bool
	SalePrice      float64
	SetSaleEnabled bool
	SetSalePrice   bool
}

func isProductOnSale(price float64, saleEnabled bool, salePrice float64) bool {
	return saleEnabled && salePrice > 0 && salePrice < price
}

// effectiveProductPrice is the unit price an order line snapshots.
func effectiveProductPrice(price float64, saleEnabled bool, salePrice float64) float64 {
	if isProductOnSale(price, saleEnabled, salePrice) {
		return salePrice
	}
	return price
}

func validateSaleFields(price float64, saleEnabled bool, salePrice float64, salePriceSet bool) error {
	if !saleEnabled {
		return nil
	}
	if !salePriceSet {
		return errSalePriceRequired
	}
	if salePrice <= 0 {
		return errSalePriceInvalid
	}
	if salePrice >= price {
		return errSalePriceTooHigh
	}
	return nil
}

// resolveSaleUpdate merges a partial update onto the stored sale fields
// and validates the combined result. Disabling a sale clears the stored
// salePrice so a later re-enable cannot resurrect a stale value.
func resolveSaleUpdate(existingPrice float64, existingSaleEnabled bool, existingSalePrice float64, input saleUpdateInput) (saleUpdateResult, error) {
	result := saleUpdateResult{
		Price:       existingPrice,
		SaleEnabled: existingSaleEnabled,
		SalePrice:   existingSalePrice,
	}

	if input.Price != nil {
		result.Price = *input.Price
	}

	salePriceSet := existingSalePrice > 0

	if input.SaleEnabled != nil {
		result.SaleEnabled = *input.SaleEnabled
		result.SetSaleEnabled = true
		if !*input.SaleEnabled {
			result.SalePrice = 0
			result.SetSalePrice = true
			salePriceSet = false
		}
	}

	if input.SalePrice != nil {
		result.SalePrice = *input.SalePrice
		result.SetSalePrice = true
		salePriceSet = true
	}

	if err := validateSaleFields(result.Price, result.SaleEnabled, result.SalePrice, salePriceSet); err != nil {
		return saleUpdateResult{}, err
	}

	return result, nil
}
