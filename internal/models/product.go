package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dimensions are package dimensions in centimeters, used for the
// volumetric weight calculation.
type Dimensions struct {
	Length float64 `bson:"length" json:"length"`
	Width  float64 `bson:"width" json:"width"`
	Height float64 `bson:"height" json:"height"`
}

// ShippingInfo carries an explicit shipment weight in kilograms. When
// present it overrides the heuristic applied to the legacy Weight field.
type ShippingInfo struct {
	WeightKg float64 `bson:"weightKg" json:"weightKg"`
}

type Product struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	VendorID     *primitive.ObjectID `bson:"vendorId,omitempty" json:"vendorId,omitempty"`
	Name         string              `bson:"name" json:"name"`
	Price        float64             `bson:"price" json:"price"`
	SaleEnabled  bool                `bson:"saleEnabled" json:"saleEnabled"`
	SalePrice    float64             `bson:"salePrice" json:"salePrice"`
	IsOnSale     bool                `bson:"-" json:"isOnSale"`
	Category     StringList          `bson:"category" json:"category"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Brand        string              `bson:"brand,omitempty" json:"brand,omitempty"`
	Stock        int                 `bson:"stock" json:"stock"`
	InStock      bool                `bson:"-" json:"inStock"`
	Colors       StringList          `bson:"colors,omitempty" json:"colors,omitempty"`
	Sizes        StringList          `bson:"sizes,omitempty" json:"sizes,omitempty"`
	Weight       float64             `bson:"weight,omitempty" json:"weight,omitempty"`
	Dimensions   *Dimensions         `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	ShippingInfo *ShippingInfo       `bson:"shippingInfo,omitempty" json:"shippingInfo,omitempty"`
	IsActive     bool                `bson:"isActive" json:"isActive"`
	IsDeleted    bool                `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt    *time.Time          `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}
