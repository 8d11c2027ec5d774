package models

import "time"

// Crop is a planted crop instance in a zone. Perennial crops are never
// eligible for completion; transitory crops become eligible once every open
// harvest is fully sold, though completion always requires an explicit call.
type Crop struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Perennial bool   `bson:"perennial" json:"perennial"`
	Completed bool   `bson:"completed" json:"completed"`
}

// Harvest is a dated yield quantity taken from a crop. Its available quantity
// is derived: Quantity minus the sum of sale draws against it.
type Harvest struct {
	ID       string    `bson:"_id" json:"id"`
	CropID   string    `bson:"cropId" json:"cropId"`
	Date     time.Time `bson:"date" json:"date"`
	Quantity float64   `bson:"quantity" json:"quantity"`
	Closed   bool      `bson:"closed" json:"closed"`
}

// SaleAllocation is one draw of a sale against a specific harvest.
type SaleAllocation struct {
	HarvestID string  `bson:"harvestId" json:"harvestId"`
	Quantity  float64 `bson:"quantity" json:"quantity"`
}

// Sale records quantity sold at a unit price, drawn from one or more
// harvests selected explicitly by the caller.
type Sale struct {
	ID          string           `bson:"_id" json:"id"`
	CropID      string           `bson:"cropId" json:"cropId"`
	Date        time.Time        `bson:"date" json:"date"`
	Quantity    float64          `bson:"quantity" json:"quantity"`
	UnitPrice   float64          `bson:"unitPrice" json:"unitPrice"`
	Allocations []SaleAllocation `bson:"allocations" json:"allocations"`
}
