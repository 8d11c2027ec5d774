package models

// Product is an inventory item that activities consume. Price is the price of
// one purchasable presentation (e.g. one bottle); PresentationCapacity is the
// physical quantity that presentation contains (e.g. liters per bottle).
type Product struct {
	ID                   string  `bson:"_id" json:"id"`
	Name                 string  `bson:"name" json:"name"`
	Unit                 string  `bson:"unit" json:"unit"`
	Price                float64 `bson:"price" json:"price"`
	PresentationCapacity float64 `bson:"presentationCapacity" json:"presentationCapacity"`
	CategoryID           string  `bson:"categoryId" json:"categoryId"`
	// AverageUses is the expected number of uses before a tool is replaced.
	// Zero means unset; only meaningful for non-divisible categories.
	AverageUses int `bson:"averageUses,omitempty" json:"averageUses,omitempty"`
}

// Category classifies products. IsDivisible separates consumables (fractional
// physical quantities, priced per unit) from tools (whole use-counts, priced
// by depreciation per use).
type Category struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	IsDivisible bool   `bson:"isDivisible" json:"isDivisible"`
}

// StockLot is a batch of stock for one product. OnHand is the physical
// quantity in the lot; Surplus is previously reserved-but-unused stock that
// was returned into a reclaimable pool. Availability is always derived from
// these plus the pending reservations, never stored.
type StockLot struct {
	ID        string  `bson:"_id" json:"id"`
	ProductID string  `bson:"productId" json:"productId"`
	OnHand    float64 `bson:"onHand" json:"onHand"`
	Surplus   float64 `bson:"surplus" json:"surplus"`
}

// ProductAvailability pairs a product with its derived available quantity.
type ProductAvailability struct {
	Product           Product `json:"product"`
	AvailableQuantity float64 `json:"availableQuantity"`
}
