package models

import (
	"encoding/json"
	"time"
)

// FinancialMode selects how a crop's financial snapshot is computed.
type FinancialMode int

const (
	// ModeActivityOnly is used while the crop has no harvest yet: costs
	// accumulate from finalized activities, yields and revenue report zero.
	ModeActivityOnly FinancialMode = iota
	// ModeDynamic is used once at least one harvest exists: revenue and
	// yields come from harvest and sale records.
	ModeDynamic
)

func (m FinancialMode) String() string {
	switch m {
	case ModeActivityOnly:
		return "ActivityOnly"
	case ModeDynamic:
		return "Dynamic"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the mode by name; clients consume the string form.
func (m FinancialMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// FinancialSnapshot is a derived view of a crop's finances as of a given
// date. It is recomputed on every request and never persisted as a source
// of truth.
type FinancialSnapshot struct {
	CropID            string        `json:"cropId"`
	Mode              FinancialMode `json:"mode"`
	ProductionCost    float64       `json:"productionCost"`
	Revenue           float64       `json:"revenue"`
	Profit            float64       `json:"profit"`
	Margin            float64       `json:"margin"`
	QuantityHarvested float64       `json:"quantityHarvested"`
	QuantitySold      float64       `json:"quantitySold"`
	AsOf              time.Time     `json:"asOf"`
}
