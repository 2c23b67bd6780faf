package models

// Ripeness describes the FFB condition at harvest.
type Ripeness string

const (
	RipenessRipe   Ripeness = "ripe"
	RipenessUnripe Ripeness = "unripe"
)

// Harvest is an FFB harvest or purchase record.
type Harvest struct {
	ID             int64    `json:"id"`
	HarvestDate    Date     `json:"harvest_date"`
	Plantation     string   `json:"plantation"`
	NumBunches     int      `json:"num_bunches"`
	WeightPerBunch float64  `json:"weight_per_bunch"` // kg
	Ripeness       Ripeness `json:"ripeness"`
	IsPurchased    bool     `json:"is_purchased"`
	SupplierName   *string  `json:"supplier_name"`
	PurchasePrice  *float64 `json:"purchase_price"` // total, ₦
	CreatedAt      string   `json:"created_at,omitempty"`

	// Computed by the backend; nil when the payload omitted them.
	TotalWeight            *float64 `json:"total_weight,omitempty"`
	ExpectedOilYield       *float64 `json:"expected_oil_yield,omitempty"`
	ExpectedOilYieldLiters *float64 `json:"expected_oil_yield_liters,omitempty"`
	FFBCost                *float64 `json:"ffb_cost,omitempty"`
	CostPerKg              *float64 `json:"cost_per_kg,omitempty"`
	NeedsMillingAlert      *bool    `json:"needs_milling_alert,omitempty"`
}
