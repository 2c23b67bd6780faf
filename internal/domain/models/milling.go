package models

// Milling is a milling operation turning one harvest into CPO.
type Milling struct {
	ID            int64   `json:"id"`
	MillingDate   Date    `json:"milling_date"`
	MillLocation  string  `json:"mill_location"`
	HarvestID     int64   `json:"harvest_id"`
	MillingCost   float64 `json:"milling_cost"`   // ₦
	TransportCost float64 `json:"transport_cost"` // ₦
	OilYield      float64 `json:"oil_yield"`      // kg
	CreatedAt     string  `json:"created_at,omitempty"`

	// Computed by the backend; nil when the payload omitted them.
	OilYieldLiters *float64 `json:"oil_yield_liters,omitempty"`
	TotalCost      *float64 `json:"total_cost,omitempty"`
	CostPerKg      *float64 `json:"cost_per_kg,omitempty"`
	CostPerLiter   *float64 `json:"cost_per_liter,omitempty"`
}
