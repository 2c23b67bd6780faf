package models

// Storage is a CPO container filled by exactly one milling batch.
type Storage struct {
	ID               int64   `json:"id"`
	ContainerID      string  `json:"container_id"`
	MillingID        int64   `json:"milling_id"`
	Quantity         float64 `json:"quantity"` // kg
	StorageDate      Date    `json:"storage_date"`
	MaxShelfLifeDays int     `json:"max_shelf_life_days"`
	PlantationSource string  `json:"plantation_source"`
	TotalSold        float64 `json:"total_sold"` // kg
	CreatedAt        string  `json:"created_at,omitempty"`

	// Computed by the backend; nil when the payload omitted them.
	QuantityLiters          *float64 `json:"quantity_liters,omitempty"`
	RemainingQuantity       *float64 `json:"remaining_quantity,omitempty"`
	RemainingQuantityLiters *float64 `json:"remaining_quantity_liters,omitempty"`
	ExpiryDate              *Date    `json:"expiry_date,omitempty"`
	DaysUntilExpiry         *int     `json:"days_until_expiry,omitempty"`
	IsNearExpiry            *bool    `json:"is_near_expiry,omitempty"`
	IsExpired               *bool    `json:"is_expired,omitempty"`
	IsSold                  *bool    `json:"is_sold,omitempty"`
}
