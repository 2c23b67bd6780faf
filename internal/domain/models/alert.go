package models

// AlertType groups alerts by the record family they concern.
type AlertType string

const (
	AlertMilling AlertType = "milling"
	AlertStorage AlertType = "storage"
	AlertStock   AlertType = "stock"
	AlertPayment AlertType = "payment"
)

// Severity ranks alerts, most urgent first.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Rank orders severities; lower is more urgent. Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// Alert is an ephemeral, server-derived notification.
type Alert struct {
	Type         AlertType `json:"type" bson:"type"`
	Severity     Severity  `json:"severity" bson:"severity"`
	Message      string    `json:"message" bson:"message"`
	HarvestID    *int64    `json:"harvest_id,omitempty" bson:"harvest_id,omitempty"`
	StorageID    *int64    `json:"storage_id,omitempty" bson:"storage_id,omitempty"`
	SaleID       *int64    `json:"sale_id,omitempty" bson:"sale_id,omitempty"`
	CurrentStock *float64  `json:"current_stock,omitempty" bson:"current_stock,omitempty"`
}

// AlertList is the /dashboard/alerts envelope.
type AlertList struct {
	Alerts     []Alert `json:"alerts"`
	TotalCount int     `json:"total_count"`
}

// StorageAlerts is the /storage/alerts envelope.
type StorageAlerts struct {
	NearExpiry  []Storage `json:"near_expiry"`
	Expired     []Storage `json:"expired"`
	TotalAlerts int       `json:"total_alerts"`
}
