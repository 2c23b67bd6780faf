package models

import "strings"

// PaymentStatus tracks whether a buyer has paid. The only transition is Pending to Paid.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// IsPending reports whether the status is Pending, case-insensitively.
func (s PaymentStatus) IsPending() bool {
	return strings.EqualFold(string(s), string(PaymentPending))
}

// IsPaid reports whether the status is Paid, case-insensitively.
func (s PaymentStatus) IsPaid() bool {
	return strings.EqualFold(string(s), string(PaymentPaid))
}

// Sale draws CPO from one storage container.
type Sale struct {
	ID            int64         `json:"id"`
	SaleDate      Date          `json:"sale_date"`
	BuyerName     string        `json:"buyer_name"`
	StorageID     int64         `json:"storage_id"`
	QuantitySold  float64       `json:"quantity_sold"` // kg
	PricePerKg    float64       `json:"price_per_kg"`  // ₦
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentDate   *Date         `json:"payment_date"`
	CreatedAt     string        `json:"created_at,omitempty"`

	// Computed by the backend; nil when the payload omitted them.
	QuantitySoldLiters *float64 `json:"quantity_sold_liters,omitempty"`
	TotalRevenue       *float64 `json:"total_revenue,omitempty"`
	IsPaymentPending   *bool    `json:"is_payment_pending,omitempty"`
}
