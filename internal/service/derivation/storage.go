package derivation

import (
	"errors"
	"fmt"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/domain/units"
)

var (
	// ErrContainerEmpty indicates every kg of the container has been sold.
	ErrContainerEmpty = errors.New("storage container is empty")
	// ErrInsufficientStock indicates a sale larger than the remaining quantity.
	ErrInsufficientStock = errors.New("insufficient stock in container")
)

// Priority classifies how urgently a container should be sold.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// SellRecommendation pairs a priority with its operator message.
type SellRecommendation struct {
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// Status is the derived state of a storage container on a given day.
type Status struct {
	Remaining       float64     `json:"remaining_quantity"`
	RemainingLiters float64     `json:"remaining_quantity_liters"`
	QuantityLiters  float64     `json:"quantity_liters"`
	ExpiryDate      models.Date `json:"expiry_date"`
	DaysUntilExpiry int         `json:"days_until_expiry"`
	NearExpiry      bool        `json:"is_near_expiry"`
	Expired         bool        `json:"is_expired"`
	Sold            bool        `json:"is_sold"`
}

// Outlook projects the value of the stock left in a container.
type Outlook struct {
	BreakEvenPrice   float64 `json:"break_even_price"`
	MinPrice         float64 `json:"min_price"`
	PotentialRevenue float64 `json:"potential_revenue"`
	ExpectedProfit   float64 `json:"expected_profit"`
}

func shelfLife(s models.Storage) int {
	if s.MaxShelfLifeDays > 0 {
		return s.MaxShelfLifeDays
	}
	return units.DefaultShelfLifeDays
}

// RemainingQuantity is the kg not yet sold.
func RemainingQuantity(s models.Storage) float64 {
	if s.RemainingQuantity != nil {
		return *s.RemainingQuantity
	}
	return s.Quantity - s.TotalSold
}

// ExpiryDate is the storage date plus the shelf life.
func ExpiryDate(s models.Storage) models.Date {
	if s.ExpiryDate != nil && !s.ExpiryDate.IsZero() {
		return *s.ExpiryDate
	}
	return s.StorageDate.AddDays(shelfLife(s))
}

// DaysUntilExpiry counts whole days from today to the expiry date.
func DaysUntilExpiry(s models.Storage, today models.Date) int {
	if s.DaysUntilExpiry != nil {
		return *s.DaysUntilExpiry
	}
	return today.DaysUntil(ExpiryDate(s))
}

// StorageStatus derives the container state. An expired container is never
// reported as near expiry.
func StorageStatus(s models.Storage, today models.Date) Status {
	remaining := RemainingQuantity(s)
	days := DaysUntilExpiry(s, today)

	expired := days <= 0
	if s.IsExpired != nil {
		expired = *s.IsExpired
	}
	near := days > 0 && days <= units.NearExpiryDays
	if s.IsNearExpiry != nil {
		near = *s.IsNearExpiry
	}
	sold := remaining <= 0
	if s.IsSold != nil {
		sold = *s.IsSold
	}

	quantityLiters := units.KgToLiters(s.Quantity)
	if s.QuantityLiters != nil {
		quantityLiters = *s.QuantityLiters
	}
	remainingLiters := units.KgToLiters(remaining)
	if s.RemainingQuantityLiters != nil {
		remainingLiters = *s.RemainingQuantityLiters
	}

	return Status{
		Remaining:       remaining,
		RemainingLiters: remainingLiters,
		QuantityLiters:  quantityLiters,
		ExpiryDate:      ExpiryDate(s),
		DaysUntilExpiry: days,
		NearExpiry:      near && !expired,
		Expired:         expired,
		Sold:            sold,
	}
}

// SellPriority maps days until expiry onto the sell-priority bands. Expired
// stock is URGENT whatever its remaining quantity.
func SellPriority(s models.Storage, today models.Date) SellRecommendation {
	status := StorageStatus(s, today)
	switch {
	case status.Expired:
		return SellRecommendation{Priority: PriorityUrgent, Message: "Expired - cannot sell"}
	case status.DaysUntilExpiry <= units.HighPriorityDays:
		return SellRecommendation{Priority: PriorityHigh, Message: "Sell immediately - expires soon"}
	case status.DaysUntilExpiry <= units.MediumPriorityDays:
		return SellRecommendation{Priority: PriorityMedium, Message: "Sell soon"}
	default:
		return SellRecommendation{Priority: PriorityLow, Message: "Fresh stock"}
	}
}

// AvailableStorage keeps the containers with stock left and totals their remaining kg.
func AvailableStorage(storages []models.Storage, today models.Date) ([]models.Storage, float64) {
	available := make([]models.Storage, 0, len(storages))
	var total float64
	for _, s := range storages {
		status := StorageStatus(s, today)
		if status.Sold || status.Remaining <= 0 {
			continue
		}
		available = append(available, s)
		total += status.Remaining
	}
	return available, total
}

// CheckSaleQuantity is the advisory pre-check run before submitting a sale.
// The backend remains the authority.
func CheckSaleQuantity(s models.Storage, quantity float64) error {
	remaining := RemainingQuantity(s)
	if remaining <= 0 {
		return fmt.Errorf("%w: %s", ErrContainerEmpty, s.ContainerID)
	}
	if quantity > remaining {
		return fmt.Errorf("%w: cannot sell %.2fkg, only %.2fkg available in %s", ErrInsufficientStock, quantity, remaining, s.ContainerID)
	}
	return nil
}

// RemainingStockOutlook projects revenue and profit of selling the remaining
// stock at the minimum recommended price. Production cost is apportioned by
// the share of the batch still in the container.
func RemainingStockOutlook(s models.Storage, m models.Milling, h *models.Harvest) (Outlook, bool) {
	if s.Quantity <= 0 {
		return Outlook{}, false
	}
	perKg, ok := CostPerKg(m, h)
	if !ok {
		return Outlook{}, false
	}
	total, ok := TotalCost(m, h)
	if !ok {
		return Outlook{}, false
	}

	minPrice := perKg * (1 + units.MinProfitMarkup)
	remaining := RemainingQuantity(s)
	revenue := remaining * minPrice
	return Outlook{
		BreakEvenPrice:   perKg,
		MinPrice:         minPrice,
		PotentialRevenue: revenue,
		ExpectedProfit:   revenue - total*(remaining/s.Quantity),
	}, true
}
