package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest indicates a payload failed validation before being sent.
var ErrInvalidRequest = errors.New("invalid request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists the offending fields keyed by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("invalid request: %s", strings.Join(parts, "; "))
}

// Is lets callers match with errors.Is(err, ErrInvalidRequest).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = reason
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// check runs struct tag validation and collects the results into a ValidationError.
func check(payload any) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(payload)
	if err == nil {
		return verr
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add("payload", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.add(fe.Field(), describe(fe))
	}
	return verr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof", "eq":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email"
	default:
		return "failed " + fe.Tag()
	}
}

// CreateHarvestRequest is the POST /harvests payload.
type CreateHarvestRequest struct {
	HarvestDate    Date     `json:"harvest_date"`
	Plantation     string   `json:"plantation" validate:"required,max=50"`
	NumBunches     int      `json:"num_bunches" validate:"gt=0"`
	WeightPerBunch float64  `json:"weight_per_bunch" validate:"gt=0"`
	Ripeness       Ripeness `json:"ripeness" validate:"required,oneof=ripe unripe"`
	IsPurchased    bool     `json:"is_purchased"`
	SupplierName   *string  `json:"supplier_name,omitempty" validate:"omitempty,max=100"`
	PurchasePrice  *float64 `json:"purchase_price,omitempty" validate:"omitempty,gt=0"`
}

// Validate checks required fields and the purchase details of bought FFB.
func (r CreateHarvestRequest) Validate() error {
	verr := check(r)
	if r.HarvestDate.IsZero() {
		verr.add("harvest_date", "is required")
	}
	if r.IsPurchased {
		if r.SupplierName == nil || strings.TrimSpace(*r.SupplierName) == "" {
			verr.add("supplier_name", "is required for purchased FFB")
		}
		switch {
		case r.PurchasePrice == nil:
			verr.add("purchase_price", "is required for purchased FFB")
		case *r.PurchasePrice <= 0:
			verr.add("purchase_price", "must be greater than 0")
		}
	}
	return verr.orNil()
}

// NewOwnHarvest builds a validated request for FFB harvested from an own plantation.
func NewOwnHarvest(date Date, plantation string, bunches int, weightPerBunch float64, ripeness Ripeness) (CreateHarvestRequest, error) {
	req := CreateHarvestRequest{
		HarvestDate:    date,
		Plantation:     strings.TrimSpace(plantation),
		NumBunches:     bunches,
		WeightPerBunch: weightPerBunch,
		Ripeness:       ripeness,
	}
	return req, req.Validate()
}

// NewPurchasedHarvest builds a validated request for FFB bought from a supplier.
func NewPurchasedHarvest(date Date, plantation string, bunches int, weightPerBunch float64, ripeness Ripeness, supplier string, price float64) (CreateHarvestRequest, error) {
	supplier = strings.TrimSpace(supplier)
	req := CreateHarvestRequest{
		HarvestDate:    date,
		Plantation:     strings.TrimSpace(plantation),
		NumBunches:     bunches,
		WeightPerBunch: weightPerBunch,
		Ripeness:       ripeness,
		IsPurchased:    true,
		SupplierName:   &supplier,
		PurchasePrice:  &price,
	}
	return req, req.Validate()
}

// CreateMillingRequest is the POST /milling payload.
type CreateMillingRequest struct {
	MillingDate   Date    `json:"milling_date"`
	MillLocation  string  `json:"mill_location" validate:"required,max=50"`
	HarvestID     int64   `json:"harvest_id" validate:"gt=0"`
	MillingCost   float64 `json:"milling_cost" validate:"gte=0"`
	TransportCost float64 `json:"transport_cost" validate:"gte=0"`
	OilYield      float64 `json:"oil_yield" validate:"gte=0"`
}

// Validate checks required fields. A zero oil yield is accepted.
func (r CreateMillingRequest) Validate() error {
	verr := check(r)
	if r.MillingDate.IsZero() {
		verr.add("milling_date", "is required")
	}
	return verr.orNil()
}

// NewMilling builds a validated milling request.
func NewMilling(date Date, location string, harvestID int64, millingCost, transportCost, oilYield float64) (CreateMillingRequest, error) {
	req := CreateMillingRequest{
		MillingDate:   date,
		MillLocation:  strings.TrimSpace(location),
		HarvestID:     harvestID,
		MillingCost:   millingCost,
		TransportCost: transportCost,
		OilYield:      oilYield,
	}
	return req, req.Validate()
}

// CreateSaleRequest is the POST /sales payload.
type CreateSaleRequest struct {
	SaleDate      Date          `json:"sale_date"`
	BuyerName     string        `json:"buyer_name" validate:"required,max=100"`
	StorageID     int64         `json:"storage_id" validate:"gt=0"`
	QuantitySold  float64       `json:"quantity_sold" validate:"gt=0"`
	PricePerKg    float64       `json:"price_per_kg" validate:"gt=0"`
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required,oneof=Pending Paid"`
	PaymentDate   *Date         `json:"payment_date,omitempty"`
}

// Validate checks required fields.
func (r CreateSaleRequest) Validate() error {
	verr := check(r)
	if r.SaleDate.IsZero() {
		verr.add("sale_date", "is required")
	}
	if r.PaymentDate != nil && r.PaymentDate.IsZero() {
		verr.add("payment_date", "must be a valid date")
	}
	return verr.orNil()
}

// NewSale builds a validated sale request. A paid sale records its payment date.
func NewSale(date Date, buyer string, storageID int64, quantity, pricePerKg float64, status PaymentStatus, paidOn *Date) (CreateSaleRequest, error) {
	req := CreateSaleRequest{
		SaleDate:      date,
		BuyerName:     strings.TrimSpace(buyer),
		StorageID:     storageID,
		QuantitySold:  quantity,
		PricePerKg:    pricePerKg,
		PaymentStatus: status,
		PaymentDate:   paidOn,
	}
	if status == PaymentPaid && req.PaymentDate == nil {
		d := date
		req.PaymentDate = &d
	}
	return req, req.Validate()
}

// UpdatePaymentRequest is the PATCH /sales/{id}/payment payload.
type UpdatePaymentRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required,eq=Paid"`
	PaymentDate   Date          `json:"payment_date"`
}

// Validate allows only the Pending to Paid transition.
func (r UpdatePaymentRequest) Validate() error {
	verr := check(r)
	if r.PaymentDate.IsZero() {
		verr.add("payment_date", "is required")
	}
	return verr.orNil()
}

// NewMarkPaid builds the request that settles a pending sale.
func NewMarkPaid(paidOn Date) UpdatePaymentRequest {
	return UpdatePaymentRequest{PaymentStatus: PaymentPaid, PaymentDate: paidOn}
}

// Validate checks a login payload.
func (r LoginRequest) Validate() error {
	return check(r).orNil()
}

// Validate checks a registration payload.
func (r RegisterRequest) Validate() error {
	return check(r).orNil()
}
