package models

// DashboardSummary holds the headline KPIs.
type DashboardSummary struct {
	TotalFFBHarvested    float64 `json:"total_ffb_harvested" bson:"total_ffb_harvested"`
	TotalOilProduced     float64 `json:"total_oil_produced" bson:"total_oil_produced"`
	TotalMillingCost     float64 `json:"total_milling_cost" bson:"total_milling_cost"`
	TotalRevenue         float64 `json:"total_revenue" bson:"total_revenue"`
	TotalProfit          float64 `json:"total_profit" bson:"total_profit"`
	TotalStorage         float64 `json:"total_storage" bson:"total_storage"`
	PendingPaymentsCount int     `json:"pending_payments_count" bson:"pending_payments_count"`
	TotalPendingAmount   float64 `json:"total_pending_amount" bson:"total_pending_amount"`
	AverageOilYield      float64 `json:"average_oil_yield" bson:"average_oil_yield"`
}

// ProfitTrend aggregates cost and revenue for one calendar day.
type ProfitTrend struct {
	Date    string  `json:"date"`
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// AvailableStorage is the /storage/available envelope.
type AvailableStorage struct {
	Inventory     []Storage `json:"inventory"`
	TotalQuantity float64   `json:"total_quantity"`
}

// CreateMillingResponse carries the milling record and the container the backend filled with it.
type CreateMillingResponse struct {
	Milling Milling `json:"milling"`
	Storage Storage `json:"storage"`
}

// CreateSaleResponse carries the sale and the container state after it.
type CreateSaleResponse struct {
	Sale               Sale    `json:"sale"`
	StorageRemaining   float64 `json:"storage_remaining"`
	ContainerFullySold bool    `json:"container_fully_sold"`
}
