package backend

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

// Gateway is the typed surface of the production backend.
type Gateway interface {
	ListHarvests(ctx context.Context) ([]models.Harvest, error)
	GetHarvest(ctx context.Context, id int64) (*models.Harvest, error)
	CreateHarvest(ctx context.Context, req models.CreateHarvestRequest) (*models.Harvest, error)

	ListMilling(ctx context.Context) ([]models.Milling, error)
	GetMilling(ctx context.Context, id int64) (*models.Milling, error)
	CreateMilling(ctx context.Context, req models.CreateMillingRequest) (*models.CreateMillingResponse, error)

	ListStorage(ctx context.Context) ([]models.Storage, error)
	ListAvailableStorage(ctx context.Context) (*models.AvailableStorage, error)
	StorageAlerts(ctx context.Context) (*models.StorageAlerts, error)
	GetStorage(ctx context.Context, id int64) (*models.Storage, error)

	ListSales(ctx context.Context) ([]models.Sale, error)
	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	CreateSale(ctx context.Context, req models.CreateSaleRequest) (*models.CreateSaleResponse, error)
	UpdatePayment(ctx context.Context, id int64, req models.UpdatePaymentRequest) (*models.Sale, error)

	DashboardSummary(ctx context.Context) (*models.DashboardSummary, error)
	ProfitTrends(ctx context.Context) ([]models.ProfitTrend, error)
	Alerts(ctx context.Context) (*models.AlertList, error)

	DownloadReport(ctx context.Context, format ReportFormat, reportType string) (*Report, error)

	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
}

var _ Gateway = (*APIClient)(nil)

func (c *APIClient) get(ctx context.Context, path string, result any) error {
	_, err := c.do(ctx, call{method: http.MethodGet, path: path, result: result})
	return err
}

func (c *APIClient) send(ctx context.Context, method, path string, body, result any) error {
	_, err := c.do(ctx, call{method: method, path: path, body: body, result: result})
	return err
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// ListHarvests returns every harvest record.
func (c *APIClient) ListHarvests(ctx context.Context) ([]models.Harvest, error) {
	out := []models.Harvest{}
	if err := c.get(ctx, "/harvests", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetHarvest returns one harvest.
func (c *APIClient) GetHarvest(ctx context.Context, id int64) (*models.Harvest, error) {
	var out models.Harvest
	if err := c.get(ctx, idPath("/harvests", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateHarvest validates and submits a new harvest.
func (c *APIClient) CreateHarvest(ctx context.Context, req models.CreateHarvestRequest) (*models.Harvest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out models.Harvest
	if err := c.send(ctx, http.MethodPost, "/harvests", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMilling returns every milling record.
func (c *APIClient) ListMilling(ctx context.Context) ([]models.Milling, error) {
	out := []models.Milling{}
	if err := c.get(ctx, "/milling", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMilling returns one milling record.
func (c *APIClient) GetMilling(ctx context.Context, id int64) (*models.Milling, error) {
	var out models.Milling
	if err := c.get(ctx, idPath("/milling", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMilling submits a milling record. The backend creates the matching
// storage container in the same call.
func (c *APIClient) CreateMilling(ctx context.Context, req models.CreateMillingRequest) (*models.CreateMillingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out models.CreateMillingResponse
	if err := c.send(ctx, http.MethodPost, "/milling", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListStorage returns every storage container.
func (c *APIClient) ListStorage(ctx context.Context) ([]models.Storage, error) {
	out := []models.Storage{}
	if err := c.get(ctx, "/storage", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAvailableStorage returns containers with stock left.
func (c *APIClient) ListAvailableStorage(ctx context.Context) (*models.AvailableStorage, error) {
	var out models.AvailableStorage
	if err := c.get(ctx, "/storage/available", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StorageAlerts returns near-expiry and expired containers.
func (c *APIClient) StorageAlerts(ctx context.Context) (*models.StorageAlerts, error) {
	var out models.StorageAlerts
	if err := c.get(ctx, "/storage/alerts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStorage returns one container.
func (c *APIClient) GetStorage(ctx context.Context, id int64) (*models.Storage, error) {
	var out models.Storage
	if err := c.get(ctx, idPath("/storage", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSales returns every sale.
func (c *APIClient) ListSales(ctx context.Context) ([]models.Sale, error) {
	out := []models.Sale{}
	if err := c.get(ctx, "/sales", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSale returns one sale.
func (c *APIClient) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	var out models.Sale
	if err := c.get(ctx, idPath("/sales", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSale submits a sale. The backend is authoritative on available stock.
func (c *APIClient) CreateSale(ctx context.Context, req models.CreateSaleRequest) (*models.CreateSaleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out models.CreateSaleResponse
	if err := c.send(ctx, http.MethodPost, "/sales", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePayment marks a sale as paid.
func (c *APIClient) UpdatePayment(ctx context.Context, id int64, req models.UpdatePaymentRequest) (*models.Sale, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out models.Sale
	if err := c.send(ctx, http.MethodPatch, idPath("/sales", id)+"/payment", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DashboardSummary returns the server-computed KPIs.
func (c *APIClient) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	var out models.DashboardSummary
	if err := c.get(ctx, "/dashboard/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfitTrends returns the per-day cost/revenue series.
func (c *APIClient) ProfitTrends(ctx context.Context) ([]models.ProfitTrend, error) {
	out := []models.ProfitTrend{}
	if err := c.get(ctx, "/dashboard/profit-trends", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Alerts returns the aggregated operational alerts.
func (c *APIClient) Alerts(ctx context.Context) (*models.AlertList, error) {
	var out models.AlertList
	if err := c.get(ctx, "/dashboard/alerts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportFormat selects the report file type.
type ReportFormat string

const (
	ReportExcel ReportFormat = "excel"
	ReportPDF   ReportFormat = "pdf"
)

// Valid reports whether the backend serves the format.
func (f ReportFormat) Valid() bool {
	return f == ReportExcel || f == ReportPDF
}

func (f ReportFormat) extension() string {
	if f == ReportPDF {
		return "pdf"
	}
	return "xlsx"
}

// Report is an opaque file produced by the backend.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DownloadReport fetches a generated report. The bytes are passed through untouched.
func (c *APIClient) DownloadReport(ctx context.Context, format ReportFormat, reportType string) (*Report, error) {
	if !format.Valid() {
		return nil, &models.ValidationError{Fields: map[string]string{"format": "must be one of: excel pdf"}}
	}
	if reportType == "" {
		reportType = "all"
	}

	resp, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/reports/" + string(format),
		query:  map[string]string{"type": reportType},
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Filename:    fmt.Sprintf("palm_oil_%s_report.%s", reportType, format.extension()),
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
	}
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		report.Filename = params["filename"]
	}
	return report, nil
}

// Login authenticates without a token and returns the issued pair.
func (c *APIClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out models.LoginResponse
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: req, result: &out, anonymous: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a user account.
func (c *APIClient) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out models.RegisterResponse
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: req, result: &out, anonymous: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout notifies the backend. A 401 is returned as is, without refreshing.
func (c *APIClient) Logout(ctx context.Context) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/logout", body: map[string]any{}, noRetry: true})
	return err
}

// Me returns the user owning the current access token.
func (c *APIClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.get(ctx, "/auth/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
