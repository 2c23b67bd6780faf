package handlers

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/service/dashboard"
	"github.com/mamadbah2/palmoil/pkg/clients/backend"
)

// DashboardService is the view and mutation surface behind the API.
type DashboardService interface {
	HarvestView(ctx context.Context) (*dashboard.HarvestView, error)
	MillingView(ctx context.Context) (*dashboard.MillingView, error)
	MillingDetail(ctx context.Context, id int64, pricePerKg float64) (*dashboard.MillingDetail, error)
	StorageView(ctx context.Context) (*dashboard.StorageView, error)
	StorageDetail(ctx context.Context, id int64) (*dashboard.StorageDetail, error)
	SalesView(ctx context.Context) (*dashboard.SalesView, error)
	SaleDetail(ctx context.Context, id int64) (*dashboard.SaleDetail, error)
	Summary(ctx context.Context) (*models.DashboardSummary, error)
	ProfitTrends(ctx context.Context) ([]models.ProfitTrend, error)
	Alerts(ctx context.Context) (*models.AlertList, error)
	RecordHarvest(ctx context.Context, req models.CreateHarvestRequest) (*models.Harvest, error)
	RecordMilling(ctx context.Context, req models.CreateMillingRequest) (*models.CreateMillingResponse, error)
	RecordSale(ctx context.Context, req models.CreateSaleRequest) (*models.CreateSaleResponse, error)
	MarkPaid(ctx context.Context, saleID int64, paidOn models.Date) (*models.Sale, error)
	Report(ctx context.Context, format backend.ReportFormat, reportType string) (*backend.Report, error)
}

var _ DashboardService = (*dashboard.Service)(nil)

// DashboardHandler serves the operator views and forms.
type DashboardHandler struct {
	svc    DashboardService
	logger *zap.Logger
}

// NewDashboardHandler constructs the dashboard HTTP adapter.
func NewDashboardHandler(svc DashboardService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

func (h *DashboardHandler) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *DashboardHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Warn("invalid payload", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func render[T any](h *DashboardHandler, c *gin.Context, status int, fetch func(context.Context) (T, error)) {
	out, err := fetch(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, out)
}

func (h *DashboardHandler) Harvests(c *gin.Context) {
	render(h, c, http.StatusOK, h.svc.HarvestView)
}

func (h *DashboardHandler) Milling(c *gin.Context) {
	render(h, c, http.StatusOK, h.svc.MillingView)
}

// MillingDetail shows one batch; ?price= sets the profitability guide price.
func (h *DashboardHandler) MillingDetail(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}

	price := dashboard.DefaultGuidePrice
	if raw := c.Query("price"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive number"})
			return
		}
		price = parsed
	}

	render(h, c, http.StatusOK, func(ctx context.Context) (*dashboard.MillingDetail, error) {
		return h.svc.MillingDetail(ctx, id, price)
	})
}

func (h *DashboardHandler) Storage(c *gin.Context) {
	render(h, c, http.StatusOK, h.svc.StorageView)
}

func (h *DashboardHandler) StorageDetail(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	render(h, c, http.StatusOK, func(ctx context.Context) (*dashboard.StorageDetail, error) {
		return h.svc.StorageDetail(ctx, id)
	})
}

func (h *DashboardHandler) Sales(c *gin.Context) {
	render(h, c, http.StatusOK, h.svc.SalesView)
}

func (h *DashboardHandler) SaleDetail(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	render(h, c, http.StatusOK, func(ctx context.Context) (*dashboard.SaleDetail, error) {
		return h.svc.SaleDetail(ctx, id)
	})
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	render(h, c, http.StatusOK, h.svc.Summary)
}

func (h *DashboardHandler) Trends(c *gin.Context) {
	render(h, c, http.StatusOK, h.svc.ProfitTrends)
}

func (h *DashboardHandler) Alerts(c *gin.Context) {
	render(h, c, http.StatusOK, h.svc.Alerts)
}

// CreateHarvest records a harvest or FFB purchase.
func (h *DashboardHandler) CreateHarvest(c *gin.Context) {
	var req models.CreateHarvestRequest
	if !h.bind(c, &req) {
		return
	}
	render(h, c, http.StatusCreated, func(ctx context.Context) (*models.Harvest, error) {
		return h.svc.RecordHarvest(ctx, req)
	})
}

// CreateMilling records a milling batch.
func (h *DashboardHandler) CreateMilling(c *gin.Context) {
	var req models.CreateMillingRequest
	if !h.bind(c, &req) {
		return
	}
	render(h, c, http.StatusCreated, func(ctx context.Context) (*models.CreateMillingResponse, error) {
		return h.svc.RecordMilling(ctx, req)
	})
}

// CreateSale records a sale.
func (h *DashboardHandler) CreateSale(c *gin.Context) {
	var req models.CreateSaleRequest
	if !h.bind(c, &req) {
		return
	}
	render(h, c, http.StatusCreated, func(ctx context.Context) (*models.CreateSaleResponse, error) {
		return h.svc.RecordSale(ctx, req)
	})
}

type markPaidRequest struct {
	PaymentDate models.Date `json:"payment_date"`
}

// MarkPaid settles a pending sale. An omitted payment date means today.
func (h *DashboardHandler) MarkPaid(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req markPaidRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	render(h, c, http.StatusOK, func(ctx context.Context) (*models.Sale, error) {
		return h.svc.MarkPaid(ctx, id, req.PaymentDate)
	})
}

// Report streams a generated report file.
func (h *DashboardHandler) Report(c *gin.Context) {
	format := backend.ReportFormat(c.Param("format"))
	if !format.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be excel or pdf"})
		return
	}

	report, err := h.svc.Report(c.Request.Context(), format, c.DefaultQuery("type", "all"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	contentType := report.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.Filename}))
	c.Data(http.StatusOK, contentType, report.Data)
}
