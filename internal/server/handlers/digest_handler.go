package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

const (
	defaultDigestLimit = 7
	maxDigestLimit     = 100
)

// DigestBuilder renders the current operator digest.
type DigestBuilder interface {
	Digest(ctx context.Context) (*models.Digest, error)
}

// DigestArchive lists previously sent digests.
type DigestArchive interface {
	RecentDigests(ctx context.Context, limit int64) ([]models.Digest, error)
}

// DigestHandler previews the digest and lists archived ones.
type DigestHandler struct {
	builder DigestBuilder
	archive DigestArchive
	logger  *zap.Logger
}

// NewDigestHandler constructs the digest HTTP adapter. archive may be nil.
func NewDigestHandler(builder DigestBuilder, archive DigestArchive, logger *zap.Logger) *DigestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DigestHandler{builder: builder, archive: archive, logger: logger}
}

// Preview builds the digest the scheduler would send right now.
func (h *DigestHandler) Preview(c *gin.Context) {
	digest, err := h.builder.Digest(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, digest)
}

// History returns the most recent archived digests, newest first.
func (h *DigestHandler) History(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "digest archive is not configured"})
		return
	}

	limit := defaultDigestLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxDigestLimit)
	}

	digests, err := h.archive.RecentDigests(c.Request.Context(), int64(limit))
	if err != nil {
		h.logger.Error("failed to load digests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load digests"})
		return
	}
	if digests == nil {
		digests = []models.Digest{}
	}
	c.JSON(http.StatusOK, gin.H{"digests": digests, "count": len(digests)})
}
