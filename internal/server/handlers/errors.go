package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/service/dashboard"
	"github.com/mamadbah2/palmoil/internal/service/derivation"
	"github.com/mamadbah2/palmoil/internal/service/session"
	"github.com/mamadbah2/palmoil/pkg/clients/backend"
)

// LoginPath is where the client is sent when the session is gone.
const LoginPath = "/login"

const genericError = "Something went wrong while contacting the server. Please try again."

// respondError maps service and backend failures onto HTTP statuses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *models.ValidationError
	var apiErr *backend.Error

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request", "fields": verr.Fields})
	case errors.Is(err, derivation.ErrInsufficientStock), errors.Is(err, derivation.ErrContainerEmpty):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, dashboard.ErrAlreadyMilled), errors.Is(err, dashboard.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNotAuthenticated):
		unauthorized(c, "Authentication required")
	case errors.As(err, &apiErr):
		respondBackendError(c, logger, apiErr)
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericError})
	}
}

func respondBackendError(c *gin.Context, logger *zap.Logger, apiErr *backend.Error) {
	switch apiErr.Kind {
	case backend.KindValidation:
		status := apiErr.StatusCode
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		body := gin.H{"error": apiErr.UserMessage()}
		if len(apiErr.Fields) > 0 {
			body["fields"] = apiErr.Fields
		}
		c.JSON(status, body)
	case backend.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": apiErr.UserMessage()})
	case backend.KindUnauthenticated:
		unauthorized(c, apiErr.UserMessage())
	default:
		logger.Error("backend request failed",
			zap.String("kind", string(apiErr.Kind)),
			zap.Int("status", apiErr.StatusCode),
			zap.Error(apiErr))
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.UserMessage()})
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message, "login": LoginPath})
}
