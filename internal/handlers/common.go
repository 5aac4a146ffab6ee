package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Rajini967/CRM/internal/db"
	"github.com/Rajini967/CRM/internal/logger"
	"github.com/Rajini967/CRM/internal/mailer"
	"github.com/Rajini967/CRM/internal/secrets"
)

// Store is the slice of the database layer the email handlers consume.
// *db.Queries satisfies it; tests substitute a mock.
type Store interface {
	GetEmailAccount(ctx context.Context, id uuid.UUID) (db.EmailAccount, error)
	ListEmailAccounts(ctx context.Context) ([]db.EmailAccount, error)
	GetEmailTemplate(ctx context.Context, id uuid.UUID) (db.EmailTemplate, error)
	ListEmailTemplates(ctx context.Context) ([]db.EmailTemplate, error)
	CreateEmailLog(ctx context.Context, arg db.CreateEmailLogParams) (db.EmailLog, error)
	ListRecentEmailLogs(ctx context.Context, limit int32) ([]db.EmailLog, error)
}

// TransportFactory builds a mail transport for a stored email account,
// decrypting its credentials on the way. Injected so handler tests can
// substitute a fake transport.
type TransportFactory func(account db.EmailAccount, decrypt secrets.Decryptor) (mailer.Transport, error)

// CommonServices holds common dependencies used across handlers
type CommonServices struct {
	db         Store
	decrypt    secrets.Decryptor
	transports TransportFactory
	pacer      mailer.Pacer
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(store Store, decrypt secrets.Decryptor, transports TransportFactory, pacer mailer.Pacer) *CommonServices {
	return &CommonServices{
		db:         store,
		decrypt:    decrypt,
		transports: transports,
		pacer:      pacer,
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// sendError is a helper function that combines logging and error response
// It logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// sendInternalError sends a generic 500 carrying the underlying cause as details
func sendInternalError(c *gin.Context, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	details := ""
	if err != nil {
		details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message, Details: details})
}

// handleDBError is a helper function that handles database errors and returns appropriate HTTP status codes
func handleDBError(c *gin.Context, err error, notFoundMsg string) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}
