package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Rajini967/CRM/internal/db"
	"github.com/Rajini967/CRM/internal/mailer"
)

// EmailAccountHandler handles email account operations
type EmailAccountHandler struct {
	common *CommonServices
}

// NewEmailAccountHandler creates a new EmailAccountHandler instance
func NewEmailAccountHandler(common *CommonServices) *EmailAccountHandler {
	return &EmailAccountHandler{common: common}
}

// EmailAccountResponse represents the API response for an email account.
// Credentials are never serialized.
type EmailAccountResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Name      string `json:"name"`
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Provider  string `json:"provider"`
	SmtpHost  string `json:"smtp_host,omitempty"`
	SmtpPort  int32  `json:"smtp_port,omitempty"`
	CanBulk   bool   `json:"can_bulk_send"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// TestSendRequest represents the request body for a test message
type TestSendRequest struct {
	To string `json:"to" binding:"required"`
}

// ListEmailAccounts godoc
// @Summary List email accounts
// @Description Retrieves all active email accounts for the compose form
// @Tags email-accounts
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Security Bearer
// @Router /email-accounts [get]
func (h *EmailAccountHandler) ListEmailAccounts(c *gin.Context) {
	accounts, err := h.common.db.ListEmailAccounts(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to retrieve email accounts", err)
		return
	}

	response := make([]EmailAccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toEmailAccountResponse(account)
	}

	sendList(c, response)
}

// GetEmailAccount godoc
// @Summary Get email account by ID
// @Description Get email account details by account ID
// @Tags email-accounts
// @Produce json
// @Param account_id path string true "Account ID"
// @Success 200 {object} EmailAccountResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security Bearer
// @Router /email-accounts/{account_id} [get]
func (h *EmailAccountHandler) GetEmailAccount(c *gin.Context) {
	accountID := c.Param("account_id")
	parsedUUID, err := uuid.Parse(accountID)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid account ID format", err)
		return
	}

	account, err := h.common.db.GetEmailAccount(c.Request.Context(), parsedUUID)
	if err != nil {
		handleDBError(c, err, "Email account not found")
		return
	}

	sendSuccess(c, http.StatusOK, toEmailAccountResponse(account))
}

// TestSend godoc
// @Summary Send a test message
// @Description Sends a single test message to the given address through the account's provider
// @Tags email-accounts
// @Accept json
// @Produce json
// @Param account_id path string true "Account ID"
// @Param request body TestSendRequest true "Destination address"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Security Bearer
// @Router /email-accounts/{account_id}/test [post]
func (h *EmailAccountHandler) TestSend(c *gin.Context) {
	accountID := c.Param("account_id")
	parsedUUID, err := uuid.Parse(accountID)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid account ID format", err)
		return
	}

	var req TestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !mailer.IsValidAddress(req.To) {
		sendError(c, http.StatusBadRequest, "Invalid destination address", nil)
		return
	}

	account, err := h.common.db.GetEmailAccount(c.Request.Context(), parsedUUID)
	if err != nil {
		handleDBError(c, err, "Email account not found")
		return
	}

	transport, err := h.common.transports(account, h.common.decrypt)
	if err != nil {
		sendInternalError(c, "Failed to prepare mail transport", err)
		return
	}

	msg := &mailer.Message{
		To:       req.To,
		Subject:  "Test message from " + account.Name,
		HTMLBody: "<p>This is a test message confirming the email account is configured correctly.</p>",
		TextBody: "This is a test message confirming the email account is configured correctly.",
	}
	if err := transport.Send(c.Request.Context(), msg); err != nil {
		sendError(c, http.StatusBadGateway, "Test message delivery failed", err)
		return
	}

	sendSuccess(c, http.StatusOK, SuccessResponse{Message: "Test message sent"})
}

func toEmailAccountResponse(a db.EmailAccount) EmailAccountResponse {
	return EmailAccountResponse{
		ID:        a.ID.String(),
		Object:    "email_account",
		Name:      a.Name,
		FromName:  a.FromName,
		FromEmail: a.FromEmail,
		Provider:  a.Provider,
		SmtpHost:  a.SmtpHost.String,
		SmtpPort:  a.SmtpPort.Int32,
		CanBulk:   a.HasSMTPCapability(),
		Active:    a.Active,
		CreatedAt: a.CreatedAt.Time.Unix(),
		UpdatedAt: a.UpdatedAt.Time.Unix(),
	}
}
