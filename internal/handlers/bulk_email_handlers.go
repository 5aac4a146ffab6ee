package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Rajini967/CRM/internal/db"
	"github.com/Rajini967/CRM/internal/logger"
	"github.com/Rajini967/CRM/internal/mailer"
	"github.com/Rajini967/CRM/internal/spreadsheet"
)

// BulkEmailHandler handles bulk mail-merge operations
type BulkEmailHandler struct {
	common *CommonServices
}

// NewBulkEmailHandler creates a new BulkEmailHandler instance
func NewBulkEmailHandler(common *CommonServices) *BulkEmailHandler {
	return &BulkEmailHandler{common: common}
}

// BulkSendResponse represents the aggregate result of one bulk send request
type BulkSendResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors,omitempty"`
}

// EmailLogResponse represents one recorded send outcome
type EmailLogResponse struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	TemplateID   string `json:"template_id,omitempty"`
	Recipient    string `json:"recipient"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	SentAt       *int64 `json:"sent_at,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

// DownloadTemplate godoc
// @Summary Download the sample recipient spreadsheet
// @Description Returns an XLSX file with the expected recipient columns and two example rows
// @Tags bulk-emails
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} ErrorResponse
// @Security Bearer
// @Router /bulk-emails/template [get]
func (h *BulkEmailHandler) DownloadTemplate(c *gin.Context) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"NAME", "EMAIL", "MOBILE NUMBER"},
		{"John Doe", "john.doe@example.com", "9876543210"},
		{"Jane Smith", "jane.smith@example.com", "9123456780"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			sendInternalError(c, "Failed to build template spreadsheet", err)
			return
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			sendInternalError(c, "Failed to build template spreadsheet", err)
			return
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		sendInternalError(c, "Failed to build template spreadsheet", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="bulk-email-template.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// Send godoc
// @Summary Send a bulk mail-merge batch
// @Description Parses the uploaded spreadsheet and sends one personalized message per row through the selected SMTP account
// @Tags bulk-emails
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Recipient spreadsheet (CSV or XLSX)"
// @Param emailAccountId formData string true "Email account ID"
// @Param subject formData string false "Subject template"
// @Param bodyHtml formData string false "HTML body template"
// @Param bodyText formData string false "Plain-text body template"
// @Param templateId formData string false "Email template ID"
// @Success 200 {object} BulkSendResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security Bearer
// @Router /bulk-emails/send [post]
func (h *BulkEmailHandler) Send(c *gin.Context) {
	accountIDStr := c.PostForm("emailAccountId")
	if accountIDStr == "" {
		sendError(c, http.StatusBadRequest, "Email account is required", nil)
		return
	}
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid email account ID format", err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "Recipient file is required", err)
		return
	}

	account, err := h.common.db.GetEmailAccount(c.Request.Context(), accountID)
	if err != nil {
		handleDBError(c, err, "Email account not found")
		return
	}
	if !account.HasSMTPCapability() {
		sendError(c, http.StatusBadRequest, "Email account does not support SMTP sending", nil)
		return
	}

	subject := c.PostForm("subject")
	bodyHTML := c.PostForm("bodyHtml")
	bodyText := c.PostForm("bodyText")

	// An absent or dangling template id degrades to "no template".
	var templateID pgtype.UUID
	var attachments []mailer.Attachment
	if templateIDStr := c.PostForm("templateId"); templateIDStr != "" {
		parsed, err := uuid.Parse(templateIDStr)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid template ID format", err)
			return
		}
		template, err := h.common.db.GetEmailTemplate(c.Request.Context(), parsed)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			logger.Warn("template not found, sending without template", zap.String("template_id", templateIDStr))
		case err != nil:
			sendError(c, http.StatusInternalServerError, "Failed to load template", err)
			return
		default:
			templateID = pgtype.UUID{Bytes: template.ID, Valid: true}
			if subject == "" {
				subject = template.Subject
			}
			if bodyHTML == "" {
				bodyHTML = template.BodyHtml
			}
			if bodyText == "" && template.BodyText.Valid {
				bodyText = template.BodyText.String
			}
			attachments, err = mailer.PrepareAttachments(template.Attachments)
			if err != nil {
				sendInternalError(c, "Failed to prepare template attachments", err)
				return
			}
		}
	}

	if subject == "" {
		sendError(c, http.StatusBadRequest, "Subject is required", nil)
		return
	}
	if bodyHTML == "" {
		sendError(c, http.StatusBadRequest, "Email body is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendInternalError(c, "Failed to open uploaded file", err)
		return
	}
	defer file.Close()

	sheet, err := spreadsheet.Parse(file, fileHeader.Filename)
	if err != nil {
		var parseErr *spreadsheet.ParseError
		switch {
		case errors.As(err, &parseErr):
			sendError(c, http.StatusBadRequest, parseErr.Error(), err)
		case errors.Is(err, spreadsheet.ErrEmptySheet):
			sendError(c, http.StatusBadRequest, "Spreadsheet contains no data rows", err)
		case errors.Is(err, spreadsheet.ErrMissingEmailColumn):
			sendError(c, http.StatusBadRequest, "Spreadsheet has no email column", err)
		default:
			sendInternalError(c, "Failed to parse spreadsheet", err)
		}
		return
	}

	transport, err := h.common.transports(account, h.common.decrypt)
	if err != nil {
		sendInternalError(c, "Failed to prepare mail transport", err)
		return
	}

	recorder := &emailLogRecorder{
		store:      h.common.db,
		accountID:  account.ID,
		templateID: templateID,
	}
	sender := mailer.NewBatchSender(transport, recorder, h.common.pacer)

	logger.Info("starting bulk send",
		zap.String("account_id", account.ID.String()),
		zap.Int("rows", len(sheet.Rows)),
	)

	// The loop keeps running even if the client goes away mid-batch.
	result := sender.Run(context.WithoutCancel(c.Request.Context()), mailer.BatchInput{
		Sheet:       sheet,
		Subject:     subject,
		BodyHTML:    bodyHTML,
		BodyText:    bodyText,
		Attachments: attachments,
	})

	logger.Info("bulk send finished",
		zap.String("account_id", account.ID.String()),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
		zap.Int("total", result.Total),
	)

	sendSuccess(c, http.StatusOK, BulkSendResponse{
		Success: result.Success,
		Failed:  result.Failed,
		Total:   result.Total,
		Errors:  result.ReportableErrors(),
	})
}

// ListLogs godoc
// @Summary List recent send outcomes
// @Description Returns the most recent per-message outcome records
// @Tags bulk-emails
// @Produce json
// @Param limit query int false "Maximum rows to return (default 50, max 200)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Security Bearer
// @Router /bulk-emails/logs [get]
func (h *BulkEmailHandler) ListLogs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			sendError(c, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		limit = parsed
	}
	if limit > 200 {
		limit = 200
	}

	logs, err := h.common.db.ListRecentEmailLogs(c.Request.Context(), int32(limit))
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to retrieve send logs", err)
		return
	}

	response := make([]EmailLogResponse, len(logs))
	for i, log := range logs {
		response[i] = toEmailLogResponse(log)
	}

	sendList(c, response)
}

// emailLogRecorder persists per-row outcomes to the email_logs table. It is
// bound to one request's account and template.
type emailLogRecorder struct {
	store      Store
	accountID  uuid.UUID
	templateID pgtype.UUID
}

func (r *emailLogRecorder) Record(ctx context.Context, outcome mailer.Outcome) error {
	params := db.CreateEmailLogParams{
		AccountID:  r.accountID,
		TemplateID: r.templateID,
		Recipient:  outcome.Recipient,
		Subject:    outcome.Subject,
		Status:     outcome.Status,
	}
	if outcome.Error != "" {
		params.ErrorMessage = pgtype.Text{String: outcome.Error, Valid: true}
	}
	if !outcome.SentAt.IsZero() {
		params.SentAt = pgtype.Timestamptz{Time: outcome.SentAt, Valid: true}
	}

	_, err := r.store.CreateEmailLog(ctx, params)
	return err
}

func toEmailLogResponse(l db.EmailLog) EmailLogResponse {
	resp := EmailLogResponse{
		ID:        l.ID.String(),
		AccountID: l.AccountID.String(),
		Recipient: l.Recipient,
		Subject:   l.Subject,
		Status:    l.Status,
		CreatedAt: l.CreatedAt.Time.Unix(),
	}
	if l.TemplateID.Valid {
		resp.TemplateID = uuid.UUID(l.TemplateID.Bytes).String()
	}
	if l.ErrorMessage.Valid {
		resp.ErrorMessage = l.ErrorMessage.String
	}
	if l.SentAt.Valid {
		sentAt := l.SentAt.Time.Unix()
		resp.SentAt = &sentAt
	}
	return resp
}
