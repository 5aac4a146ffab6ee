package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Rajini967/CRM/internal/db"
)

// EmailTemplateHandler handles email template operations
type EmailTemplateHandler struct {
	common *CommonServices
}

// NewEmailTemplateHandler creates a new EmailTemplateHandler instance
func NewEmailTemplateHandler(common *CommonServices) *EmailTemplateHandler {
	return &EmailTemplateHandler{common: common}
}

// EmailTemplateResponse represents the API response for an email template
type EmailTemplateResponse struct {
	ID          string                       `json:"id"`
	Object      string                       `json:"object"`
	Name        string                       `json:"name"`
	Subject     string                       `json:"subject"`
	BodyHtml    string                       `json:"body_html"`
	BodyText    string                       `json:"body_text,omitempty"`
	Attachments []TemplateAttachmentResponse `json:"attachments,omitempty"`
	CreatedAt   int64                        `json:"created_at"`
	UpdatedAt   int64                        `json:"updated_at"`
}

// TemplateAttachmentResponse describes a stored attachment without its content
type TemplateAttachmentResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
}

// ListEmailTemplates godoc
// @Summary List email templates
// @Description Retrieves all email templates for the compose form selector
// @Tags email-templates
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} ErrorResponse
// @Security Bearer
// @Router /email-templates [get]
func (h *EmailTemplateHandler) ListEmailTemplates(c *gin.Context) {
	templates, err := h.common.db.ListEmailTemplates(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to retrieve email templates", err)
		return
	}

	response := make([]EmailTemplateResponse, len(templates))
	for i, template := range templates {
		response[i] = toEmailTemplateResponse(template)
	}

	sendList(c, response)
}

// GetEmailTemplate godoc
// @Summary Get email template by ID
// @Description Get email template details by template ID
// @Tags email-templates
// @Produce json
// @Param template_id path string true "Template ID"
// @Success 200 {object} EmailTemplateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security Bearer
// @Router /email-templates/{template_id} [get]
func (h *EmailTemplateHandler) GetEmailTemplate(c *gin.Context) {
	templateID := c.Param("template_id")
	parsedUUID, err := uuid.Parse(templateID)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid template ID format", err)
		return
	}

	template, err := h.common.db.GetEmailTemplate(c.Request.Context(), parsedUUID)
	if err != nil {
		handleDBError(c, err, "Email template not found")
		return
	}

	sendSuccess(c, http.StatusOK, toEmailTemplateResponse(template))
}

func toEmailTemplateResponse(t db.EmailTemplate) EmailTemplateResponse {
	resp := EmailTemplateResponse{
		ID:        t.ID.String(),
		Object:    "email_template",
		Name:      t.Name,
		Subject:   t.Subject,
		BodyHtml:  t.BodyHtml,
		CreatedAt: t.CreatedAt.Time.Unix(),
		UpdatedAt: t.UpdatedAt.Time.Unix(),
	}
	if t.BodyText.Valid {
		resp.BodyText = t.BodyText.String
	}
	if len(t.Attachments) > 0 {
		var stored []struct {
			Filename    string `json:"filename"`
			ContentType string `json:"content_type"`
		}
		// Attachment metadata is validated at send time; listing tolerates bad rows.
		if err := json.Unmarshal(t.Attachments, &stored); err == nil {
			for _, s := range stored {
				resp.Attachments = append(resp.Attachments, TemplateAttachmentResponse{
					Filename:    s.Filename,
					ContentType: s.ContentType,
				})
			}
		}
	}
	return resp
}
