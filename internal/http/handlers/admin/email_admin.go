package admin

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SendEmailRequest 手动发送邮件请求（原始邮件或模板邮件）
type SendEmailRequest struct {
	Template string                            `json:"template"`
	Locale   string                            `json:"locale"`
	To       string                            `json:"to"`
	Subject  string                            `json:"subject"`
	HTML     string                            `json:"html"`
	Data     *service.NotificationTemplateData `json:"data"`
}

func (req SendEmailRequest) toNotificationRequest() service.NotificationRequest {
	return service.NotificationRequest{
		Template: strings.TrimSpace(req.Template),
		Locale:   strings.TrimSpace(req.Locale),
		To:       strings.TrimSpace(req.To),
		Subject:  req.Subject,
		HTML:     req.HTML,
		Data:     req.Data,
	}
}

// SMTPTestSendRequest SMTP 测试发送请求
type SMTPTestSendRequest struct {
	ToEmail string `json:"to_email" binding:"required"`
}

// SendEmail 同步发送邮件
func (h *Handler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	notification := req.toNotificationRequest()
	if notification.Locale == "" {
		notification.Locale = i18n.ResolveLocale(c)
	}
	if err := h.NotificationService.Send(c.Request.Context(), notification); err != nil {
		respondEmailError(c, err)
		return
	}
	requestLog(c).Infow("admin_email_sent", "kind", notification.Kind())
	response.Success(c, gin.H{"sent": true})
}

// PreviewEmail 渲染邮件但不发送
func (h *Handler) PreviewEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	notification := req.toNotificationRequest()
	if notification.Locale == "" {
		notification.Locale = i18n.ResolveLocale(c)
	}
	rendered, err := h.NotificationService.Render(notification)
	if err != nil {
		respondEmailError(c, err)
		return
	}
	response.Success(c, rendered)
}

// TestSMTPSettings 发送 SMTP 测试邮件
func (h *Handler) TestSMTPSettings(c *gin.Context) {
	var req SMTPTestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	toEmail := strings.TrimSpace(req.ToEmail)
	if toEmail == "" {
		respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
		return
	}
	if err := h.NotificationService.SendTest(toEmail, i18n.ResolveLocale(c)); err != nil {
		respondEmailError(c, err)
		return
	}
	response.Success(c, gin.H{"sent": true})
}
