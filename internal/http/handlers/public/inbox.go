package public

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactRequest 联系表单请求
type ContactRequest struct {
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// SubmitContact 联系表单投递到后台收件箱
func (h *Handler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.inbox_invalid", nil)
		return
	}
	message, err := h.InboxService.Receive(c.Request.Context(), service.InboxMessageInput{
		Sender:   req.Email,
		Subject:  req.Subject,
		BodyText: req.Message,
	})
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrInboxMessageInvalid, code: response.CodeBadRequest, key: "error.inbox_invalid"},
		}, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, gin.H{"id": message.ID})
}
