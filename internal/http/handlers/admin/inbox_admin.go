package admin

import (
	"io"
	"strings"
	"time"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"

	"github.com/gin-gonic/gin"
)

const inboxStreamHeartbeat = 25 * time.Second

// GetInboxMessages 已保存的收件箱消息
func (h *Handler) GetInboxMessages(c *gin.Context) {
	page, pageSize := pageFromQuery(c)

	since, err := parseTimeNullable(strings.TrimSpace(c.Query("since")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	messages, total, err := h.InboxService.List(repository.InboxListFilter{
		Page:     page,
		PageSize: pageSize,
		Sender:   c.Query("sender"),
		Since:    since,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, messages, response.NewPagination(page, pageSize, total))
}

// GetInboxLive 实时列表快照（按到达顺序）
func (h *Handler) GetInboxLive(c *gin.Context) {
	response.Success(c, h.InboxService.Live())
}

// StreamInbox SSE 推送新消息，连接建立时先推送当前快照
func (h *Handler) StreamInbox(c *gin.Context) {
	updates, cancel := h.InboxService.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", h.InboxService.Live())
	c.Writer.Flush()

	heartbeat := time.NewTicker(inboxStreamHeartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case message, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("message", message)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
