package handler

import (
	"net/http"

	"invoicable/internal/service"
	"invoicable/pkg/pagination"
	"invoicable/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("/api/audit", auth, h.ListAuditLogs)
}

// ListAuditLogs returns the audit trail, newest first
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]service.AuditLogResponse}
// @Failure      500    {object}  response.Response
// @Router       /api/audit [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Page(http.StatusOK, logs, total, params.Page, params.Limit))
}
