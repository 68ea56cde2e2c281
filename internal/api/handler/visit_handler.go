package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chandrujaganath/realestateapp-sub001/internal/dto"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/service"
	"github.com/Chandrujaganath/realestateapp-sub001/pkg/response"
)

// VisitHandler 到访模块 HTTP 处理器
type VisitHandler struct {
	visitSvc service.VisitService
}

// NewVisitHandler 创建 VisitHandler
func NewVisitHandler(visitSvc service.VisitService) *VisitHandler {
	return &VisitHandler{visitSvc: visitSvc}
}

// Approve 批准到访并签发二维码凭证
// POST /api/v1/visits/:id/approve
func (h *VisitHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "到访ID不能为空")
		return
	}

	// 请求体可省略，省略时按配置默认有效期签发
	var req dto.ApproveVisitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 14001, "参数校验失败")
			return
		}
	}

	visit, err := h.visitSvc.Approve(c.Request.Context(), id, &req)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.OK(c, visit)
}

// Reject 驳回到访
// POST /api/v1/visits/:id/reject
func (h *VisitHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "到访ID不能为空")
		return
	}

	var req dto.RejectVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	visit, err := h.visitSvc.Reject(c.Request.Context(), id, &req)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.OK(c, visit)
}

// Get 查询到访记录
// GET /api/v1/visits/:id
func (h *VisitHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "到访ID不能为空")
		return
	}

	visit, err := h.visitSvc.GetVisit(c.Request.Context(), id)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	response.OK(c, visit)
}

// CalendarFeed 导出经理项目下未来到访的 ICS 日历
// GET /api/v1/managers/:id/visits.ics
func (h *VisitHandler) CalendarFeed(c *gin.Context) {
	managerID := c.Param("id")
	if managerID == "" {
		response.BadRequest(c, 14001, "经理ID不能为空")
		return
	}

	ics, err := h.visitSvc.CalendarFeed(c.Request.Context(), managerID)
	if err != nil {
		h.handleVisitError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="visits.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// handleVisitError 统一处理到访模块业务错误
func (h *VisitHandler) handleVisitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVisitNotFound):
		response.NotFound(c, 14101, "到访记录不存在")
	case errors.Is(err, service.ErrVisitNotPending):
		response.BadRequest(c, 14102, "到访记录非待审批状态")
	case errors.Is(err, service.ErrManagerNotFound):
		response.NotFound(c, 14103, "现场经理不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/visit_handler.go
