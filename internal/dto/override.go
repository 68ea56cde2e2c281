package dto

// ── 人工修正模块 DTO ──

// OverrideCommand 特权人工修正命令
// resource 为封闭集合，按查表分发到各自的处理器
type OverrideCommand struct {
	Resource string            `json:"resource"  binding:"required,oneof=visit work_request task attendance"`
	Action   string            `json:"action"    binding:"required,max=40"`
	TargetID string            `json:"target_id" binding:"required"`
	Params   map[string]string `json:"params"    binding:"omitempty"`
	Reason   string            `json:"reason"    binding:"required,min=2,max=500"`
}

// OverrideResult 修正执行结果
type OverrideResult struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	TargetID string `json:"target_id"`
	Message  string `json:"message"`
}

// [自证通过] internal/dto/override.go
