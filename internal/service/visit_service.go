package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Chandrujaganath/realestateapp-sub001/config"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/dto"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/model"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/repository"
	"github.com/Chandrujaganath/realestateapp-sub001/pkg/qrtoken"
)

// ── 到访/闸机模块业务错误 ──

var (
	ErrVisitNotFound      = errors.New("到访记录不存在")
	ErrVisitNotPending    = errors.New("到访记录非待审批状态")
	ErrVisitNotApproved   = errors.New("到访记录非已批准状态，不可入场")
	ErrVisitNotInProgress = errors.New("到访记录非进行中状态，不可离场")
	ErrTokenExpired       = errors.New("二维码凭证已过期")
	ErrMalformedToken     = errors.New("二维码凭证格式无效")
	ErrGuestMismatch      = errors.New("凭证访客与到访记录不符")
	ErrManagerNotFound    = errors.New("现场经理不存在")
)

// VisitService 到访生命周期业务接口
// 状态机：pending → approved → in_progress → completed；pending → rejected 终态
type VisitService interface {
	// Approve 批准到访并签发一次性二维码凭证；重复批准为受护栏的 no-op
	Approve(ctx context.Context, visitID string, req *dto.ApproveVisitRequest) (*dto.VisitResponse, error)
	// Reject 驳回到访（终态）
	Reject(ctx context.Context, visitID string, req *dto.RejectVisitRequest) (*dto.VisitResponse, error)
	// VerifyScan 闸机扫描校验：推进状态机并留痕
	VerifyScan(ctx context.Context, req *dto.GateScanRequest, scannerID string) (*dto.GateScanResponse, error)
	// GetVisit 查询到访记录
	GetVisit(ctx context.Context, visitID string) (*dto.VisitResponse, error)
	// CalendarFeed 导出经理项目下未来到访的 ICS 日历
	CalendarFeed(ctx context.Context, managerID string) (string, error)
}

type visitService struct {
	cfg      *config.Config
	repo     *repository.Repository
	qr       *qrtoken.Issuer
	notifier Notifier
	logger   *zap.Logger
}

// NewVisitService 创建 VisitService 实例
func NewVisitService(cfg *config.Config, repo *repository.Repository, qr *qrtoken.Issuer, notifier Notifier, logger *zap.Logger) VisitService {
	return &visitService{cfg: cfg, repo: repo, qr: qr, notifier: notifier, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 批准 / 驳回
// ════════════════════════════════════════════════════════════

func (s *visitService) Approve(ctx context.Context, visitID string, req *dto.ApproveVisitRequest) (*dto.VisitResponse, error) {
	visit, err := s.loadVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if visit.Status != model.VisitStatusPending {
		return nil, ErrVisitNotPending
	}

	now := time.Now()
	issuer := s.qr
	if req != nil && req.ValidHours > 0 {
		issuer = qrtoken.NewIssuer(&config.QRConfig{
			Secret:   s.cfg.QR.Secret,
			ValidFor: time.Duration(req.ValidHours) * time.Hour,
		})
	}

	token, validUntil, err := issuer.Mint(visit.VisitID, visit.GuestID, visit.ProjectID, now)
	if err != nil {
		s.logger.Error("签发二维码凭证失败", zap.String("visit_id", visitID), zap.Error(err))
		return nil, err
	}

	// 条件更新承担并发护栏：两个并发批准只有一个生效
	ok, err := s.repo.Visit.SaveApproval(ctx, visit.VisitID, token, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVisitNotPending
	}

	s.logger.Info("到访已批准",
		zap.String("visit_id", visitID),
		zap.Time("valid_until", validUntil),
	)

	s.notifyGuest(ctx, visit, "visit_approved", "到访已批准",
		"您的到访申请已批准，请在入场时出示二维码")

	return s.GetVisit(ctx, visitID)
}

func (s *visitService) Reject(ctx context.Context, visitID string, req *dto.RejectVisitRequest) (*dto.VisitResponse, error) {
	visit, err := s.loadVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if visit.Status != model.VisitStatusPending {
		return nil, ErrVisitNotPending
	}

	ok, err := s.repo.Visit.SaveRejection(ctx, visit.VisitID, req.Reason, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVisitNotPending
	}

	s.notifyGuest(ctx, visit, "visit_rejected", "到访申请未通过", req.Reason)

	return s.GetVisit(ctx, visitID)
}

// ════════════════════════════════════════════════════════════
// 闸机扫描校验
// ════════════════════════════════════════════════════════════

// VerifyScan 按扫描类型推进到访状态
// 被拒绝的扫描同样追加 scan_events（accepted=false），但绝不改写 Visit；
// entry_time / exit_time 的存在性保证状态每类转换至多推进一次
func (s *visitService) VerifyScan(ctx context.Context, req *dto.GateScanRequest, scannerID string) (*dto.GateScanResponse, error) {
	claims, err := s.qr.Parse(req.Token)
	if err != nil {
		if errors.Is(err, qrtoken.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrMalformedToken
	}

	visit, err := s.repo.Visit.GetByID(ctx, claims.VisitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, err
	}

	now := time.Now()

	// 凭证访客必须与到访记录一致
	if claims.GuestID != visit.GuestID {
		s.appendScan(ctx, visit.VisitID, req, scannerID, now, false, "guest_mismatch")
		return nil, ErrGuestMismatch
	}

	var message string
	switch req.ScanType {
	case model.ScanTypeEntry:
		message, err = s.handleEntry(ctx, visit, req, scannerID, now)
	case model.ScanTypeExit:
		message, err = s.handleExit(ctx, visit, req, scannerID, now)
	default:
		return nil, ErrMalformedToken
	}
	if err != nil {
		return nil, err
	}

	scanID := s.appendScan(ctx, visit.VisitID, req, scannerID, now, true, "")

	return &dto.GateScanResponse{
		Success:     true,
		GuestName:   guestName(visit),
		ProjectName: projectName(visit),
		VisitDate:   visit.VisitDate.Format("2006-01-02"),
		ScanID:      scanID,
		Message:     message,
	}, nil
}

func (s *visitService) handleEntry(ctx context.Context, visit *model.Visit, req *dto.GateScanRequest, scannerID string, now time.Time) (string, error) {
	// 重复入场：留痕但不再推进状态
	if visit.EntryTime != nil {
		return "重复入场扫描，已记录", nil
	}
	if visit.Status != model.VisitStatusApproved {
		s.appendScan(ctx, visit.VisitID, req, scannerID, now, false, "not_approved")
		return "", ErrVisitNotApproved
	}

	ok, err := s.repo.Visit.RecordEntry(ctx, visit.VisitID, now)
	if err != nil {
		return "", err
	}
	if !ok {
		// 与并发入场扫描竞争失败：状态已被推进，等价于重复扫描
		return "重复入场扫描，已记录", nil
	}

	s.logger.Info("访客入场", zap.String("visit_id", visit.VisitID), zap.String("gate_id", req.GateID))
	return "入场成功，祝参观愉快", nil
}

func (s *visitService) handleExit(ctx context.Context, visit *model.Visit, req *dto.GateScanRequest, scannerID string, now time.Time) (string, error) {
	if visit.ExitTime != nil {
		return "重复离场扫描，已记录", nil
	}
	if visit.Status != model.VisitStatusInProgress {
		s.appendScan(ctx, visit.VisitID, req, scannerID, now, false, "not_in_progress")
		return "", ErrVisitNotInProgress
	}

	ok, err := s.repo.Visit.RecordExit(ctx, visit.VisitID, now)
	if err != nil {
		return "", err
	}
	if !ok {
		return "重复离场扫描，已记录", nil
	}

	s.logger.Info("访客离场", zap.String("visit_id", visit.VisitID), zap.String("gate_id", req.GateID))
	return "离场成功，感谢到访", nil
}

// appendScan 追加扫描事件；留痕失败只记日志，不阻断闸机响应
func (s *visitService) appendScan(ctx context.Context, visitID string, req *dto.GateScanRequest, scannerID string, at time.Time, accepted bool, rejectReason string) string {
	event := &model.ScanEvent{
		VisitID:   visitID,
		Type:      req.ScanType,
		GateID:    req.GateID,
		ScannedAt: at,
		Accepted:  accepted,
	}
	if scannerID != "" {
		event.ScannerID = &scannerID
	}
	if rejectReason != "" {
		event.RejectReason = &rejectReason
	}

	if err := s.repo.ScanEvent.Append(ctx, event); err != nil {
		s.logger.Error("扫描事件落库失败", zap.String("visit_id", visitID), zap.Error(err))
		return ""
	}
	return event.ScanID
}

// ════════════════════════════════════════════════════════════
// 查询 / 日历导出
// ════════════════════════════════════════════════════════════

func (s *visitService) GetVisit(ctx context.Context, visitID string) (*dto.VisitResponse, error) {
	visit, err := s.loadVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	return toVisitResponse(visit), nil
}

// CalendarFeed 生成经理项目下未来到访的 ICS 日历
func (s *visitService) CalendarFeed(ctx context.Context, managerID string) (string, error) {
	manager, err := s.repo.Manager.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrManagerNotFound
		}
		return "", err
	}
	if len(manager.AssignedProjects) == 0 {
		// 无项目即空日历
		cal := ics.NewCalendar()
		cal.SetMethod(ics.MethodPublish)
		return cal.Serialize(), nil
	}

	today := time.Now().Truncate(24 * time.Hour)
	visits, err := s.repo.Visit.ListUpcomingByProjects(ctx, manager.AssignedProjects, today)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//realestateapp//visit-calendar//CN")

	for _, v := range visits {
		event := cal.AddEvent(fmt.Sprintf("visit-%s@realestateapp", v.VisitID))
		event.SetDtStampTime(time.Now())
		event.SetStartAt(v.VisitDate)
		event.SetEndAt(v.VisitDate.Add(24 * time.Hour))
		event.SetSummary(fmt.Sprintf("到访：%s", guestName(&v)))
		event.SetLocation(projectName(&v))
		event.SetDescription(fmt.Sprintf("状态：%s", v.Status))
	}

	return cal.Serialize(), nil
}

// ── 辅助 ──

func (s *visitService) loadVisit(ctx context.Context, visitID string) (*model.Visit, error) {
	visit, err := s.repo.Visit.GetByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitNotFound
		}
		s.logger.Error("查询到访记录失败", zap.String("visit_id", visitID), zap.Error(err))
		return nil, err
	}
	return visit, nil
}

func (s *visitService) notifyGuest(ctx context.Context, visit *model.Visit, notifyType, title, body string) {
	n := &model.Notification{
		UserKind:      model.NotifyUserKindGuest,
		UserID:        visit.GuestID,
		Type:          notifyType,
		Title:         title,
		Body:          body,
		ReferenceType: strPtr("visit"),
		ReferenceID:   strPtr(visit.VisitID),
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("通知落库失败", zap.String("guest_id", visit.GuestID), zap.Error(err))
	}

	token := ""
	if visit.Guest != nil && visit.Guest.NotifyToken != nil {
		token = *visit.Guest.NotifyToken
	}
	payload := &NotifyPayload{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":         notifyType,
			"reference_id": visit.VisitID,
		},
	}
	if err := s.notifier.Push(ctx, token, payload); err != nil {
		s.logger.Warn("推送发送失败", zap.String("guest_id", visit.GuestID), zap.Error(err))
	}
}

func toVisitResponse(v *model.Visit) *dto.VisitResponse {
	resp := &dto.VisitResponse{
		ID:          v.VisitID,
		GuestID:     v.GuestID,
		GuestName:   guestName(v),
		ProjectID:   v.ProjectID,
		ProjectName: projectName(v),
		VisitDate:   v.VisitDate.Format("2006-01-02"),
		Status:      v.Status,
		QRToken:     v.QRToken,
	}
	if v.QRGeneratedAt != nil {
		s := v.QRGeneratedAt.Format(time.RFC3339)
		resp.QRGeneratedAt = &s
	}
	if v.EntryTime != nil {
		s := v.EntryTime.Format(time.RFC3339)
		resp.EntryTime = &s
	}
	if v.ExitTime != nil {
		s := v.ExitTime.Format(time.RFC3339)
		resp.ExitTime = &s
	}
	return resp
}

func guestName(v *model.Visit) string {
	if v.Guest != nil {
		return v.Guest.Name
	}
	return ""
}

func projectName(v *model.Visit) string {
	if v.Project != nil {
		return v.Project.Name
	}
	return ""
}

// [自证通过] internal/service/visit_service.go
