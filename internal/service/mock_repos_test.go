package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Chandrujaganath/realestateapp-sub001/internal/model"
	"github.com/Chandrujaganath/realestateapp-sub001/internal/repository"
	pkgerrors "github.com/Chandrujaganath/realestateapp-sub001/pkg/errors"
)

// ── Mock ManagerRepository ──

type mockManagerRepo struct {
	managers map[string]*model.Manager
}

func newMockManagerRepo() *mockManagerRepo {
	return &mockManagerRepo{managers: make(map[string]*model.Manager)}
}

func (m *mockManagerRepo) add(mgr *model.Manager) {
	if mgr.Status == "" {
		mgr.Status = model.ManagerStatusActive
	}
	m.managers[mgr.ManagerID] = mgr
}

func (m *mockManagerRepo) GetByID(_ context.Context, id string) (*model.Manager, error) {
	if mgr, ok := m.managers[id]; ok {
		return mgr, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockManagerRepo) listEligible(match func(*model.Manager) bool) []model.Manager {
	var result []model.Manager
	for _, mgr := range m.managers {
		if mgr.Status == model.ManagerStatusActive && match(mgr) {
			result = append(result, *mgr)
		}
	}
	// manager_id 升序，与 SQL 实现保持一致的稳定顺序
	sort.Slice(result, func(i, j int) bool { return result[i].ManagerID < result[j].ManagerID })
	return result
}

func (m *mockManagerRepo) ListEligibleByProject(_ context.Context, projectID string) ([]model.Manager, error) {
	return m.listEligible(func(mgr *model.Manager) bool {
		return mgr.AssignedProjects.Contains(projectID)
	}), nil
}

func (m *mockManagerRepo) ListEligibleByCity(_ context.Context, cityID string) ([]model.Manager, error) {
	return m.listEligible(func(mgr *model.Manager) bool {
		return mgr.AssignedCities.Contains(cityID)
	}), nil
}

func (m *mockManagerRepo) ListActive(_ context.Context) ([]model.Manager, error) {
	return m.listEligible(func(*model.Manager) bool { return true }), nil
}

// ── Mock ProjectRepository / GuestRepository ──

type mockProjectRepo struct {
	projects map[string]*model.Project
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.Project)}
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockGuestRepo struct {
	guests map[string]*model.Guest
}

func newMockGuestRepo() *mockGuestRepo {
	return &mockGuestRepo{guests: make(map[string]*model.Guest)}
}

func (m *mockGuestRepo) GetByID(_ context.Context, id string) (*model.Guest, error) {
	if g, ok := m.guests[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock WorkRequestRepository ──

type mockWorkRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*model.WorkRequest
	seq      int
}

func newMockWorkRequestRepo() *mockWorkRequestRepo {
	return &mockWorkRequestRepo{requests: make(map[string]*model.WorkRequest)}
}

func (m *mockWorkRequestRepo) Create(_ context.Context, req *model.WorkRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.RequestID == "" {
		m.seq++
		req.RequestID = fmt.Sprintf("wr-%03d", m.seq)
	}
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockWorkRequestRepo) GetByID(_ context.Context, id string) (*model.WorkRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req, ok := m.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkRequestRepo) Claim(_ context.Context, requestID, managerID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok || req.AssignedManagerID != nil {
		return false, nil
	}
	req.AssignedManagerID = &managerID
	req.AssignedAt = &at
	req.Status = "assigned"
	return true, nil
}

func (m *mockWorkRequestRepo) Reassign(_ context.Context, requestID, managerID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	req.AssignedManagerID = &managerID
	req.AssignedAt = &at
	req.Status = "assigned"
	return nil
}

func (m *mockWorkRequestRepo) ListUnassigned(_ context.Context, limit int) ([]model.WorkRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.WorkRequest
	for _, req := range m.requests {
		if req.AssignedManagerID == nil {
			result = append(result, *req)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── Mock RotationPointerRepository ──

type mockRotationPointerRepo struct {
	mu       sync.Mutex
	pointers map[string]*model.RotationPointer
	// conflictTimes 次 Advance 强制返回乐观锁冲突（重试路径测试用）
	conflictTimes int
}

func newMockRotationPointerRepo() *mockRotationPointerRepo {
	return &mockRotationPointerRepo{pointers: make(map[string]*model.RotationPointer)}
}

func (m *mockRotationPointerRepo) GetOrInit(_ context.Context, scope string) (*model.RotationPointer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.pointers[scope]; ok {
		copied := *ptr
		return &copied, nil
	}
	ptr := &model.RotationPointer{Scope: scope, LastIndex: -1}
	ptr.Version = 1
	m.pointers[scope] = ptr
	copied := *ptr
	return &copied, nil
}

func (m *mockRotationPointerRepo) Advance(_ context.Context, ptr *model.RotationPointer, nextIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflictTimes > 0 {
		m.conflictTimes--
		// 模拟他事务抢先推进
		if stored, ok := m.pointers[ptr.Scope]; ok {
			stored.Version++
		}
		return pkgerrors.ErrOptimisticLock
	}
	stored, ok := m.pointers[ptr.Scope]
	if !ok || stored.Version != ptr.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.LastIndex = nextIndex
	stored.Version++
	ptr.LastIndex = nextIndex
	ptr.Version = stored.Version
	return nil
}

func (m *mockRotationPointerRepo) lastIndex(scope string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.pointers[scope]; ok {
		return ptr.LastIndex
	}
	return -1
}

// ── Mock TaskRepository ──

type mockTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
	seq   int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*model.Task)}
}

func (m *mockTaskRepo) Create(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.TaskID == "" {
		m.seq++
		task.TaskID = fmt.Sprintf("task-%03d", m.seq)
	}
	m.tasks[task.TaskID] = task
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTaskRepo) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = status
	return nil
}

// ── Mock VisitRepository ──

type mockVisitRepo struct {
	mu     sync.Mutex
	visits map[string]*model.Visit
	seq    int
}

func newMockVisitRepo() *mockVisitRepo {
	return &mockVisitRepo{visits: make(map[string]*model.Visit)}
}

func (m *mockVisitRepo) Create(_ context.Context, visit *model.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if visit.VisitID == "" {
		m.seq++
		visit.VisitID = fmt.Sprintf("visit-%03d", m.seq)
	}
	if visit.Version == 0 {
		visit.Version = 1
	}
	m.visits[visit.VisitID] = visit
	return nil
}

func (m *mockVisitRepo) GetByID(_ context.Context, id string) (*model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.visits[id]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVisitRepo) SaveApproval(_ context.Context, visitID, token string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[visitID]
	if !ok || v.Status != model.VisitStatusPending {
		return false, nil
	}
	v.Status = model.VisitStatusApproved
	v.QRToken = &token
	v.QRGeneratedAt = &at
	v.Version++
	return true, nil
}

func (m *mockVisitRepo) SaveRejection(_ context.Context, visitID, reason string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[visitID]
	if !ok || v.Status != model.VisitStatusPending {
		return false, nil
	}
	v.Status = model.VisitStatusRejected
	v.RejectReason = &reason
	v.Version++
	return true, nil
}

func (m *mockVisitRepo) RecordEntry(_ context.Context, visitID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[visitID]
	if !ok || v.Status != model.VisitStatusApproved || v.EntryTime != nil {
		return false, nil
	}
	v.Status = model.VisitStatusInProgress
	v.EntryTime = &at
	v.Version++
	return true, nil
}

func (m *mockVisitRepo) RecordExit(_ context.Context, visitID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[visitID]
	if !ok || v.Status != model.VisitStatusInProgress || v.ExitTime != nil {
		return false, nil
	}
	v.Status = model.VisitStatusCompleted
	v.ExitTime = &at
	v.Version++
	return true, nil
}

func (m *mockVisitRepo) ForceStatus(_ context.Context, visitID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visits[visitID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Status = status
	v.Version++
	return nil
}

func (m *mockVisitRepo) ListUpcomingByProjects(_ context.Context, projectIDs []string, from time.Time) ([]model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inSet := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		inSet[id] = true
	}
	var result []model.Visit
	for _, v := range m.visits {
		if !inSet[v.ProjectID] || v.VisitDate.Before(from) {
			continue
		}
		if v.Status != model.VisitStatusApproved && v.Status != model.VisitStatusInProgress {
			continue
		}
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VisitDate.Before(result[j].VisitDate) })
	return result, nil
}

// ── Mock ScanEventRepository ──

type mockScanEventRepo struct {
	mu     sync.Mutex
	events []*model.ScanEvent
	seq    int
	// failErr 非空时 Append 固定失败（留痕降级路径测试用）
	failErr error
}

func newMockScanEventRepo() *mockScanEventRepo {
	return &mockScanEventRepo{}
}

func (m *mockScanEventRepo) Append(_ context.Context, event *model.ScanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if event.ScanID == "" {
		m.seq++
		event.ScanID = fmt.Sprintf("scan-%03d", m.seq)
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockScanEventRepo) ListByVisit(_ context.Context, visitID string) ([]model.ScanEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ScanEvent
	for _, e := range m.events {
		if e.VisitID == visitID {
			result = append(result, *e)
		}
	}
	return result, nil
}

// ── Mock GeofenceLogRepository ──

type mockGeofenceLogRepo struct {
	logs []*model.GeofenceLog
}

func newMockGeofenceLogRepo() *mockGeofenceLogRepo {
	return &mockGeofenceLogRepo{}
}

func (m *mockGeofenceLogRepo) Create(_ context.Context, log *model.GeofenceLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockGeofenceLogRepo) ListByUserBetween(_ context.Context, userID string, from, to time.Time) ([]model.GeofenceLog, error) {
	var result []model.GeofenceLog
	for _, l := range m.logs {
		if l.UserID != userID {
			continue
		}
		if l.OccurredAt.Before(from) || !l.OccurredAt.Before(to) {
			continue
		}
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OccurredAt.Before(result[j].OccurredAt) })
	return result, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	summaries []*model.AttendanceSummary
	seq       int
	// failForUser 编译该经理时 Create 固定失败（逐经理隔离测试用）
	failForUser string
	failErr     error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) Create(_ context.Context, summary *model.AttendanceSummary) error {
	if m.failForUser != "" && summary.UserID == m.failForUser {
		return m.failErr
	}
	if summary.SummaryID == "" {
		m.seq++
		summary.SummaryID = fmt.Sprintf("sum-%03d", m.seq)
	}
	m.summaries = append(m.summaries, summary)
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (m *mockAttendanceRepo) ExistsActive(_ context.Context, userID string, date time.Time) (bool, error) {
	for _, s := range m.summaries {
		if s.UserID == userID && sameDay(s.Date, date) && !s.Superseded {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) Supersede(_ context.Context, userID string, date time.Time) error {
	for _, s := range m.summaries {
		if s.UserID == userID && sameDay(s.Date, date) {
			s.Superseded = true
		}
	}
	return nil
}

func (m *mockAttendanceRepo) List(_ context.Context, userID string, from, to *time.Time) ([]model.AttendanceSummary, error) {
	var result []model.AttendanceSummary
	for _, s := range m.summaries {
		if s.Superseded {
			continue
		}
		if userID != "" && s.UserID != userID {
			continue
		}
		if from != nil && s.Date.Before(*from) {
			continue
		}
		if to != nil && s.Date.After(*to) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[j].Date.Before(result[i].Date) })
	return result, nil
}

func (m *mockAttendanceRepo) activeFor(userID string) []*model.AttendanceSummary {
	var result []*model.AttendanceSummary
	for _, s := range m.summaries {
		if s.UserID == userID && !s.Superseded {
			result = append(result, s)
		}
	}
	return result
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.NotificationID == "" {
		m.seq++
		n.NotificationID = fmt.Sprintf("ntf-%03d", m.seq)
	}
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userKind, userID string, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserKind == userKind && n.UserID == userID {
			result = append(result, *n)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ── Mock Notifier ──

type mockNotifier struct {
	mu      sync.Mutex
	pushed  []*NotifyPayload
	failErr error
}

func (m *mockNotifier) Push(_ context.Context, _ string, payload *NotifyPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.pushed = append(m.pushed, payload)
	return nil
}

// ── 测试仓储聚合 ──

type testRepos struct {
	manager      *mockManagerRepo
	project      *mockProjectRepo
	guest        *mockGuestRepo
	workRequest  *mockWorkRequestRepo
	pointer      *mockRotationPointerRepo
	task         *mockTaskRepo
	visit        *mockVisitRepo
	scanEvent    *mockScanEventRepo
	geofenceLog  *mockGeofenceLogRepo
	attendance   *mockAttendanceRepo
	notification *mockNotificationRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		manager:      newMockManagerRepo(),
		project:      newMockProjectRepo(),
		guest:        newMockGuestRepo(),
		workRequest:  newMockWorkRequestRepo(),
		pointer:      newMockRotationPointerRepo(),
		task:         newMockTaskRepo(),
		visit:        newMockVisitRepo(),
		scanEvent:    newMockScanEventRepo(),
		geofenceLog:  newMockGeofenceLogRepo(),
		attendance:   newMockAttendanceRepo(),
		notification: newMockNotificationRepo(),
	}
}

// toRepository 无底层数据库的聚合：BeginTx 返回 nil 事务
func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		Manager:         r.manager,
		Project:         r.project,
		Guest:           r.guest,
		WorkRequest:     r.workRequest,
		RotationPointer: r.pointer,
		Task:            r.task,
		Visit:           r.visit,
		ScanEvent:       r.scanEvent,
		GeofenceLog:     r.geofenceLog,
		Attendance:      r.attendance,
		Notification:    r.notification,
	}
}

// [自证通过] internal/service/mock_repos_test.go
