package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/repository"
	"schoolfest/backend/pkg/hhmm"
)

var errStoreDown = errors.New("store unavailable")

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[uint]*model.Student
	nextID   uint
	created  int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[uint]*model.Student), nextID: 1}
}

func (m *mockStudentRepo) add(num, name string) *model.Student {
	s := &model.Student{StudentID: m.nextID, StudentNum: num, ClassCode: "2-A", Name: name}
	m.students[s.StudentID] = s
	m.nextID++
	return s
}

func (m *mockStudentRepo) Create(_ context.Context, s *model.Student) error {
	s.StudentID = m.nextID
	m.nextID++
	m.students[s.StudentID] = s
	m.created++
	return nil
}

func (m *mockStudentRepo) CreateBatch(ctx context.Context, students []model.Student) error {
	for i := range students {
		if err := m.Create(ctx, &students[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id uint) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByNum(_ context.Context, num string) (*model.Student, error) {
	for _, s := range m.students {
		if s.StudentNum == num {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, classCode string, offset, limit int) ([]model.Student, int64, error) {
	var result []model.Student
	for _, s := range m.students {
		if classCode == "" || s.ClassCode == classCode {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockStudentRepo) ExistingNums(_ context.Context, nums []string) ([]string, error) {
	var existing []string
	for _, n := range nums {
		for _, s := range m.students {
			if s.StudentNum == n {
				existing = append(existing, n)
				break
			}
		}
	}
	return existing, nil
}

// ── Mock RecreationRepository ──

type mockRecreationRepo struct {
	recs   map[uint]*model.Recreation
	nextID uint
}

func newMockRecreationRepo() *mockRecreationRepo {
	return &mockRecreationRepo{recs: make(map[uint]*model.Recreation), nextID: 1}
}

func (m *mockRecreationRepo) add(id uint, title string, start, max int) *model.Recreation {
	r := &model.Recreation{
		RecreationID:    id,
		Title:           title,
		Location:        "体育館",
		StartTime:       start,
		EndTime:         hhmm.Add(start, 50),
		MaxParticipants: max,
		Status:          model.RecreationStatusScheduled,
	}
	m.recs[id] = r
	if id >= m.nextID {
		m.nextID = id + 1
	}
	return r
}

func (m *mockRecreationRepo) Create(_ context.Context, r *model.Recreation) error {
	r.RecreationID = m.nextID
	m.nextID++
	m.recs[r.RecreationID] = r
	return nil
}

func (m *mockRecreationRepo) GetByID(_ context.Context, id uint) (*model.Recreation, error) {
	if r, ok := m.recs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecreationRepo) LockByID(ctx context.Context, id uint) (*model.Recreation, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRecreationRepo) List(_ context.Context, status string) ([]model.Recreation, error) {
	var result []model.Recreation
	for _, r := range m.recs {
		if status == "" || r.Status == status {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockRecreationRepo) ListStartingAt(_ context.Context, start int, status string) ([]model.Recreation, error) {
	var result []model.Recreation
	for _, r := range m.recs {
		if r.StartTime == start && r.Status == status {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRecreationRepo) Update(_ context.Context, r *model.Recreation) error {
	cp := *r
	m.recs[r.RecreationID] = &cp
	return nil
}

func (m *mockRecreationRepo) Delete(_ context.Context, id uint) error {
	delete(m.recs, id)
	return nil
}

// ── Mock ParticipationRepository ──

type mockParticipationRepo struct {
	rows       map[uint]*model.Participation
	nextID     uint
	students   *mockStudentRepo
	recs       *mockRecreationRepo
	lastFilter repository.ParticipationFilter
	countErr   error
}

func newMockParticipationRepo(students *mockStudentRepo, recs *mockRecreationRepo) *mockParticipationRepo {
	return &mockParticipationRepo{
		rows:     make(map[uint]*model.Participation),
		nextID:   1,
		students: students,
		recs:     recs,
	}
}

func (m *mockParticipationRepo) withRelations(p model.Participation) *model.Participation {
	p.Student = m.students.students[p.StudentID]
	p.Recreation = m.recs.recs[p.RecreationID]
	return &p
}

func (m *mockParticipationRepo) Create(_ context.Context, p *model.Participation) error {
	for _, existing := range m.rows {
		if existing.StudentID == p.StudentID && existing.RecreationID == p.RecreationID {
			return gorm.ErrDuplicatedKey
		}
	}
	p.ParticipationID = m.nextID
	m.nextID++
	cp := *p
	m.rows[p.ParticipationID] = &cp
	return nil
}

func (m *mockParticipationRepo) GetByID(_ context.Context, id uint) (*model.Participation, error) {
	if p, ok := m.rows[id]; ok {
		return m.withRelations(*p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParticipationRepo) GetByPair(_ context.Context, studentID, recreationID uint) (*model.Participation, error) {
	for _, p := range m.rows {
		if p.StudentID == studentID && p.RecreationID == recreationID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParticipationRepo) CountActive(_ context.Context, recreationID uint) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, p := range m.rows {
		if p.RecreationID == recreationID && p.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

func (m *mockParticipationRepo) ListByStudent(_ context.Context, studentID uint, filter repository.ParticipationFilter) ([]model.Participation, error) {
	m.lastFilter = filter
	var result []model.Participation
	for _, p := range m.rows {
		if p.StudentID != studentID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		result = append(result, *m.withRelations(*p))
	}
	sort.Slice(result, func(i, j int) bool {
		return hhmm.ToMinutes(result[i].Recreation.StartTime) < hhmm.ToMinutes(result[j].Recreation.StartTime)
	})
	return result, nil
}

func (m *mockParticipationRepo) ListByRecreation(_ context.Context, recreationID uint) ([]model.Participation, error) {
	var result []model.Participation
	for _, p := range m.rows {
		if p.RecreationID == recreationID {
			result = append(result, *m.withRelations(*p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RegisteredAt.Before(result[j].RegisteredAt) })
	return result, nil
}

func (m *mockParticipationRepo) Update(_ context.Context, p *model.Participation) error {
	existing, ok := m.rows[p.ParticipationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.UpdatedAt = time.Now()
	existing.Status = p.Status
	existing.RegisteredAt = p.RegisteredAt
	existing.UpdatedAt = p.UpdatedAt
	return nil
}

func (m *mockParticipationRepo) Delete(_ context.Context, id uint) error {
	delete(m.rows, id)
	return nil
}

// ── Mock DownloadLogRepository ──

type mockDownloadLogRepo struct {
	logs       []model.DownloadLog
	createErr  error
	lastFilter repository.DownloadLogFilter
}

func (m *mockDownloadLogRepo) Create(_ context.Context, l *model.DownloadLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	l.LogID = uint(len(m.logs) + 1)
	m.logs = append(m.logs, *l)
	return nil
}

func (m *mockDownloadLogRepo) FindAll(_ context.Context, filter repository.DownloadLogFilter) ([]model.DownloadLog, int64, error) {
	m.lastFilter = filter
	var result []model.DownloadLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		result = append(result, m.logs[i])
	}
	return result, int64(len(result)), nil
}

func (m *mockDownloadLogRepo) FindByStudentNum(_ context.Context, num string) ([]model.DownloadLog, error) {
	var result []model.DownloadLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].StudentNum == num {
			result = append(result, m.logs[i])
		}
	}
	return result, nil
}

func (m *mockDownloadLogRepo) Stats(_ context.Context) (*repository.DownloadStats, error) {
	return &repository.DownloadStats{UniqueStudents: 2, SuccessCount: 5, FailureCount: 1, EntryFetchedStudents: 1}, nil
}

// ── Mock EventRepository / EntryRepository ──

type mockEventRepo struct {
	events map[uint]*model.Event
	nextID uint
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[uint]*model.Event), nextID: 1}
}

func (m *mockEventRepo) Create(_ context.Context, e *model.Event) error {
	e.EventID = m.nextID
	m.nextID++
	m.events[e.EventID] = e
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id uint) (*model.Event, error) {
	if e, ok := m.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) List(_ context.Context) ([]model.Event, error) {
	var result []model.Event
	for _, e := range m.events {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockEventRepo) Update(_ context.Context, e *model.Event) error {
	m.events[e.EventID] = e
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id uint) error {
	delete(m.events, id)
	return nil
}

type mockEntryRepo struct {
	entries map[uint]*model.Entry
	events  *mockEventRepo
	nextID  uint
}

func newMockEntryRepo(events *mockEventRepo) *mockEntryRepo {
	return &mockEntryRepo{entries: make(map[uint]*model.Entry), events: events, nextID: 1}
}

func (m *mockEntryRepo) Create(_ context.Context, e *model.Entry) error {
	e.EntryID = m.nextID
	e.CreatedAt = time.Now()
	m.nextID++
	cp := *e
	m.entries[e.EntryID] = &cp
	return nil
}

func (m *mockEntryRepo) GetByID(_ context.Context, id uint) (*model.Entry, error) {
	if e, ok := m.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) GetByPair(_ context.Context, studentID, eventID uint) (*model.Entry, error) {
	for _, e := range m.entries {
		if e.StudentID == studentID && e.EventID == eventID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo) ListByStudent(_ context.Context, studentID uint) ([]model.Entry, error) {
	var result []model.Entry
	for _, e := range m.entries {
		if e.StudentID == studentID {
			cp := *e
			cp.Event = m.events.events[e.EventID]
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryID < result[j].EntryID })
	return result, nil
}

func (m *mockEntryRepo) Delete(_ context.Context, id uint) error {
	delete(m.entries, id)
	return nil
}

// ── 测试辅助 ──

type mockRepos struct {
	students       *mockStudentRepo
	recreations    *mockRecreationRepo
	participations *mockParticipationRepo
	logs           *mockDownloadLogRepo
	events         *mockEventRepo
	entries        *mockEntryRepo
}

// newMockRepository 组装未绑定数据库的聚合，BeginTx 返回 nil
func newMockRepository() (*repository.Repository, *mockRepos) {
	students := newMockStudentRepo()
	recs := newMockRecreationRepo()
	events := newMockEventRepo()
	m := &mockRepos{
		students:       students,
		recreations:    recs,
		participations: newMockParticipationRepo(students, recs),
		logs:           &mockDownloadLogRepo{},
		events:         events,
		entries:        newMockEntryRepo(events),
	}
	repo := &repository.Repository{
		Student:       m.students,
		Event:         m.events,
		Entry:         m.entries,
		Recreation:    m.recreations,
		Participation: m.participations,
		DownloadLog:   m.logs,
	}
	return repo, m
}
