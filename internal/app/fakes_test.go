package app

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"feedback_reminder_service/internal/domain/enrollment"
	"feedback_reminder_service/internal/domain/feedback"
	"feedback_reminder_service/internal/domain/reminder"
	"feedback_reminder_service/internal/domain/session"
	idb "feedback_reminder_service/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func day(s string) time.Time {
	d, err := time.Parse(reminder.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

// memLedger enforces dedup keys the way the storage unique indexes do.
type memLedger struct {
	mu      sync.Mutex
	rows    map[reminder.Key]*reminder.Record
	nextID  int64
	failOn  func(reminder.Key) error
	inserts int
	checks  int
}

func newMemLedger() *memLedger {
	return &memLedger{rows: make(map[reminder.Key]*reminder.Record)}
}

func (l *memLedger) clone() *memLedger {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := &memLedger{rows: make(map[reminder.Key]*reminder.Record, len(l.rows)), nextID: l.nextID, failOn: l.failOn}
	for k, v := range l.rows {
		cp := *v
		c.rows[k] = &cp
	}
	return c
}

func (l *memLedger) Exists(_ context.Context, key reminder.Key) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checks++
	_, ok := l.rows[key]
	return ok, nil
}

func (l *memLedger) Insert(_ context.Context, rec *reminder.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := rec.Key()
	l.inserts++
	if l.failOn != nil {
		if err := l.failOn(key); err != nil {
			return err
		}
	}
	if _, ok := l.rows[key]; ok {
		return idb.ErrDuplicateKey
	}
	l.nextID++
	rec.ID = l.nextID
	rec.CreatedAt = time.Now()
	cp := *rec
	l.rows[key] = &cp
	return nil
}

func (l *memLedger) ListUnsentByParticipant(_ context.Context, participantID int64) ([]*reminder.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*reminder.Record, 0)
	for _, r := range l.rows {
		if r.ParticipantID == participantID && !r.IsSent {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *memLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

func (l *memLedger) has(key reminder.Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.rows[key]
	return ok
}

type memEnrollments struct {
	participations []*enrollment.Participation
}

func (m *memEnrollments) ListActiveByCourses(_ context.Context, courseIDs []int64) ([]*enrollment.Participation, error) {
	want := make(map[int64]bool, len(courseIDs))
	for _, id := range courseIDs {
		want[id] = true
	}
	out := make([]*enrollment.Participation, 0)
	for _, p := range m.participations {
		if p.IsActive && want[p.CourseID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memEnrollments) ListInactive(_ context.Context) ([]*enrollment.Participation, error) {
	out := make([]*enrollment.Participation, 0)
	for _, p := range m.participations {
		if !p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type memCatalog struct {
	sessions []*session.Session
}

func (m *memCatalog) ListDue(_ context.Context, at time.Time) ([]*session.Session, error) {
	out := make([]*session.Session, 0)
	for _, s := range m.sessions {
		clock, err := time.Parse("15:04:05", s.SessionTime)
		if err != nil {
			return nil, err
		}
		startsAt := time.Date(s.SessionDate.Year(), s.SessionDate.Month(), s.SessionDate.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, at.Location())
		if !startsAt.After(at) {
			out = append(out, s)
		}
	}
	return out, nil
}

// memStore commits the working ledger only when fn succeeds.
type memStore struct {
	enrollments *memEnrollments
	catalog     *memCatalog
	ledger      *memLedger
	lastTx      *memLedger // working ledger of the most recent RunInTx
	listErr     error
}

func newMemStore() *memStore {
	return &memStore{
		enrollments: &memEnrollments{},
		catalog:     &memCatalog{},
		ledger:      newMemLedger(),
	}
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx reminder.Tx) error) error {
	working := s.ledger.clone()
	s.lastTx = working
	var enrollments enrollment.ReadModel = s.enrollments
	if s.listErr != nil {
		enrollments = failingEnrollments{err: s.listErr}
	}
	if err := fn(ctx, reminder.Tx{Enrollments: enrollments, Sessions: s.catalog, Ledger: working}); err != nil {
		return err
	}
	s.ledger.mu.Lock()
	s.ledger.rows = working.rows
	s.ledger.nextID = working.nextID
	s.ledger.mu.Unlock()
	return nil
}

func (s *memStore) enroll(participantID, courseID int64, active bool) *enrollment.Participation {
	p := &enrollment.Participation{
		ID:            int64(len(s.enrollments.participations) + 1),
		CourseID:      courseID,
		ParticipantID: participantID,
		IsActive:      active,
	}
	s.enrollments.participations = append(s.enrollments.participations, p)
	return p
}

func (s *memStore) schedule(courseID int64, date, clock string) {
	s.catalog.sessions = append(s.catalog.sessions, &session.Session{
		ID:          int64(len(s.catalog.sessions) + 1),
		CourseID:    courseID,
		SessionDate: day(date),
		SessionTime: clock,
	})
}

type failingEnrollments struct {
	err error
}

func (f failingEnrollments) ListActiveByCourses(context.Context, []int64) ([]*enrollment.Participation, error) {
	return nil, f.err
}

func (f failingEnrollments) ListInactive(context.Context) ([]*enrollment.Participation, error) {
	return nil, f.err
}

// memFeedback is the submission ledger with the same uniqueness rule.
type memFeedback struct {
	mu        sync.Mutex
	rows      map[feedback.Key]*feedback.Submission
	calls     int
	blind     bool // Exists always reports false
	existsErr error
	createErr error
}

func newMemFeedback() *memFeedback {
	return &memFeedback{rows: make(map[feedback.Key]*feedback.Submission)}
}

func (m *memFeedback) Exists(_ context.Context, key feedback.Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.blind {
		return false, nil
	}
	_, ok := m.rows[key]
	return ok, nil
}

func (m *memFeedback) Create(_ context.Context, s *feedback.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.rows[s.Key()]; ok {
		return idb.ErrDuplicateKey
	}
	s.ID = int64(len(m.rows) + 1)
	s.CreatedAt = time.Now()
	cp := *s
	m.rows[s.Key()] = &cp
	return nil
}
