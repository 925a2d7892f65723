package db

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobboard/internal/types"
)

// Memory is a Store held in process memory. All methods are safe for concurrent use.
type Memory struct {
	mu sync.RWMutex

	now func() time.Time

	internships  []types.JobRecord
	freelance    []types.FreelanceJob
	applications []types.Application
	bookmarks    map[string][]string
	recruiter    types.RecruiterStatus
	progress     map[string]types.Progress
	events       []types.Event
	voiceNotes   []types.VoiceNote
	users        map[uuid.UUID]*User
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store, optionally seeded with sample listings.
func NewMemory(seed bool) *Memory {
	m := &Memory{
		now:          time.Now,
		internships:  []types.JobRecord{},
		freelance:    []types.FreelanceJob{},
		applications: []types.Application{},
		events:       []types.Event{},
		voiceNotes:   []types.VoiceNote{},
		bookmarks:    make(map[string][]string),
		progress:     make(map[string]types.Progress),
		users:        make(map[uuid.UUID]*User),
	}
	if seed {
		m.internships = SeedInternships()
		m.freelance = SeedFreelanceJobs()
	}
	return m
}

func cloneJob(rec types.JobRecord) types.JobRecord {
	rec.Skills = slices.Clone(rec.Skills)
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	if rec.Recruiter != nil {
		r := *rec.Recruiter
		rec.Recruiter = &r
	}
	return rec
}

func cloneJobs(recs []types.JobRecord) []types.JobRecord {
	out := make([]types.JobRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, cloneJob(r))
	}
	return out
}

// CreateInternship stores the listing at the front of the board.
func (m *Memory) CreateInternship(_ context.Context, rec types.JobRecord) (types.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec = cloneJob(rec)
	rec.ID = uuid.NewString()
	if rec.PostedAt.IsZero() {
		rec.PostedAt = types.NewDate(m.now())
	}
	m.internships = slices.Insert(m.internships, 0, rec)
	return cloneJob(rec), nil
}

func (m *Memory) ListInternships(_ context.Context) ([]types.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneJobs(m.internships), nil
}

func (m *Memory) GetInternship(_ context.Context, id string) (types.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.internships {
		if rec.ID == id {
			return cloneJob(rec), nil
		}
	}
	return types.JobRecord{}, ErrNotFound
}

func (m *Memory) DeleteInternship(_ context.Context, id string) (types.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.internships, func(r types.JobRecord) bool { return r.ID == id })
	if idx < 0 {
		return types.JobRecord{}, ErrNotFound
	}
	removed := m.internships[idx]
	m.internships = slices.Delete(m.internships, idx, idx+1)
	return removed, nil
}

// ListInternshipsByRecruiter matches the recruiter username case-insensitively.
func (m *Memory) ListInternshipsByRecruiter(_ context.Context, username string) ([]types.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []types.JobRecord{}
	for _, rec := range m.internships {
		if rec.Recruiter != nil && strings.EqualFold(rec.Recruiter.Username, username) {
			out = append(out, cloneJob(rec))
		}
	}
	return out, nil
}

func (m *Memory) CreateFreelanceJob(_ context.Context, job types.FreelanceJob) (types.FreelanceJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.ID = uuid.NewString()
	job.Skills = slices.Clone(job.Skills)
	if job.Skills == nil {
		job.Skills = []string{}
	}
	if job.PostedAt.IsZero() {
		job.PostedAt = types.NewDate(m.now())
	}
	m.freelance = slices.Insert(m.freelance, 0, job)
	return job, nil
}

func (m *Memory) ListFreelanceJobs(_ context.Context) ([]types.FreelanceJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.freelance), nil
}

func (m *Memory) AddApplication(_ context.Context, internshipID string, applicant types.Applicant) (types.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.applications {
		if a.InternshipID == internshipID && strings.EqualFold(a.Applicant.Email, applicant.Email) {
			return a, nil
		}
	}
	app := types.Application{
		ID:           uuid.NewString(),
		InternshipID: internshipID,
		Applicant:    applicant,
		At:           m.now().UTC(),
	}
	m.applications = slices.Insert(m.applications, 0, app)
	return app, nil
}

func (m *Memory) ListApplications(_ context.Context) ([]types.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.applications), nil
}

func (m *Memory) ToggleBookmark(_ context.Context, userKey, internshipID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	marks := m.bookmarks[userKey]
	if idx := slices.Index(marks, internshipID); idx >= 0 {
		m.bookmarks[userKey] = slices.Delete(marks, idx, idx+1)
		return false, nil
	}
	m.bookmarks[userKey] = append(marks, internshipID)
	return true, nil
}

func (m *Memory) ListBookmarks(_ context.Context, userKey string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Clone(m.bookmarks[userKey])
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (m *Memory) GetRecruiter(_ context.Context) (types.RecruiterStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recruiter, nil
}

func (m *Memory) SetRecruiterVerified(_ context.Context, verified bool) (types.RecruiterStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recruiter.Verified = verified
	return m.recruiter, nil
}

func (m *Memory) GetProgress(_ context.Context, userKey string) (types.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.progress[userKey]
	if !ok {
		return types.Progress{}, ErrNotFound
	}
	p.Timeline = slices.Clone(p.Timeline)
	return p, nil
}

func (m *Memory) SaveProgress(_ context.Context, userKey string, p types.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.Timeline = slices.Clone(p.Timeline)
	m.progress[userKey] = p
	return nil
}

// AddEvent assigns an id and, when missing, a timestamp.
func (m *Memory) AddEvent(_ context.Context, ev types.Event) (types.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev.ID = uuid.NewString()
	if ev.TS.IsZero() {
		ev.TS = m.now().UTC()
	}
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *Memory) ListEvents(_ context.Context) ([]types.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.events), nil
}

// PruneEvents drops events recorded before the cutoff and returns how many were removed.
func (m *Memory) PruneEvents(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.events)
	m.events = slices.DeleteFunc(m.events, func(ev types.Event) bool { return ev.TS.Before(before) })
	return n - len(m.events), nil
}

func (m *Memory) AddVoiceNote(_ context.Context, note types.VoiceNote) (types.VoiceNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	note.ID = uuid.NewString()
	if note.At.IsZero() {
		note.At = m.now().UTC()
	}
	m.voiceNotes = append(m.voiceNotes, note)
	return note, nil
}

func (m *Memory) ListVoiceNotes(_ context.Context) ([]types.VoiceNote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.voiceNotes), nil
}

func (m *Memory) PruneVoiceNotes(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.voiceNotes)
	m.voiceNotes = slices.DeleteFunc(m.voiceNotes, func(v types.VoiceNote) bool { return v.At.Before(before) })
	return n - len(m.voiceNotes), nil
}

// CreateUser stores the account with a lower-cased email. Emails and
// usernames are unique regardless of case.
func (m *Memory) CreateUser(_ context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	username := strings.TrimSpace(u.Username)
	for _, existing := range m.users {
		if existing.Email == email {
			return nil, ErrDuplicate
		}
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, username) {
			return nil, ErrUsernameTaken
		}
	}
	stored := *u
	stored.ID = uuid.New()
	stored.Username = username
	stored.Email = email
	stored.CreatedAt = m.now().UTC()
	m.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

// GetUserByEmail returns nil without error when no account matches.
func (m *Memory) GetUserByEmail(_ context.Context, email string) (*User, error) {
	return m.findUser(func(u *User) bool { return u.Email == strings.ToLower(strings.TrimSpace(email)) }), nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*User, error) {
	return m.findUser(func(u *User) bool { return strings.EqualFold(u.Username, strings.TrimSpace(username)) }), nil
}

func (m *Memory) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *Memory) findUser(match func(*User) bool) *User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			out := *u
			return &out
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() {}
