package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/jobboard/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// usernameIndex enforces case-insensitive username uniqueness in schema.sql.
const usernameIndex = "idx_users_username_lower"

// Postgres is a Store backed by a PostgreSQL connection pool
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool
func (db *Postgres) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates any missing tables.
func (db *Postgres) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Seed inserts the sample listings unless they already exist.
func (db *Postgres) Seed(ctx context.Context) error {
	// Listings are read newest first, so insert the samples in reverse.
	seeds := SeedInternships()
	slices.Reverse(seeds)
	for _, rec := range seeds {
		if err := db.insertInternship(ctx, rec, true); err != nil {
			return err
		}
	}
	jobs := SeedFreelanceJobs()
	slices.Reverse(jobs)
	for _, job := range jobs {
		if err := db.insertFreelanceJob(ctx, job, true); err != nil {
			return err
		}
	}
	return nil
}

func marshalNullable(v any, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

func dateOrNil(d types.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func dateFrom(t *time.Time) types.Date {
	if t == nil {
		return types.Date{}
	}
	return types.NewDate(*t)
}

// ─────────────────────────────────────────────────────────────────────────────
// Internships
// ─────────────────────────────────────────────────────────────────────────────

const internshipColumns = `id, title, company, location, skills, description, posted_at, recruiter`

func (db *Postgres) insertInternship(ctx context.Context, rec types.JobRecord, ignoreConflict bool) error {
	recruiter, err := marshalNullable(rec.Recruiter, rec.Recruiter == nil)
	if err != nil {
		return fmt.Errorf("failed to marshal recruiter: %w", err)
	}
	query := `INSERT INTO internships (` + internshipColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if ignoreConflict {
		query += ` ON CONFLICT (id) DO NOTHING`
	}
	_, err = db.pool.Exec(ctx, query,
		rec.ID, rec.Title, rec.Company, rec.Location, StringArray(rec.Skills),
		rec.Description, dateOrNil(rec.PostedAt), recruiter,
	)
	if err != nil {
		return fmt.Errorf("failed to insert internship: %w", err)
	}
	return nil
}

func scanInternship(row pgx.Row) (types.JobRecord, error) {
	var rec types.JobRecord
	var skills StringArray
	var posted *time.Time
	var recruiter []byte
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Company, &rec.Location, &skills, &rec.Description, &posted, &recruiter); err != nil {
		return rec, err
	}
	rec.Skills = []string(skills)
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	rec.PostedAt = dateFrom(posted)
	if len(recruiter) > 0 {
		rec.Recruiter = &types.Recruiter{}
		if err := json.Unmarshal(recruiter, rec.Recruiter); err != nil {
			return rec, fmt.Errorf("failed to unmarshal recruiter: %w", err)
		}
	}
	return rec, nil
}

func (db *Postgres) queryInternships(ctx context.Context, query string, args ...any) ([]types.JobRecord, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}
	defer rows.Close()

	recs := []types.JobRecord{}
	for rows.Next() {
		rec, err := scanInternship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan internship: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CreateInternship stores a new listing
func (db *Postgres) CreateInternship(ctx context.Context, rec types.JobRecord) (types.JobRecord, error) {
	rec.ID = uuid.NewString()
	if rec.PostedAt.IsZero() {
		rec.PostedAt = types.NewDate(time.Now())
	}
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	if err := db.insertInternship(ctx, rec, false); err != nil {
		return types.JobRecord{}, err
	}
	return rec, nil
}

// ListInternships returns all listings, newest first
func (db *Postgres) ListInternships(ctx context.Context) ([]types.JobRecord, error) {
	return db.queryInternships(ctx,
		`SELECT `+internshipColumns+` FROM internships ORDER BY seq DESC`)
}

// GetInternship retrieves a listing by ID
func (db *Postgres) GetInternship(ctx context.Context, id string) (types.JobRecord, error) {
	rec, err := scanInternship(db.pool.QueryRow(ctx,
		`SELECT `+internshipColumns+` FROM internships WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.JobRecord{}, ErrNotFound
		}
		return types.JobRecord{}, fmt.Errorf("failed to get internship: %w", err)
	}
	return rec, nil
}

// DeleteInternship removes a listing and returns it
func (db *Postgres) DeleteInternship(ctx context.Context, id string) (types.JobRecord, error) {
	rec, err := scanInternship(db.pool.QueryRow(ctx,
		`DELETE FROM internships WHERE id = $1 RETURNING `+internshipColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.JobRecord{}, ErrNotFound
		}
		return types.JobRecord{}, fmt.Errorf("failed to delete internship: %w", err)
	}
	return rec, nil
}

// ListInternshipsByRecruiter returns the listings posted by one recruiter
func (db *Postgres) ListInternshipsByRecruiter(ctx context.Context, username string) ([]types.JobRecord, error) {
	return db.queryInternships(ctx,
		`SELECT `+internshipColumns+` FROM internships
		 WHERE LOWER(recruiter->>'username') = LOWER($1)
		 ORDER BY seq DESC`, username)
}

// ─────────────────────────────────────────────────────────────────────────────
// Freelance gigs
// ─────────────────────────────────────────────────────────────────────────────

const freelanceColumns = `id, title, budget_type, budget_min, budget_max, location, skills, description, pay, worker, rating, posted_at`

func (db *Postgres) insertFreelanceJob(ctx context.Context, job types.FreelanceJob, ignoreConflict bool) error {
	worker, err := marshalNullable(job.Worker, job.Worker == nil)
	if err != nil {
		return fmt.Errorf("failed to marshal worker: %w", err)
	}
	rating, err := marshalNullable(job.Rating, job.Rating == nil)
	if err != nil {
		return fmt.Errorf("failed to marshal rating: %w", err)
	}
	query := `INSERT INTO freelance_jobs (` + freelanceColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if ignoreConflict {
		query += ` ON CONFLICT (id) DO NOTHING`
	}
	_, err = db.pool.Exec(ctx, query,
		job.ID, job.Title, job.BudgetType, job.BudgetMin, job.BudgetMax, job.Location,
		StringArray(job.Skills), job.Description, job.Pay, worker, rating, dateOrNil(job.PostedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert freelance job: %w", err)
	}
	return nil
}

// CreateFreelanceJob stores a new gig
func (db *Postgres) CreateFreelanceJob(ctx context.Context, job types.FreelanceJob) (types.FreelanceJob, error) {
	job.ID = uuid.NewString()
	if job.PostedAt.IsZero() {
		job.PostedAt = types.NewDate(time.Now())
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}
	if err := db.insertFreelanceJob(ctx, job, false); err != nil {
		return types.FreelanceJob{}, err
	}
	return job, nil
}

// ListFreelanceJobs returns all gigs, newest first
func (db *Postgres) ListFreelanceJobs(ctx context.Context) ([]types.FreelanceJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+freelanceColumns+` FROM freelance_jobs ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list freelance jobs: %w", err)
	}
	defer rows.Close()

	jobs := []types.FreelanceJob{}
	for rows.Next() {
		var job types.FreelanceJob
		var skills StringArray
		var worker, rating []byte
		var posted *time.Time
		if err := rows.Scan(&job.ID, &job.Title, &job.BudgetType, &job.BudgetMin, &job.BudgetMax, &job.Location,
			&skills, &job.Description, &job.Pay, &worker, &rating, &posted); err != nil {
			return nil, fmt.Errorf("failed to scan freelance job: %w", err)
		}
		job.Skills = []string(skills)
		job.PostedAt = dateFrom(posted)
		if len(worker) > 0 {
			job.Worker = &types.Worker{}
			if err := json.Unmarshal(worker, job.Worker); err != nil {
				return nil, fmt.Errorf("failed to unmarshal worker: %w", err)
			}
		}
		if len(rating) > 0 {
			job.Rating = &types.Rating{}
			if err := json.Unmarshal(rating, job.Rating); err != nil {
				return nil, fmt.Errorf("failed to unmarshal rating: %w", err)
			}
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Applications and bookmarks
// ─────────────────────────────────────────────────────────────────────────────

// AddApplication records an application, returning the existing one on repeat
func (db *Postgres) AddApplication(ctx context.Context, internshipID string, applicant types.Applicant) (types.Application, error) {
	app := types.Application{InternshipID: internshipID, Applicant: applicant}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications (id, internship_id, applicant_name, applicant_email)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (internship_id, LOWER(applicant_email)) DO NOTHING
		 RETURNING id, applied_at`,
		uuid.NewString(), internshipID, applicant.Name, applicant.Email,
	).Scan(&app.ID, &app.At)
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return types.Application{}, fmt.Errorf("failed to add application: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`SELECT id, applicant_name, applicant_email, applied_at FROM applications
		 WHERE internship_id = $1 AND LOWER(applicant_email) = LOWER($2)`,
		internshipID, applicant.Email,
	).Scan(&app.ID, &app.Applicant.Name, &app.Applicant.Email, &app.At)
	if err != nil {
		return types.Application{}, fmt.Errorf("failed to load existing application: %w", err)
	}
	return app, nil
}

// ListApplications returns all applications, newest first
func (db *Postgres) ListApplications(ctx context.Context) ([]types.Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, internship_id, applicant_name, applicant_email, applied_at
		 FROM applications ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []types.Application{}
	for rows.Next() {
		var a types.Application
		if err := rows.Scan(&a.ID, &a.InternshipID, &a.Applicant.Name, &a.Applicant.Email, &a.At); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// ToggleBookmark flips a bookmark and reports whether it is now set
func (db *Postgres) ToggleBookmark(ctx context.Context, userKey, internshipID string) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE user_key = $1 AND internship_id = $2`,
		userKey, internshipID)
	if err != nil {
		return false, fmt.Errorf("failed to remove bookmark: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO bookmarks (user_key, internship_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		userKey, internshipID)
	if err != nil {
		return false, fmt.Errorf("failed to add bookmark: %w", err)
	}
	return true, nil
}

// ListBookmarks returns bookmarked internship IDs in the order they were added
func (db *Postgres) ListBookmarks(ctx context.Context, userKey string) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT internship_id FROM bookmarks WHERE user_key = $1 ORDER BY seq`, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan bookmarks: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Recruiter and progress
// ─────────────────────────────────────────────────────────────────────────────

// GetRecruiter returns the recruiter verification status
func (db *Postgres) GetRecruiter(ctx context.Context) (types.RecruiterStatus, error) {
	var status types.RecruiterStatus
	err := db.pool.QueryRow(ctx, `SELECT verified FROM recruiter_status WHERE id = 1`).Scan(&status.Verified)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return status, fmt.Errorf("failed to get recruiter status: %w", err)
	}
	return status, nil
}

// SetRecruiterVerified updates the recruiter verification status
func (db *Postgres) SetRecruiterVerified(ctx context.Context, verified bool) (types.RecruiterStatus, error) {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO recruiter_status (id, verified) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET verified = $1`,
		verified)
	if err != nil {
		return types.RecruiterStatus{}, fmt.Errorf("failed to set recruiter status: %w", err)
	}
	return types.RecruiterStatus{Verified: verified}, nil
}

// GetProgress returns the tracker of one user
func (db *Postgres) GetProgress(ctx context.Context, userKey string) (types.Progress, error) {
	var p types.Progress
	var timeline []byte
	err := db.pool.QueryRow(ctx,
		`SELECT current, timeline FROM progress WHERE user_key = $1`, userKey,
	).Scan(&p.Current, &timeline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("failed to get progress: %w", err)
	}
	if err := json.Unmarshal(timeline, &p.Timeline); err != nil {
		return p, fmt.Errorf("failed to unmarshal timeline: %w", err)
	}
	return p, nil
}

// SaveProgress upserts the tracker of one user
func (db *Postgres) SaveProgress(ctx context.Context, userKey string, p types.Progress) error {
	timeline, err := json.Marshal(p.Timeline)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO progress (user_key, current, timeline) VALUES ($1, $2, $3)
		 ON CONFLICT (user_key) DO UPDATE SET current = $2, timeline = $3, updated_at = NOW()`,
		userKey, p.Current, timeline)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Events and voice notes
// ─────────────────────────────────────────────────────────────────────────────

// AddEvent stores an analytics event
func (db *Postgres) AddEvent(ctx context.Context, ev types.Event) (types.Event, error) {
	ev.ID = uuid.NewString()
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	var payload []byte
	if len(ev.Payload) > 0 {
		payload = ev.Payload
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO events (id, ts, type, payload) VALUES ($1, $2, $3, $4)`,
		ev.ID, ev.TS, ev.Type, payload)
	if err != nil {
		return types.Event{}, fmt.Errorf("failed to add event: %w", err)
	}
	return ev, nil
}

// ListEvents returns events in the order they were recorded
func (db *Postgres) ListEvents(ctx context.Context) ([]types.Event, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, ts, type, payload FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []types.Event{}
	for rows.Next() {
		var ev types.Event
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.TS, &ev.Type, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if len(payload) > 0 {
			ev.Payload = json.RawMessage(payload)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// PruneEvents deletes events recorded before the cutoff
func (db *Postgres) PruneEvents(ctx context.Context, before time.Time) (int, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM events WHERE ts < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// AddVoiceNote stores a transcript
func (db *Postgres) AddVoiceNote(ctx context.Context, note types.VoiceNote) (types.VoiceNote, error) {
	note.ID = uuid.NewString()
	if note.At.IsZero() {
		note.At = time.Now().UTC()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO voice_notes (id, transcript, at) VALUES ($1, $2, $3)`,
		note.ID, note.Transcript, note.At)
	if err != nil {
		return types.VoiceNote{}, fmt.Errorf("failed to add voice note: %w", err)
	}
	return note, nil
}

// ListVoiceNotes returns transcripts in the order they were recorded
func (db *Postgres) ListVoiceNotes(ctx context.Context) ([]types.VoiceNote, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, transcript, at FROM voice_notes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list voice notes: %w", err)
	}
	defer rows.Close()

	notes := []types.VoiceNote{}
	for rows.Next() {
		var n types.VoiceNote
		if err := rows.Scan(&n.ID, &n.Transcript, &n.At); err != nil {
			return nil, fmt.Errorf("failed to scan voice note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// PruneVoiceNotes deletes transcripts recorded before the cutoff
func (db *Postgres) PruneVoiceNotes(ctx context.Context, before time.Time) (int, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM voice_notes WHERE at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune voice notes: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Users
// ─────────────────────────────────────────────────────────────────────────────

const userColumns = `id, username, email, role, password_hash, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser stores a new account
func (db *Postgres) CreateUser(ctx context.Context, u *User) (*User, error) {
	created, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		uuid.New(), strings.TrimSpace(u.Username), strings.ToLower(strings.TrimSpace(u.Email)), u.Role, u.PasswordHash,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == usernameIndex {
				return nil, ErrUsernameTaken
			}
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// GetUser retrieves an account by ID
func (db *Postgres) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves an account by email
func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetUserByUsername retrieves an account by username
func (db *Postgres) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`,
		strings.TrimSpace(username)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return u, nil
}

// CheckEmailExists reports whether an account uses the email
func (db *Postgres) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		strings.ToLower(strings.TrimSpace(email))).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}
