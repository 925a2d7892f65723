// Package types provides type definitions for structured data used throughout the job board.
package types

import "time"

// DateLayout is the wire format of posting and timeline dates.
const DateLayout = "2006-01-02"

// Recruiter identifies who posted a listing.
type Recruiter struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Company  string `json:"company,omitempty"`
	Title    string `json:"title,omitempty"`
}

// JobRecord is an internship listing as posted by a recruiter.
// Skills keep their display case; matching compares them case-insensitively.
type JobRecord struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	Skills      []string   `json:"skills"`
	Description string     `json:"description"`
	PostedAt    Date       `json:"postedAt"`
	Recruiter   *Recruiter `json:"recruiter,omitempty"`
}

// ScoredJobRecord is a JobRecord with its relevance score for one query.
// It is derived on every ranking request and never stored.
type ScoredJobRecord struct {
	JobRecord
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

// CreateInternshipRequest is the body of POST /api/internships.
type CreateInternshipRequest struct {
	Title       string     `json:"title" validate:"required"`
	Company     string     `json:"company" validate:"required"`
	Location    string     `json:"location"`
	Skills      []string   `json:"skills"`
	Description string     `json:"description"`
	PostedAt    Date       `json:"postedAt"`
	Recruiter   *Recruiter `json:"recruiter,omitempty"`
}

// Worker is the person offering a freelance service.
type Worker struct {
	Name     string `json:"name"`
	Skill    string `json:"skill"`
	Location string `json:"location"`
}

// Rating aggregates reviews of a freelancer.
type Rating struct {
	Score   float64 `json:"score"`
	Reviews int     `json:"reviews"`
}

// FreelanceJob is a gig listing, either posted by a client or offered by a worker.
type FreelanceJob struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	BudgetType  string   `json:"budgetType,omitempty"`
	BudgetMin   float64  `json:"budgetMin,omitempty"`
	BudgetMax   float64  `json:"budgetMax,omitempty"`
	Location    string   `json:"location,omitempty"`
	Skills      []string `json:"skills"`
	Description string   `json:"description,omitempty"`
	Pay         string   `json:"pay,omitempty"`
	Worker      *Worker  `json:"worker,omitempty"`
	Rating      *Rating  `json:"rating,omitempty"`
	PostedAt    Date     `json:"postedAt"`
}

// CreateFreelanceJobRequest is the body of POST /api/jobs/freelance.
type CreateFreelanceJobRequest struct {
	Title       string   `json:"title" validate:"required"`
	BudgetType  string   `json:"budgetType" validate:"required,oneof=fixed hourly daily"`
	BudgetMin   float64  `json:"budgetMin" validate:"gte=0"`
	BudgetMax   float64  `json:"budgetMax" validate:"gte=0,gtefield=BudgetMin"`
	Location    string   `json:"location"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
}

// Applicant is the person applying to an internship.
type Applicant struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Application records one applicant applying to one internship.
type Application struct {
	ID           string    `json:"id"`
	InternshipID string    `json:"internshipId"`
	Applicant    Applicant `json:"applicant"`
	At           time.Time `json:"at"`
}

// CreateApplicationRequest is the body of POST /api/applications.
type CreateApplicationRequest struct {
	InternshipID string     `json:"internshipId"`
	Applicant    *Applicant `json:"applicant"`
}

// RecruiterStatus is the verification state of the recruiter account.
type RecruiterStatus struct {
	Verified bool `json:"verified"`
}
