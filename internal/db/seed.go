package db

import (
	"time"

	"github.com/jonathan/jobboard/internal/types"
)

func seedDate(s string) types.Date {
	t, _ := time.Parse(types.DateLayout, s)
	return types.NewDate(t)
}

// SeedInternships returns the sample internships a fresh board starts with.
func SeedInternships() []types.JobRecord {
	return []types.JobRecord{
		{
			ID:          "i1",
			Title:       "Frontend Intern",
			Company:     "Acme",
			Location:    "Remote",
			Skills:      []string{"React", "Tailwind"},
			Description: "Work on UI components and Tailwind styling for our dashboard.",
			PostedAt:    seedDate("2025-09-01"),
			Recruiter:   &types.Recruiter{Name: "Sarah Johnson", Username: "sarahj", Company: "Acme Corp", Title: "Frontend Lead"},
		},
		{
			ID:          "i2",
			Title:       "Backend Intern",
			Company:     "Globex",
			Location:    "Chennai",
			Skills:      []string{"Node", "MongoDB"},
			Description: "Assist in building APIs and optimizing database queries.",
			PostedAt:    seedDate("2025-08-26"),
			Recruiter:   &types.Recruiter{Name: "Raj Patel", Username: "rajp", Company: "Globex Technologies", Title: "Backend Manager"},
		},
		{
			ID:          "i3",
			Title:       "Data Intern",
			Company:     "Initech",
			Location:    "Remote",
			Skills:      []string{"Python", "NLP"},
			Description: "Analyze datasets and help prototype NLP models.",
			PostedAt:    seedDate("2025-09-10"),
			Recruiter:   &types.Recruiter{Name: "Dr. Emily Chen", Username: "emilyc", Company: "Initech Labs", Title: "Data Science Director"},
		},
	}
}

// SeedFreelanceJobs returns the sample freelancers a fresh board starts with.
func SeedFreelanceJobs() []types.FreelanceJob {
	return []types.FreelanceJob{
		{
			ID:       "f1",
			Title:    "Electrician",
			Location: "Chennai",
			Skills:   []string{},
			Pay:      "₹600/day",
			Worker:   &types.Worker{Name: "Ravi", Skill: "Electrician", Location: "Chennai"},
			Rating:   &types.Rating{Score: 4.7, Reviews: 210},
		},
		{
			ID:       "f2",
			Title:    "Plumber",
			Location: "Bangalore",
			Skills:   []string{},
			Pay:      "₹700/day",
			Worker:   &types.Worker{Name: "Arjun", Skill: "Plumber", Location: "Bangalore"},
			Rating:   &types.Rating{Score: 4.4, Reviews: 90},
		},
	}
}
