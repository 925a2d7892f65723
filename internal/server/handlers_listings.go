package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/jobboard/internal/db"
	"github.com/jonathan/jobboard/internal/server/middleware"
	"github.com/jonathan/jobboard/internal/textutil"
	"github.com/jonathan/jobboard/internal/types"
	"go.uber.org/zap"
)

// handleListInternships returns all internships, or one when ?id= is given.
func (s *Server) handleListInternships(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		s.writeInternship(w, r, id)
		return
	}

	items, err := s.store.ListInternships(r.Context())
	if err != nil {
		s.storeError(w, "listing internships", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// handleGetInternship returns one internship by path id.
func (s *Server) handleGetInternship(w http.ResponseWriter, r *http.Request) {
	s.writeInternship(w, r, r.PathValue("id"))
}

func (s *Server) writeInternship(w http.ResponseWriter, r *http.Request, id string) {
	item, err := s.store.GetInternship(r.Context(), id)
	if err != nil {
		s.storeError(w, "getting internship", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"item": item})
}

// handleCreateInternship posts a listing for the authenticated recruiter.
func (s *Server) handleCreateInternship(w http.ResponseWriter, r *http.Request) {
	var req types.CreateInternshipRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Company = strings.TrimSpace(req.Company)
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "title and company are required")
		return
	}

	description, err := textutil.StripHTML(req.Description)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid description")
		return
	}

	recruiter := req.Recruiter
	if recruiter == nil || strings.TrimSpace(recruiter.Name) == "" {
		recruiter = s.currentRecruiter(r, req.Company)
	}

	created, err := s.store.CreateInternship(r.Context(), types.JobRecord{
		Title:       req.Title,
		Company:     req.Company,
		Location:    strings.TrimSpace(req.Location),
		Skills:      cleanSkills(req.Skills),
		Description: description,
		PostedAt:    req.PostedAt,
		Recruiter:   recruiter,
	})
	if err != nil {
		s.storeError(w, "creating internship", err)
		return
	}

	s.logger.Info("internship created", zap.String("id", created.ID), zap.String("company", created.Company))
	s.jsonResponse(w, http.StatusCreated, map[string]any{"item": created})
}

// currentRecruiter builds the recruiter of a new listing from the authenticated account.
func (s *Server) currentRecruiter(r *http.Request, company string) *types.Recruiter {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil
	}
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		if err != nil {
			s.logger.Warn("looking up recruiter", zap.Error(err))
		}
		return nil
	}
	return &types.Recruiter{
		Name:     user.Username,
		Username: strings.ToLower(user.Username),
		Company:  company,
	}
}

// handleDeleteInternship removes a listing named by path id or ?id=.
func (s *Server) handleDeleteInternship(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "id required")
		return
	}

	removed, err := s.store.DeleteInternship(r.Context(), id)
	if err != nil {
		s.storeError(w, "deleting internship", err)
		return
	}

	s.logger.Info("internship deleted", zap.String("id", removed.ID), zap.String("user", userKey(r)))
	s.jsonResponse(w, http.StatusOK, map[string]any{"item": removed})
}

// handleListRecruiterInternships returns the listings posted by one recruiter.
func (s *Server) handleListRecruiterInternships(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListInternshipsByRecruiter(r.Context(), r.PathValue("username"))
	if err != nil {
		s.storeError(w, "listing recruiter internships", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// handleListFreelanceJobs returns all freelance gigs.
func (s *Server) handleListFreelanceJobs(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListFreelanceJobs(r.Context())
	if err != nil {
		s.storeError(w, "listing freelance jobs", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// handleCreateFreelanceJob posts a freelance gig.
func (s *Server) handleCreateFreelanceJob(w http.ResponseWriter, r *http.Request) {
	var req types.CreateFreelanceJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.BudgetType = strings.ToLower(strings.TrimSpace(req.BudgetType))
	if req.Title == "" || req.BudgetType == "" {
		s.errorResponse(w, http.StatusBadRequest, "title and budgetType required")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, freelanceValidationMessage(err))
		return
	}

	description, err := textutil.StripHTML(req.Description)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid description")
		return
	}

	created, err := s.store.CreateFreelanceJob(r.Context(), types.FreelanceJob{
		Title:       req.Title,
		BudgetType:  req.BudgetType,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Location:    strings.TrimSpace(req.Location),
		Skills:      cleanSkills(req.Skills),
		Description: description,
	})
	if err != nil {
		s.storeError(w, "creating freelance job", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{"item": created})
}

func freelanceValidationMessage(err error) string {
	msg := extractValidationErrors(err)
	switch {
	case strings.HasPrefix(msg, "Invalid budgetType"):
		return "budgetType must be one of fixed, hourly, daily"
	case strings.HasPrefix(msg, "Invalid budgetMax"):
		return "budgetMax must not be below budgetMin"
	case strings.HasPrefix(msg, "Invalid budgetMin"):
		return "budgetMin must not be negative"
	}
	return msg
}

// storeNotFound reports whether err means the record is missing.
func storeNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}
