package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/jobboard/internal/events"
	"github.com/jonathan/jobboard/internal/progress"
	"github.com/jonathan/jobboard/internal/types"
	"go.uber.org/zap"
)

// handleListApplications returns all applications, newest first.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListApplications(r.Context())
	if err != nil {
		s.storeError(w, "listing applications", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

// handleCreateApplication records an application. Applying twice with the
// same email returns the first record.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req types.CreateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.InternshipID = strings.TrimSpace(req.InternshipID)
	if req.InternshipID == "" {
		s.errorResponse(w, http.StatusBadRequest, "internshipId required")
		return
	}
	if req.Applicant == nil || strings.TrimSpace(req.Applicant.Name) == "" || strings.TrimSpace(req.Applicant.Email) == "" {
		s.errorResponse(w, http.StatusBadRequest, "name and email required")
		return
	}
	applicant := types.Applicant{
		Name:  strings.TrimSpace(req.Applicant.Name),
		Email: strings.TrimSpace(req.Applicant.Email),
	}
	if err := s.validate.Struct(applicant); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid email")
		return
	}

	if _, err := s.store.GetInternship(r.Context(), req.InternshipID); err != nil {
		if storeNotFound(err) {
			s.errorResponse(w, http.StatusNotFound, "Internship not found")
			return
		}
		s.storeError(w, "getting internship", err)
		return
	}

	app, err := s.store.AddApplication(r.Context(), req.InternshipID, applicant)
	if err != nil {
		s.storeError(w, "adding application", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{"item": app})
}

// handleListBookmarks returns the bookmarked internships of the caller.
func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListBookmarks(r.Context(), userKey(r))
	if err != nil {
		s.storeError(w, "listing bookmarks", err)
		return
	}
	internships, err := s.store.ListInternships(r.Context())
	if err != nil {
		s.storeError(w, "listing internships", err)
		return
	}

	marked := make(map[string]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	items := make([]types.JobRecord, 0, len(ids))
	for _, it := range internships {
		if marked[it.ID] {
			items = append(items, it)
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": items})
}

type toggleBookmarkRequest struct {
	InternshipID string `json:"internshipId"`
}

// handleToggleBookmark flips the caller's bookmark on an internship.
func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	var req toggleBookmarkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.InternshipID) == "" {
		s.errorResponse(w, http.StatusBadRequest, "internshipId required")
		return
	}

	added, err := s.store.ToggleBookmark(r.Context(), userKey(r), strings.TrimSpace(req.InternshipID))
	if err != nil {
		s.storeError(w, "toggling bookmark", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"added": added})
}

// handleGetRecruiter returns the recruiter verification state.
func (s *Server) handleGetRecruiter(w http.ResponseWriter, r *http.Request) {
	status, err := s.store.GetRecruiter(r.Context())
	if err != nil {
		s.storeError(w, "getting recruiter", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"recruiter": status})
}

type setRecruiterRequest struct {
	Verified bool `json:"verified"`
}

// handleSetRecruiter sets the recruiter verification state.
func (s *Server) handleSetRecruiter(w http.ResponseWriter, r *http.Request) {
	var req setRecruiterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := s.store.SetRecruiterVerified(r.Context(), req.Verified)
	if err != nil {
		s.storeError(w, "setting recruiter", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"recruiter": status})
}

// loadProgress returns the caller's tracker, or a fresh one if none is stored.
func (s *Server) loadProgress(r *http.Request, key string) (types.Progress, error) {
	p, err := s.store.GetProgress(r.Context(), key)
	if storeNotFound(err) {
		return progress.New(s.now()), nil
	}
	return p, err
}

// handleGetProgress returns the caller's application progress.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.loadProgress(r, userKey(r))
	if err != nil {
		s.storeError(w, "getting progress", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleUpdateProgress moves the caller's application to the requested stage.
// An empty stage leaves the tracker unchanged.
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	key := userKey(r)
	current, err := s.loadProgress(r, key)
	if err != nil {
		s.storeError(w, "getting progress", err)
		return
	}
	if strings.TrimSpace(req.Current) == "" {
		s.jsonResponse(w, http.StatusOK, current)
		return
	}

	next, err := progress.Advance(current, strings.TrimSpace(req.Current), s.now())
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SaveProgress(r.Context(), key, next); err != nil {
		s.storeError(w, "saving progress", err)
		return
	}

	events.Notify(r.Context(), s.publisher, s.logger, events.ChannelProgressChanged, map[string]string{
		"user": key,
		"from": current.Current,
		"to":   next.Current,
		"date": next.Timeline[len(next.Timeline)-1].Date,
	})
	s.jsonResponse(w, http.StatusOK, next)
}

// handleListEvents returns the recorded analytics events.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.storeError(w, "listing events", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"events": list})
}

// handleTrack records an analytics event and fans it out.
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req types.TrackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Type = strings.TrimSpace(req.Type)
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "type required")
		return
	}

	ev, err := s.store.AddEvent(r.Context(), types.Event{Type: req.Type, Payload: req.Payload})
	if err != nil {
		s.storeError(w, "adding event", err)
		return
	}

	s.logger.Debug("event tracked", zap.String("type", ev.Type), zap.String("user", userKey(r)))
	events.Notify(r.Context(), s.publisher, s.logger, events.ChannelTracked, ev)
	s.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleListVoiceNotes returns the stored voice transcripts.
func (s *Server) handleListVoiceNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.store.ListVoiceNotes(r.Context())
	if err != nil {
		s.storeError(w, "listing voice notes", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": notes})
}

// handleCreateVoiceNote stores a voice transcript.
func (s *Server) handleCreateVoiceNote(w http.ResponseWriter, r *http.Request) {
	var req types.VoiceNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Transcript = strings.TrimSpace(req.Transcript)
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "transcript required")
		return
	}

	if _, err := s.store.AddVoiceNote(r.Context(), types.VoiceNote{Transcript: req.Transcript}); err != nil {
		s.storeError(w, "adding voice note", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}
