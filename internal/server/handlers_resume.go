package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/jobboard/internal/resume"
	"github.com/jonathan/jobboard/internal/types"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for the form boundary and headers around the file part.
const multipartOverhead = 1 << 20

// handleSuggestions ranks every internship against ?q=.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	items, err := s.store.ListInternships(r.Context())
	if err != nil {
		s.storeError(w, "listing internships", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"items": s.ranker.Rank(query, items)})
}

// handleResumeAnalyze extracts fields from pasted resume text.
func (s *Server) handleResumeAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalyzeResumeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.jsonResponse(w, http.StatusOK, s.extractor.Extract(req.Text))
}

// handleResumeUpload extracts fields from an uploaded resume document.
func (s *Server) handleResumeUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, resume.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(resume.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Expected a multipart form with a file field")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	if header.Size > resume.MaxUploadBytes {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	text, err := resume.ReadDocument(header.Filename, file)
	if err != nil {
		var unsupported *resume.UnsupportedTypeError
		if errors.As(err, &unsupported) {
			s.errorResponse(w, http.StatusUnsupportedMediaType, unsupported.Error())
			return
		}
		s.logger.Warn("reading resume document", zap.String("filename", header.Filename), zap.Error(err))
		s.errorResponse(w, http.StatusUnprocessableEntity, "Could not read document")
		return
	}

	s.jsonResponse(w, http.StatusOK, s.extractor.Extract(text))
}
