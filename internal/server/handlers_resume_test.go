package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonathan/jobboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSuggestions(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/suggestions?q=python+nlp", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	items := decodeBody[itemsResponse[types.ScoredJobRecord]](t, w).Items
	require.Len(t, items, 3)
	assert.Equal(t, "i3", items[0].ID)
	assert.Equal(t, "Matches skills: Python, NLP", items[0].Reason)
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].Score, items[i].Score)
	}

	w = ts.do(t, http.MethodGet, "/api/suggestions?q=chennai", nil, "")
	items = decodeBody[itemsResponse[types.ScoredJobRecord]](t, w).Items
	require.NotEmpty(t, items)
	assert.Equal(t, "i2", items[0].ID)
	assert.Equal(t, "Near your location", items[0].Reason)

	w = ts.do(t, http.MethodGet, "/api/suggestions", nil, "")
	items = decodeBody[itemsResponse[types.ScoredJobRecord]](t, w).Items
	require.Len(t, items, 3)
	for _, it := range items {
		assert.Empty(t, it.Reason)
	}
}

func TestHandleResumeAnalyze(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/resume-analyze", map[string]string{
		"text": "Jane Doe\njane.doe@example.com\nBuilt React apps and Python NLP pipelines. More python.",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[types.ResumeAnalysis](t, w)
	assert.Equal(t, "Jane Doe", resp.Parsed.Name)
	assert.Equal(t, "jane.doe@example.com", resp.Parsed.Email)
	assert.Equal(t, []string{"react", "python", "nlp"}, resp.Parsed.Skills)
	assert.Equal(t, []string{"typescript", "testing", "docker"}, resp.SuggestedSkills)

	w = ts.do(t, http.MethodPost, "/api/resume-analyze", map[string]string{}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"parsed":{"name":"","email":"","skills":[],"education":[],"experience":[]},"suggestedSkills":["typescript","testing","docker"]}`,
		w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/resume-analyze", "not json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resume-analyze/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleResumeUpload(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantName   string
	}{
		{
			name: "text file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "cv.txt", []byte("Sam Lee, Node developer\nsam@example.com"))
			},
			wantStatus: http.StatusOK,
			wantName:   "Sam Lee",
		},
		{
			name: "html file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "cv.HTML", []byte("<html><body><p>Kim Park</p><p>kim@example.com tailwind</p></body></html>"))
			},
			wantStatus: http.StatusOK,
			wantName:   "Kim Park",
		},
		{
			name: "unsupported type",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "file", "cv.exe", []byte("MZ"))
			},
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name: "wrong field",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "resume", "cv.txt", []byte("Sam"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/resume-analyze/upload", bytes.NewReader([]byte("{}")))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ts.handler.ServeHTTP(w, tt.req(t))

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, decodeBody[map[string]string](t, w)["error"])
				return
			}
			resp := decodeBody[types.ResumeAnalysis](t, w)
			assert.Equal(t, tt.wantName, resp.Parsed.Name)
			assert.NotEmpty(t, resp.Parsed.Email)
		})
	}
}

func TestHandleResumeUpload_TooLarge(t *testing.T) {
	ts := newTestServer(t)

	big := bytes.Repeat([]byte("a"), 12<<20)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, uploadRequest(t, "file", "cv.txt", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "File too large", decodeBody[map[string]string](t, w)["error"])
}
