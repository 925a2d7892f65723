package server

import (
	"net/http"
	"testing"

	"github.com/jonathan/jobboard/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

type itemResponse[T any] struct {
	Item T `json:"item"`
}

func TestHandleListInternships(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/internships", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[itemsResponse[types.JobRecord]](t, w)
	require.Len(t, resp.Items, 3)
	ids := []string{resp.Items[0].ID, resp.Items[1].ID, resp.Items[2].ID}
	assert.Equal(t, []string{"i1", "i2", "i3"}, ids)
	assert.Equal(t, "2025-09-01", resp.Items[0].PostedAt.String())
}

func TestHandleGetInternship(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantID     string
	}{
		{name: "query id", path: "/api/internships?id=i2", wantStatus: http.StatusOK, wantID: "i2"},
		{name: "path id", path: "/api/internships/i3", wantStatus: http.StatusOK, wantID: "i3"},
		{name: "missing query id", path: "/api/internships?id=nope", wantStatus: http.StatusNotFound},
		{name: "missing path id", path: "/api/internships/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodGet, tt.path, nil, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "Not found", decodeBody[map[string]string](t, w)["error"])
				return
			}
			assert.Equal(t, tt.wantID, decodeBody[itemResponse[types.JobRecord]](t, w).Item.ID)
		})
	}
}

func TestHandleCreateInternship(t *testing.T) {
	ts := newTestServer(t)
	body := map[string]any{
		"title":       " QA Intern ",
		"company":     "Hooli",
		"location":    "Remote",
		"skills":      []string{"Go", " ", "SQL "},
		"description": "<p>Write <b>tests</b></p><script>alert(1)</script>",
	}

	w := ts.do(t, http.MethodPost, "/api/internships", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := ts.login(t, "Rita")

	w = ts.do(t, http.MethodPost, "/api/internships", map[string]any{"title": "QA Intern"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title and company are required", decodeBody[map[string]string](t, w)["error"])

	w = ts.do(t, http.MethodPost, "/api/internships", "{", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/internships", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeBody[itemResponse[types.JobRecord]](t, w).Item
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "QA Intern", created.Title)
	assert.Equal(t, []string{"Go", "SQL"}, created.Skills)
	assert.NotContains(t, created.Description, "<")
	assert.NotContains(t, created.Description, "alert")
	assert.Contains(t, created.Description, "Write")
	assert.False(t, created.PostedAt.IsZero())
	require.NotNil(t, created.Recruiter)
	assert.Equal(t, "Rita", created.Recruiter.Name)
	assert.Equal(t, "rita", created.Recruiter.Username)
	assert.Equal(t, "Hooli", created.Recruiter.Company)

	w = ts.do(t, http.MethodGet, "/api/internships", nil, "")
	items := decodeBody[itemsResponse[types.JobRecord]](t, w).Items
	require.Len(t, items, 4)
	assert.Equal(t, created.ID, items[0].ID, "new listings come first")

	w = ts.do(t, http.MethodGet, "/api/recruiters/RITA/internships", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	mine := decodeBody[itemsResponse[types.JobRecord]](t, w).Items
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
}

func TestHandleCreateInternship_ExplicitRecruiter(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "rita")

	w := ts.do(t, http.MethodPost, "/api/internships", map[string]any{
		"title":     "Design Intern",
		"company":   "Hooli",
		"postedAt":  "2025-10-01",
		"recruiter": map[string]string{"name": "Gavin", "username": "gavin"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeBody[itemResponse[types.JobRecord]](t, w).Item
	assert.Equal(t, "2025-10-01", created.PostedAt.String())
	require.NotNil(t, created.Recruiter)
	assert.Equal(t, "gavin", created.Recruiter.Username)
}

func TestHandleDeleteInternship(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodDelete, "/api/internships/i1", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := ts.login(t, "rita")

	w = ts.do(t, http.MethodDelete, "/api/internships", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id required", decodeBody[map[string]string](t, w)["error"])

	w = ts.do(t, http.MethodDelete, "/api/internships/i1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "i1", decodeBody[itemResponse[types.JobRecord]](t, w).Item.ID)

	w = ts.do(t, http.MethodDelete, "/api/internships?id=i2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/internships/i1", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/internships", nil, "")
	items := decodeBody[itemsResponse[types.JobRecord]](t, w).Items
	require.Len(t, items, 1)
	assert.Equal(t, "i3", items[0].ID)
}

func TestHandleListRecruiterInternships_Unknown(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/recruiters/nobody/internships", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestHandleFreelanceJobs(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/jobs/freelance", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	seeded := decodeBody[itemsResponse[types.FreelanceJob]](t, w).Items
	require.Len(t, seeded, 2)
	require.NotNil(t, seeded[0].Worker)
	assert.Equal(t, "Ravi", seeded[0].Worker.Name)

	w = ts.do(t, http.MethodPost, "/api/jobs/freelance", map[string]any{"title": "Wiring", "budgetType": "fixed"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := ts.login(t, "client")

	tests := []struct {
		name      string
		body      map[string]any
		wantError string
	}{
		{name: "missing budget type", body: map[string]any{"title": "Wiring"}, wantError: "title and budgetType required"},
		{name: "missing title", body: map[string]any{"budgetType": "fixed"}, wantError: "title and budgetType required"},
		{name: "unknown budget type", body: map[string]any{"title": "Wiring", "budgetType": "weekly"}, wantError: "budgetType must be one of fixed, hourly, daily"},
		{name: "negative min", body: map[string]any{"title": "Wiring", "budgetType": "fixed", "budgetMin": -5}, wantError: "budgetMin must not be negative"},
		{name: "max below min", body: map[string]any{"title": "Wiring", "budgetType": "fixed", "budgetMin": 50, "budgetMax": 10}, wantError: "budgetMax must not be below budgetMin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/jobs/freelance", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantError, decodeBody[map[string]string](t, w)["error"])
		})
	}

	w = ts.do(t, http.MethodPost, "/api/jobs/freelance", map[string]any{
		"title":      "Rewire kitchen",
		"budgetType": "Hourly",
		"budgetMin":  10,
		"budgetMax":  25,
		"skills":     []string{"Electrician"},
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[itemResponse[types.FreelanceJob]](t, w).Item
	assert.Equal(t, "hourly", created.BudgetType)
	assert.Equal(t, 25.0, created.BudgetMax)

	w = ts.do(t, http.MethodGet, "/api/jobs/freelance", nil, "")
	all := decodeBody[itemsResponse[types.FreelanceJob]](t, w).Items
	require.Len(t, all, 3)
	assert.Equal(t, created.ID, all[0].ID)
}
