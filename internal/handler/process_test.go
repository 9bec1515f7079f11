package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-lab/procatalog/dao/model"
	"github.com/erd-lab/procatalog/internal/handler"
	"github.com/erd-lab/procatalog/internal/payload"
	"github.com/erd-lab/procatalog/internal/resputil"
	"github.com/erd-lab/procatalog/internal/util"
)

func createProcess(t *testing.T, s *testServer, auth, catalog string, number int, name string) handler.ProcessResp {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/v1/"+catalog, auth, gin.H{
		"number": number,
		"name":   name,
		"inputs": []gin.H{{"name": "Project charter", "link": ""}},
		"tools":  []gin.H{{"name": "Expert judgment", "link": ""}},
		"outputs": []gin.H{
			{"name": "Project management plan", "link": "https://example.com/pmp"},
		},
	})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	return decodeData[handler.ProcessResp](t, env)
}

func TestListProcessesOrderedByNumber(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	for _, n := range []int{7, 2, 5} {
		createProcess(t, s, auth, "pmbok-processes", n, fmt.Sprintf("Process %d", n))
	}
	// A scrum process must not leak into the pmbok listing.
	createProcess(t, s, auth, "scrum-processes", 1, "Sprint Planning")

	code, env := s.do(t, http.MethodGet, "/v1/pmbok-processes", auth, nil)
	require.Equal(t, http.StatusOK, code)
	list := decodeData[payload.ListResp[handler.ProcessResp]](t, env)
	require.EqualValues(t, 3, list.Count)
	assert.Equal(t, []int{2, 5, 7}, []int{list.Rows[0].Number, list.Rows[1].Number, list.Rows[2].Number})

	code, env = s.do(t, http.MethodGet, "/v1/scrum-processes", auth, nil)
	require.Equal(t, http.StatusOK, code)
	list = decodeData[payload.ListResp[handler.ProcessResp]](t, env)
	assert.EqualValues(t, 1, list.Count)
	assert.Equal(t, "Sprint Planning", list.Rows[0].Name)
}

func TestCreateProcessDuplicateNumber(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	createProcess(t, s, auth, "pmbok-processes", 1, "Develop Project Charter")
	code, env := s.do(t, http.MethodPost, "/v1/pmbok-processes", auth, gin.H{
		"number": 1,
		"name":   "Duplicate",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvalidRequest, env.Code)

	// The same number is free in the other catalog.
	createProcess(t, s, auth, "scrum-processes", 1, "Sprint Planning")
}

func TestCreateProcessRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	code, _ := s.do(t, http.MethodPost, "/v1/pmbok-processes", auth, gin.H{
		"number":        1,
		"name":          "Bad status",
		"kanban_status": "doing",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/v1/pmbok-processes", auth, gin.H{
		"number": 1,
		"name":   "Nameless item",
		"inputs": []gin.H{{"name": "", "link": "https://example.com"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestGetProcessNotFound(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	code, env := s.do(t, http.MethodGet, "/v1/pmbok-processes/9999", auth, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, resputil.NotFound, env.Code)

	// Cross-catalog ids behave like unknown ones.
	p := createProcess(t, s, auth, "scrum-processes", 1, "Daily Scrum")
	code, _ = s.do(t, http.MethodGet, fmt.Sprintf("/v1/pmbok-processes/%d", p.ID), auth, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUpdateProcessSparseAndFull(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	p := createProcess(t, s, auth, "pmbok-processes", 4, "Develop Project Charter")
	path := fmt.Sprintf("/v1/pmbok-processes/%d", p.ID)

	// PATCH touches only the fields present.
	code, env := s.do(t, http.MethodPatch, path, auth, gin.H{"name": "Renamed"})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	got := decodeData[handler.ProcessResp](t, env)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 4, got.Number)
	assert.Len(t, got.Inputs, 1)

	// PUT without the required fields fails.
	code, _ = s.do(t, http.MethodPut, path, auth, gin.H{"name": "Only name"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPut, path, auth, gin.H{
		"number": 4,
		"name":   "Replaced",
		"inputs": []gin.H{{"name": "Business documents", "link": ""}},
	})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	got = decodeData[handler.ProcessResp](t, env)
	assert.Equal(t, "Replaced", got.Name)
	assert.Equal(t, "Business documents", got.Inputs[0].Name)
}

func TestUpdateProcessDuplicateNumber(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	createProcess(t, s, auth, "pmbok-processes", 1, "Develop Project Charter")
	p2 := createProcess(t, s, auth, "pmbok-processes", 2, "Develop Project Management Plan")
	path := fmt.Sprintf("/v1/pmbok-processes/%d", p2.ID)

	// Renumbering onto a taken number fails the same way create does.
	code, env := s.do(t, http.MethodPatch, path, auth, gin.H{"number": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvalidRequest, env.Code)

	// Keeping the own number and moving to a free one both pass.
	code, _ = s.do(t, http.MethodPatch, path, auth, gin.H{"number": 2})
	assert.Equal(t, http.StatusOK, code)
	code, env = s.do(t, http.MethodPatch, path, auth, gin.H{"number": 3})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	got := decodeData[handler.ProcessResp](t, env)
	assert.Equal(t, 3, got.Number)
}

func TestScopedReadResolvesCustomization(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	p := createProcess(t, s, auth, "pmbok-processes", 1, "Develop Project Charter")

	// Override only the inputs for Colombia; tools and outputs stay sparse.
	code, env := s.do(t, http.MethodPost, "/v1/customizations", auth, gin.H{
		"taxonomy":     "pmbok",
		"process_id":   p.ID,
		"country_code": "co",
		"inputs":       []gin.H{{"name": "Acta de constitución", "link": ""}},
	})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	cust := decodeData[model.Customization](t, env)
	assert.Equal(t, "CO", cust.CountryCode)
	assert.Equal(t, model.KanbanUnassigned, cust.KanbanStatus)

	// Scoped read: overridden list from the customization, untouched lists
	// from the base, kanban always from the customization.
	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/v1/pmbok-processes/%d?country=CO", p.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)
	got := decodeData[handler.ProcessResp](t, env)
	require.NotNil(t, got.Customization)
	assert.Equal(t, "Acta de constitución", got.Inputs[0].Name)
	assert.Equal(t, "Expert judgment", got.Tools[0].Name)
	assert.Equal(t, "Project management plan", got.Outputs[0].Name)
	assert.Equal(t, model.KanbanUnassigned, got.KanbanStatus)

	// Country matching is case-insensitive.
	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/v1/pmbok-processes/%d?country=co", p.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)
	got = decodeData[handler.ProcessResp](t, env)
	require.NotNil(t, got.Customization)
	assert.Equal(t, "Acta de constitución", got.Inputs[0].Name)

	// A scope without a customization falls back to the base view.
	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/v1/pmbok-processes/%d?country=MX", p.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)
	got = decodeData[handler.ProcessResp](t, env)
	assert.Nil(t, got.Customization)
	assert.Equal(t, "Project charter", got.Inputs[0].Name)
}

func TestScopedReadRejectsBadCountry(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	code, _ := s.do(t, http.MethodGet, "/v1/pmbok-processes?country=COL", auth, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBulkUpdateKanbanStatus(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	p1 := createProcess(t, s, auth, "pmbok-processes", 1, "Develop Project Charter")
	p2 := createProcess(t, s, auth, "pmbok-processes", 2, "Develop Project Management Plan")
	other := createProcess(t, s, auth, "scrum-processes", 1, "Sprint Planning")

	code, env := s.do(t, http.MethodPost, "/v1/customizations", auth, gin.H{
		"taxonomy":     "pmbok",
		"process_id":   p1.ID,
		"country_code": "CO",
		"inputs":       []gin.H{{"name": "Caso de negocio", "link": ""}},
	})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)

	// Unknown ids and ids of the other catalog are skipped silently.
	code, env = s.do(t, http.MethodPost, "/v1/pmbok-processes/bulk-update-kanban-status", auth, gin.H{
		"process_ids":   []uint{p1.ID, p2.ID, other.ID, 9999},
		"kanban_status": "done",
	})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	resp := decodeData[handler.BulkKanbanResp](t, env)
	assert.EqualValues(t, 2, resp.UpdatedProcesses)
	assert.EqualValues(t, 1, resp.UpdatedCustomizations)

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/v1/pmbok-processes/%d", p1.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)
	got := decodeData[handler.ProcessResp](t, env)
	assert.Equal(t, model.KanbanDone, got.KanbanStatus)
	require.Len(t, got.Customizations, 1)
	assert.Equal(t, model.KanbanDone, got.Customizations[0].KanbanStatus)

	// The scrum process was not touched.
	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/v1/scrum-processes/%d", other.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)
	got = decodeData[handler.ProcessResp](t, env)
	assert.Equal(t, model.KanbanUnassigned, got.KanbanStatus)
}

func TestBulkUpdateRejectsUnknownStatus(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	code, _ := s.do(t, http.MethodPost, "/v1/pmbok-processes/bulk-update-kanban-status", auth, gin.H{
		"process_ids":   []uint{1},
		"kanban_status": "shipped",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteProcessCascadesCustomizations(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	p := createProcess(t, s, auth, "pmbok-processes", 1, "Develop Project Charter")
	code, env := s.do(t, http.MethodPost, "/v1/customizations", auth, gin.H{
		"taxonomy":     "pmbok",
		"process_id":   p.ID,
		"country_code": "CO",
		"inputs":       []gin.H{{"name": "Caso de negocio", "link": ""}},
	})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)

	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/pmbok-processes/%d", p.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)

	var count int64
	require.NoError(t, s.db.Model(&model.Customization{}).Where("process_id = ?", p.ID).Count(&count).Error)
	assert.Zero(t, count)

	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/pmbok-processes/%d", p.ID), auth, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestProcessRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/v1/pmbok-processes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, resputil.TokenInvalid, env.Code)

	// A refresh token is not an access token.
	_, refresh, err := s.tm.CreateTokens(&util.JWTMessage{AccountID: 1, Email: "user@test.com"})
	require.NoError(t, err)
	code, _ = s.do(t, http.MethodGet, "/v1/pmbok-processes", "Bearer "+refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
