package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-lab/procatalog/dao/model"
	"github.com/erd-lab/procatalog/internal/payload"
)

func createDepartment(t *testing.T, s *testServer, auth, name string, parentID *uint) model.Department {
	t.Helper()
	body := gin.H{"name": name}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	code, env := s.do(t, http.MethodPost, "/v1/departments", auth, body)
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	return decodeData[model.Department](t, env)
}

func TestDepartmentTree(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	root := createDepartment(t, s, auth, "Tecnología", nil)
	createDepartment(t, s, auth, "Desarrollo", &root.ID)
	createDepartment(t, s, auth, "Infraestructura", &root.ID)
	createDepartment(t, s, auth, "Finanzas", nil)

	// The listing returns top-level nodes with their children preloaded.
	code, env := s.do(t, http.MethodGet, "/v1/departments", auth, nil)
	require.Equal(t, http.StatusOK, code)
	list := decodeData[payload.ListResp[model.Department]](t, env)
	require.EqualValues(t, 2, list.Count)
	assert.Equal(t, "Finanzas", list.Rows[0].Name)
	assert.Equal(t, "Tecnología", list.Rows[1].Name)
	assert.Len(t, list.Rows[1].Children, 2)
	assert.Empty(t, list.Rows[0].Children)

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/v1/departments/%d", root.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)
	got := decodeData[model.Department](t, env)
	assert.Len(t, got.Children, 2)
}

func TestCreateDepartmentUnknownParent(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	code, _ := s.do(t, http.MethodPost, "/v1/departments", auth, gin.H{
		"name":      "Huérfano",
		"parent_id": 9999,
	})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUpdateDepartmentRejectsSelfParent(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	d := createDepartment(t, s, auth, "Tecnología", nil)
	code, _ := s.do(t, http.MethodPut, fmt.Sprintf("/v1/departments/%d", d.ID), auth, gin.H{
		"name":      "Tecnología",
		"parent_id": d.ID,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, fmt.Sprintf("/v1/departments/%d", d.ID), auth, gin.H{
		"name":      "Tecnología",
		"parent_id": 9999,
	})
	assert.Equal(t, http.StatusNotFound, code)

	code, env := s.do(t, http.MethodPut, fmt.Sprintf("/v1/departments/%d", d.ID), auth, gin.H{
		"name":  "TI",
		"color": "bg-blue-200",
	})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	got := decodeData[model.Department](t, env)
	assert.Equal(t, "TI", got.Name)
	assert.Equal(t, "bg-blue-200", got.Color)
}

func TestUpdateDepartmentRejectsDescendantParent(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	root := createDepartment(t, s, auth, "Tecnología", nil)
	child := createDepartment(t, s, auth, "Desarrollo", &root.ID)
	grandchild := createDepartment(t, s, auth, "Backend", &child.ID)

	// Moving the root under any of its descendants would create a cycle.
	for _, parent := range []uint{child.ID, grandchild.ID} {
		code, _ := s.do(t, http.MethodPut, fmt.Sprintf("/v1/departments/%d", root.ID), auth, gin.H{
			"name":      "Tecnología",
			"parent_id": parent,
		})
		assert.Equal(t, http.StatusBadRequest, code)
	}

	// The tree is intact and the subtree delete still terminates.
	code, _ := s.do(t, http.MethodDelete, fmt.Sprintf("/v1/departments/%d", root.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)
	for _, id := range []uint{root.ID, child.ID, grandchild.ID} {
		code, _ = s.do(t, http.MethodGet, fmt.Sprintf("/v1/departments/%d", id), auth, nil)
		assert.Equal(t, http.StatusNotFound, code)
	}
}

// Pre-existing bad data must not hang the walk: force a two-node cycle
// directly in the table and delete one of the nodes.
func TestDeleteDepartmentTerminatesOnCorruptTree(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	a := createDepartment(t, s, auth, "Tecnología", nil)
	b := createDepartment(t, s, auth, "Desarrollo", &a.ID)
	require.NoError(t, s.db.Model(&model.Department{}).Where("id = ?", a.ID).
		Update("parent_id", b.ID).Error)

	code, _ := s.do(t, http.MethodDelete, fmt.Sprintf("/v1/departments/%d", a.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)
	for _, id := range []uint{a.ID, b.ID} {
		code, _ = s.do(t, http.MethodGet, fmt.Sprintf("/v1/departments/%d", id), auth, nil)
		assert.Equal(t, http.StatusNotFound, code)
	}
}

func TestDeleteDepartmentSubtree(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	root := createDepartment(t, s, auth, "Tecnología", nil)
	child := createDepartment(t, s, auth, "Desarrollo", &root.ID)
	grandchild := createDepartment(t, s, auth, "Backend", &child.ID)
	other := createDepartment(t, s, auth, "Finanzas", nil)

	// A customization scoped to a node of the subtree survives the delete
	// with its department reference cleared.
	p := createProcess(t, s, auth, "pmbok-processes", 1, "Develop Project Charter")
	code, env := s.do(t, http.MethodPost, "/v1/customizations", auth, gin.H{
		"taxonomy":      "pmbok",
		"process_id":    p.ID,
		"country_code":  "CO",
		"department_id": grandchild.ID,
		"inputs":        []gin.H{{"name": "Lista backend", "link": ""}},
	})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	cust := decodeData[model.Customization](t, env)

	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/departments/%d", root.ID), auth, nil)
	require.Equal(t, http.StatusOK, code)

	for _, id := range []uint{root.ID, child.ID, grandchild.ID} {
		code, _ = s.do(t, http.MethodGet, fmt.Sprintf("/v1/departments/%d", id), auth, nil)
		assert.Equal(t, http.StatusNotFound, code)
	}
	code, _ = s.do(t, http.MethodGet, fmt.Sprintf("/v1/departments/%d", other.ID), auth, nil)
	assert.Equal(t, http.StatusOK, code)

	var got model.Customization
	require.NoError(t, s.db.First(&got, cust.ID).Error)
	assert.Nil(t, got.DepartmentID)
	assert.Equal(t, "Lista backend", got.Inputs[0].Name)
}

func TestDeleteDepartmentNotFound(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	code, _ := s.do(t, http.MethodDelete, "/v1/departments/9999", auth, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
