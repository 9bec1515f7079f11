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

func TestTaskLifecycle(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	code, env := s.do(t, http.MethodPost, "/v1/tasks", auth, gin.H{"title": "Revisar acta"})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	task := decodeData[model.Task](t, env)
	require.NotNil(t, task.Completed)
	assert.False(t, *task.Completed)

	code, env = s.do(t, http.MethodGet, "/v1/tasks", auth, nil)
	require.Equal(t, http.StatusOK, code)
	list := decodeData[payload.ListResp[model.Task]](t, env)
	assert.EqualValues(t, 1, list.Count)

	path := fmt.Sprintf("/v1/tasks/%d", task.ID)
	code, env = s.do(t, http.MethodPut, path, auth, gin.H{"title": "Revisar acta", "completed": true})
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	task = decodeData[model.Task](t, env)
	require.NotNil(t, task.Completed)
	assert.True(t, *task.Completed)

	code, _ = s.do(t, http.MethodDelete, path, auth, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodDelete, path, auth, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTaskValidation(t *testing.T) {
	s := newTestServer(t)
	auth := s.bearer(t)

	code, _ := s.do(t, http.MethodPost, "/v1/tasks", auth, gin.H{"completed": true})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPut, "/v1/tasks/9999", auth, gin.H{"title": "Fantasma"})
	assert.Equal(t, http.StatusNotFound, code)
}
