package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-lab/procatalog/internal/handler"
	"github.com/erd-lab/procatalog/internal/resputil"
)

func TestGitHistoryRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/v1/admin/git-history", s.bearer(t), nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, resputil.UserNotAllowed, env.Code)

	code, _ = s.do(t, http.MethodGet, "/v1/admin/git-history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestGitHistoryAsAdmin(t *testing.T) {
	s := newTestServer(t)

	// With build metadata present the endpoint always has something to
	// serve, repository or not.
	t.Setenv("GIT_COMMIT_SHA", "abc1234def5678")

	code, env := s.do(t, http.MethodGet, "/v1/admin/git-history", s.adminBearer(t), nil)
	require.Equal(t, http.StatusOK, code, "msg: %s", env.Msg)
	resp := decodeData[handler.GitHistoryResp](t, env)
	assert.NotEmpty(t, resp.Commits)
	for _, commit := range resp.Commits {
		assert.NotEmpty(t, commit.ID)
	}
}
