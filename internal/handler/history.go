package handler

import (
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/erd-lab/procatalog/internal/resputil"
	"github.com/erd-lab/procatalog/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewHistoryMgr)
}

// HistoryMgr exposes the deployment's git history to the admin dashboard.
// Inside a container without a .git directory it falls back to a synthetic
// commit built from GIT_COMMIT_SHA injected at build time.
type HistoryMgr struct {
	name string
}

func NewHistoryMgr(_ *RegisterConfig) Manager {
	return &HistoryMgr{name: "history"}
}

func (mgr *HistoryMgr) GetName() string { return mgr.name }

func (mgr *HistoryMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *HistoryMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *HistoryMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("git-history", mgr.GetGitHistory)
}

type (
	Commit struct {
		ID      string   `json:"id"`
		Parents []string `json:"parents"`
		Author  string   `json:"author"`
		Message string   `json:"message"`
	}

	GitHistoryResp struct {
		Commits []Commit `json:"commits"`
	}
)

const gitLogDelimiter = "||||"

// GetGitHistory godoc
// @Summary deployment git history
// @Tags history
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[GitHistoryResp]
// @Failure 503 {object} resputil.Response[any] "no git repository and no build metadata"
// @Router /v1/admin/git-history [get]
func (mgr *HistoryMgr) GetGitHistory(c *gin.Context) {
	repoDir := findRepoDir()

	if repoDir == "" {
		sha := os.Getenv("GIT_COMMIT_SHA")
		if sha == "" {
			logutils.Log.Error("no .git directory and no GIT_COMMIT_SHA")
			resputil.HTTPError(c, http.StatusServiceUnavailable, "version information unavailable", resputil.NotSpecified)
			return
		}
		logutils.Log.Warnf("no .git directory, using GIT_COMMIT_SHA %s", sha)
		resputil.Success(c, GitHistoryResp{Commits: []Commit{{
			ID:      sha[:min(7, len(sha))],
			Parents: []string{},
			Author:  "Build System",
			Message: "Deployment Artifact (" + sha + ") - history unavailable in container",
		}}})
		return
	}

	cmd := exec.CommandContext(c.Request.Context(), "git", "log", "--all",
		"--pretty=format:%h"+gitLogDelimiter+"%p"+gitLogDelimiter+"%an"+gitLogDelimiter+"%s",
		"-n", "100")
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		logutils.Log.Error("git log failed: ", err)
		resputil.Success(c, GitHistoryResp{Commits: []Commit{{
			ID:      "unknown",
			Parents: []string{},
			Author:  "System",
			Message: "Error retrieving git logs",
		}}})
		return
	}

	lines := lo.Filter(strings.Split(strings.TrimSpace(string(out)), "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})
	commits := make([]Commit, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, gitLogDelimiter)
		if len(parts) < 4 {
			continue
		}
		commits = append(commits, Commit{
			ID:      parts[0],
			Parents: strings.Fields(parts[1]),
			Author:  parts[2],
			Message: parts[3],
		})
	}
	resputil.Success(c, GitHistoryResp{Commits: commits})
}

// findRepoDir walks up from the working directory looking for a .git
// directory, a handful of levels at most.
func findRepoDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for range 4 {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
