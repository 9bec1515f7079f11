package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/erd-lab/procatalog/dao/model"
	"github.com/erd-lab/procatalog/internal/payload"
	"github.com/erd-lab/procatalog/internal/resputil"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewTaskMgr)
}

// TaskMgr is the leftover generic to-do feature, kept separate from the
// process catalogs.
type TaskMgr struct {
	name string
	db   *gorm.DB
}

func NewTaskMgr(conf *RegisterConfig) Manager {
	return &TaskMgr{
		name: "tasks",
		db:   conf.DB,
	}
}

func (mgr *TaskMgr) GetName() string { return mgr.name }

func (mgr *TaskMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TaskMgr) RegisterProtected(g *gin.RouterGroup) {
	gt := g.Group("tasks")
	gt.GET("", mgr.ListTasks)
	gt.POST("", mgr.CreateTask)
	gt.PUT("/:id", mgr.UpdateTask)
	gt.DELETE("/:id", mgr.DeleteTask)
}

func (mgr *TaskMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	TaskIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	TaskReq struct {
		Title     string `json:"title" binding:"required"`
		Completed *bool  `json:"completed"`
	}
)

// ListTasks godoc
// @Summary list tasks
// @Tags task
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[payload.ListResp[model.Task]]
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/tasks [get]
func (mgr *TaskMgr) ListTasks(c *gin.Context) {
	var tasks []model.Task
	if err := mgr.db.WithContext(c).Order("created_at desc").Find(&tasks).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to list tasks: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.NewListResp(tasks))
}

// CreateTask godoc
// @Summary create a task
// @Tags task
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body TaskReq true "task fields"
// @Success 200 {object} resputil.Response[model.Task]
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Router /v1/tasks [post]
func (mgr *TaskMgr) CreateTask(c *gin.Context) {
	var req TaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}
	task := model.Task{Title: req.Title, Completed: &completed}
	if err := mgr.db.WithContext(c).Create(&task).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to create task: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, task)
}

// UpdateTask godoc
// @Summary update a task
// @Tags task
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "task id"
// @Param data body TaskReq true "task fields"
// @Success 200 {object} resputil.Response[model.Task]
// @Failure 404 {object} resputil.Response[any] "task not found"
// @Router /v1/tasks/{id} [put]
func (mgr *TaskMgr) UpdateTask(c *gin.Context) {
	var req TaskIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var body TaskReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var task model.Task
	if err := mgr.db.WithContext(c).First(&task, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "task not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get task: %v", err), resputil.NotSpecified)
		return
	}

	task.Title = body.Title
	if body.Completed != nil {
		task.Completed = body.Completed
	}
	if err := mgr.db.WithContext(c).Save(&task).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to update task: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, task)
}

// DeleteTask godoc
// @Summary delete a task
// @Tags task
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "task id"
// @Success 200 {object} resputil.Response[string]
// @Failure 404 {object} resputil.Response[any] "task not found"
// @Router /v1/tasks/{id} [delete]
func (mgr *TaskMgr) DeleteTask(c *gin.Context) {
	var req TaskIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	res := mgr.db.WithContext(c).Delete(&model.Task{}, req.ID)
	if res.Error != nil {
		resputil.Error(c, fmt.Sprintf("failed to delete task: %v", res.Error), resputil.NotSpecified)
		return
	}
	if res.RowsAffected == 0 {
		resputil.NotFoundError(c, "task not found")
		return
	}
	resputil.Success(c, "")
}
