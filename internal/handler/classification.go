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
	Registers = append(Registers, NewClassificationMgr)
}

// ClassificationMgr serves the process status and phase reference tables.
// Reads are open to every authenticated user; writes are admin-only because
// the catalogs hang off these rows.
type ClassificationMgr struct {
	name string
	db   *gorm.DB
}

func NewClassificationMgr(conf *RegisterConfig) Manager {
	return &ClassificationMgr{
		name: "classifications",
		db:   conf.DB,
	}
}

func (mgr *ClassificationMgr) GetName() string { return mgr.name }

func (mgr *ClassificationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ClassificationMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("process-statuses", mgr.ListStatuses)
	g.GET("process-phases", mgr.ListPhases)
}

func (mgr *ClassificationMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("process-statuses", mgr.CreateStatus)
	g.PUT("process-statuses/:id", mgr.UpdateStatus)
	g.POST("process-phases", mgr.CreatePhase)
	g.PUT("process-phases/:id", mgr.UpdatePhase)
}

type (
	ClassificationIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	StatusReq struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		BgColor     string `json:"bg_color"`
		TextColor   string `json:"text_color"`
	}

	PhaseReq struct {
		Taxonomy  model.Taxonomy `json:"taxonomy" binding:"required"`
		Name      string         `json:"name" binding:"required"`
		BgColor   string         `json:"bg_color"`
		TextColor string         `json:"text_color"`
	}

	PhaseQuery struct {
		Taxonomy model.Taxonomy `form:"taxonomy"`
	}
)

// ListStatuses godoc
// @Summary list process statuses
// @Tags classification
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[payload.ListResp[model.ProcessStatus]]
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/process-statuses [get]
func (mgr *ClassificationMgr) ListStatuses(c *gin.Context) {
	var statuses []model.ProcessStatus
	if err := mgr.db.WithContext(c).Order("name asc").Find(&statuses).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to list statuses: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.NewListResp(statuses))
}

// CreateStatus godoc
// @Summary create a process status
// @Tags classification
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body StatusReq true "status fields"
// @Success 200 {object} resputil.Response[model.ProcessStatus]
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Router /v1/admin/process-statuses [post]
func (mgr *ClassificationMgr) CreateStatus(c *gin.Context) {
	var req StatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	status := model.ProcessStatus{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.BgColor != "" {
		status.BgColor = req.BgColor
	}
	if req.TextColor != "" {
		status.TextColor = req.TextColor
	}
	if err := mgr.db.WithContext(c).Create(&status).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to create status: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, status)
}

// UpdateStatus godoc
// @Summary update a process status
// @Tags classification
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "status id"
// @Param data body StatusReq true "status fields"
// @Success 200 {object} resputil.Response[model.ProcessStatus]
// @Failure 404 {object} resputil.Response[any] "status not found"
// @Router /v1/admin/process-statuses/{id} [put]
func (mgr *ClassificationMgr) UpdateStatus(c *gin.Context) {
	var req ClassificationIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var body StatusReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var status model.ProcessStatus
	if err := mgr.db.WithContext(c).First(&status, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "status not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get status: %v", err), resputil.NotSpecified)
		return
	}

	updates := map[string]any{
		"name":        body.Name,
		"description": body.Description,
	}
	if body.BgColor != "" {
		updates["bg_color"] = body.BgColor
	}
	if body.TextColor != "" {
		updates["text_color"] = body.TextColor
	}
	if err := mgr.db.WithContext(c).Model(&status).Updates(updates).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to update status: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, status)
}

// ListPhases godoc
// @Summary list process phases
// @Tags classification
// @Accept json
// @Produce json
// @Security Bearer
// @Param taxonomy query string false "filter by catalog (pmbok, scrum)"
// @Success 200 {object} resputil.Response[payload.ListResp[model.ProcessPhase]]
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/process-phases [get]
func (mgr *ClassificationMgr) ListPhases(c *gin.Context) {
	var q PhaseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	tx := mgr.db.WithContext(c).Order("name asc")
	if q.Taxonomy != "" {
		if !q.Taxonomy.Valid() {
			resputil.BadRequestError(c, fmt.Sprintf("unknown taxonomy %q", q.Taxonomy))
			return
		}
		tx = tx.Where("taxonomy = ?", q.Taxonomy)
	}

	var phases []model.ProcessPhase
	if err := tx.Find(&phases).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to list phases: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.NewListResp(phases))
}

// CreatePhase godoc
// @Summary create a process phase
// @Tags classification
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body PhaseReq true "phase fields"
// @Success 200 {object} resputil.Response[model.ProcessPhase]
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Router /v1/admin/process-phases [post]
func (mgr *ClassificationMgr) CreatePhase(c *gin.Context) {
	var req PhaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !req.Taxonomy.Valid() {
		resputil.BadRequestError(c, fmt.Sprintf("unknown taxonomy %q", req.Taxonomy))
		return
	}

	phase := model.ProcessPhase{
		Taxonomy: req.Taxonomy,
		Name:     req.Name,
	}
	if req.BgColor != "" {
		phase.BgColor = req.BgColor
	}
	if req.TextColor != "" {
		phase.TextColor = req.TextColor
	}
	if err := mgr.db.WithContext(c).Create(&phase).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to create phase: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, phase)
}

// UpdatePhase godoc
// @Summary update a process phase
// @Tags classification
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "phase id"
// @Param data body PhaseReq true "phase fields"
// @Success 200 {object} resputil.Response[model.ProcessPhase]
// @Failure 404 {object} resputil.Response[any] "phase not found"
// @Router /v1/admin/process-phases/{id} [put]
func (mgr *ClassificationMgr) UpdatePhase(c *gin.Context) {
	var req ClassificationIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var body PhaseReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var phase model.ProcessPhase
	if err := mgr.db.WithContext(c).First(&phase, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "phase not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get phase: %v", err), resputil.NotSpecified)
		return
	}

	updates := map[string]any{"name": body.Name}
	if body.BgColor != "" {
		updates["bg_color"] = body.BgColor
	}
	if body.TextColor != "" {
		updates["text_color"] = body.TextColor
	}
	if err := mgr.db.WithContext(c).Model(&phase).Updates(updates).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to update phase: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, phase)
}
