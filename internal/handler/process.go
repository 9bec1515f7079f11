package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/erd-lab/procatalog/dao/model"
	"github.com/erd-lab/procatalog/internal/payload"
	"github.com/erd-lab/procatalog/internal/resputil"
	"github.com/erd-lab/procatalog/pkg/logutils"
	"github.com/erd-lab/procatalog/pkg/scoping"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProcessMgr)
}

type ProcessMgr struct {
	name string
	db   *gorm.DB
}

func NewProcessMgr(conf *RegisterConfig) Manager {
	return &ProcessMgr{
		name: "processes",
		db:   conf.DB,
	}
}

func (mgr *ProcessMgr) GetName() string { return mgr.name }

func (mgr *ProcessMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProcessMgr) RegisterProtected(g *gin.RouterGroup) {
	mgr.registerTaxonomy(g.Group("pmbok-processes"), model.TaxonomyPMBOK)
	mgr.registerTaxonomy(g.Group("scrum-processes"), model.TaxonomyScrum)
}

func (mgr *ProcessMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// registerTaxonomy wires the same CRUD surface for one catalog. The two
// catalogs are one table split by the taxonomy tag, so every handler is a
// closure over it.
func (mgr *ProcessMgr) registerTaxonomy(g *gin.RouterGroup, taxonomy model.Taxonomy) {
	g.GET("", func(c *gin.Context) { mgr.ListProcesses(c, taxonomy) })
	g.POST("", func(c *gin.Context) { mgr.CreateProcess(c, taxonomy) })
	g.GET("/:id", func(c *gin.Context) { mgr.GetProcess(c, taxonomy) })
	g.PUT("/:id", func(c *gin.Context) { mgr.UpdateProcess(c, taxonomy, false) })
	g.PATCH("/:id", func(c *gin.Context) { mgr.UpdateProcess(c, taxonomy, true) })
	g.DELETE("/:id", func(c *gin.Context) { mgr.DeleteProcess(c, taxonomy) })
	g.POST("/bulk-update-kanban-status", func(c *gin.Context) { mgr.BulkUpdateKanbanStatus(c, taxonomy) })
}

type (
	ProcessIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	// ScopeQuery narrows a read to one customization scope.
	ScopeQuery struct {
		Country      string `form:"country"`
		DepartmentID *uint  `form:"department"`
	}

	CreateProcessReq struct {
		Number       int                `json:"number" binding:"required"`
		Name         string             `json:"name" binding:"required"`
		StatusID     *uint              `json:"status_id"`
		PhaseID      *uint              `json:"phase_id"`
		KanbanStatus model.KanbanStatus `json:"kanban_status"`
		Inputs       model.ItemList     `json:"inputs"`
		Tools        model.ItemList     `json:"tools"`
		Outputs      model.ItemList     `json:"outputs"`
	}

	UpdateProcessReq struct {
		Number       *int                `json:"number"`
		Name         *string             `json:"name"`
		StatusID     *uint               `json:"status_id"`
		PhaseID      *uint               `json:"phase_id"`
		KanbanStatus *model.KanbanStatus `json:"kanban_status"`
		Inputs       *model.ItemList     `json:"inputs"`
		Tools        *model.ItemList     `json:"tools"`
		Outputs      *model.ItemList     `json:"outputs"`
	}

	BulkKanbanReq struct {
		ProcessIDs   []uint             `json:"process_ids" binding:"required"`
		KanbanStatus model.KanbanStatus `json:"kanban_status" binding:"required"`
	}

	BulkKanbanResp struct {
		UpdatedProcesses      int64 `json:"updated_processes"`
		UpdatedCustomizations int64 `json:"updated_customizations"`
	}

	// ProcessResp is the read shape. When the request is scoped, the item
	// lists are the resolved view and Customization names the matched row;
	// otherwise the base lists are returned with the full customization
	// collection.
	ProcessResp struct {
		ID             uint                  `json:"id"`
		Number         int                   `json:"number"`
		Name           string                `json:"name"`
		Status         *model.ProcessStatus  `json:"status"`
		Phase          *model.ProcessPhase   `json:"phase"`
		KanbanStatus   model.KanbanStatus    `json:"kanban_status"`
		Inputs         model.ItemList        `json:"inputs"`
		Tools          model.ItemList        `json:"tools"`
		Outputs        model.ItemList        `json:"outputs"`
		Customizations []model.Customization `json:"customizations"`
		Customization  *model.Customization  `json:"customization,omitempty"`
	}
)

func (q ScopeQuery) scope() scoping.Scope {
	return scoping.Scope{CountryCode: q.Country, DepartmentID: q.DepartmentID}
}

func processResp(p *model.Process, s scoping.Scope) ProcessResp {
	resolved := scoping.Resolve(p, p.Customizations, s)
	resp := ProcessResp{
		ID:             p.ID,
		Number:         p.Number,
		Name:           p.Name,
		Status:         p.Status,
		Phase:          p.Phase,
		KanbanStatus:   resolved.KanbanStatus,
		Inputs:         resolved.Inputs,
		Tools:          resolved.Tools,
		Outputs:        resolved.Outputs,
		Customizations: p.Customizations,
		Customization:  resolved.Customization,
	}
	if resp.Customizations == nil {
		resp.Customizations = []model.Customization{}
	}
	return resp
}

// ListProcesses godoc
// @Summary list catalog processes
// @Description List all processes of one taxonomy ascending by number. An
// @Description optional country/department scope resolves each row.
// @Tags process
// @Accept json
// @Produce json
// @Security Bearer
// @Param country query string false "2-letter country scope"
// @Param department query int false "department scope"
// @Success 200 {object} resputil.Response[payload.ListResp[ProcessResp]]
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/pmbok-processes [get]
func (mgr *ProcessMgr) ListProcesses(c *gin.Context, taxonomy model.Taxonomy) {
	var q ScopeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if q.Country != "" {
		if err := checkCountryCode(q.Country); err != nil {
			resputil.BadRequestError(c, err.Error())
			return
		}
	}

	var processes []model.Process
	err := mgr.db.WithContext(c).
		Preload("Status").Preload("Phase").
		Preload("Customizations").Preload("Customizations.Department").
		Where("taxonomy = ?", taxonomy).
		Order("number asc").
		Find(&processes).Error
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to list processes: %v", err), resputil.NotSpecified)
		return
	}

	scope := q.scope()
	rows := lo.Map(processes, func(p model.Process, _ int) ProcessResp {
		return processResp(&p, scope)
	})
	resputil.Success(c, payload.NewListResp(rows))
}

// GetProcess godoc
// @Summary get one process
// @Description Base fields plus the customization collection; a scoped read
// @Description returns the resolved view instead.
// @Tags process
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "process id"
// @Success 200 {object} resputil.Response[ProcessResp]
// @Failure 404 {object} resputil.Response[any] "process not found"
// @Router /v1/pmbok-processes/{id} [get]
func (mgr *ProcessMgr) GetProcess(c *gin.Context, taxonomy model.Taxonomy) {
	var req ProcessIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var q ScopeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	process, err := mgr.findProcess(c, taxonomy, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "process not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get process: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, processResp(process, q.scope()))
}

// CreateProcess godoc
// @Summary create a process
// @Tags process
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body CreateProcessReq true "process fields"
// @Success 200 {object} resputil.Response[ProcessResp]
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/pmbok-processes [post]
func (mgr *ProcessMgr) CreateProcess(c *gin.Context, taxonomy model.Taxonomy) {
	var req CreateProcessReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if req.KanbanStatus == "" {
		req.KanbanStatus = model.KanbanUnassigned
	}
	if err := checkKanbanStatus(req.KanbanStatus); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := checkItemLists(req.Inputs, req.Tools, req.Outputs); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var count int64
	if err := mgr.db.WithContext(c).Model(&model.Process{}).
		Where("taxonomy = ? AND number = ?", taxonomy, req.Number).
		Count(&count).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to check process number: %v", err), resputil.NotSpecified)
		return
	}
	if count > 0 {
		resputil.BadRequestError(c, fmt.Sprintf("process number %d already exists in %s catalog", req.Number, taxonomy))
		return
	}

	process := model.Process{
		Taxonomy:     taxonomy,
		Number:       req.Number,
		Name:         req.Name,
		StatusID:     req.StatusID,
		PhaseID:      req.PhaseID,
		KanbanStatus: req.KanbanStatus,
		Inputs:       req.Inputs,
		Tools:        req.Tools,
		Outputs:      req.Outputs,
	}
	if err := mgr.db.WithContext(c).Create(&process).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to create process: %v", err), resputil.NotSpecified)
		return
	}
	logutils.Log.WithFields(logutils.Fields{"taxonomy": taxonomy, "number": process.Number}).Info("process created")
	resputil.Success(c, processResp(&process, scoping.Scope{}))
}

// UpdateProcess handles both PUT (full replace) and PATCH (sparse). For a
// full replace every field in the request body wins; a sparse update only
// touches the fields present.
//
// UpdateProcess godoc
// @Summary update a process
// @Tags process
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "process id"
// @Param data body UpdateProcessReq true "fields to update"
// @Success 200 {object} resputil.Response[ProcessResp]
// @Failure 404 {object} resputil.Response[any] "process not found"
// @Router /v1/pmbok-processes/{id} [put]
func (mgr *ProcessMgr) UpdateProcess(c *gin.Context, taxonomy model.Taxonomy, sparse bool) {
	var req ProcessIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var body UpdateProcessReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if body.KanbanStatus != nil {
		if err := checkKanbanStatus(*body.KanbanStatus); err != nil {
			resputil.BadRequestError(c, err.Error())
			return
		}
	}
	if !sparse && (body.Number == nil || body.Name == nil) {
		resputil.BadRequestError(c, "number and name are required")
		return
	}

	process, err := mgr.findProcess(c, taxonomy, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "process not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get process: %v", err), resputil.NotSpecified)
		return
	}

	if body.Number != nil && *body.Number != process.Number {
		var count int64
		if err := mgr.db.WithContext(c).Model(&model.Process{}).
			Where("taxonomy = ? AND number = ? AND id <> ?", taxonomy, *body.Number, process.ID).
			Count(&count).Error; err != nil {
			resputil.Error(c, fmt.Sprintf("failed to check process number: %v", err), resputil.NotSpecified)
			return
		}
		if count > 0 {
			resputil.BadRequestError(c, fmt.Sprintf("process number %d already exists in %s catalog", *body.Number, taxonomy))
			return
		}
	}
	if body.Number != nil {
		process.Number = *body.Number
	}
	if body.Name != nil {
		process.Name = *body.Name
	}
	if body.StatusID != nil || !sparse {
		process.StatusID = body.StatusID
		process.Status = nil
	}
	if body.PhaseID != nil || !sparse {
		process.PhaseID = body.PhaseID
		process.Phase = nil
	}
	if body.KanbanStatus != nil {
		process.KanbanStatus = *body.KanbanStatus
	}
	if body.Inputs != nil {
		process.Inputs = *body.Inputs
	}
	if body.Tools != nil {
		process.Tools = *body.Tools
	}
	if body.Outputs != nil {
		process.Outputs = *body.Outputs
	}
	if err := checkItemLists(process.Inputs, process.Tools, process.Outputs); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	if err := mgr.db.WithContext(c).Save(process).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to update process: %v", err), resputil.NotSpecified)
		return
	}

	process, err = mgr.findProcess(c, taxonomy, req.ID)
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to reload process: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, processResp(process, scoping.Scope{}))
}

// DeleteProcess godoc
// @Summary delete a process
// @Description Removes the process and all of its customizations.
// @Tags process
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "process id"
// @Success 200 {object} resputil.Response[string]
// @Failure 404 {object} resputil.Response[any] "process not found"
// @Router /v1/pmbok-processes/{id} [delete]
func (mgr *ProcessMgr) DeleteProcess(c *gin.Context, taxonomy model.Taxonomy) {
	var req ProcessIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var process model.Process
	if err := mgr.db.WithContext(c).
		Where("taxonomy = ? AND id = ?", taxonomy, req.ID).
		First(&process).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "process not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get process: %v", err), resputil.NotSpecified)
		return
	}

	// Cascade explicitly so the behavior does not depend on the engine's
	// foreign-key enforcement.
	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("process_id = ?", process.ID).Delete(&model.Customization{}).Error; err != nil {
			return err
		}
		return tx.Delete(&process).Error
	})
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to delete process: %v", err), resputil.NotSpecified)
		return
	}
	logutils.Log.WithFields(logutils.Fields{"taxonomy": taxonomy, "id": req.ID}).Info("process deleted")
	resputil.Success(c, "")
}

// BulkUpdateKanbanStatus godoc
// @Summary bulk kanban transition
// @Description Moves every listed process of the taxonomy and all of their
// @Description customizations to the target kanban status. Unknown ids are
// @Description skipped silently.
// @Tags process
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body BulkKanbanReq true "process ids and target status"
// @Success 200 {object} resputil.Response[BulkKanbanResp]
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/pmbok-processes/bulk-update-kanban-status [post]
func (mgr *ProcessMgr) BulkUpdateKanbanStatus(c *gin.Context, taxonomy model.Taxonomy) {
	var req BulkKanbanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := checkKanbanStatus(req.KanbanStatus); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var resp BulkKanbanResp
	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		// Restrict to ids that exist in this catalog; ids of the other
		// taxonomy are as invisible here as unknown ones.
		var ids []uint
		if err := tx.Model(&model.Process{}).
			Where("taxonomy = ? AND id IN ?", taxonomy, req.ProcessIDs).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		res := tx.Model(&model.Customization{}).
			Where("process_id IN ?", ids).
			Update("kanban_status", req.KanbanStatus)
		if res.Error != nil {
			return res.Error
		}
		resp.UpdatedCustomizations = res.RowsAffected

		res = tx.Model(&model.Process{}).
			Where("id IN ?", ids).
			Update("kanban_status", req.KanbanStatus)
		if res.Error != nil {
			return res.Error
		}
		resp.UpdatedProcesses = res.RowsAffected
		return nil
	})
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to bulk update kanban status: %v", err), resputil.NotSpecified)
		return
	}
	logutils.Log.WithFields(logutils.Fields{
		"taxonomy": taxonomy,
		"status":   req.KanbanStatus,
		"rows":     resp.UpdatedProcesses,
	}).Info("bulk kanban update")
	resputil.Success(c, resp)
}

func (mgr *ProcessMgr) findProcess(c *gin.Context, taxonomy model.Taxonomy, id uint) (*model.Process, error) {
	var process model.Process
	err := mgr.db.WithContext(c).
		Preload("Status").Preload("Phase").
		Preload("Customizations").Preload("Customizations.Department").
		Where("taxonomy = ? AND id = ?", taxonomy, id).
		First(&process).Error
	if err != nil {
		return nil, err
	}
	return &process, nil
}
