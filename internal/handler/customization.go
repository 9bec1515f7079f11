package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erd-lab/procatalog/dao/model"
	"github.com/erd-lab/procatalog/internal/payload"
	"github.com/erd-lab/procatalog/internal/resputil"
	"github.com/erd-lab/procatalog/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewCustomizationMgr)
}

type CustomizationMgr struct {
	name string
	db   *gorm.DB
}

func NewCustomizationMgr(conf *RegisterConfig) Manager {
	return &CustomizationMgr{
		name: "customizations",
		db:   conf.DB,
	}
}

func (mgr *CustomizationMgr) GetName() string { return mgr.name }

func (mgr *CustomizationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *CustomizationMgr) RegisterProtected(g *gin.RouterGroup) {
	gc := g.Group("customizations")
	gc.GET("", mgr.ListCustomizations)
	gc.POST("", mgr.UpsertCustomization)
	gc.PATCH("/:id/update-kanban-status", mgr.UpdateKanbanStatus)
	gc.DELETE("/:id", mgr.DeleteCustomization)
}

func (mgr *CustomizationMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	UpsertCustomizationReq struct {
		Taxonomy     model.Taxonomy `json:"taxonomy" binding:"required"`
		ProcessID    uint           `json:"process_id" binding:"required"`
		CountryCode  string         `json:"country_code" binding:"required"`
		DepartmentID *uint          `json:"department_id"`
		Inputs       model.ItemList `json:"inputs"`
		Tools        model.ItemList `json:"tools"`
		Outputs      model.ItemList `json:"outputs"`
	}

	CustomizationIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	CustomizationKanbanReq struct {
		KanbanStatus model.KanbanStatus `json:"kanban_status" binding:"required"`
	}

	ListCustomizationsQuery struct {
		ProcessID *uint  `form:"process_id"`
		Country   string `form:"country"`
	}
)

// UpsertCustomization godoc
// @Summary create or replace the customization of one scope
// @Description Locates the row by (process, country_code, department) and
// @Description replaces its item lists, or creates it. Idempotent: the same
// @Description payload twice leaves exactly one row with the latest values.
// @Tags customization
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body UpsertCustomizationReq true "scope and item lists"
// @Success 200 {object} resputil.Response[model.Customization]
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Failure 404 {object} resputil.Response[any] "process not found"
// @Router /v1/customizations [post]
func (mgr *CustomizationMgr) UpsertCustomization(c *gin.Context) {
	var req UpsertCustomizationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !req.Taxonomy.Valid() {
		resputil.BadRequestError(c, fmt.Sprintf("unknown taxonomy %q", req.Taxonomy))
		return
	}
	if err := checkCountryCode(req.CountryCode); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := checkItemLists(req.Inputs, req.Tools, req.Outputs); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	country := strings.ToUpper(req.CountryCode)

	var process model.Process
	err := mgr.db.WithContext(c).
		Where("taxonomy = ? AND id = ?", req.Taxonomy, req.ProcessID).
		First(&process).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, fmt.Sprintf("%s process %d not found", req.Taxonomy, req.ProcessID))
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get process: %v", err), resputil.NotSpecified)
		return
	}
	if req.DepartmentID != nil {
		var count int64
		if err = mgr.db.WithContext(c).Model(&model.Department{}).
			Where("id = ?", *req.DepartmentID).Count(&count).Error; err != nil {
			resputil.Error(c, fmt.Sprintf("failed to check department: %v", err), resputil.NotSpecified)
			return
		}
		if count == 0 {
			resputil.NotFoundError(c, fmt.Sprintf("department %d not found", *req.DepartmentID))
			return
		}
	}

	customization := model.Customization{
		ProcessID:    process.ID,
		CountryCode:  country,
		DepartmentID: req.DepartmentID,
		Inputs:       req.Inputs,
		Tools:        req.Tools,
		Outputs:      req.Outputs,
		KanbanStatus: model.KanbanUnassigned,
	}
	// Atomic upsert against the scope index, so concurrent writes for the
	// same triple cannot produce two rows. An existing row gets the new
	// item lists and keeps its kanban status.
	err = mgr.db.WithContext(c).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "process_id"},
			{Name: "country_code"},
			{Name: "COALESCE(department_id, 0)", Raw: true},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"inputs":     req.Inputs,
			"tools":      req.Tools,
			"outputs":    req.Outputs,
			"updated_at": time.Now(),
			"deleted_at": nil,
		}),
	}).Create(&customization).Error
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to upsert customization: %v", err), resputil.NotSpecified)
		return
	}

	// Reload so the response carries the stored row whichever branch the
	// engine took.
	q := mgr.db.WithContext(c).Where("process_id = ? AND country_code = ?", process.ID, country)
	if req.DepartmentID == nil {
		q = q.Where("department_id IS NULL")
	} else {
		q = q.Where("department_id = ?", *req.DepartmentID)
	}
	if err := q.First(&customization).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to reload customization: %v", err), resputil.NotSpecified)
		return
	}
	logutils.Log.WithFields(logutils.Fields{
		"process": process.ID,
		"country": country,
	}).Info("customization upserted")
	resputil.Success(c, customization)
}

// UpdateKanbanStatus godoc
// @Summary move one customization on the kanban board
// @Tags customization
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "customization id"
// @Param data body CustomizationKanbanReq true "target status"
// @Success 200 {object} resputil.Response[model.Customization]
// @Failure 400 {object} resputil.Response[any] "unknown kanban status"
// @Failure 404 {object} resputil.Response[any] "customization not found"
// @Router /v1/customizations/{id}/update-kanban-status [patch]
func (mgr *CustomizationMgr) UpdateKanbanStatus(c *gin.Context) {
	var req CustomizationIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var body CustomizationKanbanReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := checkKanbanStatus(body.KanbanStatus); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var customization model.Customization
	if err := mgr.db.WithContext(c).First(&customization, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "customization not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get customization: %v", err), resputil.NotSpecified)
		return
	}

	customization.KanbanStatus = body.KanbanStatus
	if err := mgr.db.WithContext(c).Model(&customization).
		Update("kanban_status", body.KanbanStatus).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to update kanban status: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, customization)
}

// ListCustomizations godoc
// @Summary list customizations
// @Tags customization
// @Accept json
// @Produce json
// @Security Bearer
// @Param process_id query int false "filter by owning process"
// @Param country query string false "filter by country code"
// @Success 200 {object} resputil.Response[payload.ListResp[model.Customization]]
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/customizations [get]
func (mgr *CustomizationMgr) ListCustomizations(c *gin.Context) {
	var q ListCustomizationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	tx := mgr.db.WithContext(c).Preload("Department").Order("updated_at desc")
	if q.ProcessID != nil {
		tx = tx.Where("process_id = ?", *q.ProcessID)
	}
	if q.Country != "" {
		tx = tx.Where("country_code = ?", strings.ToUpper(q.Country))
	}

	var customizations []model.Customization
	if err := tx.Find(&customizations).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to list customizations: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.NewListResp(customizations))
}

// DeleteCustomization godoc
// @Summary delete a customization
// @Tags customization
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "customization id"
// @Success 200 {object} resputil.Response[string]
// @Failure 404 {object} resputil.Response[any] "customization not found"
// @Router /v1/customizations/{id} [delete]
func (mgr *CustomizationMgr) DeleteCustomization(c *gin.Context) {
	var req CustomizationIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	res := mgr.db.WithContext(c).Delete(&model.Customization{}, req.ID)
	if res.Error != nil {
		resputil.Error(c, fmt.Sprintf("failed to delete customization: %v", res.Error), resputil.NotSpecified)
		return
	}
	if res.RowsAffected == 0 {
		resputil.NotFoundError(c, "customization not found")
		return
	}
	resputil.Success(c, "")
}
