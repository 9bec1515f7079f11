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
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewDepartmentMgr)
}

type DepartmentMgr struct {
	name string
	db   *gorm.DB
}

func NewDepartmentMgr(conf *RegisterConfig) Manager {
	return &DepartmentMgr{
		name: "departments",
		db:   conf.DB,
	}
}

func (mgr *DepartmentMgr) GetName() string { return mgr.name }

func (mgr *DepartmentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *DepartmentMgr) RegisterProtected(g *gin.RouterGroup) {
	gd := g.Group("departments")
	gd.GET("", mgr.ListDepartments)
	gd.POST("", mgr.CreateDepartment)
	gd.GET("/:id", mgr.GetDepartment)
	gd.PUT("/:id", mgr.UpdateDepartment)
	gd.DELETE("/:id", mgr.DeleteDepartment)
}

func (mgr *DepartmentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	DepartmentIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	DepartmentReq struct {
		Name     string `json:"name" binding:"required"`
		ParentID *uint  `json:"parent_id"`
		Color    string `json:"color"`
	}
)

// ListDepartments godoc
// @Summary list the department tree
// @Description Top-level departments with their children preloaded.
// @Tags department
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[payload.ListResp[model.Department]]
// @Failure 500 {object} resputil.Response[any] "other errors"
// @Router /v1/departments [get]
func (mgr *DepartmentMgr) ListDepartments(c *gin.Context) {
	var departments []model.Department
	err := mgr.db.WithContext(c).
		Preload("Children").
		Where("parent_id IS NULL").
		Order("name asc").
		Find(&departments).Error
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to list departments: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, payload.NewListResp(departments))
}

// GetDepartment godoc
// @Summary get one department with its children
// @Tags department
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "department id"
// @Success 200 {object} resputil.Response[model.Department]
// @Failure 404 {object} resputil.Response[any] "department not found"
// @Router /v1/departments/{id} [get]
func (mgr *DepartmentMgr) GetDepartment(c *gin.Context) {
	var req DepartmentIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var department model.Department
	err := mgr.db.WithContext(c).Preload("Children").First(&department, req.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "department not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get department: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, department)
}

// CreateDepartment godoc
// @Summary create a department
// @Tags department
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body DepartmentReq true "department fields"
// @Success 200 {object} resputil.Response[model.Department]
// @Failure 400 {object} resputil.Response[any] "request parameter error"
// @Router /v1/departments [post]
func (mgr *DepartmentMgr) CreateDepartment(c *gin.Context) {
	var req DepartmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if req.ParentID != nil {
		var count int64
		if err := mgr.db.WithContext(c).Model(&model.Department{}).
			Where("id = ?", *req.ParentID).Count(&count).Error; err != nil {
			resputil.Error(c, fmt.Sprintf("failed to check parent: %v", err), resputil.NotSpecified)
			return
		}
		if count == 0 {
			resputil.NotFoundError(c, fmt.Sprintf("parent department %d not found", *req.ParentID))
			return
		}
	}

	department := model.Department{
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if req.Color != "" {
		department.Color = req.Color
	}
	if err := mgr.db.WithContext(c).Create(&department).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to create department: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, department)
}

// UpdateDepartment godoc
// @Summary update a department
// @Tags department
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "department id"
// @Param data body DepartmentReq true "department fields"
// @Success 200 {object} resputil.Response[model.Department]
// @Failure 404 {object} resputil.Response[any] "department not found"
// @Router /v1/departments/{id} [put]
func (mgr *DepartmentMgr) UpdateDepartment(c *gin.Context) {
	var req DepartmentIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var body DepartmentReq
	if err := c.ShouldBindJSON(&body); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var department model.Department
	if err := mgr.db.WithContext(c).First(&department, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "department not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get department: %v", err), resputil.NotSpecified)
		return
	}
	if body.ParentID != nil {
		var count int64
		if err := mgr.db.WithContext(c).Model(&model.Department{}).
			Where("id = ?", *body.ParentID).Count(&count).Error; err != nil {
			resputil.Error(c, fmt.Sprintf("failed to check parent: %v", err), resputil.NotSpecified)
			return
		}
		if count == 0 {
			resputil.NotFoundError(c, fmt.Sprintf("parent department %d not found", *body.ParentID))
			return
		}
		// A parent inside the node's own subtree would create a cycle.
		ids, err := subtreeIDs(mgr.db.WithContext(c), department.ID)
		if err != nil {
			resputil.Error(c, fmt.Sprintf("failed to check subtree: %v", err), resputil.NotSpecified)
			return
		}
		if lo.Contains(ids, *body.ParentID) {
			resputil.BadRequestError(c, "a department cannot be moved under itself or its own subtree")
			return
		}
	}

	department.Name = body.Name
	department.ParentID = body.ParentID
	if body.Color != "" {
		department.Color = body.Color
	}
	if err := mgr.db.WithContext(c).Save(&department).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to update department: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, department)
}

// DeleteDepartment godoc
// @Summary delete a department subtree
// @Description Removes the department and every descendant. Customizations
// @Description scoped to removed departments keep their row and lose only
// @Description the department reference.
// @Tags department
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "department id"
// @Success 200 {object} resputil.Response[string]
// @Failure 404 {object} resputil.Response[any] "department not found"
// @Router /v1/departments/{id} [delete]
func (mgr *DepartmentMgr) DeleteDepartment(c *gin.Context) {
	var req DepartmentIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var department model.Department
	if err := mgr.db.WithContext(c).First(&department, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "department not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get department: %v", err), resputil.NotSpecified)
		return
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		ids, err := subtreeIDs(tx, department.ID)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.Customization{}).
			Where("department_id IN ?", ids).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Department{}, ids).Error
	})
	if err != nil {
		resputil.Error(c, fmt.Sprintf("failed to delete department: %v", err), resputil.NotSpecified)
		return
	}
	logutils.Log.WithFields(logutils.Fields{"id": req.ID, "name": department.Name}).Info("department subtree deleted")
	resputil.Success(c, "")
}

// subtreeIDs walks the tree breadth-first and returns the ids of the node
// and all descendants. Each id is visited once, so the walk terminates even
// if stored data contains a cycle.
func subtreeIDs(tx *gorm.DB, root uint) ([]uint, error) {
	ids := []uint{root}
	seen := map[uint]bool{root: true}
	frontier := []uint{root}
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&model.Department{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}
		frontier = nil
		for _, id := range children {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			frontier = append(frontier, id)
		}
	}
	return ids, nil
}
