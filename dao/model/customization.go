package model

import "gorm.io/gorm"

// Customization overrides the item lists of one process for one
// (country, department) scope and tracks its own kanban status. At most one
// row exists per (process, country_code, department) triple, enforced by
// the idx_customization_scope unique expression index over
// COALESCE(department_id, 0) so that NULL departments collide too. The
// index cannot be expressed in struct tags; query.AutoMigrate creates it.
type Customization struct {
	gorm.Model
	ProcessID    uint        `gorm:"not null;index" json:"process_id"`
	Process      *Process    `json:"-"`
	CountryCode  string      `gorm:"type:varchar(2);not null" json:"country_code"`
	DepartmentID *uint       `json:"department_id"`
	Department   *Department `gorm:"constraint:OnDelete:SET NULL" json:"department,omitempty"`
	Inputs       ItemList    `gorm:"type:json" json:"inputs"`
	Tools        ItemList    `gorm:"type:json" json:"tools"`
	Outputs      ItemList    `gorm:"type:json" json:"outputs"`
	KanbanStatus KanbanStatus `gorm:"type:varchar(20);not null;default:unassigned" json:"kanban_status"`
}
