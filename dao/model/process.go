package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Item is one entry of a process item list (an input, a tool/technique or
// an output). Link may be empty.
type Item struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// ItemList is an ordered list of items, persisted as a JSON column.
type ItemList = datatypes.JSONSlice[Item]

// Process is a catalog entry of one taxonomy. Number is unique within the
// taxonomy and defines the listing order.
type Process struct {
	gorm.Model
	Taxonomy     Taxonomy     `gorm:"type:varchar(16);not null;uniqueIndex:idx_process_taxonomy_number" json:"taxonomy"`
	Number       int          `gorm:"not null;uniqueIndex:idx_process_taxonomy_number" json:"number"`
	Name         string       `gorm:"type:varchar(255);not null" json:"name"`
	StatusID     *uint        `json:"-"`
	Status       *ProcessStatus `gorm:"constraint:OnDelete:SET NULL" json:"status"`
	PhaseID      *uint        `json:"-"`
	Phase        *ProcessPhase `gorm:"constraint:OnDelete:SET NULL" json:"phase"`
	KanbanStatus KanbanStatus `gorm:"type:varchar(20);not null;default:unassigned" json:"kanban_status"`
	Inputs       ItemList     `gorm:"type:json" json:"inputs"`
	Tools        ItemList     `gorm:"type:json" json:"tools"`
	Outputs      ItemList     `gorm:"type:json" json:"outputs"`

	// Customizations are removed together with the process.
	Customizations []Customization `gorm:"constraint:OnDelete:CASCADE" json:"customizations,omitempty"`
}
