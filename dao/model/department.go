package model

import "gorm.io/gorm"

// Department is a node of the corporate department tree. Deleting a parent
// removes its whole subtree; customizations pointing at a removed
// department keep their row and lose only the reference.
type Department struct {
	gorm.Model
	Name     string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	ParentID *uint  `gorm:"index" json:"parent_id"`
	Color    string `gorm:"type:varchar(50);default:bg-gray-200" json:"color"`

	Children []Department `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"children,omitempty"`
}
