package model

import "gorm.io/gorm"

// Task is a generic to-do item, unrelated to the process catalogs.
type Task struct {
	gorm.Model
	Title     string `gorm:"type:varchar(200);not null" json:"title"`
	Completed *bool  `gorm:"default:false" json:"completed"`
}
