package model

import "gorm.io/gorm"

// ProcessStatus classifies processes of both catalogs (e.g. "Base
// Estratégica", "Ritmo Diario"). The color fields are opaque display
// metadata rendered by the frontend as-is.
type ProcessStatus struct {
	gorm.Model
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	BgColor     string `gorm:"type:varchar(50);default:bg-gray-500" json:"bg_color"`
	TextColor   string `gorm:"type:varchar(50);default:text-white" json:"text_color"`
}

// ProcessPhase is the taxonomy-scoped second classification axis: a PMBOK
// stage or a Scrum phase. Names are unique within one taxonomy.
type ProcessPhase struct {
	gorm.Model
	Taxonomy  Taxonomy `gorm:"type:varchar(16);not null;uniqueIndex:idx_phase_taxonomy_name" json:"taxonomy"`
	Name      string   `gorm:"type:varchar(100);not null;uniqueIndex:idx_phase_taxonomy_name" json:"name"`
	BgColor   string   `gorm:"type:varchar(50);default:bg-gray-200" json:"bg_color"`
	TextColor string   `gorm:"type:varchar(50);default:text-gray-600" json:"text_color"`
}
