package model

import "gorm.io/gorm"

// Account is an email-keyed user identity. Password holds a bcrypt hash and
// is nil for accounts provisioned without a credential.
type Account struct {
	gorm.Model
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName    string  `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string  `gorm:"type:varchar(150)" json:"last_name"`
	Password     *string `gorm:"type:varchar(128)" json:"-"`
	IsStaff      bool    `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool    `gorm:"not null;default:false" json:"is_superuser"`
	IsActive     bool    `gorm:"not null;default:true" json:"is_active"`
	TwoFAEnabled bool    `gorm:"not null;default:false" json:"two_fa_enabled"`
}
