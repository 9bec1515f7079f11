package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/erd-lab/procatalog/internal/util"
	"github.com/erd-lab/procatalog/pkg/config"
)

// RegisterConfig carries the shared dependencies handed to every manager.
type RegisterConfig struct {
	DB       *gorm.DB
	TokenMgr *util.TokenManager
	TwoFA    config.TwoFAConf
}

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// Registers collects the manager constructors; each handler file appends
// its own in init().
var Registers []func(*RegisterConfig) Manager
