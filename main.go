package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/erd-lab/procatalog/dao/query"
	"github.com/erd-lab/procatalog/internal"
	"github.com/erd-lab/procatalog/internal/handler"
	"github.com/erd-lab/procatalog/internal/util"
	"github.com/erd-lab/procatalog/pkg/config"
)

// @title Process Catalog API
// @version 1.0
// @description API server for the PMBOK/Scrum process catalog with
// @description per-country/department customizations and kanban tracking.
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Obtain a token via /v1/token and send it as 'Bearer ${TOKEN}'
func main() {
	// set global timezone
	time.Local = time.UTC

	if gin.Mode() == gin.DebugMode {
		if err := godotenv.Load(".debug.env"); err != nil {
			klog.Info("no .debug.env file, using OS environment")
		}
	}

	backendConfig := config.GetConfig()

	db := query.GetDB()
	if err := query.Migrate(db); err != nil {
		klog.Error("migrate failed: ", err)
		panic(err)
	}
	klog.Info("schema up to date")

	backend := internal.Register(&handler.RegisterConfig{
		DB:       db,
		TokenMgr: util.GetTokenMgr(),
		TwoFA:    backendConfig.TwoFA,
	})
	if err := backend.R.Run(backendConfig.ServerAddr); err != nil {
		klog.Error("problem running server: ", err)
		panic(err)
	}
}
