package main

import (
	"time"

	"github.com/cppla/sharedrop/config"
	"github.com/cppla/sharedrop/models"
	"github.com/cppla/sharedrop/repository"
	"github.com/cppla/sharedrop/routes"
	"github.com/cppla/sharedrop/services"
	"github.com/cppla/sharedrop/storage"
	"github.com/cppla/sharedrop/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.FileRecord{})

	content, err := storage.NewContentStore(cfg.StorageRoot)
	if err != nil {
		utils.Sugar.Fatalf("failed to open content store: %v", err)
	}

	remove := services.NewRemoveService(
		repository.NewFileRepository(db),
		content,
		int64(cfg.RetentionMinutes),
	)

	// The expiry sweeper is started exactly once here, never per request.
	sweeper := services.NewSweeper(remove, time.Duration(cfg.SweepIntervalMinutes)*time.Minute)
	sweeper.Start()

	r := routes.SetupRouter(db, content, sweeper)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
