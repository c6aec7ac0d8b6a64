package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/DevG10/AI-RetinoNet/config"
	"github.com/DevG10/AI-RetinoNet/controller"
	"github.com/DevG10/AI-RetinoNet/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// Load the model in the background so the server answers /status while
	// warming up; a direct /predict still loads synchronously.
	modelService := services.NewModelService(cfg.ModelPath, cfg.ModelMetadataPath)
	modelService.LoadInBackground()
	defer modelService.Close()

	// Reload the session when a deploy swaps the weights file in place.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	go modelService.WatchModelFile(watchCtx)

	predictionService := services.NewPredictionService(modelService)
	reportService := services.NewReportService(cfg.LogoPath)
	emailService := services.NewEmailService(cfg)
	retinoController := controller.NewRetinoController(modelService, predictionService, reportService, emailService)

	// Setup Gin router
	router := gin.Default()

	// CORS middleware so the hosted frontends can call the API directly
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	controller.RegisterRoutes(router, retinoController)

	log.Printf("RetinoNet API server starting on http://localhost:%s", cfg.Port)
	log.Printf("Model path: %s", cfg.ModelPath)
	log.Printf("API endpoints:")
	log.Printf("  GET  http://localhost:%s/status", cfg.Port)
	log.Printf("  POST http://localhost:%s/predict/", cfg.Port)
	log.Printf("  POST http://localhost:%s/generate_report/", cfg.Port)
	log.Printf("  POST http://localhost:%s/send_report/", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
