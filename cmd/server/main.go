package main

import (
	"log"
	"os"

	"github.com/arnavshah/clinops-api-go/pkg/auth"
	"github.com/arnavshah/clinops-api-go/pkg/cache"
	"github.com/arnavshah/clinops-api-go/pkg/database"
	"github.com/arnavshah/clinops-api-go/pkg/handlers"
	"github.com/arnavshah/clinops-api-go/pkg/reports"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureOperatorExists(db)

	store := cache.New(cache.DefaultTTL)
	h := &handlers.Handler{
		DB:       db,
		Reports:  reports.New(db, store),
		Sessions: handlers.NewSessionStore(),
	}

	r := handlers.SetupRouter(h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
