package handler

import (
	"net/http"

	"github.com/arnavshah/clinops-api-go/pkg/auth"
	"github.com/arnavshah/clinops-api-go/pkg/cache"
	"github.com/arnavshah/clinops-api-go/pkg/database"
	"github.com/arnavshah/clinops-api-go/pkg/handlers"
	"github.com/arnavshah/clinops-api-go/pkg/reports"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	// Initialize DB
	db := database.InitDB()
	_ = auth.EnsureOperatorExists(db)

	store := cache.New(cache.DefaultTTL)
	h := &handlers.Handler{
		DB:       db,
		Reports:  reports.New(db, store),
		Sessions: handlers.NewSessionStore(),
	}

	gin.SetMode(gin.ReleaseMode)
	r = handlers.SetupRouter(h)
}

// Handler is the serverless entrypoint
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
