package handlers

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"sync"

	"github.com/arnavshah/clinops-api-go/pkg/auth"
	"github.com/arnavshah/clinops-api-go/pkg/database"
	"github.com/arnavshah/clinops-api-go/pkg/navigator"
	"github.com/arnavshah/clinops-api-go/pkg/reports"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

//go:embed static/*
var staticEmbed embed.FS

// Handler contains dependencies for the route handlers
type Handler struct {
	DB       *gorm.DB
	Reports  *reports.Service
	Sessions *SessionStore
}

// SessionStore keeps the live drill-down sessions by id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*navigator.Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*navigator.Session)}
}

// Put stores a session.
func (s *SessionStore) Put(sess *navigator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Get returns the session with the given id.
func (s *SessionStore) Get(id string) (*navigator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// AuthMiddleware verifies the JWT token for dashboard routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// ReportKeyMiddleware verifies the HMAC report key for export routes
func (h *Handler) ReportKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Report key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		consumerID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid report key signature"})
			c.Abort()
			return
		}

		// Fetch or create the key record to track usage
		var reportKey database.ReportKey
		h.DB.Where(database.ReportKey{Key: key}).FirstOrCreate(&reportKey, database.ReportKey{
			Key:       key,
			Name:      consumerID,
			RateLimit: 10000,
		})

		c.Set("reportKey", &reportKey)
		c.Set("consumerID", consumerID)
		c.Next()
	}
}

// Login handles operator login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var op database.Operator
	if err := h.DB.Where("username = ?", req.Username).First(&op).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, op.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(op.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// queryError aborts the render cycle: the store failure is logged and
// the operator sees a generic message. Nothing partial goes out and
// nothing is retried; re-triggering the cycle is up to the operator.
func (h *Handler) queryError(c *gin.Context, err error) {
	log.Printf("report query failed: %v", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "report query failed"})
}

// Dashboard serves the dashboard shell from embedded files
func (h *Handler) Dashboard(c *gin.Context) {
	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// SetupRouter wires every route onto a fresh engine. Both the server
// binary and the serverless entrypoint use it.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	r.StaticFS("/static", h.GetStaticFS())
	r.GET("/", h.Dashboard)
	r.POST("/login", h.Login)

	// Dashboard API
	api := r.Group("/api")
	api.Use(h.AuthMiddleware())
	{
		api.GET("/reports/roster", h.GetRoster)
		api.GET("/reports/clinicians/:personid/shifts", h.GetClinicianShifts)
		api.GET("/reports/shifts/:rslid/consultations", h.GetShiftConsultations)
		api.GET("/reports/cases/:caseno", h.GetCaseDetail)
		api.GET("/reports/months", h.GetMonthOptions)
		api.GET("/activity/hourly", h.GetHourlyActivity)
		api.GET("/activity/daily", h.GetDailyRollup)

		api.POST("/drilldown", h.CreateDrilldown)
		api.GET("/drilldown/:id", h.GetDrilldown)
		api.POST("/drilldown/:id/select", h.SelectDrilldownRows)
		api.POST("/drilldown/:id/descend", h.DescendDrilldown)
		api.POST("/drilldown/:id/reset", h.ResetDrilldown)
	}

	// Admin key management
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Programmatic report pulls
	export := r.Group("/export")
	export.Use(h.ReportKeyMiddleware())
	{
		export.GET("/roster", h.ExportRoster)
		export.GET("/activity/hourly", h.ExportHourlyActivity)
	}

	return r
}
