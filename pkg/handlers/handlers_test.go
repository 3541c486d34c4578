package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/cache"
	"github.com/arnavshah/clinops-api-go/pkg/database"
	"github.com/arnavshah/clinops-api-go/pkg/reports"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&database.Rota{}, &database.User{}, &database.Consultation{},
		&database.Operator{}, &database.ReportKey{}, &database.ReportKeyUsage{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// MinCost keeps the fixture fast; production hashing uses the
	// auth package's cost.
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := db.Create(&database.Operator{Username: "operator", PasswordHash: string(hash)}).Error; err != nil {
		t.Fatalf("seed operator: %v", err)
	}

	h := &Handler{
		DB:       db,
		Reports:  reports.New(db, cache.New(time.Hour)),
		Sessions: NewSessionStore(),
	}
	return SetupRouter(h), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, body := doJSON(t, r, http.MethodPost, "/login", `{"username":"operator","password":"s3cret"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	return token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := setupTest(t)

	w, _ := doJSON(t, r, http.MethodPost, "/login", `{"username":"operator","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status %d, want 401", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/login", `{"username":"ghost","password":"s3cret"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status %d, want 401", w.Code)
	}
}

func TestDashboardAPIRequiresToken(t *testing.T) {
	r, _ := setupTest(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/reports/months", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/reports/months", "", "not-a-token")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status %d, want 401", w.Code)
	}
}

func TestMonthOptionsEndpoint(t *testing.T) {
	r, db := setupTest(t)

	oct := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC)
	login1 := oct.Add(8 * time.Hour)
	logout1 := oct.Add(16 * time.Hour)

	db.Create(&database.User{PersonID: 1, FullName: "A. Clinician", Adastra: "ACLIN"})
	db.Create(&database.User{PersonID: 2, FullName: "No Consults", Adastra: "NOCON"})
	db.Create(&database.Rota{RSLID: 10, PersonID: 1, Date: oct, TrueLogin: &login1, TrueLogout: &logout1, Role: "GP", Duration: "8:00", Value: "320"})
	db.Create(&database.Rota{RSLID: 11, PersonID: 1, Date: sep, TrueLogin: &login1, TrueLogout: &logout1, Role: "GP", Duration: "8:00", Value: "320"})
	// A rota for a clinician with no consultation records must not
	// contribute month options.
	db.Create(&database.Rota{RSLID: 12, PersonID: 2, Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), Role: "GP"})
	db.Create(&database.Consultation{ID: 100, RSLID: 10, Caseno: 900, ConsType: "GP Advice", ConsCliniciansName: "ACLIN"})

	token := login(t, r)
	w, body := doJSON(t, r, http.MethodGet, "/api/reports/months", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("months: status %d body %s", w.Code, w.Body.String())
	}

	raw, _ := body["months"].([]any)
	months := make([]string, 0, len(raw))
	for _, m := range raw {
		months = append(months, m.(string))
	}

	want := []string{"(All)", "October 2024", "September 2024"}
	if len(months) != len(want) {
		t.Fatalf("months = %v, want %v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Errorf("month %d = %q, want %q", i, months[i], want[i])
		}
	}
}

func TestDailyRollupEndpoint(t *testing.T) {
	r, db := setupTest(t)

	day := time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)
	login1 := day.Add(8 * time.Hour)
	logout1 := day.Add(16 * time.Hour)

	db.Create(&database.User{PersonID: 1, FullName: "A. Clinician", Adastra: "ACLIN"})
	db.Create(&database.Rota{RSLID: 10, PersonID: 1, Date: day, TrueLogin: &login1, TrueLogout: &logout1, Role: "GP", Duration: "8:00", Value: "320"})
	db.Create(&database.Rota{RSLID: 11, PersonID: 1, Date: day, TrueLogin: &login1, TrueLogout: &logout1, Role: "GP", Duration: "4:30", Value: "180"})
	db.Create(&database.Consultation{ID: 100, RSLID: 10, Caseno: 900, ConsType: "GP Advice", ConsCliniciansName: "ACLIN"})

	token := login(t, r)
	w, body := doJSON(t, r, http.MethodGet, "/api/activity/daily?start=2024-10-01&end=2024-10-31", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("daily: status %d body %s", w.Code, w.Body.String())
	}

	rows, _ := body["rows"].([]any)
	if len(rows) != 1 {
		t.Fatalf("rows = %v, want one (date, role) bucket", rows)
	}
	bucket := rows[0].(map[string]any)
	if bucket["role"] != "GP" {
		t.Errorf("bucket role = %v", bucket["role"])
	}
	if bucket["total_hours"].(float64) != 12.5 {
		t.Errorf("total_hours = %v, want 12.5", bucket["total_hours"])
	}
	if bucket["total_cost"].(float64) != 500 {
		t.Errorf("total_cost = %v, want 500", bucket["total_cost"])
	}
}

func TestDrilldownUnknownSession(t *testing.T) {
	r, _ := setupTest(t)
	token := login(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/drilldown/nope/descend", "", token)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown session: status %d, want 404", w.Code)
	}
}
