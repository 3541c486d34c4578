package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Rota represents one scheduled shift in the rotas table. A rota with a
// null truelogin or truelogout never happened and is excluded from all
// reporting queries.
type Rota struct {
	RSLID           int64      `gorm:"column:rslid;primaryKey" json:"rslid"`
	PersonID        int64      `gorm:"column:personid;index" json:"personid"`
	Date            time.Time  `gorm:"column:date" json:"date"`
	TrueLogin       *time.Time `gorm:"column:truelogin" json:"truelogin"`
	TrueLogout      *time.Time `gorm:"column:truelogout" json:"truelogout"`
	Role            string     `gorm:"column:role" json:"role"`
	DutyStation     string     `gorm:"column:dutystation" json:"dutystation"`
	Status          string     `gorm:"column:status" json:"status"`
	Value           string     `gorm:"column:value" json:"value"`
	Duration        string     `gorm:"column:duration" json:"duration"`
	DurationDecimal float64    `gorm:"column:durationdecimal" json:"durationdecimal"`
}

func (Rota) TableName() string { return "rotas" }

// User represents a clinician. Adastra is the external-system alias the
// consultation records carry instead of the person id.
type User struct {
	PersonID int64  `gorm:"column:personid;primaryKey" json:"personid"`
	FullName string `gorm:"column:fullname" json:"fullname"`
	Adastra  string `gorm:"column:adastra;index" json:"adastra"`
}

func (User) TableName() string { return "users" }

// Consultation represents a single clinical encounter, linked to the
// shift it happened on (rslid) and the case it belongs to (caseno).
type Consultation struct {
	ID                    int64      `gorm:"column:id;primaryKey" json:"id"`
	RSLID                 int64      `gorm:"column:rslid;index" json:"rslid"`
	Caseno                int64      `gorm:"column:caseno;index" json:"caseno"`
	CaseType              string     `gorm:"column:case_type" json:"case_type"`
	ActiveDate            *time.Time `gorm:"column:active_date" json:"active_date"`
	CallOrigin            string     `gorm:"column:call_origin" json:"call_origin"`
	LocationName          string     `gorm:"column:location_name" json:"location_name"`
	OperatorWhoReceived   string     `gorm:"column:operator_who_received_case" json:"operator_who_received_case"`
	ReceiveTime           *time.Time `gorm:"column:receive_time" json:"receive_time"`
	ReportedCondition     string     `gorm:"column:reported_condition" json:"reported_condition"`
	PriorityOnReception   string     `gorm:"column:priority_on_reception" json:"priority_on_reception"`
	PriorityAfterAssess   string     `gorm:"column:priority_after_assessment" json:"priority_after_assessment"`
	PriorityOnCompletion  string     `gorm:"column:priority_on_completion" json:"priority_on_completion"`
	PatientAuditAllergy   string     `gorm:"column:patient_audit_allergy" json:"patient_audit_allergy"`
	PatientAuditCondition string     `gorm:"column:patient_audit_condition" json:"patient_audit_condition"`
	PatientAuditMeds      string     `gorm:"column:patient_audit_medication" json:"patient_audit_medication"`
	ConsType              string     `gorm:"column:cons_type;index" json:"cons_type"`
	NextConsType          string     `gorm:"column:next_cons_type" json:"next_cons_type"`
	ConsBeginTime         *time.Time `gorm:"column:cons_begin_time;index" json:"cons_begin_time"`
	ConsEndTime           *time.Time `gorm:"column:cons_end_time" json:"cons_end_time"`
	ConsCliniciansName    string     `gorm:"column:cons_clinicians_name;index" json:"cons_clinicians_name"`
	ConsHistory           string     `gorm:"column:cons_history" json:"cons_history"`
	ConsExamination       string     `gorm:"column:cons_examination" json:"cons_examination"`
	ConsDiagnosis         string     `gorm:"column:cons_diagnosis" json:"cons_diagnosis"`
	ConsTreatment         string     `gorm:"column:cons_treatment" json:"cons_treatment"`
	ClinicalCodes         string     `gorm:"column:clinical_codes" json:"clinical_codes"`
	ConsPrescriptions     string     `gorm:"column:cons_prescriptions" json:"cons_prescriptions"`
	Prescriptions         string     `gorm:"column:prescriptions" json:"prescriptions"`
	InformationalOutcomes string     `gorm:"column:informational_outcomes" json:"informational_outcomes"`
}

func (Consultation) TableName() string { return "consultations" }

// Case represents a patient encounter spanning one or more consultations.
type Case struct {
	Caseno               int64      `gorm:"column:caseno;primaryKey" json:"caseno"`
	ActiveDate           *time.Time `gorm:"column:active_date" json:"active_date"`
	Location             string     `gorm:"column:location" json:"location"`
	Sex                  string     `gorm:"column:sex" json:"sex"`
	Age                  int        `gorm:"column:age" json:"age"`
	CallOrigin           string     `gorm:"column:call_origin" json:"call_origin"`
	ClinicalCodes        string     `gorm:"column:clinical_codes" json:"clinical_codes"`
	ComfortCall          string     `gorm:"column:comfort_call" json:"comfort_call"`
	DxOutcome            string     `gorm:"column:dx_outcome" json:"dx_outcome"`
	ReceivedCaseType     string     `gorm:"column:received_case_type" json:"received_case_type"`
	FinishedCaseType     string     `gorm:"column:finished_case_type" json:"finished_case_type"`
	PriorityOnReception  string     `gorm:"column:priority_on_reception" json:"priority_on_reception"`
	PriorityAfterAssess  string     `gorm:"column:priority_after_assessment" json:"priority_after_assessment"`
	PriorityOnCompletion string     `gorm:"column:priority_on_completion" json:"priority_on_completion"`
	ODStartTime          *time.Time `gorm:"column:od_start_time" json:"od_start_time"`
	ODFinishTime         *time.Time `gorm:"column:od_finish_time" json:"od_finish_time"`
	CCG                  string     `gorm:"column:ccg" json:"ccg"`
	ProviderGroup        string     `gorm:"column:provider_group" json:"provider_group"`
	InformationalOutcome string     `gorm:"column:informational_outcome" json:"informational_outcome"`
	ConsDelay            string     `gorm:"column:cons_delay" json:"cons_delay"`
	ODConsDelay          string     `gorm:"column:od_cons_delay" json:"od_cons_delay"`
	ConsDelayAfterAssess string     `gorm:"column:cons_delayafter_assess" json:"cons_delayafter_assess"`
}

func (Case) TableName() string { return "cases" }

// Survey represents a patient satisfaction survey; a case has zero or one.
type Survey struct {
	ID           int64    `gorm:"column:id;primaryKey" json:"id"`
	Caseno       int64    `gorm:"column:caseno;index" json:"caseno"`
	Satisfaction *float64 `gorm:"column:satisfaction" json:"satisfaction"`
	Comments     string   `gorm:"column:comments" json:"comments"`
}

func (Survey) TableName() string { return "surveys" }

// PhoneCall represents one logged phone call. DurationTalk is in seconds.
type PhoneCall struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	StartTime    time.Time `gorm:"column:start_time;index" json:"start_time"`
	Direction    string    `gorm:"column:direction" json:"direction"`
	DurationTalk int64     `gorm:"column:duration_talk" json:"duration_talk"`
	AgentNumber  string    `gorm:"column:agent_number" json:"agent_number"`
}

func (PhoneCall) TableName() string { return "phone_calls" }

// Operator represents the operators table: the dashboard login credential
type Operator struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReportKey represents the report_keys table: HMAC-signed keys for
// programmatic report pulls.
type ReportKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// ReportKeyUsage represents the report_key_usage table
type ReportKeyUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	RowsServed   int    `gorm:"default:0" json:"rows_served"`
}

// InitDB initializes the database connection and migrates the schema
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "clinops.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto Migration
	db.AutoMigrate(
		&Rota{}, &User{}, &Consultation{}, &Case{}, &Survey{}, &PhoneCall{},
		&Operator{}, &ReportKey{}, &ReportKeyUsage{},
	)

	return db
}
