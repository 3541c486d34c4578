package models

import "time"

// RosterRow is one clinician in the all-clinicians rollup. Percentage
// fields that can be undefined (zero denominators) are pointers and
// serialize as null.
type RosterRow struct {
	PersonID                   int64    `gorm:"column:personid" json:"personid"`
	ClinicianName              string   `gorm:"column:clinician_name" json:"clinician_name"`
	TotalCost                  float64  `gorm:"column:total_cost" json:"total_cost"`
	TotalShifts                int64    `gorm:"column:total_shifts" json:"total_shifts"`
	TotalHours                 float64  `gorm:"column:total_hours" json:"total_hours"`
	TotalConsultationHours     float64  `gorm:"column:total_consultation_hours" json:"total_consultation_hours"`
	ConsultationTimePercentage *float64 `gorm:"column:consultation_time_percentage" json:"consultation_time_percentage"`
	TotalConsultations         int64    `gorm:"column:total_consultations" json:"total_consultations"`
	AvgConsultationCost        *float64 `gorm:"column:avg_consultation_cost" json:"avg_consultation_cost"`
	GPAdviceCount              int64    `gorm:"column:gp_advice_count" json:"gp_advice_count"`
	TreatmentCentreCount       int64    `gorm:"column:treatment_centre_count" json:"treatment_centre_count"`
	VisitCount                 int64    `gorm:"column:visit_count" json:"visit_count"`
	AdviceClosedPercentage     float64  `gorm:"column:advice_closed_percentage" json:"advice_closed_percentage"`
	AvgGPAdviceMins            *float64 `gorm:"column:avg_gp_advice_mins" json:"avg_gp_advice_mins"`
	AvgTreatmentCentreMins     *float64 `gorm:"column:avg_treatment_centre_mins" json:"avg_treatment_centre_mins"`
	AvgVisitMins               *float64 `gorm:"column:avg_visit_mins" json:"avg_visit_mins"`
}

// ClinicianShiftRow is one shift in a single clinician's breakdown,
// carrying the same per-type stats at shift granularity.
type ClinicianShiftRow struct {
	ClinicianName              string     `gorm:"column:clinician_name" json:"clinician_name"`
	PersonID                   int64      `gorm:"column:personid" json:"personid"`
	RSLID                      int64      `gorm:"column:rslid" json:"rslid"`
	ShiftDate                  time.Time  `gorm:"column:shift_date" json:"shift_date"`
	ShiftStart                 *time.Time `gorm:"column:shift_start" json:"shift_start"`
	ShiftEnd                   *time.Time `gorm:"column:shift_end" json:"shift_end"`
	ShiftCost                  *float64   `gorm:"column:shift_cost" json:"shift_cost"`
	ShiftHours                 float64    `gorm:"column:shift_hours" json:"shift_hours"`
	ShiftConsultationHours     *float64   `gorm:"column:shift_consultation_hours" json:"shift_consultation_hours"`
	ConsultationTimePercentage *float64   `gorm:"column:consultation_time_percentage" json:"consultation_time_percentage"`
	TotalConsultations         int64      `gorm:"column:total_consultations" json:"total_consultations"`
	CostPerConsultation        *float64   `gorm:"column:cost_per_consultation" json:"cost_per_consultation"`
	GPAdviceCount              int64      `gorm:"column:shift_gp_advice_count" json:"shift_gp_advice_count"`
	TreatmentCentreCount       int64      `gorm:"column:shift_treatment_centre_count" json:"shift_treatment_centre_count"`
	VisitCount                 int64      `gorm:"column:shift_visit_count" json:"shift_visit_count"`
	AdviceClosedPercentage     float64    `gorm:"column:advice_closed_percentage" json:"advice_closed_percentage"`
	AvgGPAdviceMins            *float64   `gorm:"column:avg_gp_advice_mins" json:"avg_gp_advice_mins"`
	AvgTreatmentCentreMins     *float64   `gorm:"column:avg_treatment_centre_mins" json:"avg_treatment_centre_mins"`
	AvgVisitMins               *float64   `gorm:"column:avg_visit_mins" json:"avg_visit_mins"`
	ShiftRole                  string     `gorm:"column:shift_role" json:"shift_role"`
	Location                   string     `gorm:"column:location" json:"location"`
	ShiftStatus                string     `gorm:"column:shift_status" json:"shift_status"`
}

// ShiftConsultationRow is one consultation within a shift. A negative
// duration means the record's end precedes its begin; it is reported
// as-is because it signals a data-quality problem upstream.
type ShiftConsultationRow struct {
	PersonID                 int64      `gorm:"column:personid" json:"personid"`
	RSLID                    int64      `gorm:"column:rslid" json:"rslid"`
	ShiftStartTime           *time.Time `gorm:"column:shift_start_time" json:"shift_start_time"`
	ShiftEndTime             *time.Time `gorm:"column:shift_end_time" json:"shift_end_time"`
	CaseNumber               *int64     `gorm:"column:case_number" json:"case_number"`
	ConsultationType         string     `gorm:"column:consultation_type" json:"consultation_type"`
	NextConsultationType     string     `gorm:"column:next_consultation_type" json:"next_consultation_type"`
	ConsultationStart        *time.Time `gorm:"column:consultation_start" json:"consultation_start"`
	ConsultationEnd          *time.Time `gorm:"column:consultation_end" json:"consultation_end"`
	ConsultationDurationMins *float64   `gorm:"column:consultation_duration_mins" json:"consultation_duration_mins"`
}

// CaseDetailRow is one consultation belonging to a case with the
// case-level fields repeated on every row, plus the optional survey.
type CaseDetailRow struct {
	Caseno               int64      `gorm:"column:caseno" json:"caseno"`
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
	CCG                  string     `gorm:"column:ccg" json:"ccg"`
	ProviderGroup        string     `gorm:"column:provider_group" json:"provider_group"`
	InformationalOutcome string     `gorm:"column:informational_outcome" json:"informational_outcome"`

	ClinicianPersonID *int64 `gorm:"column:clinician_personid" json:"clinician_personid"`

	RSLID                    *int64     `gorm:"column:rslid" json:"rslid"`
	ConsType                 string     `gorm:"column:cons_type" json:"cons_type"`
	NextConsType             string     `gorm:"column:next_cons_type" json:"next_cons_type"`
	ConsBeginTime            *time.Time `gorm:"column:cons_begin_time" json:"cons_begin_time"`
	ConsEndTime              *time.Time `gorm:"column:cons_end_time" json:"cons_end_time"`
	ConsCliniciansName       string     `gorm:"column:cons_clinicians_name" json:"cons_clinicians_name"`
	ReportedCondition        string     `gorm:"column:reported_condition" json:"reported_condition"`
	ConsHistory              string     `gorm:"column:cons_history" json:"cons_history"`
	ConsExamination          string     `gorm:"column:cons_examination" json:"cons_examination"`
	ConsDiagnosis            string     `gorm:"column:cons_diagnosis" json:"cons_diagnosis"`
	ConsTreatment            string     `gorm:"column:cons_treatment" json:"cons_treatment"`
	ConsPrescriptions        string     `gorm:"column:cons_prescriptions" json:"cons_prescriptions"`
	InformationalOutcomes    string     `gorm:"column:informational_outcomes" json:"informational_outcomes"`
	ConsultationDurationMins *float64   `gorm:"column:consultation_duration_mins" json:"consultation_duration_mins"`

	Satisfaction   *float64 `gorm:"column:satisfaction" json:"satisfaction"`
	SurveyComments string   `gorm:"column:survey_comments" json:"survey_comments"`
}

// HourlyActivityRow is one hour of the gap-filled activity series.
// Hours with no matching calls, staffing or consultations carry zeros,
// never missing rows.
type HourlyActivityRow struct {
	Hour                     string  `json:"hour"`
	NumCalls                 int64   `json:"num_calls"`
	TotalMinutes             float64 `json:"total_minutes"`
	TotalInboundMinutes      float64 `json:"total_inbound_minutes"`
	NumCallHandlers          int64   `json:"num_call_handlers"`
	InboundMinutesPerHandler float64 `json:"inbound_minutes_per_handler"`
	GPAdviceConsults         int64   `json:"gp_advice_consults"`
	AdviceConsults           int64   `json:"advice_consults"`
	Visit                    int64   `json:"visit"`
	TreatmentCentre          int64   `json:"treatment_centre"`
	NWASTriage               int64   `json:"nwas_triage"`
}

// RotaActivityRow is one rota joined to its clinician, restricted to
// clinicians that appear in the consultation records. Duration and
// Value stay as raw strings; the reshape layer coerces them.
type RotaActivityRow struct {
	RSLID    int64     `gorm:"column:rslid" json:"rslid"`
	PersonID int64     `gorm:"column:personid" json:"personid"`
	Date     time.Time `gorm:"column:date" json:"date"`
	Role     string    `gorm:"column:role" json:"role"`
	Duration string    `gorm:"column:duration" json:"duration"`
	Value    string    `gorm:"column:value" json:"value"`
	FullName string    `gorm:"column:fullname" json:"fullname"`
	Adastra  string    `gorm:"column:adastra" json:"adastra"`
}

// DailyRollupRow is one (date, role) bucket of summed hours and cost
// for the daily charts.
type DailyRollupRow struct {
	Date       time.Time `json:"date"`
	Role       string    `json:"role"`
	TotalHours float64   `json:"total_hours"`
	TotalCost  float64   `json:"total_cost"`
}
