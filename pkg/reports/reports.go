// Package reports is the query library: a fixed set of parameterized
// aggregation queries over the clinical store, memoized through the
// result cache. Each query returns a flat slice of rows; nothing here
// ever writes to the store.
package reports

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/cache"
	"github.com/arnavshah/clinops-api-go/pkg/models"
	"gorm.io/gorm"
)

// DefaultEpoch is the month every "(All)" filter resolves to. The
// filter deliberately does not mean unbounded history: reporting
// started with this month and an open-ended scan would hit cold
// partitions. Override with REPORTING_EPOCH (YYYY-MM-DD).
var DefaultEpoch = time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)

// MonthFilterAll is the sentinel the month selector sends for the
// default scope.
const MonthFilterAll = "(All)"

// TypeGroups holds the consultation-type memberships the aggregates
// bucket by. The members come from the data, not the code; these are
// the production values.
type TypeGroups struct {
	Advice          []string
	TreatmentCentre []string
	Visit           []string
	Triage          []string
}

// DefaultTypeGroups returns the production consultation-type buckets.
func DefaultTypeGroups() TypeGroups {
	return TypeGroups{
		Advice:          []string{"GP Advice", "Advice"},
		TreatmentCentre: []string{"Treatment Centre", "CAS Treatment Centre - BARDOC"},
		Visit:           []string{"Visit", "HMR VH Visit"},
		Triage:          []string{"NWAS Triage"},
	}
}

// AdviceDuration is the bucket the advice average-duration figure is
// computed over. It has always included triage encounters, which are
// worked the same way on the phones.
func (g TypeGroups) AdviceDuration() []string {
	return append(append([]string{}, g.Advice...), g.Triage...)
}

// InScope is the union of all buckets; consultations outside it do not
// count toward any clinician or shift statistic.
func (g TypeGroups) InScope() []string {
	out := append([]string{}, g.Advice...)
	out = append(out, g.Triage...)
	out = append(out, g.TreatmentCentre...)
	out = append(out, g.Visit...)
	return out
}

// Service issues the report queries through the result cache.
type Service struct {
	db     *gorm.DB
	cache  *cache.Store
	epoch  time.Time
	groups TypeGroups
}

// New creates a report service. The reporting epoch comes from
// REPORTING_EPOCH when set.
func New(db *gorm.DB, store *cache.Store) *Service {
	epoch := DefaultEpoch
	if v := os.Getenv("REPORTING_EPOCH"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			epoch = t
		}
	}
	return &Service{db: db, cache: store, epoch: epoch, groups: DefaultTypeGroups()}
}

// Groups exposes the active consultation-type buckets.
func (s *Service) Groups() TypeGroups { return s.groups }

// ResolveMonthFilter turns a month selector value ("October 2024" or
// "(All)") into the first-of-month date string the queries compare
// against. "(All)" resolves to the reporting epoch.
func (s *Service) ResolveMonthFilter(filter string) (string, error) {
	if filter == "" || filter == MonthFilterAll {
		return s.epoch.Format("2006-01-02"), nil
	}
	t, err := time.Parse("January 2006", filter)
	if err != nil {
		return "", fmt.Errorf("invalid month filter %q: %w", filter, err)
	}
	return t.Format("2006-01-02"), nil
}

const rosterQuery = `
WITH shift_hours AS (
    SELECT
        u.fullname AS clinician_name,
        r.personid,
        COUNT(DISTINCT r.rslid) AS total_shifts,
        ROUND(SUM(r.durationdecimal)::numeric, 2) AS total_hours,
        ROUND(SUM(CAST(NULLIF(r.value, '') AS numeric))::numeric, 2) AS total_cost
    FROM rotas r
    LEFT JOIN users u ON r.personid = u.personid
    WHERE DATE_TRUNC('month', r.truelogin) = ?::date
      AND r.truelogin IS NOT NULL
      AND r.truelogout IS NOT NULL
    GROUP BY u.fullname, r.personid
    HAVING u.fullname IS NOT NULL
),
consultation_stats AS (
    SELECT
        u.fullname AS clinician_name,
        COUNT(DISTINCT c.caseno) AS total_consultations,
        ROUND(SUM(EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/3600)::numeric, 2) AS total_consultation_hours,
        ROUND((
            SELECT total_cost
            FROM shift_hours sh
            WHERE sh.clinician_name = u.fullname
        ) / NULLIF(COUNT(DISTINCT c.caseno), 0)::numeric, 2) AS avg_consultation_cost,
        COUNT(DISTINCT CASE WHEN c.cons_type IN ? THEN c.caseno END) AS gp_advice_count,
        COUNT(DISTINCT CASE WHEN c.cons_type IN ? THEN c.caseno END) AS treatment_centre_count,
        COUNT(DISTINCT CASE WHEN c.cons_type IN ? THEN c.caseno END) AS visit_count,
        COUNT(DISTINCT CASE
            WHEN (c.cons_type IN ? AND c.next_cons_type IN ?)
            THEN c.caseno
        END) AS same_advice_type_count,
        COUNT(DISTINCT CASE
            WHEN c.cons_type IN ?
            THEN c.caseno
        END) AS total_advice_count,
        ROUND(AVG(
            CASE
                WHEN c.cons_type IN ?
                THEN EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/60
            END
        )::numeric, 2) AS avg_gp_advice_duration,
        ROUND(AVG(
            CASE
                WHEN c.cons_type IN ?
                THEN EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/60
            END
        )::numeric, 2) AS avg_treatment_centre_duration,
        ROUND(AVG(
            CASE
                WHEN c.cons_type IN ?
                THEN EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/60
            END
        )::numeric, 2) AS avg_visit_duration
    FROM rotas r
    LEFT JOIN consultations c ON r.rslid = c.rslid
    LEFT JOIN users u ON r.personid = u.personid
    WHERE DATE_TRUNC('month', r.truelogin) = ?::date
      AND r.truelogin IS NOT NULL
      AND r.truelogout IS NOT NULL
      AND c.cons_type IN ?
    GROUP BY u.fullname
    HAVING u.fullname IS NOT NULL
)
SELECT
    sh.personid,
    sh.clinician_name,
    sh.total_cost,
    sh.total_shifts,
    sh.total_hours,
    cs.total_consultation_hours,
    ROUND((cs.total_consultation_hours / NULLIF(sh.total_hours, 0) * 100)::numeric, 2) AS consultation_time_percentage,
    cs.total_consultations,
    cs.avg_consultation_cost,
    cs.gp_advice_count,
    cs.treatment_centre_count,
    cs.visit_count,
    COALESCE(ROUND((cs.same_advice_type_count::numeric / NULLIF(cs.total_advice_count, 0) * 100)::numeric, 2), 0) AS advice_closed_percentage,
    cs.avg_gp_advice_duration AS avg_gp_advice_mins,
    cs.avg_treatment_centre_duration AS avg_treatment_centre_mins,
    cs.avg_visit_duration AS avg_visit_mins
FROM shift_hours sh
INNER JOIN consultation_stats cs ON sh.clinician_name = cs.clinician_name
ORDER BY sh.total_shifts DESC, sh.clinician_name`

// Roster returns one row per clinician active in the selected month.
// Clinicians with shifts but no in-scope consultations drop out (the
// inner join on consultation_stats).
func (s *Service) Roster(ctx context.Context, monthFilter string) ([]models.RosterRow, error) {
	month, err := s.ResolveMonthFilter(monthFilter)
	if err != nil {
		return nil, err
	}

	g := s.groups
	return cache.Fetch(s.cache, cache.Key("roster", month), func() ([]models.RosterRow, error) {
		var rows []models.RosterRow
		err := s.db.WithContext(ctx).Raw(rosterQuery,
			month,
			g.Advice, g.TreatmentCentre, g.Visit,
			g.Advice, g.Advice,
			g.Advice,
			g.AdviceDuration(), g.TreatmentCentre, g.Visit,
			month, g.InScope(),
		).Scan(&rows).Error
		return rows, err
	})
}

const clinicianShiftsQuery = `
WITH shift_consultation_stats AS (
    SELECT
        r.rslid,
        COUNT(DISTINCT c.caseno) AS shift_consultations,
        ROUND(SUM(EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/3600)::numeric, 2) AS shift_consultation_hours,
        COUNT(DISTINCT CASE WHEN c.cons_type IN ? THEN c.caseno END) AS shift_gp_advice_count,
        COUNT(DISTINCT CASE WHEN c.cons_type IN ? THEN c.caseno END) AS shift_treatment_centre_count,
        COUNT(DISTINCT CASE WHEN c.cons_type IN ? THEN c.caseno END) AS shift_visit_count,
        COUNT(DISTINCT CASE
            WHEN (c.cons_type IN ? AND c.next_cons_type IN ?)
            THEN c.caseno
        END) AS same_advice_type_count,
        COUNT(DISTINCT CASE
            WHEN c.cons_type IN ?
            THEN c.caseno
        END) AS total_advice_count,
        ROUND(AVG(
            CASE
                WHEN c.cons_type IN ?
                THEN EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/60
            END
        )::numeric, 2) AS shift_avg_gp_advice_duration,
        ROUND(AVG(
            CASE
                WHEN c.cons_type IN ?
                THEN EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/60
            END
        )::numeric, 2) AS shift_avg_treatment_centre_duration,
        ROUND(AVG(
            CASE
                WHEN c.cons_type IN ?
                THEN EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/60
            END
        )::numeric, 2) AS shift_avg_visit_duration
    FROM rotas r
    LEFT JOIN consultations c ON r.rslid = c.rslid
    WHERE DATE_TRUNC('month', r.truelogin) = ?::date
      AND r.truelogin IS NOT NULL
      AND r.truelogout IS NOT NULL
      AND c.cons_type IN ?
      AND r.personid = ?
    GROUP BY r.rslid
)
SELECT
    u.fullname AS clinician_name,
    u.personid,
    r.rslid,
    DATE(r.date) AS shift_date,
    r.truelogin AS shift_start,
    r.truelogout AS shift_end,
    CAST(NULLIF(r.value, '') AS numeric) AS shift_cost,
    r.durationdecimal AS shift_hours,
    cs.shift_consultation_hours,
    ROUND((cs.shift_consultation_hours / NULLIF(r.durationdecimal, 0) * 100)::numeric, 2) AS consultation_time_percentage,
    cs.shift_consultations AS total_consultations,
    ROUND((CAST(NULLIF(r.value, '') AS numeric) / NULLIF(cs.shift_consultations, 0))::numeric, 2) AS cost_per_consultation,
    cs.shift_gp_advice_count,
    cs.shift_treatment_centre_count,
    cs.shift_visit_count,
    COALESCE(ROUND((cs.same_advice_type_count::numeric / NULLIF(cs.total_advice_count, 0) * 100)::numeric, 2), 0) AS advice_closed_percentage,
    cs.shift_avg_gp_advice_duration AS avg_gp_advice_mins,
    cs.shift_avg_treatment_centre_duration AS avg_treatment_centre_mins,
    cs.shift_avg_visit_duration AS avg_visit_mins,
    r.role AS shift_role,
    r.dutystation AS location,
    r.status AS shift_status
FROM rotas r
LEFT JOIN users u ON r.personid = u.personid
LEFT JOIN shift_consultation_stats cs ON r.rslid = cs.rslid
WHERE DATE_TRUNC('month', r.truelogin) = ?::date
  AND r.truelogin IS NOT NULL
  AND r.truelogout IS NOT NULL
  AND r.personid = ?
  AND EXISTS (
      SELECT 1
      FROM consultations c
      WHERE c.rslid = r.rslid
        AND c.cons_type IN ?
  )
ORDER BY r.date, r.truelogin`

// ClinicianShifts returns one row per shift for the clinician in the
// selected month, restricted to shifts with at least one in-scope
// consultation.
func (s *Service) ClinicianShifts(ctx context.Context, personID int64, monthFilter string) ([]models.ClinicianShiftRow, error) {
	month, err := s.ResolveMonthFilter(monthFilter)
	if err != nil {
		return nil, err
	}

	g := s.groups
	return cache.Fetch(s.cache, cache.Key("clinician_shifts", personID, month), func() ([]models.ClinicianShiftRow, error) {
		var rows []models.ClinicianShiftRow
		err := s.db.WithContext(ctx).Raw(clinicianShiftsQuery,
			g.Advice, g.TreatmentCentre, g.Visit,
			g.Advice, g.Advice,
			g.Advice,
			g.AdviceDuration(), g.TreatmentCentre, g.Visit,
			month, g.InScope(), personID,
			month, personID, g.InScope(),
		).Scan(&rows).Error
		return rows, err
	})
}

const shiftConsultationsQuery = `
SELECT
    r.personid,
    r.rslid,
    r.truelogin AS shift_start_time,
    r.truelogout AS shift_end_time,
    c.caseno AS case_number,
    c.cons_type AS consultation_type,
    c.next_cons_type AS next_consultation_type,
    c.cons_begin_time AS consultation_start,
    c.cons_end_time AS consultation_end,
    ROUND((EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/60)::numeric, 2) AS consultation_duration_mins
FROM rotas r
LEFT JOIN consultations c ON r.rslid = c.rslid
WHERE r.rslid = ?
ORDER BY c.cons_begin_time`

// ShiftConsultations returns one row per consultation in the shift,
// ordered by start time. The left join keeps a shift with no
// consultations visible as a single sparse row.
func (s *Service) ShiftConsultations(ctx context.Context, rslid int64) ([]models.ShiftConsultationRow, error) {
	return cache.Fetch(s.cache, cache.Key("shift_consultations", rslid), func() ([]models.ShiftConsultationRow, error) {
		var rows []models.ShiftConsultationRow
		err := s.db.WithContext(ctx).Raw(shiftConsultationsQuery, rslid).Scan(&rows).Error
		return rows, err
	})
}

const caseDetailQuery = `
SELECT
    ca.caseno,
    ca.active_date,
    ca.location,
    ca.sex,
    ca.age,
    ca.call_origin,
    ca.clinical_codes,
    ca.comfort_call,
    ca.dx_outcome,
    ca.received_case_type,
    ca.finished_case_type,
    ca.priority_on_reception,
    ca.priority_after_assessment,
    ca.priority_on_completion,
    ca.ccg,
    ca.provider_group,
    ca.informational_outcome,
    u.personid AS clinician_personid,
    c.rslid,
    c.cons_type,
    c.next_cons_type,
    c.cons_begin_time,
    c.cons_end_time,
    c.cons_clinicians_name,
    c.reported_condition,
    c.cons_history,
    c.cons_examination,
    c.cons_diagnosis,
    c.cons_treatment,
    c.cons_prescriptions,
    c.informational_outcomes,
    ROUND((EXTRACT(EPOCH FROM (c.cons_end_time - c.cons_begin_time))/60)::numeric, 2) AS consultation_duration_mins,
    s.satisfaction,
    s.comments AS survey_comments
FROM cases ca
LEFT JOIN consultations c ON ca.caseno = c.caseno
LEFT JOIN users u ON c.cons_clinicians_name = u.adastra
LEFT JOIN surveys s ON ca.caseno = s.caseno
WHERE ca.caseno = ?
ORDER BY c.cons_begin_time`

// CaseDetail returns one row per consultation belonging to the case,
// with the case fields repeated and the survey joined when present.
func (s *Service) CaseDetail(ctx context.Context, caseno int64) ([]models.CaseDetailRow, error) {
	return cache.Fetch(s.cache, cache.Key("case_detail", caseno), func() ([]models.CaseDetailRow, error) {
		var rows []models.CaseDetailRow
		err := s.db.WithContext(ctx).Raw(caseDetailQuery, caseno).Scan(&rows).Error
		return rows, err
	})
}

const rotaActivityQuery = `
SELECT
    r.rslid,
    r.personid,
    r.date,
    r.role,
    r.duration,
    r.value,
    u.fullname,
    u.adastra
FROM rotas r
INNER JOIN users u ON r.personid = u.personid
WHERE EXISTS (
    SELECT 1 FROM consultations c WHERE c.cons_clinicians_name = u.adastra
)
ORDER BY r.date`

// RotaActivity returns every rota joined to a clinician who appears in
// the consultation records. It feeds the daily rollup charts and the
// month filter options.
func (s *Service) RotaActivity(ctx context.Context) ([]models.RotaActivityRow, error) {
	return cache.Fetch(s.cache, cache.Key("rota_activity"), func() ([]models.RotaActivityRow, error) {
		var rows []models.RotaActivityRow
		err := s.db.WithContext(ctx).Raw(rotaActivityQuery).Scan(&rows).Error
		return rows, err
	})
}
