package reports

import (
	"context"
	"errors"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/cache"
	"github.com/arnavshah/clinops-api-go/pkg/models"
	"github.com/arnavshah/clinops-api-go/pkg/reshape"
)

// CallHandlerRole is the rota role counted as phone staffing.
const CallHandlerRole = "Call Handler"

type callHourStat struct {
	HourStart           time.Time `gorm:"column:hour_start"`
	NumCalls            int64     `gorm:"column:num_calls"`
	TotalInboundMinutes float64   `gorm:"column:total_inbound_minutes"`
	TotalMinutes        float64   `gorm:"column:total_minutes"`
}

type consTypeCount struct {
	HourStart time.Time `gorm:"column:hour_start"`
	ConsType  string    `gorm:"column:cons_type"`
	N         int64     `gorm:"column:n"`
}

type handlerRotation struct {
	PersonID   int64     `gorm:"column:personid"`
	TrueLogin  time.Time `gorm:"column:truelogin"`
	TrueLogout time.Time `gorm:"column:truelogout"`
}

const callStatsQuery = `
SELECT
    DATE_TRUNC('hour', start_time) AS hour_start,
    COUNT(*) AS num_calls,
    ROUND(SUM(CASE
        WHEN direction = 'INBOUND' THEN duration_talk::decimal / 60
        ELSE 0
    END), 2) AS total_inbound_minutes,
    ROUND(SUM(duration_talk)::decimal / 60, 2) AS total_minutes
FROM phone_calls
WHERE start_time >= ? AND start_time < ?
GROUP BY DATE_TRUNC('hour', start_time)`

const consHourQuery = `
SELECT
    DATE_TRUNC('hour', cons_begin_time) AS hour_start,
    cons_type,
    COUNT(*) AS n
FROM consultations
WHERE cons_begin_time >= ? AND cons_begin_time < ?
GROUP BY DATE_TRUNC('hour', cons_begin_time), cons_type`

const handlerRotationsQuery = `
SELECT personid, truelogin, truelogout
FROM rotas
WHERE role = ?
  AND truelogin IS NOT NULL
  AND truelogout IS NOT NULL
  AND truelogin < ?
  AND truelogout > ?`

// HourlyActivity returns one row per hour in [start, end): call
// volume, phone staffing and consultation counts by begin time. The
// per-hour stats come back sparse from the store and are gap-filled
// against the generated hour calendar here, so hours with no activity
// carry zeros rather than going missing.
func (s *Service) HourlyActivity(ctx context.Context, start, end time.Time) ([]models.HourlyActivityRow, error) {
	if !end.After(start) {
		return nil, errors.New("hourly activity range must end after it starts")
	}

	key := cache.Key("hourly_activity",
		start.Format("2006-01-02 15:04:05"),
		end.Format("2006-01-02 15:04:05"))

	return cache.Fetch(s.cache, key, func() ([]models.HourlyActivityRow, error) {
		var calls []callHourStat
		if err := s.db.WithContext(ctx).Raw(callStatsQuery, start, end).Scan(&calls).Error; err != nil {
			return nil, err
		}

		var cons []consTypeCount
		if err := s.db.WithContext(ctx).Raw(consHourQuery, start, end).Scan(&cons).Error; err != nil {
			return nil, err
		}

		// Fetch every rotation that could touch the window; the exact
		// per-hour overlap rule is applied during assembly.
		var rotations []handlerRotation
		if err := s.db.WithContext(ctx).Raw(handlerRotationsQuery,
			CallHandlerRole, end, start.Add(-time.Minute)).Scan(&rotations).Error; err != nil {
			return nil, err
		}

		return buildHourlySeries(start, end, calls, cons, rotations), nil
	})
}

// buildHourlySeries left-joins the sparse stats against the generated
// [start, end) hour calendar. A rotation counts toward an hour when
// its login+1min falls at or before the hour end and its logout+1min
// falls after the hour start.
func buildHourlySeries(start, end time.Time, calls []callHourStat, cons []consTypeCount, rotations []handlerRotation) []models.HourlyActivityRow {
	callsByHour := make(map[time.Time]callHourStat, len(calls))
	for _, c := range calls {
		callsByHour[c.HourStart.UTC()] = c
	}

	consByHour := make(map[time.Time]map[string]int64)
	for _, c := range cons {
		h := c.HourStart.UTC()
		if consByHour[h] == nil {
			consByHour[h] = make(map[string]int64)
		}
		consByHour[h][c.ConsType] += c.N
	}

	var rows []models.HourlyActivityRow
	for hour := start.Truncate(time.Hour); hour.Before(end); hour = hour.Add(time.Hour) {
		hourEnd := hour.Add(time.Hour)

		row := models.HourlyActivityRow{Hour: hour.Format("2006-01-02 15:00")}

		if c, ok := callsByHour[hour.UTC()]; ok {
			row.NumCalls = c.NumCalls
			row.TotalMinutes = c.TotalMinutes
			row.TotalInboundMinutes = c.TotalInboundMinutes
		}

		handlers := make(map[int64]bool)
		for _, r := range rotations {
			login := r.TrueLogin.Add(time.Minute)
			logout := r.TrueLogout.Add(time.Minute)
			if !login.After(hourEnd) && logout.After(hour) {
				handlers[r.PersonID] = true
			}
		}
		row.NumCallHandlers = int64(len(handlers))

		if row.NumCallHandlers > 0 {
			row.InboundMinutesPerHandler = reshape.Round2(row.TotalInboundMinutes / float64(row.NumCallHandlers))
		}

		for consType, n := range consByHour[hour.UTC()] {
			switch consType {
			case "GP Advice":
				row.GPAdviceConsults += n
			case "Advice":
				row.AdviceConsults += n
			case "Visit":
				row.Visit += n
			case "Treatment Centre":
				row.TreatmentCentre += n
			case "NWAS Triage":
				row.NWASTriage += n
			}
		}

		rows = append(rows, row)
	}

	return rows
}
