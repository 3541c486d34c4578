// Package reshape post-processes query results for presentation:
// duration normalization, numeric coercion, the daily hours/cost
// rollup and guarded percentage math. Fields that fail to parse become
// NaN and propagate, they never abort a render cycle.
package reshape

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/models"
)

// EnsureDurationFormat appends seconds to a bare hours:minutes string.
// Anything that is not exactly two colon-separated components passes
// through unchanged.
func EnsureDurationFormat(duration string) string {
	parts := strings.Split(duration, ":")
	if len(parts) == 2 {
		return duration + ":00"
	}
	return duration
}

// DurationHours converts a colon-delimited duration string into
// decimal hours. Unparseable input yields NaN.
func DurationHours(duration string) float64 {
	parts := strings.Split(EnsureDurationFormat(duration), ":")
	if len(parts) != 3 {
		return math.NaN()
	}

	h, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return math.NaN()
	}
	m, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return math.NaN()
	}
	s, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return math.NaN()
	}

	return h + m/60 + s/3600
}

// Number coerces a string to float64, NaN on failure.
func Number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Round2 rounds to two decimal places, matching the SQL aggregates.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percent returns num/den as a percentage rounded to two decimals, or
// nil when the denominator is zero.
func Percent(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	p := Round2(num / den * 100)
	return &p
}

// DailyRollup groups rota rows by (calendar date, role) over the
// inclusive [start, end] date window, summing duration hours and cost.
// NaN durations and costs count as missing, not zero.
func DailyRollup(rows []models.RotaActivityRow, start, end time.Time) []models.DailyRollupRow {
	type bucket struct {
		date  time.Time
		role  string
		hours float64
		cost  float64
	}

	startDay := day(start)
	endDay := day(end)

	buckets := make(map[string]*bucket)
	for _, r := range rows {
		d := day(r.Date)
		if d.Before(startDay) || d.After(endDay) {
			continue
		}

		k := d.Format("2006-01-02") + "|" + r.Role
		b, ok := buckets[k]
		if !ok {
			b = &bucket{date: d, role: r.Role}
			buckets[k] = b
		}

		if hours := DurationHours(r.Duration); !math.IsNaN(hours) {
			b.hours += hours
		}
		if cost := Number(r.Value); !math.IsNaN(cost) {
			b.cost += cost
		}
	}

	out := make([]models.DailyRollupRow, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.DailyRollupRow{
			Date:       b.date,
			Role:       b.role,
			TotalHours: Round2(b.hours),
			TotalCost:  Round2(b.cost),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Role < out[j].Role
	})
	return out
}

// MonthYearOptions derives the month filter choices from rota dates:
// distinct "January 2006" labels, newest first, with "(All)" prepended.
func MonthYearOptions(rows []models.RotaActivityRow) []string {
	seen := make(map[string]time.Time)
	for _, r := range rows {
		label := r.Date.Format("January 2006")
		if _, ok := seen[label]; !ok {
			seen[label] = time.Date(r.Date.Year(), r.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	}

	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return seen[labels[i]].After(seen[labels[j]])
	})

	return append([]string{"(All)"}, labels...)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
