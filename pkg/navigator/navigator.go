// Package navigator implements the four-level drill-down over the
// report queries: all clinicians, one clinician's shifts, one shift's
// consultations, one case. Descent is gated on exactly one selected
// row; zero or several selections hold the session at the current
// level with a prompt rather than failing.
package navigator

import (
	"context"
	"errors"

	"github.com/arnavshah/clinops-api-go/pkg/models"
)

// Level identifies the drill-down depth.
type Level int

const (
	LevelRoster Level = iota
	LevelClinicianShifts
	LevelShiftConsultations
	LevelCaseDetail
)

func (l Level) String() string {
	switch l {
	case LevelRoster:
		return "roster"
	case LevelClinicianShifts:
		return "clinician_shifts"
	case LevelShiftConsultations:
		return "shift_consultations"
	case LevelCaseDetail:
		return "case_detail"
	}
	return "unknown"
}

// SelectExactlyOnePrompt is the user-facing message for a held descent.
const SelectExactlyOnePrompt = "select exactly one row"

// ErrSelectExactlyOne marks a descent attempt with zero or multiple
// rows selected. It is a held state, not a failure: the current level
// re-displays with the prompt.
var ErrSelectExactlyOne = errors.New(SelectExactlyOnePrompt)

// ErrAtCaseDetail marks a descent attempt from the terminal level.
var ErrAtCaseDetail = errors.New("case detail is the last level")

// Selection is the tagged selection state of the current level's
// table: no row, exactly one row (with its key), or several rows.
type Selection struct {
	count int
	key   int64
}

// NewSelection derives the selection state from the selected row keys.
func NewSelection(keys []int64) Selection {
	if len(keys) == 1 {
		return Selection{count: 1, key: keys[0]}
	}
	return Selection{count: len(keys)}
}

// One returns the selected key when exactly one row is selected.
func (s Selection) One() (int64, bool) {
	return s.key, s.count == 1
}

// Count reports how many rows are selected.
func (s Selection) Count() int { return s.count }

// Filters are the roster-level query filters. They carry into the
// clinician level; shift and case queries are keyed purely by id.
type Filters struct {
	Role      string `json:"role"`
	MonthYear string `json:"month_year"`
}

// QuerySource is the slice of the report service the navigator needs.
type QuerySource interface {
	Roster(ctx context.Context, monthFilter string) ([]models.RosterRow, error)
	ClinicianShifts(ctx context.Context, personID int64, monthFilter string) ([]models.ClinicianShiftRow, error)
	ShiftConsultations(ctx context.Context, rslid int64) ([]models.ShiftConsultationRow, error)
	CaseDetail(ctx context.Context, caseno int64) ([]models.CaseDetailRow, error)
}

// Session is one operator's drill-down state. All access is
// single-request-at-a-time per session; the session itself holds no
// locks.
type Session struct {
	ID      string
	source  QuerySource
	filters Filters

	level     Level
	selection Selection

	personID int64
	rslid    int64
	caseno   int64
}

// NewSession starts a session at the roster level.
func NewSession(id string, source QuerySource, filters Filters) *Session {
	return &Session{ID: id, source: source, filters: filters}
}

// Level reports the current drill-down depth.
func (s *Session) Level() Level { return s.level }

// Filters reports the active roster-level filters.
func (s *Session) Filters() Filters { return s.filters }

// Keys reports the keys chosen on the way down, zero where not yet
// descended.
func (s *Session) Keys() (personID, rslid, caseno int64) {
	return s.personID, s.rslid, s.caseno
}

// SetFilters replaces the roster filters and resets all descendant
// state back to the roster level.
func (s *Session) SetFilters(filters Filters) {
	s.filters = filters
	s.level = LevelRoster
	s.selection = Selection{}
	s.personID, s.rslid, s.caseno = 0, 0, 0
}

// Select records the selected row keys for the current level's table.
func (s *Session) Select(keys []int64) Selection {
	s.selection = NewSelection(keys)
	return s.selection
}

// Selection reports the current selection state.
func (s *Session) Selection() Selection { return s.selection }

// Current loads the table for the current level. The roster filters
// only parameterize the top two levels.
func (s *Session) Current(ctx context.Context) (any, error) {
	switch s.level {
	case LevelRoster:
		return s.source.Roster(ctx, s.filters.MonthYear)
	case LevelClinicianShifts:
		return s.source.ClinicianShifts(ctx, s.personID, s.filters.MonthYear)
	case LevelShiftConsultations:
		return s.source.ShiftConsultations(ctx, s.rslid)
	case LevelCaseDetail:
		return s.source.CaseDetail(ctx, s.caseno)
	}
	return nil, errors.New("unknown drill-down level")
}

// Descend moves one level down using the single selected row's key as
// the next query parameter. With zero or several rows selected the
// session stays put and the next level's query is never issued.
func (s *Session) Descend(ctx context.Context) error {
	if s.level == LevelCaseDetail {
		return ErrAtCaseDetail
	}

	key, ok := s.selection.One()
	if !ok {
		return ErrSelectExactlyOne
	}

	switch s.level {
	case LevelRoster:
		s.personID = key
	case LevelClinicianShifts:
		s.rslid = key
	case LevelShiftConsultations:
		s.caseno = key
	}

	s.level++
	s.selection = Selection{}
	return nil
}
