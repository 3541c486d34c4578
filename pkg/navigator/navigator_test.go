package navigator

import (
	"context"
	"errors"
	"testing"

	"github.com/arnavshah/clinops-api-go/pkg/models"
)

// fakeSource counts invocations and records the keys each level was
// queried with.
type fakeSource struct {
	rosterCalls    int
	clinicianCalls int
	shiftCalls     int
	caseCalls      int

	lastPersonID int64
	lastRSLID    int64
	lastCaseno   int64
	lastMonth    string
}

func (f *fakeSource) Roster(_ context.Context, month string) ([]models.RosterRow, error) {
	f.rosterCalls++
	f.lastMonth = month
	return []models.RosterRow{{PersonID: 11}, {PersonID: 22}}, nil
}

func (f *fakeSource) ClinicianShifts(_ context.Context, personID int64, month string) ([]models.ClinicianShiftRow, error) {
	f.clinicianCalls++
	f.lastPersonID = personID
	f.lastMonth = month
	return []models.ClinicianShiftRow{{RSLID: 501}}, nil
}

func (f *fakeSource) ShiftConsultations(_ context.Context, rslid int64) ([]models.ShiftConsultationRow, error) {
	f.shiftCalls++
	f.lastRSLID = rslid
	return nil, nil
}

func (f *fakeSource) CaseDetail(_ context.Context, caseno int64) ([]models.CaseDetailRow, error) {
	f.caseCalls++
	f.lastCaseno = caseno
	return nil, nil
}

func TestDescendBlockedWithoutSingleSelection(t *testing.T) {
	src := &fakeSource{}
	s := NewSession("t1", src, Filters{MonthYear: "October 2024"})

	// Nothing selected.
	if err := s.Descend(context.Background()); !errors.Is(err, ErrSelectExactlyOne) {
		t.Fatalf("expected ErrSelectExactlyOne, got %v", err)
	}
	if s.Level() != LevelRoster {
		t.Errorf("session must stay at roster, at %s", s.Level())
	}

	// Several selected.
	s.Select([]int64{11, 22})
	if err := s.Descend(context.Background()); !errors.Is(err, ErrSelectExactlyOne) {
		t.Fatalf("expected ErrSelectExactlyOne for multiple rows, got %v", err)
	}
	if src.clinicianCalls != 0 {
		t.Errorf("blocked descent must not query the next level, got %d calls", src.clinicianCalls)
	}
}

func TestDescendPassesSelectedKeyDown(t *testing.T) {
	src := &fakeSource{}
	s := NewSession("t2", src, Filters{MonthYear: "October 2024"})
	ctx := context.Background()

	s.Select([]int64{22})
	if err := s.Descend(ctx); err != nil {
		t.Fatalf("descend to clinician: %v", err)
	}
	if s.Level() != LevelClinicianShifts {
		t.Fatalf("at %s, want clinician_shifts", s.Level())
	}
	if _, err := s.Current(ctx); err != nil {
		t.Fatalf("load clinician shifts: %v", err)
	}
	if src.lastPersonID != 22 {
		t.Errorf("clinician query keyed by %d, want 22", src.lastPersonID)
	}
	if src.lastMonth != "October 2024" {
		t.Errorf("month filter did not carry into the clinician level: %q", src.lastMonth)
	}

	s.Select([]int64{501})
	if err := s.Descend(ctx); err != nil {
		t.Fatalf("descend to shift: %v", err)
	}
	if _, err := s.Current(ctx); err != nil {
		t.Fatalf("load shift consultations: %v", err)
	}
	if src.lastRSLID != 501 {
		t.Errorf("shift query keyed by %d, want 501", src.lastRSLID)
	}

	s.Select([]int64{90210})
	if err := s.Descend(ctx); err != nil {
		t.Fatalf("descend to case: %v", err)
	}
	if s.Level() != LevelCaseDetail {
		t.Fatalf("at %s, want case_detail", s.Level())
	}
	if _, err := s.Current(ctx); err != nil {
		t.Fatalf("load case detail: %v", err)
	}
	if src.lastCaseno != 90210 {
		t.Errorf("case query keyed by %d, want 90210", src.lastCaseno)
	}
}

func TestCaseDetailIsTerminal(t *testing.T) {
	src := &fakeSource{}
	s := NewSession("t3", src, Filters{})
	ctx := context.Background()

	for _, key := range []int64{1, 2, 3} {
		s.Select([]int64{key})
		if err := s.Descend(ctx); err != nil {
			t.Fatalf("descend: %v", err)
		}
	}

	s.Select([]int64{4})
	if err := s.Descend(ctx); !errors.Is(err, ErrAtCaseDetail) {
		t.Errorf("expected ErrAtCaseDetail, got %v", err)
	}
}

func TestSelectionResetsAfterDescent(t *testing.T) {
	s := NewSession("t4", &fakeSource{}, Filters{})

	s.Select([]int64{7})
	if err := s.Descend(context.Background()); err != nil {
		t.Fatalf("descend: %v", err)
	}
	// The new level starts with nothing selected; descending again
	// must be blocked.
	if err := s.Descend(context.Background()); !errors.Is(err, ErrSelectExactlyOne) {
		t.Errorf("expected a held state on the fresh level, got %v", err)
	}
}

func TestSetFiltersResetsDescendantState(t *testing.T) {
	src := &fakeSource{}
	s := NewSession("t5", src, Filters{MonthYear: "October 2024"})
	ctx := context.Background()

	s.Select([]int64{11})
	if err := s.Descend(ctx); err != nil {
		t.Fatalf("descend: %v", err)
	}

	s.SetFilters(Filters{Role: "GP", MonthYear: "September 2024"})
	if s.Level() != LevelRoster {
		t.Errorf("filter change must reset to roster, at %s", s.Level())
	}
	personID, rslid, caseno := s.Keys()
	if personID != 0 || rslid != 0 || caseno != 0 {
		t.Errorf("descendant keys must clear, got %d/%d/%d", personID, rslid, caseno)
	}
	if _, err := s.Current(ctx); err != nil {
		t.Fatalf("reload roster: %v", err)
	}
	if src.lastMonth != "September 2024" {
		t.Errorf("roster reloaded with %q, want the new month", src.lastMonth)
	}
}

func TestSelectionTagging(t *testing.T) {
	if _, ok := NewSelection(nil).One(); ok {
		t.Error("empty selection must not report one row")
	}
	if _, ok := NewSelection([]int64{1, 2}).One(); ok {
		t.Error("multiple selection must not report one row")
	}
	key, ok := NewSelection([]int64{42}).One()
	if !ok || key != 42 {
		t.Errorf("single selection = (%d, %v), want (42, true)", key, ok)
	}
}
