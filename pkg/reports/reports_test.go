package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/cache"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(nil, cache.New(time.Hour))
}

func TestResolveMonthFilter(t *testing.T) {
	s := newTestService(t)

	got, err := s.ResolveMonthFilter("October 2024")
	if err != nil {
		t.Fatalf("ResolveMonthFilter: %v", err)
	}
	if got != "2024-10-01" {
		t.Errorf("October 2024 resolved to %q", got)
	}

	got, err = s.ResolveMonthFilter("February 2025")
	if err != nil {
		t.Fatalf("ResolveMonthFilter: %v", err)
	}
	if got != "2025-02-01" {
		t.Errorf("February 2025 resolved to %q", got)
	}
}

func TestResolveMonthFilterAllUsesEpoch(t *testing.T) {
	s := newTestService(t)

	// "(All)" is documented to mean the reporting epoch, not
	// unbounded history.
	for _, filter := range []string{MonthFilterAll, ""} {
		got, err := s.ResolveMonthFilter(filter)
		if err != nil {
			t.Fatalf("ResolveMonthFilter(%q): %v", filter, err)
		}
		if got != DefaultEpoch.Format("2006-01-02") {
			t.Errorf("ResolveMonthFilter(%q) = %q, want the epoch", filter, got)
		}
	}
}

func TestResolveMonthFilterRejectsGarbage(t *testing.T) {
	s := newTestService(t)

	for _, filter := range []string{"Octember 2024", "2024-10", "next month"} {
		if _, err := s.ResolveMonthFilter(filter); err == nil {
			t.Errorf("expected an error for %q", filter)
		}
	}
}

func TestTypeGroupsInScope(t *testing.T) {
	g := DefaultTypeGroups()

	scope := g.InScope()
	want := []string{
		"GP Advice", "Advice", "NWAS Triage",
		"Treatment Centre", "CAS Treatment Centre - BARDOC",
		"Visit", "HMR VH Visit",
	}
	if len(scope) != len(want) {
		t.Fatalf("in-scope list has %d members, want %d: %v", len(scope), len(want), scope)
	}
	members := strings.Join(scope, "|")
	for _, w := range want {
		if !strings.Contains(members, w) {
			t.Errorf("in-scope list is missing %q", w)
		}
	}
}

func TestAdviceDurationIncludesTriage(t *testing.T) {
	g := DefaultTypeGroups()

	bucket := strings.Join(g.AdviceDuration(), "|")
	if !strings.Contains(bucket, "NWAS Triage") {
		t.Errorf("advice duration bucket must include triage, got %q", bucket)
	}
	if !strings.Contains(bucket, "GP Advice") {
		t.Errorf("advice duration bucket must include advice, got %q", bucket)
	}
}
