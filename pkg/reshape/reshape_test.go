package reshape

import (
	"math"
	"testing"
	"time"

	"github.com/arnavshah/clinops-api-go/pkg/models"
)

func TestEnsureDurationFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"7:30", "7:30:00"},
		{"0:05", "0:05:00"},
		{"12:00:00", "12:00:00"},
		{"1:02:03", "1:02:03"},
		{"90", "90"},
		{"", ""},
		{"1:2:3:4", "1:2:3:4"},
	}

	for _, c := range cases {
		if got := EnsureDurationFormat(c.in); got != c.want {
			t.Errorf("EnsureDurationFormat(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDurationHours(t *testing.T) {
	if got := DurationHours("7:30"); got != 7.5 {
		t.Errorf("7:30 = %f, want 7.5", got)
	}
	if got := DurationHours("0:45:00"); got != 0.75 {
		t.Errorf("0:45:00 = %f, want 0.75", got)
	}
	if got := DurationHours("not a duration"); !math.IsNaN(got) {
		t.Errorf("expected NaN for garbage, got %f", got)
	}
	if got := DurationHours(""); !math.IsNaN(got) {
		t.Errorf("expected NaN for empty string, got %f", got)
	}
}

func TestPercentGuardsZeroDenominator(t *testing.T) {
	if p := Percent(3, 0); p != nil {
		t.Errorf("expected nil for zero denominator, got %f", *p)
	}
	p := Percent(2.5, 10)
	if p == nil || *p != 25 {
		t.Errorf("Percent(2.5, 10) = %v, want 25", p)
	}
	p = Percent(1, 3)
	if p == nil || *p != 33.33 {
		t.Errorf("Percent(1, 3) = %v, want 33.33", p)
	}
}

func TestDailyRollup(t *testing.T) {
	d1 := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)

	rows := []models.RotaActivityRow{
		{Date: d1, Role: "GP", Duration: "4:00", Value: "100.50"},
		{Date: d1, Role: "GP", Duration: "3:30", Value: "80"},
		{Date: d1, Role: "Call Handler", Duration: "8:00", Value: "60"},
		{Date: d2, Role: "GP", Duration: "2:00", Value: "40"},
		// Out of range, must not contribute.
		{Date: d2.AddDate(0, 1, 0), Role: "GP", Duration: "9:00", Value: "999"},
		// Unparseable fields count as missing, not zero.
		{Date: d1, Role: "GP", Duration: "??", Value: "n/a"},
	}

	out := DailyRollup(rows, d1, d2)
	if len(out) != 3 {
		t.Fatalf("expected 3 buckets, got %d: %+v", len(out), out)
	}

	// Sorted by date then role.
	if out[0].Role != "Call Handler" || out[0].TotalHours != 8 || out[0].TotalCost != 60 {
		t.Errorf("unexpected first bucket: %+v", out[0])
	}
	if out[1].Role != "GP" || out[1].TotalHours != 7.5 || out[1].TotalCost != 180.5 {
		t.Errorf("unexpected GP day-one bucket: %+v", out[1])
	}
	if !out[2].Date.Equal(d2) || out[2].TotalHours != 2 {
		t.Errorf("unexpected day-two bucket: %+v", out[2])
	}
}

func TestMonthYearOptions(t *testing.T) {
	rows := []models.RotaActivityRow{
		{Date: time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 10, 28, 0, 0, 0, 0, time.UTC)},
	}

	got := MonthYearOptions(rows)
	want := []string{"(All)", "October 2024", "September 2024"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option %d = %q, want %q", i, got[i], want[i])
		}
	}
}
