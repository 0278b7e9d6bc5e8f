package finding

import "testing"

func TestSeverityRank(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"CRITICAL", 0},
		{"critical", 0},
		{" High ", 1},
		{"MEDIUM", 2},
		{"low", 3},
		{"BLOCKER", 4},
		{"High (Medium)", 4},
		{"", 4},
	}
	for _, c := range cases {
		if got := SeverityRank(c.in); got != c.want {
			t.Errorf("SeverityRank(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSortBySeverityStable(t *testing.T) {
	findings := []Finding{
		{ID: "a", Severity: "LOW"},
		{ID: "b", Severity: "CRITICAL"},
		{ID: "c", Severity: "LOW"},
		{ID: "d", Severity: "HIGH"},
	}
	SortBySeverity(findings)

	want := []string{"b", "d", "a", "c"}
	for i, id := range want {
		if findings[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, findings[i].ID, id)
		}
	}
}

func TestCountBySeverity(t *testing.T) {
	findings := []Finding{
		{Severity: "CRITICAL"},
		{Severity: "high"},
		{Severity: "HIGH"},
		{Severity: "BLOCKER"},
		{Severity: ""},
	}
	counts := CountBySeverity(findings)

	if counts[SeverityCritical] != 1 {
		t.Errorf("critical = %d, want 1", counts[SeverityCritical])
	}
	if counts[SeverityHigh] != 2 {
		t.Errorf("high = %d, want 2", counts[SeverityHigh])
	}
	if counts[SeverityUnknown] != 2 {
		t.Errorf("unknown = %d, want 2 (BLOCKER and empty)", counts[SeverityUnknown])
	}
	if counts[SeverityMedium] != 0 || counts[SeverityLow] != 0 {
		t.Errorf("medium/low = %d/%d, want 0/0", counts[SeverityMedium], counts[SeverityLow])
	}
}

func TestSeveritySummary(t *testing.T) {
	findings := []Finding{
		{Severity: "CRITICAL"},
		{Severity: "LOW"},
		{Severity: "weird"},
	}
	got := SeveritySummary(findings)
	want := "CRITICAL=1 HIGH=0 MEDIUM=0 LOW=1 UNKNOWN=1"
	if got != want {
		t.Fatalf("SeveritySummary = %q, want %q", got, want)
	}
}
