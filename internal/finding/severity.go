package finding

import (
	"sort"
	"strconv"
	"strings"
)

// Canonical severity tiers of the CVSS-style scale. SonarQube and ZAP
// findings carry their own vocabularies and rank as unknown here.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
	SeverityUnknown  = "UNKNOWN"
)

var severityRank = map[string]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

const unknownRank = 4

// SeverityRank maps a severity value to its display rank. Comparison is
// case-insensitive; unrecognized values rank last.
func SeverityRank(severity string) int {
	if r, ok := severityRank[strings.ToUpper(strings.TrimSpace(severity))]; ok {
		return r
	}
	return unknownRank
}

// SortBySeverity orders findings ascending by severity rank. The sort is
// stable: findings of equal rank keep their source-document order.
func SortBySeverity(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return SeverityRank(findings[i].Severity) < SeverityRank(findings[j].Severity)
	})
}

// CountBySeverity tallies findings per canonical tier. Values outside the
// four-tier vocabulary land in the UNKNOWN bucket.
func CountBySeverity(findings []Finding) map[string]int {
	counts := map[string]int{
		SeverityCritical: 0,
		SeverityHigh:     0,
		SeverityMedium:   0,
		SeverityLow:      0,
		SeverityUnknown:  0,
	}
	for _, f := range findings {
		key := strings.ToUpper(strings.TrimSpace(f.Severity))
		if _, ok := severityRank[key]; !ok {
			key = SeverityUnknown
		}
		counts[key]++
	}
	return counts
}

// SeveritySummary renders the per-tier counts as a single console line,
// highest tier first.
func SeveritySummary(findings []Finding) string {
	counts := CountBySeverity(findings)
	order := []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityUnknown}
	parts := make([]string, 0, len(order))
	for _, tier := range order {
		parts = append(parts, tier+"="+strconv.Itoa(counts[tier]))
	}
	return strings.Join(parts, " ")
}
