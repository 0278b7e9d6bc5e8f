package policy

import (
	"fmt"
	"os"
	"strings"

	"github.com/solardome/policyforge/internal/console"
	"github.com/solardome/policyforge/internal/finding"
)

// LoadFindingsText re-ingests a rendered findings artifact. The text file
// is the sole contract between the formatting layer and policy synthesis,
// so this parser is deliberately best-effort: labeled lines are collected
// into findings separated by blank lines, and when nothing structured is
// found the raw content becomes a single finding.
//
// Both the English and the French artifact labels are recognized.
func LoadFindingsText(path string, kind finding.Kind) ([]finding.Finding, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load findings text: %w", err)
	}
	content := string(raw)

	findings := []finding.Finding{}
	current := finding.Finding{Kind: kind}
	touched := false

	flush := func() {
		if touched {
			findings = append(findings, current)
			current = finding.Finding{Kind: kind}
			touched = false
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		switch {
		case hasLabel(line, "Title:", "Titre:", "Vulnerability:"):
			current.Title = labelValue(line)
			touched = true
		case hasLabel(line, "Severity:"):
			current.Severity = labelValue(line)
			touched = true
		case hasLabel(line, "Description:"):
			current.Description = labelValue(line)
			touched = true
		case hasLabel(line, "Recommendation:", "Recommandation:"):
			current.Recommendation = labelValue(line)
			touched = true
		case hasLabel(line, "File:", "Location:", "Emplacement:", "Package:", "Target (URL/Endpoint):"):
			current.Location = labelValue(line)
			touched = true
		case hasLabel(line, "CVE:"):
			current.CVE = labelValue(line)
			touched = true
		case strings.HasPrefix(line, "CWE"):
			current.CWEID = labelValue(line)
			touched = true
		default:
			// Severity keywords sometimes appear without a label.
			upper := strings.ToUpper(line)
			for _, sev := range []string{finding.SeverityCritical, finding.SeverityHigh, finding.SeverityMedium, finding.SeverityLow} {
				if strings.Contains(upper, sev) && current.Severity == "" {
					current.Severity = sev
					touched = true
					break
				}
			}
		}
	}
	flush()

	if len(findings) == 0 {
		console.Errorf("Could not parse structured findings, using raw content")
		description := content
		if len(description) > 500 {
			description = description[:500]
		}
		findings = []finding.Finding{{
			Kind:        kind,
			Severity:    "UNKNOWN",
			Title:       "Security Report Analysis",
			Description: description,
		}}
	}
	return findings, nil
}

func hasLabel(line string, labels ...string) bool {
	for _, l := range labels {
		if strings.HasPrefix(line, l) {
			return true
		}
	}
	return false
}

func labelValue(line string) string {
	if i := strings.Index(line, ":"); i != -1 {
		return strings.TrimSpace(line[i+1:])
	}
	return strings.TrimSpace(line)
}
