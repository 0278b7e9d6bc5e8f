package sarif

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/solardome/policyforge/internal/finding"
)

type report struct {
	Runs []run `json:"runs"`
}

type run struct {
	Results []result `json:"results"`
}

type result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   message    `json:"message"`
	Locations []location `json:"locations"`
}

type message struct {
	Text string `json:"text"`
}

type location struct {
	PhysicalLocation physicalLocation `json:"physicalLocation"`
}

type physicalLocation struct {
	ArtifactLocation artifactLocation `json:"artifactLocation"`
	Region           region           `json:"region"`
}

type artifactLocation struct {
	URI string `json:"uri"`
}

type region struct {
	StartLine int `json:"startLine"`
}

// Parse maps a SARIF log into canonical SAST findings, iterating
// runs[].results[] in document order. SARIF carries no description
// separate from the result message, so title and description share it.
func Parse(payload []byte) ([]finding.Finding, error) {
	var r report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("parse sarif json: %w", err)
	}
	out := []finding.Finding{}
	for _, ru := range r.Runs {
		for _, rs := range ru.Results {
			title := finding.FirstNonEmpty(rs.Message.Text, "No title")
			ruleID := finding.FirstNonEmpty(rs.RuleID, "N/A")
			out = append(out, finding.Finding{
				Kind:           finding.KindSAST,
				ID:             ruleID,
				Title:          title,
				Description:    title,
				Severity:       strings.ToUpper(finding.FirstNonEmpty(rs.Level, "warning")),
				SeverityScale:  finding.ScaleSARIFLevel,
				Location:       resolveLocation(rs),
				Rule:           ruleID,
				Recommendation: fmt.Sprintf("Review and fix %s", ruleID),
			})
		}
	}
	return out, nil
}

func resolveLocation(rs result) string {
	if len(rs.Locations) == 0 {
		return "Unknown"
	}
	physical := rs.Locations[0].PhysicalLocation
	uri := finding.FirstNonEmpty(physical.ArtifactLocation.URI, "Unknown")
	if physical.Region.StartLine != 0 {
		return uri + ":" + strconv.Itoa(physical.Region.StartLine)
	}
	return uri
}
