package sonar

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/solardome/policyforge/internal/finding"
)

type report struct {
	Issues []issue `json:"issues"`
}

type issue struct {
	Key       string `json:"key"`
	Rule      string `json:"rule"`
	Severity  string `json:"severity"`
	Component string `json:"component"`
	Line      int    `json:"line"`
	Message   string `json:"message"`
}

// Parse maps a SonarQube issues export into canonical SAST findings, in
// source document order. Severity is passed through in SonarQube's native
// vocabulary (BLOCKER/CRITICAL/MAJOR/...), tagged with its scale.
func Parse(payload []byte) ([]finding.Finding, error) {
	var r report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("parse sonarqube json: %w", err)
	}
	out := make([]finding.Finding, 0, len(r.Issues))
	for _, is := range r.Issues {
		file := componentFile(is.Component)
		location := file
		if is.Line != 0 {
			location = file + ":" + strconv.Itoa(is.Line)
		}
		message := strings.TrimSpace(is.Message)
		rule := finding.FirstNonEmpty(is.Rule, "this issue")
		out = append(out, finding.Finding{
			Kind:           finding.KindSAST,
			ID:             finding.FirstNonEmpty(is.Key, "N/A"),
			Title:          finding.FirstNonEmpty(message, "No title"),
			Description:    finding.FirstNonEmpty(message, "No description"),
			Severity:       finding.FirstNonEmpty(is.Severity, "UNKNOWN"),
			SeverityScale:  finding.ScaleSonarQube,
			Location:       location,
			Rule:           finding.FirstNonEmpty(is.Rule, "N/A"),
			Recommendation: fmt.Sprintf("Fix %s - Refer to SonarQube documentation", rule),
		})
	}
	return out, nil
}

// componentFile strips the project-key prefix from a SonarQube component
// reference ("project:src/app.go" -> "src/app.go").
func componentFile(component string) string {
	if strings.Contains(component, ":") {
		parts := strings.Split(component, ":")
		return parts[len(parts)-1]
	}
	return component
}
