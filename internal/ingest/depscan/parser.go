package depscan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solardome/policyforge/internal/finding"
)

// NoFixAvailable is the resolved version when neither fixedIn nor
// upgradePath names one.
const NoFixAvailable = "No fix available"

const defaultRecommendation = "Mettre à jour le package ou appliquer le correctif recommandé."

type report struct {
	Vulnerabilities []vulnerability `json:"vulnerabilities"`
}

type vulnerability struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Severity    string        `json:"severity"`
	PackageName string        `json:"packageName"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	Identifiers identifiers   `json:"identifiers"`
	CVSSScore   *float64      `json:"cvssScore"`
	FixedIn     []string      `json:"fixedIn"`
	UpgradePath []interface{} `json:"upgradePath"`
}

type identifiers struct {
	CVE []string `json:"CVE"`
}

// Parse maps a dependency-scanner report into canonical SCA findings.
// This dialect is never auto-detected: its top-level `vulnerabilities`
// shape overlaps with generic reports, so callers route here explicitly.
// Severity is stored uppercase on this path (CVSS-tier scale).
func Parse(payload []byte) ([]finding.Finding, error) {
	var r report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("parse dependency-scan json: %w", err)
	}
	out := make([]finding.Finding, 0, len(r.Vulnerabilities))
	for _, v := range r.Vulnerabilities {
		location := packageLocation(v.PackageName, v.Version)
		cve := "N/A"
		if len(v.Identifiers.CVE) > 0 && strings.TrimSpace(v.Identifiers.CVE[0]) != "" {
			cve = strings.TrimSpace(v.Identifiers.CVE[0])
		}
		fixVersion := ResolveRecommendedVersion(v.FixedIn, v.UpgradePath)
		recommendation := defaultRecommendation
		if fixVersion != NoFixAvailable {
			recommendation = fmt.Sprintf("Mettre à jour %s vers la version %s", finding.FirstNonEmpty(v.PackageName, "le package"), fixVersion)
		}
		out = append(out, finding.Finding{
			Kind:           finding.KindSCA,
			ID:             finding.FirstNonEmpty(v.ID, cve, "N/A"),
			Title:          finding.FirstNonEmpty(v.Title, location),
			Description:    strings.TrimSpace(v.Description),
			Severity:       strings.ToUpper(finding.FirstNonEmpty(v.Severity, "UNKNOWN")),
			SeverityScale:  finding.ScaleCVSSTier,
			Location:       location,
			CVE:            cve,
			CVSS:           v.CVSSScore,
			Recommendation: recommendation,
		})
	}
	return out, nil
}

// ResolveRecommendedVersion picks the fix version for a vulnerable
// dependency: the first fixedIn entry when present, otherwise the last
// non-empty string in upgradePath (scanned from the end — this yields the
// latest entry in the path, not the minimal sufficient fix), otherwise
// NoFixAvailable.
func ResolveRecommendedVersion(fixedIn []string, upgradePath []interface{}) string {
	if len(fixedIn) > 0 && strings.TrimSpace(fixedIn[0]) != "" {
		return strings.TrimSpace(fixedIn[0])
	}
	for i := len(upgradePath) - 1; i >= 0; i-- {
		if s, ok := upgradePath[i].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return NoFixAvailable
}

func packageLocation(name, version string) string {
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if name == "" {
		return "N/A"
	}
	if version == "" {
		return name
	}
	return name + "@" + version
}
