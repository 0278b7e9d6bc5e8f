package finding

import "strings"

// Kind classifies a finding by the scan family that produced it. It is
// assigned once by the dialect parser and never changes afterwards.
type Kind string

const (
	KindSAST Kind = "SAST"
	KindSCA  Kind = "SCA"
	KindDAST Kind = "DAST"
)

// Severity scales carried alongside the raw severity value. Dialects use
// incompatible vocabularies (SonarQube BLOCKER/MAJOR vs CVSS-tier
// CRITICAL/HIGH vs ZAP risk descriptions); the scale tag lets consumers
// know which one they are looking at instead of a silent remapping.
const (
	ScaleSonarQube  = "sonarqube"
	ScaleSARIFLevel = "sarif-level"
	ScaleCVSSTier   = "cvss-tier"
	ScaleZAPRisk    = "zap-risk"
	ScaleGeneric    = "generic"
)

// Finding is the canonical record every dialect parser produces. After
// parsing, Title, Location, Severity and Recommendation are always
// non-empty: absence is represented by "N/A" or a kind-specific default.
type Finding struct {
	Kind           Kind
	ID             string
	Title          string
	Description    string
	Location       string
	Severity       string
	SeverityScale  string
	Recommendation string

	// Dialect-specific, optional.
	CVE        string
	CVSS       *float64
	CWEID      string
	WASCID     string
	Confidence string
	Rule       string
}

// FilterKind returns the findings of the requested kind, in input order.
func FilterKind(findings []Finding, kind Kind) []Finding {
	out := []Finding{}
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// FirstNonEmpty returns the first candidate whose trimmed value is not
// empty, or "" when every candidate is blank. Dialect parsers use it to
// express ordered field-fallback chains.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
