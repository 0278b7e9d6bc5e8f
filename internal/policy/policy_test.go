package policy

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solardome/policyforge/internal/finding"
	"github.com/solardome/policyforge/internal/llm"
)

func TestBuildPrompt(t *testing.T) {
	findings := []finding.Finding{
		{Kind: finding.KindSAST, Severity: "CRITICAL", Title: "SQLi", Location: "db.go:10", Recommendation: "Parameterize"},
		{Kind: finding.KindSAST, Severity: "LOW", Title: "Verbose errors"},
	}
	prompt := BuildPrompt(findings, finding.KindSAST)

	if !strings.Contains(prompt, "Total: 2") {
		t.Errorf("findings count missing:\n%s", prompt[:200])
	}
	if !strings.Contains(prompt, "Critical: 1 | High: 0 | Medium: 0 | Low: 1") {
		t.Errorf("severity counts missing")
	}
	if !strings.Contains(prompt, "1. [CRITICAL] SQLi\n   Location: db.go:10\n   Recommendation: Parameterize") {
		t.Errorf("finding block missing")
	}
	if !strings.Contains(prompt, "2. [LOW] Verbose errors\n   Location: N/A\n   Recommendation: Review and fix") {
		t.Errorf("default-filled finding block missing")
	}
	if strings.Contains(prompt, "{findings_count}") || strings.Contains(prompt, "{findings_list}") {
		t.Errorf("unreplaced placeholder left in prompt")
	}
}

func TestBuildPromptCapsFindings(t *testing.T) {
	findings := make([]finding.Finding, 20)
	for i := range findings {
		findings[i] = finding.Finding{Kind: finding.KindSCA, Severity: "HIGH", Title: "X"}
	}
	prompt := BuildPrompt(findings, finding.KindSCA)
	if !strings.Contains(prompt, "15. [HIGH]") {
		t.Errorf("15th finding missing")
	}
	if strings.Contains(prompt, "16. [HIGH]") {
		t.Errorf("list should stop at %d findings", maxPromptFindings)
	}
	if !strings.Contains(prompt, "Total: 20") {
		t.Errorf("total should still count all findings")
	}
}

func TestBuildPromptSelectsTemplate(t *testing.T) {
	cases := []struct {
		kind   finding.Kind
		needle string
	}{
		{finding.KindSAST, "SAST security policy"},
		{finding.KindSCA, "SCA security policy"},
		{finding.KindDAST, "DAST security policy"},
	}
	for _, c := range cases {
		if !strings.Contains(BuildPrompt(nil, c.kind), c.needle) {
			t.Errorf("%s: template needle %q missing", c.kind, c.needle)
		}
	}
}

func TestValidate(t *testing.T) {
	p := validPolicy()
	if err := p.Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}

	p = validPolicy()
	p.Metadata.PolicyID = ""
	p.ExecutiveSummary = "  "
	err := p.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "metadata.policy_id") || !strings.Contains(err.Error(), "executive_summary") {
		t.Errorf("error should name every missing field: %v", err)
	}
}

func TestFallback(t *testing.T) {
	findings := []finding.Finding{
		{Severity: "CRITICAL"},
		{Severity: "HIGH"},
		{Severity: "weird"},
	}
	p := Fallback(findings, finding.KindSCA)
	if err := p.Validate(); err != nil {
		t.Fatalf("fallback policy must validate: %v", err)
	}
	if !strings.HasPrefix(p.Metadata.PolicyID, "POL-SCA-") {
		t.Errorf("PolicyID = %q", p.Metadata.PolicyID)
	}
	if p.RiskAssessment.OverallRiskLevel != "High" {
		t.Errorf("OverallRiskLevel = %q, want High with a critical present", p.RiskAssessment.OverallRiskLevel)
	}
	if p.RiskAssessment.CriticalCount != 1 || p.RiskAssessment.HighCount != 1 {
		t.Errorf("counts = %+v", p.RiskAssessment)
	}
	if p.TotalFindings != 3 {
		t.Errorf("TotalFindings = %d", p.TotalFindings)
	}

	calm := Fallback([]finding.Finding{{Severity: "LOW"}}, finding.KindSAST)
	if calm.RiskAssessment.OverallRiskLevel != "Medium" {
		t.Errorf("OverallRiskLevel = %q, want Medium without criticals", calm.RiskAssessment.OverallRiskLevel)
	}
}

type stubGenerator struct {
	result *llm.Result
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (*llm.Result, error) {
	return s.result, s.err
}

func TestGenerate(t *testing.T) {
	raw, err := json.Marshal(validPolicy())
	if err != nil {
		t.Fatal(err)
	}
	gen := &stubGenerator{result: &llm.Result{Text: string(raw), JSON: raw}}
	p, err := Generate(context.Background(), gen, nil, finding.KindSAST)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.Metadata.PolicyID != "POL-TEST-001" {
		t.Errorf("PolicyID = %q", p.Metadata.PolicyID)
	}
}

func TestGenerateFallsBackOnMissingJSON(t *testing.T) {
	gen := &stubGenerator{result: &llm.Result{Text: "sorry, no json"}}
	p, err := Generate(context.Background(), gen, []finding.Finding{{Severity: "CRITICAL"}}, finding.KindDAST)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.ExecutiveSummary != "Manual review required - automated generation failed" {
		t.Errorf("expected fallback policy, got %q", p.ExecutiveSummary)
	}
}

func TestGenerateFallsBackOnInvalidPolicy(t *testing.T) {
	gen := &stubGenerator{result: &llm.Result{Text: "{}", JSON: json.RawMessage("{}")}}
	p, err := Generate(context.Background(), gen, nil, finding.KindSAST)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.ExecutiveSummary != "Manual review required - automated generation failed" {
		t.Errorf("expected fallback policy, got %q", p.ExecutiveSummary)
	}
}

func TestGenerateReturnsProviderError(t *testing.T) {
	wantErr := errors.New("boom")
	gen := &stubGenerator{err: wantErr}
	_, err := Generate(context.Background(), gen, nil, finding.KindSAST)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
}

func TestLoadFindingsText(t *testing.T) {
	content := `Résumé DAST — tests dynamiques (formaté pour LLM)
Source: OWASP ZAP Baseline Scan

--- DAST Finding #1 ---
Vulnerability: Missing CSP Header
Severity: Medium (High)
Confidence: High
Target (URL/Endpoint): https://example.com
Description: CSP not set.
Recommendation: Configure the header.
CWE ID: 693

--- DAST Finding #2 ---
Vulnerability: Cookie Without Secure Flag
Severity: Low (Medium)
`
	path := filepath.Join(t.TempDir(), "dast.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	findings, err := LoadFindingsText(path, finding.KindDAST)
	if err != nil {
		t.Fatalf("LoadFindingsText: %v", err)
	}
	var structured []finding.Finding
	for _, f := range findings {
		if f.Title != "" {
			structured = append(structured, f)
		}
	}
	if len(structured) != 2 {
		t.Fatalf("got %d titled findings, want 2: %+v", len(structured), findings)
	}
	f := structured[0]
	if f.Title != "Missing CSP Header" {
		t.Errorf("Title = %q", f.Title)
	}
	if f.Severity != "Medium (High)" {
		t.Errorf("Severity = %q", f.Severity)
	}
	if f.Location != "https://example.com" {
		t.Errorf("Location = %q", f.Location)
	}
	if f.CWEID != "693" {
		t.Errorf("CWEID = %q", f.CWEID)
	}
	if f.Kind != finding.KindDAST {
		t.Errorf("Kind = %q", f.Kind)
	}
}

func TestLoadFindingsTextFrenchLabels(t *testing.T) {
	content := `--- Finding #1 ---
Titre: Injection SQL
Emplacement: db.go:10
Description: Entrée non filtrée.
Recommandation: Utiliser des requêtes paramétrées.
`
	path := filepath.Join(t.TempDir(), "sast.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	findings, err := LoadFindingsText(path, finding.KindSAST)
	if err != nil {
		t.Fatalf("LoadFindingsText: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.Title != "Injection SQL" || f.Location != "db.go:10" {
		t.Errorf("Title/Location = %q/%q", f.Title, f.Location)
	}
	if f.Recommendation != "Utiliser des requêtes paramétrées." {
		t.Errorf("Recommendation = %q", f.Recommendation)
	}
}

func TestLoadFindingsTextRawFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.txt")
	if err := os.WriteFile(path, []byte("completely unstructured text\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	findings, err := LoadFindingsText(path, finding.KindSAST)
	if err != nil {
		t.Fatalf("LoadFindingsText: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1 raw-content finding", len(findings))
	}
	f := findings[0]
	if f.Title != "Security Report Analysis" || f.Severity != "UNKNOWN" {
		t.Errorf("fallback finding = %+v", f)
	}
	if !strings.Contains(f.Description, "completely unstructured") {
		t.Errorf("Description = %q", f.Description)
	}
}

func TestLoadFindingsTextMissingFile(t *testing.T) {
	if _, err := LoadFindingsText(filepath.Join(t.TempDir(), "nope.txt"), finding.KindSAST); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func validPolicy() *SecurityPolicy {
	return &SecurityPolicy{
		Metadata: Metadata{
			PolicyID:   "POL-TEST-001",
			PolicyName: "Test Policy",
		},
		PolicyStatement:  Statement{Purpose: "Testing"},
		PolicyType:       "SAST",
		ExecutiveSummary: "All fine.",
		RiskAssessment:   RiskAssessment{OverallRiskLevel: "Low"},
	}
}
