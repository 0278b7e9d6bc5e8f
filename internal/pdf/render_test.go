package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/solardome/policyforge/internal/policy"
)

func samplePolicy() *policy.SecurityPolicy {
	return &policy.SecurityPolicy{
		Metadata: policy.Metadata{
			PolicyID:    "POL-SAST-2025-001",
			PolicyName:  "Static Application Security Testing Policy",
			Status:      "Draft",
			CreatedDate: "2025-11-05T00:00:00",
			Author:      "Security Team",
		},
		PolicyStatement: policy.Statement{
			Purpose:       "Établir des standards de sécurité du code",
			Description:   "Exigences pour l'analyse statique",
			Applicability: "Toutes les équipes de développement",
			Enforcement:   "Scans obligatoires en CI/CD",
		},
		PolicyType:       "SAST",
		ExecutiveSummary: "Posture de sécurité à améliorer.",
		Scope:            "Code source applicatif",
		Objectives:       []string{"Réduire les vulnérabilités critiques", "Former les équipes"},
		RiskAssessment: policy.RiskAssessment{
			OverallRiskLevel: "High",
			CriticalCount:    2,
			HighCount:        5,
			BusinessImpact:   "Exposition de données",
			Likelihood:       "Medium",
		},
		TotalFindings:           12,
		VulnerabilityCategories: []string{"SQL Injection", "XSS"},
		SecurityControls: []policy.SecurityControl{
			{
				ControlID:           "SC-001",
				NISTFunction:        "Protect",
				ISODomain:           "A.14 System Development",
				Title:               "Input Validation",
				Description:         "Valider toutes les entrées",
				ImplementationSteps: []string{"Inventorier les entrées", "Ajouter la validation"},
			},
		},
		RemediationActions: []policy.RemediationAction{
			{
				Priority:        "P0",
				Title:           "Corriger les injections SQL",
				AffectedAssets:  []string{"auth module"},
				Timeline:        "Immediate (0-7 days)",
				Owner:           "Backend Team",
				SuccessCriteria: "Requêtes paramétrées partout",
			},
		},
		ComplianceMapping: policy.ComplianceMapping{
			NISTCSFCategories: []string{"PR.DS-5", "PR.IP-1"},
			ISO27001Controls:  []string{"A.14.2.1"},
		},
		MonitoringRequirements: []string{"Scans hebdomadaires"},
		ReviewSchedule:         "Quarterly",
	}
}

func TestRender(t *testing.T) {
	b, err := NewRenderer().Render(samplePolicy())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF: %q", b[:8])
	}
	if len(b) < 1000 {
		t.Fatalf("output suspiciously small: %d bytes", len(b))
	}
}

func TestRenderMinimalPolicy(t *testing.T) {
	p := &policy.SecurityPolicy{
		Metadata:         policy.Metadata{PolicyID: "POL-1", PolicyName: "Minimal"},
		PolicyType:       "SCA",
		ExecutiveSummary: "Nothing to report.",
	}
	b, err := NewRenderer().Render(p)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "policy.pdf")
	if err := WritePDF(path, NewRenderer(), samplePolicy()); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatal("written file is not a PDF")
	}
}
