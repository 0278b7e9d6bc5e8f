package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solardome/policyforge/internal/console"
	"github.com/solardome/policyforge/internal/finding"
	"github.com/solardome/policyforge/internal/llm"
)

// Generate synthesizes a policy document for one finding kind. A failed
// generation call is returned as an error; a response that carries no
// valid policy JSON degrades to the deterministic fallback document.
func Generate(ctx context.Context, gen llm.Generator, findings []finding.Finding, kind finding.Kind) (*SecurityPolicy, error) {
	prompt := BuildPrompt(findings, kind)
	result, err := gen.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate %s policy: %w", kind, err)
	}
	if result.JSON == nil {
		console.Errorf("No JSON in %s response, creating fallback policy", kind)
		return Fallback(findings, kind), nil
	}
	var p SecurityPolicy
	if err := json.Unmarshal(result.JSON, &p); err != nil {
		console.Errorf("Could not decode %s policy JSON: %v", kind, err)
		return Fallback(findings, kind), nil
	}
	if err := p.Validate(); err != nil {
		console.Errorf("Validation failed: %v", err)
		return Fallback(findings, kind), nil
	}
	console.Infof("Policy validated successfully")
	return &p, nil
}

// Fallback builds the policy document used when generation produced no
// usable JSON. Deterministic apart from the timestamps.
func Fallback(findings []finding.Finding, kind finding.Kind) *SecurityPolicy {
	counts := finding.CountBySeverity(findings)
	now := time.Now()

	overall := "Medium"
	if counts[finding.SeverityCritical] > 0 {
		overall = "High"
	}

	return &SecurityPolicy{
		Metadata: Metadata{
			PolicyID:       fmt.Sprintf("POL-%s-%s", kind, now.Format("2006-01-02")),
			PolicyName:     fmt.Sprintf("%s Security Policy", kind),
			Version:        "1.0",
			Status:         "Draft",
			CreatedDate:    now.Format(time.RFC3339),
			LastUpdated:    now.Format(time.RFC3339),
			NextReviewDate: now.AddDate(0, 0, 90).Format("2006-01-02"),
			Author:         "Automated Policy Generator",
			Department:     "Information Security",
			Classification: "Internal",
		},
		PolicyStatement: Statement{
			Purpose:       fmt.Sprintf("To address security vulnerabilities identified in %s scanning", kind),
			Description:   "This policy was auto-generated and requires manual review",
			Applicability: "All relevant systems and teams",
			Enforcement:   "Manual review required",
		},
		PolicyType:       string(kind),
		ExecutiveSummary: "Manual review required - automated generation failed",
		Scope:            fmt.Sprintf("%s security", kind),
		Objectives:       []string{"Review findings", "Implement controls"},
		RiskAssessment: RiskAssessment{
			OverallRiskLevel: overall,
			CriticalCount:    counts[finding.SeverityCritical],
			HighCount:        counts[finding.SeverityHigh],
			MediumCount:      counts[finding.SeverityMedium],
			LowCount:         counts[finding.SeverityLow],
			BusinessImpact:   "To be assessed",
			Likelihood:       "To be assessed",
		},
		TotalFindings:           len(findings),
		VulnerabilityCategories: []string{"Review manually"},
		SecurityControls:        []SecurityControl{},
		RemediationActions:      []RemediationAction{},
		ComplianceMapping: ComplianceMapping{
			NISTCSFCategories: []string{},
			ISO27001Controls:  []string{},
		},
		MonitoringRequirements: []string{"Manual review required"},
		ReviewSchedule:         "Quarterly",
	}
}
