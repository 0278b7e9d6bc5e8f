// Package policy synthesizes structured security policy documents from
// findings text, through a text-generation collaborator.
package policy

import (
	"errors"
	"strings"
)

// Metadata carries policy governance information.
type Metadata struct {
	PolicyID       string `json:"policy_id"`
	PolicyName     string `json:"policy_name"`
	Version        string `json:"version"`
	Status         string `json:"status"`
	CreatedDate    string `json:"created_date"`
	LastUpdated    string `json:"last_updated"`
	NextReviewDate string `json:"next_review_date"`
	Author         string `json:"author"`
	ApprovedBy     string `json:"approved_by,omitempty"`
	Department     string `json:"department"`
	Classification string `json:"classification"`
}

// Statement is the core policy statement and purpose.
type Statement struct {
	Purpose       string `json:"purpose"`
	Description   string `json:"description"`
	Applicability string `json:"applicability"`
	Enforcement   string `json:"enforcement"`
	Exceptions    string `json:"exceptions,omitempty"`
}

// RiskAssessment is the ISO 27001 inspired risk summary.
type RiskAssessment struct {
	OverallRiskLevel string `json:"overall_risk_level"`
	CriticalCount    int    `json:"critical_count"`
	HighCount        int    `json:"high_count"`
	MediumCount      int    `json:"medium_count"`
	LowCount         int    `json:"low_count"`
	BusinessImpact   string `json:"business_impact"`
	Likelihood       string `json:"likelihood"`
}

// SecurityControl is a hybrid NIST function + ISO domain control.
type SecurityControl struct {
	ControlID           string   `json:"control_id"`
	NISTFunction        string   `json:"nist_function"`
	ISODomain           string   `json:"iso_domain"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	ImplementationSteps []string `json:"implementation_steps"`
}

// RemediationAction is a prioritized remediation with timeline.
type RemediationAction struct {
	Priority        string   `json:"priority"`
	Title           string   `json:"title"`
	AffectedAssets  []string `json:"affected_assets"`
	Timeline        string   `json:"timeline"`
	Owner           string   `json:"owner"`
	SuccessCriteria string   `json:"success_criteria"`
}

// ComplianceMapping maps the policy to both frameworks.
type ComplianceMapping struct {
	NISTCSFCategories []string `json:"nist_csf_categories"`
	ISO27001Controls  []string `json:"iso27001_controls"`
}

// SecurityPolicy is the hybrid NIST CSF + ISO 27001 policy document.
type SecurityPolicy struct {
	Metadata                Metadata            `json:"metadata"`
	PolicyStatement         Statement           `json:"policy_statement"`
	PolicyType              string              `json:"policy_type"`
	ExecutiveSummary        string              `json:"executive_summary"`
	Scope                   string              `json:"scope"`
	Objectives              []string            `json:"objectives"`
	RiskAssessment          RiskAssessment      `json:"risk_assessment"`
	TotalFindings           int                 `json:"total_findings"`
	VulnerabilityCategories []string            `json:"vulnerability_categories"`
	SecurityControls        []SecurityControl   `json:"security_controls"`
	RemediationActions      []RemediationAction `json:"remediation_actions"`
	ComplianceMapping       ComplianceMapping   `json:"compliance_mapping"`
	MonitoringRequirements  []string            `json:"monitoring_requirements"`
	ReviewSchedule          string              `json:"review_schedule"`
}

// Validate checks the fields a rendered policy document cannot do without.
func (p *SecurityPolicy) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Metadata.PolicyID) == "" {
		missing = append(missing, "metadata.policy_id")
	}
	if strings.TrimSpace(p.Metadata.PolicyName) == "" {
		missing = append(missing, "metadata.policy_name")
	}
	if strings.TrimSpace(p.PolicyStatement.Purpose) == "" {
		missing = append(missing, "policy_statement.purpose")
	}
	if strings.TrimSpace(p.PolicyType) == "" {
		missing = append(missing, "policy_type")
	}
	if strings.TrimSpace(p.ExecutiveSummary) == "" {
		missing = append(missing, "executive_summary")
	}
	if strings.TrimSpace(p.RiskAssessment.OverallRiskLevel) == "" {
		missing = append(missing, "risk_assessment.overall_risk_level")
	}
	if len(missing) > 0 {
		return errors.New("policy missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}
