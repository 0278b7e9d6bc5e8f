// Package pdf renders policy documents to PDF. The pipeline depends only
// on the Renderer interface; the fpdf implementation is swappable.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/solardome/policyforge/internal/policy"
	"github.com/solardome/policyforge/internal/report"
)

// Renderer is the document-building capability: structured policy in,
// byte stream out.
type Renderer interface {
	Render(p *policy.SecurityPolicy) ([]byte, error)
}

// DocumentRenderer renders a policy with fpdf (A4 portrait, core fonts).
type DocumentRenderer struct{}

func NewRenderer() *DocumentRenderer {
	return &DocumentRenderer{}
}

func (r *DocumentRenderer) Render(p *policy.SecurityPolicy) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetAutoPageBreak(true, 20)

	r.coverPage(doc, tr, p)
	r.statementSection(doc, tr, p)
	r.riskSection(doc, tr, p)
	r.controlsSection(doc, tr, p)
	r.remediationSection(doc, tr, p)
	r.complianceSection(doc, tr, p)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *DocumentRenderer) coverPage(doc *fpdf.Fpdf, tr func(string) string, p *policy.SecurityPolicy) {
	doc.AddPage()
	doc.Ln(40)
	doc.SetFont("Helvetica", "B", 24)
	doc.SetTextColor(26, 32, 44)
	doc.MultiCell(0, 12, tr(p.Metadata.PolicyName), "", "C", false)
	doc.Ln(4)
	doc.SetFont("Helvetica", "", 14)
	doc.SetTextColor(74, 85, 104)
	doc.CellFormat(0, 8, tr("AI Security Policy Framework"), "", 1, "C", false, 0, "")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	rows := [][2]string{
		{"Policy ID", orNA(p.Metadata.PolicyID)},
		{"Status", orNA(p.Metadata.Status)},
		{"Created Date", orNA(p.Metadata.CreatedDate)},
		{"Last Updated", orNA(p.Metadata.LastUpdated)},
		{"Author", orNA(p.Metadata.Author)},
	}
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(50, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 7, tr(row[1]), "1", 1, "L", false, 0, "")
	}
}

func (r *DocumentRenderer) statementSection(doc *fpdf.Fpdf, tr func(string) string, p *policy.SecurityPolicy) {
	doc.AddPage()
	sectionHeading(doc, tr, "Policy Statement")
	subsection(doc, tr, "Purpose", p.PolicyStatement.Purpose)
	subsection(doc, tr, "Description", p.PolicyStatement.Description)
	subsection(doc, tr, "Applicability", p.PolicyStatement.Applicability)
	subsection(doc, tr, "Enforcement", p.PolicyStatement.Enforcement)
	if strings.TrimSpace(p.PolicyStatement.Exceptions) != "" {
		subsection(doc, tr, "Exceptions", p.PolicyStatement.Exceptions)
	}

	sectionHeading(doc, tr, "Executive Summary")
	bodyText(doc, tr, p.ExecutiveSummary)

	sectionHeading(doc, tr, "Scope and Objectives")
	bodyText(doc, tr, p.Scope)
	bulletList(doc, tr, p.Objectives)
}

func (r *DocumentRenderer) riskSection(doc *fpdf.Fpdf, tr func(string) string, p *policy.SecurityPolicy) {
	sectionHeading(doc, tr, "Risk Assessment")
	ra := p.RiskAssessment
	rows := [][2]string{
		{"Overall Risk Level", orNA(ra.OverallRiskLevel)},
		{"Critical Findings", fmt.Sprintf("%d", ra.CriticalCount)},
		{"High Findings", fmt.Sprintf("%d", ra.HighCount)},
		{"Medium Findings", fmt.Sprintf("%d", ra.MediumCount)},
		{"Low Findings", fmt.Sprintf("%d", ra.LowCount)},
		{"Business Impact", orNA(ra.BusinessImpact)},
		{"Likelihood", orNA(ra.Likelihood)},
	}
	doc.SetTextColor(0, 0, 0)
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(50, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 7, tr(row[1]), "1", 1, "L", false, 0, "")
	}
	doc.Ln(2)
	bodyText(doc, tr, fmt.Sprintf("Total findings: %d", p.TotalFindings))
	if len(p.VulnerabilityCategories) > 0 {
		subsection(doc, tr, "Vulnerability Categories", "")
		bulletList(doc, tr, p.VulnerabilityCategories)
	}
}

func (r *DocumentRenderer) controlsSection(doc *fpdf.Fpdf, tr func(string) string, p *policy.SecurityPolicy) {
	if len(p.SecurityControls) == 0 {
		return
	}
	sectionHeading(doc, tr, "Security Controls")
	for _, c := range p.SecurityControls {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetTextColor(0, 0, 0)
		doc.MultiCell(0, 6, tr(fmt.Sprintf("%s: %s", orNA(c.ControlID), orNA(c.Title))), "", "L", false)
		doc.SetFont("Helvetica", "", 9)
		doc.SetTextColor(113, 128, 150)
		doc.MultiCell(0, 5, tr(fmt.Sprintf("NIST: %s | ISO: %s", orNA(c.NISTFunction), orNA(c.ISODomain))), "", "L", false)
		bodyText(doc, tr, c.Description)
		bulletList(doc, tr, c.ImplementationSteps)
		doc.Ln(2)
	}
}

func (r *DocumentRenderer) remediationSection(doc *fpdf.Fpdf, tr func(string) string, p *policy.SecurityPolicy) {
	if len(p.RemediationActions) == 0 {
		return
	}
	sectionHeading(doc, tr, "Remediation Roadmap")
	for _, a := range p.RemediationActions {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetTextColor(0, 0, 0)
		doc.MultiCell(0, 6, tr(fmt.Sprintf("%s: %s", orNA(a.Priority), orNA(a.Title))), "", "L", false)
		bodyText(doc, tr, fmt.Sprintf("Timeline: %s | Owner: %s", orNA(a.Timeline), orNA(a.Owner)))
		bulletList(doc, tr, a.AffectedAssets)
		bodyText(doc, tr, "Success criteria: "+orNA(a.SuccessCriteria))
		doc.Ln(2)
	}
}

func (r *DocumentRenderer) complianceSection(doc *fpdf.Fpdf, tr func(string) string, p *policy.SecurityPolicy) {
	sectionHeading(doc, tr, "Compliance Mapping")
	subsection(doc, tr, "NIST CSF Categories", strings.Join(p.ComplianceMapping.NISTCSFCategories, ", "))
	subsection(doc, tr, "ISO 27001 Controls", strings.Join(p.ComplianceMapping.ISO27001Controls, ", "))

	if len(p.MonitoringRequirements) > 0 {
		sectionHeading(doc, tr, "Monitoring and Review")
		bulletList(doc, tr, p.MonitoringRequirements)
		bodyText(doc, tr, "Review schedule: "+orNA(p.ReviewSchedule))
	}
}

func sectionHeading(doc *fpdf.Fpdf, tr func(string) string, title string) {
	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(45, 55, 72)
	doc.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
	doc.Ln(1)
}

func subsection(doc *fpdf.Fpdf, tr func(string) string, title, body string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(45, 55, 72)
	doc.CellFormat(0, 7, tr(title), "", 1, "L", false, 0, "")
	if strings.TrimSpace(body) != "" {
		bodyText(doc, tr, body)
	}
}

func bodyText(doc *fpdf.Fpdf, tr func(string) string, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	doc.MultiCell(0, 5, tr(text), "", "L", false)
	doc.Ln(1)
}

func bulletList(doc *fpdf.Fpdf, tr func(string) string, items []string) {
	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		doc.MultiCell(0, 5, tr("- "+item), "", "L", false)
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// WritePDF renders a policy and writes it to path, creating parent
// directories as needed.
func WritePDF(path string, r Renderer, p *policy.SecurityPolicy) error {
	b, err := r.Render(p)
	if err != nil {
		return err
	}
	return report.WriteBytes(path, b)
}
