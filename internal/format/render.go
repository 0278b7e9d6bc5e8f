// Package format renders canonical findings into bounded-size text
// artifacts for downstream consumption (LLM prompt or document).
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/solardome/policyforge/internal/console"
	"github.com/solardome/policyforge/internal/finding"
	"github.com/solardome/policyforge/internal/report"
)

// MaxCharsPerItem bounds a single rendered finding. One pathological
// description field must not make the aggregate artifact unboundedly large.
const MaxCharsPerItem = 5000

const truncationMarker = "\n[...truncated]\n"

// FormatSAST renders the SAST subset of findings in source order.
func FormatSAST(findings []finding.Finding) string {
	sast := finding.FilterKind(findings, finding.KindSAST)
	var b strings.Builder
	b.WriteString("Résumé SAST — formaté pour LLM\nChaque entrée: Title, Location, Description, Recommendation\n\n")
	if len(sast) == 0 {
		b.WriteString("Aucune vulnérabilité SAST trouvée.\n")
		return b.String()
	}
	for i, f := range sast {
		b.WriteString(sastBlock(f, i+1))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSCA renders the SCA subset ordered by severity rank (stable:
// findings of equal rank keep their source order).
func FormatSCA(findings []finding.Finding) string {
	sca := finding.FilterKind(findings, finding.KindSCA)
	finding.SortBySeverity(sca)
	var b strings.Builder
	b.WriteString("Résumé SCA — vulnérabilités de dépendances (formaté pour LLM)\n\n")
	if len(sca) == 0 {
		b.WriteString("Aucune vulnérabilité SCA trouvée.\n")
		return b.String()
	}
	for i, f := range sca {
		b.WriteString(scaBlock(f, i+1))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDAST renders the DAST subset in source order, with a total-count
// line ahead of the blocks.
func FormatDAST(findings []finding.Finding) string {
	dast := finding.FilterKind(findings, finding.KindDAST)
	var b strings.Builder
	b.WriteString("Résumé DAST — tests dynamiques (formaté pour LLM)\nSource: OWASP ZAP Baseline Scan\n\n")
	if len(dast) == 0 {
		b.WriteString("Aucune vulnérabilité DAST trouvée.\n")
		b.WriteString("L'application a passé le scan dynamique de base avec succès.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Total des vulnérabilités trouvées: %d\n\n", len(dast)))
	for i, f := range dast {
		b.WriteString(dastBlock(f, i+1))
		b.WriteString("\n")
	}
	return b.String()
}

func sastBlock(f finding.Finding, idx int) string {
	title := finding.FirstNonEmpty(f.Title, f.ID, "SAST finding")
	loc := finding.FirstNonEmpty(f.Location, "N/A")
	rec := finding.FirstNonEmpty(f.Recommendation, "Aucune recommandation fournie.")
	text := fmt.Sprintf(
		"--- Finding #%d ---\nTitre: %s\nEmplacement: %s\nDescription: %s\nRecommandation: %s\n",
		idx, title, loc, strings.TrimSpace(f.Description), rec,
	)
	return truncate(text)
}

func scaBlock(f finding.Finding, idx int) string {
	pkgLoc := finding.FirstNonEmpty(f.Location, "package@version")
	title := finding.FirstNonEmpty(f.Title, pkgLoc)
	cve := finding.FirstNonEmpty(f.CVE, "N/A")
	cvss := "N/A"
	if f.CVSS != nil {
		cvss = strconv.FormatFloat(*f.CVSS, 'f', -1, 64)
	}
	rec := finding.FirstNonEmpty(f.Recommendation, "Mettre à jour le package ou appliquer le correctif recommandé.")
	text := fmt.Sprintf(
		"--- Dependency Finding #%d ---\nPackage: %s\nTitle: %s\nCVE: %s\nCVSS: %s\nDescription: %s\nRecommendation: %s\n",
		idx, pkgLoc, title, cve, cvss, strings.TrimSpace(f.Description), rec,
	)
	return truncate(text)
}

func dastBlock(f finding.Finding, idx int) string {
	title := finding.FirstNonEmpty(f.Title, f.ID, "DAST finding")
	uri := finding.FirstNonEmpty(f.Location, "N/A")
	rec := finding.FirstNonEmpty(f.Recommendation, "Vérifier la configuration et corriger la vulnérabilité.")
	text := fmt.Sprintf(
		"--- DAST Finding #%d ---\nVulnerability: %s\nSeverity: %s\nConfidence: %s\nTarget (URL/Endpoint): %s\nDescription: %s\nRecommendation: %s\n",
		idx, title, finding.FirstNonEmpty(f.Severity, "Unknown"), finding.FirstNonEmpty(f.Confidence, "Unknown"),
		uri, strings.TrimSpace(f.Description), rec,
	)
	if f.CWEID != "" && f.CWEID != "N/A" {
		text += fmt.Sprintf("CWE ID: %s\n", f.CWEID)
	}
	if f.WASCID != "" && f.WASCID != "N/A" {
		text += fmt.Sprintf("WASC ID: %s\n", f.WASCID)
	}
	return truncate(text)
}

// truncate bounds a rendered block to MaxCharsPerItem characters: over the
// ceiling, the first ceiling−12 characters are kept and the truncation
// marker appended. Counted in runes, not bytes — the artifacts carry
// accented text.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxCharsPerItem {
		return text
	}
	return string(runes[:MaxCharsPerItem-12]) + truncationMarker
}

// WriteSAST renders and writes the SAST artifact.
func WriteSAST(findings []finding.Finding, path string) error {
	if err := report.WriteText(path, FormatSAST(findings)); err != nil {
		return err
	}
	console.OKf("SAST .txt généré: %s", path)
	console.Infof("Nombre de vulnérabilités: %d", len(finding.FilterKind(findings, finding.KindSAST)))
	return nil
}

// WriteSCA renders and writes the SCA artifact with a per-severity
// breakdown on the console.
func WriteSCA(findings []finding.Finding, path string) error {
	if err := report.WriteText(path, FormatSCA(findings)); err != nil {
		return err
	}
	sca := finding.FilterKind(findings, finding.KindSCA)
	console.OKf("SCA .txt généré: %s", path)
	console.Infof("Nombre de vulnérabilités: %d", len(sca))
	console.Infof("Répartition par sévérité: %s", finding.SeveritySummary(sca))
	return nil
}

// WriteDAST renders and writes the DAST artifact.
func WriteDAST(findings []finding.Finding, path string) error {
	if err := report.WriteText(path, FormatDAST(findings)); err != nil {
		return err
	}
	console.OKf("DAST .txt généré: %s", path)
	console.Infof("Nombre de vulnérabilités: %d", len(finding.FilterKind(findings, finding.KindDAST)))
	return nil
}
