package zap

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solardome/policyforge/internal/finding"
)

const defaultRecommendation = "Vérifier la configuration et corriger la vulnérabilité."

type report struct {
	Sites []site `json:"site"`
}

type site struct {
	Alerts []alert `json:"alerts"`
}

type alert struct {
	PluginID   string     `json:"pluginid"`
	Alert      string     `json:"alert"`
	Desc       string     `json:"desc"`
	Solution   string     `json:"solution"`
	RiskDesc   string     `json:"riskdesc"`
	Confidence string     `json:"confidence"`
	CWEID      string     `json:"cweid"`
	WASCID     string     `json:"wascid"`
	Instances  []instance `json:"instances"`
}

type instance struct {
	URI string `json:"uri"`
}

// Parse maps an OWASP ZAP baseline report (site[].alerts[]) into canonical
// DAST findings. Like dependency reports this dialect is routed by an
// explicit entry point, never auto-detected. Severity keeps ZAP's risk
// description verbatim ("High (Medium)" and friends).
func Parse(payload []byte) ([]finding.Finding, error) {
	var r report
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("parse zap json: %w", err)
	}
	out := []finding.Finding{}
	for _, s := range r.Sites {
		for _, a := range s.Alerts {
			location := "N/A"
			if len(a.Instances) > 0 && strings.TrimSpace(a.Instances[0].URI) != "" {
				location = strings.TrimSpace(a.Instances[0].URI)
			}
			out = append(out, finding.Finding{
				Kind:           finding.KindDAST,
				ID:             finding.FirstNonEmpty(a.PluginID, "N/A"),
				Title:          finding.FirstNonEmpty(a.Alert, "Unknown vulnerability"),
				Description:    strings.TrimSpace(a.Desc),
				Severity:       finding.FirstNonEmpty(a.RiskDesc, "Unknown"),
				SeverityScale:  finding.ScaleZAPRisk,
				Location:       location,
				Confidence:     finding.FirstNonEmpty(a.Confidence, "Unknown"),
				CWEID:          finding.FirstNonEmpty(a.CWEID, "N/A"),
				WASCID:         finding.FirstNonEmpty(a.WASCID, "N/A"),
				Recommendation: finding.FirstNonEmpty(a.Solution, defaultRecommendation),
			})
		}
	}
	return out, nil
}
