package generic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/solardome/policyforge/internal/finding"
)

// Parse is the safety net for unrecognized dialects: every list-valued
// top-level key is treated as a homogeneous collection of finding-like
// objects. It never fails on a shape it cannot usefully interpret — the
// result may simply be empty.
//
// Top-level keys are walked in document order (a decoder, not a map) so
// repeated runs over the same payload yield the same ordered list.
func Parse(payload []byte) ([]finding.Finding, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse generic json: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parse generic json: top-level value is not an object")
	}
	out := []finding.Finding{}
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("parse generic json: %w", err)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("parse generic json: %w", err)
		}
		items, ok := value.([]interface{})
		if !ok {
			continue
		}
		for _, raw := range items {
			item, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			out = append(out, finding.Finding{
				Kind:           finding.KindSAST,
				ID:             finding.FirstNonEmpty(str(item, "id"), "N/A"),
				Title:          finding.FirstNonEmpty(str(item, "title"), str(item, "message"), "No title"),
				Description:    finding.FirstNonEmpty(str(item, "description"), str(item, "message"), "No description"),
				Severity:       finding.FirstNonEmpty(str(item, "severity"), "UNKNOWN"),
				SeverityScale:  finding.ScaleGeneric,
				Location:       finding.FirstNonEmpty(str(item, "location"), str(item, "file"), "Unknown"),
				Recommendation: finding.FirstNonEmpty(str(item, "recommendation"), "Review and fix this issue"),
			})
		}
	}
	return out, nil
}

func str(item map[string]interface{}, key string) string {
	if v, ok := item[key].(string); ok {
		return v
	}
	return ""
}
