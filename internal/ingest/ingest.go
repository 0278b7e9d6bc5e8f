// Package ingest loads scanner report files, detects their dialect and
// dispatches to the matching parser. Parse failures are surfaced as typed
// errors instead of being collapsed into "zero findings", so callers can
// tell an empty report from a broken one.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/solardome/policyforge/internal/finding"
	"github.com/solardome/policyforge/internal/ingest/depscan"
	"github.com/solardome/policyforge/internal/ingest/generic"
	"github.com/solardome/policyforge/internal/ingest/sarif"
	"github.com/solardome/policyforge/internal/ingest/sonar"
	"github.com/solardome/policyforge/internal/ingest/zap"
)

// Format identifies a report dialect.
type Format string

const (
	FormatSonarQube  Format = "sonarqube"
	FormatSARIF      Format = "sarif"
	FormatGeneric    Format = "generic"
	FormatDependency Format = "dependency"
	FormatDynamic    Format = "dynamic"
)

// ErrInputNotFound marks a missing report file.
var ErrInputNotFound = errors.New("report file not found")

// MalformedInputError marks a report that exists but is not valid JSON.
type MalformedInputError struct {
	Path string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed report %s: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// DetectFormat classifies a parsed top-level object. Dependency-scan and
// dynamic-scan reports are never auto-detected: their top-level shapes
// overlap with generic reports, so callers route them explicitly through
// ParseDependencyReport / ParseDynamicReport.
func DetectFormat(root map[string]json.RawMessage) Format {
	if _, ok := root["issues"]; ok {
		return FormatSonarQube
	}
	if raw, ok := root["$schema"]; ok {
		var schema string
		if err := json.Unmarshal(raw, &schema); err == nil && strings.Contains(schema, "sarif") {
			return FormatSARIF
		}
	}
	if _, ok := root["runs"]; ok {
		return FormatSARIF
	}
	return FormatGeneric
}

// ParseReport reads a report file, auto-detects its dialect and returns
// canonical findings in source document order.
func ParseReport(path string) ([]finding.Finding, error) {
	payload, err := readReport(path)
	if err != nil {
		return nil, err
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	var findings []finding.Finding
	switch DetectFormat(root) {
	case FormatSonarQube:
		findings, err = sonar.Parse(payload)
	case FormatSARIF:
		findings, err = sarif.Parse(payload)
	default:
		findings, err = generic.Parse(payload)
	}
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	return findings, nil
}

// ParseDependencyReport parses a report known to originate from a
// dependency scanner (top-level vulnerabilities list).
func ParseDependencyReport(path string) ([]finding.Finding, error) {
	payload, err := readReport(path)
	if err != nil {
		return nil, err
	}
	findings, err := depscan.Parse(payload)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	return findings, nil
}

// ParseDynamicReport parses a report known to originate from a dynamic
// scanner (OWASP ZAP site/alerts shape).
func ParseDynamicReport(path string) ([]finding.Finding, error) {
	payload, err := readReport(path)
	if err != nil {
		return nil, err
	}
	findings, err := zap.Parse(payload)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	return findings, nil
}

func readReport(path string) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	return payload, nil
}
