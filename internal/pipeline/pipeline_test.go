package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/solardome/policyforge/internal/ingest"
	"github.com/solardome/policyforge/internal/llm"
	"github.com/solardome/policyforge/internal/policy"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
reports:
  - path: reports/scan.sarif
  - path: reports/deps.json
    format: dependency
llm:
  provider: huggingface
  model: test-model
  api_key_env: HF_TOKEN
policies: true
pdf: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(cfg.Reports))
	}
	if cfg.Reports[1].Format != "dependency" {
		t.Errorf("Format = %q", cfg.Reports[1].Format)
	}
	if cfg.OutDir != "out" {
		t.Errorf("OutDir = %q, want default out", cfg.OutDir)
	}
	if !cfg.Policies || !cfg.PDF {
		t.Errorf("Policies/PDF = %v/%v", cfg.Policies, cfg.PDF)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	writeFile(t, empty, "reports: []\n")
	if _, err := LoadConfig(empty); err == nil {
		t.Error("expected error for empty reports")
	}

	badFormat := filepath.Join(dir, "bad.yaml")
	writeFile(t, badFormat, "reports:\n  - path: x.json\n    format: carrier-pigeon\n")
	if _, err := LoadConfig(badFormat); err == nil {
		t.Error("expected error for unknown format")
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

type stubGenerator struct{ raw json.RawMessage }

func (s *stubGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (*llm.Result, error) {
	return &llm.Result{Text: string(s.raw), JSON: s.raw}, nil
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scan.sarif"), `{
		"runs": [{"results": [{
			"ruleId": "R1", "level": "error",
			"message": {"text": "SQL injection"},
			"locations": [{"physicalLocation": {"artifactLocation": {"uri": "app.go"}, "region": {"startLine": 7}}}]
		}]}]
	}`)
	writeFile(t, filepath.Join(dir, "deps.json"), `{
		"vulnerabilities": [{
			"packageName": "lodash", "version": "4.17.15",
			"severity": "high", "fixedIn": ["4.17.19"]
		}]
	}`)

	p := policy.Fallback(nil, "SAST")
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	cfg := &Config{
		Reports: []ReportInput{
			{Path: filepath.Join(dir, "scan.sarif")},
			{Path: filepath.Join(dir, "deps.json"), Format: "dependency"},
		},
		OutDir:   outDir,
		Policies: true,
		LLM:      LLMConfig{Provider: "stub"},
	}
	runner := NewRunner(cfg)
	runner.NewGenerator = func(ctx context.Context, provider, apiKey, model string) (llm.Generator, error) {
		return &stubGenerator{raw: raw}, nil
	}

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sast, err := os.ReadFile(filepath.Join(outDir, "sast.txt"))
	if err != nil {
		t.Fatalf("sast.txt: %v", err)
	}
	if !strings.Contains(string(sast), "SQL injection") {
		t.Errorf("sast.txt missing finding:\n%s", sast)
	}
	sca, err := os.ReadFile(filepath.Join(outDir, "sca.txt"))
	if err != nil {
		t.Fatalf("sca.txt: %v", err)
	}
	if !strings.Contains(string(sca), "lodash@4.17.15") {
		t.Errorf("sca.txt missing package:\n%s", sca)
	}
	dast, err := os.ReadFile(filepath.Join(outDir, "dast.txt"))
	if err != nil {
		t.Fatalf("dast.txt: %v", err)
	}
	if !strings.Contains(string(dast), "Aucune vulnérabilité DAST trouvée.") {
		t.Errorf("dast.txt should carry the empty sentinel:\n%s", dast)
	}

	for _, name := range []string{"sast_policy.json", "sca_policy.json"} {
		raw, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		var got policy.SecurityPolicy
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if err := got.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "dast_policy.json")); !os.IsNotExist(err) {
		t.Error("dast policy should be skipped with zero DAST findings")
	}
}

func TestRunMissingReport(t *testing.T) {
	cfg := &Config{
		Reports: []ReportInput{{Path: filepath.Join(t.TempDir(), "nope.json")}},
		OutDir:  t.TempDir(),
	}
	err := NewRunner(cfg).Run(context.Background())
	if !errors.Is(err, ingest.ErrInputNotFound) {
		t.Fatalf("err = %v, want ErrInputNotFound", err)
	}
}

func TestRunSkipsMalformedReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.json"), "{not json")
	writeFile(t, filepath.Join(dir, "ok.json"), `{"runs": [{"results": [{"message": {"text": "x"}}]}]}`)

	outDir := filepath.Join(dir, "out")
	cfg := &Config{
		Reports: []ReportInput{
			{Path: filepath.Join(dir, "broken.json")},
			{Path: filepath.Join(dir, "ok.json")},
		},
		OutDir: outDir,
	}
	if err := NewRunner(cfg).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	sast, err := os.ReadFile(filepath.Join(outDir, "sast.txt"))
	if err != nil {
		t.Fatalf("sast.txt: %v", err)
	}
	if !strings.Contains(string(sast), "--- Finding #1 ---") {
		t.Errorf("valid report should still be rendered:\n%s", sast)
	}
}
