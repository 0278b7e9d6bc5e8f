// Package pipeline orchestrates the full run: ingest scanner reports,
// render the bounded text artifacts, synthesize policies and render PDFs,
// all driven by one YAML config file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/solardome/policyforge/internal/console"
	"github.com/solardome/policyforge/internal/finding"
	"github.com/solardome/policyforge/internal/format"
	"github.com/solardome/policyforge/internal/ingest"
	"github.com/solardome/policyforge/internal/llm"
	"github.com/solardome/policyforge/internal/pdf"
	"github.com/solardome/policyforge/internal/policy"
	"github.com/solardome/policyforge/internal/report"
)

// ReportInput names one scanner report file. Format selects the parser
// entry point: "auto" (default) detects SonarQube/SARIF/generic from the
// document shape, "dependency" and "dynamic" must be stated explicitly.
type ReportInput struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// LLMConfig selects the policy-generation provider. The API key is read
// from the environment variable named by APIKeyEnv, never from the file.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// Config is the YAML pipeline configuration.
type Config struct {
	Reports  []ReportInput `yaml:"reports"`
	OutDir   string        `yaml:"out_dir"`
	LLM      LLMConfig     `yaml:"llm"`
	Policies bool          `yaml:"policies"`
	PDF      bool          `yaml:"pdf"`
}

// LoadConfig reads and validates a pipeline config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Reports) == 0 {
		return nil, fmt.Errorf("config %s: no reports listed", path)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "out"
	}
	for i, r := range cfg.Reports {
		if r.Path == "" {
			return nil, fmt.Errorf("config %s: reports[%d] has no path", path, i)
		}
		switch strings.ToLower(r.Format) {
		case "", "auto", "dependency", "dynamic":
		default:
			return nil, fmt.Errorf("config %s: reports[%d] unknown format %q", path, i, r.Format)
		}
	}
	return &cfg, nil
}

// Runner executes a configured pipeline. NewGenerator and Renderer are
// replaceable for tests.
type Runner struct {
	Config       *Config
	NewGenerator func(ctx context.Context, provider, apiKey, model string) (llm.Generator, error)
	Renderer     pdf.Renderer
}

func NewRunner(cfg *Config) *Runner {
	return &Runner{
		Config:       cfg,
		NewGenerator: llm.NewGenerator,
		Renderer:     pdf.NewRenderer(),
	}
}

// Run ingests every configured report, writes the per-kind text artifacts,
// and (when enabled) generates policies and PDFs. A report that fails to
// parse is logged and skipped; the error returned covers only failures
// that stop the whole run.
func (r *Runner) Run(ctx context.Context) error {
	var all []finding.Finding
	for _, input := range r.Config.Reports {
		findings, err := parseOne(input)
		if err != nil {
			if errors.Is(err, ingest.ErrInputNotFound) {
				return err
			}
			console.Errorf("Skipping %s: %v", input.Path, err)
			continue
		}
		console.Infof("Parsed %s: %d finding(s)", input.Path, len(findings))
		all = append(all, findings...)
	}

	artifacts := map[finding.Kind]string{
		finding.KindSAST: filepath.Join(r.Config.OutDir, "sast.txt"),
		finding.KindSCA:  filepath.Join(r.Config.OutDir, "sca.txt"),
		finding.KindDAST: filepath.Join(r.Config.OutDir, "dast.txt"),
	}
	if err := format.WriteSAST(all, artifacts[finding.KindSAST]); err != nil {
		return err
	}
	if err := format.WriteSCA(all, artifacts[finding.KindSCA]); err != nil {
		return err
	}
	if err := format.WriteDAST(all, artifacts[finding.KindDAST]); err != nil {
		return err
	}

	if !r.Config.Policies {
		return nil
	}

	apiKey := ""
	if r.Config.LLM.APIKeyEnv != "" {
		apiKey = os.Getenv(r.Config.LLM.APIKeyEnv)
	}
	gen, err := r.NewGenerator(ctx, r.Config.LLM.Provider, apiKey, r.Config.LLM.Model)
	if err != nil {
		return fmt.Errorf("configure llm provider: %w", err)
	}

	for _, kind := range []finding.Kind{finding.KindSAST, finding.KindSCA, finding.KindDAST} {
		if len(finding.FilterKind(all, kind)) == 0 {
			console.Infof("No %s findings, skipping policy", kind)
			continue
		}
		loaded, err := policy.LoadFindingsText(artifacts[kind], kind)
		if err != nil {
			return err
		}
		p, err := policy.Generate(ctx, gen, loaded, kind)
		if err != nil {
			console.Errorf("Policy generation for %s failed: %v", kind, err)
			p = policy.Fallback(loaded, kind)
		}
		name := strings.ToLower(string(kind))
		jsonPath := filepath.Join(r.Config.OutDir, name+"_policy.json")
		if err := report.WriteJSON(jsonPath, p); err != nil {
			return err
		}
		console.OKf("Policy written: %s", jsonPath)

		if r.Config.PDF {
			pdfPath := filepath.Join(r.Config.OutDir, name+"_policy.pdf")
			if err := pdf.WritePDF(pdfPath, r.Renderer, p); err != nil {
				return err
			}
			console.OKf("PDF written: %s", pdfPath)
		}
	}
	return nil
}

func parseOne(input ReportInput) ([]finding.Finding, error) {
	switch strings.ToLower(input.Format) {
	case "dependency":
		return ingest.ParseDependencyReport(input.Path)
	case "dynamic":
		return ingest.ParseDynamicReport(input.Path)
	default:
		return ingest.ParseReport(input.Path)
	}
}
