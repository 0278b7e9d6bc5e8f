// Package cli wires the pipeline into a cobra command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solardome/policyforge/internal/console"
	"github.com/solardome/policyforge/internal/finding"
	"github.com/solardome/policyforge/internal/format"
	"github.com/solardome/policyforge/internal/ingest"
	"github.com/solardome/policyforge/internal/llm"
	"github.com/solardome/policyforge/internal/pdf"
	"github.com/solardome/policyforge/internal/pipeline"
	"github.com/solardome/policyforge/internal/policy"
	"github.com/solardome/policyforge/internal/report"
)

func newRootCmd() *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "policyforge",
		Short:         "Normalize scanner reports and generate security policies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			console.DebugEnabled = debug
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	root.AddCommand(newParseCmd(), newPolicyCmd(), newPDFCmd(), newRunCmd())
	return root
}

func newParseCmd() *cobra.Command {
	var (
		formatName string
		outDir     string
	)
	cmd := &cobra.Command{
		Use:   "parse <report.json> [report.json ...]",
		Short: "Parse scanner reports and write the text artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var all []finding.Finding
			for _, path := range args {
				findings, err := parseByFormat(path, formatName)
				if err != nil {
					return err
				}
				console.Infof("Parsed %s: %d finding(s)", path, len(findings))
				all = append(all, findings...)
			}
			if err := format.WriteSAST(all, filepath.Join(outDir, "sast.txt")); err != nil {
				return err
			}
			if err := format.WriteSCA(all, filepath.Join(outDir, "sca.txt")); err != nil {
				return err
			}
			return format.WriteDAST(all, filepath.Join(outDir, "dast.txt"))
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "auto", "report format: auto, dependency or dynamic")
	cmd.Flags().StringVar(&outDir, "out", "out", "output directory")
	return cmd
}

func newPolicyCmd() *cobra.Command {
	var (
		kindName  string
		provider  string
		model     string
		apiKeyEnv string
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "policy <findings.txt>",
		Short: "Generate a security policy from a findings artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(kindName)
			if err != nil {
				return err
			}
			findings, err := policy.LoadFindingsText(args[0], kind)
			if err != nil {
				return err
			}
			apiKey := ""
			if apiKeyEnv != "" {
				apiKey = os.Getenv(apiKeyEnv)
			}
			gen, err := llm.NewGenerator(cmd.Context(), provider, apiKey, model)
			if err != nil {
				return err
			}
			p, err := policy.Generate(cmd.Context(), gen, findings, kind)
			if err != nil {
				console.Errorf("Generation failed: %v", err)
				p = policy.Fallback(findings, kind)
			}
			if err := report.WriteJSON(outPath, p); err != nil {
				return err
			}
			console.OKf("Policy written: %s", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&kindName, "kind", "sast", "finding kind: sast, sca or dast")
	cmd.Flags().StringVar(&provider, "provider", "huggingface", "llm provider: huggingface, ollama or gemini")
	cmd.Flags().StringVar(&model, "model", "", "model name (provider default when empty)")
	cmd.Flags().StringVar(&apiKeyEnv, "api-key-env", "HF_TOKEN", "environment variable holding the API key")
	cmd.Flags().StringVar(&outPath, "out", "policy.json", "output path for the policy JSON")
	return cmd
}

func newPDFCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "pdf <policy.json>",
		Short: "Render a policy JSON document to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read policy %s: %w", args[0], err)
			}
			var p policy.SecurityPolicy
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("decode policy %s: %w", args[0], err)
			}
			if err := pdf.WritePDF(outPath, pdf.NewRenderer(), &p); err != nil {
				return err
			}
			console.OKf("PDF written: %s", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "policy.pdf", "output path for the PDF")
	return cmd
}

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline from a YAML config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pipeline.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return pipeline.NewRunner(cfg).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "policyforge.yaml", "pipeline config file")
	return cmd
}

func parseByFormat(path, name string) ([]finding.Finding, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return ingest.ParseReport(path)
	case "dependency":
		return ingest.ParseDependencyReport(path)
	case "dynamic":
		return ingest.ParseDynamicReport(path)
	default:
		return nil, fmt.Errorf("unknown format: %s", name)
	}
}

func parseKind(name string) (finding.Kind, error) {
	switch strings.ToLower(name) {
	case "sast":
		return finding.KindSAST, nil
	case "sca":
		return finding.KindSCA, nil
	case "dast":
		return finding.KindDAST, nil
	default:
		return "", fmt.Errorf("unknown kind: %s", name)
	}
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		console.Errorf("%v", err)
		return 1
	}
	return 0
}
