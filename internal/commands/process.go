package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ipincome-dev/ipincome/internal/export"
	"github.com/ipincome-dev/ipincome/internal/extract"
	"github.com/ipincome-dev/ipincome/internal/model"
	"github.com/ipincome-dev/ipincome/internal/pipeline"
)

// Environment variables honored by the process command; flags win over them.
const (
	envRules = "IPINCOME_RULES"
	envOut   = "IPINCOME_OUT"
)

func newProcessCommand() *cobra.Command {
	var rulesPath string
	var bankName string
	var outDir string
	var projectName string
	var workers int

	cmd := &cobra.Command{
		Use:   "process <statement>...",
		Short: "Process bank statements into income and validation reports",
		Args:  cobra.RangeArgs(1, model.MaxProjectStatements),
		RunE: func(cmd *cobra.Command, args []string) error {
			// A .env next to the working directory may carry defaults.
			_ = godotenv.Load()

			if rulesPath == "" {
				rulesPath = os.Getenv(envRules)
			}
			if !cmd.Flags().Changed("out") {
				if env := os.Getenv(envOut); env != "" {
					outDir = env
				}
			}

			return runProcess(cmd, args, rulesPath, bankName, outDir, projectName, workers)
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "path to rules.yaml (default: built-in ruleset)")
	cmd.Flags().StringVar(&bankName, "bank", "", "declared bank layout, e.g. kaspi_pay (default: auto-detect)")
	cmd.Flags().StringVar(&outDir, "out", "out", "output directory for CSV reports")
	cmd.Flags().StringVar(&projectName, "name", "", "project name")
	cmd.Flags().IntVar(&workers, "workers", pipeline.DefaultWorkers, "statements processed concurrently")

	return cmd
}

func runProcess(cmd *cobra.Command, paths []string, rulesPath, bankName, outDir, projectName string, workers int) error {
	rs, err := loadRuleset(rulesPath)
	if err != nil {
		return err
	}
	rules, err := rs.Compile()
	if err != nil {
		return err
	}

	registry := extract.DefaultRegistry()
	bank := model.Bank(bankName)
	if bank != model.BankAuto && registry.Get(bank) == nil {
		return fmt.Errorf("unknown bank %q", bankName)
	}

	docs := make([]model.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading statement: %w", err)
		}
		docs = append(docs, model.Document{
			Name:  filepath.Base(path),
			Bank:  bank,
			Bytes: data,
		})
	}

	processor := pipeline.New(registry, rules)
	project, results, err := processor.RunProject(cmd.Context(), docs, pipeline.Options{
		Name:    projectName,
		Workers: workers,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, link := range project.Links {
		line := fmt.Sprintf("%d. %s: %s", link.UploadOrder, link.SourceFilename, link.Status)
		if link.Warning {
			line += " (warning)"
		}
		if link.Message != "" {
			line += " - " + link.Message
		}
		fmt.Fprintln(out, line)
	}

	for _, res := range results {
		fmt.Fprintf(out, "%s [%s]: income %s KZT (adjusted %s), %d business transactions, score %.2f\n",
			res.SourceName, res.Bank,
			res.Summary.TotalIncome, res.Summary.TotalIncomeAdjusted,
			res.Summary.TransactionsUsed, res.Validation.ValidationScore)
	}

	if len(results) > 0 {
		if err := export.WriteAll(outDir, results); err != nil {
			return err
		}
		fmt.Fprintf(out, "Reports written to %s\n", outDir)
	}

	fmt.Fprintf(out, "Project %s: %s\n", project.ID, project.Status)
	if project.Status == model.ProjectFailed {
		return fmt.Errorf("all %d statements failed", len(project.Links))
	}
	return nil
}
