package cmd

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/config"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/seeder"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/source"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show how each column will be derived",
	Long: `
Resolve the column specification into derivation rules and print them in
evaluation order, without reading cohorts or generating data.

Examples:
  cohortgen plan --columns columns.xlsx
  cohortgen plan --columns columns.csv`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd, map[string]string{
			"input.column_path":  "columns",
			"input.column_sheet": "column-sheet",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Input.ColumnPath == "" {
			return fmt.Errorf("--columns is required")
		}

		logger := newLogger(cfg.LogLevel)
		columns, err := source.LoadColumnSpecs(cfg.Input.ColumnPath, cfg.Input.ColumnSheet, logger)
		if err != nil {
			return fmt.Errorf("failed to load column specification: %w", err)
		}

		plan, err := seeder.NewPlan(columns)
		if err != nil {
			return err
		}

		color.Cyan("📋 %d columns in evaluation order:", len(plan.Steps))
		fmt.Println()
		fmt.Printf("  %-4s %-28s %-22s %-8s %s\n", "#", "COLUMN", "RULE", "NULL %", "READS")
		fallbacks := 0
		for i, step := range plan.Steps {
			reads := "-"
			if len(step.Rule.Deps) > 0 {
				reads = strings.Join(step.Rule.Deps, ", ")
			}
			line := fmt.Sprintf("  %-4d %-28s %-22s %-8.1f %s", i+1, step.Column.Name, step.Rule.Kind, step.Column.NullPercentage, reads)
			if step.Fallback {
				fallbacks++
				color.New(color.FgYellow).Println(line)
			} else {
				fmt.Println(line)
			}
		}

		if fallbacks > 0 {
			fmt.Println()
			color.Yellow("⚠️  %d columns have no dedicated rule and use a type-based fallback", fallbacks)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().String("columns", "", "Column specification table (CSV or XLSX)")
	planCmd.Flags().String("column-sheet", "", "Sheet name in the column workbook (default \"Table Artifacts\")")
}
