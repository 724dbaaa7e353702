package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/catalog"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/config"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/database"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/export"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/seeder"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/source"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
	"github.com/Lumos-Labs-HQ/cohortgen/internal/utils"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	previewRows int
	assumeYes   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic patient records",
	Long: `
Expand every cohort row into "#of Records" synthetic patient records with the
columns listed in the column specification table, then write them to a file or
a database table.

Examples:
  cohortgen generate --cohorts cohorts.xlsx --columns columns.xlsx
  cohortgen generate --cohorts cohorts.csv --columns columns.csv -o patients.parquet --seed 42
  cohortgen generate --cohorts cohorts.csv --columns columns.csv --format database --provider postgresql --truncate --yes
  cohortgen generate --cohorts cohorts.csv --columns columns.csv --preview 5`,
	PreRun: func(cmd *cobra.Command, args []string) {
		bindFlags(cmd, generateBindings)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runID := uuid.NewString()
		logger := newLogger(cfg.LogLevel).With().Str("run_id", runID).Logger()

		return runGenerate(ctx, cfg, runID, logger)
	},
}

func runGenerate(ctx context.Context, cfg *config.Config, runID string, logger zerolog.Logger) error {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	color.Cyan("📄 Reading column specification from %s", cfg.Input.ColumnPath)
	columns, err := source.LoadColumnSpecs(cfg.Input.ColumnPath, cfg.Input.ColumnSheet, logger)
	if err != nil {
		return fmt.Errorf("failed to load column specification: %w", err)
	}

	color.Cyan("📄 Reading cohorts from %s", cfg.Input.CohortPath)
	cohorts, err := source.LoadCohorts(cfg.Input.CohortPath, cfg.Input.CohortSheet, logger)
	if err != nil {
		return fmt.Errorf("failed to load cohorts: %w", err)
	}

	total := 0
	for _, c := range cohorts {
		total += c.RecordCount
	}

	every := cfg.Generation.ProgressEvery
	s, err := seeder.NewSeeder(columns, cat, seeder.SeedConfig{
		Seed:    cfg.Generation.Seed,
		Workers: cfg.Generation.Workers,
		Locale:  cfg.Generation.Locale,
		Logger:  logger,
		Progress: func(done, of int) {
			if done%every == 0 || done == of {
				fmt.Printf("⏳ %d/%d cohort rows expanded\n", done, of)
			}
		},
	})
	if err != nil {
		return err
	}

	color.Cyan("🧬 Generating %d records across %d columns from %d cohort rows (seed %d)...",
		total, len(columns.Columns), len(cohorts), s.Stats().Seed)

	table, err := s.Generate(ctx, cohorts)
	if err != nil {
		return err
	}
	stats := s.Stats()
	logMappings(logger, s.Mapper().Mappings())

	if previewRows > 0 {
		n := min(previewRows, table.Len())
		fmt.Println()
		utils.RenderTable(os.Stdout, table.Columns, table.Rows[:n])
		fmt.Println()
	}

	start := time.Now()
	if cfg.IsDatabaseOutput() {
		if err := writeDatabase(ctx, cfg, table); err != nil {
			return err
		}
	} else {
		path, err := export.Write(ctx, table, export.Options{
			Format: cfg.Output.Format,
			Path:   cfg.Output.Path,
			Table:  cfg.Output.Table,
			Batch:  cfg.Output.Batch,
			RunID:  runID,
			Seed:   stats.Seed,
			Now:    time.Now(),
		})
		if err != nil {
			return err
		}
		color.Green("✅ Wrote %d records to %s", table.Len(), path)
	}

	logger.Info().
		Uint64("seed", stats.Seed).
		Int("records", stats.Records).
		Int("mappings", stats.Mappings).
		Dur("generate", stats.Duration).
		Dur("write", time.Since(start)).
		Msg("run complete")

	if stats.CoercedCategories > 0 {
		color.Yellow("⚠️  %d cohort rows had a category outside the allowed set and were treated as NRFC", stats.CoercedCategories)
	}
	color.Cyan("🔁 Re-run with --seed %d to reproduce this data", stats.Seed)
	return nil
}

// logMappings records every label to code assignment at debug level.
func logMappings(logger zerolog.Logger, mappings []seeder.Mapping) {
	if logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, m := range mappings {
		logger.Debug().
			Str("category", string(m.Category)).
			Str("label", m.Label).
			Str("code", m.Code).
			Msg("identifier mapping")
	}
}

func writeDatabase(ctx context.Context, cfg *config.Config, table *types.Table) error {
	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return err
	}

	if cfg.Output.Truncate {
		msg := fmt.Sprintf("⚠️  Delete every row in %s table %s before loading?", cfg.Database.Provider, cfg.Output.Table)
		if !utils.NewInputUtils().AskConfirmation(msg, assumeYes) {
			return fmt.Errorf("load cancelled")
		}
	}

	adapter, err := database.NewAdapter(cfg.Database.Provider)
	if err != nil {
		return err
	}

	color.Cyan("🗄️  Loading %d records into %s table %s...", table.Len(), cfg.Database.Provider, cfg.Output.Table)
	n, err := database.Load(ctx, adapter, dbURL, table, database.LoadOptions{
		Table:     cfg.Output.Table,
		Truncate:  cfg.Output.Truncate,
		BatchSize: cfg.Output.Batch,
	})
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	color.Green("✅ Inserted %d records into %s", n, cfg.Output.Table)
	return nil
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.String("cohorts", "", "Cohort table (CSV or XLSX)")
	flags.String("cohort-sheet", "", "Sheet name in the cohort workbook (default first sheet)")
	flags.String("columns", "", "Column specification table (CSV or XLSX)")
	flags.String("column-sheet", "", "Sheet name in the column workbook (default \"Table Artifacts\")")
	flags.StringP("output", "o", "", "Output file (default Synthetic_Patient_Data.<format>)")
	flags.String("format", "", "Output format: xlsx, csv, json, parquet, sqlite or database")
	flags.String("table", "", "Table name for sqlite and database output")
	flags.Bool("truncate", false, "Empty the target table before loading")
	flags.String("provider", "", "Database provider: postgresql, mysql or sqlite")
	flags.Uint64("seed", 0, "Random seed (0 picks one and prints it)")
	flags.Int("workers", 0, "Cohort rows expanded in parallel")
	flags.String("locale", "", "Demographics locale: en_AU or en_US")
	flags.String("catalog", "", "YAML file overriding the built-in lookup lists")
	flags.IntVar(&previewRows, "preview", 0, "Print the first N generated records")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before truncating a database table")
}

var generateBindings = map[string]string{
	"input.cohort_path":  "cohorts",
	"input.cohort_sheet": "cohort-sheet",
	"input.column_path":  "columns",
	"input.column_sheet": "column-sheet",
	"output.path":        "output",
	"output.format":      "format",
	"output.table":       "table",
	"output.truncate":    "truncate",
	"database.provider":  "provider",
	"generation.seed":    "seed",
	"generation.workers": "workers",
	"generation.locale":  "locale",
	"catalog_path":       "catalog",
}
