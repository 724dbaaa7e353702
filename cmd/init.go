package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Lumos-Labs-HQ/cohortgen/template"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	sqliteFlag     bool
	postgresqlFlag bool
	mysqlFlag      bool
	forceInit      bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a cohortgen project",
	Long: `
Write a starter cohortgen.config.yaml, an editable catalog.yaml with the
built-in lookup lists, sample cohort and column tables, and a DATABASE_URL
entry in .env for the chosen database.

Examples:
  cohortgen init
  cohortgen init ./waitlist --mysql`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbType := template.PostgreSQL
		flagCount := 0

		if sqliteFlag {
			dbType = template.SQLite
			flagCount++
		}
		if postgresqlFlag {
			dbType = template.PostgreSQL
			flagCount++
		}
		if mysqlFlag {
			dbType = template.MySQL
			flagCount++
		}

		if flagCount > 1 {
			return fmt.Errorf("please specify only one database type (--sqlite, --postgresql, or --mysql)")
		}

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		return initializeProject(dir, dbType, forceInit)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&sqliteFlag, "sqlite", false, "Configure SQLite as the database provider")
	initCmd.Flags().BoolVar(&postgresqlFlag, "postgresql", false, "Configure PostgreSQL as the database provider")
	initCmd.Flags().BoolVar(&mysqlFlag, "mysql", false, "Configure MySQL as the database provider")
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite files that already exist")
}

func initializeProject(dir string, dbType template.DatabaseType, force bool) error {
	tmpl := template.NewProjectTemplate(dbType)

	files, err := tmpl.Files()
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var created, skipped []string
	for _, rel := range paths {
		target := filepath.Join(dir, rel)
		if _, err := os.Stat(target); err == nil && !force {
			skipped = append(skipped, rel)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(files[rel]), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", target, err)
		}
		created = append(created, rel)
	}

	if err := handleEnvFile(filepath.Join(dir, ".env"), tmpl.GetEnvTemplate()); err != nil {
		return fmt.Errorf("failed to handle .env file: %w", err)
	}

	color.Green("✅ Initialized cohortgen project in %s with %s database support", dir, dbType)
	if len(created) > 0 {
		fmt.Println()
		fmt.Println("📝 Files created:")
		for _, p := range created {
			fmt.Printf("   %s\n", p)
		}
	}
	for _, p := range skipped {
		fmt.Printf("ℹ️  Skipped %s (already exists, use --force to overwrite)\n", p)
	}

	if os.Getenv("DATABASE_URL") != "" {
		fmt.Println()
		fmt.Println("ℹ️  Using existing DATABASE_URL from environment")
	}

	fmt.Println()
	fmt.Printf("🚀 Next steps:\n")
	fmt.Printf("   cohortgen plan                      # Show how each column is derived\n")
	fmt.Printf("   cohortgen generate                  # Write Synthetic_Patient_Data.xlsx\n")
	fmt.Printf("   cohortgen generate --format database --truncate\n")
	return nil
}

// handleEnvFile creates the .env file or appends DATABASE_URL to it, leaving
// files that already define the variable untouched.
func handleEnvFile(envPath, defaultEnvContent string) error {
	existingContent, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(defaultEnvContent), 0644)
		}
		return err
	}

	existingStr := string(existingContent)
	if strings.Contains(existingStr, "DATABASE_URL") {
		return nil
	}

	if len(existingStr) > 0 && !strings.HasSuffix(existingStr, "\n") {
		existingStr += "\n"
	}
	existingStr += "\n# Added by cohortgen\n" + defaultEnvContent

	return os.WriteFile(envPath, []byte(existingStr), 0644)
}
