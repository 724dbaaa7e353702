package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel string
	Version  = "0.4.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════════╗",
		"║    ██████╗ ██████╗ ██╗  ██╗ ██████╗ ██████╗ ████████╗    ║",
		"║   ██╔════╝██╔═══██╗██║  ██║██╔═══██╗██╔══██╗╚══██╔══╝    ║",
		"║   ██║     ██║   ██║███████║██║   ██║██████╔╝   ██║       ║",
		"║   ██║     ██║   ██║██╔══██║██║   ██║██╔══██╗   ██║       ║",
		"║   ╚██████╗╚██████╔╝██║  ██║╚██████╔╝██║  ██║   ██║       ║",
		"║    ╚═════╝ ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝       ║",
		"║                                                          ║",
		"║       🧬 Synthetic Elective Surgery Waitlist Data 🧬      ║",
		"╚══════════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                      ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "cohortgen",
	Short: "Generate synthetic patient waitlist records from cohort descriptions",
	Long: `
cohortgen expands aggregate cohort rows (facility, specialty, doctor, procedure
type, category, age and a record count) into individual synthetic patient
records whose columns follow a column specification table.

Inputs:
- Cohort table (CSV or XLSX)
- Column specification table (CSV or XLSX)

Outputs:
- XLSX, CSV, JSON, Parquet or SQLite files
- PostgreSQL, MySQL or SQLite tables`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("cohortgen version %s\n", Version)
			os.Exit(0)
		}

		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cohortgen.config.yaml or .json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("cohortgen.config")
	}

	viper.SetEnvPrefix("COHORTGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		color.Yellow("⚠️  Could not read config file %s: %v", cfgFile, err)
	}
}

// bindFlags binds command flags to config keys. It runs per command so that
// commands sharing a key do not overwrite each other's binding.
func bindFlags(cmd *cobra.Command, bindings map[string]string) {
	for key, flag := range bindings {
		viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

// newLogger writes structured diagnostics to stderr so they never mix with
// command output.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}
