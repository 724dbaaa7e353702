package cmd

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/names"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	namesSpecialties    int
	namesSubSpecialties int
	namesDoctors        int
	namesSeed           uint64
	namesOutput         string
	namesCSVDir         string
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Generate reference specialty, sub-specialty and doctor names",
	Long: `
Generate lists of specialty, sub-specialty and doctor names to help author a
cohort table. By default writes a workbook with Specialties, SubSpecialties and
Doctors sheets.

Examples:
  cohortgen names
  cohortgen names --doctors 50 --seed 7 -o names.xlsx
  cohortgen names --csv-dir ./names`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := names.Generate(names.Options{
			Specialties:    namesSpecialties,
			SubSpecialties: namesSubSpecialties,
			Doctors:        namesDoctors,
			Seed:           namesSeed,
		})
		if err != nil {
			return fmt.Errorf("failed to generate names: %w", err)
		}

		if namesCSVDir != "" {
			paths, err := n.WriteCSVDir(cmd.Context(), namesCSVDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				color.Green("✅ Wrote %s", p)
			}
			return nil
		}

		if err := n.WriteXLSX(namesOutput); err != nil {
			return err
		}
		color.Green("✅ Wrote %d specialties, %d sub-specialties and %d doctors to %s",
			len(n.Specialties), len(n.SubSpecialties), len(n.Doctors), namesOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(namesCmd)

	defaults := names.DefaultOptions()
	namesCmd.Flags().IntVar(&namesSpecialties, "specialties", defaults.Specialties, "Number of specialties")
	namesCmd.Flags().IntVar(&namesSubSpecialties, "sub-specialties", defaults.SubSpecialties, "Number of sub-specialties (0 writes an empty sheet)")
	namesCmd.Flags().IntVar(&namesDoctors, "doctors", defaults.Doctors, "Number of doctor names (0 writes an empty sheet)")
	namesCmd.Flags().Uint64Var(&namesSeed, "seed", 0, "Random seed (0 picks one)")
	namesCmd.Flags().StringVarP(&namesOutput, "output", "o", "Generated_Names.xlsx", "Output workbook")
	namesCmd.Flags().StringVar(&namesCSVDir, "csv-dir", "", "Write one CSV per list into this directory instead")
}
