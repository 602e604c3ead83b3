package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/muhirwa45/E-moto/core/model"
)

var arHeading float64

var arCmd = &cobra.Command{
	Use:   "ar",
	Short: "Print the AR markers visible for a compass heading",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Location.Static == nil {
			return fmt.Errorf("ar: a static location is required")
		}
		dir, err := openDirectory(cfg.Stations.File)
		if err != nil {
			return err
		}
		h := model.Heading{Alpha: arHeading, Calibrated: true}
		markers, err := cfg.AR.Project(*cfg.Location.Static, h, dir.List())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tKM\tBEARING\tX\tSCALE\tOPACITY")
		for _, m := range markers {
			fmt.Fprintf(w, "%d\t%s\t%.1f\t%.0f\t%.1f%%\t%.2f\t%.2f\n", m.StationID, m.Name, m.DistanceKm, m.Bearing, m.ScreenX, m.Scale, m.Opacity)
		}
		return w.Flush()
	},
}

func init() {
	arCmd.Flags().Float64Var(&arHeading, "heading", 0, "compass heading in degrees")
	rootCmd.AddCommand(arCmd)
}
