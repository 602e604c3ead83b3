package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/muhirwa45/E-moto/core/eta"
	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/station"
	"github.com/muhirwa45/E-moto/pkg/export"
)

var (
	stationQuery   string
	nearestBattery string
	exportFormat   string
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Station directory commands",
}

var stationsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List swap stations",
	RunE:  runStationsLs,
}

var stationsNearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Show the nearest available station to the configured location",
	RunE:  runStationsNearest,
}

var stationsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the station directory as JSON or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir, err := openDirectory(cfg.Stations.File)
		if err != nil {
			return err
		}
		return export.Write(cmd.OutOrStdout(), exportFormat, dir.List())
	},
}

func init() {
	stationsLsCmd.Flags().StringVarP(&stationQuery, "query", "q", "", "filter by name")
	stationsNearestCmd.Flags().StringVarP(&nearestBattery, "battery", "b", "", "required battery type (60V or 72V)")
	stationsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	stationsCmd.AddCommand(stationsLsCmd, stationsNearestCmd, stationsExportCmd)
	rootCmd.AddCommand(stationsCmd)
}

func openDirectory(path string) (*station.Directory, error) {
	if path == "" {
		return station.NewKigaliDirectory(), nil
	}
	return station.LoadFile(path)
}

func formatStock(s model.Station) string {
	parts := make([]string, 0, len(s.Batteries))
	for _, b := range s.Batteries {
		parts = append(parts, fmt.Sprintf("%s:%d@%.0f", b.Type, b.Quantity, b.Price))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func runStationsLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir, err := openDirectory(cfg.Stations.File)
	if err != nil {
		return err
	}
	user := cfg.Location.Static
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSTOCK\tRATING\tKM")
	list := dir.List()
	if strings.TrimSpace(stationQuery) != "" {
		list = dir.Search(stationQuery)
	}
	for _, s := range list {
		km := "-"
		if user != nil {
			km = fmt.Sprintf("%.1f", geo.Distance(*user, s.Coords))
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f (%d)\t%s\n", s.ID, s.Name, s.Status, formatStock(s), s.Rating, s.RatingCount, km)
	}
	return w.Flush()
}

func runStationsNearest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir, err := openDirectory(cfg.Stations.File)
	if err != nil {
		return err
	}
	var types []model.BatteryType
	if nearestBattery != "" {
		bt, err := model.ParseBatteryType(nearestBattery)
		if err != nil {
			return err
		}
		types = append(types, bt)
	}
	s, err := dir.FindNearestAvailable(cfg.Location.Static, types...)
	if err != nil {
		return err
	}
	dist := geo.Distance(*cfg.Location.Static, s.Coords)
	fmt.Fprintf(cmd.OutOrStdout(), "%d %s %.1f km, eta %d min\n", s.ID, s.Name, dist, eta.Display(cfg.Delivery.ETA.Estimate(dist)))
	return nil
}
