package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/muhirwa45/E-moto/core/model"
)

// WriteJSON writes the station snapshot to w in JSON format.
func WriteJSON(w io.Writer, stations []model.Station) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(stations)
}

// WriteCSV writes one row per station inventory line. Stations without
// batteries still get a row with empty stock columns.
func WriteCSV(w io.Writer, stations []model.Station) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"station_id", "name", "status", "is_van", "lat", "lng", "rating", "battery_type", "quantity", "price_rwf"}); err != nil {
		return err
	}
	for _, s := range stations {
		base := []string{
			strconv.Itoa(s.ID),
			s.Name,
			string(s.Status),
			strconv.FormatBool(s.IsVan),
			strconv.FormatFloat(s.Coords.Lat, 'f', -1, 64),
			strconv.FormatFloat(s.Coords.Lng, 'f', -1, 64),
			strconv.FormatFloat(s.Rating, 'f', 1, 64),
		}
		if len(s.Batteries) == 0 {
			if err := cw.Write(append(base, "", "", "")); err != nil {
				return err
			}
			continue
		}
		for _, b := range s.Batteries {
			rec := append(append([]string(nil), base...),
				string(b.Type),
				strconv.Itoa(b.Quantity),
				strconv.FormatFloat(b.Price, 'f', -1, 64),
			)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format, which is "json" or "csv".
func Write(w io.Writer, format string, stations []model.Station) error {
	switch format {
	case "json":
		return WriteJSON(w, stations)
	case "csv":
		return WriteCSV(w, stations)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
