// sagedump converts the event summaries of a SAGE II date range to a
// CSV file.  The CSV contents are sent to standard output, one row per
// occultation event.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/atmosdata/sagereader"
)

func dump(ds *sagereader.Dataset) error {

	w := csv.NewWriter(os.Stdout)

	header := []string{"time", "mjd", "event_num", "lat", "lon", "beta",
		"duration", "type_sat", "type_tan", "trop_height"}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := 0; i < ds.NumEvents(); i++ {
		row[0] = ds.Time[i].Format(time.RFC3339)
		row[1] = fmt.Sprintf("%v", ds.MJD[i])
		row[2] = fmt.Sprintf("%d", ds.EventNum[i])
		row[3] = fmt.Sprintf("%v", ds.Lat[i])
		row[4] = fmt.Sprintf("%v", ds.Lon[i])
		row[5] = fmt.Sprintf("%v", ds.Beta[i])
		row[6] = fmt.Sprintf("%v", ds.Duration[i])
		row[7] = fmt.Sprintf("%d", ds.TypeSat[i])
		row[8] = fmt.Sprintf("%d", ds.TypeTan[i])
		row[9] = fmt.Sprintf("%v", ds.TropHeight[i])
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func main() {
	var (
		inputDir string
		startStr string
		endStr   string
	)

	app := &cli.Command{
		Name:  "sagedump",
		Usage: "Dump SAGE II event summaries as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "directory holding the SAGE II binary files",
				Value:       ".",
				Destination: &inputDir,
			},
			&cli.StringFlag{
				Name:        "start",
				Aliases:     []string{"s"},
				Usage:       "earliest record to include (YYYY-MM-DD)",
				Value:       "1984-10-01",
				Destination: &startStr,
			},
			&cli.StringFlag{
				Name:        "end",
				Aliases:     []string{"e"},
				Usage:       "last record to include",
				Value:       "2005-09-01",
				Destination: &endStr,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			start, err := time.Parse("2006-01-02", startStr)
			if err != nil {
				return fmt.Errorf("start: %w", err)
			}
			end, err := time.Parse("2006-01-02", endStr)
			if err != nil {
				return fmt.Errorf("end: %w", err)
			}

			loader := sagereader.NewLoader(inputDir)
			ds, err := loader.Load(sagereader.DefaultLoadOptions(start, end))
			if err != nil {
				return err
			}
			return dump(ds)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
