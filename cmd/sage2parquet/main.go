// sage2parquet converts SAGE II v7.00 monthly binary file pairs into
// parquet files.  The output is one file per time bucket, with one row
// per event and altitude level; levels outside a species' retrieval
// range carry the product fill value.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"gopkg.in/yaml.v3"

	"github.com/atmosdata/sagereader"
)

// options is the optional YAML sidecar controlling the spatial filter
// and decode concurrency.
type options struct {
	MinLat  float64 `yaml:"min_lat"`
	MaxLat  float64 `yaml:"max_lat"`
	MinLon  float64 `yaml:"min_lon"`
	MaxLon  float64 `yaml:"max_lon"`
	Workers int     `yaml:"workers"`
}

// eventRow is one parquet record: one event at one altitude level.
type eventRow struct {
	MJD      float64 `parquet:"name=mjd, type=DOUBLE"`
	EventNum int32   `parquet:"name=event_num, type=INT32"`
	Lat      float32 `parquet:"name=lat, type=FLOAT"`
	Lon      float32 `parquet:"name=lon, type=FLOAT"`
	Altitude float32 `parquet:"name=altitude, type=FLOAT"`

	O3     float32 `parquet:"name=o3, type=FLOAT"`
	O3Err  float32 `parquet:"name=o3_err, type=FLOAT"`
	NO2    float32 `parquet:"name=no2, type=FLOAT"`
	NO2Err float32 `parquet:"name=no2_err, type=FLOAT"`
	H2O    float32 `parquet:"name=h2o, type=FLOAT"`
	H2OErr float32 `parquet:"name=h2o_err, type=FLOAT"`

	Ext386  float32 `parquet:"name=ext386, type=FLOAT"`
	Ext452  float32 `parquet:"name=ext452, type=FLOAT"`
	Ext525  float32 `parquet:"name=ext525, type=FLOAT"`
	Ext1020 float32 `parquet:"name=ext1020, type=FLOAT"`

	Temperature float32 `parquet:"name=temperature, type=FLOAT"`
	Pressure    float32 `parquet:"name=pressure, type=FLOAT"`
	Density     float32 `parquet:"name=density, type=FLOAT"`

	InfVec        int64 `parquet:"name=inf_vec, type=INT64"`
	ProfileInfVec int32 `parquet:"name=profile_inf_vec, type=INT32"`
}

func main() {
	var (
		inputDir  string
		outputDir string
		timeRes   string
		startStr  string
		endStr    string
		optsFile  string
		debug     bool
	)

	app := &cli.Command{
		Name:  "sage2parquet",
		Usage: "Convert SAGE II binary file pairs to parquet",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "directory holding the SAGE II binary files",
				Value:       ".",
				Destination: &inputDir,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "directory where parquet files are written",
				Value:       ".",
				Destination: &outputDir,
			},
			&cli.StringFlag{
				Name:        "time-res",
				Aliases:     []string{"t"},
				Usage:       "output file time resolution: none, year, month, day, or a day count such as 7d",
				Value:       "none",
				Destination: &timeRes,
			},
			&cli.StringFlag{
				Name:        "start",
				Aliases:     []string{"s"},
				Usage:       "earliest record to include (YYYY, YYYY-MM, or YYYY-MM-DD)",
				Value:       "1985",
				Destination: &startStr,
			},
			&cli.StringFlag{
				Name:        "end",
				Aliases:     []string{"e"},
				Usage:       "last record to include",
				Value:       "2006",
				Destination: &endStr,
			},
			&cli.StringFlag{
				Name:        "options",
				Usage:       "YAML file with spatial bounds and worker count",
				Destination: &optsFile,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "enable debug logging",
				Destination: &debug,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger(debug)

			start, err := parseTime(startStr)
			if err != nil {
				return fmt.Errorf("start: %w", err)
			}
			end, err := parseTime(endStr)
			if err != nil {
				return fmt.Errorf("end: %w", err)
			}

			opts := options{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 360}
			if optsFile != "" {
				if err := readOptions(optsFile, &opts); err != nil {
					return err
				}
			}

			buckets, err := timeBuckets(start, end, timeRes)
			if err != nil {
				return err
			}

			loader := sagereader.NewLoader(inputDir)
			loader.Log = log

			for _, b := range buckets {
				if err := convertBucket(loader, log, outputDir, b, opts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// parseTime accepts a year, a year-month, or a full date.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006", "2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func readOptions(path string, opts *options) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(buf, opts); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// A bucket is one output file's time span, [Start, End).
type bucket struct {
	Start, End time.Time
	Label      string
}

// timeBuckets splits [start, end] into output spans.  Resolution
// "none" yields a single bucket; "year", "month", and "day" split on
// calendar boundaries; a trailing-d form such as "7d" splits into
// fixed-length spans.
func timeBuckets(start, end time.Time, res string) ([]bucket, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s is not before end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	var edges []time.Time
	switch res {
	case "none":
		edges = []time.Time{start, end}
	case "year", "yearly":
		for t := start; t.Before(end); t = t.AddDate(1, 0, 0) {
			edges = append(edges, t)
		}
		edges = append(edges, end)
	case "month", "monthly":
		for t := start; t.Before(end); t = t.AddDate(0, 1, 0) {
			edges = append(edges, t)
		}
		edges = append(edges, end)
	case "day", "daily":
		for t := start; t.Before(end); t = t.AddDate(0, 0, 1) {
			edges = append(edges, t)
		}
		edges = append(edges, end)
	default:
		nd, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(res), "d"))
		if err != nil || nd <= 0 {
			return nil, fmt.Errorf("invalid time resolution %q, try none, year, month, or day", res)
		}
		for t := start; t.Before(end); t = t.AddDate(0, 0, nd) {
			edges = append(edges, t)
		}
		edges = append(edges, end)
	}

	out := make([]bucket, 0, len(edges)-1)
	for i := 0; i+1 < len(edges); i++ {
		out = append(out, bucket{
			Start: edges[i],
			End:   edges[i+1],
			Label: bucketLabel(edges[i], edges[i+1], res),
		})
	}
	return out, nil
}

func bucketLabel(a, b time.Time, res string) string {
	switch res {
	case "year", "yearly":
		return fmt.Sprintf("%d", a.Year())
	case "month", "monthly":
		return fmt.Sprintf("%d%02d", a.Year(), a.Month())
	case "day", "daily":
		return a.Format("20060102")
	default:
		return a.Format("20060102") + "_" + b.Format("20060102")
	}
}

func convertBucket(loader *sagereader.Loader, log zerolog.Logger, outputDir string, b bucket, opts options) error {
	lopts := sagereader.LoadOptions{
		MinDate: b.Start,
		MaxDate: b.End,
		MinLat:  opts.MinLat,
		MaxLat:  opts.MaxLat,
		MinLon:  opts.MinLon,
		MaxLon:  opts.MaxLon,
		Workers: opts.Workers,
	}
	ds, err := loader.Load(lopts)
	if err != nil {
		return err
	}
	if ds.Empty() {
		log.Info().Str("bucket", b.Label).Msg("no events in bucket, skipping")
		return nil
	}

	name := fmt.Sprintf("SAGE_II_%s_%s.parquet", b.Label, loader.Version)
	path := filepath.Join(outputDir, name)

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(eventRow), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("parquet writer for %s: %w", path, err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	nrows, err := writeRows(pw, ds)
	if err != nil {
		fw.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("finish %s: %w", path, err)
	}
	if err := fw.Close(); err != nil {
		return err
	}

	log.Info().Str("file", path).Int("events", ds.NumEvents()).Int("rows", nrows).Msg("wrote bucket")
	return nil
}

// writeRows emits one row per event and ozone-grid altitude level.
// Species retrieved on shorter grids report the fill value above their
// ceiling.
func writeRows(pw *writer.ParquetWriter, ds *sagereader.Dataset) (int, error) {
	fill := ds.FillVal
	nlev := 0
	if ds.NumEvents() > 0 {
		nlev = len(ds.O3[0])
	}

	at := func(x []float32, j int) float32 {
		if j < len(x) {
			return x[j]
		}
		return fill
	}
	errAt := func(x []int16, j int) float32 {
		if j < len(x) {
			return float32(x[j])
		}
		return fill
	}

	n := 0
	for i := 0; i < ds.NumEvents(); i++ {
		for j := 0; j < nlev; j++ {
			row := eventRow{
				MJD:      ds.MJD[i],
				EventNum: ds.EventNum[i],
				Lat:      ds.Lat[i],
				Lon:      ds.Lon[i],
				Altitude: ds.AltGrid[j],

				O3:     at(ds.O3[i], j),
				O3Err:  errAt(ds.O3Err[i], j),
				NO2:    at(ds.NO2[i], j),
				NO2Err: errAt(ds.NO2Err[i], j),
				H2O:    at(ds.H2O[i], j),
				H2OErr: errAt(ds.H2OErr[i], j),

				Ext386:  at(ds.Ext386[i], j),
				Ext452:  at(ds.Ext452[i], j),
				Ext525:  at(ds.Ext525[i], j),
				Ext1020: at(ds.Ext1020[i], j),

				Temperature: at(ds.NMCTemp[i], j),
				Pressure:    at(ds.NMCPres[i], j),
				Density:     at(ds.Density[i], j),

				InfVec:        int64(ds.InfVec[i]),
				ProfileInfVec: int32(ds.ProfileInfVec[i][j]),
			}
			if err := pw.Write(row); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
