package sagereader

import (
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// A MonthInfo carries the header metadata of one loaded index file.
// These are file-level facts (processing revisions, source file
// names), not per-event data, so they are kept per month instead of
// being replicated across the event axis.
type MonthInfo struct {
	Year    int
	Month   int
	NumProf int

	MetRevDate uint32
	DriverRev  string
	TransRev   string
	InvRev     string
	SpecRev    string

	EphFileName  string
	MetFileName  string
	RefFileName  string
	TranFileName string
	SpecFileName string
}

// A Dataset is the aggregated content of one or more monthly file
// pairs.  Every per-event field shares one leading dimension of
// length NumEvents, ordered by month and within-month event order.
// Profile fields are [event][level]; the level dimension is the
// leading portion of AltGrid (140, 100, or 80 levels by species).
//
// The grid and range fields are per-file constants taken from the
// first loaded month.  A Dataset is owned by the caller once
// returned; the package does not retain or mutate it.
type Dataset struct {
	// Constants from the first loaded month.
	FillVal    float32
	GridSize   float32
	AltGrid    []float32
	AltMidAtm  []float32
	RangeTrans []float32
	RangeO3    []float32
	RangeNO2   []float32
	RangeH2O   []float32
	RangeExt   []float32
	RangeDens  []float32

	// Header metadata of every month that contributed events.
	Months []MonthInfo

	// Derived per-event time axis.
	Time []time.Time
	MJD  []float64

	// Per-event summary fields from the index files.
	YYYYMMDD []int32
	EventNum []int32
	HHMMSS   []int32
	DayFrac  []float32
	Lat      []float32
	Lon      []float32
	Beta     []float32
	Duration []float32
	TypeSat  []int16
	TypeTan  []int16
	Dropped  []int32
	InfVec   []uint32

	EphCreDate  []int32
	EphCreTime  []int32
	MetCreDate  []int32
	MetCreTime  []int32
	RefCreDate  []int32
	RefCreTime  []int32
	TranCreDate []int32
	TranCreTime []int32
	SpecCreDate []int32
	SpecCreTime []int32

	// Per-event profile fields from the spec files.
	TanAlt [][]float32
	TanLat [][]float32
	TanLon [][]float32

	NMCPres    [][]float32
	NMCTemp    [][]float32
	NMCDens    [][]float32
	NMCDensErr [][]int16

	TropHeight []float32
	Wavelength [][]float32

	O3  [][]float32
	NO2 [][]float32
	H2O [][]float32

	Ext386     [][]float32
	Ext452     [][]float32
	Ext525     [][]float32
	Ext1020    [][]float32
	Density    [][]float32
	SurfDen    [][]float32
	Radius     [][]float32
	DensMidAtm [][]float32

	O3Err         [][]int16
	NO2Err        [][]int16
	H2OErr        [][]int16
	Ext386Err     [][]int16
	Ext452Err     [][]int16
	Ext525Err     [][]int16
	Ext1020Err    [][]int16
	DensityErr    [][]int16
	SurfDenErr    [][]int16
	RadiusErr     [][]int16
	DensMidAtmErr [][]int16

	// Per-event, per-level informational bit flags from the spec
	// files (the spec format's InfVec, renamed to avoid colliding
	// with the index InfVec).
	ProfileInfVec [][]uint16
}

// NumEvents returns the length of the event axis.
func (ds *Dataset) NumEvents() int {
	return len(ds.MJD)
}

// Empty reports whether no events survived loading and filtering.
func (ds *Dataset) Empty() bool {
	return len(ds.MJD) == 0
}

// appendMonth concatenates one decoded month onto the dataset.
func (ds *Dataset) appendMonth(m *Month) {
	if len(ds.Months) == 0 {
		ds.FillVal = m.Index.FillVal
		ds.GridSize = m.Index.GridSize
		ds.AltGrid = m.Index.AltGrid
		ds.AltMidAtm = m.Index.AltMidAtm
		ds.RangeTrans = m.Index.RangeTrans
		ds.RangeO3 = m.Index.RangeO3
		ds.RangeNO2 = m.Index.RangeNO2
		ds.RangeH2O = m.Index.RangeH2O
		ds.RangeExt = m.Index.RangeExt
		ds.RangeDens = m.Index.RangeDens
	}

	ix := m.Index
	ds.Months = append(ds.Months, MonthInfo{
		Year:         m.Year,
		Month:        m.Month,
		NumProf:      len(m.Profiles),
		MetRevDate:   ix.MetRevDate,
		DriverRev:    ix.DriverRev,
		TransRev:     ix.TransRev,
		InvRev:       ix.InvRev,
		SpecRev:      ix.SpecRev,
		EphFileName:  ix.EphFileName,
		MetFileName:  ix.MetFileName,
		RefFileName:  ix.RefFileName,
		TranFileName: ix.TranFileName,
		SpecFileName: ix.SpecFileName,
	})

	ds.Time = append(ds.Time, m.Time...)
	ds.MJD = append(ds.MJD, m.MJD...)

	ds.YYYYMMDD = append(ds.YYYYMMDD, ix.YYYYMMDD...)
	ds.EventNum = append(ds.EventNum, ix.EventNum...)
	ds.HHMMSS = append(ds.HHMMSS, ix.HHMMSS...)
	ds.DayFrac = append(ds.DayFrac, ix.DayFrac...)
	ds.Lat = append(ds.Lat, ix.Lat...)
	ds.Lon = append(ds.Lon, ix.Lon...)
	ds.Beta = append(ds.Beta, ix.Beta...)
	ds.Duration = append(ds.Duration, ix.Duration...)
	ds.TypeSat = append(ds.TypeSat, ix.TypeSat...)
	ds.TypeTan = append(ds.TypeTan, ix.TypeTan...)
	ds.Dropped = append(ds.Dropped, ix.Dropped...)
	ds.InfVec = append(ds.InfVec, ix.InfVec...)

	ds.EphCreDate = append(ds.EphCreDate, ix.EphCreDate...)
	ds.EphCreTime = append(ds.EphCreTime, ix.EphCreTime...)
	ds.MetCreDate = append(ds.MetCreDate, ix.MetCreDate...)
	ds.MetCreTime = append(ds.MetCreTime, ix.MetCreTime...)
	ds.RefCreDate = append(ds.RefCreDate, ix.RefCreDate...)
	ds.RefCreTime = append(ds.RefCreTime, ix.RefCreTime...)
	ds.TranCreDate = append(ds.TranCreDate, ix.TranCreDate...)
	ds.TranCreTime = append(ds.TranCreTime, ix.TranCreTime...)
	ds.SpecCreDate = append(ds.SpecCreDate, ix.SpecCreDate...)
	ds.SpecCreTime = append(ds.SpecCreTime, ix.SpecCreTime...)

	for _, p := range m.Profiles {
		ds.TanAlt = append(ds.TanAlt, p.TanAlt)
		ds.TanLat = append(ds.TanLat, p.TanLat)
		ds.TanLon = append(ds.TanLon, p.TanLon)

		ds.NMCPres = append(ds.NMCPres, p.NMCPres)
		ds.NMCTemp = append(ds.NMCTemp, p.NMCTemp)
		ds.NMCDens = append(ds.NMCDens, p.NMCDens)
		ds.NMCDensErr = append(ds.NMCDensErr, p.NMCDensErr)

		ds.TropHeight = append(ds.TropHeight, p.TropHeight)
		ds.Wavelength = append(ds.Wavelength, p.Wavelength)

		ds.O3 = append(ds.O3, p.O3)
		ds.NO2 = append(ds.NO2, p.NO2)
		ds.H2O = append(ds.H2O, p.H2O)

		ds.Ext386 = append(ds.Ext386, p.Ext386)
		ds.Ext452 = append(ds.Ext452, p.Ext452)
		ds.Ext525 = append(ds.Ext525, p.Ext525)
		ds.Ext1020 = append(ds.Ext1020, p.Ext1020)
		ds.Density = append(ds.Density, p.Density)
		ds.SurfDen = append(ds.SurfDen, p.SurfDen)
		ds.Radius = append(ds.Radius, p.Radius)
		ds.DensMidAtm = append(ds.DensMidAtm, p.DensMidAtm)

		ds.O3Err = append(ds.O3Err, p.O3Err)
		ds.NO2Err = append(ds.NO2Err, p.NO2Err)
		ds.H2OErr = append(ds.H2OErr, p.H2OErr)
		ds.Ext386Err = append(ds.Ext386Err, p.Ext386Err)
		ds.Ext452Err = append(ds.Ext452Err, p.Ext452Err)
		ds.Ext525Err = append(ds.Ext525Err, p.Ext525Err)
		ds.Ext1020Err = append(ds.Ext1020Err, p.Ext1020Err)
		ds.DensityErr = append(ds.DensityErr, p.DensityErr)
		ds.SurfDenErr = append(ds.SurfDenErr, p.SurfDenErr)
		ds.RadiusErr = append(ds.RadiusErr, p.RadiusErr)
		ds.DensMidAtmErr = append(ds.DensMidAtmErr, p.DensMidAtmErr)

		ds.ProfileInfVec = append(ds.ProfileInfVec, p.InfVec)
	}
}

// subset keeps the elements of x where keep is true.
func subset[T any](x []T, keep []bool) []T {
	if x == nil {
		return nil
	}
	var out []T
	for i, k := range keep {
		if k {
			out = append(out, x[i])
		}
	}
	return out
}

// filter applies one boolean mask across every event-indexed field.
func (ds *Dataset) filter(keep []bool) {
	ds.Time = subset(ds.Time, keep)
	ds.MJD = subset(ds.MJD, keep)

	ds.YYYYMMDD = subset(ds.YYYYMMDD, keep)
	ds.EventNum = subset(ds.EventNum, keep)
	ds.HHMMSS = subset(ds.HHMMSS, keep)
	ds.DayFrac = subset(ds.DayFrac, keep)
	ds.Lat = subset(ds.Lat, keep)
	ds.Lon = subset(ds.Lon, keep)
	ds.Beta = subset(ds.Beta, keep)
	ds.Duration = subset(ds.Duration, keep)
	ds.TypeSat = subset(ds.TypeSat, keep)
	ds.TypeTan = subset(ds.TypeTan, keep)
	ds.Dropped = subset(ds.Dropped, keep)
	ds.InfVec = subset(ds.InfVec, keep)

	ds.EphCreDate = subset(ds.EphCreDate, keep)
	ds.EphCreTime = subset(ds.EphCreTime, keep)
	ds.MetCreDate = subset(ds.MetCreDate, keep)
	ds.MetCreTime = subset(ds.MetCreTime, keep)
	ds.RefCreDate = subset(ds.RefCreDate, keep)
	ds.RefCreTime = subset(ds.RefCreTime, keep)
	ds.TranCreDate = subset(ds.TranCreDate, keep)
	ds.TranCreTime = subset(ds.TranCreTime, keep)
	ds.SpecCreDate = subset(ds.SpecCreDate, keep)
	ds.SpecCreTime = subset(ds.SpecCreTime, keep)

	ds.TanAlt = subset(ds.TanAlt, keep)
	ds.TanLat = subset(ds.TanLat, keep)
	ds.TanLon = subset(ds.TanLon, keep)

	ds.NMCPres = subset(ds.NMCPres, keep)
	ds.NMCTemp = subset(ds.NMCTemp, keep)
	ds.NMCDens = subset(ds.NMCDens, keep)
	ds.NMCDensErr = subset(ds.NMCDensErr, keep)

	ds.TropHeight = subset(ds.TropHeight, keep)
	ds.Wavelength = subset(ds.Wavelength, keep)

	ds.O3 = subset(ds.O3, keep)
	ds.NO2 = subset(ds.NO2, keep)
	ds.H2O = subset(ds.H2O, keep)

	ds.Ext386 = subset(ds.Ext386, keep)
	ds.Ext452 = subset(ds.Ext452, keep)
	ds.Ext525 = subset(ds.Ext525, keep)
	ds.Ext1020 = subset(ds.Ext1020, keep)
	ds.Density = subset(ds.Density, keep)
	ds.SurfDen = subset(ds.SurfDen, keep)
	ds.Radius = subset(ds.Radius, keep)
	ds.DensMidAtm = subset(ds.DensMidAtm, keep)

	ds.O3Err = subset(ds.O3Err, keep)
	ds.NO2Err = subset(ds.NO2Err, keep)
	ds.H2OErr = subset(ds.H2OErr, keep)
	ds.Ext386Err = subset(ds.Ext386Err, keep)
	ds.Ext452Err = subset(ds.Ext452Err, keep)
	ds.Ext525Err = subset(ds.Ext525Err, keep)
	ds.Ext1020Err = subset(ds.Ext1020Err, keep)
	ds.DensityErr = subset(ds.DensityErr, keep)
	ds.SurfDenErr = subset(ds.SurfDenErr, keep)
	ds.RadiusErr = subset(ds.RadiusErr, keep)
	ds.DensMidAtmErr = subset(ds.DensMidAtmErr, keep)

	ds.ProfileInfVec = subset(ds.ProfileInfVec, keep)
}

// LoadOptions select the date range and spatial bounds for Load.  All
// bounds are strict inequalities.
type LoadOptions struct {
	MinDate time.Time
	MaxDate time.Time

	MinLat, MaxLat float64
	MinLon, MaxLon float64

	// Maximum number of months decoded concurrently.  Zero means a
	// small default.
	Workers int
}

// DefaultLoadOptions returns options for the given date range with
// maximal spatial bounds, so the location filter passes everything.
func DefaultLoadOptions(minDate, maxDate time.Time) LoadOptions {
	return LoadOptions{
		MinDate: minDate,
		MaxDate: maxDate,
		MinLat:  -90,
		MaxLat:  90,
		MinLon:  -180,
		MaxLon:  360,
	}
}

type yearMonth struct {
	year, month int
}

// monthsInRange enumerates the distinct calendar months overlapping
// [min, max] in chronological order.  Stepping by 27 days can visit a
// month twice but can never skip one; duplicates are dropped.
func monthsInRange(min, max time.Time) []yearMonth {
	if max.Before(min) {
		return nil
	}

	const step = 27 * 24 * time.Hour
	var out []yearMonth
	seen := make(map[yearMonth]bool)
	for t := min; !t.After(max.Add(step)); t = t.Add(step) {
		ym := yearMonth{t.Year(), int(t.Month())}
		if !seen[ym] {
			seen[ym] = true
			out = append(out, ym)
		}
	}
	return out
}

// mjdOf converts a timestamp to a (fractional) modified Julian day
// count.
func mjdOf(t time.Time) float64 {
	return t.Sub(mjdEpoch).Hours() / 24
}

// Load aggregates every available month overlapping the option date
// range into one Dataset and applies the spatiotemporal filter.
// Months without files are skipped; a month that fails to decode
// aborts the whole load.  If no events pass the filter the returned
// dataset is explicitly empty (Empty reports true); that is not an
// error.
//
// Months are decoded concurrently but concatenated in chronological
// order, so event order is month order then within-month file order.
func (l *Loader) Load(opts LoadOptions) (*Dataset, error) {
	ds := new(Dataset)

	months := monthsInRange(opts.MinDate, opts.MaxDate)
	if len(months) == 0 {
		return ds, nil
	}

	loaded := make([]*Month, len(months))

	var g errgroup.Group
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	g.SetLimit(workers)

	for i, ym := range months {
		g.Go(func() error {
			l.Log.Info().Int("year", ym.year).Int("month", ym.month).Msg("loading data")
			m, err := l.LoadMonth(ym.year, ym.month)
			if errors.Is(err, ErrMonthNotFound) {
				l.Log.Debug().Int("year", ym.year).Int("month", ym.month).Msg("no data this month")
				return nil
			} else if err != nil {
				return err
			}
			loaded[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, m := range loaded {
		if m != nil {
			ds.appendMonth(m)
		}
	}

	minMJD := mjdOf(opts.MinDate)
	maxMJD := mjdOf(opts.MaxDate)

	keep := make([]bool, ds.NumEvents())
	n := 0
	for i := range keep {
		keep[i] = ds.MJD[i] > minMJD && ds.MJD[i] < maxMJD &&
			float64(ds.Lat[i]) > opts.MinLat && float64(ds.Lat[i]) < opts.MaxLat &&
			float64(ds.Lon[i]) > opts.MinLon && float64(ds.Lon[i]) < opts.MaxLon
		if keep[i] {
			n++
		}
	}
	ds.filter(keep)

	l.Log.Info().Int("months", len(ds.Months)).Int("events", n).Msg("load complete")

	return ds, nil
}
