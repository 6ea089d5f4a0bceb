package sagereader

import (
	"testing"
	"time"
)

func TestMonthsInRange(t *testing.T) {

	min := time.Date(2004, 1, 15, 0, 0, 0, 0, time.UTC)
	max := time.Date(2004, 3, 2, 0, 0, 0, 0, time.UTC)

	got := monthsInRange(min, max)
	want := []yearMonth{{2004, 1}, {2004, 2}, {2004, 3}}
	if len(got) != len(want) {
		t.Fatalf("months = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("months[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// A span inside one month yields that month.
	got = monthsInRange(
		time.Date(2004, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 6, 3, 0, 0, 0, 0, time.UTC))
	if len(got) != 1 || got[0] != (yearMonth{2004, 6}) {
		t.Errorf("single-month span = %v", got)
	}

	// A year boundary.
	got = monthsInRange(
		time.Date(1999, 12, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 10, 0, 0, 0, 0, time.UTC))
	if len(got) != 2 || got[0] != (yearMonth{1999, 12}) || got[1] != (yearMonth{2000, 1}) {
		t.Errorf("year boundary span = %v", got)
	}

	// A reversed range is empty.
	if got := monthsInRange(max, min); got != nil {
		t.Errorf("reversed range = %v", got)
	}
}

func TestLoadAggregatesMonths(t *testing.T) {

	l := NewLoader(t.TempDir())
	writeMonthFiles(t, l, 2004, 1, []testEvent{
		{ymd: 20040105, hms: 120000, lat: 10, lon: 50, o3: 1e12},
		{ymd: 20040120, hms: 60000, lat: 20, lon: 60, o3: 2e12},
	})
	writeMonthFiles(t, l, 2004, 2, []testEvent{
		{ymd: 20040210, hms: 120000, lat: 30, lon: 70, o3: 3e12},
	})

	ds, err := l.Load(DefaultLoadOptions(
		time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 3, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}

	if ds.NumEvents() != 3 {
		t.Fatalf("NumEvents = %d, want 3", ds.NumEvents())
	}
	if len(ds.Months) != 2 {
		t.Errorf("loaded %d months, want 2", len(ds.Months))
	}
	if ds.Months[0].NumProf != 2 || ds.Months[1].NumProf != 1 {
		t.Errorf("month profile counts %d, %d", ds.Months[0].NumProf, ds.Months[1].NumProf)
	}

	// Events are in month order, then within-month file order,
	// regardless of decode concurrency.
	for i := 1; i < ds.NumEvents(); i++ {
		if ds.MJD[i] <= ds.MJD[i-1] {
			t.Errorf("MJD not increasing at %d: %v, %v", i, ds.MJD[i-1], ds.MJD[i])
		}
	}
	if ds.O3[2][0] != 3e12 {
		t.Errorf("O3[2][0] = %v", ds.O3[2][0])
	}

	// Grid constants come from the first month.
	if ds.FillVal != -999 || ds.GridSize != 0.5 || len(ds.AltGrid) != 200 {
		t.Errorf("constants: fill %v, grid %v, levels %d", ds.FillVal, ds.GridSize, len(ds.AltGrid))
	}
}

func TestLoadSkipsMissingMonths(t *testing.T) {

	l := NewLoader(t.TempDir())
	writeMonthFiles(t, l, 2004, 2, []testEvent{
		{ymd: 20040210, hms: 120000, lat: 30, lon: 70},
	})

	// January and March have no files; that is sparse data, not an
	// error.
	ds, err := l.Load(DefaultLoadOptions(
		time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 4, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}
	if ds.NumEvents() != 1 {
		t.Errorf("NumEvents = %d, want 1", ds.NumEvents())
	}
}

func TestLoadSpatialFilter(t *testing.T) {

	l := NewLoader(t.TempDir())
	writeMonthFiles(t, l, 2004, 1, []testEvent{
		{ymd: 20040105, hms: 120000, lat: 10, lon: 50},
		{ymd: 20040106, hms: 120000, lat: 50, lon: 50}, // on the boundary
		{ymd: 20040107, hms: 120000, lat: 60, lon: 50},
	})

	opts := DefaultLoadOptions(
		time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 2, 1, 0, 0, 0, 0, time.UTC))
	opts.MinLat = 0
	opts.MaxLat = 50

	ds, err := l.Load(opts)
	if err != nil {
		t.Fatal(err)
	}

	// Bounds are strict, so the event at exactly 50 degrees is dropped.
	if ds.NumEvents() != 1 {
		t.Fatalf("NumEvents = %d, want 1", ds.NumEvents())
	}
	if ds.Lat[0] != 10 {
		t.Errorf("kept event at lat %v", ds.Lat[0])
	}
	if len(ds.O3) != 1 || len(ds.ProfileInfVec) != 1 {
		t.Errorf("profile fields not filtered: %d, %d", len(ds.O3), len(ds.ProfileInfVec))
	}
}

func TestLoadDateFilterDropsInvalid(t *testing.T) {

	l := NewLoader(t.TempDir())
	writeMonthFiles(t, l, 2004, 1, []testEvent{
		{ymd: 20040105, hms: 120000, lat: 10, lon: 50},
		{ymd: 20040106, hms: 250000, lat: 10, lon: 50}, // unrecoverable time
	})

	ds, err := l.Load(DefaultLoadOptions(
		time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 2, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}

	// The invalid event's sentinel day count falls outside every
	// realistic query range.
	if ds.NumEvents() != 1 {
		t.Errorf("NumEvents = %d, want 1", ds.NumEvents())
	}
}

func TestLoadEmptyRange(t *testing.T) {

	l := NewLoader(t.TempDir())

	ds, err := l.Load(DefaultLoadOptions(
		time.Date(2004, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}
	if !ds.Empty() {
		t.Error("reversed date range did not produce an empty dataset")
	}
}

func TestSubset(t *testing.T) {

	x := []int32{1, 2, 3, 4}
	got := subset(x, []bool{true, false, false, true})
	if len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("subset = %v", got)
	}

	if subset([]int32(nil), []bool{}) != nil {
		t.Error("subset of nil is not nil")
	}
}
