package sagereader

import (
	"encoding/binary"
	"errors"
	"os"
	"testing"
	"time"
)

// testEvent is one synthetic occultation event for file-pair fixtures.
type testEvent struct {
	ymd, hms int32
	lat, lon float32
	o3       float32
}

// writeMonthFiles writes a synthetic index/spec file pair for one
// month into dir.
func writeMonthFiles(t *testing.T, l *Loader, year, month int, events []testEvent) {
	t.Helper()

	var ymd, hms []int32
	var lat, lon, dur []float32
	for _, e := range events {
		ymd = append(ymd, e.ymd)
		hms = append(hms, e.hms)
		lat = append(lat, e.lat)
		lon = append(lon, e.lon)
		dur = append(dur, 30)
	}

	ibuf := encodeTable(SageIIIndexFormat(), binary.LittleEndian, map[string]interface{}{
		"num_prof":  uint32(len(events)),
		"FillVal":   float32(-999),
		"Grid_Size": float32(0.5),
		"Alt_Grid":  altGrid200(),
		"YYYYMMDD":  ymd,
		"HHMMSS":    hms,
		"Lat":       lat,
		"Lon":       lon,
		"Duration":  dur,
	})
	if err := os.WriteFile(l.IndexPath(year, month), ibuf, 0o644); err != nil {
		t.Fatal(err)
	}

	var sbuf []byte
	for _, e := range events {
		sbuf = append(sbuf, encodeTable(SageIISpecFormat(), binary.LittleEndian, map[string]interface{}{
			"O3": []float32{e.o3},
		})...)
	}
	if err := os.WriteFile(l.SpecPath(year, month), sbuf, 0o644); err != nil {
		t.Fatal(err)
	}
}

// altGrid200 is the product altitude grid, 0.5 to 100 km.
func altGrid200() []float32 {
	g := make([]float32, 200)
	for i := range g {
		g[i] = 0.5 * float32(i+1)
	}
	return g
}

func TestLoaderPaths(t *testing.T) {
	l := NewLoader("/data")
	if p := l.IndexPath(2004, 3); p != "/data/SAGE_II_INDEX_200403.7.00" {
		t.Errorf("IndexPath = %q", p)
	}
	if p := l.SpecPath(1985, 11); p != "/data/SAGE_II_SPEC_198511.7.00" {
		t.Errorf("SpecPath = %q", p)
	}
}

func TestLoadMonth(t *testing.T) {

	l := NewLoader(t.TempDir())
	writeMonthFiles(t, l, 2004, 1, []testEvent{
		{ymd: 20040105, hms: 120000, lat: 10, lon: 50, o3: 1e12},
		{ymd: 20040120, hms: 233000, lat: -60, lon: 200, o3: 2e12},
	})

	m, err := l.LoadMonth(2004, 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Profiles) != 2 {
		t.Fatalf("decoded %d profiles", len(m.Profiles))
	}
	if len(m.Index.Lat) != 2 {
		t.Errorf("index arrays not truncated: len(Lat) = %d", len(m.Index.Lat))
	}
	if m.Index.Lat[1] != -60 || m.Index.Lon[1] != 200 {
		t.Errorf("event 1 at (%v, %v)", m.Index.Lat[1], m.Index.Lon[1])
	}
	if m.Profiles[0].O3[0] != 1e12 || m.Profiles[1].O3[0] != 2e12 {
		t.Errorf("O3 = %v, %v", m.Profiles[0].O3[0], m.Profiles[1].O3[0])
	}

	want := time.Date(2004, 1, 5, 12, 0, 0, 0, time.UTC)
	if !m.Time[0].Equal(want) {
		t.Errorf("Time[0] = %v, want %v", m.Time[0], want)
	}
	if m.MJD[0] >= m.MJD[1] {
		t.Errorf("MJD not increasing: %v, %v", m.MJD[0], m.MJD[1])
	}
}

func TestLoadMonthMissing(t *testing.T) {

	l := NewLoader(t.TempDir())
	_, err := l.LoadMonth(2004, 1)
	if !errors.Is(err, ErrMonthNotFound) {
		t.Fatalf("want ErrMonthNotFound, got %v", err)
	}
}

func TestLoadMonthMissingSpec(t *testing.T) {

	l := NewLoader(t.TempDir())
	ibuf := encodeTable(SageIIIndexFormat(), binary.LittleEndian, map[string]interface{}{
		"num_prof": uint32(1),
	})
	if err := os.WriteFile(l.IndexPath(2004, 1), ibuf, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := l.LoadMonth(2004, 1)
	if !errors.Is(err, ErrMonthNotFound) {
		t.Fatalf("want ErrMonthNotFound, got %v", err)
	}
}

func TestLoadMonthShortSpec(t *testing.T) {

	l := NewLoader(t.TempDir())
	writeMonthFiles(t, l, 2004, 1, []testEvent{
		{ymd: 20040105, hms: 120000},
	})

	// Truncate the spec file below one record.
	if err := os.WriteFile(l.SpecPath(2004, 1), make([]byte, 100), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := l.LoadMonth(2004, 1)
	var le *LayoutError
	if !errors.As(err, &le) {
		t.Fatalf("want LayoutError, got %v", err)
	}
}

func TestLoadMonthOverCapacity(t *testing.T) {

	l := NewLoader(t.TempDir())
	ibuf := encodeTable(SageIIIndexFormat(), binary.LittleEndian, map[string]interface{}{
		"num_prof": uint32(SageIIMaxEvents + 1),
	})
	if err := os.WriteFile(l.IndexPath(2004, 1), ibuf, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.SpecPath(2004, 1), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := l.LoadMonth(2004, 1); err == nil {
		t.Fatal("declared profile count over capacity did not fail")
	}
}
