package sagereader

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func sage3Buffer() []byte {
	return encodeTable(SageIIIEventFormat(), binary.BigEndian, map[string]interface{}{
		"Event_Id":         int32(2002001),
		"Year_Day":         int32(2002150),
		"Fill_Int":         int32(-999),
		"Fill_Float":       float32(-999),
		"Grid_Spacing":     float32(0.5),
		"Num_Alt":          int32(200),
		"Num_Aer_Channels": int32(9),
		"Num_Ground_Track": int32(11),
		"Num_Aer_Ext_Alt":  int32(90),
		"Start_Lat":        float32(68.5),
		"Start_Lon":        float32(-120.25),
		"Subtan_Lat":       []float32{68.5, 68.6},
		"Alt_Geometric":    []float32{0.5, 1.0},
		"Temperature":      []float32{210, 215},
		"O3_Composite":     []float32{1e12, 2e12},
		"O3_MLR":           []float32{3e12},
		"Ext_Ch1":          []float32{1e-4},
		"Ext_Ch9_QA":       []int32{7},
		"Aer_Wavelength":   []float32{384.3, 448.5, 520.3, 601.6, 676.0, 756.0, 869.2, 1021.2, 1545.2},
	})
}

func TestDecodeSage3Event(t *testing.T) {

	buf := sage3Buffer()
	if len(buf) != SageIIIEventSize {
		t.Fatalf("event buffer is %d bytes, want %d", len(buf), SageIIIEventSize)
	}

	ev, err := decodeSage3Event(buf)
	if err != nil {
		t.Fatal(err)
	}

	if ev.EventID != 2002001 || ev.YearDay != 2002150 {
		t.Errorf("EventID = %d, YearDay = %d", ev.EventID, ev.YearDay)
	}
	if ev.FillFloat != -999 || ev.NumAlt != 200 {
		t.Errorf("FillFloat = %v, NumAlt = %d", ev.FillFloat, ev.NumAlt)
	}
	if ev.StartLat != 68.5 || ev.StartLon != -120.25 {
		t.Errorf("start point (%v, %v)", ev.StartLat, ev.StartLon)
	}

	if len(ev.SubtanLat) != 11 || ev.SubtanLat[1] != 68.6 {
		t.Errorf("SubtanLat: len %d, [1] = %v", len(ev.SubtanLat), ev.SubtanLat[1])
	}
	if len(ev.AltGeometric) != 200 || len(ev.Temperature) != 200 {
		t.Errorf("altitude arrays: %d, %d", len(ev.AltGeometric), len(ev.Temperature))
	}
	if ev.Temperature[1] != 215 {
		t.Errorf("Temperature[1] = %v", ev.Temperature[1])
	}

	// The four retrievals decode in record order.
	if ev.Ozone[0].Conc[1] != 2e12 || ev.Ozone[2].Conc[0] != 3e12 {
		t.Errorf("ozone retrievals: %v, %v", ev.Ozone[0].Conc[1], ev.Ozone[2].Conc[0])
	}
	if len(ev.Ozone[3].QA) != 200 {
		t.Errorf("ozone QA length %d", len(ev.Ozone[3].QA))
	}

	// Aerosol channels all carry the 90-level stride.
	for ch := range ev.Ext {
		if len(ev.Ext[ch].Ext) != 90 || len(ev.Ext[ch].QA) != 90 {
			t.Errorf("channel %d: %d ext, %d qa", ch+1, len(ev.Ext[ch].Ext), len(ev.Ext[ch].QA))
		}
	}
	if ev.Ext[0].Ext[0] != 1e-4 || ev.Ext[8].QA[0] != 7 {
		t.Errorf("channel values: %v, %d", ev.Ext[0].Ext[0], ev.Ext[8].QA[0])
	}
	if len(ev.AerWavelength) != 9 || ev.AerWavelength[8] != 1545.2 {
		t.Errorf("AerWavelength = %v", ev.AerWavelength)
	}
}

func TestDecodeSage3EventShort(t *testing.T) {

	buf := sage3Buffer()
	_, err := decodeSage3Event(buf[:200])

	var le *LayoutError
	if !errors.As(err, &le) {
		t.Fatalf("want LayoutError, got %v", err)
	}
}

func TestLoadSage3File(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "g3a.ssp.00382210v04.00")
	if err := os.WriteFile(path, sage3Buffer(), 0o644); err != nil {
		t.Fatal(err)
	}

	ev, err := LoadSage3File(path)
	if err != nil {
		t.Fatal(err)
	}
	if ev.EventID != 2002001 {
		t.Errorf("EventID = %d", ev.EventID)
	}

	if _, err := LoadSage3File(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing file did not fail")
	}
}
