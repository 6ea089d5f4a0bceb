package sagereader

import (
	"encoding/binary"
	"time"

	xencoding "golang.org/x/text/encoding"
)

// MJD sentinel values.  Events whose date or time cannot be recovered
// are pinned to InvalidMJD, which falls outside any realistic query
// range so the date filter drops them naturally.
const (
	// InvalidMJD marks an event with an unrecoverable date or time.
	InvalidMJD = -999

	// minValidMJD is 1970-01-01.  SAGE II flew from 1984; a smaller
	// day count indicates a corrupt record, not a pre-mission date.
	minValidMJD = 40588
)

// mjdEpoch is the origin of the modified Julian day count.
var mjdEpoch = time.Date(1858, 11, 17, 0, 0, 0, 0, time.UTC)

// invalidTime is the timestamp sentinel for events with a negative
// date or time field.  Its day count (40587) is below minValidMJD, so
// such events always carry InvalidMJD.
var invalidTime = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// An IndexRecord is the decoded header record of a SAGE II index
// file.  The per-event arrays are decoded at the full file capacity of
// 930 entries; truncate cuts them down to the declared profile count.
type IndexRecord struct {
	NumProf    uint32
	MetRevDate uint32

	DriverRev string
	TransRev  string
	InvRev    string
	SpecRev   string

	EphFileName  string
	MetFileName  string
	RefFileName  string
	TranFileName string
	SpecFileName string

	FillVal  float32
	GridSize float32

	AltGrid    []float32
	AltMidAtm  []float32
	RangeTrans []float32
	RangeO3    []float32
	RangeNO2   []float32
	RangeH2O   []float32
	RangeExt   []float32
	RangeDens  []float32
	Spare      []float32

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
}

// decodeIndexRecord decodes one SAGE II index record.  The buffer
// must hold at least SageIIIndexSize bytes.
func decodeIndexRecord(buf []byte, order binary.ByteOrder, text *xencoding.Decoder) (*IndexRecord, error) {
	r := newTableReader(buf, SageIIIndexFormat(), order)
	r.text = text

	rec := new(IndexRecord)
	var err error

	read := func(dst interface{}, name string) {
		if err != nil {
			return
		}
		switch d := dst.(type) {
		case *uint32:
			*d, err = r.uint32(name)
		case *float32:
			*d, err = r.float32(name)
		case *string:
			*d, err = r.chars(name)
		case *[]float32:
			*d, err = r.float32s(name)
		case *[]int32:
			*d, err = r.int32s(name)
		case *[]int16:
			*d, err = r.int16s(name)
		case *[]uint32:
			*d, err = r.uint32s(name)
		}
	}

	read(&rec.NumProf, "num_prof")
	read(&rec.MetRevDate, "Met_Rev_Date")
	read(&rec.DriverRev, "Driver_Rev")
	read(&rec.TransRev, "Trans_Rev")
	read(&rec.InvRev, "Inv_Rev")
	read(&rec.SpecRev, "Spec_Rev")
	read(&rec.EphFileName, "Eph_File_Name")
	read(&rec.MetFileName, "Met_File_Name")
	read(&rec.RefFileName, "Ref_File_Name")
	read(&rec.TranFileName, "Tran_File_Name")
	read(&rec.SpecFileName, "Spec_File_Name")
	read(&rec.FillVal, "FillVal")

	read(&rec.GridSize, "Grid_Size")
	read(&rec.AltGrid, "Alt_Grid")
	read(&rec.AltMidAtm, "Alt_Mid_Atm")
	read(&rec.RangeTrans, "Range_Trans")
	read(&rec.RangeO3, "Range_O3")
	read(&rec.RangeNO2, "Range_NO2")
	read(&rec.RangeH2O, "Range_H2O")
	read(&rec.RangeExt, "Range_Ext")
	read(&rec.RangeDens, "Range_Dens")
	read(&rec.Spare, "Spare")

	read(&rec.YYYYMMDD, "YYYYMMDD")
	read(&rec.EventNum, "Event_Num")
	read(&rec.HHMMSS, "HHMMSS")
	read(&rec.DayFrac, "Day_Frac")
	read(&rec.Lat, "Lat")
	read(&rec.Lon, "Lon")
	read(&rec.Beta, "Beta")
	read(&rec.Duration, "Duration")
	read(&rec.TypeSat, "Type_Sat")
	read(&rec.TypeTan, "Type_Tan")
	read(&rec.Dropped, "Dropped")
	read(&rec.InfVec, "InfVec")

	read(&rec.EphCreDate, "Eph_Cre_Date")
	read(&rec.EphCreTime, "Eph_Cre_Time")
	read(&rec.MetCreDate, "Met_Cre_Date")
	read(&rec.MetCreTime, "Met_Cre_Time")
	read(&rec.RefCreDate, "Ref_Cre_Date")
	read(&rec.RefCreTime, "Ref_Cre_Time")
	read(&rec.TranCreDate, "Tran_Cre_Date")
	read(&rec.TranCreTime, "Tran_Cre_Time")
	read(&rec.SpecCreDate, "Spec_Cre_Date")
	read(&rec.SpecCreTime, "Spec_Cre_Time")

	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return rec, nil
}

// truncate cuts every capacity-length per-event array down to n
// entries, so the index arrays align one to one with the decoded
// profile records.
func (rec *IndexRecord) truncate(n int) {
	rec.YYYYMMDD = rec.YYYYMMDD[:n]
	rec.EventNum = rec.EventNum[:n]
	rec.HHMMSS = rec.HHMMSS[:n]
	rec.DayFrac = rec.DayFrac[:n]
	rec.Lat = rec.Lat[:n]
	rec.Lon = rec.Lon[:n]
	rec.Beta = rec.Beta[:n]
	rec.Duration = rec.Duration[:n]
	rec.TypeSat = rec.TypeSat[:n]
	rec.TypeTan = rec.TypeTan[:n]
	rec.Dropped = rec.Dropped[:n]
	rec.InfVec = rec.InfVec[:n]
	rec.EphCreDate = rec.EphCreDate[:n]
	rec.EphCreTime = rec.EphCreTime[:n]
	rec.MetCreDate = rec.MetCreDate[:n]
	rec.MetCreTime = rec.MetCreTime[:n]
	rec.RefCreDate = rec.RefCreDate[:n]
	rec.RefCreTime = rec.RefCreTime[:n]
	rec.TranCreDate = rec.TranCreDate[:n]
	rec.TranCreTime = rec.TranCreTime[:n]
	rec.SpecCreDate = rec.SpecCreDate[:n]
	rec.SpecCreTime = rec.SpecCreTime[:n]
}

// eventTimes derives a calendar timestamp and a modified Julian day
// count for every event in the record.
//
// An HHMMSS that overflows 240000 by less than the event duration is
// the scan running past midnight; it is clamped to 23:59:59 of the
// event date, and the clamp is written back to rec.HHMMSS.  An
// overflow beyond the duration, or a negative date or time, cannot be
// recovered: the timestamp becomes the 1970 sentinel and the day
// count becomes InvalidMJD.
func (rec *IndexRecord) eventTimes() ([]time.Time, []float64) {
	n := len(rec.HHMMSS)
	times := make([]time.Time, n)
	mjd := make([]float64, n)

	for i := 0; i < n; i++ {
		hms := rec.HHMMSS[i]
		if hms >= 240000 && float64(hms) < 240000+float64(rec.Duration[i]) {
			hms = 235959
		} else if hms >= 240000 {
			hms = -999
		}
		rec.HHMMSS[i] = hms

		ymd := rec.YYYYMMDD[i]
		if ymd < 0 || hms < 0 {
			times[i] = invalidTime
		} else {
			times[i] = time.Date(
				int(ymd/10000), time.Month((ymd/100)%100), int(ymd%100),
				int(hms/10000), int((hms%10000)/100), int(hms%100),
				0, time.UTC)
		}

		mjd[i] = times[i].Sub(mjdEpoch).Hours() / 24
		if mjd[i] < minValidMJD {
			mjd[i] = InvalidMJD
		}
	}

	return times, mjd
}
