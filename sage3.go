package sagereader

import (
	"encoding/binary"
	"fmt"
	"os"
)

// A Sage3Event is one decoded SAGE III v04.00 solar event record.
// Altitude-based arrays hold 200 values, ground-track arrays 11, and
// aerosol arrays 90 per channel; the counts are also carried in the
// record header (NumAlt and friends).
type Sage3Event struct {
	EventID     int32
	YearDay     int32
	ElapsedTime int32
	FillInt     int32
	FillFloat   float32
	MissionID   int32

	VerOrbit        float32
	VerL0           float32
	VerSoftware     float32
	VerProduct      float32
	VerSpectroscopy float32
	VerGRAM95       float32
	VerMet          float32

	GridSpacing    float32
	NumAlt         int32
	NumAerChannels int32
	NumGroundTrack int32
	NumAerExtAlt   int32

	TypeSat     int32
	TypeEarth   int32
	BetaAngle   float32
	EventStatus int32

	StartDate int32
	StartTime int32
	StartLat  float32
	StartLon  float32
	StartAlt  float32

	EndDate int32
	EndTime int32
	EndLat  float32
	EndLon  float32
	EndAlt  float32

	Date      []int32
	Time      []int32
	SubtanLat []float32
	SubtanLon []float32
	SubtanAlt []float32

	Homogeneity     []int32
	AltGeometric    []float32
	AltGeopotential []float32

	Temperature    []float32
	TemperatureErr []float32
	Pressure       []float32
	PressureErr    []float32
	PTSourceFlags  []int32

	TropTemperature float32
	TropAltitude    float32

	// The four ozone retrievals, keyed Composite, Meso, MLR, LSQ.
	Ozone [4]Sage3Ozone

	H2O    []float32
	H2OErr []float32
	H2OQA  []int32

	NO2            []float32
	NO2Err         []float32
	NO2SlantCol    []float32
	NO2SlantColErr []float32
	NO2QA          []int32

	RetTemperature    []float32
	RetTemperatureErr []float32
	RetPressure       []float32
	RetPressureErr    []float32
	RetPTQA           []int32

	AerWavelength []float32
	AerHalfwidth  []float32
	StratOD       []float32
	StratODErr    []float32
	StratODQA     []int32

	// Aerosol extinction per channel, 9 channels of 90 levels.
	Ext            [9]Sage3ExtChannel
	AerSpectralDep []float32

	Ext1020RayRatio    []float32
	Ext1020RayRatioErr []float32
	Ext1020RayRatioQA  []int32
}

// Sage3Ozone is one of the four ozone retrievals of a SAGE III event.
type Sage3Ozone struct {
	Conc        []float32
	ConcErr     []float32
	SlantCol    []float32
	SlantColErr []float32
	QA          []int32
}

// Sage3ExtChannel is the aerosol extinction retrieval of one channel.
type Sage3ExtChannel struct {
	Ext []float32
	Err []float32
	QA  []int32
}

// Names of the four ozone retrievals, in record order.
var sage3OzoneNames = []string{"O3_Composite", "O3_Meso", "O3_MLR", "O3_LSQ"}

// LoadSage3File reads and decodes one SAGE III event file.
func LoadSage3File(path string) (*Sage3Event, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ev, err := decodeSage3Event(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ev, nil
}

// decodeSage3Event decodes one big-endian SAGE III event record.
func decodeSage3Event(buf []byte) (*Sage3Event, error) {
	r := newTableReader(buf, SageIIIEventFormat(), binary.BigEndian)

	ev := new(Sage3Event)
	var err error

	i32 := func(dst *int32, name string) {
		if err == nil {
			*dst, err = r.int32(name)
		}
	}
	f32 := func(dst *float32, name string) {
		if err == nil {
			*dst, err = r.float32(name)
		}
	}
	i32s := func(dst *[]int32, name string) {
		if err == nil {
			*dst, err = r.int32s(name)
		}
	}
	f32s := func(dst *[]float32, name string) {
		if err == nil {
			*dst, err = r.float32s(name)
		}
	}

	i32(&ev.EventID, "Event_Id")
	i32(&ev.YearDay, "Year_Day")
	i32(&ev.ElapsedTime, "Elapsed_Time")
	i32(&ev.FillInt, "Fill_Int")
	f32(&ev.FillFloat, "Fill_Float")
	i32(&ev.MissionID, "Mission_Id")

	f32(&ev.VerOrbit, "Ver_Orbit")
	f32(&ev.VerL0, "Ver_L0")
	f32(&ev.VerSoftware, "Ver_Software")
	f32(&ev.VerProduct, "Ver_Product")
	f32(&ev.VerSpectroscopy, "Ver_Spectroscopy")
	f32(&ev.VerGRAM95, "Ver_GRAM95")
	f32(&ev.VerMet, "Ver_Met")

	f32(&ev.GridSpacing, "Grid_Spacing")
	i32(&ev.NumAlt, "Num_Alt")
	i32(&ev.NumAerChannels, "Num_Aer_Channels")
	i32(&ev.NumGroundTrack, "Num_Ground_Track")
	i32(&ev.NumAerExtAlt, "Num_Aer_Ext_Alt")

	i32(&ev.TypeSat, "Type_Sat")
	i32(&ev.TypeEarth, "Type_Earth")
	f32(&ev.BetaAngle, "Beta_Angle")
	i32(&ev.EventStatus, "Event_Status")

	i32(&ev.StartDate, "Start_Date")
	i32(&ev.StartTime, "Start_Time")
	f32(&ev.StartLat, "Start_Lat")
	f32(&ev.StartLon, "Start_Lon")
	f32(&ev.StartAlt, "Start_Alt")

	i32(&ev.EndDate, "End_Date")
	i32(&ev.EndTime, "End_Time")
	f32(&ev.EndLat, "End_Lat")
	f32(&ev.EndLon, "End_Lon")
	f32(&ev.EndAlt, "End_Alt")

	i32s(&ev.Date, "Date")
	i32s(&ev.Time, "Time")
	f32s(&ev.SubtanLat, "Subtan_Lat")
	f32s(&ev.SubtanLon, "Subtan_Lon")
	f32s(&ev.SubtanAlt, "Subtan_Alt")

	i32s(&ev.Homogeneity, "Homogeneity")
	f32s(&ev.AltGeometric, "Alt_Geometric")
	f32s(&ev.AltGeopotential, "Alt_Geopotential")

	f32s(&ev.Temperature, "Temperature")
	f32s(&ev.TemperatureErr, "Temperature_Err")
	f32s(&ev.Pressure, "Pressure")
	f32s(&ev.PressureErr, "Pressure_Err")
	i32s(&ev.PTSourceFlags, "PT_Source_Flags")

	f32(&ev.TropTemperature, "Trop_Temperature")
	f32(&ev.TropAltitude, "Trop_Altitude")

	for k, s := range sage3OzoneNames {
		f32s(&ev.Ozone[k].Conc, s)
		f32s(&ev.Ozone[k].ConcErr, s+"_Err")
		f32s(&ev.Ozone[k].SlantCol, s+"_SlantCol")
		f32s(&ev.Ozone[k].SlantColErr, s+"_SlantCol_Err")
		i32s(&ev.Ozone[k].QA, s+"_QA")
	}

	f32s(&ev.H2O, "H2O")
	f32s(&ev.H2OErr, "H2O_Err")
	i32s(&ev.H2OQA, "H2O_QA")

	f32s(&ev.NO2, "NO2")
	f32s(&ev.NO2Err, "NO2_Err")
	f32s(&ev.NO2SlantCol, "NO2_SlantCol")
	f32s(&ev.NO2SlantColErr, "NO2_SlantCol_Err")
	i32s(&ev.NO2QA, "NO2_QA")

	f32s(&ev.RetTemperature, "Ret_Temperature")
	f32s(&ev.RetTemperatureErr, "Ret_Temperature_Err")
	f32s(&ev.RetPressure, "Ret_Pressure")
	f32s(&ev.RetPressureErr, "Ret_Pressure_Err")
	i32s(&ev.RetPTQA, "Ret_PT_QA")

	f32s(&ev.AerWavelength, "Aer_Wavelength")
	f32s(&ev.AerHalfwidth, "Aer_Halfwidth")
	f32s(&ev.StratOD, "Strat_OD")
	f32s(&ev.StratODErr, "Strat_OD_Err")
	i32s(&ev.StratODQA, "Strat_OD_QA")

	for ch := 0; ch < 9; ch++ {
		f32s(&ev.Ext[ch].Ext, fmt.Sprintf("Ext_Ch%d", ch+1))
		f32s(&ev.Ext[ch].Err, fmt.Sprintf("Ext_Ch%d_Err", ch+1))
		i32s(&ev.Ext[ch].QA, fmt.Sprintf("Ext_Ch%d_QA", ch+1))
	}

	f32s(&ev.AerSpectralDep, "Aer_Spectral_Dep")
	f32s(&ev.Ext1020RayRatio, "Ext1020_Ray_Ratio")
	f32s(&ev.Ext1020RayRatioErr, "Ext1020_Ray_Ratio_Err")
	i32s(&ev.Ext1020RayRatioQA, "Ext1020_Ray_Ratio_QA")

	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return ev, nil
}
