package sagereader

import "encoding/binary"

// A ProfileRecord is one decoded SAGE II spec-file record: the
// retrieved vertical profiles for a single occultation event.  Array
// lengths follow SageIISpecFormat; profiles are reported on the first
// 140, 100, or 80 levels of the index record's altitude grid depending
// on the species.
type ProfileRecord struct {
	TanAlt []float32
	TanLat []float32
	TanLon []float32

	NMCPres    []float32
	NMCTemp    []float32
	NMCDens    []float32
	NMCDensErr []int16

	TropHeight float32
	Wavelength []float32

	O3  []float32
	NO2 []float32
	H2O []float32

	Ext386     []float32
	Ext452     []float32
	Ext525     []float32
	Ext1020    []float32
	Density    []float32
	SurfDen    []float32
	Radius     []float32
	DensMidAtm []float32

	O3Err         []int16
	NO2Err        []int16
	H2OErr        []int16
	Ext386Err     []int16
	Ext452Err     []int16
	Ext525Err     []int16
	Ext1020Err    []int16
	DensityErr    []int16
	SurfDenErr    []int16
	RadiusErr     []int16
	DensMidAtmErr []int16

	// Packed informational bit flags, one per altitude level.  See
	// SpeciesFlagDefs for the bit assignments.
	InfVec []uint16
}

// decodeProfileRecord decodes one spec-file record from the start of
// the buffer.
func decodeProfileRecord(buf []byte, order binary.ByteOrder) (*ProfileRecord, error) {
	r := newTableReader(buf, SageIISpecFormat(), order)

	rec := new(ProfileRecord)
	var err error

	readf := func(dst *[]float32, name string) {
		if err == nil {
			*dst, err = r.float32s(name)
		}
	}
	readi := func(dst *[]int16, name string) {
		if err == nil {
			*dst, err = r.int16s(name)
		}
	}

	readf(&rec.TanAlt, "Tan_Alt")
	readf(&rec.TanLat, "Tan_Lat")
	readf(&rec.TanLon, "Tan_Lon")

	readf(&rec.NMCPres, "NMC_Pres")
	readf(&rec.NMCTemp, "NMC_Temp")
	readf(&rec.NMCDens, "NMC_Dens")
	readi(&rec.NMCDensErr, "NMC_Dens_Err")

	if err == nil {
		rec.TropHeight, err = r.float32("Trop_Height")
	}
	readf(&rec.Wavelength, "Wavelength")

	readf(&rec.O3, "O3")
	readf(&rec.NO2, "NO2")
	readf(&rec.H2O, "H2O")

	readf(&rec.Ext386, "Ext386")
	readf(&rec.Ext452, "Ext452")
	readf(&rec.Ext525, "Ext525")
	readf(&rec.Ext1020, "Ext1020")
	readf(&rec.Density, "Density")
	readf(&rec.SurfDen, "SurfDen")
	readf(&rec.Radius, "Radius")
	readf(&rec.DensMidAtm, "Dens_Mid_Atm")

	readi(&rec.O3Err, "O3_Err")
	readi(&rec.NO2Err, "NO2_Err")
	readi(&rec.H2OErr, "H2O_Err")
	readi(&rec.Ext386Err, "Ext386_Err")
	readi(&rec.Ext452Err, "Ext452_Err")
	readi(&rec.Ext525Err, "Ext525_Err")
	readi(&rec.Ext1020Err, "Ext1020_Err")
	readi(&rec.DensityErr, "Density_Err")
	readi(&rec.SurfDenErr, "SurfDen_Err")
	readi(&rec.RadiusErr, "Radius_Err")
	readi(&rec.DensMidAtmErr, "Dens_Mid_Atm_Err")

	if err == nil {
		rec.InfVec, err = r.uint16s("InfVec")
	}

	if err != nil {
		return nil, err
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return rec, nil
}
