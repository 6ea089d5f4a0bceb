package sagereader

import "fmt"

// A FieldType identifies the element type of a field in a binary
// record layout.
type FieldType int

const (
	Int16 FieldType = iota
	Uint16
	Int32
	Uint32
	Float32
	// Char is a fixed-length byte field holding padded ASCII text.
	Char
)

// Size returns the width in bytes of one element of the type.
func (t FieldType) Size() int {
	switch t {
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Char:
		return 1
	default:
		panic(fmt.Sprintf("sagereader: unknown field type %d", t))
	}
}

func (t FieldType) String() string {
	switch t {
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	case Char:
		return "char"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// A Field describes one field of a fixed binary record layout: its
// name, element type, and number of elements.
type Field struct {
	Name  string
	Type  FieldType
	Count int
}

// Bytes returns the total byte length of the field.
func (f Field) Bytes() int {
	return f.Count * f.Type.Size()
}

// A FormatTable is an ordered list of fields exactly tiling one binary
// record.  The byte offset of each field is implied by the cumulative
// lengths of the fields before it.  Tables are specification
// constants; they are never derived from the data being read.
type FormatTable []Field

// TotalBytes returns the record length implied by the table.
func (t FormatTable) TotalBytes() int {
	n := 0
	for _, f := range t {
		n += f.Bytes()
	}
	return n
}

// Field positions and record sizes for the supported formats.  The
// sizes are compatibility contracts: a table whose TotalBytes
// disagrees with its constant is a construction defect.
const (
	// SageIIMaxEvents is the event capacity of a SAGE II monthly
	// index file.  Every per-event array in the index record is
	// declared at this length regardless of how many events the
	// month actually holds.
	SageIIMaxEvents = 930

	// SageIIIndexSize is the byte length of a SAGE II v7.00 index record.
	SageIIIndexSize = 79464

	// SageIISpecRecordSize is the byte stride of one profile record
	// in a SAGE II v7.00 spec file.
	SageIISpecRecordSize = 8548

	// SageIIIEventSize is the byte length of a SAGE III v04.00
	// solar event record.
	SageIIIEventSize = 44496
)

// SageIIIndexFormat returns the layout of the SAGE II v7.00 index
// record, as documented in sg2_indexinfo.pro from the v7.00 release.
// The InfVec field is 32 bits wide; the v6.20 readme says 16, but the
// files and the release IDL tooling use 32.
func SageIIIndexFormat() FormatTable {
	return FormatTable{
		{"num_prof", Uint32, 1},      // Number of profiles in these files
		{"Met_Rev_Date", Uint32, 1},  // LaRC Met Model Revision Date (YYYYMMDD)
		{"Driver_Rev", Char, 8},      // LaRC Driver Version
		{"Trans_Rev", Char, 8},       // LaRC Transmission Version
		{"Inv_Rev", Char, 8},         // LaRC Inversion Version
		{"Spec_Rev", Char, 8},        // LaRC Species Version
		{"Eph_File_Name", Char, 32},  // Ephemeris data file name
		{"Met_File_Name", Char, 32},  // Meteorological data file name
		{"Ref_File_Name", Char, 32},  // Refraction data file name
		{"Tran_File_Name", Char, 32}, // Transmission data file name
		{"Spec_File_Name", Char, 32}, // Species profile file name
		{"FillVal", Float32, 1},      // Fill value

		// Altitude grid and valid-range bounds
		{"Grid_Size", Float32, 1},    // Altitude grid spacing (km)
		{"Alt_Grid", Float32, 200},   // Geometric altitudes (0.5, 1.0, ..., 100.0 km)
		{"Alt_Mid_Atm", Float32, 70}, // Middle atmosphere geometric altitudes
		{"Range_Trans", Float32, 2},  // Transmission min & max altitudes
		{"Range_O3", Float32, 2},     // Ozone min & max altitudes
		{"Range_NO2", Float32, 2},    // NO2 min & max altitudes
		{"Range_H2O", Float32, 2},    // Water vapor min & max altitudes
		{"Range_Ext", Float32, 2},    // Aerosol extinction min & max altitudes
		{"Range_Dens", Float32, 2},   // Density min & max altitudes
		{"Spare", Float32, 2},

		// Per-event summary arrays, declared at maximum capacity
		{"YYYYMMDD", Int32, SageIIMaxEvents},  // Event date at 20 km subtangent point
		{"Event_Num", Int32, SageIIMaxEvents}, // Event number
		{"HHMMSS", Int32, SageIIMaxEvents},    // Event time at 20 km
		{"Day_Frac", Float32, SageIIMaxEvents},
		{"Lat", Float32, SageIIMaxEvents},      // Subtangent latitude at 20 km
		{"Lon", Float32, SageIIMaxEvents},      // Subtangent longitude at 20 km
		{"Beta", Float32, SageIIMaxEvents},     // Spacecraft beta angle (deg)
		{"Duration", Float32, SageIIMaxEvents}, // Duration of event (sec)
		{"Type_Sat", Int16, SageIIMaxEvents},   // Event type, instrument (0=SR, 1=SS)
		{"Type_Tan", Int16, SageIIMaxEvents},   // Event type, local (0=SR, 1=SS)
		{"Dropped", Int32, SageIIMaxEvents},    // Dropped event flag
		{"InfVec", Uint32, SageIIMaxEvents},    // Processing bit flags

		{"Eph_Cre_Date", Int32, SageIIMaxEvents},
		{"Eph_Cre_Time", Int32, SageIIMaxEvents},
		{"Met_Cre_Date", Int32, SageIIMaxEvents},
		{"Met_Cre_Time", Int32, SageIIMaxEvents},
		{"Ref_Cre_Date", Int32, SageIIMaxEvents},
		{"Ref_Cre_Time", Int32, SageIIMaxEvents},
		{"Tran_Cre_Date", Int32, SageIIMaxEvents},
		{"Tran_Cre_Time", Int32, SageIIMaxEvents},
		{"Spec_Cre_Date", Int32, SageIIMaxEvents},
		{"Spec_Cre_Time", Int32, SageIIMaxEvents},
	}
}

// SageIISpecFormat returns the layout of one SAGE II v7.00 profile
// record, as documented in sg2_specinfo.pro from the v7.00 release.
// A spec file holds num_prof of these back to back.
func SageIISpecFormat() FormatTable {
	return FormatTable{
		{"Tan_Alt", Float32, 8}, // Subtangent altitudes (km)
		{"Tan_Lat", Float32, 8}, // Subtangent latitudes at Tan_Alt (deg)
		{"Tan_Lon", Float32, 8}, // Subtangent longitudes at Tan_Alt (deg)

		{"NMC_Pres", Float32, 140},   // Gridded pressure profile (mb)
		{"NMC_Temp", Float32, 140},   // Gridded temperature profile (K)
		{"NMC_Dens", Float32, 140},   // Gridded density profile (cm^-3)
		{"NMC_Dens_Err", Int16, 140}, // Error in NMC_Dens (% * 1000)

		{"Trop_Height", Float32, 1}, // NMC tropopause height (km)
		{"Wavelength", Float32, 7},  // Wavelength of each channel (nm)

		{"O3", Float32, 140},  // O3 density profile 0-70 km (cm^-3)
		{"NO2", Float32, 100}, // NO2 density profile 0-50 km (cm^-3)
		{"H2O", Float32, 100}, // H2O volume mixing ratio 0-50 km (ppp)

		{"Ext386", Float32, 80},    // 386 nm extinction 0-40 km (1/km)
		{"Ext452", Float32, 80},    // 452 nm extinction 0-40 km (1/km)
		{"Ext525", Float32, 80},    // 525 nm extinction 0-40 km (1/km)
		{"Ext1020", Float32, 80},   // 1020 nm extinction 0-40 km (1/km)
		{"Density", Float32, 140},  // Calculated density 0-70 km (cm^-3)
		{"SurfDen", Float32, 80},   // Aerosol surface area density (um^2/cm^3)
		{"Radius", Float32, 80},    // Aerosol effective radius (um)
		{"Dens_Mid_Atm", Float32, 70},

		{"O3_Err", Int16, 140}, // Errors are reported as % * 100
		{"NO2_Err", Int16, 100},
		{"H2O_Err", Int16, 100},
		{"Ext386_Err", Int16, 80},
		{"Ext452_Err", Int16, 80},
		{"Ext525_Err", Int16, 80},
		{"Ext1020_Err", Int16, 80},
		{"Density_Err", Int16, 140},
		{"SurfDen_Err", Int16, 80},
		{"Radius_Err", Int16, 80},
		{"Dens_Mid_Atm_Err", Int16, 70},

		{"InfVec", Uint16, 140}, // Informational bit flags per level
	}
}

// SageIIIEventFormat returns the layout of a SAGE III v04.00 solar
// event record.  All SAGE III products are big-endian.
//
// The distributed format description carries two defects around the
// per-channel aerosol QA flags: the end offsets of the channel 7 and 8
// QA fields repeat channel 1's value, and the final QA field is listed
// one byte short.  The 90-value channel stride used by every
// neighboring field is authoritative, so all QA fields here are 90
// int32 values.
func SageIIIEventFormat() FormatTable {
	t := FormatTable{
		{"Event_Id", Int32, 1},
		{"Year_Day", Int32, 1}, // YYYYDDD tag
		{"Elapsed_Time", Int32, 1},
		{"Fill_Int", Int32, 1},
		{"Fill_Float", Float32, 1},
		{"Mission_Id", Int32, 1},

		{"Ver_Orbit", Float32, 1},
		{"Ver_L0", Float32, 1},
		{"Ver_Software", Float32, 1},
		{"Ver_Product", Float32, 1},
		{"Ver_Spectroscopy", Float32, 1},
		{"Ver_GRAM95", Float32, 1},
		{"Ver_Met", Float32, 1},

		{"Grid_Spacing", Float32, 1},
		{"Num_Alt", Int32, 1},          // 200 altitude-based array values
		{"Num_Aer_Channels", Int32, 1}, // 9 aerosol channels
		{"Num_Ground_Track", Int32, 1}, // 11 ground track values
		{"Num_Aer_Ext_Alt", Int32, 1},  // 90 aerosol extinction levels

		{"Type_Sat", Int32, 1},
		{"Type_Earth", Int32, 1},
		{"Beta_Angle", Float32, 1},
		{"Event_Status", Int32, 1}, // Event status bit flags

		{"Start_Date", Int32, 1},
		{"Start_Time", Int32, 1},
		{"Start_Lat", Float32, 1},
		{"Start_Lon", Float32, 1},
		{"Start_Alt", Float32, 1},

		{"End_Date", Int32, 1},
		{"End_Time", Int32, 1},
		{"End_Lat", Float32, 1},
		{"End_Lon", Float32, 1},
		{"End_Alt", Float32, 1},

		// Ground track values across the event
		{"Date", Int32, 11},
		{"Time", Int32, 11},
		{"Subtan_Lat", Float32, 11},
		{"Subtan_Lon", Float32, 11},
		{"Subtan_Alt", Float32, 11},

		{"Homogeneity", Int32, 200},
		{"Alt_Geometric", Float32, 200},
		{"Alt_Geopotential", Float32, 200},

		{"Temperature", Float32, 200},
		{"Temperature_Err", Float32, 200},
		{"Pressure", Float32, 200},
		{"Pressure_Err", Float32, 200},
		{"PT_Source_Flags", Int32, 200},

		{"Trop_Temperature", Float32, 1},
		{"Trop_Altitude", Float32, 1},
	}

	// The four ozone retrievals share one shape.
	for _, s := range []string{"O3_Composite", "O3_Meso", "O3_MLR", "O3_LSQ"} {
		t = append(t,
			Field{s, Float32, 200},
			Field{s + "_Err", Float32, 200},
			Field{s + "_SlantCol", Float32, 200},
			Field{s + "_SlantCol_Err", Float32, 200},
			Field{s + "_QA", Int32, 200},
		)
	}

	t = append(t,
		Field{"H2O", Float32, 200},
		Field{"H2O_Err", Float32, 200},
		Field{"H2O_QA", Int32, 200},

		Field{"NO2", Float32, 200},
		Field{"NO2_Err", Float32, 200},
		Field{"NO2_SlantCol", Float32, 200},
		Field{"NO2_SlantCol_Err", Float32, 200},
		Field{"NO2_QA", Int32, 200},

		Field{"Ret_Temperature", Float32, 200},
		Field{"Ret_Temperature_Err", Float32, 200},
		Field{"Ret_Pressure", Float32, 200},
		Field{"Ret_Pressure_Err", Float32, 200},
		Field{"Ret_PT_QA", Int32, 200},

		Field{"Aer_Wavelength", Float32, 9},
		Field{"Aer_Halfwidth", Float32, 9},
		Field{"Strat_OD", Float32, 9},
		Field{"Strat_OD_Err", Float32, 9},
		Field{"Strat_OD_QA", Int32, 9},
	)

	for ch := 1; ch <= 9; ch++ {
		t = append(t,
			Field{fmt.Sprintf("Ext_Ch%d", ch), Float32, 90},
			Field{fmt.Sprintf("Ext_Ch%d_Err", ch), Float32, 90},
			Field{fmt.Sprintf("Ext_Ch%d_QA", ch), Int32, 90},
		)
	}

	t = append(t,
		Field{"Aer_Spectral_Dep", Float32, 90},
		Field{"Ext1020_Ray_Ratio", Float32, 90},
		Field{"Ext1020_Ray_Ratio_Err", Float32, 90},
		Field{"Ext1020_Ray_Ratio_QA", Int32, 90},
	)

	return t
}
