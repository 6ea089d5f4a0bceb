package sagereader

import (
	"fmt"
	"time"
)

// Species names accepted by AssembleOptions.
var allSpecies = []string{"aerosol", "h2o", "no2", "ozone", "background"}

// AssembleOptions control how a Dataset is arranged into labeled
// arrays.  Assembly is presentation only: it never changes which
// events are present.
type AssembleOptions struct {
	// Species to include: any of "aerosol", "h2o", "no2", "ozone",
	// "background".  Nil selects all of them.
	Species []string

	// Use CF-1.7 style array names.
	CFNames bool

	// Mask aerosol extinction below cloud contamination.
	FilterAerosol bool

	// Mask ozone that fails the release-note quality criteria.
	FilterOzone bool

	// Report uncertainties in percent instead of percent * 100.
	NormalizePercentError bool
}

func (o AssembleOptions) species() []string {
	if o.Species == nil {
		return allSpecies
	}
	return o.Species
}

func (o AssembleOptions) has(name string) bool {
	for _, s := range o.species() {
		if s == name || (name == "ozone" && s == "o3") {
			return true
		}
	}
	return false
}

// AerosolWavelengths are the channels of the SAGE II aerosol
// extinction retrieval, in nm.
var AerosolWavelengths = []float64{386, 452, 525, 1020}

// A Labeled holds the arrays of a Dataset arranged with named
// dimensions, fill values masked, and metadata attached, plus the
// expanded quality flags and convenience masks.
type Labeled struct {
	// Coordinates.
	Time        []time.Time
	MJD         []float64
	AltGrid     []float64 // geometric altitude, km
	Wavelengths []float64 // aerosol channels, nm

	Arrays []*DataArray

	// CloudMask is true where aerosol data is cloud contaminated,
	// per event and altitude level (Cloud_Bit_1 and Cloud_Bit_2
	// both set at or above the level's altitude).
	CloudMask [][]bool

	// OzoneMask is true where ozone passes the v7.00 release-note
	// quality criteria.  Nil unless ozone was assembled.
	OzoneMask [][]bool

	IndexFlags   []Flag
	SpeciesFlags []LevelFlag
}

// Array returns the named array, or nil if it was not assembled.
func (lb *Labeled) Array(name string) *DataArray {
	for _, a := range lb.Arrays {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// cfAttrs maps array names to physical metadata.  Names not listed
// pass through unlabeled.
var cfAttrs = map[string]Attrs{
	"Lat":     {StandardName: "latitude", Units: "degrees_north"},
	"Lon":     {StandardName: "longitude", Units: "degrees_east"},
	"O3":      {StandardName: "number_concentration_of_ozone_molecules_in_air", Units: "cm-3"},
	"NO2":     {StandardName: "number_concentration_of_nitrogen_dioxide_molecules_in_air", Units: "cm-3"},
	"H2O":     {StandardName: "number_concentration_of_water_vapor_in_air", Units: "cm-3"},
	"Ext":     {StandardName: "volume_extinction_coefficient_in_air_due_to_ambient_aerosol_particles", Units: "km-1"},
	"O3_Err":  {StandardName: "number_concentration_of_ozone_molecules_in_air_error", Units: "percent"},
	"NO2_Err": {StandardName: "number_concentration_of_nitrogen_dioxide_molecules_in_air_error", Units: "percent"},
	"H2O_Err": {StandardName: "number_concentration_of_water_vapor_in_air_error", Units: "percent"},
	"Ext_Err": {StandardName: "volume_extinction_coefficient_in_air_due_to_ambient_aerosol_particles_error", Units: "percent"},
	"Duration": {Units: "seconds",
		Description: "duration of the sunrise/sunset event"},
	"Beta": {Units: "degrees",
		Description: "angle between the satellite orbit plane and the sun"},
	"Trop_Height": {Units: "km"},
	"Radius":      {Units: "microns"},
	"SurfDen":     {Units: "microns2 cm-3"},
}

// cfRenames maps array names to their CF-1.7 style equivalents.
var cfRenames = map[string]string{
	"Lat":         "latitude",
	"Lon":         "longitude",
	"Beta":        "beta_angle",
	"Ext":         "aerosol_extinction",
	"Ext_Err":     "aerosol_extinction_error",
	"O3":          "ozone",
	"O3_Err":      "ozone_error",
	"NO2":         "no2",
	"NO2_Err":     "no2_error",
	"SurfDen":     "surface_area_density",
	"SurfDen_Err": "surface_area_density_error",
	"Radius":      "effective_radius",
	"Radius_Err":  "effective_radius_error",
	"Density":     "air_density",
	"Density_Err": "air_density_error",
	"Type_Sat":    "satellite_sunset",
	"Type_Tan":    "local_sunset",
	"Trop_Height": "tropopause_altitude",
	"Duration":    "event_duration",
}

// Altitude level counts of the valid vertical domain per quantity.
const (
	ozoneLevels   = 140
	vaporLevels   = 100
	aerosolLevels = 80
)

// Assemble arranges a Dataset into labeled arrays.  Fill values are
// replaced by the missing mask, metadata is attached from a fixed
// lookup, and the packed quality flags are expanded.
func Assemble(ds *Dataset, opts AssembleOptions) (*Labeled, error) {
	for _, s := range opts.species() {
		ok := s == "o3"
		for _, known := range allSpecies {
			if s == known {
				ok = true
			}
		}
		if !ok {
			return nil, fmt.Errorf("sagereader: unknown species %q", s)
		}
	}

	n := ds.NumEvents()
	lb := &Labeled{
		Time:        ds.Time,
		MJD:         ds.MJD,
		Wavelengths: AerosolWavelengths,
	}
	lb.AltGrid = make([]float64, len(ds.AltGrid))
	for i, v := range ds.AltGrid {
		lb.AltGrid[i] = float64(v)
	}

	lb.IndexFlags = DecodeFlags(ds.InfVec, IndexFlagDefs)
	lb.SpeciesFlags = DecodeLevelFlags(ds.ProfileInfVec, SpeciesFlagDefs)
	lb.CloudMask = cloudMask(ds, lb.SpeciesFlags)

	fill := float64(ds.FillVal)

	add := func(a *DataArray) {
		a.maskWhere(func(v float64) bool { return v == fill })
		if at, ok := cfAttrs[a.Name]; ok {
			a.Attrs = at
		}
		lb.Arrays = append(lb.Arrays, a)
	}

	// Always returned, one value per event.
	addScalar := func(name string, vals []float64) {
		a, err := NewDataArray(name, []string{"time"}, []int{n}, vals, nil)
		if err != nil {
			panic(err)
		}
		add(a)
	}
	addScalar("Event_Num", int32sToFloat(ds.EventNum))
	addScalar("Lat", float32sToFloat(ds.Lat))
	addScalar("Lon", float32sToFloat(ds.Lon))
	addScalar("Beta", float32sToFloat(ds.Beta))
	addScalar("Duration", float32sToFloat(ds.Duration))
	addScalar("Type_Sat", int16sToFloat(ds.TypeSat))
	addScalar("Type_Tan", int16sToFloat(ds.TypeTan))
	addScalar("Trop_Height", float32sToFloat(ds.TropHeight))

	addProfile := func(name string, rows [][]float32, nlev int) {
		a, err := NewDataArray(name, []string{"time", "Alt_Grid"}, []int{n, nlev}, flatten(rows, nlev), nil)
		if err != nil {
			panic(err)
		}
		add(a)
	}
	addErr := func(name string, rows [][]int16, nlev int) {
		vals := flattenErr(rows, nlev, opts.NormalizePercentError, fill)
		a, err := NewDataArray(name, []string{"time", "Alt_Grid"}, []int{n, nlev}, vals, nil)
		if err != nil {
			panic(err)
		}
		add(a)
	}

	// Aerosol extinction is needed to build the ozone quality mask
	// even when aerosol itself was not requested.
	wantAerosol := opts.has("aerosol") || opts.FilterOzone

	if wantAerosol {
		ext, err := NewDataArray("Ext",
			[]string{"wavelength", "time", "Alt_Grid"},
			[]int{len(AerosolWavelengths), n, aerosolLevels},
			stack(aerosolLevels, ds.Ext386, ds.Ext452, ds.Ext525, ds.Ext1020), nil)
		if err != nil {
			panic(err)
		}
		add(ext)

		extErr, err := NewDataArray("Ext_Err",
			[]string{"wavelength", "time", "Alt_Grid"},
			[]int{len(AerosolWavelengths), n, aerosolLevels},
			stackErr(aerosolLevels, opts.NormalizePercentError, fill,
				ds.Ext386Err, ds.Ext452Err, ds.Ext525Err, ds.Ext1020Err), nil)
		if err != nil {
			panic(err)
		}
		add(extErr)

		addProfile("SurfDen", ds.SurfDen, aerosolLevels)
		addProfile("Radius", ds.Radius, aerosolLevels)
		addErr("SurfDen_Err", ds.SurfDenErr, aerosolLevels)
		addErr("Radius_Err", ds.RadiusErr, aerosolLevels)
	}

	if opts.has("no2") {
		addProfile("NO2", ds.NO2, vaporLevels)
		addErr("NO2_Err", ds.NO2Err, vaporLevels)
	}
	if opts.has("h2o") {
		addProfile("H2O", ds.H2O, vaporLevels)
		addErr("H2O_Err", ds.H2OErr, vaporLevels)
	}
	if opts.has("ozone") {
		addProfile("O3", ds.O3, ozoneLevels)
		addErr("O3_Err", ds.O3Err, ozoneLevels)
	}
	if opts.has("background") {
		addProfile("NMC_Pres", ds.NMCPres, ozoneLevels)
		addProfile("NMC_Temp", ds.NMCTemp, ozoneLevels)
		addProfile("NMC_Dens", ds.NMCDens, ozoneLevels)
		addErr("NMC_Dens_Err", ds.NMCDensErr, ozoneLevels)
		addProfile("Density", ds.Density, ozoneLevels)
		addErr("Density_Err", ds.DensityErr, ozoneLevels)
	}

	if opts.has("ozone") {
		lb.OzoneMask = ozoneMask(ds)
	}

	if opts.FilterAerosol {
		lb.applyCloudMask()
	}
	if opts.FilterOzone {
		lb.applyOzoneMask()
	}

	if opts.CFNames {
		for _, a := range lb.Arrays {
			if cf, ok := cfRenames[a.Name]; ok {
				a.Name = cf
			}
		}
	}

	return lb, nil
}

// cloudMask derives per-event, per-level cloud contamination from the
// two cloud bits: a level is contaminated at and below the highest
// altitude where both bits are set.
func cloudMask(ds *Dataset, flags []LevelFlag) [][]bool {
	var b1, b2 [][]bool
	for _, f := range flags {
		switch f.Name {
		case "Cloud_Bit_1":
			b1 = f.Bool
		case "Cloud_Bit_2":
			b2 = f.Bool
		}
	}

	mask := make([][]bool, ds.NumEvents())
	for i := range mask {
		minAlt := 0.0
		for l := range b1[i] {
			if b1[i][l] && b2[i][l] && float64(ds.AltGrid[l]) > minAlt {
				minAlt = float64(ds.AltGrid[l])
			}
		}
		row := make([]bool, len(b1[i]))
		for l := range row {
			row[l] = float64(ds.AltGrid[l]) <= minAlt
		}
		mask[i] = row
	}
	return mask
}

// ozoneMask applies the v7.00 release-note ozone quality recipe.  The
// aerosol criterion uses the 1020 nm channel, the strictest choice,
// since the release notes do not name one.
func ozoneMask(ds *Dataset) [][]bool {
	mask := make([][]bool, ds.NumEvents())
	for i := range mask {
		good := make([]bool, ozoneLevels)
		for l := range good {
			good[l] = true
		}

		// Data points with an uncertainty of 300% or greater, and
		// points between 30 and 50 km with uncertainty over 10%.
		for l := 0; l < ozoneLevels; l++ {
			e := float64(ds.O3Err[i][l])
			alt := float64(ds.AltGrid[l])
			if e >= 30000 {
				good[l] = false
			}
			if e > 1000 && alt > 30 && alt < 50 {
				good[l] = false
			}
			if e > 20000 && alt < 35 {
				good[l] = false
			}
		}

		// Points at and below an aerosol extinction over 0.006 /km.
		minAlt := 0.0
		for l := 0; l < aerosolLevels; l++ {
			if float64(ds.Ext1020[i][l]) > 0.006 && float64(ds.AltGrid[l]) > minAlt {
				minAlt = float64(ds.AltGrid[l])
			}
		}
		// Points at and below a 525 nm extinction over 0.001 /km
		// with a 525/1020 ratio under 1.4.
		for l := 0; l < aerosolLevels; l++ {
			e525 := float64(ds.Ext525[i][l])
			e1020 := float64(ds.Ext1020[i][l])
			if e525 > 0.001 && e1020 != 0 && e525/e1020 < 1.4 && float64(ds.AltGrid[l]) > minAlt {
				minAlt = float64(ds.AltGrid[l])
			}
		}
		for l := 0; l < ozoneLevels; l++ {
			if float64(ds.AltGrid[l]) <= minAlt {
				good[l] = false
			}
		}

		mask[i] = good
	}
	return mask
}

func (lb *Labeled) applyCloudMask() {
	ext := lb.Array("Ext")
	if ext == nil {
		return
	}
	nw, n, nlev := ext.Shape[0], ext.Shape[1], ext.Shape[2]
	for w := 0; w < nw; w++ {
		for i := 0; i < n; i++ {
			for l := 0; l < nlev; l++ {
				if lb.CloudMask[i][l] {
					p := (w*n+i)*nlev + l
					if ext.Missing == nil {
						ext.Missing = make([]bool, len(ext.Values))
					}
					ext.Missing[p] = true
				}
			}
		}
	}
}

func (lb *Labeled) applyOzoneMask() {
	o3 := lb.Array("O3")
	if o3 == nil || lb.OzoneMask == nil {
		return
	}
	n, nlev := o3.Shape[0], o3.Shape[1]
	for i := 0; i < n; i++ {
		for l := 0; l < nlev; l++ {
			if !lb.OzoneMask[i][l] {
				if o3.Missing == nil {
					o3.Missing = make([]bool, len(o3.Values))
				}
				o3.Missing[i*nlev+l] = true
			}
		}
	}
}

func float32sToFloat(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func int32sToFloat(x []int32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

func int16sToFloat(x []int16) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}

// flatten lays out [event][level] rows row-major, truncated to nlev
// levels.
func flatten(rows [][]float32, nlev int) []float64 {
	out := make([]float64, 0, len(rows)*nlev)
	for _, r := range rows {
		for l := 0; l < nlev; l++ {
			out = append(out, float64(r[l]))
		}
	}
	return out
}

// flattenErr lays out an uncertainty field, optionally converting
// percent*100 to percent.  Fill values are left untouched so the fill
// mask still matches them.
func flattenErr(rows [][]int16, nlev int, normalize bool, fill float64) []float64 {
	out := make([]float64, 0, len(rows)*nlev)
	for _, r := range rows {
		for l := 0; l < nlev; l++ {
			v := float64(r[l])
			if normalize && v != fill {
				v /= 100
			}
			out = append(out, v)
		}
	}
	return out
}

// stack lays out several [event][level] fields along a new leading
// dimension.
func stack(nlev int, fields ...[][]float32) []float64 {
	var out []float64
	for _, f := range fields {
		out = append(out, flatten(f, nlev)...)
	}
	return out
}

func stackErr(nlev int, normalize bool, fill float64, fields ...[][]int16) []float64 {
	var out []float64
	for _, f := range fields {
		out = append(out, flattenErr(f, nlev, normalize, fill)...)
	}
	return out
}
