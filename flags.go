package sagereader

import "fmt"

// A FlagDef names one entry of a packed integer flag field: either a
// single bit, or a contiguous group of bits holding a small integer
// (optionally with a name per value).  A def with a non-empty Bits
// slice is a group; otherwise Bit is a single-bit flag.
type FlagDef struct {
	Name string

	// Bit position of a single-bit flag.
	Bit int

	// Contiguous, ascending bit positions of a multi-bit group.
	Bits []int

	// Optional value names for a group, indexed by the extracted
	// value.  Must have 2^len(Bits) entries when present.
	Categories []string
}

// IsGroup reports whether the def describes a multi-bit group.
func (d FlagDef) IsGroup() bool {
	return len(d.Bits) > 0
}

// mask returns the bit mask covering the def.
func (d FlagDef) mask() uint32 {
	if !d.IsGroup() {
		return 1 << uint(d.Bit)
	}
	var m uint32
	for _, b := range d.Bits {
		m |= 1 << uint(b)
	}
	return m
}

// validateFlagDefs checks a flag table for construction defects:
// duplicate names, out-of-range bits, non-contiguous groups, and
// category lists that do not cover the group's value range.
func validateFlagDefs(defs []FlagDef) error {
	seen := make(map[string]bool)
	for _, d := range defs {
		if d.Name == "" {
			return fmt.Errorf("sagereader: unnamed flag def")
		}
		if seen[d.Name] {
			return fmt.Errorf("sagereader: duplicate flag %s", d.Name)
		}
		seen[d.Name] = true

		if !d.IsGroup() {
			if d.Bit < 0 || d.Bit > 31 {
				return fmt.Errorf("sagereader: flag %s: bit %d out of range", d.Name, d.Bit)
			}
			if d.Categories != nil {
				return fmt.Errorf("sagereader: flag %s: categories on a single bit", d.Name)
			}
			continue
		}
		for i, b := range d.Bits {
			if b < 0 || b > 31 {
				return fmt.Errorf("sagereader: flag %s: bit %d out of range", d.Name, b)
			}
			if i > 0 && b != d.Bits[i-1]+1 {
				return fmt.Errorf("sagereader: flag %s: group bits not contiguous", d.Name)
			}
		}
		if d.Categories != nil && len(d.Categories) != 1<<uint(len(d.Bits)) {
			return fmt.Errorf("sagereader: flag %s: %d categories for %d bits",
				d.Name, len(d.Categories), len(d.Bits))
		}
	}
	return nil
}

// IndexFlagDefs is the bit assignment of the per-event InfVec field
// in SAGE II index files.
var IndexFlagDefs = []FlagDef{
	{Name: "pmc_present", Bit: 0},
	{Name: "h2o_zero_found", Bit: 1},
	{Name: "h2o_slow_convergence", Bit: 2},
	{Name: "h2o_ega_failure", Bit: 3},
	{Name: "default_nmc_temp_errors", Bit: 4},
	{Name: "ch2_aero_model_A", Bit: 5},
	{Name: "ch2_aero_model_B", Bit: 6},
	{Name: "ch2_new_wavelength", Bit: 7},
	{Name: "incomplete_nmc_data", Bit: 8},
	{Name: "mirror_model", Bit: 15},
	{Name: "twomey_non_conv_rayleigh", Bit: 19},
	{Name: "twomey_non_conv_386_Aero", Bit: 20},
	{Name: "twomey_non_conv_452_Aero", Bit: 21},
	{Name: "twomey_non_conv_525_Aero", Bit: 22},
	{Name: "twomey_non_conv_1020_Aero", Bit: 23},
	{Name: "twomey_non_conv_NO2", Bit: 24},
	{Name: "twomey_non_conv_ozone", Bit: 25},
	{Name: "no_shock_correction", Bit: 30},
}

// SpeciesFlagDefs is the bit assignment of the per-level InfVec field
// in SAGE II spec files (ProfileInfVec in a Dataset).
var SpeciesFlagDefs = []FlagDef{
	{Name: "separation_method", Bits: []int{0, 1, 2}, Categories: []string{
		"no_aerosol_method",
		"trans_no_aero_to_five_chan",
		"standard_method",
		"trans_five_chan_to_low",
		"four_chan_method",
		"trans_four_chan_to_three_chan",
		"three_chan_method",
		"extension_method",
	}},
	{Name: "one_chan_aerosol_corr", Bit: 3},
	{Name: "no_935_aerosol_corr", Bit: 4},
	{Name: "Large_1020_OD", Bit: 5},
	{Name: "NO2_Extrap", Bit: 6},
	{Name: "water_vapor_ratio", Bits: []int{7, 8, 9, 10}},
	{Name: "Cloud_Bit_1", Bit: 11},
	{Name: "Cloud_Bit_2", Bit: 12},
	{Name: "No_H2O_Corr", Bit: 13},
	{Name: "In_Troposphere", Bit: 14},
}

// A Flag is one decoded entry of a packed flag field, indexed the
// same as the source array.  Single-bit flags fill Bool; groups fill
// Value (and carry Categories through from the def when present).
type Flag struct {
	Name       string
	Bool       []bool
	Value      []uint8
	Categories []string
}

// Category returns the name of the value at index i, or its decimal
// form when the flag has no category map.
func (f Flag) Category(i int) string {
	v := f.Value[i]
	if int(v) < len(f.Categories) {
		return f.Categories[v]
	}
	return fmt.Sprintf("%d", v)
}

// DecodeFlags expands a packed integer array into one Flag per def.
// The expansion is pure: defs drive everything and vals is not
// modified.
func DecodeFlags(vals []uint32, defs []FlagDef) []Flag {
	out := make([]Flag, len(defs))
	for k, d := range defs {
		f := Flag{Name: d.Name, Categories: d.Categories}
		if d.IsGroup() {
			m := d.mask()
			low := uint(d.Bits[0])
			f.Value = make([]uint8, len(vals))
			for i, v := range vals {
				f.Value[i] = uint8((v & m) >> low)
			}
		} else {
			m := d.mask()
			f.Bool = make([]bool, len(vals))
			for i, v := range vals {
				f.Bool[i] = v&m != 0
			}
		}
		out[k] = f
	}
	return out
}

// A LevelFlag is a decoded flag over a two-dimensional
// [event][level] source field.
type LevelFlag struct {
	Name       string
	Bool       [][]bool
	Value      [][]uint8
	Categories []string
}

// DecodeLevelFlags expands a per-event, per-level packed flag field,
// preserving the [event][level] indexing of the source.
func DecodeLevelFlags(vals [][]uint16, defs []FlagDef) []LevelFlag {
	out := make([]LevelFlag, len(defs))
	for k, d := range defs {
		out[k] = LevelFlag{Name: d.Name, Categories: d.Categories}
		if d.IsGroup() {
			out[k].Value = make([][]uint8, len(vals))
		} else {
			out[k].Bool = make([][]bool, len(vals))
		}
	}

	row := make([]uint32, 0)
	for i, levels := range vals {
		row = row[:0]
		for _, v := range levels {
			row = append(row, uint32(v))
		}
		for k, f := range DecodeFlags(row, defs) {
			if f.Value != nil {
				out[k].Value[i] = f.Value
			} else {
				out[k].Bool[i] = f.Bool
			}
		}
	}
	return out
}
