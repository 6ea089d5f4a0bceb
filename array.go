package sagereader

import (
	"fmt"
	"math"
)

// Attrs is descriptive metadata attached to a DataArray.
type Attrs struct {
	StandardName string
	Units        string
	Description  string
}

// A DataArray is a fixed-shape multi-dimensional sequence of values
// with named dimensions, an optional mask for missing values, and
// physical-quantity metadata.  Values are stored row-major.
type DataArray struct {
	// A name describing what is in this array.
	Name string

	// Dimension names, outermost first, e.g. {"time", "Alt_Grid"}.
	Dims []string

	// The length of each dimension.
	Shape []int

	// The data, len = product of Shape.
	Values []float64

	// Indicators that values are missing.  If nil, there are no
	// missing values.
	Missing []bool

	Attrs Attrs
}

// NewDataArray returns a new DataArray with the given name, named
// dimensions, and contents.  The values and missing slices are not
// copied.
func NewDataArray(name string, dims []string, shape []int, values []float64, missing []bool) (*DataArray, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("sagereader: array %s: %d dims for %d shape entries", name, len(dims), len(shape))
	}
	n := 1
	for _, s := range shape {
		if s < 0 {
			return nil, fmt.Errorf("sagereader: array %s: negative dimension", name)
		}
		n *= s
	}
	if n != len(values) {
		return nil, fmt.Errorf("sagereader: array %s: shape wants %d values, have %d", name, n, len(values))
	}
	if missing != nil && len(missing) != n {
		return nil, fmt.Errorf("sagereader: array %s: missing mask length %d != %d", name, len(missing), n)
	}
	return &DataArray{Name: name, Dims: dims, Shape: shape, Values: values, Missing: missing}, nil
}

// Len returns the total number of values.
func (a *DataArray) Len() int {
	return len(a.Values)
}

// flatIndex converts a multi-dimensional index to a position in
// Values.
func (a *DataArray) flatIndex(ix ...int) int {
	if len(ix) != len(a.Shape) {
		panic(fmt.Sprintf("sagereader: array %s: %d indices for %d dims", a.Name, len(ix), len(a.Shape)))
	}
	p := 0
	for d, i := range ix {
		if i < 0 || i >= a.Shape[d] {
			panic(fmt.Sprintf("sagereader: array %s: index %d out of range on %s", a.Name, i, a.Dims[d]))
		}
		p = p*a.Shape[d] + i
	}
	return p
}

// At returns the value at the given index and whether it is present
// (not missing).
func (a *DataArray) At(ix ...int) (float64, bool) {
	p := a.flatIndex(ix...)
	if a.Missing != nil && a.Missing[p] {
		return a.Values[p], false
	}
	return a.Values[p], true
}

// CountMissing returns the number of missing values in the array.
func (a *DataArray) CountMissing() int {
	m := 0
	for _, b := range a.Missing {
		if b {
			m++
		}
	}
	return m
}

// maskWhere marks as missing every value for which fn returns true.
func (a *DataArray) maskWhere(fn func(v float64) bool) {
	for i, v := range a.Values {
		if fn(v) {
			if a.Missing == nil {
				a.Missing = make([]bool, len(a.Values))
			}
			a.Missing[i] = true
		}
	}
}

// AllClose returns true, 0 if the array is within tol of the other
// array.  If the arrays have different shapes, AllClose returns
// false, -1.  Otherwise it returns false, j, where j is the first
// flat position at which the arrays differ in value or mask.
func (a *DataArray) AllClose(other *DataArray, tol float64) (bool, int) {
	if len(a.Shape) != len(other.Shape) {
		return false, -1
	}
	for d := range a.Shape {
		if a.Shape[d] != other.Shape[d] {
			return false, -1
		}
	}

	miss := func(m []bool, j int) bool {
		return m != nil && m[j]
	}

	for j := range a.Values {
		m1 := miss(a.Missing, j)
		m2 := miss(other.Missing, j)
		if m1 != m2 {
			return false, j
		}
		if !m1 && math.Abs(a.Values[j]-other.Values[j]) > tol {
			return false, j
		}
	}
	return true, 0
}

// AllEqual is equivalent to AllClose with tol=0.
func (a *DataArray) AllEqual(other *DataArray) (bool, int) {
	return a.AllClose(other, 0.0)
}
