package sagereader

import "testing"

func TestNewDataArray(t *testing.T) {

	a, err := NewDataArray("x", []string{"time", "Alt_Grid"}, []int{2, 3},
		[]float64{1, 2, 3, 4, 5, 6}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Len() != 6 {
		t.Errorf("Len = %d", a.Len())
	}

	if v, ok := a.At(1, 2); v != 6 || !ok {
		t.Errorf("At(1,2) = %v, %v", v, ok)
	}
	if v, ok := a.At(0, 0); v != 1 || !ok {
		t.Errorf("At(0,0) = %v, %v", v, ok)
	}
}

func TestNewDataArrayBadShape(t *testing.T) {

	if _, err := NewDataArray("x", []string{"time"}, []int{2, 3}, nil, nil); err == nil {
		t.Error("dim/shape mismatch accepted")
	}
	if _, err := NewDataArray("x", []string{"time"}, []int{3}, []float64{1, 2}, nil); err == nil {
		t.Error("short values accepted")
	}
	if _, err := NewDataArray("x", []string{"time"}, []int{2}, []float64{1, 2}, []bool{true}); err == nil {
		t.Error("short mask accepted")
	}
	if _, err := NewDataArray("x", []string{"time"}, []int{-1}, nil, nil); err == nil {
		t.Error("negative dimension accepted")
	}
}

func TestMaskWhere(t *testing.T) {

	a, err := NewDataArray("x", []string{"time"}, []int{4}, []float64{1, -999, 3, -999}, nil)
	if err != nil {
		t.Fatal(err)
	}

	a.maskWhere(func(v float64) bool { return v == -999 })
	if a.CountMissing() != 2 {
		t.Errorf("CountMissing = %d", a.CountMissing())
	}
	if _, ok := a.At(1); ok {
		t.Error("masked value reported present")
	}
	if _, ok := a.At(2); !ok {
		t.Error("unmasked value reported missing")
	}
}

func TestAllClose(t *testing.T) {

	a, _ := NewDataArray("a", []string{"time"}, []int{3}, []float64{1, 2, 3}, nil)
	b, _ := NewDataArray("b", []string{"time"}, []int{3}, []float64{1, 2.005, 3}, nil)

	if ok, _ := a.AllClose(b, 0.01); !ok {
		t.Error("arrays within tolerance reported different")
	}
	if ok, j := a.AllClose(b, 0.001); ok || j != 1 {
		t.Errorf("AllClose = %v, %d, want false, 1", ok, j)
	}

	c, _ := NewDataArray("c", []string{"time"}, []int{2}, []float64{1, 2}, nil)
	if ok, j := a.AllClose(c, 0.01); ok || j != -1 {
		t.Errorf("shape mismatch: AllClose = %v, %d", ok, j)
	}

	// A mask difference is a difference even when the values agree.
	d, _ := NewDataArray("d", []string{"time"}, []int{3}, []float64{1, 2, 3}, []bool{false, true, false})
	if ok, j := a.AllEqual(d); ok || j != 1 {
		t.Errorf("mask mismatch: AllEqual = %v, %d", ok, j)
	}
}
