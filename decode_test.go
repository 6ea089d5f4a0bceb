package sagereader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// encodeTable builds a binary record from a format table and a map of
// field values.  Fields absent from the map are zero filled; slices
// shorter than the declared count are zero padded.
func encodeTable(table FormatTable, order binary.ByteOrder, vals map[string]interface{}) []byte {

	var buf bytes.Buffer

	u32 := func(v uint32) {
		b := make([]byte, 4)
		order.PutUint32(b, v)
		buf.Write(b)
	}
	u16 := func(v uint16) {
		b := make([]byte, 2)
		order.PutUint16(b, v)
		buf.Write(b)
	}

	for _, f := range table {
		start := buf.Len()
		switch x := vals[f.Name].(type) {
		case nil:
		case uint32:
			u32(x)
		case int32:
			u32(uint32(x))
		case float32:
			u32(math.Float32bits(x))
		case string:
			buf.WriteString(x)
		case []float32:
			for _, e := range x {
				u32(math.Float32bits(e))
			}
		case []int32:
			for _, e := range x {
				u32(uint32(e))
			}
		case []uint32:
			for _, e := range x {
				u32(e)
			}
		case []int16:
			for _, e := range x {
				u16(uint16(e))
			}
		case []uint16:
			for _, e := range x {
				u16(e)
			}
		default:
			panic("unsupported value type for field " + f.Name)
		}
		if buf.Len() > start+f.Bytes() {
			panic("value overflows field " + f.Name)
		}
		for buf.Len() < start+f.Bytes() {
			buf.WriteByte(0)
		}
	}

	return buf.Bytes()
}

func testTable() FormatTable {
	return FormatTable{
		{"count", Uint32, 1},
		{"temps", Float32, 3},
		{"label", Char, 8},
		{"errs", Int16, 2},
		{"flags", Uint16, 2},
		{"offset", Int32, 1},
	}
}

func TestTableReaderRoundTrip(t *testing.T) {

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {

		buf := encodeTable(testTable(), order, map[string]interface{}{
			"count":  uint32(7),
			"temps":  []float32{1.5, -2.25, 8},
			"label":  "abc",
			"errs":   []int16{-100, 250},
			"flags":  []uint16{0x8001, 3},
			"offset": int32(-42),
		})
		if len(buf) != testTable().TotalBytes() {
			t.Fatalf("encoded %d bytes, table wants %d", len(buf), testTable().TotalBytes())
		}

		r := newTableReader(buf, testTable(), order)

		count, err := r.uint32("count")
		if err != nil {
			t.Fatal(err)
		}
		if count != 7 {
			t.Errorf("count = %d", count)
		}

		temps, err := r.float32s("temps")
		if err != nil {
			t.Fatal(err)
		}
		want := []float32{1.5, -2.25, 8}
		for i := range want {
			if temps[i] != want[i] {
				t.Errorf("temps[%d] = %v, want %v", i, temps[i], want[i])
			}
		}

		label, err := r.chars("label")
		if err != nil {
			t.Fatal(err)
		}
		if label != "abc" {
			t.Errorf("label = %q", label)
		}

		errs, err := r.int16s("errs")
		if err != nil {
			t.Fatal(err)
		}
		if errs[0] != -100 || errs[1] != 250 {
			t.Errorf("errs = %v", errs)
		}

		flags, err := r.uint16s("flags")
		if err != nil {
			t.Fatal(err)
		}
		if flags[0] != 0x8001 || flags[1] != 3 {
			t.Errorf("flags = %v", flags)
		}

		offset, err := r.int32("offset")
		if err != nil {
			t.Fatal(err)
		}
		if offset != -42 {
			t.Errorf("offset = %d", offset)
		}

		if err := r.finish(); err != nil {
			t.Error(err)
		}
		if r.bytesRead() != len(buf) {
			t.Errorf("bytesRead = %d, want %d", r.bytesRead(), len(buf))
		}
	}
}

func TestTableReaderShortBuffer(t *testing.T) {

	buf := encodeTable(testTable(), binary.LittleEndian, nil)
	r := newTableReader(buf[:6], testTable(), binary.LittleEndian)

	if _, err := r.uint32("count"); err != nil {
		t.Fatal(err)
	}

	_, err := r.float32s("temps")
	var le *LayoutError
	if !errors.As(err, &le) {
		t.Fatalf("want LayoutError, got %v", err)
	}
	if le.Field != "temps" || le.Offset != 4 || le.Need != 12 || le.Have != 2 {
		t.Errorf("LayoutError = %+v", le)
	}
}

func TestTableReaderOrderMismatch(t *testing.T) {

	buf := encodeTable(testTable(), binary.LittleEndian, nil)
	r := newTableReader(buf, testTable(), binary.LittleEndian)

	defer func() {
		if recover() == nil {
			t.Error("decoding the wrong field did not panic")
		}
	}()
	_, _ = r.float32s("temps") // table has count first
}

func TestTableReaderFinishEarly(t *testing.T) {

	buf := encodeTable(testTable(), binary.LittleEndian, nil)
	r := newTableReader(buf, testTable(), binary.LittleEndian)

	if _, err := r.uint32("count"); err != nil {
		t.Fatal(err)
	}
	if err := r.finish(); err == nil {
		t.Error("finish after a partial decode did not fail")
	}
}

func TestCharsTrimming(t *testing.T) {

	table := FormatTable{{"name", Char, 8}}
	buf := []byte{'x', 'y', ' ', ' ', 0, 0, 0, 0}

	r := newTableReader(buf, table, binary.LittleEndian)
	s, err := r.chars("name")
	if err != nil {
		t.Fatal(err)
	}
	if s != "xy" {
		t.Errorf("chars = %q", s)
	}
}
