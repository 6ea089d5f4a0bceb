package sagereader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	xencoding "golang.org/x/text/encoding"
)

// A LayoutError reports a buffer that is too short for the format
// table being decoded.  A layout mismatch corrupts every field after
// the failure point, so decoding aborts rather than truncating.
type LayoutError struct {
	// Name of the field that could not be read.
	Field string

	// Byte offset at which the field starts.
	Offset int

	// Bytes required by the field and bytes remaining.
	Need, Have int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("sagereader: field %s at offset %d needs %d bytes, %d remain",
		e.Field, e.Offset, e.Need, e.Have)
}

// A tableReader walks a byte buffer according to a format table.
// Every accessor names the field it expects, and the reader verifies
// the name, type, and count against the next table entry, so a decode
// routine cannot silently drift out of step with its layout.  The
// reader never modifies the buffer.
type tableReader struct {
	table FormatTable
	buf   []byte
	order binary.ByteOrder

	// Optional decoder for Char fields.  Nil leaves the raw bytes
	// uninterpreted (the files are plain ASCII).
	text *xencoding.Decoder

	pos int // next table entry
	off int // current byte offset
}

func newTableReader(buf []byte, table FormatTable, order binary.ByteOrder) *tableReader {
	return &tableReader{table: table, buf: buf, order: order}
}

// next validates the upcoming field and returns its raw bytes.  A
// name or type mismatch is a defect in the decode routine itself, not
// in the data, and panics.
func (r *tableReader) next(name string, ft FieldType) ([]byte, Field, error) {
	if r.pos >= len(r.table) {
		panic(fmt.Sprintf("sagereader: decode of field %s past end of table", name))
	}
	f := r.table[r.pos]
	if f.Name != name || f.Type != ft {
		panic(fmt.Sprintf("sagereader: decode order mismatch: asked for %s (%s), table has %s (%s)",
			name, ft, f.Name, f.Type))
	}
	n := f.Bytes()
	if r.off+n > len(r.buf) {
		return nil, f, &LayoutError{Field: name, Offset: r.off, Need: n, Have: len(r.buf) - r.off}
	}
	b := r.buf[r.off : r.off+n]
	r.pos++
	r.off += n
	return b, f, nil
}

// finish verifies that every field in the table was consumed.
func (r *tableReader) finish() error {
	if r.pos != len(r.table) {
		return fmt.Errorf("sagereader: decode stopped at field %s: %d of %d fields read",
			r.table[r.pos].Name, r.pos, len(r.table))
	}
	return nil
}

// bytesRead returns the number of bytes consumed so far.
func (r *tableReader) bytesRead() int {
	return r.off
}

func (r *tableReader) uint32(name string) (uint32, error) {
	b, _, err := r.next(name, Uint32)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

func (r *tableReader) int32(name string) (int32, error) {
	b, _, err := r.next(name, Int32)
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(b)), nil
}

func (r *tableReader) float32(name string) (float32, error) {
	b, _, err := r.next(name, Float32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(r.order.Uint32(b)), nil
}

func (r *tableReader) float32s(name string) ([]float32, error) {
	b, f, err := r.next(name, Float32)
	if err != nil {
		return nil, err
	}
	x := make([]float32, f.Count)
	for i := range x {
		x[i] = math.Float32frombits(r.order.Uint32(b[4*i:]))
	}
	return x, nil
}

func (r *tableReader) int32s(name string) ([]int32, error) {
	b, f, err := r.next(name, Int32)
	if err != nil {
		return nil, err
	}
	x := make([]int32, f.Count)
	for i := range x {
		x[i] = int32(r.order.Uint32(b[4*i:]))
	}
	return x, nil
}

func (r *tableReader) uint32s(name string) ([]uint32, error) {
	b, f, err := r.next(name, Uint32)
	if err != nil {
		return nil, err
	}
	x := make([]uint32, f.Count)
	for i := range x {
		x[i] = r.order.Uint32(b[4*i:])
	}
	return x, nil
}

func (r *tableReader) int16s(name string) ([]int16, error) {
	b, f, err := r.next(name, Int16)
	if err != nil {
		return nil, err
	}
	x := make([]int16, f.Count)
	for i := range x {
		x[i] = int16(r.order.Uint16(b[2*i:]))
	}
	return x, nil
}

func (r *tableReader) uint16s(name string) ([]uint16, error) {
	b, f, err := r.next(name, Uint16)
	if err != nil {
		return nil, err
	}
	x := make([]uint16, f.Count)
	for i := range x {
		x[i] = r.order.Uint16(b[2*i:])
	}
	return x, nil
}

// chars reads a fixed-length text field, trimming NUL and space
// padding.
func (r *tableReader) chars(name string) (string, error) {
	b, _, err := r.next(name, Char)
	if err != nil {
		return "", err
	}
	b = bytes.TrimRight(b, "\u0000\u0020")
	if r.text != nil {
		d, err := r.text.Bytes(b)
		if err != nil {
			return "", fmt.Errorf("sagereader: field %s: %w", name, err)
		}
		return string(d), nil
	}
	return string(b), nil
}
