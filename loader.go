package sagereader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
)

// ErrMonthNotFound reports that the index or spec file for a month is
// absent from the data directory.  Missing months are legitimately
// sparse data, not a fault: Load skips them.
var ErrMonthNotFound = errors.New("sagereader: no data files for month")

// A Loader reads SAGE II v7.00 monthly file pairs from a data
// directory.  The zero Version defaults to "7.00" and the zero Log
// discards all output.  A Loader holds no mutable state; it is safe
// for use from multiple goroutines.
type Loader struct {
	// Directory holding the SAGE_II_INDEX_* and SAGE_II_SPEC_* files.
	DataDir string

	// File version suffix, e.g. "7.00".
	Version string

	// Progress and diagnostics.
	Log zerolog.Logger
}

// NewLoader returns a Loader for the given data directory with the
// default version suffix and a no-op logger.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		DataDir: dataDir,
		Version: "7.00",
		Log:     zerolog.Nop(),
	}
}

func (l *Loader) version() string {
	if l.Version == "" {
		return "7.00"
	}
	return l.Version
}

// IndexPath returns the expected index filename for a month, e.g.
// SAGE_II_INDEX_200401.7.00.
func (l *Loader) IndexPath(year, month int) string {
	return filepath.Join(l.DataDir, fmt.Sprintf("SAGE_II_INDEX_%d%02d.%s", year, month, l.version()))
}

// SpecPath returns the expected spec filename for a month, e.g.
// SAGE_II_SPEC_200401.7.00.
func (l *Loader) SpecPath(year, month int) string {
	return filepath.Join(l.DataDir, fmt.Sprintf("SAGE_II_SPEC_%d%02d.%s", year, month, l.version()))
}

// A Month is the decoded, aligned content of one index/spec file
// pair.  The index arrays are truncated to the declared profile count
// so they index one to one with Profiles, Time, and MJD.
type Month struct {
	Year  int
	Month int

	Index    *IndexRecord
	Profiles []*ProfileRecord

	// Derived per-event timestamps and modified Julian day counts.
	Time []time.Time
	MJD  []float64
}

// LoadMonth reads and decodes the file pair for one month.  A missing
// index or spec file returns ErrMonthNotFound.  A file shorter than
// its layout requires returns a *LayoutError; a misaligned decode
// corrupts every downstream field, so that is fatal for the month.
func (l *Loader) LoadMonth(year, month int) (*Month, error) {
	ibuf, err := os.ReadFile(l.IndexPath(year, month))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMonthNotFound
	} else if err != nil {
		return nil, err
	}

	sbuf, err := os.ReadFile(l.SpecPath(year, month))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMonthNotFound
	} else if err != nil {
		return nil, err
	}

	// SAGE II v7.00 products are little-endian.
	order := binary.ByteOrder(binary.LittleEndian)

	index, err := decodeIndexRecord(ibuf, order, charmap.ISO8859_1.NewDecoder())
	if err != nil {
		return nil, fmt.Errorf("index %d-%02d: %w", year, month, err)
	}

	nprof := int(index.NumProf)
	if nprof > SageIIMaxEvents {
		return nil, fmt.Errorf("index %d-%02d: declared profile count %d exceeds capacity %d",
			year, month, nprof, SageIIMaxEvents)
	}
	index.truncate(nprof)

	if len(sbuf) < nprof*SageIISpecRecordSize {
		return nil, fmt.Errorf("spec %d-%02d: %w", year, month, &LayoutError{
			Field:  "profile records",
			Offset: 0,
			Need:   nprof * SageIISpecRecordSize,
			Have:   len(sbuf),
		})
	}

	profiles := make([]*ProfileRecord, nprof)
	for p := 0; p < nprof; p++ {
		profiles[p], err = decodeProfileRecord(sbuf[p*SageIISpecRecordSize:], order)
		if err != nil {
			return nil, fmt.Errorf("spec %d-%02d profile %d: %w", year, month, p, err)
		}
	}

	times, mjd := index.eventTimes()

	l.Log.Debug().Int("year", year).Int("month", month).Int("profiles", nprof).
		Msg("decoded month file pair")

	return &Month{
		Year:     year,
		Month:    month,
		Index:    index,
		Profiles: profiles,
		Time:     times,
		MJD:      mjd,
	}, nil
}
