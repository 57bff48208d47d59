// Package dates parses the heterogeneous date representations found in
// ledger cells: day-first text, ISO text, or raw spreadsheet serial
// numbers counted from one of two epoch bases.
package dates

import (
	"strconv"
	"strings"
	"time"
)

// Epoch identifies the base date a workbook counts day serials from.
type Epoch int

const (
	// Epoch1900 is the default workbook date system (base 1899-12-30).
	Epoch1900 Epoch = iota
	// Epoch1904 is the legacy Mac date system (base 1904-01-01).
	Epoch1904
)

// MigrationDelta is the day-count difference between the two epoch
// bases. Adding it to a 1904-system serial yields the 1900-system
// serial for the same calendar date.
const MigrationDelta = 1462

// SerialFloor is the sanity threshold below which a raw numeric cell
// is not treated as a date serial during epoch migration.
const SerialFloor = 30000

var (
	base1900 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	base1904 = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

	// Max sorts after every real ledger date; used for rows whose date
	// cell cannot be parsed.
	Max = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
	// Min sorts before every real ledger date.
	Min = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Base returns the calendar date that serial 0 maps to under e.
func (e Epoch) Base() time.Time {
	if e == Epoch1904 {
		return base1904
	}
	return base1900
}

var textLayouts = []string{"2.1.2006", "2/1/2006", "2006-01-02"}

// Parse interprets s as a calendar date: day.month.year, day/month/year
// or ISO text, falling back to a plain integer day serial under the
// given epoch. The second return is false when nothing matches.
func Parse(s string, epoch Epoch) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range textLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}

	if serial, err := strconv.ParseInt(s, 10, 64); err == nil {
		return epoch.Base().AddDate(0, 0, int(serial)), true
	}

	return time.Time{}, false
}

// ParseOr is Parse with a fallback value for unparseable input.
func ParseOr(s string, epoch Epoch, fallback time.Time) time.Time {
	if d, ok := Parse(s, epoch); ok {
		return d
	}
	return fallback
}
