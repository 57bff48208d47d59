// Package runlog keeps an append-only audit trail of reconciliation
// runs, one CSV row per run.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log.
type Entry struct {
	RunID     string
	Timestamp time.Time
	File      string
	Updated   int
	Inserted  int
	Duration  time.Duration
}

// Header is the CSV header for the run log.
const Header = "run_id,timestamp,file,updated,inserted,duration_ms"

const (
	numFields    = 6
	colRunID     = 0
	colTimestamp = 1
	colFile      = 2
	colUpdated   = 3
	colInserted  = 4
	colDuration  = 5
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colFile] = e.File
	row[colUpdated] = strconv.Itoa(e.Updated)
	row[colInserted] = strconv.Itoa(e.Inserted)
	row[colDuration] = strconv.FormatInt(e.Duration.Milliseconds(), 10)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	updated, err := strconv.Atoi(record[colUpdated])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing updated %q: %w", record[colUpdated], err)
	}

	inserted, err := strconv.Atoi(record[colInserted])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing inserted %q: %w", record[colInserted], err)
	}

	ms, err := strconv.ParseInt(record[colDuration], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing duration %q: %w", record[colDuration], err)
	}

	return Entry{
		RunID:     record[colRunID],
		Timestamp: ts,
		File:      record[colFile],
		Updated:   updated,
		Inserted:  inserted,
		Duration:  time.Duration(ms) * time.Millisecond,
	}, nil
}

// Append writes an entry to the log at path, creating the file and
// header if needed.
func Append(path string, e Entry) error {
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}

	return cw.Error()
}

// Read returns all entries from the log at path. Returns nil if the
// file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
