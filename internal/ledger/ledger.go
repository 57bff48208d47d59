// Package ledger wraps a single-sheet xlsx workbook with the fixed
// column layout used by the order book: positional (column, row)
// addressing, header-marker detection, epoch normalization, and the
// backup-then-write persistence cycle.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/SilasRoe/raccolta-dati/internal/dates"
)

// Fixed column layout of the order book. Column 9 is reserved.
const (
	ColOrderDate     = 1
	ColOrderNumber   = 2
	ColCustomer      = 3
	ColSupplier      = 4
	ColProduct       = 5
	ColQuantity      = 6
	ColCurrency      = 7
	ColUnitPrice     = 8
	ColInvoiceDate   = 10
	ColInvoiceNumber = 11
	ColDeliveredQty  = 12
	ColFormula       = 13
	ColPaymentDate   = 17
	ColNotes         = 18
)

// LastCol is the highest column the engine touches when replicating
// styles onto inserted rows.
const LastCol = ColNotes

// headerSearchLimit bounds the scan for the header marker row.
const headerSearchLimit = 100

var (
	// ErrAccessDenied means the file could not be opened for writing,
	// most likely because it is open in another application.
	ErrAccessDenied = errors.New("file is open elsewhere or write-protected")
	// ErrReadFailure means the file is not a parseable workbook.
	ErrReadFailure = errors.New("file is not a valid ledger workbook")
	// ErrMissingSheet means the workbook has no first sheet.
	ErrMissingSheet = errors.New("no worksheet found")
	// ErrPersistFailure means the final write-back failed.
	ErrPersistFailure = errors.New("writing ledger failed")
)

// Ledger is an open order-book workbook. All mutations happen against
// the in-memory document; nothing touches disk until Save.
type Ledger struct {
	file       *excelize.File
	path       string
	backupPath string
	sheet      string

	headerRow  int
	highestRow int
	epoch      dates.Epoch
}

// Open verifies exclusive write access to path, parses the workbook,
// detects the header row by the marker label in column 4, and reads
// the workbook's date-system flag. The marker comparison is
// case-insensitive; without a marker the header defaults to row 1.
func Open(path, markerLabel string) (*Ledger, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, path)
	}
	probe, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccessDenied, path)
	}
	probe.Close()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}

	sheet := f.GetSheetName(0)
	if sheet == "" {
		f.Close()
		return nil, ErrMissingSheet
	}

	l := &Ledger{
		file:       f,
		path:       path,
		backupPath: path + ".bak",
		sheet:      sheet,
		epoch:      dates.Epoch1900,
	}

	if legacy, err := l.is1904(); err == nil && legacy {
		l.epoch = dates.Epoch1904
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	l.highestRow = len(rows)

	l.headerRow = 1
	limit := l.highestRow
	if limit > headerSearchLimit {
		limit = headerSearchLimit
	}
	for r := 1; r <= limit; r++ {
		v, err := l.Cell(ColSupplier, r)
		if err != nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(v), markerLabel) {
			l.headerRow = r
			break
		}
	}

	return l, nil
}

// is1904 reads the workbook's date1904 property.
func (l *Ledger) is1904() (bool, error) {
	props, err := l.file.GetWorkbookProps()
	if err != nil {
		return false, err
	}
	return props.Date1904 != nil && *props.Date1904, nil
}

// Epoch returns the date system currently in effect for raw serials.
func (l *Ledger) Epoch() dates.Epoch { return l.epoch }

// StartDataRow is the first row holding ledger data.
func (l *Ledger) StartDataRow() int { return l.headerRow + 1 }

// HighestRow is the last populated row index.
func (l *Ledger) HighestRow() int { return l.highestRow }

// Sheet returns the name of the ledger worksheet.
func (l *Ledger) Sheet() string { return l.sheet }

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// Cell returns the formatted value at (col, row).
func (l *Ledger) Cell(col, row int) (string, error) {
	return l.file.GetCellValue(l.sheet, cellName(col, row))
}

// SetCell writes a string value at (col, row).
func (l *Ledger) SetCell(col, row int, v string) error {
	return l.file.SetCellValue(l.sheet, cellName(col, row), v)
}

// SetCellNumber writes a numeric value at (col, row).
func (l *Ledger) SetCellNumber(col, row int, v decimal.Decimal) error {
	return l.file.SetCellFloat(l.sheet, cellName(col, row), v.InexactFloat64(), -1, 64)
}

// Formula returns the formula text at (col, row), empty when the cell
// holds none.
func (l *Ledger) Formula(col, row int) (string, error) {
	return l.file.GetCellFormula(l.sheet, cellName(col, row))
}

// SetFormula writes formula text at (col, row).
func (l *Ledger) SetFormula(col, row int, formula string) error {
	return l.file.SetCellFormula(l.sheet, cellName(col, row), formula)
}

// StyleID returns the style identifier of (col, row).
func (l *Ledger) StyleID(col, row int) (int, error) {
	return l.file.GetCellStyle(l.sheet, cellName(col, row))
}

// SetStyle applies a style identifier to (col, row).
func (l *Ledger) SetStyle(col, row, styleID int) error {
	cell := cellName(col, row)
	return l.file.SetCellStyle(l.sheet, cell, cell, styleID)
}

// RowHeight returns the height of a row.
func (l *Ledger) RowHeight(row int) (float64, error) {
	return l.file.GetRowHeight(l.sheet, row)
}

// SetRowHeight sets the height of a row.
func (l *Ledger) SetRowHeight(row int, height float64) error {
	return l.file.SetRowHeight(l.sheet, row, height)
}

// InsertRows inserts n blank rows before row, shifting everything at
// and below row down by n.
func (l *Ledger) InsertRows(row, n int) error {
	if err := l.file.InsertRows(l.sheet, row, n); err != nil {
		return fmt.Errorf("inserting %d rows at %d: %w", n, row, err)
	}
	l.highestRow += n
	return nil
}

// Backup copies the file to its .bak sibling. Best effort: the caller
// may proceed without one.
func (l *Ledger) Backup() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("reading ledger for backup: %w", err)
	}
	if err := os.WriteFile(l.backupPath, data, 0o644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// RemoveBackup deletes the .bak sibling after a successful write.
func (l *Ledger) RemoveBackup() {
	_ = os.Remove(l.backupPath)
}

// BackupPath returns the path of the transient backup copy.
func (l *Ledger) BackupPath() string { return l.backupPath }

// Save writes the in-memory workbook back to its original path. On
// failure the backup copy is left in place for manual recovery.
func (l *Ledger) Save() error {
	if err := l.file.Save(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailure, err)
	}
	return nil
}

// Close releases the underlying workbook.
func (l *Ledger) Close() error {
	return l.file.Close()
}
