package ledger

import (
	"fmt"
	"strconv"

	"github.com/SilasRoe/raccolta-dati/internal/dates"
)

// dateColumns are the columns that may hold raw date serials.
var dateColumns = []int{ColOrderDate, ColInvoiceDate, ColPaymentDate}

// MigrateEpoch rewrites raw date serials in place when the workbook
// uses the legacy 1904 date system, adding the fixed day-count
// difference so every serial is expressed under the default 1900
// system before any row comparison happens. Runs once, before
// indexing; a no-op for workbooks already on the default system.
//
// Only plain numbers above the sanity floor are touched; text dates
// and small numeric literals pass through unchanged.
func (l *Ledger) MigrateEpoch() (int, error) {
	if l.epoch != dates.Epoch1904 {
		return 0, nil
	}

	migrated := 0
	for r := l.StartDataRow(); r <= l.highestRow; r++ {
		for _, col := range dateColumns {
			v, err := l.Cell(col, r)
			if err != nil {
				return migrated, fmt.Errorf("reading cell (%d,%d): %w", col, r, err)
			}
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil || serial <= dates.SerialFloor {
				continue
			}
			cell := cellName(col, r)
			if err := l.file.SetCellFloat(l.sheet, cell, serial+dates.MigrationDelta, -1, 64); err != nil {
				return migrated, fmt.Errorf("migrating cell %s: %w", cell, err)
			}
			migrated++
		}
	}

	// All serials are canonical now; parse them under the default base.
	l.epoch = dates.Epoch1900
	return migrated, nil
}
