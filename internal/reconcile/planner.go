package reconcile

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/SilasRoe/raccolta-dati/internal/dates"
	"github.com/SilasRoe/raccolta-dati/internal/ledger"
	"github.com/SilasRoe/raccolta-dati/internal/model"
)

// sortPending orders unmatched records the way the sheet is kept:
// supplier block, then order number, then order date, all ascending.
// Records with unparseable dates sort last within their order block.
func sortPending(pending []*model.IncomingRecord, epoch dates.Epoch) {
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i], pending[j]
		if sa, sb := a.SupplierKey(), b.SupplierKey(); sa != sb {
			return sa < sb
		}
		if oa, ob := a.OrderKey(), b.OrderKey(); oa != ob {
			return oa < ob
		}
		da := dates.ParseOr(a.OrderDate, epoch, dates.Max)
		db := dates.ParseOr(b.OrderDate, epoch, dates.Max)
		return da.Before(db)
	})
}

// insertionRow walks the pre-run snapshot to find where rec belongs:
// inside its supplier block, after rows with a smaller order number
// and, within the same order, after earlier dates. Falls back to
// end-of-sheet when the block is never entered or runs out, but never
// before the first data row.
func insertionRow(rec *model.IncomingRecord, ix *ledger.Index, l *ledger.Ledger) int {
	supplier := rec.SupplierKey()
	order := rec.OrderKey()
	date := dates.ParseOr(rec.OrderDate, l.Epoch(), dates.Min)

	insertAt := l.HighestRow() + 1
	if insertAt < l.StartDataRow() {
		insertAt = l.StartDataRow()
	}

	inBlock := false
	for _, row := range ix.Snapshot {
		switch {
		case row.Supplier == supplier:
			inBlock = true
			if row.OrderNumber > order {
				return row.Row
			}
			if row.OrderNumber == order && row.Date.After(date) {
				return row.Row
			}
		case inBlock:
			return row.Row
		case row.Supplier > supplier:
			return row.Row
		}
	}
	return insertAt
}

// insertPending physically writes all still-unmatched records into the
// sheet. Records are sorted, assigned a target row against the pre-run
// snapshot, grouped into contiguous batches per target, and the
// batches are applied from the highest row down so earlier insertions
// never shift a target that is still to come.
func insertPending(l *ledger.Ledger, ix *ledger.Index, pending []*model.IncomingRecord) error {
	if len(pending) == 0 {
		return nil
	}

	sortPending(pending, l.Epoch())

	batches := make(map[int][]*model.IncomingRecord)
	var targets []int
	for _, rec := range pending {
		at := insertionRow(rec, ix, l)
		if _, seen := batches[at]; !seen {
			targets = append(targets, at)
		}
		batches[at] = append(batches[at], rec)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(targets)))

	for _, start := range targets {
		if err := insertBatch(l, start, batches[start]); err != nil {
			return err
		}
	}
	return nil
}

// insertBatch inserts one contiguous block of rows at start and dresses
// each new row like its template: per-column styles, row height, and
// the formula column with the template's row number substituted.
func insertBatch(l *ledger.Ledger, start int, batch []*model.IncomingRecord) error {
	n := len(batch)
	if err := l.InsertRows(start, n); err != nil {
		return err
	}

	// Template is the row above when inserting below existing data,
	// otherwise the (now shifted) row below the new block.
	templateRow := start + n
	if start > l.StartDataRow() {
		templateRow = start - 1
	}

	styles := make([]int, ledger.LastCol)
	for col := 1; col <= ledger.LastCol; col++ {
		id, err := l.StyleID(col, templateRow)
		if err != nil {
			return fmt.Errorf("reading template style (%d,%d): %w", col, templateRow, err)
		}
		styles[col-1] = id
	}

	height, err := l.RowHeight(templateRow)
	if err != nil {
		height = 0
	}

	formula, err := l.Formula(ledger.ColFormula, templateRow)
	if err != nil {
		formula = ""
	}

	for i, rec := range batch {
		r := start + i

		if height > 0 {
			if err := l.SetRowHeight(r, height); err != nil {
				return fmt.Errorf("setting row %d height: %w", r, err)
			}
		}

		if err := writeFields(l, r, rec); err != nil {
			return err
		}

		for col := 1; col <= ledger.LastCol; col++ {
			if err := l.SetStyle(col, r, styles[col-1]); err != nil {
				return fmt.Errorf("styling cell (%d,%d): %w", col, r, err)
			}
		}

		if formula != "" {
			if err := l.SetFormula(ledger.ColFormula, r, adjustFormula(formula, templateRow, r)); err != nil {
				return fmt.Errorf("writing formula on row %d: %w", r, err)
			}
		}
	}

	return nil
}

// adjustFormula rewrites a template row's formula for a new row by
// substituting the old row number wherever it follows a column letter.
// Anchoring on the column letter keeps unrelated numeric literals in
// the formula intact.
func adjustFormula(formula string, oldRow, newRow int) string {
	re := regexp.MustCompile(fmt.Sprintf(`([A-Z])%d\b`, oldRow))
	return re.ReplaceAllString(formula, fmt.Sprintf("${1}%d", newRow))
}
