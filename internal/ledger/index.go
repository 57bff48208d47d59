package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SilasRoe/raccolta-dati/internal/dates"
)

// Candidate is an existing row reduced to the fields the matcher
// scores on.
type Candidate struct {
	Row     int
	Product string
	Qty     decimal.Decimal
	Price   decimal.Decimal
}

// SnapshotRow is one entry of the pre-run row snapshot used for
// insertion placement, in physical row order.
type SnapshotRow struct {
	Row         int
	Supplier    string
	OrderNumber string
	Date        time.Time
}

// Index is the one-shot lookup structure built from the ledger before
// any record is processed. ByOrder groups candidates by trimmed,
// case-folded order number (multi-line orders share a key). Snapshot
// keeps every data row in physical order; rows with unparseable dates
// carry the max sentinel so they sort after dated rows.
type Index struct {
	ByOrder  map[string][]Candidate
	Snapshot []SnapshotRow
}

// Candidates returns the candidate rows sharing an order key.
func (ix *Index) Candidates(orderKey string) []Candidate {
	return ix.ByOrder[orderKey]
}

// BuildIndex scans every data row once and derives the candidate map
// and placement snapshot. Never updated mid-run; physical insertions
// later in the run work from highest row to lowest so the snapshot's
// row indices stay valid.
func (l *Ledger) BuildIndex() (*Index, error) {
	ix := &Index{ByOrder: make(map[string][]Candidate)}

	for r := l.StartDataRow(); r <= l.highestRow; r++ {
		supplier, err := l.Cell(ColSupplier, r)
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", r, err)
		}
		dateText, _ := l.Cell(ColOrderDate, r)
		orderNumber, _ := l.Cell(ColOrderNumber, r)
		product, _ := l.Cell(ColProduct, r)
		qtyText, _ := l.Cell(ColQuantity, r)
		priceText, _ := l.Cell(ColUnitPrice, r)

		orderKey := strings.ToLower(strings.TrimSpace(orderNumber))

		ix.Snapshot = append(ix.Snapshot, SnapshotRow{
			Row:         r,
			Supplier:    strings.ToLower(supplier),
			OrderNumber: orderKey,
			Date:        dates.ParseOr(dateText, l.epoch, dates.Max),
		})

		if orderKey == "" {
			continue
		}

		qty, err := decimal.NewFromString(strings.TrimSpace(qtyText))
		if err != nil {
			qty = decimal.Zero
		}
		price, err := decimal.NewFromString(strings.TrimSpace(priceText))
		if err != nil {
			price = decimal.Zero
		}

		ix.ByOrder[orderKey] = append(ix.ByOrder[orderKey], Candidate{
			Row:     r,
			Product: product,
			Qty:     qty,
			Price:   price,
		})
	}

	return ix, nil
}
