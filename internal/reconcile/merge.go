package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SilasRoe/raccolta-dati/internal/ledger"
	"github.com/SilasRoe/raccolta-dati/internal/model"
)

// writeFields writes every present field of rec onto a ledger row per
// the fixed column layout. Absent fields leave existing cell contents
// untouched, so a partial invoice never blanks order data.
func writeFields(l *ledger.Ledger, row int, rec *model.IncomingRecord) error {
	texts := []struct {
		col int
		val string
	}{
		{ledger.ColOrderDate, rec.OrderDate},
		{ledger.ColOrderNumber, rec.OrderNumber},
		{ledger.ColCustomer, rec.Customer},
		{ledger.ColSupplier, rec.Supplier},
		{ledger.ColProduct, rec.Product},
		{ledger.ColCurrency, rec.Currency},
		{ledger.ColInvoiceDate, rec.InvoiceDate},
		{ledger.ColInvoiceNumber, rec.InvoiceNumber},
		{ledger.ColNotes, rec.Notes},
	}
	for _, t := range texts {
		if t.val == "" {
			continue
		}
		if err := l.SetCell(t.col, row, t.val); err != nil {
			return fmt.Errorf("writing cell (%d,%d): %w", t.col, row, err)
		}
	}

	numbers := []struct {
		col int
		val *decimal.Decimal
	}{
		{ledger.ColQuantity, rec.Quantity},
		{ledger.ColUnitPrice, rec.UnitPrice},
		{ledger.ColDeliveredQty, rec.DeliveredQty},
	}
	for _, n := range numbers {
		if n.val == nil {
			continue
		}
		if err := l.SetCellNumber(n.col, row, *n.val); err != nil {
			return fmt.Errorf("writing cell (%d,%d): %w", n.col, row, err)
		}
	}

	return nil
}

// mergeIntoPending promotes a pending order-stage record in place with
// the invoice fields of rec. The pending record stays in the pending
// list and is inserted once, as a single combined row. Notes are
// backfilled only when the pending record has none.
func mergeIntoPending(target, rec *model.IncomingRecord) {
	target.InvoiceDate = rec.InvoiceDate
	target.InvoiceNumber = rec.InvoiceNumber
	if rec.DeliveredQty != nil {
		qty := *rec.DeliveredQty
		target.DeliveredQty = &qty
	}
	if target.Notes == "" && rec.Notes != "" {
		target.Notes = rec.Notes
	}
}
