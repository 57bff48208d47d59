package reconcile

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SilasRoe/raccolta-dati/internal/ledger"
	"github.com/SilasRoe/raccolta-dati/internal/model"
	"github.com/SilasRoe/raccolta-dati/internal/textmatch"
)

// priceTolerance is the absolute unit-price gate: candidates further
// away are never considered, price being the strongest discriminator
// between partial shipments of the same order.
var priceTolerance = decimal.NewFromFloat(0.05)

const (
	// qtyRelTolerance is the relative quantity gate.
	qtyRelTolerance = 0.5
	qtyWeight       = 10.0
	nameWeight      = 5.0
)

type matchKind int

const (
	matchNone matchKind = iota
	matchExistingRow
	matchPendingMerge
)

// match is the outcome of scoring one record against the ledger and
// the pending list.
type match struct {
	kind    matchKind
	row     int // ledger row index, for matchExistingRow
	pending int // pending-list index, for matchPendingMerge
}

// matchRecord finds the best home for rec: an existing ledger row, a
// pending record from earlier in the run, or nothing.
//
// Invoice-stage records (price and delivered quantity both present)
// are score-matched against candidates sharing the order number,
// gated on price and relative quantity, then against not-yet-invoiced
// pending records under the same gates. Order-stage records match
// only on exact order number plus case-insensitive product equality.
func matchRecord(rec *model.IncomingRecord, ix *ledger.Index, pending []*model.IncomingRecord) match {
	orderKey := rec.OrderKey()

	if rec.Scorable() {
		invPrice := *rec.UnitPrice
		invQty := *rec.DeliveredQty

		bestRow := -1
		bestScore := -1.0
		for _, cand := range ix.Candidates(orderKey) {
			score, ok := scoreCandidate(cand.Price, cand.Qty, cand.Product, invPrice, invQty, rec.Product)
			if !ok {
				continue
			}
			if score > bestScore {
				bestScore = score
				bestRow = cand.Row
			}
		}
		if bestRow >= 0 {
			return match{kind: matchExistingRow, row: bestRow}
		}

		bestIdx := -1
		bestScore = -1.0
		for i, p := range pending {
			if p.DeliveredQty != nil {
				continue
			}
			if p.OrderKey() != orderKey {
				continue
			}
			score, ok := scoreCandidate(p.PriceOrZero(), p.QuantityOrZero(), p.Product, invPrice, invQty, rec.Product)
			if !ok {
				continue
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx >= 0 {
			return match{kind: matchPendingMerge, pending: bestIdx}
		}

		return match{kind: matchNone}
	}

	// Order-stage: exact order number plus case-insensitive product
	// equality, first hit wins.
	for _, cand := range ix.Candidates(orderKey) {
		if strings.EqualFold(strings.TrimSpace(cand.Product), strings.TrimSpace(rec.Product)) {
			return match{kind: matchExistingRow, row: cand.Row}
		}
	}
	return match{kind: matchNone}
}

// scoreCandidate applies the price and quantity gates and returns the
// combined quantity/name score. ok is false when a gate rejects the
// candidate.
func scoreCandidate(candPrice, candQty decimal.Decimal, candProduct string, invPrice, invQty decimal.Decimal, product string) (score float64, ok bool) {
	if candPrice.Sub(invPrice).Abs().GreaterThan(priceTolerance) {
		return 0, false
	}

	qtyDiffRel := 1.0
	if candQty.IsPositive() {
		qtyDiffRel = candQty.Sub(invQty).Abs().Div(candQty).InexactFloat64()
	}
	if qtyDiffRel > qtyRelTolerance {
		return 0, false
	}

	qtyScore := math.Max(0, 1.0-qtyDiffRel)
	nameSim := textmatch.Similarity(product, candProduct)
	return qtyScore*qtyWeight + nameSim*nameWeight, true
}
