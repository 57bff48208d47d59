package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IncomingRecord is one extracted order or invoice line to reconcile
// against the ledger. All fields are optional: absent strings are
// empty, absent numbers are nil. Field names map 1:1 onto the fixed
// ledger column layout.
type IncomingRecord struct {
	OrderDate     string           `json:"orderDate,omitempty"`
	OrderNumber   string           `json:"orderNumber,omitempty"`
	Customer      string           `json:"customer,omitempty"`
	Supplier      string           `json:"supplier,omitempty"`
	Product       string           `json:"product,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unitPrice,omitempty"`
	InvoiceDate   string           `json:"invoiceDate,omitempty"`
	InvoiceNumber string           `json:"invoiceNumber,omitempty"`
	DeliveredQty  *decimal.Decimal `json:"deliveredQty,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// InvoiceStage reports whether the record carries invoice data
// (a delivered quantity and/or an invoice number).
func (r *IncomingRecord) InvoiceStage() bool {
	return r.DeliveredQty != nil || strings.TrimSpace(r.InvoiceNumber) != ""
}

// Scorable reports whether the record has both a unit price and a
// delivered quantity, the two fields the scored matcher gates on.
func (r *IncomingRecord) Scorable() bool {
	return r.UnitPrice != nil && r.DeliveredQty != nil
}

// OrderKey returns the trimmed, case-folded order number used as the
// candidate-lookup key.
func (r *IncomingRecord) OrderKey() string {
	return strings.ToLower(strings.TrimSpace(r.OrderNumber))
}

// SupplierKey returns the case-folded supplier name used for block
// ordering in the sheet.
func (r *IncomingRecord) SupplierKey() string {
	return strings.ToLower(r.Supplier)
}

// QuantityOrZero returns the ordered quantity, or zero when absent.
func (r *IncomingRecord) QuantityOrZero() decimal.Decimal {
	if r.Quantity == nil {
		return decimal.Zero
	}
	return *r.Quantity
}

// PriceOrZero returns the unit price, or zero when absent.
func (r *IncomingRecord) PriceOrZero() decimal.Decimal {
	if r.UnitPrice == nil {
		return decimal.Zero
	}
	return *r.UnitPrice
}
