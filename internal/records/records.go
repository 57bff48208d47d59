// Package records is the JSON boundary to the external extraction
// collaborator: it loads already-parsed order/invoice records and
// normalizes them before they enter the matcher.
package records

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/SilasRoe/raccolta-dati/internal/model"
)

// Load reads a JSON array of extracted records from path.
func Load(path string) ([]model.IncomingRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and normalizes a JSON array of records.
func Parse(data []byte) ([]model.IncomingRecord, error) {
	var recs []model.IncomingRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing records JSON: %w", err)
	}
	for i := range recs {
		normalize(&recs[i])
	}
	return recs, nil
}

// normalize trims the text fields extraction tends to pad.
func normalize(r *model.IncomingRecord) {
	r.OrderNumber = strings.TrimSpace(r.OrderNumber)
	r.InvoiceNumber = strings.TrimSpace(r.InvoiceNumber)
	r.Supplier = strings.TrimSpace(r.Supplier)
	r.Customer = strings.TrimSpace(r.Customer)
	r.Product = strings.TrimSpace(r.Product)
	r.Currency = strings.TrimSpace(r.Currency)
}
