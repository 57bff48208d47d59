// Package corrections keeps the learned rename table for product
// names: extraction keeps misreading the same labels, so confirmed
// fixes are stored and replayed on every later run.
package corrections

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/SilasRoe/raccolta-dati/internal/model"
)

// Table maps a wrong product name to its confirmed correction.
type Table map[string]string

// Load reads a corrections table from a JSON file. A missing file is
// an empty table, not an error.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading corrections: %w", err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing corrections: %w", err)
	}
	if t == nil {
		t = Table{}
	}
	return t, nil
}

// Save writes the table back to a JSON file.
func Save(path string, t Table) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling corrections: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing corrections: %w", err)
	}
	return nil
}

// Learn records wrong -> correct. Empty or identity pairs are ignored.
func (t Table) Learn(wrong, correct string) {
	wrong = strings.TrimSpace(wrong)
	correct = strings.TrimSpace(correct)
	if wrong == "" || correct == "" || wrong == correct {
		return
	}
	t[wrong] = correct
}

// Remove deletes a learned correction, reporting whether it existed.
func (t Table) Remove(wrong string) bool {
	if _, ok := t[wrong]; !ok {
		return false
	}
	delete(t, wrong)
	return true
}

// Apply rewrites product names that exactly match a learned wrong
// value and returns how many records were touched.
func (t Table) Apply(recs []model.IncomingRecord) int {
	applied := 0
	for i := range recs {
		if correct, ok := t[recs[i].Product]; ok {
			recs[i].Product = correct
			applied++
		}
	}
	return applied
}

// Keys returns the wrong values in sorted order, for stable listings.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
