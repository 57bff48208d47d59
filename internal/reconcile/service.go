// Package reconcile merges extracted order and invoice records into an
// existing xlsx order book: matched records update their rows in
// place, everything else is inserted at its sorted position with the
// neighbouring row's styling and formula replicated.
package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/SilasRoe/raccolta-dati/internal/ledger"
	"github.com/SilasRoe/raccolta-dati/internal/model"
)

// ErrEmptyInput is returned when no records are submitted; it is
// raised before any file access happens.
var ErrEmptyInput = errors.New("no records submitted")

// DefaultMarkerLabel is the column-4 header label that marks the first
// row of the order book.
const DefaultMarkerLabel = "Casa Estera"

// progressInterval is how many processed records lie between progress
// notifications.
const progressInterval = 10

// ProgressFunc receives advisory progress events; it must not block.
type ProgressFunc func(current, total int)

// FilePicker supplies a ledger path when the caller did not pass one.
// An empty path with a nil error means the user cancelled.
type FilePicker interface {
	PickLedger() (string, error)
}

// Options configures a reconciliation run.
type Options struct {
	// Path of the ledger file. When empty, Picker is consulted.
	Path string
	// Picker is the external file-selection collaborator.
	Picker FilePicker
	// Progress, when set, is called every few records and once at
	// completion.
	Progress ProgressFunc
	// MarkerLabel overrides the header marker; defaults to
	// DefaultMarkerLabel.
	MarkerLabel string
}

// Result summarizes a completed (or cancelled) run.
type Result struct {
	Cancelled bool
	Updated   int
	Inserted  int
	Summary   string
}

// Run reconciles records against one ledger file: read fully, mutate
// in memory, write back once. No partial writes; if the final save
// fails the backup copy is left behind for recovery.
func Run(records []model.IncomingRecord, opts Options) (*Result, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	path := opts.Path
	if path == "" {
		if opts.Picker == nil {
			return nil, errors.New("no ledger path given and no file picker available")
		}
		picked, err := opts.Picker.PickLedger()
		if err != nil {
			return nil, fmt.Errorf("picking ledger file: %w", err)
		}
		if picked == "" {
			return &Result{Cancelled: true, Summary: "cancelled by user"}, nil
		}
		path = picked
	}

	marker := opts.MarkerLabel
	if marker == "" {
		marker = DefaultMarkerLabel
	}

	// Order-stage records go first so that invoices extracted in the
	// same run can merge into the pending orders they belong to.
	recs := make([]*model.IncomingRecord, len(records))
	for i := range records {
		rec := records[i]
		recs[i] = &rec
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].DeliveredQty == nil && recs[j].DeliveredQty != nil
	})

	led, err := ledger.Open(path, marker)
	if err != nil {
		return nil, err
	}
	defer led.Close()

	// Best effort; a missing backup is not worth aborting the run.
	backedUp := led.Backup() == nil

	if _, err := led.MigrateEpoch(); err != nil {
		return nil, fmt.Errorf("normalizing date epoch: %w", err)
	}

	ix, err := led.BuildIndex()
	if err != nil {
		return nil, fmt.Errorf("indexing ledger: %w", err)
	}

	var pending []*model.IncomingRecord
	updated := 0
	total := len(recs)

	for i, rec := range recs {
		m := matchRecord(rec, ix, pending)
		switch m.kind {
		case matchExistingRow:
			if err := writeFields(led, m.row, rec); err != nil {
				return nil, err
			}
			updated++
		case matchPendingMerge:
			mergeIntoPending(pending[m.pending], rec)
			updated++
		default:
			pending = append(pending, rec)
		}

		if opts.Progress != nil && (i+1)%progressInterval == 0 {
			opts.Progress(i+1, total)
		}
	}

	if err := insertPending(led, ix, pending); err != nil {
		return nil, err
	}

	if opts.Progress != nil {
		opts.Progress(total, total)
	}

	if err := led.Save(); err != nil {
		// The .bak copy stays in place for manual recovery.
		return nil, err
	}
	if backedUp {
		led.RemoveBackup()
	}

	res := &Result{
		Updated:  updated,
		Inserted: len(pending),
	}
	res.Summary = fmt.Sprintf("Done: %d updated, %d inserted.", res.Updated, res.Inserted)
	return res, nil
}
