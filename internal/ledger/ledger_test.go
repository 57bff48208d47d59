package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SilasRoe/raccolta-dati/internal/dates"
)

const marker = "Casa Estera"

type testRow struct {
	date     string
	order    string
	supplier string
	product  string
	qty      string
	price    string
}

// writeBook creates a workbook with the header marker in column D at
// headerRow and data rows directly below it.
func writeBook(t *testing.T, headerRow int, rows []testRow, mutate ...func(f *excelize.File, sheet string)) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("D%d", headerRow), marker))

	for i, r := range rows {
		row := headerRow + 1 + i
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.date))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.order))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.supplier))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.product))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.qty))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.price))
	}

	for _, m := range mutate {
		m(f, sheet)
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestOpen_DetectsHeaderMarker(t *testing.T) {
	path := writeBook(t, 3, []testRow{
		{order: "PO-1", supplier: "Acme", product: "Widget", qty: "5", price: "10"},
	})

	l, err := Open(path, marker)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 4, l.StartDataRow())
	assert.Equal(t, 4, l.HighestRow())
	assert.Equal(t, dates.Epoch1900, l.Epoch())
}

func TestOpen_MarkerCaseInsensitive(t *testing.T) {
	path := writeBook(t, 2, nil)

	l, err := Open(path, "cASA eSTERA")
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 3, l.StartDataRow())
}

func TestOpen_DefaultHeaderRow(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "just data"))
	path := filepath.Join(t.TempDir(), "plain.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	l, err := Open(path, marker)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, 2, l.StartDataRow())
}

func TestOpen_AccessDeniedOnMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"), marker)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestOpen_ReadFailureOnGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	_, err := Open(path, marker)
	assert.ErrorIs(t, err, ErrReadFailure)
}

func TestBuildIndex(t *testing.T) {
	path := writeBook(t, 1, []testRow{
		{date: "15.03.2024", order: "PO-1", supplier: "Acme", product: "Widget", qty: "5", price: "10.5"},
		{date: "16.03.2024", order: "po-1", supplier: "Acme", product: "Gadget", qty: "3", price: "7"},
		{date: "bad date", order: "PO-2", supplier: "Beta", product: "Bolt", qty: "100", price: "0.2"},
		{date: "", order: "", supplier: "Beta", product: "untracked", qty: "", price: ""},
	})

	l, err := Open(path, marker)
	require.NoError(t, err)
	defer l.Close()

	ix, err := l.BuildIndex()
	require.NoError(t, err)

	// Multi-line order grouped under one case-folded key.
	require.Len(t, ix.ByOrder["po-1"], 2)
	assert.Equal(t, 2, ix.ByOrder["po-1"][0].Row)
	assert.Equal(t, "Widget", ix.ByOrder["po-1"][0].Product)
	assert.Equal(t, "5", ix.ByOrder["po-1"][0].Qty.String())
	assert.Equal(t, "10.5", ix.ByOrder["po-1"][0].Price.String())
	assert.Equal(t, 3, ix.ByOrder["po-1"][1].Row)

	require.Len(t, ix.ByOrder["po-2"], 1)

	// The row without an order number is only in the snapshot.
	require.Len(t, ix.Snapshot, 4)
	assert.Equal(t, "acme", ix.Snapshot[0].Supplier)
	assert.Equal(t, "po-1", ix.Snapshot[0].OrderNumber)
	assert.Equal(t, 15, ix.Snapshot[0].Date.Day())

	// Unparseable dates carry the max sentinel so they sort last.
	assert.Equal(t, dates.Max, ix.Snapshot[2].Date)
	assert.Equal(t, "", ix.Snapshot[3].OrderNumber)
}

func TestMigrateEpoch(t *testing.T) {
	legacy := true
	path := writeBook(t, 1, []testRow{
		{date: "15.03.2024", order: "PO-1", supplier: "Acme", product: "Widget", qty: "5", price: "10"},
	}, func(f *excelize.File, sheet string) {
		require.NoError(t, f.SetCellValue(sheet, "A3", 40000))
		require.NoError(t, f.SetCellValue(sheet, "J3", 40500))
		require.NoError(t, f.SetCellValue(sheet, "A4", 100))
		require.NoError(t, f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &legacy}))
	})

	l, err := Open(path, marker)
	require.NoError(t, err)
	defer l.Close()
	require.Equal(t, dates.Epoch1904, l.Epoch())

	migrated, err := l.MigrateEpoch()
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)

	v, err := l.Cell(ColOrderDate, 3)
	require.NoError(t, err)
	assert.Equal(t, "41462", v)

	v, err = l.Cell(ColInvoiceDate, 3)
	require.NoError(t, err)
	assert.Equal(t, "41962", v)

	// Below the sanity floor: left alone.
	v, err = l.Cell(ColOrderDate, 4)
	require.NoError(t, err)
	assert.Equal(t, "100", v)

	// Text dates are untouched and serials now parse canonically.
	v, err = l.Cell(ColOrderDate, 2)
	require.NoError(t, err)
	assert.Equal(t, "15.03.2024", v)
	assert.Equal(t, dates.Epoch1900, l.Epoch())
}

func TestMigrateEpoch_NoopOnDefaultSystem(t *testing.T) {
	path := writeBook(t, 1, []testRow{
		{date: "40000", order: "PO-1", supplier: "Acme", product: "Widget", qty: "5", price: "10"},
	})

	l, err := Open(path, marker)
	require.NoError(t, err)
	defer l.Close()

	migrated, err := l.MigrateEpoch()
	require.NoError(t, err)
	assert.Zero(t, migrated)

	v, err := l.Cell(ColOrderDate, 2)
	require.NoError(t, err)
	assert.Equal(t, "40000", v)
}

func TestBackupSaveCycle(t *testing.T) {
	path := writeBook(t, 1, []testRow{
		{order: "PO-1", supplier: "Acme", product: "Widget", qty: "5", price: "10"},
	})

	l, err := Open(path, marker)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Backup())
	_, err = os.Stat(l.BackupPath())
	require.NoError(t, err)

	require.NoError(t, l.SetCell(ColNotes, 2, "checked"))
	require.NoError(t, l.Save())
	l.RemoveBackup()

	_, err = os.Stat(l.BackupPath())
	assert.True(t, os.IsNotExist(err))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(f.GetSheetName(0), "R2")
	require.NoError(t, err)
	assert.Equal(t, "checked", v)
}

func TestInsertRows_TracksHighestRow(t *testing.T) {
	path := writeBook(t, 1, []testRow{
		{order: "PO-1", supplier: "Acme", product: "Widget", qty: "5", price: "10"},
		{order: "PO-2", supplier: "Beta", product: "Bolt", qty: "1", price: "2"},
	})

	l, err := Open(path, marker)
	require.NoError(t, err)
	defer l.Close()

	require.Equal(t, 3, l.HighestRow())
	require.NoError(t, l.InsertRows(2, 2))
	assert.Equal(t, 5, l.HighestRow())

	// The old row 2 content shifted down to row 4.
	v, err := l.Cell(ColOrderNumber, 4)
	require.NoError(t, err)
	assert.Equal(t, "PO-1", v)
}
