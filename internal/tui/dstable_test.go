package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sundancer78/proxmox-suits/internal/client"
)

const testGiB = int64(1) << 30

func testDatastores() []client.DatastoreUsage {
	return []client.DatastoreUsage{
		{Store: "backup1", Used: 100 * testGiB, Avail: 200 * testGiB, Total: 300 * testGiB},
		{Store: "archive", Used: 280 * testGiB, Avail: 20 * testGiB, Total: 300 * testGiB},
		{Store: "scratch", Used: 10 * testGiB, Avail: 90 * testGiB, Total: 100 * testGiB},
	}
}

func TestSortDatastores_ByName(t *testing.T) {
	rows := sortDatastores(testDatastores(), 0, false)
	require.Len(t, rows, 3)
	assert.Equal(t, "archive", rows[0].Store)
	assert.Equal(t, "backup1", rows[1].Store)
	assert.Equal(t, "scratch", rows[2].Store)
}

func TestSortDatastores_ByUsagePercentDesc(t *testing.T) {
	rows := sortDatastores(testDatastores(), 4, true)
	require.Len(t, rows, 3)
	// archive 93.3%, backup1 33.3%, scratch 10%.
	assert.Equal(t, "archive", rows[0].Store)
	assert.Equal(t, "backup1", rows[1].Store)
	assert.Equal(t, "scratch", rows[2].Store)
}

func TestSortDatastores_NoSortPreservesOrder(t *testing.T) {
	rows := sortDatastores(testDatastores(), -1, true)
	assert.Equal(t, "backup1", rows[0].Store)
	assert.Equal(t, "archive", rows[1].Store)
}

func TestSortDatastores_ErroredStoreSortsLast(t *testing.T) {
	rows := []client.DatastoreUsage{
		{Store: "broken", Error: "unable to open chunk store"},
		{Store: "good", Used: 100 * testGiB, Total: 200 * testGiB},
	}
	sorted := sortDatastores(rows, 1, true)
	require.Len(t, sorted, 2)
	assert.Equal(t, "good", sorted[0].Store)
}

func TestFilterDatastores(t *testing.T) {
	rows := testDatastores()

	assert.Len(t, filterDatastores(rows, ""), 3)

	got := filterDatastores(rows, "ARCH")
	require.Len(t, got, 1)
	assert.Equal(t, "archive", got[0].Store)

	assert.Empty(t, filterDatastores(rows, "nomatch"))
}

func TestDatastoreCellValue(t *testing.T) {
	r := client.DatastoreUsage{Store: "backup1", Used: 100 * testGiB, Avail: 200 * testGiB, Total: 300 * testGiB}

	assert.Equal(t, "backup1", datastoreCellValue(r, 0))
	assert.Equal(t, "100.0 GiB", datastoreCellValue(r, 1))
	assert.Equal(t, "200.0 GiB", datastoreCellValue(r, 2))
	assert.Equal(t, "300.0 GiB", datastoreCellValue(r, 3))
	assert.Equal(t, "33.3%", datastoreCellValue(r, 4))
}

func TestDatastoreCellValue_ErroredStore(t *testing.T) {
	// A store in error reports zero byte counts; the usage column goes
	// absent because total is zero.
	r := client.DatastoreUsage{Store: "dead", Error: "unable to open chunk store"}

	assert.Equal(t, "dead", datastoreCellValue(r, 0))
	assert.Equal(t, "0.0 GiB", datastoreCellValue(r, 1))
	assert.Equal(t, "---", datastoreCellValue(r, 4))
}

func TestDatastoreTable_SetDataAppliesFilterAndSort(t *testing.T) {
	m := NewDatastoreTable()
	m.search = "a" // all three fixture stores contain "a"

	m.SetData(testDatastores())

	// Default sort is usage percent descending.
	require.NotEmpty(t, m.displayRows)
	assert.Equal(t, "archive", m.displayRows[0].Store)
}

func TestDatastoreTable_RenderIncludesRows(t *testing.T) {
	m := NewDatastoreTable()
	m.SetData(testDatastores())

	app := &App{width: 100}
	out := m.renderTable(app)

	assert.Contains(t, out, "Datastores")
	assert.Contains(t, out, "backup1")
	assert.Contains(t, out, "archive")
}

func TestDatastoreTable_RenderEmpty(t *testing.T) {
	m := NewDatastoreTable()
	m.SetData(nil)

	out := m.renderTable(&App{width: 100})
	assert.Contains(t, out, "(no datastores)")
}
