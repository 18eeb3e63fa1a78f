package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Sundancer78/proxmox-suits/internal/client"
	"github.com/Sundancer78/proxmox-suits/internal/format"
	"github.com/Sundancer78/proxmox-suits/internal/metric"
)

// DatastoreTableModel is a sortable, paginated, searchable table of PBS
// datastore usage.
type DatastoreTableModel struct {
	tableModel
	allRows     []client.DatastoreUsage // unfiltered source data
	displayRows []client.DatastoreUsage // after filter + sort applied
}

// NewDatastoreTable returns a DatastoreTableModel with the 5-column layout
// and default sort by usage percent descending.
func NewDatastoreTable() DatastoreTableModel {
	cols := []columnDef{
		{Title: "Datastore", Width: 20},
		{Title: "Used", Width: 10},
		{Title: "Free", Width: 10},
		{Title: "Total", Width: 10},
		{Title: "Use%", Width: 7},
	}
	m := DatastoreTableModel{
		tableModel: newTableModel(cols),
	}
	m.sortCol = 4
	m.sortDesc = true
	return m
}

// SetData applies the current search filter and sort to rows, storing the
// result as displayRows ready for rendering.
func (m *DatastoreTableModel) SetData(rows []client.DatastoreUsage) {
	m.allRows = rows
	filtered := filterDatastores(m.allRows, m.search)
	m.displayRows = sortDatastores(filtered, m.sortCol, m.sortDesc)
	m.clampPage(len(m.displayRows))
}

// Update handles keyboard events for sorting, pagination, and search. It
// delegates to the embedded tableModel and re-applies filter/sort when the
// sort column, direction, or search term changes.
func (m DatastoreTableModel) Update(msg tea.Msg) (DatastoreTableModel, tea.Cmd) {
	prevSort := m.sortCol
	prevDesc := m.sortDesc
	prevSearch := m.search

	base, cmd := m.tableModel.Update(msg)
	m.tableModel = base

	if m.sortCol != prevSort || m.sortDesc != prevDesc || m.search != prevSearch {
		filtered := filterDatastores(m.allRows, m.search)
		m.displayRows = sortDatastores(filtered, m.sortCol, m.sortDesc)
	}
	m.clampPage(len(m.displayRows)) // always clamp after any key (e.g. NextPage)
	return m, cmd
}

// renderTable renders the complete "Datastores" section: a header bar
// followed by the lipgloss table body for the current page.
func (m *DatastoreTableModel) renderTable(app *App) string {
	pc := pageCount(len(m.displayRows), m.pageSize)
	hdr := m.renderHeader("Datastores", m.page+1, pc)

	// Column header strings, with a sort direction arrow on the active column.
	headers := make([]string, len(m.columns))
	for i, c := range m.columns {
		if i == m.sortCol {
			arrow := "↓"
			if !m.sortDesc {
				arrow = "↑"
			}
			headers[i] = c.Title + arrow
		} else {
			headers[i] = c.Title
		}
	}

	allIdx := make([]int, len(m.displayRows))
	for i := range m.displayRows {
		allIdx[i] = i
	}
	pageIdx := currentPageIndices(allIdx, m.page, m.pageSize)

	if len(pageIdx) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, hdr, StyleDim.Render("  (no datastores)"))
	}

	sortCol := m.sortCol
	t := ltable.New().
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				if col == sortCol {
					return lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
				}
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray)
			}
			base := lipgloss.NewStyle()
			if row%2 == 0 {
				base = base.Background(colorAlt)
			}
			switch col {
			case 0:
				return base.Foreground(colorWhite)
			case 1:
				return base.Foreground(colorCyan)
			case 2:
				return base.Foreground(colorGreen)
			case 3:
				return base.Foreground(colorWhite)
			case 4:
				// Usage colored by threshold, aligned with the overview cards.
				if row-1 < len(pageIdx) && row-1 >= 0 {
					ds := m.displayRows[pageIdx[row-1]]
					if pct, ok := usagePercent(ds); ok {
						return base.Foreground(severityFg(datastoreSeverity(pct)))
					}
				}
				return base.Foreground(colorWhite)
			default:
				return base.Foreground(colorWhite)
			}
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	if app != nil && app.width > 0 {
		t = t.Width(app.width)
	}

	for _, idx := range pageIdx {
		r := m.displayRows[idx]
		cells := make([]string, len(m.columns))
		for col := range m.columns {
			cells[col] = datastoreCellValue(r, col)
		}
		t = t.Row(cells...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, hdr, t.String())
}

// renderHeader renders the title bar with search/sort/page hints.
func (m *DatastoreTableModel) renderHeader(title string, page, pageCount int) string {
	pageInfo := fmt.Sprintf("Page %d/%d", page, pageCount)

	var right string
	switch {
	case m.searching:
		right = "Search: " + m.input.View()
	case m.search != "":
		right = fmt.Sprintf("filter=%q  %s", m.search, pageInfo)
	default:
		right = fmt.Sprintf("[/: search]  [1-5: sort]  [←→: page]  %s", pageInfo)
	}

	return StyleDim.Render(title + "  " + right)
}

// datastoreCellValue formats a DatastoreUsage field for a given column index.
// The usage column renders "---" when the store reports a zero total, as
// errored stores do.
func datastoreCellValue(r client.DatastoreUsage, col int) string {
	switch col {
	case 0:
		return r.Store
	case 1:
		return gibCell(metric.BytesToGiB(r.Used))
	case 2:
		return gibCell(metric.BytesToGiB(r.Avail))
	case 3:
		return gibCell(metric.BytesToGiB(r.Total))
	case 4:
		if pct, ok := usagePercent(r); ok {
			return format.FormatPercent(pct)
		}
		return "---"
	default:
		return ""
	}
}

func gibCell(v float64, ok bool) string {
	if !ok {
		return "---"
	}
	return format.FormatGiB(v)
}

// usagePercent computes used/total for a datastore row.
func usagePercent(r client.DatastoreUsage) (float64, bool) {
	return metric.Percent(r.Used, r.Total)
}

// filterDatastores returns the rows whose store name contains term
// (case-insensitive). An empty term keeps everything.
func filterDatastores(rows []client.DatastoreUsage, term string) []client.DatastoreUsage {
	if term == "" {
		return rows
	}
	needle := strings.ToLower(term)
	out := make([]client.DatastoreUsage, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Store), needle) {
			out = append(out, r)
		}
	}
	return out
}

// sortDatastores returns a sorted copy of rows.
// Column mapping: 0=Store, 1=Used, 2=Free, 3=Total, 4=Use%.
// col -1 means no sort (preserve order). Ties are broken by Store ascending.
func sortDatastores(rows []client.DatastoreUsage, col int, desc bool) []client.DatastoreUsage {
	out := make([]client.DatastoreUsage, len(rows))
	copy(out, rows)

	if col < 0 {
		return out
	}

	numField := func(r client.DatastoreUsage) float64 {
		switch col {
		case 1:
			return float64(r.Used)
		case 2:
			return float64(r.Avail)
		case 3:
			return float64(r.Total)
		case 4:
			// Errored stores have no total and sort as zero usage.
			v, _ := usagePercent(r)
			return v
		default:
			return 0
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var less bool
		if col == 0 {
			less = strings.ToLower(a.Store) < strings.ToLower(b.Store)
		} else {
			av, bv := numField(a), numField(b)
			if av == bv {
				return strings.ToLower(a.Store) < strings.ToLower(b.Store)
			}
			less = av < bv
		}
		if desc {
			return !less
		}
		return less
	})
	return out
}
