package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/tugot17/gpu-price-tracker/pkg/stats"
	"github.com/tugot17/gpu-price-tracker/pkg/view"
)

// SeriesInfo is the latest snapshot of one (model, socket) series.
type SeriesInfo struct {
	Name     string
	Snapshot stats.Snapshot
}

type ReportData struct {
	Series  []SeriesInfo
	DataDir string
}

var (
	overviewHeaders = []string{"Series", "Min", "Median", "Mean", "Max", "Available", "Updated"}
	providerHeaders = []string{"Series", "Provider", "Configs", "Min", "Avg"}
	configHeaders   = []string{"Series", "Size", "Configs", "Min/GPU", "Min Total", "Best Deal"}
)

const footer = "\n [ESC] Quit  [1] Overview  [2] Providers  [3] Configurations"

// OverviewRows has one row per series, in the order given.
func OverviewRows(data ReportData) [][]string {
	rows := make([][]string, 0, len(data.Series))
	for _, s := range data.Series {
		ps := s.Snapshot.PriceStats
		a := s.Snapshot.Availability
		rows = append(rows, []string{
			s.Name,
			money(ps.Min),
			money(ps.Median),
			money(ps.Mean),
			money(ps.Max),
			fmt.Sprintf("%d/%d", a.Available, a.Total),
			view.FormatTimestamp(s.Snapshot.Timestamp),
		})
	}
	return rows
}

// ProviderRows lists providers alphabetically within each series.
func ProviderRows(data ReportData) [][]string {
	var rows [][]string
	for _, s := range data.Series {
		for _, name := range view.ProviderNames(s.Snapshot.ByProvider) {
			p := s.Snapshot.ByProvider[name]
			rows = append(rows, []string{s.Name, name, fmt.Sprintf("%d", p.Count), money(p.Min), money(p.Avg)})
		}
	}
	return rows
}

// ConfigRows lists configuration sizes by GPU count within each series.
func ConfigRows(data ReportData) [][]string {
	var rows [][]string
	for _, s := range data.Series {
		for _, key := range view.ConfigKeys(s.Snapshot.ByConfig) {
			c := s.Snapshot.ByConfig[key]
			deal := fmt.Sprintf("%s (%s, %s)", c.BestDeal.Provider, c.BestDeal.Location, c.BestDeal.Socket)
			if c.BestDeal.Spot {
				deal += " spot"
			}
			rows = append(rows, []string{s.Name, key, fmt.Sprintf("%d", c.Count), money(c.MinPerGPU), money(c.MinTotal), deal})
		}
	}
	return rows
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func newTable(headers []string, rows [][]string) *tview.Table {
	table := tview.NewTable().SetBorders(true)
	for i, h := range headers {
		table.SetCell(0, i, tview.NewTableCell(h).SetAlign(tview.AlignCenter))
	}
	for r, row := range rows {
		for c, value := range row {
			align := tview.AlignRight
			if c == 0 || headers[c] == "Provider" || headers[c] == "Best Deal" {
				align = tview.AlignLeft
			}
			table.SetCell(r+1, c, tview.NewTableCell(value).SetAlign(align))
		}
	}
	return table
}

func page(title string, table *tview.Table) *tview.Flex {
	p := tview.NewFlex().SetDirection(tview.FlexRow)
	p.AddItem(tview.NewTextView().SetText(title), 1, 0, false)
	p.AddItem(table, 0, 1, false)
	p.AddItem(tview.NewTextView().SetText(footer), 2, 0, false)
	return p
}

func ShowDashboard(data ReportData) error {
	app := tview.NewApplication()
	pages := tview.NewPages()

	overview := page(fmt.Sprintf("LATEST GPU PRICES (per GPU) - %d series from %s", len(data.Series), data.DataDir),
		newTable(overviewHeaders, OverviewRows(data)))
	providers := page("BY PROVIDER", newTable(providerHeaders, ProviderRows(data)))
	configs := page("BY CONFIGURATION", newTable(configHeaders, ConfigRows(data)))

	pages.AddPage("1", overview, true, true)
	pages.AddPage("2", providers, true, false)
	pages.AddPage("3", configs, true, false)

	container := tview.NewFlex().SetDirection(tview.FlexRow)
	container.AddItem(pages, 0, 1, true)

	container.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc:
			app.Stop()
		case tcell.KeyF1:
			pages.SwitchToPage("1")
		case tcell.KeyF2:
			pages.SwitchToPage("2")
		case tcell.KeyF3:
			pages.SwitchToPage("3")
		}
		switch event.Rune() {
		case '1', '2', '3':
			pages.SwitchToPage(string(event.Rune()))
		}
		return event
	})

	return app.SetRoot(container, true).Run()
}
