package tui

import "github.com/charmbracelet/bubbles/table"

// pageLoadedMsg carries one page of rows fetched from the ledger.
type pageLoadedMsg struct {
	err   error
	rows  []table.Row
	view  View
	page  int
	pages int
}
