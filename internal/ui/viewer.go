package ui

import "uetp/internal/report"

// Viewer displays a results document in an interactive TUI
type Viewer interface {
	View(doc *report.Document) error
}
