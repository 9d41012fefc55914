package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"uetp/internal/domain"
	"uetp/internal/report"
)

// FailsViewer displays the failures of the last run in an interactive
// TUI. Resolved marks are written back to the results file.
type FailsViewer struct {
	jsonPath string
}

// NewFailsViewer creates a new FailsViewer over the given results file
func NewFailsViewer(jsonPath string) *FailsViewer {
	return &FailsViewer{jsonPath: jsonPath}
}

// View displays the document's failures in an interactive TUI
func (v *FailsViewer) View(doc *report.Document) error {
	// Pointers into the document so resolved toggles persist on save
	var failures []*domain.TestOutcome
	for i := range doc.Suites {
		for j := range doc.Suites[i].Outcomes {
			if doc.Suites[i].Outcomes[j].Bad() {
				failures = append(failures, &doc.Suites[i].Outcomes[j])
			}
		}
	}

	if len(failures) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	// Track resolved test cases (by index), seeded from the file
	resolved := make(map[int]bool)
	for i, failure := range failures {
		if failure.Resolved {
			resolved[i] = true
		}
	}

	saveResolvedStatus := func() error {
		for i, failure := range failures {
			failure.Resolved = resolved[i]
		}
		return report.SaveDocument(v.jsonPath, doc)
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	getListItemText := func(index int) string {
		failure := failures[index]
		if resolved[index] {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, failure.Name)
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", index+1, failure.Name)
	}

	updateListItem := func(index int) {
		if index < 0 || index >= list.GetItemCount() {
			return
		}
		list.SetItemText(index, getListItemText(index), "")
	}

	for i := range failures {
		list.AddItem(getListItemText(i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Stats header on top of the details pane
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	countUnresolved := func() int {
		count := 0
		for i := range failures {
			if !resolved[i] {
				count++
			}
		}
		return count
	}

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Test Failures (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ",
			len(failures), countUnresolved(),
		))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(failures) {
			statsView.SetText(formatFailureStats(failures[index]))
			detailsView.SetText(formatFailureDetails(failures[index]))
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(failures) {
					resolved[index] = !resolved[index]
					updateListItem(index)
					updateHeader()
					updateDetails()
					if err := saveResolvedStatus(); err != nil {
						_ = err
					}
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

// formatFailureDetails formats one failure using tview color tags
func formatFailureDetails(o *domain.TestOutcome) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "[red]✗ Test: %s[white]\n\n", o.Name)
	fmt.Fprintf(w, "[cyan]Suite: %s (%s)[white]\n", o.Suite, o.Category)
	fmt.Fprintf(w, "[yellow]Status: %s[white]\n", o.Status)
	fmt.Fprintf(w, "[yellow]Duration: %s[white]\n", o.Duration)
	if o.RetryCount > 0 {
		fmt.Fprintf(w, "[yellow]Connect retries: %d[white]\n", o.RetryCount)
	}
	fmt.Fprintf(w, "\n")

	if o.Error != "" {
		fmt.Fprintf(w, "[yellow]Error:[white]\n%s\n", o.Error)
	}

	w.Flush()
	return builder.String()
}

// formatFailureStats formats the stats header above the details pane
func formatFailureStats(o *domain.TestOutcome) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[cyan]test:[white] [yellow]%s[white]::[yellow]%s[white]", o.Suite, o.Name))
	builder.WriteString("\n")
	return builder.String()
}
