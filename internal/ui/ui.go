package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"paisometer/internal/alerts"
	"paisometer/internal/models"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	blue   = color.New(color.FgBlue)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
)

// Printer writes coloured output to w. Colour follows color.NoColor.
type Printer struct {
	w io.Writer
}

// New creates a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Header prints a formatted header
func (p *Printer) Header(text string) {
	line := strings.Repeat("=", 60)
	green.Fprintf(p.w, "\n%s\n", line)
	green.Fprintf(p.w, "%-60s\n", center(text, 60))
	green.Fprintf(p.w, "%s\n\n", line)
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	green.Fprintf(p.w, "  → %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message
func (p *Printer) Info(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "  → %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	yellow.Fprintf(p.w, "  ⚠ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	red.Fprintf(p.w, "Error: %s\n", fmt.Sprintf(format, args...))
}

// Parsed prints one detected transaction.
func (p *Printer) Parsed(t models.ParsedTransaction) {
	p.line(t.ID, t.Time(), t.Type, t.Amount.StringFixed(2), t.Merchant, "")
}

// Pending prints one queued transaction with its category.
func (p *Printer) Pending(t models.QueuedTransaction) {
	p.line(t.ID, t.Time(), t.Type, t.Amount.StringFixed(2), t.Merchant, t.Category)
}

// Ledger prints one ledger entry.
func (p *Printer) Ledger(t models.LedgerTransaction) {
	label := t.Merchant
	if label == "" {
		label = t.Note
	}
	p.line(t.ID, t.Time(), t.Type, t.Amount.StringFixed(2), label, t.Category)
}

// Alert prints a budget alert.
func (p *Printer) Alert(a alerts.Alert) {
	c := yellow
	if a.Level != alerts.Caution {
		c = red
	}
	c.Fprintf(p.w, "  ! %s\n", a.Title)
	fmt.Fprintf(p.w, "    %s\n", a.Message)
}

func (p *Printer) line(id string, at time.Time, t models.TransactionType, amount, label, category string) {
	sign, c := "-", red
	if t == models.TypeIncome {
		sign, c = "+", green
	}
	fmt.Fprintf(p.w, "%s  ", at.Format("2006-01-02 15:04"))
	c.Fprintf(p.w, "%s₹%-10s", sign, amount)
	fmt.Fprintf(p.w, " %-30s", label)
	if category != "" {
		blue.Fprintf(p.w, " [%s]", category)
	}
	faint.Fprintf(p.w, " %s\n", id)
}

// center centers text within a given width
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
