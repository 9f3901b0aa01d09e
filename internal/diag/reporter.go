package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// Print writes the bag's diagnostics to w, one per line, optionally
// colorized. The bag is sorted first.
func Print(w io.Writer, b *Bag, colorize bool) {
	b.Sort()
	for _, d := range b.Items() {
		label := d.Severity.String()
		if colorize {
			switch d.Severity {
			case SevError:
				label = errorColor.Sprint(label)
			case SevWarning:
				label = warningColor.Sprint(label)
			default:
				label = infoColor.Sprint(label)
			}
		}
		fmt.Fprintf(w, "%s: %s: %s\n", d.Pos, label, d.Message)
	}
}
