package command

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

var defaultParameter = regexp.MustCompile(`(-.*) '(.*)'`)

// Rows converts the command into Option/Value rows. Flag tokens of the form
// "-flag 'value'" are split into two columns; any other non-empty token goes
// in the first column with "| " escaped so it cannot break the table.
func Rows(cmd Command) [][2]string {
	rows := make([][2]string, 0, len(cmd))
	for _, tok := range cmd {
		if tok == "" {
			continue
		}
		if m := defaultParameter.FindStringSubmatch(tok); m != nil {
			rows = append(rows, [2]string{m[1], m[2]})
			continue
		}
		rows = append(rows, [2]string{strings.ReplaceAll(tok, "| ", `\| `), ""})
	}
	return rows
}

// PrintTable renders the command as a bordered two-column table.
func PrintTable(w io.Writer, cmd Command, title string) {
	rows := Rows(cmd)
	headings := [2]string{"Option", "Value"}

	widths := [2]int{utf8.RuneCountInString(headings[0]), utf8.RuneCountInString(headings[1])}
	for _, r := range rows {
		for i := range r {
			if n := utf8.RuneCountInString(r[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}
	inner := widths[0] + widths[1] + 3
	if n := utf8.RuneCountInString(title); n > inner {
		widths[1] += n - inner
		inner = n
	}

	sep := "+" + strings.Repeat("-", widths[0]+2) + "+" + strings.Repeat("-", widths[1]+2) + "+"
	full := "+" + strings.Repeat("-", inner+2) + "+"

	fmt.Fprintln(w, full)
	pad := inner - utf8.RuneCountInString(title)
	fmt.Fprintf(w, "| %s%s%s |\n", strings.Repeat(" ", pad/2), color.GreenString(title), strings.Repeat(" ", pad-pad/2))
	fmt.Fprintln(w, sep)
	writeRow(w, headings, widths)
	fmt.Fprintln(w, sep)
	for _, r := range rows {
		writeRow(w, r, widths)
	}
	fmt.Fprintln(w, sep)
}

func writeRow(w io.Writer, r [2]string, widths [2]int) {
	fmt.Fprintf(w, "| %s%s | %s%s |\n",
		r[0], strings.Repeat(" ", widths[0]-utf8.RuneCountInString(r[0])),
		r[1], strings.Repeat(" ", widths[1]-utf8.RuneCountInString(r[1])))
}
