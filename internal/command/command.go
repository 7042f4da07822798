// Package command holds the token-list representation of generated tool
// invocations and the process collaborator that executes them.
package command

import (
	"strings"

	"github.com/alessio/shellescape"
)

// Command is an ordered list of shell fragments. A token may carry a flag and
// its quoted value ("-archivePath '/x'"); empty tokens are placeholders (the
// trailing pipe slot) and are dropped when the command is joined.
type Command []string

// String joins the non-empty tokens with single spaces.
func (c Command) String() string {
	parts := make([]string, 0, len(c))
	for _, tok := range c {
		if tok == "" {
			continue
		}
		parts = append(parts, tok)
	}
	return strings.Join(parts, " ")
}

// Flag renders a flag/value token with the value in single quotes.
func Flag(flag, value string) string {
	return flag + " '" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

// Escape quotes a bare word for the shell.
func Escape(word string) string {
	return shellescape.Quote(word)
}
