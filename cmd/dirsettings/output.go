package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	fcolor "github.com/fatih/color"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/dshills/dirsettings/internal/applicator"
	"github.com/dshills/dirsettings/internal/config/notify"
)

const errorSymbol = "✗ "

var (
	setColor    = fcolor.New(fcolor.FgGreen)
	eraseColor  = fcolor.New(fcolor.FgRed)
	skipColor   = fcolor.New(fcolor.FgYellow)
	headerColor = fcolor.New(fcolor.FgCyan, fcolor.Bold)
)

// printError prints the message in red with a ✗ symbol.
func printError(w io.Writer, format string, a ...any) {
	fcolor.New(fcolor.FgRed).Fprintf(w, errorSymbol+format+"\n", a...)
}

func toJSON(v any) string {
	return oj.JSON(v, &ojg.Options{Indent: 2, Sort: true})
}

// printReport prints the keys an apply set and erased.
func printReport(w io.Writer, report applicator.Report, settings map[string]any) {
	headerColor.Fprintln(w, report.Target)

	if !report.Applied() {
		skipColor.Fprintf(w, "  skipped: %s\n", report.Skipped)
		return
	}
	for _, key := range report.Set {
		setColor.Fprintf(w, "  + %s = %s\n", key, oj.JSON(settings[key], &ojg.Options{Sort: true}))
	}
	for _, key := range report.Erased {
		eraseColor.Fprintf(w, "  - %s\n", key)
	}
}

// printChange prints a set or erase applied to one file. Broadcast events
// are skipped since every file's observer receives them.
func printChange(w io.Writer, c notify.Change) {
	switch c.Type {
	case notify.ChangeSet:
		setColor.Fprintf(w, "%s: + %s = %s\n", c.Target, c.Key, oj.JSON(c.NewValue, &ojg.Options{Sort: true}))
	case notify.ChangeErase:
		eraseColor.Fprintf(w, "%s: - %s\n", c.Target, c.Key)
	}
}

// printOrigins prints key → settings file, sorted by key.
func printOrigins(w io.Writer, origins map[string]string) {
	keys := make([]string, 0, len(origins))
	width := 0
	for k := range origins {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "%s%s  %s\n", k, strings.Repeat(" ", width-len(k)), origins[k])
	}
}
