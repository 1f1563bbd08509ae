package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"squawk/internal/rules"
)

// RenderRules prints the rule catalog as a table.
func RenderRules(w io.Writer, infos []rules.Info) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Rule", "Severity", "Default", "Title"})
	for _, info := range infos {
		enabled := "on"
		if !info.DefaultEnabled {
			enabled = "off"
		}
		t.AppendRow(table.Row{info.ID, string(info.Severity), enabled, info.Title})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rules)\n", len(infos))
}

// RenderExplain prints the explanation of a rule, highlighting its heading.
func RenderExplain(w io.Writer, text string) {
	heading, body, _ := strings.Cut(text, "\n")
	_, _ = fmt.Fprintln(w, color.New(color.Bold).Sprint(heading))
	_, _ = fmt.Fprint(w, body)
}
