// Package report renders result previews as text tables, Markdown and HTML.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/jedib0t/go-pretty/v6/table"

	dm "wordmetrics/domain/metrics"
)

// DefaultPreviewRows is how many rows a preview shows unless told otherwise.
const DefaultPreviewRows = 100

func newWriter(t dm.Table, n int) table.Writer {
	head := t.Head(n)

	w := table.NewWriter()
	header := make(table.Row, len(head.Columns))
	for i, c := range head.Columns {
		header[i] = c
	}
	w.AppendHeader(header)

	for _, row := range head.Rows {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = v.Format()
		}
		w.AppendRow(cells)
	}
	return w
}

// RenderText writes the first n rows of t as a boxed text table followed by
// a row count line. A negative n renders every row.
func RenderText(w io.Writer, t dm.Table, n int) error {
	tw := newWriter(t, n)
	tw.SetStyle(table.StyleLight)
	if t.Name != "" {
		tw.SetTitle(t.Name)
	}
	if _, err := fmt.Fprintln(w, tw.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, rowCount(t, n))
	return err
}

func rowCount(t dm.Table, n int) string {
	shown := t.Head(n).Len()
	if shown == t.Len() {
		return fmt.Sprintf("%d rows", t.Len())
	}
	return fmt.Sprintf("showing %d of %d rows", shown, t.Len())
}

// MarkdownTable renders the first n rows of t as a Markdown table.
func MarkdownTable(t dm.Table, n int) string {
	return newWriter(t, n).RenderMarkdown()
}

// Markdown renders run metadata and a preview of each result table.
func Markdown(result *dm.Result, n int) string {
	var b strings.Builder
	b.WriteString("# Processed results\n\n")
	fmt.Fprintf(&b, "- **Run:** `%s`\n", result.RunID)
	fmt.Fprintf(&b, "- **Mode:** %s\n", result.Mode)
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(&b, "- **Started:** %s\n", result.StartedAt)
	}
	if result.Source != "" {
		fmt.Fprintf(&b, "- **Source:** %s\n", result.Source)
	}
	if !result.Fingerprint.IsEmpty() {
		fmt.Fprintf(&b, "- **Fingerprint:** `%s`\n", result.Fingerprint.Short())
	}
	fmt.Fprintf(&b, "- **Rows:** %d in, %d out\n", result.InputRows, result.OutputRows)
	fmt.Fprintf(&b, "- **Classifiers:** %s\n", strings.Join(result.Config.ClassifierColumns, ", "))
	fmt.Fprintf(&b, "- **Duration:** %s\n", result.Duration)

	writeSection(&b, result.Table, n)
	if result.ImpactTable != nil {
		writeSection(&b, *result.ImpactTable, -1)
	}
	return b.String()
}

func writeSection(b *strings.Builder, t dm.Table, n int) {
	fmt.Fprintf(b, "\n## %s\n\n", t.Name)
	if len(t.Columns) == 0 {
		b.WriteString("_No columns._\n")
		return
	}
	b.WriteString(MarkdownTable(t, n))
	fmt.Fprintf(b, "\n\n_%s_\n", rowCount(t, n))
}

// HTML renders Markdown(result, n) as a standalone HTML page.
func HTML(result *dm.Result, n int) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Processed results",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(Markdown(result, n)), p, renderer)
}
