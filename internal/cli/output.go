package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/rshade/pagerkit/internal/config"
)

const (
	// tabPadding is the column gap of table output.
	tabPadding = 2
	yamlIndent = 2

	tableTimeLayout = "2006-01-02 15:04"
)

//nolint:gochecknoglobals // Shared lipgloss style.
var queryTitleStyle = lipgloss.NewStyle().Bold(true)

// renderResults writes results in format (table, json or yaml).
func renderResults(w io.Writer, format string, results []queryResult) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatTable, "":
		return renderTable(w, results)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func renderTable(w io.Writer, results []queryResult) error {
	p := message.NewPrinter(language.English)

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := "All items"
		if r.Query != "" {
			title = fmt.Sprintf("Query %q", r.Query)
		}
		fmt.Fprintln(w, queryTitleStyle.Render(title))

		tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(tw, "ID\tKIND\tCREATED\tTITLE")
		fmt.Fprintln(tw, "--\t----\t-------\t-----")
		for _, it := range r.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Kind, it.CreatedAt.UTC().Format(tableTimeLayout), it.Title)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		footer := p.Sprintf("Showing %d of %d items, %d pages loaded",
			len(r.Items), r.Pagination.TotalItems, r.Pagination.PagesLoaded)
		switch {
		case r.Partial:
			footer += ", stopped after a failed page"
		case r.Pagination.Exhausted:
			footer += ", end of results"
		}
		fmt.Fprintln(w, footer)
	}
	return nil
}
