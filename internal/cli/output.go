package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/recommend"
	"github.com/okian/eeat/internal/domain/report"
	"github.com/okian/eeat/internal/domain/scoring"
)

// Output formats.
const (
	OutputTable = "table"
	OutputCSV   = "csv"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Colours by score band.
var (
	excellentColor = color.New(color.FgGreen, color.Bold)
	goodColor      = color.New(color.FgCyan)
	needsWorkColor = color.New(color.FgYellow)
	poorColor      = color.New(color.FgRed, color.Bold)
)

// colorLabel returns the band label of score coloured for a terminal.
func colorLabel(score int) string {
	text := scoring.Label(score)
	switch text {
	case scoring.LabelExcellent:
		return excellentColor.Sprint(text)
	case scoring.LabelGood:
		return goodColor.Sprint(text)
	case scoring.LabelNeedsWork:
		return needsWorkColor.Sprint(text)
	default:
		return poorColor.Sprint(text)
	}
}

func checkOutput(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownOutput, format, strings.Join(allowed, ", "))
}

func renderTable(w io.Writer, headers []string, data [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeCSV(w io.Writer, headers []string, data [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(data); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var pageHeaders = []string{"Page", "URL", "Status", "Intent", "Experience", "Expertise", "Authority", "Trust", "Overall", "Label", "Top Recommendation"} //nolint:gochecknoglobals // fixed header

// pageRow renders a page summary. Pages that did not complete show their
// status and error instead of scores.
func pageRow(s report.PageSummary, colored bool) []string {
	row := []string{strconv.Itoa(s.PageID), s.URL, string(s.Status), string(s.Intent)}
	if s.Status != model.StatusComplete {
		row = append(row, "-", "-", "-", "-", "-", "-", s.Error)
		return row
	}
	for _, c := range model.Concepts {
		row = append(row, percent(s.Scores.Get(c)))
	}
	row = append(row, percent(s.Scores.Overall))
	if colored {
		row = append(row, colorLabel(s.Scores.Overall))
	} else {
		row = append(row, s.Label)
	}
	return append(row, topRecommendation(s.Recommendations))
}

func topRecommendation(recs []recommend.Recommendation) string {
	if len(recs) == 0 {
		return ""
	}
	r := recs[0]
	return fmt.Sprintf("%s %s (%s)", r.Signal.ID, r.Signal.Label, r.Action)
}

func percent(v int) string {
	return strconv.Itoa(v) + "%"
}

// printPages writes page summaries in the given format.
func printPages(w io.Writer, format string, pages []report.PageSummary) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, pages)
	case OutputCSV:
		data := make([][]string, 0, len(pages))
		for _, p := range pages {
			data = append(data, pageRow(p, false))
		}
		return writeCSV(w, pageHeaders, data)
	default:
		data := make([][]string, 0, len(pages))
		for _, p := range pages {
			data = append(data, pageRow(p, true))
		}
		return renderTable(w, pageHeaders, data)
	}
}

// printDomain writes the one-line domain verdict under a table.
func printDomain(w io.Writer, host string, contributors int, b scoring.Breakdown) {
	if host == "" {
		host = "domain"
	}
	_, _ = fmt.Fprintf(w, "%s: Authority %s, Trust %s, overall %s %s (%d pages)\n",
		host,
		percent(b.Get(model.Authority)),
		percent(b.Get(model.Trust)),
		percent(b.Overall),
		colorLabel(b.Overall),
		contributors,
	)
}
