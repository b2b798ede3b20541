package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/ingest"
	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/report"
	"github.com/okian/eeat/internal/domain/scoring"
)

type scoreOpts struct {
	catalogPath string
	output      string
	csv         bool
	top         int
}

func newScoreCmd() *cobra.Command {
	var opts scoreOpts

	cmd := &cobra.Command{
		Use:   "score FILE...",
		Short: "Score saved classifier verdicts offline",
		Long: `Reads classifier verdict JSON files (use - for stdin), scores every page
against the catalog and prints the concept breakdown with the merged domain score.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.csv {
				opts.output = OutputCSV
			}
			return runScore(cmd.InOrStdin(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "Path to a YAML signal catalog (default: built-in)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", OutputTable, "Output format: table, csv or json")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "Shorthand for --output csv")
	cmd.Flags().IntVar(&opts.top, "top", report.DefaultTop, "Recommendations kept per page")

	return cmd
}

// scoredFiles is the JSON shape of the score command.
type scoredFiles struct {
	Pages  []report.PageSummary `json:"pages"`
	Domain scoring.Breakdown    `json:"domain"`
}

func runScore(stdin io.Reader, out io.Writer, files []string, opts scoreOpts) error {
	if err := checkOutput(opts.output, OutputTable, OutputCSV, OutputJSON); err != nil {
		return err
	}
	cat, err := catalog.Load(opts.catalogPath)
	if err != nil {
		return err
	}

	pages := make([]report.PageSummary, 0, len(files))
	brand := make([]model.Ratings, 0, len(files))
	for i, name := range files {
		data, err := readInput(stdin, name)
		if err != nil {
			return err
		}
		c, err := ingest.Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		p := model.Page{ID: i, URL: name}
		ingest.Apply(cat, &p, c)

		s, err := report.SummarizePage(cat, p, opts.top)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		pages = append(pages, s)
		brand = append(brand, p.BrandRatings)
	}

	domain, err := scoring.AggregateDomain(cat, brand)
	if err != nil {
		return err
	}

	switch opts.output {
	case OutputJSON:
		return writeJSON(out, scoredFiles{Pages: pages, Domain: domain})
	case OutputCSV:
		return printPages(out, OutputCSV, pages)
	}
	if err := printPages(out, OutputTable, pages); err != nil {
		return err
	}
	printDomain(out, "", len(brand), domain)
	return nil
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}
