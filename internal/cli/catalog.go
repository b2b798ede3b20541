package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/eeat/internal/domain/catalog"
)

func newCatalogCmd() *cobra.Command {
	var (
		catalogPath string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the signal catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd.OutOrStdout(), catalogPath, output)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a YAML signal catalog (default: built-in)")
	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format: table, csv, json or yaml")

	return cmd
}

var catalogHeaders = []string{"ID", "Group", "Scope", "Concept", "Weight", "Intents", "Manual", "Signal"} //nolint:gochecknoglobals // fixed header

func runCatalog(out io.Writer, path, output string) error {
	if err := checkOutput(output, OutputTable, OutputCSV, OutputJSON, OutputYAML); err != nil {
		return err
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	switch output {
	case OutputYAML:
		data, err := catalog.Marshal(cat)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case OutputJSON:
		return writeJSON(out, cat.Groups())
	}

	var data [][]string
	for _, g := range cat.Groups() {
		for _, s := range g.Signals {
			intents := make([]string, 0, len(s.Intents))
			for _, in := range s.Intents {
				intents = append(intents, string(in))
			}
			manual := ""
			if s.ManualCheck {
				manual = "yes"
			}
			data = append(data, []string{
				s.ID, g.ID, string(g.Scope), string(s.Concept), strconv.Itoa(s.Weight),
				strings.Join(intents, ","), manual, s.Label,
			})
		}
	}
	if output == OutputCSV {
		return writeCSV(out, catalogHeaders, data)
	}
	if err := renderTable(out, catalogHeaders, data); err != nil {
		return err
	}
	_, err = io.WriteString(out, "catalog "+cat.Version()+": "+strconv.Itoa(cat.Len())+" signals\n")
	return err
}
