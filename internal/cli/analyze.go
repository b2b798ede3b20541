package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/eeat/internal/domain/model"
	"github.com/okian/eeat/internal/domain/report"
	"github.com/okian/eeat/pkg/logger"
)

// Analyze defaults.
const (
	DefaultServer       = "http://localhost:9080"
	defaultPollInterval = 2 * time.Second
	defaultWait         = 10 * time.Minute
	requestTimeout      = 30 * time.Second
)

type analyzeOpts struct {
	server   string
	interval time.Duration
	wait     time.Duration
	output   string
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze URL...",
		Short: "Submit URLs to a running server and print their scores",
		Long: `Submits the URLs as one batch, polls until every page has finished and
prints the page breakdown with the merged domain score. All URLs must share a host.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", DefaultServer, "Base URL of the scoring service")
	cmd.Flags().DurationVar(&opts.interval, "interval", defaultPollInterval, "Polling interval")
	cmd.Flags().DurationVar(&opts.wait, "wait", defaultWait, "Maximum time to wait for the batch")
	cmd.Flags().StringVarP(&opts.output, "output", "o", OutputTable, "Output format: table, csv or json")

	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, urls []string, opts analyzeOpts) error {
	if err := checkOutput(opts.output, OutputTable, OutputCSV, OutputJSON); err != nil {
		return err
	}
	client := NewClient(opts.server, requestTimeout)

	var b model.Batch
	if err := client.Post(ctx, "/batches", map[string]any{"urls": urls}, &b); err != nil {
		return err
	}
	log := logger.Get().Named("analyze")
	log.Info(ctx, "batch submitted", logger.String("batch_id", b.ID), logger.Int("pages", len(b.Pages)))

	if err := waitForBatch(ctx, client, b.ID, opts.interval, opts.wait); err != nil {
		return err
	}

	var sum report.Executive
	if err := client.Get(ctx, "/batches/"+b.ID+"/summary", &sum); err != nil {
		return err
	}

	if opts.output == OutputJSON {
		return writeJSON(out, sum)
	}
	if err := printPages(out, opts.output, sum.Pages); err != nil {
		return err
	}
	if opts.output == OutputTable {
		printDomain(out, sum.Host, sum.Domain.Contributors, sum.Domain.Scores)
		if sum.PendingReviews > 0 {
			_, _ = fmt.Fprintf(out, "%d signals need manual review\n", sum.PendingReviews)
		}
	}
	return nil
}

func waitForBatch(ctx context.Context, client *Client, id string, interval, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var b model.Batch
		if err := client.Get(ctx, "/batches/"+id, &b); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", ErrNotFinished, id)
			}
			return err
		}
		if b.Done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrNotFinished, id)
		case <-ticker.C:
		}
	}
}
