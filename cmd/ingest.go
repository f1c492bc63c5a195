package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/remates-cli/internal/export"
	"github.com/sells-group/remates-cli/internal/ingest"
)

var (
	ingestBulletin string
	ingestPersist  bool
	ingestCSV      string
	ingestXLSX     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|url>",
	Short: "Extract the new auction notices of a bulletin",
	Long:  "Loads a bulletin from a local file, http(s) or ftp URL, extracts every notice not already stored and optionally reconciles the results into the store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "ingest")
		if err != nil {
			return err
		}
		defer env.Close()

		doc, err := env.Loader.Load(ctx, args[0], ingestBulletin)
		if err != nil {
			return err
		}
		zap.L().Info("bulletin loaded",
			zap.String("name", doc.Name),
			zap.String("bulletin", doc.Bulletin),
			zap.Int("chars", len(doc.Text)),
		)

		stream := env.Pipeline.Run(ctx, ingest.Input{
			Text:     doc.Text,
			Bulletin: doc.Bulletin,
			Persist:  ingestPersist,
		})
		defer stream.Stop()

		done, err := consumeEvents(os.Stderr, stream.Events())
		if err != nil {
			return err
		}

		if ingestCSV != "" {
			if err := os.WriteFile(ingestCSV, []byte(done.CSV), 0o644); err != nil {
				return eris.Wrapf(err, "ingest: write %s", ingestCSV)
			}
		}
		if ingestXLSX != "" {
			if err := export.SaveXLSX(ingestXLSX, done.Data); err != nil {
				return err
			}
		}

		formatCompletion(os.Stdout, done)
		if done.Cancelled {
			return eris.New("ingest: run cancelled before completion")
		}
		return nil
	},
}

// consumeEvents drains events, printing progress to w, until the terminal
// event. An error event becomes the returned error.
func consumeEvents(w io.Writer, events <-chan ingest.Event) (*ingest.CompleteEvent, error) {
	for e := range events {
		switch ev := e.(type) {
		case ingest.TotalEvent:
			_, _ = fmt.Fprintf(w, "%d notices: %d already stored, %d to extract in %d batches\n",
				ev.Total, ev.Existing, ev.ToExtract, ev.Batches)
		case ingest.BatchStartEvent:
			_, _ = fmt.Fprintf(w, "batch %d/%d: %s\n", ev.Batch, ev.TotalBatches, ev.Info)
		case ingest.ProgressEvent:
			_, _ = fmt.Fprintf(w, "  %s\n", ev.Info)
		case ingest.RecordErrorEvent:
			_, _ = fmt.Fprintf(w, "  [%s] record %d (%s): %s\n", ev.Type, ev.Record, ev.Reference, ev.Error)
			if ev.Diagnostic != "" {
				_, _ = fmt.Fprintf(w, "    %s\n", ev.Diagnostic)
			}
		case ingest.ErrorEvent:
			return nil, eris.New(ev.Message)
		case ingest.CompleteEvent:
			return &ev, nil
		}
	}
	return nil, eris.New("ingest: stream ended without a completion event")
}

// formatCompletion writes the run counters to out.
func formatCompletion(out io.Writer, c *ingest.CompleteEvent) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Notices:\t%d\n", c.Summary.Total)
	_, _ = fmt.Fprintf(w, "Already stored:\t%d\n", c.TotalExisting)
	_, _ = fmt.Fprintf(w, "Sent to AI:\t%d\n", c.Summary.SentToAI)
	_, _ = fmt.Fprintf(w, "Extracted:\t%d\n", c.Summary.Extracted)
	_, _ = fmt.Fprintf(w, "Errors:\t%d\n", c.Summary.Errors)
	_, _ = fmt.Fprintf(w, "AI calls saved:\t%d\n", c.Summary.AICallsSaved)
	if c.Stats.LookupFailed {
		_, _ = fmt.Fprintln(w, "Dedup lookup:\tfailed, every notice was extracted")
	}
	if c.Persist != nil {
		_, _ = fmt.Fprintf(w, "Inserted:\t%d\n", c.Persist.Inserted)
		_, _ = fmt.Fprintf(w, "Updated:\t%d\n", c.Persist.Updated)
		_, _ = fmt.Fprintf(w, "Failed:\t%d\n", c.Persist.Failed)
		_, _ = fmt.Fprintf(w, "Run status:\t%s\n", c.Persist.Summary.Status)
	}
	if c.Cancelled {
		_, _ = fmt.Fprintln(w, "Cancelled:\tyes")
	}
	_ = w.Flush()
}

func init() {
	ingestCmd.Flags().StringVar(&ingestBulletin, "bulletin", "", "bulletin number (default inferred from the file name or text)")
	ingestCmd.Flags().BoolVar(&ingestPersist, "persist", false, "reconcile extracted notices into the store")
	ingestCmd.Flags().StringVar(&ingestCSV, "csv", "", "write extracted notices to this CSV file")
	ingestCmd.Flags().StringVar(&ingestXLSX, "xlsx", "", "write extracted notices to this XLSX file")
	rootCmd.AddCommand(ingestCmd)
}
