package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/remates-cli/internal/model"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List bulletin run summaries, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		runs, total, err := st.ListRunSummaries(ctx, limit, offset)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		fmt.Fprintf(os.Stderr, "\nShowing %d-%d of %d runs.\n", offset+1, offset+len(runs), total)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show auction store counters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}
		formatStats(os.Stdout, stats)
		return nil
	},
}

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "List dead-lettered notices",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		failures, err := st.ListFailures(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "failures list")
		}

		if len(failures) == 0 {
			fmt.Fprintln(os.Stderr, "No failures recorded.")
			return nil
		}
		formatFailures(os.Stdout, failures)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the store schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		fmt.Fprintf(os.Stderr, "Store schema is up to date (%s).\n", cfg.Store.Driver)
		return nil
	},
}

// formatRunsList writes a tabular list of run summaries to w.
func formatRunsList(out io.Writer, runs []model.RunSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBULLETIN\tSTATUS\tENTRIES\tPROPS\tDEDUP\tINS\tUPD\tFAIL\tPROCESSED")
	_, _ = fmt.Fprintln(w, "--\t--------\t------\t-------\t-----\t-----\t---\t---\t----\t---------")

	for _, r := range runs {
		b := r.BulletinNumber
		if b == "" {
			b = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			truncateID(r.ID),
			b,
			r.Status,
			r.TotalEntries,
			r.TotalProperties,
			r.Deduplicated,
			r.Inserted,
			r.Updated,
			r.Failed,
			r.ProcessedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatStats writes the store counters to w, provinces sorted by count.
func formatStats(out io.Writer, s *model.Stats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total notices:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Active:\t%d\n", s.Active)
	_, _ = fmt.Fprintf(w, "  First auction:\t%d\n", s.FirstAuction)
	_, _ = fmt.Fprintf(w, "  Second auction:\t%d\n", s.SecondAuction)
	_, _ = fmt.Fprintf(w, "  Third auction:\t%d\n", s.ThirdAuction)
	_, _ = fmt.Fprintf(w, "Finalized:\t%d\n", s.Finalized)

	if len(s.ByProvince) > 0 {
		provinces := make([]string, 0, len(s.ByProvince))
		for p := range s.ByProvince {
			provinces = append(provinces, p)
		}
		sort.Slice(provinces, func(i, j int) bool {
			a, b := provinces[i], provinces[j]
			if s.ByProvince[a] != s.ByProvince[b] {
				return s.ByProvince[a] > s.ByProvince[b]
			}
			return a < b
		})
		_, _ = fmt.Fprintln(w, "By province:")
		for _, p := range provinces {
			_, _ = fmt.Fprintf(w, "  %s:\t%d\n", p, s.ByProvince[p])
		}
	}
	_ = w.Flush()
}

// formatFailures writes dead letters to w.
func formatFailures(out io.Writer, failures []model.FailedRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBULLETIN\tREF\tMATRICULA\tKIND\tERROR\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t---\t---------\t----\t-----\t-------")
	for _, f := range failures {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(f.ID),
			orDash(f.BulletinNumber),
			orDash(f.Reference),
			orDash(f.Matricula),
			f.ErrorKind,
			oneLine(f.Error, 60),
			f.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	runsCmd.Flags().Int("limit", 20, "max runs to list")
	runsCmd.Flags().Int("offset", 0, "runs to skip")
	failuresCmd.Flags().Int("limit", 50, "max failures to list")

	rootCmd.AddCommand(runsCmd, statsCmd, failuresCmd, migrateCmd)
}
