package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/remates-cli/internal/bulletin"
)

var previewJSON bool

var previewCmd = &cobra.Command{
	Use:   "preview <file|url>",
	Short: "List the auction notices of a bulletin without extracting them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := newLoader().Load(cmd.Context(), args[0], "")
		if err != nil {
			return err
		}
		res := bulletin.Preview(doc.Text)

		if previewJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"bulletin_number": doc.Bulletin,
				"entries":         res.Entries,
				"total":           res.Total,
				"candidates":      res.Candidates,
			})
		}
		formatPreview(os.Stdout, doc.Bulletin, res)
		return nil
	},
}

// formatPreview writes one line per candidate notice to out.
func formatPreview(out io.Writer, bulletinNumber string, res bulletin.PreviewResult) {
	if bulletinNumber == "" {
		bulletinNumber = "?"
	}
	_, _ = fmt.Fprintf(out, "Bulletin %s: %d entries, %d auction notices\n\n", bulletinNumber, res.Entries, res.Total)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tREF\tMATRICULA\tCHARS\tPREVIEW")
	_, _ = fmt.Fprintln(w, "-\t---\t---------\t-----\t-------")
	for _, c := range res.Candidates {
		mat := c.Matricula
		if mat == "" {
			mat = "-"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", c.Index, c.Reference, mat, c.Chars, oneLine(c.Preview, 60))
	}
	_ = w.Flush()
}

// oneLine flattens s to a single line of at most n runes.
func oneLine(s string, n int) string {
	r := []rune(s)
	for i, c := range r {
		if c == '\n' || c == '\r' || c == '\t' {
			r[i] = ' '
		}
	}
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return string(r)
}

func init() {
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "print the preview as JSON")
	rootCmd.AddCommand(previewCmd)
}
