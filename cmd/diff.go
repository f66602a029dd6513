package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"treesync/core/reconcile"
	"treesync/feature/document"

	"github.com/spf13/cobra"
)

var (
	diffFormat string
	diffHTML   bool
)

// diffCmd prints the mutations that turn one view into another.
var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Show the mutations that reconcile one view into another",
	Long: `Mounts OLD into an in-memory document, reconciles it against NEW and
prints every mutating call of the second pass.

Views are YAML or JSON files.

Examples:
  # Text listing of the calls
  treesync diff old.yaml new.yaml

  # JSON report with the rendered result
  treesync diff old.yaml new.yaml --format json --html`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		old, err := readView(args[0])
		if err != nil {
			return err
		}
		next, err := readView(args[1])
		if err != nil {
			return err
		}
		return runDiff(cmd.OutOrStdout(), old, next, diffFormat, diffHTML)
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffFormat, "format", "text", "Output format (text or json)")
	diffCmd.Flags().BoolVar(&diffHTML, "html", false, "Print the reconciled document and its styles")
	RootCmd.AddCommand(diffCmd)
}

func readView(path string) (reconcile.View[document.Item], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return reconcile.View[document.Item]{}, fmt.Errorf("failed to read view: %w", err)
	}
	v, err := document.DecodeView(data)
	if err != nil {
		return reconcile.View[document.Item]{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return v, nil
}

// DiffReport is the JSON output of the diff command.
type DiffReport struct {
	Calls []string        `json:"calls"`
	Stats reconcile.Stats `json:"stats"`
	HTML  string          `json:"html,omitempty"`
	CSS   string          `json:"css,omitempty"`
}

func runDiff(w io.Writer, old, next reconcile.View[document.Item], format string, withHTML bool) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}

	doc := document.NewDocument("body")

	var (
		report  DiffReport
		tracing bool
	)
	adapter := reconcile.WithTrace[document.NodeID, document.Item, document.Node](document.NewAdapter(doc), func(c reconcile.Call) {
		if tracing {
			report.Calls = append(report.Calls, c.String())
		}
	})
	tree := reconcile.NewTree(doc.Root(), reconcile.WithStats(adapter, &report.Stats))

	if err := tree.Sync(old); err != nil {
		return fmt.Errorf("failed to mount old view: %w", err)
	}
	report.Stats = reconcile.Stats{}
	tracing = true
	if err := tree.Sync(next); err != nil {
		return fmt.Errorf("failed to reconcile new view: %w", err)
	}

	if withHTML {
		out, err := doc.HTML(tree.Mount())
		if err != nil {
			return err
		}
		report.HTML = out
		report.CSS = document.CollectStyles(next).Bundle()
	}

	if format == "json" {
		if report.Calls == nil {
			report.Calls = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, c := range report.Calls {
		fmt.Fprintln(w, c)
	}
	fmt.Fprintf(w, "%d creates, %d updates, %d removes, %d inserts, %d swaps\n",
		report.Stats.Creates, report.Stats.Updates, report.Stats.Removes, report.Stats.Inserts, report.Stats.Swaps)
	if withHTML {
		fmt.Fprintln(w, report.HTML)
		fmt.Fprint(w, report.CSS)
	}
	return nil
}
