package cmd

import (
	"context"
	"fmt"
	"io"

	"treesync/core/config"
	"treesync/core/logger"
	"treesync/core/storage"
	"treesync/feature/document"
	"treesync/feature/stylesheet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	pruneStyles  bool
	bundleStyles bool
)

// stylesCmd is the parent command for stylesheet operations.
var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "Manage published stylesheets",
}

// stylesPublishCmd publishes the styles of a view file.
var stylesPublishCmd = &cobra.Command{
	Use:   "publish VIEW",
	Short: "Publish the style rules of a view to the storage bucket",
	Long: `Collects the styles of VIEW and uploads one object per rule under the
configured prefix.

Examples:
  # Upload the rules
  treesync styles publish page.yaml

  # Upload the rules and the bundle, removing stale rule objects
  treesync styles publish page.yaml --bundle --prune`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		view, err := readView(args[0])
		if err != nil {
			return err
		}

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return err
		}

		p := stylesheet.NewPublisher(client, cfg.Storage.Bucket, cfg.Stylesheet, l)
		return publishStyles(ctx, cmd.OutOrStdout(), p, client, cfg, document.CollectStyles(view), pruneStyles, bundleStyles, l)
	},
}

func init() {
	stylesPublishCmd.Flags().BoolVar(&pruneStyles, "prune", false, "Remove rule objects not in the view")
	stylesPublishCmd.Flags().BoolVar(&bundleStyles, "bundle", false, "Also upload all rules as one bundle")
	stylesCmd.AddCommand(stylesPublishCmd)
	RootCmd.AddCommand(stylesCmd)
}

func publishStyles(ctx context.Context, w io.Writer, p *stylesheet.Publisher, client storage.Client, cfg *config.Config, sheet *stylesheet.Sheet, prune, bundle bool, l *zap.Logger) error {
	report, err := p.Publish(ctx, sheet)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d rules: %d uploaded, %d skipped, %d removed\n", sheet.Len(), report.Uploaded, report.Skipped, report.Removed)

	if prune {
		n, err := p.Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d stale rules pruned\n", n)
	}

	if bundle {
		name := cfg.Stylesheet.BundleName
		if err := stylesheet.PublishBundle(ctx, client, cfg.Storage.Bucket, name, sheet); err != nil {
			return err
		}
		l.Info("Bundle published", zap.String("object", name))
		fmt.Fprintf(w, "bundle written to %s\n", name)
	}
	return nil
}
