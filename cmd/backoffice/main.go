// Command backoffice runs one-shot maintenance passes; the scheduler calls
// it on a timer.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"p2p-backoffice/internal/adapter/repository/mysql"
	"p2p-backoffice/internal/app"
	"p2p-backoffice/internal/config"
	"p2p-backoffice/internal/domain/mirror"
	"p2p-backoffice/internal/infrastructure/logger"
)

var Version = "dev"

// opener builds the application graph for one command run.
type opener func(ctx context.Context) (*app.App, error)

func openFromEnv(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger.New(cfg.LogLevel, cfg.LogFormat))
}

func main() {
	if err := newRootCmd(openFromEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "P2P lending back-office maintenance commands",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		migrateCmd(open),
		syncCmd(open),
		importCmd(open),
		healthCmd(open),
		pushConfigCmd(open),
		seedConfigCmd(open),
	)
	return root
}

// withApp opens the graph, runs fn and always releases connections.
func withApp(cmd *cobra.Command, open opener, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(_ context.Context, a *app.App) error {
				if err := mysql.Migrate(a.DB); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables\n", len(mysql.Models()))
				return nil
			})
		},
	}
}

func syncCmd(open opener) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror wallets and loans from the document store or the export endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if source != "mongo" && source != "export" {
				return fmt.Errorf("unknown source %q, want mongo or export", source)
			}
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				var (
					src mirror.Source
					err error
				)
				if source == "mongo" {
					src, err = a.MongoSource(ctx)
				} else {
					src, err = a.ExportSource(ctx)
				}
				if err != nil {
					return err
				}
				rep, err := a.Mirror.Sync(ctx, src)
				if err != nil {
					return err
				}
				a.Log.Info("sync finished", zap.String("source", rep.Source),
					zap.Int("loans_created", rep.Loans.Created), zap.Int("loans_updated", rep.Loans.Updated))
				return printJSON(cmd.OutOrStdout(), rep)
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "mongo", "mirror source (mongo, export)")
	return cmd
}

func importCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Project mirrored loans into applications and disbursements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				rep, err := a.Mirror.Import(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rep)
			})
		},
	}
}

func healthCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the lending server named by the active configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				if err := a.Configs.TestConnection(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "lending server reachable")
				return nil
			})
		},
	}
}

func pushConfigCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "push-config",
		Short: "Send the active configuration to the lending server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				c, err := a.Configs.SyncConfig(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "configuration %d synced as %q\n", c.ID, c.ExternalID)
				return nil
			})
		},
	}
}

func seedConfigCmd(open opener) *cobra.Command {
	var name, serverURL, apiKey string
	cmd := &cobra.Command{
		Use:   "seed-config",
		Short: "Create the default active configuration if none exists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, open, func(ctx context.Context, a *app.App) error {
				url := serverURL
				if url == "" {
					url = a.Cfg.RemoteAPIURL
				}
				c, created, err := a.Configs.Seed(ctx, name, url, apiKey)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "created configuration %d (%s)\n", c.ID, c.Name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "configuration %d (%s) already active\n", c.ID, c.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "main", "configuration name")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "lending server API URL (defaults to REMOTE_API_URL)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "lending server API key")
	return cmd
}
