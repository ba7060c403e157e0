package pizzabot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/pizzabot/pizzabot/internal/app"
	"github.com/pizzabot/pizzabot/internal/seed"
)

func newSeedCommand(env Env) *cobra.Command {
	var (
		exportPath string
		upload     bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reload the menu catalog from the configured seed source",
		Long: `seed replaces the menu catalog with the items of PIZZABOT_SEED_SOURCE.

--export writes the builtin menu as a parquet file instead.
--upload puts the builtin menu into the object store at PIZZABOT_SEED_OBJECT_KEY
together with a dated snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if exportPath != "" {
				if err := seed.WriteFile(exportPath, seed.Builtin()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(env.Out, "exported %d item(s) to %s\n", len(seed.Builtin()), exportPath)
				if !upload {
					return nil
				}
			}

			cfg, err := loadConfig(env, "pizzabot-seed")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rt, err := buildRuntime(ctx, env, cfg, app.Options{Console: env.Err})
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			if upload {
				objects, err := rt.ObjectStore(ctx)
				if err != nil {
					return err
				}
				result, err := seed.Upload(ctx, objects, cfg.Seed.ObjectKey, seed.Builtin(), time.Now())
				if err != nil {
					return err
				}
				rt.Logger.Info("seed uploaded",
					slog.String("key", result.Key),
					slog.String("snapshot_key", result.SnapshotKey),
					slog.Int64("size", result.Size),
					slog.String("etag", result.ETag),
				)
				_, _ = fmt.Fprintf(env.Out, "uploaded %s (snapshot %s)\n", result.Key, result.SnapshotKey)
				return nil
			}

			count, err := rt.Seed(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(env.Out, "loaded %d item(s) from %s\n", count, cfg.Seed.Source)
			return nil
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "write the builtin menu as parquet to this path")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the builtin menu to the object store")
	return cmd
}
