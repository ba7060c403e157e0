package pizzabot

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pizzabot/pizzabot/internal/catalog/sqlstore"
	"github.com/pizzabot/pizzabot/internal/migrations"
)

func newMigrateCommand(env Env) *cobra.Command {
	var (
		direction string
		steps     int
		status    bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the catalog schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(env, "pizzabot-migrate")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := sqlstore.Open(ctx, sqlstore.DBConfig{
				Driver:      cfg.Catalog.Driver,
				DSN:         cfg.Catalog.DSN,
				BusyTimeout: cfg.Catalog.BusyTimeout,
			})
			if err != nil {
				return fmt.Errorf("open catalog db: %w", err)
			}
			defer func() { _ = db.Close() }()

			runner := migrations.NewRunner()
			if status {
				statuses, err := runner.Status(ctx, db)
				if err != nil {
					return err
				}
				for _, item := range statuses {
					state := "pending"
					if item.Applied {
						state = "applied"
					}
					_, _ = fmt.Fprintf(env.Out, "%06d %-24s %s\n", item.Version, item.Name, state)
				}
				return nil
			}

			switch direction {
			case "up":
				applied, err := runner.Up(ctx, db, steps)
				if err != nil {
					return fmt.Errorf("migration up failed: %w", err)
				}
				_, _ = fmt.Fprintf(env.Out, "applied %d migration(s)\n", applied)
			case "down":
				rolledBack, err := runner.Down(ctx, db, steps)
				if err != nil {
					return fmt.Errorf("migration down failed: %w", err)
				}
				_, _ = fmt.Fprintf(env.Out, "rolled back %d migration(s)\n", rolledBack)
			default:
				return fmt.Errorf("invalid direction: %s", direction)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "up", "migration direction: up|down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of migration steps; 0 means all for up, 1 for down")
	cmd.Flags().BoolVar(&status, "status", false, "print migration status instead of migrating")
	return cmd
}
