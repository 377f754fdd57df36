package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"waste-collection-service/internal/adapters/repositories"
	"waste-collection-service/internal/app"
	"waste-collection-service/internal/config"
	"waste-collection-service/internal/platform/db"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env holds what every subcommand needs; it is filled by the root PersistentPreRunE.
type env struct {
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "wastectl",
		Short:         "Waste collection operations CLI",
		Long:          `wastectl manages the waste collection database, model and fleet plans using the same environment as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := obs.NewLogger(cfg.LogLevel, cfg.LogDev)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	rootCmd.AddCommand(
		newMigrateCmd(e),
		newSeedCmd(e),
		newRetrainCmd(e),
		newPredictCmd(e),
		newPlanCmd(e),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(e, func(conn *sql.DB, dialect db.Dialect) error {
				if err := repositories.InitSchema(cmd.Context(), conn, dialect); err != nil {
					return err
				}
				e.logger.Info("schema ready", zap.String("driver", e.cfg.DBDriver))
				return nil
			})
		},
	}
}

func newSeedCmd(e *env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load neighborhoods, containers, users, vehicles and collection history from JSON",
		Long: `Upsert reference data from a JSON seed file.

Examples:
  # Seed from the bundled sample data
  wastectl seed --file data/seed.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = e.cfg.SeedPath
			}
			if file == "" {
				return fmt.Errorf("seed: --file or SEED_PATH is required")
			}
			return withDB(e, func(conn *sql.DB, dialect db.Dialect) error {
				if err := repositories.InitSchema(cmd.Context(), conn, dialect); err != nil {
					return err
				}
				if err := repositories.SeedFromJSON(cmd.Context(), conn, dialect, file); err != nil {
					return err
				}
				e.logger.Info("seed applied", zap.String("path", file))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "seed JSON path (defaults to SEED_PATH)")
	return cmd
}

func newRetrainCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Train a new fill classifier and publish it as the active snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), e, func(a *app.App) error {
				snap, err := a.Retrainer.Retrain(cmd.Context(), services.TriggerManual)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]any{
					"version":        snap.Version,
					"sample_count":   snap.SampleCount,
					"train_accuracy": snap.TrainAccuracy,
					"test_accuracy":  snap.TestAccuracy,
					"trained_at":     snap.TrainedAt,
				})
			})
		},
	}
}

func newPredictCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <container-id>",
		Short: "Predict whether a container is full with the active snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("predict: invalid container id %q", args[0])
			}
			return withApp(cmd.Context(), e, func(a *app.App) error {
				p, err := a.Predictor.Predict(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]any{
					"container_id":     p.Container.ContainerID,
					"neighborhood":     p.Neighborhood.Name,
					"fill_probability": p.FillProbability,
					"is_full":          p.IsFull,
					"confidence":       p.Confidence,
					"model_version":    p.ModelVersion,
				})
			})
		},
	}
}

func newPlanCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Assign eligible containers to active vehicles and print the routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), e, func(a *app.App) error {
				plan, err := a.Planner.Plan(cmd.Context())
				if err != nil {
					return err
				}

				s := plan.Summary
				cmd.Printf("vehicles %d/%d  containers %d/%d  distance %.2f km  time %.2f h\n",
					s.VehiclesUsed, s.ActiveVehicles,
					s.AssignedContainers, s.EligibleContainers,
					s.TotalDistanceKm, s.TotalTimeHours,
				)
				for _, r := range plan.Routes {
					cmd.Printf("  %-12s %-6s stops=%-3d %7.2f km %6.0f min  load=%.2ft (%.1f%%)  [%s]\n",
						r.Vehicle.Plate, r.Vehicle.Type, len(r.Stops),
						r.Result.DistanceKm, r.Result.DurationMin,
						r.LoadTons, r.CapacityUsage, r.Result.Source,
					)
				}
				return nil
			})
		},
	}
}

func withDB(e *env, fn func(conn *sql.DB, dialect db.Dialect) error) error {
	conn, err := db.Open(e.cfg.DBDriver, e.cfg.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(conn, db.Dialect(e.cfg.DBDriver))
}

func withApp(ctx context.Context, e *env, fn func(a *app.App) error) error {
	a, err := app.Open(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
