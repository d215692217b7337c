package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/trialviz/internal/chart"
	"github.com/ehr/trialviz/internal/config"
	"github.com/ehr/trialviz/internal/platform/db"
	"github.com/ehr/trialviz/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trialviz-server",
		Short: "Clinical trial visualisation API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(metadataCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfgEnv string) zerolog.Logger {
	if cfgEnv == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chart API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func metadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Print per-domain metadata for the configured data source",
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, _ := cmd.Flags().GetStringSlice("dataset")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

			ctx := context.Background()
			src, err := openSource(ctx, cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			reg := chart.NewRegistry(buildServices(cfg, src, logger, nil)...)
			items := chart.NewMetadataBuilder(reg, logger, cfg.MetadataParallel).Build(ctx, datasets)
			printMetadata(os.Stdout, items)
			return nil
		},
	}
	cmd.Flags().StringSlice("dataset", nil, "Dataset ids to scope to (repeatable or comma separated)")
	return cmd
}

func printMetadata(out *os.File, items []chart.Metadata) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tSTATUS\tEVENTS\tSUBJECTS\tFAMILIES")
	for _, m := range items {
		status := ok("ok")
		if m.Error != "" {
			status = bad("error: " + m.Error)
		}
		families := make([]string, len(m.Families))
		for i, f := range m.Families {
			families[i] = string(f)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", m.Domain, status, m.Events, m.Subjects, strings.Join(families, ","))
	}
	w.Flush()
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Ping the configured data source",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			src, err := openSource(ctx, cfg)
			if err != nil {
				color.Red("%s: %v", cfg.DataSource, err)
				return err
			}
			defer src.Close()

			if err := src.Ping(ctx); err != nil {
				color.Red("%s: %v", src.kind, err)
				return err
			}
			color.Green("%s: ok", src.kind)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the postgres read schema",
	}

	migrator := func(cmd *cobra.Command) (*db.Migrator, func(), error) {
		dir, _ := cmd.Flags().GetString("dir")

		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		pool, err := db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}

		var files fs.FS = migrations.Files
		if dir != "" {
			files = os.DirFS(dir)
		}
		return db.NewMigrator(pool, files), pool.Close, nil
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			m, closeFn, err := migrator(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Printf("Running migrations on schema: %s\n", schema)
			count, err := m.Up(context.Background(), schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			m, closeFn, err := migrator(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := m.Status(context.Background(), schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}

	for _, c := range []*cobra.Command{upCmd, statusCmd} {
		c.Flags().String("schema", "public", "Target schema for migrations")
		c.Flags().String("dir", "", "Read migrations from this directory instead of the embedded set")
		cmd.AddCommand(c)
	}
	return cmd
}
