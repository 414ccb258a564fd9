// rayquery is an interactive shell and one-shot query runner for RayforceDB.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rayforce-db/rayforce-go"
	"github.com/rayforce-db/rayforce-go/internal/styles"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	flagConfig    string
	flagDSN       string
	flagBatchSize int
)

func main() {
	root := &cobra.Command{
		Use:   "rayquery",
		Short: "Query shell for RayforceDB",
		Long: "rayquery connects to a RayforceDB engine and runs statements against it,\n" +
			"either interactively or one-shot with the exec subcommand.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, cfg, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close() //nolint:errcheck
			return runShell(conn, cfg)
		},
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (default ~/.config/rayquery/config.yaml)")
	root.PersistentFlags().StringVarP(&flagDSN, "dsn", "d", "", "database to connect to")
	root.PersistentFlags().IntVarP(&flagBatchSize, "batch-size", "b", 0, "rows per fetch (0 = engine default)")

	exec := &cobra.Command{
		Use:   "exec <statement>",
		Short: "Run one statement and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, cfg, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close() //nolint:errcheck
			return runOne(conn, cfg, args[0])
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Show rayquery version and compiled backend",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(styles.Bold("rayquery"), version)
			fmt.Println(styles.Dim("backend: " + rayforce.CurrentBackend().String()))
		},
	}

	root.AddCommand(exec, version)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error(err.Error()))
		os.Exit(1)
	}
}

// connect loads the config, applies flag overrides and opens a connection.
func connect() (*rayforce.Connection, Config, error) {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return nil, cfg, err
	}
	if flagDSN != "" {
		cfg.DSN = flagDSN
	}
	if flagBatchSize != 0 {
		cfg.BatchSize = flagBatchSize
	}
	if cfg.Library != "" {
		os.Setenv("RAYFORCE_LIBRARY", cfg.Library) //nolint:errcheck
	}

	conn, err := rayforce.Open(cfg.DSN)
	if err != nil {
		return nil, cfg, err
	}
	return conn, cfg, nil
}
