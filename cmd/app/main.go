package main

import (
	"fmt"
	"os"

	"myforum/internal/config"

	"github.com/spf13/cobra"
)

var (
	settings *config.Settings

	reindexOnStart bool
)

var rootCmd = &cobra.Command{
	Use:   "myforum",
	Short: "Forum backend: posts, comments and likes over HTTP",
	Long: `myforum serves a global feed of posts with comments and likes.

Run without arguments to start the HTTP server. Settings are read from the
environment, or from a .env file in the working directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings = config.Load() // بارگذاری تنظیمات از .env
		config.InitLogger(settings.Env)
		return settings.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if config.Logger != nil {
			_ = config.Logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the Redis feed index from the database",
	RunE:  runReindex,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&reindexOnStart, "reindex", false, "Rebuild the feed index before serving")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reindexCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
