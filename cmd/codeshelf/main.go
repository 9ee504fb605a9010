// Codeshelf - warehouse location configuration engine
//
// This is the main entry point for the codeshelf command. It turns aisle
// definition files into a facility's Aisle > Bay > Tier > Slot hierarchy,
// assigns LED ranges along each tier, and serves the result over HTTP and
// MQTT to commissioning tools and LED controllers.
//
// Commands:
//   - serve: HTTP API, WebSocket events and the MQTT import listener
//   - import aisles <file.csv>: apply an aisle file from the command line
//   - locate <facility> <location>: print a location's LEDs and controller
//   - receipts list|purge: review or trim the import history
//   - migrate [up|down|status]: manage the database schema
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/codeshelf/Codeshelf-sub002/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path, used when it exists and neither
// --config nor CODESHELF_CONFIG names another.
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run builds the command tree and executes args against it. It is
// separated from main for testability.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// newRootCmd returns the codeshelf command with every subcommand attached.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "codeshelf",
		Short:         "Codeshelf configures warehouse locations and their LED ranges",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("codeshelf %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to the YAML config file (default $CODESHELF_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newLocateCmd(opts))
	root.AddCommand(newReceiptsCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	return root
}

// getConfigPath returns the configuration file path: the --config flag,
// then CODESHELF_CONFIG, then defaultConfigPath when that file exists.
// An empty result means built-in defaults.
func getConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if path := os.Getenv("CODESHELF_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}
