// Policybot serves a web page where users upload HR policy PDFs and ask
// questions answered from their contents.
//
// Configuration comes from a .env file, an optional YAML file and
// environment variables. See internal/config for the keys.
//
// Usage:
//
//	# Start the server with defaults (OPENAI_API_KEY must be set)
//	policybot
//
//	# Use a config file and a different port
//	SERVER_HTTP_PORT=8080 policybot serve --config policybot.yaml
package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// options holds command-line flags shared by the server commands.
type options struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	serve := func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err := run(ctx, opts)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	root := &cobra.Command{
		Use:           "policybot",
		Short:         "HR policy question answering server",
		Long:          "policybot indexes uploaded PDF documents and answers questions about them over HTTP.",
		SilenceUsage:  true,
		Version:       version,
		RunE:          serve,
		Args:          cobra.NoArgs,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to a .env file loaded before configuration")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	})
	return root
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "policybot by Fyrsmith Labs\n")
	fmt.Fprintf(w, "Version:    %s\n", version)
	fmt.Fprintf(w, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(w, "Build Date: %s\n", buildDate)
}
