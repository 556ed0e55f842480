package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/debug"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/spf13/cobra"

	"mcp-http-test/mcp/client"
	"mcp-http-test/mcp/config"
	"mcp-http-test/mcp/router"
	"mcp-http-test/mcp/types"
)

var (
	configPath string
	listenAddr string
	probeURL   string
	probeQuery string
	verbose    bool
)

func main() {
	ancli.SetupSlog()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mcp-http-test",
		Short:         "Minimal tool-invocation test server over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file (default: built-in defaults)")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address, overrides the config file")

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Check a running server by calling every method",
		RunE:  runProbe,
	}
	probeCmd.Flags().StringVar(&probeURL, "url", "http://"+config.DefaultListen+config.DefaultPath, "endpoint to probe")
	probeCmd.Flags().StringVar(&probeQuery, "query", "connectivity check", "query sent to the dummy RAG tool")
	probeCmd.Flags().BoolVar(&verbose, "verbose", false, "print every response body")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file",
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	validateCmd.MarkFlagRequired("config")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", types.DefaultServerName, types.DefaultServerVersion)
		},
	}

	root.AddCommand(serveCmd, probeCmd, validateCmd, versionCmd)
	return root
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	return cfg, config.Validate(cfg)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		ancli.Errf("failed to load config: %v\n", err)
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() { shutdown.Monitor(cancel) }()

	server := router.NewServer(router.WithConfig(cfg))
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		ancli.Errf("server exited with error: %v\n", err)
		return err
	}
	return nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	results, err := client.Probe(cmd.Context(), client.New(probeURL), probeQuery)
	if err != nil {
		ancli.Errf("probe aborted: %v\n", err)
		return err
	}

	for _, r := range results {
		if r.OK {
			ancli.Okf("%-28s status=%d\n", r.Step, r.Status)
		} else {
			ancli.Errf("%-28s status=%d: %s\n", r.Step, r.Status, r.Detail)
		}
		if verbose {
			fmt.Fprintln(cmd.OutOrStdout(), debug.IndentedJsonFmt(r.Response))
		}
	}

	if failed := client.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d probe steps failed", len(failed), len(results))
	}
	ancli.Okf("all %d probe steps passed against %s\n", len(results), probeURL)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		ancli.Errf("%v\n", err)
		return err
	}
	ancli.Okf("%s is valid: %s serving %s on %s\n", configPath, cfg.Server.Name, cfg.Path, cfg.Listen)
	return nil
}
