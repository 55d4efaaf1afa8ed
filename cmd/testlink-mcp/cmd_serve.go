// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/testlink-mcp/internal/metrics"
	"github.com/teradata-labs/testlink-mcp/internal/version"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/server"
	"github.com/teradata-labs/testlink-mcp/pkg/mcp/transport"
	"github.com/teradata-labs/testlink-mcp/pkg/testlink"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serverName = "testlink-mcp"

const serverInstructions = `Tools map one-to-one onto the TestLink XML-RPC API.
Test case IDs may be numeric (50140) or external (PREFIX-123).
Tools whose description starts with "Not supported by the TestLink API" always fail without contacting TestLink.`

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP on stdio (default)",
	Long: `Serve the TestLink tool catalog to one MCP client over stdin/stdout.

The server stops when the client closes stdin or on SIGINT/SIGTERM.
Logs go to stderr or --log-file, never to stdout.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	level := zap.NewAtomicLevelAt(parseLogLevel(config.Log.Level))
	logger, err := buildLeveledLogger(config.Log.File, level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting testlink-mcp",
		zap.String("version", version.Get()),
		zap.String("testlink_url", config.URL),
	)

	m := metrics.New()
	bridge, err := newBridge(config, logger, m)
	if err != nil {
		return err
	}

	mcpServer := server.NewMCPServer(serverName, version.Get(), logger,
		server.WithToolProvider(bridge),
		server.WithInstructions(serverInstructions),
	)

	var tasks []backgroundTask
	// An explicit flag or env level wins over the file, so only watch otherwise.
	if path := viper.ConfigFileUsed(); path != "" && !cmd.Flags().Changed("log-level") && os.Getenv(EnvPrefix+"_LOG_LEVEL") == "" {
		reloader, err := newLevelReloader(path, level, logger)
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		} else {
			tasks = append(tasks, reloader.Run)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, mcpServer, transport.NewStdioTransport(os.Stdin, os.Stdout), m, config.Metrics.Addr, logger, tasks...)
}

// newBridge connects the tool catalog to the configured TestLink instance.
func newBridge(cfg *Config, logger *zap.Logger, m *metrics.Metrics) (*server.TestLinkBridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inv, err := testlink.NewXMLRPCInvoker(cfg.URL, cfg.APIKey, logger,
		testlink.WithTimeout(cfg.RPC.Timeout),
		testlink.WithRateLimit(cfg.RPC.RateLimit),
		testlink.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("create TestLink client: %w", err)
	}

	client := testlink.NewClient(inv, logger)
	return server.NewTestLinkBridge(client, logger, server.WithBridgeMetrics(m)), nil
}

// backgroundTask runs next to the MCP loop and must return once its
// context is done.
type backgroundTask func(ctx context.Context) error

// serve runs the MCP loop and, when metricsAddr is set, a Prometheus
// listener next to it. Everything stops when one part fails, ctx is
// cancelled or the client closes its input.
func serve(ctx context.Context, srv *server.MCPServer, t transport.Transport, m *metrics.Metrics, metricsAddr string, logger *zap.Logger, tasks ...backgroundTask) error {
	g, gctx := errgroup.WithContext(ctx)
	serveCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return srv.Serve(serveCtx, t)
	})

	for _, task := range tasks {
		task := task
		g.Go(func() error { return task(serveCtx) })
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		httpSrv := &http.Server{
			Addr:              metricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			logger.Info("metrics listener starting", zap.String("addr", metricsAddr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-serveCtx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		logger.Info("server stopped gracefully")
		return nil
	}
	return err
}
