package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docmcp/internal/config"
	"docmcp/internal/http/handler"
	"docmcp/internal/http/middleware"
	"docmcp/internal/otel"
	"docmcp/internal/service"
	"docmcp/internal/tools"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server",
		Long: `Run the MCP tool server over streamable HTTP (POST/GET/DELETE /mcp) or over
stdin/stdout. With the stdio transport all logs are written to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&opts.transport, "transport", "", "MCP transport: http or stdio (overrides MCP_TRANSPORT)")
	return cmd
}

func runServe(parent context.Context, cfg *config.AppConfig) error {
	output := "stdout"
	if cfg.Transport == config.TransportStdio {
		output = "stderr"
	}
	log, err := newLogger(cfg, output)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("store unavailable", zap.String("driver", cfg.Driver), zap.Error(err))
		return err
	}
	defer b.shutdown(log)

	if err := b.migrate(ctx); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.NewDocumentService(b.docs, b.meta, log)
	h, err := tools.NewHandler(svc, log, reg)
	if err != nil {
		return fmt.Errorf("init tool handler: %w", err)
	}
	mcpServer := tools.NewServer(serverName, version, h)

	if cfg.Transport == config.TransportStdio {
		return serveStdio(ctx, mcpServer, log)
	}
	return serveHTTP(ctx, cfg, b.health, mcpServer, reg, log)
}

func newApp(health handler.Pinger, mcpServer *server.MCPServer, reg *prometheus.Registry, log *zap.Logger) (*fiber.App, error) {
	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handler.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	// /mcp is traced by otelhttp inside the adaptor.
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		switch c.Path() {
		case "/mcp", "/metrics", "/healthz":
			return true
		}
		return false
	})))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(prom.Handler())

	handler.RegisterRoutes(app, health, mcpServer, reg)
	return app, nil
}

func serveHTTP(ctx context.Context, cfg *config.AppConfig, health handler.Pinger, mcpServer *server.MCPServer, reg *prometheus.Registry, log *zap.Logger) error {
	app, err := newApp(health, mcpServer, reg, log)
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", addr), zap.String("version", version))
		if err := app.Listen(addr); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("http server shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	return g.Wait()
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer, log *zap.Logger) error {
	stdio := server.NewStdioServer(mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(log.Named("stdio")))

	log.Info("mcp stdio server ready", zap.String("version", version))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}
