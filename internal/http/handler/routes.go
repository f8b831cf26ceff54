package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docmcp/internal/http/middleware"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes attaches the MCP endpoint, probes and metrics to the provided Fiber app.
func RegisterRoutes(app *fiber.App, store Pinger, mcpServer *server.MCPServer, gatherer prometheus.Gatherer) {
	mcp := MCPHandler(mcpServer)
	app.Post("/mcp", mcp)
	app.Get("/mcp", mcp)
	app.Delete("/mcp", mcp)

	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", MetricsHandler(gatherer))
}

// MCPHandler serves the streamable HTTP MCP transport. Sessions are not tracked;
// every request carries everything needed to answer it. Spans are started from the
// incoming trace headers so tool spans nest under the HTTP request, and the request
// id set by middleware.RequestID is carried into the tool call context.
func MCPHandler(s *server.MCPServer) fiber.Handler {
	h := server.NewStreamableHTTPServer(s,
		server.WithStateLess(true),
		server.WithHTTPContextFunc(requestIDContext),
	)
	return adaptor.HTTPHandler(otelhttp.NewHandler(h, "mcp"))
}

func requestIDContext(ctx context.Context, r *http.Request) context.Context {
	return middleware.WithRequestID(ctx, r.Header.Get(middleware.RequestIDHeader))
}

// HealthCheck pings the store and answers 503 when it is unreachable.
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			env := statusErrors[fiber.StatusServiceUnavailable]
			return writeError(c, fiber.StatusServiceUnavailable, env.Code, env.Message)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// MetricsHandler exposes the metrics collected in gatherer.
func MetricsHandler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
