package middleware

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide structured logger.
var Logger *slog.Logger

type scopeKey struct{}

// requestScope carries per-request identifiers into the service layers, so
// any log line written with a request context can be correlated back to the
// request and the trace that produced it.
type requestScope struct {
	requestID string
	traceID   string
	userID    uint
}

// scopedHandler decorates every record with the request scope found in ctx.
type scopedHandler struct {
	slog.Handler
}

func (h *scopedHandler) Handle(ctx context.Context, r slog.Record) error {
	if scope, ok := ctx.Value(scopeKey{}).(requestScope); ok {
		if scope.requestID != "" {
			r.AddAttrs(slog.String("request_id", scope.requestID))
		}
		if scope.traceID != "" {
			r.AddAttrs(slog.String("trace_id", scope.traceID))
		}
		if scope.userID != 0 {
			r.AddAttrs(slog.Uint64("user_id", uint64(scope.userID)))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *scopedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &scopedHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *scopedHandler) WithGroup(name string) slog.Handler {
	return &scopedHandler{Handler: h.Handler.WithGroup(name)}
}

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var inner slog.Handler
	if os.Getenv("APP_ENV") == "production" {
		inner = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		inner = slog.NewTextHandler(os.Stdout, opts)
	}
	Logger = slog.New(&scopedHandler{Handler: inner})
}

// ContextMiddleware copies the request ID, trace ID, and authenticated user
// (when set by earlier middleware) from Fiber locals into the user context.
// Must run after requestid and tracing but before the route handlers.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var scope requestScope
		if rid, ok := c.Locals("requestid").(string); ok {
			scope.requestID = rid
		}
		if tid, ok := c.Locals("traceID").(string); ok {
			scope.traceID = tid
		}
		if uid, ok := c.Locals("userID").(uint); ok {
			scope.userID = uid
		}

		c.SetUserContext(context.WithValue(c.UserContext(), scopeKey{}, scope))
		return c.Next()
	}
}

// StructuredLogger logs one line per request after the handler chain runs.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		attrs := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", len(c.Response().Body())),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			Logger.ErrorContext(c.UserContext(), "request failed", attrs...)
		} else {
			Logger.InfoContext(c.UserContext(), "request", attrs...)
		}
		return err
	}
}
