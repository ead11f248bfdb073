package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"premium-service/internal/common/config"
	"premium-service/internal/common/logger"
)

const (
	headerRequestID    = "X-Request-ID"
	requestIDKey       = "requestId"
	maxRequestIDLength = 128
)

func withRequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id := string(ctx.Request.Header.Peek(headerRequestID))
		if !validRequestID(id) {
			id = uuid.New().String()
		}
		ctx.SetUserValue(requestIDKey, id)
		ctx.Response.Header.Set(headerRequestID, id)
		next(ctx)
	}
}

// validRequestID accepts up to maxRequestIDLength characters from
// [A-Za-z0-9._:-]. Anything else is replaced with a fresh UUID.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}

func requestID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(requestIDKey).(string)
	return id
}

func withLogging(log logger.Logger, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		next(ctx)

		fields := map[string]interface{}{
			"method":      string(ctx.Method()),
			"path":        string(ctx.Path()),
			"status":      ctx.Response.StatusCode(),
			"duration_ms": time.Since(start).Milliseconds(),
			"requestId":   requestID(ctx),
		}
		// Health checks and scrapes are too chatty for info.
		switch string(ctx.Path()) {
		case "/health", "/ready", "/metrics":
			log.Debug("request completed", fields)
		default:
			log.Info("request completed", fields)
		}
	}
}

// withCORS answers preflight requests itself and decorates every other
// response with the allow headers for cfg.
func withCORS(cfg config.CORSConfig, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(ctx *fasthttp.RequestCtx) {
		origin := string(ctx.Request.Header.Peek("Origin"))
		if allow, ok := allowedOrigin(cfg.AllowedOrigins, origin); ok {
			h := &ctx.Response.Header
			h.Set("Access-Control-Allow-Origin", allow)
			if allow != "*" {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Expose-Headers", headerRequestID)
		}

		if ctx.IsOptions() && len(ctx.Request.Header.Peek("Access-Control-Request-Method")) > 0 {
			ctx.SetStatusCode(fasthttp.StatusOK)
			return
		}
		next(ctx)
	}
}

func allowedOrigin(allowed []string, origin string) (string, bool) {
	for _, o := range allowed {
		if o == "*" {
			return "*", true
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin, true
		}
	}
	return "", false
}
