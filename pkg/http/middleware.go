package xhttp

import (
	"time"

	"github.com/nimasrn/ledger-reconciler/pkg/logger"
	"github.com/valyala/fasthttp"
)

// RecoverMiddleware converts handler panics into 500 responses.
func RecoverMiddleware(next RequestHandler) RequestHandler {
	return func(ctx *RequestCtx) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[http] panic recovered", "panic", r, "path", string(ctx.Path()))
				ctx.Error(StatusText(StatusInternalServerError), StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

// RequestLoggerMiddleware logs method, path, status and latency per request.
func RequestLoggerMiddleware(next RequestHandler) RequestHandler {
	return func(ctx *RequestCtx) {
		start := time.Now()
		next(ctx)
		logger.Info("[http] request",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"duration", time.Since(start).String(),
		)
	}
}

// TimeoutMiddleware caps handler execution time.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next RequestHandler) RequestHandler {
		return fasthttp.TimeoutHandler(next, timeout, StatusText(fasthttp.StatusRequestTimeout))
	}
}
