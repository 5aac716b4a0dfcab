package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/pkg"
)

// Recovery recovers from panics, logs the value with its stack trace and
// answers 500. Browser navigations (Accept: text/html) get a plain text body;
// everything else the JSON envelope:
//
//	{"code": 500, "message": "internal server error", "data": null}
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				if acceptsHTML(c) {
					c.Abort()
					c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("500 Internal Server Error"))
					return
				}
				abortJSON(c, http.StatusInternalServerError, "internal server error")
			}
		}()
		c.Next()
	}
}

// abortJSON stops the chain with the console JSON envelope.
func abortJSON(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, pkg.Response{Code: code, Message: message})
}

// acceptsHTML reports whether the Accept header asks for text/html.
func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}
