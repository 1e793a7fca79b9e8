package logging

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger is a chi middleware that logs every request to logger.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&httpLogger{logger: logger})
}

type httpLogger struct {
	logger *slog.Logger
}

func (l *httpLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	attrs := []slog.Attr{
		slog.String("@id", middleware.GetReqID(r.Context())),
		slog.Group("request",
			slog.String("method", r.Method),
			slog.String("path", r.RequestURI),
			slog.String("remote_addr", r.RemoteAddr),
		),
	}
	l.logger.LogAttrs(context.TODO(), slog.LevelDebug, "http "+r.Method, attrs...)
	return &httpEntry{logger: l.logger, attrs: attrs}
}

type httpEntry struct {
	logger *slog.Logger
	attrs  []slog.Attr
}

func (e *httpEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	e.logger.LogAttrs(context.TODO(), level,
		"http "+strconv.Itoa(status)+" "+http.StatusText(status),
		append(e.attrs,
			slog.Group("response",
				slog.Int("status", status),
				slog.Int("length", bytes),
				slog.Float64("elapsed_ms", float64(elapsed.Nanoseconds())/1000000.0),
			),
		)...,
	)
}

func (e *httpEntry) Panic(v interface{}, _ []byte) {
	e.logger.LogAttrs(context.TODO(), slog.LevelError, "http panic",
		append(e.attrs, slog.Any("panic", v))...,
	)
}
