package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured access-log line per request to log
// and exposes a request-scoped entry through LogEntry.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return chiMiddleware.RequestLogger(&logFormatter{log: log})
}

type logFormatter struct {
	log *logrus.Logger
}

func (f *logFormatter) NewLogEntry(r *http.Request) chiMiddleware.LogEntry {
	fields := logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"remote_addr": r.RemoteAddr,
	}
	if reqID := chiMiddleware.GetReqID(r.Context()); reqID != "" {
		fields["request_id"] = reqID
	}
	return &logEntry{entry: f.log.WithFields(fields)}
}

type logEntry struct {
	entry *logrus.Entry
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	entry := e.entry.WithFields(logrus.Fields{
		"status":     status,
		"bytes":      bytes,
		"elapsed_ms": float64(elapsed.Microseconds()) / 1000,
	})
	switch {
	case status >= http.StatusInternalServerError:
		entry.Error("request completed")
	case status >= http.StatusBadRequest:
		entry.Warn("request completed")
	default:
		entry.Info("request completed")
	}
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.entry.WithFields(logrus.Fields{
		"panic": v,
		"stack": string(stack),
	}).Error("request panicked")
}

// LogEntry returns the logger bound to r by RequestLogger, or the standard
// logrus logger when none is installed.
func LogEntry(r *http.Request) logrus.FieldLogger {
	if entry, ok := chiMiddleware.GetLogEntry(r).(*logEntry); ok {
		return entry.entry
	}
	return logrus.StandardLogger()
}
