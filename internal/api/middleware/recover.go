package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dom/taskflow/internal/api/response"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Recoverer turns a handler panic into a logged 500 envelope. With
// exposeDetail the panic value is returned in the envelope's error field.
func Recoverer(exposeDetail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					// the client went away; let net/http drop the connection
					panic(rvr)
				}

				stack := debug.Stack()
				if entry := chiMiddleware.GetLogEntry(r); entry != nil {
					entry.Panic(rvr, stack)
				} else {
					LogEntry(r).WithFields(logrus.Fields{
						"panic": rvr,
						"stack": string(stack),
					}).Error("request panicked")
				}

				env := response.Envelope{Message: "Internal Server Error"}
				if exposeDetail {
					env.Error = fmt.Sprint(rvr)
				}
				response.JSON(w, http.StatusInternalServerError, env)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
