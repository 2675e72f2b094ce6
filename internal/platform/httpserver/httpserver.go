package httpserver

import (
	"net/http"
	"time"
)

// New builds the public HTTP server. Write and idle timeouts stay generous:
// a complete-credential request holds the connection while up to two OCR
// calls and two validation chains run against external providers.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
