package httpserver

import (
	"net/http"
	"time"
)

// New builds the portal's HTTP server. Handler time is bounded by the
// router's timeout middleware, so only header reads and idle keep-alives are
// capped here.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
