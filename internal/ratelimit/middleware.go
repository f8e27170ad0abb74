package ratelimit

import (
	"errors"
	"net"
	"net/http"
)

// Middleware gates every request through the limiter, keyed by the client
// address. Rejected requests get a fixed 429 plaintext body and never reach
// the handlers behind it.
func (l *Limiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := l.Acquire(r.Context(), ClientKey(r))
			if err != nil {
				if errors.Is(err, ErrRejected) {
					w.Header().Set("Content-Type", "text/plain; charset=utf-8")
					w.WriteHeader(http.StatusTooManyRequests)
					w.Write([]byte("Too many requests!"))
				}
				// A canceled context means the client went away while
				// queued; there is nobody left to answer.
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientKey derives the limiter key from the request's remote address,
// falling back to a single shared key when the address is unknown.
func ClientKey(r *http.Request) string {
	addr := r.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if addr == "" {
		return "global"
	}
	return addr
}
