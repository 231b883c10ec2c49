package handlers

import (
	"log"
	"net/http"
	"time"

	"shiritori/internal/security"
)

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %v", r.Method, r.URL.Path, security.GetClientIP(r), time.Since(start))
	})
}

// RateLimit rejects requests over the per-IP budget. Applied to the
// oracle-backed endpoints, which fan out to a metered AI API.
func RateLimit(limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(security.GetClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, slow down", "", nil)
			return
		}
		next(w, r)
	}
}
