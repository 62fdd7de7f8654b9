package middleware

import (
	"net/http"
	"os"
	"strconv"
)

// MaxBodyMiddleware enforces a maximum request body size read from env var
// MAX_BODY_BYTES (in bytes). The default leaves headroom for multipart
// avatar uploads, which are capped at 5 MiB in the profile handler.
func MaxBodyMiddleware(next http.Handler) http.Handler {
	max := int64(6 << 20) // 6 MiB default
	if s := os.Getenv("MAX_BODY_BYTES"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
			max = v
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, max)
		next.ServeHTTP(w, r)
	})
}
