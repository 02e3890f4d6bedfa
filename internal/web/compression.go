package web

import (
	"log/slog"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// compression returns middleware that gzip encodes responses of at
// least minSize bytes for clients that accept it. CSV exports shrink well.
func compression(minSize int) func(http.Handler) http.Handler {
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		slog.Warn("response compression disabled", "error", err)
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return wrapper(next)
	}
}
