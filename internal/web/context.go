package web

import (
	"net/http"

	"github.com/JonMunkholm/tabproj/internal/core"
)

// withOrigin returns r's context carrying the client address and user agent
// for run logs. RemoteAddr has already been resolved by TrustedRealIP.
func withOrigin(r *http.Request) *http.Request {
	ctx := core.ContextWithOrigin(r.Context(), core.Origin{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	return r.WithContext(ctx)
}
