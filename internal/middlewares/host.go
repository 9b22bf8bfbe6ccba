package middlewares

import (
	"net"
	"net/http"
	"strings"

	"github.com/sbilibin2017/gw-credit-sum/internal/logger"
	"github.com/sbilibin2017/gw-credit-sum/internal/utils"
)

// TrustedHostMiddleware rejects requests whose Host header is not in hosts
// with 400. Entries may be "*" or a "*.example.com" suffix pattern. An empty
// list accepts every host.
func TrustedHostMiddleware(hosts []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(hosts) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := hostname(r.Host)
			if !hostAllowed(hosts, host) {
				logger.Log.Infow("rejected host header", "host", r.Host)
				utils.WriteDetail(w, http.StatusBadRequest, "Invalid host header")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(strings.Trim(hostport, "[]"))
}

func hostAllowed(patterns []string, host string) bool {
	for _, p := range patterns {
		p = strings.ToLower(p)
		switch {
		case p == "*" || p == host:
			return true
		case strings.HasPrefix(p, "*.") && strings.HasSuffix(host, p[1:]):
			return true
		}
	}
	return false
}
