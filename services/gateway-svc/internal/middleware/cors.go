package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"bellman/pkg/config"
)

// Заголовки протокола Connect, которые браузер должен иметь право слать
var connectHeaders = []string{
	"Connect-Protocol-Version",
	"Connect-Timeout-Ms",
	"Traceparent",
	"Tracestate",
	RequestIDHeader,
}

// Заголовки ответа, видимые JS клиенту
var exposedByDefault = []string{
	RequestIDHeader,
	ErrorCodeHeader,
	ErrorFieldHeader,
	RateLimitLimitHeader,
	RateLimitRemainingHeader,
	RetryAfterHeader,
	"Grpc-Status",
	"Grpc-Message",
}

// CORS middleware для ConnectRPC
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	// Предварительно подготавливаем заголовки
	allowedHeaders := prepareAllowedHeaders(cfg.AllowedHeaders)
	allowedMethods := strings.Join(cfg.AllowedMethods, ", ")
	if allowedMethods == "" {
		allowedMethods = "GET, POST, OPTIONS"
	}
	exposedHeaders := strings.Join(mergeHeaders(cfg.ExposedHeaders, exposedByDefault), ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")

			// Без Origin это не CORS запрос
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !originAllowed(cfg.AllowedOrigins, origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Для "*" отражаем origin: иначе браузер отвергнет credentials
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Expose-Headers", exposedHeaders)
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			// Preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
				w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// prepareAllowedHeaders раскрывает wildcard и добавляет заголовки Connect
func prepareAllowedHeaders(headers []string) string {
	for _, h := range headers {
		if h == "*" {
			headers = []string{
				"Accept",
				"Accept-Language",
				"Content-Language",
				"Content-Type",
				"Origin",
				"X-Requested-With",
				"X-User-Agent",
			}
			break
		}
	}
	if len(headers) == 0 {
		headers = []string{"Content-Type"}
	}

	return strings.Join(mergeHeaders(headers, connectHeaders), ", ")
}

// mergeHeaders объединяет списки без дублей (без учёта регистра), порядок сохраняется
func mergeHeaders(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, h := range list {
			key := strings.ToLower(strings.TrimSpace(h))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, strings.TrimSpace(h))
		}
	}
	return out
}
