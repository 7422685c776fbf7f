package middleware

import (
	"errors"
	"maps"
	"net"
	"net/http"
	"strings"

	goShield "github.com/MrEthical07/goShield"
)

// DefaultSecurityHeaders are applied to every response passing through Edge.
var DefaultSecurityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Permissions-Policy":      "camera=(), microphone=(), geolocation=()",
	"Content-Security-Policy": "default-src 'self'; frame-ancestors 'none'",
}

const hstsValue = "max-age=63072000; includeSubDomains"

// EdgeOptions tunes Edge. The zero value follows the defaults.
type EdgeOptions struct {
	// TrustForwardedFor keys admission on the first X-Forwarded-For hop. Enable it only
	// behind a proxy that overwrites the header; otherwise clients choose their own key.
	TrustForwardedFor bool
	// SecurityHeaders replaces DefaultSecurityHeaders when non-nil.
	SecurityHeaders map[string]string
	// DisableCSRFCookie turns off CSRF cookie issuance.
	DisableCSRFCookie bool
}

// Edge is the admission layer. Each request is counted against the client address;
// over-limit requests get 429 and a limiter outage gets 503, both without reaching next.
// Admitted requests without a CSRF cookie get a fresh one.
func Edge(engine *goShield.Engine, opts EdgeOptions) func(http.Handler) http.Handler {
	headers := maps.Clone(DefaultSecurityHeaders)
	if opts.SecurityHeaders != nil {
		headers = maps.Clone(opts.SecurityHeaders)
	}
	if engine != nil && engine.ProductionMode() {
		if _, ok := headers["Strict-Transport-Security"]; !ok {
			headers["Strict-Transport-Security"] = hstsValue
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range headers {
				w.Header().Set(k, v)
			}
			if engine == nil {
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}

			addr := ClientAddress(r, opts.TrustForwardedFor)
			ctx := goShield.WithClientIP(r.Context(), addr)

			if err := engine.Admit(ctx, addr); err != nil {
				if errors.Is(err, goShield.ErrRateLimited) {
					http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
					return
				}
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}

			if !opts.DisableCSRFCookie {
				if err := issueCSRFCookie(w, r, engine); err != nil {
					http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func issueCSRFCookie(w http.ResponseWriter, r *http.Request, engine *goShield.Engine) error {
	cfg := engine.CSRFConfig()
	if c, err := r.Cookie(cfg.CookieName); err == nil && c.Value != "" {
		return nil
	}

	token, err := engine.IssueCSRFToken()
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   engine.ProductionMode(),
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ClientAddress returns the first X-Forwarded-For hop when trustForwarded is set and the
// header is present, otherwise the host part of RemoteAddr.
func ClientAddress(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
