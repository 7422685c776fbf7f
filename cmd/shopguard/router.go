package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	goShield "github.com/MrEthical07/goShield"
	"github.com/MrEthical07/goShield/middleware"
	"github.com/MrEthical07/goShield/privacy"
)

const refreshCookieName = "refresh_token"

type server struct {
	engine *goShield.Engine
	logger *zap.Logger
}

func newRouter(engine *goShield.Engine, logger *zap.Logger, metrics http.Handler, edge middleware.EdgeOptions) http.Handler {
	s := &server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, requestLogger(logger))

	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Edge(engine, edge))

		r.Post("/login", s.login)
		r.Post("/refresh", s.refresh)
		r.Post("/logout", s.logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Guard(engine))
			r.Get("/me", s.me)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(goShield.RoleAdmin))
				r.Post("/anonymize", s.anonymize)
				r.Post("/pseudonymize/{subject}", s.pseudonymize)
			})
		})
	})

	return r
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	pair, err := s.engine.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeTokens(w, pair)
}

func (s *server) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	pair, err := s.engine.RefreshSession(r.Context(), cookie.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeTokens(w, pair)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		if err := s.engine.RevokeSession(r.Context(), cookie.Value); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.setRefreshCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.AuthResultFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": res.UserID,
		"email":   res.Email,
		"role":    string(res.Role),
	})
}

func (s *server) anonymize(w http.ResponseWriter, r *http.Request) {
	var rec privacy.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Anonymize(rec).Record)
}

func (s *server) pseudonymize(w http.ResponseWriter, r *http.Request) {
	var rec privacy.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	res, err := s.engine.Pseudonymize(rec, chi.URLParam(r, "subject"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Record)
}

func (s *server) writeTokens(w http.ResponseWriter, pair *goShield.TokenPair) {
	s.setRefreshCookie(w, pair.RefreshToken, int(time.Until(pair.RefreshExpiresAt).Seconds()))
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": pair.AccessToken,
		"expires_at":   pair.AccessExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *server) setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.engine.ProductionMode(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	switch {
	case goShield.IsUnauthenticated(err):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, goShield.ErrLoginRateLimited):
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
	default:
		s.logger.Error("request_failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http_request",
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
