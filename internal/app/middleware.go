package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/capria-app/capria/internal/auth"
	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/impersonation"
	"github.com/capria-app/capria/internal/observability"
	"github.com/capria-app/capria/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthService    *auth.Service
	Resolver       *identity.Resolver
	Metrics        *observability.Metrics
}

type responseWriterWithCommit struct {
	http.ResponseWriter
	sess          *shared.Session
	manager       *shared.SessionManager
	ctx           context.Context
	req           *http.Request
	headerWritten bool
}

func (w *responseWriterWithCommit) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		_ = w.manager.Commit(w.ctx, w.ResponseWriter, w.req, w.sess)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWithCommit) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// identityMiddleware builds the request actor from the loaded session.
//
// For an authenticated session it validates the database session record,
// attempts a single recovery when the record went missing, and forces a
// sign-out when recovery fails. The impersonation overlay is restored from
// the session payload afterwards, so every downstream handler sees one
// coherent actor for the whole request.
func identityMiddleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess := shared.SessionFromContext(ctx)

			actor := &identity.Actor{}
			if sess != nil && sess.User() != "" {
				userID, err := strconv.ParseInt(sess.User(), 10, 64)
				if err != nil || userID <= 0 {
					cfg.Logger.Warn("session carries malformed user id", slog.String("value", sess.User()))
					cfg.SessionManager.Destroy(sess)
				} else if authed := cfg.authenticate(ctx, sess, userID); authed != nil {
					actor = authed
				}
			}

			ctx = identity.ContextWithActor(ctx, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate validates the session record and resolves the actor.
// Returns nil when the session turned out to be invalid; in that case the
// session has already been destroyed.
func (cfg MiddlewareConfig) authenticate(ctx context.Context, sess *shared.Session, userID int64) *identity.Actor {
	if cfg.AuthService != nil {
		_, err := cfg.AuthService.ValidateSession(ctx, sess.ID)
		if errors.Is(err, shared.ErrSessionDesync) {
			// One bounded recovery attempt, then forced sign-out.
			if recErr := cfg.AuthService.RecoverSession(ctx, sess.ID, userID, cfg.SessionManager.TTL()); recErr != nil {
				cfg.Logger.Warn("session desync, signing out",
					slog.Int64("user_id", userID), slog.Any("error", recErr))
				cfg.SessionManager.Destroy(sess)
				return nil
			}
			cfg.Logger.Info("session recovered after desync", slog.Int64("user_id", userID))
		} else if err != nil {
			cfg.Logger.Error("session validation failed", slog.Any("error", err))
			cfg.SessionManager.Destroy(sess)
			return nil
		}
	}

	snapshot, err := cfg.Resolver.Resolve(ctx, userID)
	if err != nil {
		cfg.Logger.Warn("identity resolution failed, signing out",
			slog.Int64("user_id", userID), slog.Any("error", err))
		cfg.SessionManager.Destroy(sess)
		return nil
	}

	return &identity.Actor{
		Snapshot:      snapshot,
		Impersonation: impersonation.Restore(sess, cfg.Logger),
	}
}

// MiddlewareStack installs the CaprIA middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		FeaturePolicy:         "none",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	sessionMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, err := cfg.SessionManager.Load(ctx, r)
			if err != nil {
				cfg.Logger.Error("failed to load session", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			ctx = shared.ContextWithSession(ctx, sess)

			// Wrap to intercept WriteHeader
			wrapped := &responseWriterWithCommit{
				ResponseWriter: w,
				sess:           sess,
				manager:        cfg.SessionManager,
				ctx:            ctx,
				req:            r.WithContext(ctx),
			}

			next.ServeHTTP(wrapped, r.WithContext(ctx))
		})
	}

	csrfMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			token := r.Header.Get(shared.CSRFHeader)
			if err := cfg.CSRFManager.VerifyToken(r.Context(), sess, token); err != nil {
				cfg.Logger.Warn("csrf validation failed", slog.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		sessionMiddleware,
		identityMiddleware(cfg),
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
		httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
		csrfMiddleware,
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, func(next http.Handler) http.Handler {
			return cfg.Metrics.Middleware(next)
		})
	}
	return middlewares
}
