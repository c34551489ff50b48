package http

import (
	"net/http"

	"nextrole/internal/application"
	"nextrole/internal/auth"
	"nextrole/internal/config"
	"nextrole/internal/http/handler"
	mw "nextrole/internal/http/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Config       config.Config
	Log          logrus.FieldLogger
	Applications *application.Service

	// Users and JWT are required when Config.TokenAuth() is true.
	Users auth.Users
	JWT   *auth.JWT

	// Metrics is optional.
	Metrics *mw.Metrics
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.AllowCredentials, cfg.Auth.IdentityHeader))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if d.Metrics != nil && cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, d.Metrics.Handler())
	}

	if cfg.TokenAuth() {
		ah := handler.NewAuthHandler(d.Users, d.JWT, d.Log)
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
	}

	requireIdentity := auth.RequireIdentity(identityResolver(cfg, d.JWT))

	me := &handler.MeHandler{}
	r.With(requireIdentity).Get("/me", me.Me)

	var conflicts prometheus.Counter
	if d.Metrics != nil {
		conflicts = d.Metrics.Conflicts
	}
	jobs := handler.NewApplicationHandler(d.Applications, d.Log, conflicts)

	r.Route("/jobs", func(r chi.Router) {
		r.Use(requireIdentity)

		r.Get("/", jobs.List)
		r.Post("/", jobs.Create)
		r.Get("/stats", jobs.Stats)
		r.Delete("/all", jobs.DeleteAll)

		r.Get("/{id}", jobs.Get)
		r.Put("/{id}", jobs.UpdateStatus)
		r.Delete("/{id}", jobs.Delete)
	})

	return r
}

func identityResolver(cfg config.Config, jwtSvc *auth.JWT) auth.Resolver {
	header := auth.HeaderResolver{Header: cfg.Auth.IdentityHeader}
	switch cfg.Auth.Mode {
	case config.AuthJWT:
		return auth.BearerResolver{JWT: jwtSvc}
	case config.AuthEither:
		return auth.EitherResolver{Bearer: auth.BearerResolver{JWT: jwtSvc}, Header: header}
	default:
		return header
	}
}
