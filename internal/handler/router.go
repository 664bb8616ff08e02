package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/moviweb/internal/metrics"
	"github.com/hitoshi/moviweb/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Service       MovieServiceInterface
	HealthChecker HealthChecker
	Logger        *slog.Logger
	Collector     metrics.MetricsCollector
	Gatherer      prometheus.Gatherer
	RateLimiter   *middleware.RateLimiter
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → RateLimit
//
// /metrics はレート制限の外に配置する（スクレイプが制限に食われないようにする）。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))

	movieHandler := NewMovieHandler(deps.Service)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// 監視系ルート
	r.Get("/health", healthHandler.Check)
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// アプリケーションルート
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/", movieHandler.Home)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", movieHandler.ListUsers)
			r.Get("/add", movieHandler.AddUserForm)
			r.Post("/add", movieHandler.AddUser)

			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", movieHandler.UserMovies)
				r.Get("/add_movie", movieHandler.AddMovieForm)
				r.Post("/add_movie", movieHandler.AddMovie)
				r.Get("/update/{movieID}", movieHandler.UpdateMovieForm)
				r.Post("/update/{movieID}", movieHandler.UpdateMovie)
				r.Post("/delete/{movieID}", movieHandler.DeleteMovie)
			})
		})
	})

	r.NotFound(movieHandler.NotFound)

	return r
}
