package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"jewelshot/internal/http/handlers"
	"jewelshot/internal/middleware"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// SubmitsPerMinute limits photoshoot submissions per client IP.
	SubmitsPerMinute int
	SecureCookies    bool
	DefaultLocale    string
	CountryLookup    middleware.CountryLookup
	StaticDir        string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-Locale"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	limiter := middleware.NewLimiter(opts.SubmitsPerMinute, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(
			middleware.ClientID(opts.SecureCookies),
			middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		)

		r.Get("/health", app.Health)
		r.Get("/config", app.ConfigStatus)
		r.Get("/catalog", app.Catalog)
		r.Get("/metrics", app.Metrics)
		r.Get("/openapi.json", app.APIDocs)
		r.Get("/docs", app.APIDocs)

		r.Get("/state", app.State)
		r.Post("/navigate", app.Navigate)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin", app.SignIn)
			r.Post("/signup", app.SignUp)
			r.Post("/reset", app.ResetPassword)
			r.Post("/signout", app.SignOut)
			r.Post("/session", app.RestoreSession)
		})

		r.Route("/references", func(r chi.Router) {
			r.Get("/", app.ListReferences)
			r.Post("/", app.AddReferences)
			r.Delete("/{index}", app.RemoveReference)
		})

		r.With(middleware.RateLimit(limiter, app.RateLimited)).Post("/photoshoots", app.SubmitPhotoshoot)
		r.Get("/results", app.Results)
		r.Get("/results/archive", app.ResultsArchive)
		r.Get("/projects", app.Projects)

		r.NotFound(app.NotFound)
	})

	if opts.StaticDir != "" {
		r.Handle("/*", app.Static(opts.StaticDir))
	}

	return r
}
