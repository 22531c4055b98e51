package router

import (
	"net/http"
	"time"

	"github.com/actuallystonmai/country-directory/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options tunes the middleware stack.
type Options struct {
	Timeout time.Duration
	// CORSOrigins applies to /api only. Empty allows any origin.
	CORSOrigins []string
}

func Setup(h *handler.Handler, log *zap.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))

	// Browser surface
	r.Get("/", h.Index)
	r.Route("/s/{sessionID}", func(r chi.Router) {
		r.Get("/", h.RenderPage)
		r.Post("/toggle", h.SubmitToggle)
		r.Post("/filter", h.SubmitFilter)
		r.Post("/reload", h.SubmitReload)
	})

	// JSON API
	r.Route("/api/sessions", func(r chi.Router) {
		r.Use(corsHandler(opts.CORSOrigins))
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/countries/{country}/toggle", h.ToggleCountry)
			r.Put("/filter", h.SetFilter)
			r.Post("/reload", h.Reload)
		})
	})

	r.Get("/health", h.Health)

	return r
}

// requestLogger writes one access log line per request through zap.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	log = log.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Location"},
		MaxAge:         300,
	})
}
