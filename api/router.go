package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/raushankrgupta/media-muse/models"
	"github.com/raushankrgupta/media-muse/utils"
)

// SongResolver produces one song suggestion per request.
type SongResolver interface {
	Resolve(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResult, error)
}

// Captioner writes a caption for a photo.
type Captioner interface {
	GenerateCaption(ctx context.Context, photo models.Photo) (string, error)
}

// ReverseGeocoder resolves coordinates to an address.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Address, error)
}

// Dependencies are the collaborators the HTTP API is built from.
type Dependencies struct {
	Resolver      SongResolver
	Captioner     Captioner
	Geocoder      ReverseGeocoder
	AllowedOrigin string
	RateLimiter   *ClientRateLimiter
	// TrustProxy takes the client address from proxy headers. Enable it only
	// behind a reverse proxy that overwrites them.
	TrustProxy bool
}

// NewRouter registers every route of the API.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	if deps.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(utils.LatencyMiddleware)
	r.Use(CORSMiddleware(deps.AllowedOrigin))

	r.Get("/healthz", HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/languages", LanguagesHandler)
		r.Get("/location", LocationHandler(deps.Geocoder))

		// Model-backed routes cost money, so they are rate limited.
		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.Middleware)
			}
			r.Post("/caption", CaptionHandler(deps.Captioner))
			r.Post("/music", MusicSuggestionHandler(deps.Resolver))
			r.Post("/muse", MuseHandler(deps.Captioner, deps.Resolver))
		})
	})

	return r
}

// HealthHandler reports liveness.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
