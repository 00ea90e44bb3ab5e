package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sharetube/jamroom/internal/metrics"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Route("/spotify", func(r chi.Router) {
			r.Get("/login", c.spotifyLogin)
			r.Post("/access-token", c.spotifyAccessToken)
		})

		r.Get("/ws", c.serveWS)

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", c.createRoom)
			r.Route("/{room-id}", func(r chi.Router) {
				r.Get("/", c.getRoom)

				r.Group(func(r chi.Router) {
					r.Use(c.authMw)
					r.Post("/join", c.joinRoom)
					r.Post("/leave", c.leaveRoom)

					r.Route("/actions", func(r chi.Router) {
						r.Get("/search", c.search)
						r.Post("/add-to-queue", c.addToQueue)
						r.Post("/skip-next", c.skipNext)
						r.Post("/skip-previous", c.skipPrevious)
						r.Post("/play", c.play)
						r.Post("/pause", c.pause)
						r.Get("/playlists", c.getPlaylists)
						r.Get("/playlist", c.getPlaylist)
						r.Get("/profile", c.getProfile)
					})
				})
			})
		})
	})

	return r
}
