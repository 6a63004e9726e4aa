package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/mbolis/poll-creator/app"
	"github.com/mbolis/poll-creator/routes/middlewares"
)

const Version = "1.0.0"

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Get("/", Info)
	root.Get("/health", Health)
	root.Method(http.MethodGet, "/metrics", app.Metrics.Handler())

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/validate", ValidateSurvey(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Post("/surveys/create", CreateSurvey(app))
		r.Post("/surveys/create-batch", CreateSurveyBatch(app))
		r.Get("/surveys/{poll_id}", GetSurvey(app))

		r.Get("/submissions", ListSubmissions(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func Info(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"service": "LeanIX Survey Creator",
		"version": Version,
		"endpoints": map[string]string{
			"validate":     "/api/validate",
			"create":       "/api/surveys/create",
			"create_batch": "/api/surveys/create-batch",
			"get":          "/api/surveys/{poll_id}",
		},
	})
}

func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}
