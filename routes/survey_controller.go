package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/poll-creator/app"
	"github.com/mbolis/poll-creator/httpx"
	"github.com/mbolis/poll-creator/leanix"
	"github.com/mbolis/poll-creator/log"
	"github.com/mbolis/poll-creator/service"
	"github.com/mbolis/poll-creator/survey"
)

type createResponse struct {
	Success  bool             `json:"success"`
	PollID   string           `json:"poll_id,omitempty"`
	Message  string           `json:"message"`
	Warnings []survey.Warning `json:"warnings,omitempty"`
}

// credentials reads the target workspace from the query string.
func credentials(r *http.Request) leanix.Credentials {
	q := r.URL.Query()
	return leanix.Credentials{
		BaseURL:     q.Get("leanix_url"),
		APIToken:    q.Get("api_token"),
		WorkspaceID: q.Get("workspace_id"),
	}
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := service.CreateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		res, err := app.Service.Create(r.Context(), credentials(r), req)
		if err != nil {
			serviceError(w, r, "survey.create", err)
			return
		}

		render.JSON(w, r, createResponse{
			Success:  true,
			PollID:   res.PollID,
			Message:  "Survey created successfully in LeanIX",
			Warnings: res.Warnings,
		})
	}
}

func CreateSurveyBatch(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := service.BatchRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		res, err := app.Service.CreateBatch(r.Context(), credentials(r), req)
		if err != nil {
			serviceError(w, r, "survey.create_batch", err)
			return
		}

		render.JSON(w, r, res)
	}
}

// GetSurvey relays the poll as returned by the Poll API.
func GetSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poll, err := app.Service.Get(r.Context(), credentials(r), chi.URLParam(r, "poll_id"))
		if err != nil {
			serviceError(w, r, "survey.get", err)
			return
		}

		w.Header().Set("content-type", "application/json")
		w.Write(poll)
	}
}
