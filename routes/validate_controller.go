package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/poll-creator/app"
	"github.com/mbolis/poll-creator/httpx"
	"github.com/mbolis/poll-creator/log"
	"github.com/mbolis/poll-creator/model"
	"github.com/mbolis/poll-creator/survey"
)

type validateRequest struct {
	JSONInput *string `json:"json_input"`
}

type validateResponse struct {
	Valid       bool             `json:"valid"`
	Message     string           `json:"message"`
	SurveyInput *model.Survey    `json:"survey_input,omitempty"`
	Error       string           `json:"error,omitempty"`
	Errors      []*survey.Issue  `json:"errors,omitempty"`
	Details     *survey.Details  `json:"details,omitempty"`
	Warnings    []survey.Warning `json:"warnings,omitempty"`
}

// ValidateSurvey checks a survey definition without submitting it. An
// invalid survey is still a successful request: the verdict is in the body.
func ValidateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := validateRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil || req.JSONInput == nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "json_input is required")
			return
		}

		report, err := app.Service.Validate([]byte(*req.JSONInput))
		if err != nil {
			message := "Validation failed"
			if survey.HasKind(err, survey.MalformedInput) {
				message = "Invalid JSON"
			}
			render.JSON(w, r, validateResponse{
				Message:  message,
				Error:    err.Error(),
				Errors:   survey.Issues(err),
				Warnings: report.Warnings,
			})
			return
		}

		render.JSON(w, r, validateResponse{
			Valid:       true,
			Message:     "Survey definition is valid",
			SurveyInput: report.Survey,
			Details:     report.Details,
			Warnings:    report.Warnings,
		})
	}
}
