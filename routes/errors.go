package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/mbolis/poll-creator/httpx"
	"github.com/mbolis/poll-creator/leanix"
	"github.com/mbolis/poll-creator/log"
	"github.com/mbolis/poll-creator/service"
	"github.com/mbolis/poll-creator/survey"
)

// serviceError maps an error returned by the service to a response.
func serviceError(w http.ResponseWriter, r *http.Request, code string, err error) {
	var apiErr *leanix.APIError
	var tooLarge leanix.ResponseTooLargeError

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.LogStatusMsg(w, r, http.StatusUnprocessableEntity, log.WarnLevel, code, "%s", err)
	case errors.Is(err, service.ErrEmptyBatch):
		httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, code, "%s", err)
	case errors.Is(err, service.ErrBatchTooLarge), errors.Is(err, service.ErrInvalidPollID):
		httpx.LogStatusMsg(w, r, http.StatusUnprocessableEntity, log.DebugLevel, code, "%s", err)
	case len(survey.Issues(err)) > 0:
		issues := survey.Issues(err)
		errs := make([]any, len(issues))
		for i, issue := range issues {
			errs[i] = issue
		}
		httpx.LogStatusErrors(w, r, http.StatusUnprocessableEntity, log.DebugLevel, code, "Validation failed", errs)
	case errors.Is(err, leanix.ErrAuthentication):
		httpx.LogStatusMsg(w, r, http.StatusUnauthorized, log.WarnLevel, code, "%s", err)
	case errors.As(err, &apiErr):
		httpx.LogStatusMsg(w, r, apiErr.StatusCode, log.WarnLevel, code, "%s", err)
	case errors.As(err, &tooLarge):
		httpx.LogStatusMsg(w, r, http.StatusBadGateway, log.WarnLevel, code, "%s", err)
	case errors.Is(err, context.Canceled):
		log.Debugf("%s: %s", code, err)
	default:
		httpx.LogStatusMsg(w, r, http.StatusServiceUnavailable, log.ErrorLevel, code, "Failed to reach LeanIX: %s", err)
	}
}
