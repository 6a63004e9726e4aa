package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/mbolis/poll-creator/app"
	"github.com/mbolis/poll-creator/database"
	"github.com/mbolis/poll-creator/httpx"
	"github.com/mbolis/poll-creator/log"
	"github.com/mbolis/poll-creator/model"
)

// ListSubmissions returns the most recent entries of the audit log,
// optionally filtered by workspace_id and status.
func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := database.SubmissionFilter{
			WorkspaceID: q.Get("workspace_id"),
			Status:      q.Get("status"),
		}

		switch filter.Status {
		case "", model.SubmissionCreated, model.SubmissionFailed:
		default:
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.query.status", "unknown status %q", filter.Status)
			return
		}

		if limit := q.Get("limit"); limit != "" {
			n, err := strconv.Atoi(limit)
			if err != nil || n < 1 {
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.query.limit", "limit must be a positive integer")
				return
			}
			filter.Limit = n
		}

		submissions, err := app.Submissions.List(r.Context(), filter)
		if err != nil {
			httpx.LogInternalError(w, r, "db.list_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}
